// Package board exposes the GPIO lines that obstacle sensors, contact switches and status
// LEDs are wired to.
package board

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIOPin is a single digital line.
type GPIOPin interface {
	// Set drives the line as an output.
	Set(high bool) error
	// Get reads the line level.
	Get() (bool, error)
}

var (
	hostOnce sync.Once
	errHost  error
)

// Init loads the host drivers. It is safe to call more than once.
func Init() error {
	hostOnce.Do(func() {
		if _, err := host.Init(); err != nil {
			errHost = errors.Wrap(err, "error initializing the host")
		}
	})
	return errHost
}

// PullFromString parses a pull configuration: "up", "down", "none" or empty for unchanged.
func PullFromString(pull string) (gpio.Pull, error) {
	switch strings.ToLower(pull) {
	case "":
		return gpio.PullNoChange, nil
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	case "none", "float":
		return gpio.Float, nil
	default:
		return gpio.PullNoChange, errors.Errorf("unknown pull %q", pull)
	}
}

type gpioPin struct {
	mu   sync.Mutex
	pin  gpio.PinIO
	name string
}

func getGPIOLine(name string) (gpio.PinIO, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, errors.Errorf("no global pin found for %q", name)
	}
	return pin, nil
}

// OutputPinByName returns the named line configured as an output driven low.
func OutputPinByName(name string) (GPIOPin, error) {
	pin, err := getGPIOLine(name)
	if err != nil {
		return nil, err
	}
	if err := pin.Out(gpio.Low); err != nil {
		return nil, errors.Wrapf(err, "cannot drive pin %q", name)
	}
	return &gpioPin{pin: pin, name: name}, nil
}

// InputPinByName returns the named line configured as an input with the given pull.
func InputPinByName(name string, pull gpio.Pull) (GPIOPin, error) {
	pin, err := getGPIOLine(name)
	if err != nil {
		return nil, err
	}
	if err := pin.In(pull, gpio.NoEdge); err != nil {
		return nil, errors.Wrapf(err, "cannot read pin %q", name)
	}
	return &gpioPin{pin: pin, name: name}, nil
}

func (gp *gpioPin) Set(high bool) error {
	gp.mu.Lock()
	defer gp.mu.Unlock()
	l := gpio.Low
	if high {
		l = gpio.High
	}
	return gp.pin.Out(l)
}

func (gp *gpioPin) Get() (bool, error) {
	return gp.pin.Read() == gpio.High, nil
}

func (gp *gpioPin) String() string {
	return gp.name
}
