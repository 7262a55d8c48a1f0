// Package gpio implements a telemeter wired as a digital proximity switch.
package gpio

import (
	"context"

	"github.com/fbrobotics/motioncore/components/board"
	"github.com/fbrobotics/motioncore/components/telemeter"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "gpio"

// Config describes the line the sensor output is wired to.
type Config struct {
	Pin       string `json:"pin"`
	Pull      string `json:"pull,omitempty"`
	ActiveLow bool   `json:"active_low,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Pin == "" {
		return config.NewFieldRequiredError(path, "pin")
	}
	if _, err := board.PullFromString(conf.Pull); err != nil {
		return config.NewValidationError(path, err)
	}
	return nil
}

func init() {
	registry.Register(registry.TelemeterAPI, Model, registry.Registration[telemeter.Telemeter]{
		Constructor: func(_ context.Context, conf config.Component, logger logging.Logger) (telemeter.Telemeter, error) {
			attrs := conf.ConvertedAttributes.(*Config)
			pull, err := board.PullFromString(attrs.Pull)
			if err != nil {
				return nil, err
			}
			pin, err := board.InputPinByName(attrs.Pin, pull)
			if err != nil {
				return nil, err
			}
			logger.Debugw("obstacle sensor ready", "pin", attrs.Pin, "active_low", attrs.ActiveLow)
			return NewTelemeter(pin, attrs.ActiveLow), nil
		},
		Attributes: func() interface{} { return &Config{} },
	})
}

type gpioTelemeter struct {
	pin       board.GPIOPin
	activeLow bool
}

// NewTelemeter returns a telemeter reading the given line.
func NewTelemeter(pin board.GPIOPin, activeLow bool) telemeter.Telemeter {
	return &gpioTelemeter{pin: pin, activeLow: activeLow}
}

func (t *gpioTelemeter) Detected() (bool, error) {
	high, err := t.pin.Get()
	if err != nil {
		return false, err
	}
	return high != t.activeLow, nil
}
