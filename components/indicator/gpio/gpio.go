// Package gpio implements an indicator driving an LED on a digital line.
package gpio

import (
	"context"
	"sync"

	"github.com/fbrobotics/motioncore/components/board"
	"github.com/fbrobotics/motioncore/components/indicator"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "gpio"

// Config describes the line the LED is wired to.
type Config struct {
	Pin       string `json:"pin"`
	ActiveLow bool   `json:"active_low,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.Pin == "" {
		return config.NewFieldRequiredError(path, "pin")
	}
	return nil
}

func init() {
	registry.Register(registry.IndicatorAPI, Model, registry.Registration[indicator.Indicator]{
		Constructor: func(_ context.Context, conf config.Component, logger logging.Logger) (indicator.Indicator, error) {
			attrs := conf.ConvertedAttributes.(*Config)
			pin, err := board.OutputPinByName(attrs.Pin)
			if err != nil {
				return nil, err
			}
			logger.Debugw("indicator ready", "pin", attrs.Pin)
			return NewIndicator(pin, attrs.ActiveLow)
		},
		Attributes: func() interface{} { return &Config{} },
	})
}

type gpioIndicator struct {
	mu        sync.Mutex
	pin       board.GPIOPin
	activeLow bool
	on        bool
}

// NewIndicator returns an indicator on the given line, initially off.
func NewIndicator(pin board.GPIOPin, activeLow bool) (indicator.Indicator, error) {
	ind := &gpioIndicator{pin: pin, activeLow: activeLow}
	if err := ind.Set(false); err != nil {
		return nil, err
	}
	return ind, nil
}

func (ind *gpioIndicator) Set(on bool) error {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.set(on)
}

func (ind *gpioIndicator) set(on bool) error {
	if err := ind.pin.Set(on != ind.activeLow); err != nil {
		return err
	}
	ind.on = on
	return nil
}

func (ind *gpioIndicator) Toggle() error {
	ind.mu.Lock()
	defer ind.mu.Unlock()
	return ind.set(!ind.on)
}

func (ind *gpioIndicator) Close() error {
	return ind.Set(false)
}
