// Package gpio implements a contact pair read from two digital lines.
package gpio

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fbrobotics/motioncore/components/board"
	"github.com/fbrobotics/motioncore/components/contact"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "gpio"

// Config describes the lines the two switches are wired to.
type Config struct {
	LeftPin   string `json:"left_pin"`
	RightPin  string `json:"right_pin"`
	Pull      string `json:"pull,omitempty"`
	ActiveLow bool   `json:"active_low,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if conf.LeftPin == "" {
		return config.NewFieldRequiredError(path, "left_pin")
	}
	if conf.RightPin == "" {
		return config.NewFieldRequiredError(path, "right_pin")
	}
	if conf.LeftPin == conf.RightPin {
		return config.NewValidationError(path, errors.Errorf("left and right switches share pin %q", conf.LeftPin))
	}
	if _, err := board.PullFromString(conf.Pull); err != nil {
		return config.NewValidationError(path, err)
	}
	return nil
}

func init() {
	registry.Register(registry.ContactAPI, Model, registry.Registration[contact.Contact]{
		Constructor: func(_ context.Context, conf config.Component, logger logging.Logger) (contact.Contact, error) {
			attrs := conf.ConvertedAttributes.(*Config)
			pull, err := board.PullFromString(attrs.Pull)
			if err != nil {
				return nil, err
			}
			left, err := board.InputPinByName(attrs.LeftPin, pull)
			if err != nil {
				return nil, err
			}
			right, err := board.InputPinByName(attrs.RightPin, pull)
			if err != nil {
				return nil, err
			}
			logger.Debugw("contact switches ready", "left", attrs.LeftPin, "right", attrs.RightPin)
			return NewContact(left, right, attrs.ActiveLow), nil
		},
		Attributes: func() interface{} { return &Config{} },
	})
}

type gpioContact struct {
	left, right board.GPIOPin
	activeLow   bool
}

// NewContact returns a contact pair reading the given lines.
func NewContact(left, right board.GPIOPin, activeLow bool) contact.Contact {
	return &gpioContact{left: left, right: right, activeLow: activeLow}
}

func (c *gpioContact) Touching() (bool, bool, error) {
	left, errLeft := c.left.Get()
	right, errRight := c.right.Get()
	if err := multierr.Combine(errLeft, errRight); err != nil {
		return false, false, err
	}
	return left != c.activeLow, right != c.activeLow, nil
}
