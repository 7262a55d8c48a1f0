// Package fake implements a contact pair whose switches are set by the caller.
package fake

import (
	"context"

	"go.uber.org/atomic"

	"github.com/fbrobotics/motioncore/components/contact"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "fake"

// Config is the config for a fake contact pair.
type Config struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
}

func init() {
	registry.Register(registry.ContactAPI, Model, registry.Registration[contact.Contact]{
		Constructor: func(_ context.Context, conf config.Component, _ logging.Logger) (contact.Contact, error) {
			c := &Contact{}
			if attrs, ok := conf.ConvertedAttributes.(*Config); ok {
				c.Set(attrs.Left, attrs.Right)
			}
			return c, nil
		},
		Attributes: func() interface{} { return &Config{} },
	})
}

// Contact is a fake contact pair.
type Contact struct {
	left  atomic.Bool
	right atomic.Bool
}

// Set sets both switches.
func (c *Contact) Set(left, right bool) {
	c.left.Store(left)
	c.right.Store(right)
}

// Touching returns the switches given to Set.
func (c *Contact) Touching() (bool, bool, error) {
	return c.left.Load(), c.right.Load(), nil
}
