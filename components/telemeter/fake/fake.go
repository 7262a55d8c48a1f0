// Package fake implements a telemeter whose reading is set by the caller.
package fake

import (
	"context"

	"go.uber.org/atomic"

	"github.com/fbrobotics/motioncore/components/telemeter"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "fake"

// Config is the config for a fake telemeter.
type Config struct {
	Detected bool `json:"detected"`
}

func init() {
	registry.Register(registry.TelemeterAPI, Model, registry.Registration[telemeter.Telemeter]{
		Constructor: func(_ context.Context, conf config.Component, _ logging.Logger) (telemeter.Telemeter, error) {
			t := NewTelemeter()
			if attrs, ok := conf.ConvertedAttributes.(*Config); ok {
				t.SetDetected(attrs.Detected)
			}
			return t, nil
		},
		Attributes: func() interface{} { return &Config{} },
	})
}

// Telemeter is a fake obstacle sensor. It counts how many times it has been polled.
type Telemeter struct {
	detected atomic.Bool
	polls    atomic.Int32
}

// NewTelemeter returns a telemeter that sees nothing.
func NewTelemeter() *Telemeter {
	return &Telemeter{}
}

// SetDetected sets the next readings.
func (t *Telemeter) SetDetected(detected bool) {
	t.detected.Store(detected)
}

// Detected returns the last value given to SetDetected.
func (t *Telemeter) Detected() (bool, error) {
	t.polls.Inc()
	return t.detected.Load(), nil
}

// Polls returns how many times Detected was called.
func (t *Telemeter) Polls() int {
	return int(t.polls.Load())
}
