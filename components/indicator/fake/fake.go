// Package fake implements an in-memory indicator.
package fake

import (
	"context"
	"sync"

	"github.com/fbrobotics/motioncore/components/indicator"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/registry"
)

// Model is the registered model name.
const Model = "fake"

func init() {
	registry.Register(registry.IndicatorAPI, Model, registry.Registration[indicator.Indicator]{
		Constructor: func(context.Context, config.Component, logging.Logger) (indicator.Indicator, error) {
			return &Indicator{}, nil
		},
	})
}

// Indicator is a fake LED that remembers its level and counts changes.
type Indicator struct {
	mu      sync.Mutex
	on      bool
	changes int
	closed  bool
}

// Set sets the level.
func (i *Indicator) Set(on bool) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.on != on {
		i.changes++
	}
	i.on = on
	return nil
}

// Toggle flips the level.
func (i *Indicator) Toggle() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.on = !i.on
	i.changes++
	return nil
}

// Close turns the light off.
func (i *Indicator) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.on = false
	i.closed = true
	return nil
}

// On returns the level.
func (i *Indicator) On() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.on
}

// Changes returns how many times the level changed.
func (i *Indicator) Changes() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.changes
}

// Closed reports whether Close was called.
func (i *Indicator) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}
