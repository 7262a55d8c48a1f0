// Package fake implements an in-memory GPIO line.
package fake

import (
	"sync"

	"github.com/pkg/errors"
)

// Pin is a fake GPIO line. Set and Get share the same level so a test can play the role of
// the wired device.
type Pin struct {
	mu     sync.Mutex
	high   bool
	sets   int
	broken bool
}

// Set sets the level.
func (p *Pin) Set(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return errors.New("pin is broken")
	}
	p.high = high
	p.sets++
	return nil
}

// Get returns the level.
func (p *Pin) Get() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return false, errors.New("pin is broken")
	}
	return p.high, nil
}

// Sets returns how many times Set succeeded.
func (p *Pin) Sets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sets
}

// Break makes every following call fail.
func (p *Pin) Break() {
	p.mu.Lock()
	p.broken = true
	p.mu.Unlock()
}
