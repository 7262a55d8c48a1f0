// Package control runs periodic tasks at a fixed cadence.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/utils"
)

// Tickable is driven by a Loop. elapsed is the time measured since the previous tick.
type Tickable interface {
	Tick(elapsed time.Duration)
}

// TickFunc adapts a function to Tickable.
type TickFunc func(elapsed time.Duration)

// Tick calls f.
func (f TickFunc) Tick(elapsed time.Duration) {
	f(elapsed)
}

// Loop calls a Tickable once per period from a single background goroutine. The goroutine only
// ever blocks on its ticker.
type Loop struct {
	name   string
	period time.Duration
	clock  clock.Clock
	target Tickable
	logger logging.Logger

	mu      sync.Mutex
	workers *utils.StoppableWorkers
	ticks   atomic.Uint64
}

// NewLoop constructs a loop. Periods shorter than the 200Hz bound are rejected.
func NewLoop(name string, period time.Duration, clk clock.Clock, target Tickable, logger logging.Logger) (*Loop, error) {
	if period < config.MinBaseCadence {
		return nil, errors.Errorf("loop %q period %s shouldn't be 0 or above 200Hz", name, period)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		name:   name,
		period: period,
		clock:  clk,
		target: target,
		logger: logger,
	}, nil
}

// Start starts the loop.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers != nil {
		return errors.Errorf("loop %q is already running", l.name)
	}
	l.logger.Infow("running loop", "name", l.name, "period", l.period, "frequency", l.Frequency())

	// the ticker is created before Start returns so no tick of a mocked clock is missed
	ticker := l.clock.Ticker(l.period)
	last := l.clock.Now()
	l.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.target.Tick(now.Sub(last))
				last = now
				l.ticks.Inc()
			}
		}
	})
	return nil
}

// Stop stops the loop and waits for the current tick to return.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers == nil {
		return
	}
	l.logger.Debugw("closing loop", "name", l.name, "ticks", l.ticks.Load())
	l.workers.Stop()
	l.workers = nil
}

// Frequency returns the loop's frequency in Hz.
func (l *Loop) Frequency() float64 {
	return float64(time.Second) / float64(l.period)
}

// Period returns the loop's period.
func (l *Loop) Period() time.Duration {
	return l.period
}

// Ticks returns how many ticks ran since the loop was constructed.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}
