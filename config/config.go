// Package config defines the structures that configure the motion stack and its components.
package config

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Reference cadences of the motion control schedule.
const (
	DefaultBaseCadence        = 5 * time.Millisecond
	DefaultObstacleCadence    = 200 * time.Millisecond
	DefaultTrajectoryCadence  = 200 * time.Millisecond
	DefaultServoCadence       = 100 * time.Millisecond
	DefaultDiagnosticsCadence = 10 * time.Millisecond

	// MinBaseCadence bounds the base loop at 200Hz.
	MinBaseCadence = 5 * time.Millisecond

	DefaultInboxCapacity = 10
	maxInboxCapacity     = 64
)

// Config is the whole motion stack configuration.
type Config struct {
	ConfigFilePath string `json:"-"`

	Cadence       Cadence     `json:"cadence"`
	InboxCapacity int         `json:"inbox_capacity"`
	Safeguard     bool        `json:"safeguard"`
	Planner       Planner     `json:"planner"`
	Components    []Component `json:"components"`
	Diagnostics   Diagnostics `json:"diagnostics"`
	Log           Log         `json:"log"`
}

// Cadence holds the periods at which each part of the schedule runs. Every period except Base
// must be a multiple of Base.
type Cadence struct {
	Base        time.Duration `json:"base"`
	Obstacle    time.Duration `json:"obstacle"`
	Trajectory  time.Duration `json:"trajectory"`
	Servo       time.Duration `json:"servo"`
	Diagnostics time.Duration `json:"diagnostics"`
}

// Planner tunes the trajectory planner.
type Planner struct {
	WaypointToleranceM float64 `json:"waypoint_tolerance_m"`
	FinalToleranceM    float64 `json:"final_tolerance_m"`
	ZeroDistanceM      float64 `json:"zero_distance_m"`
	StallXDatumM       float64 `json:"stall_x_datum_m"`
	StallYDatumM       float64 `json:"stall_y_datum_m"`
}

// Diagnostics configures status LEDs and traces.
type Diagnostics struct {
	Traces       []string      `json:"traces"`
	TracesPeriod time.Duration `json:"traces_period"`
}

// Log configures the process logger.
type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
}

// Known trace names.
const (
	TraceMotion   = "motion"
	TraceOdometry = "odometry"
)

// Default returns the reference configuration: 5ms base tick, 200ms obstacle and trajectory
// cadences, 100ms servo cadence and an inbox of 10 orders.
func Default() *Config {
	return &Config{
		Cadence: Cadence{
			Base:        DefaultBaseCadence,
			Obstacle:    DefaultObstacleCadence,
			Trajectory:  DefaultTrajectoryCadence,
			Servo:       DefaultServoCadence,
			Diagnostics: DefaultDiagnosticsCadence,
		},
		InboxCapacity: DefaultInboxCapacity,
		Safeguard:     true,
		Planner: Planner{
			WaypointToleranceM: 0.1,
			FinalToleranceM:    0.01,
			ZeroDistanceM:      0.001,
		},
		Diagnostics: Diagnostics{TracesPeriod: DefaultDiagnosticsCadence},
		Log:         Log{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Cadence.Validate("cadence"); err != nil {
		return err
	}
	if c.InboxCapacity < 1 || c.InboxCapacity > maxInboxCapacity {
		return NewValidationError("inbox_capacity",
			errors.Errorf("must be between 1 and %d, got %d", maxInboxCapacity, c.InboxCapacity))
	}
	if err := c.Planner.Validate("planner"); err != nil {
		return err
	}
	if err := c.Diagnostics.Validate("diagnostics"); err != nil {
		return err
	}

	seen := map[string]bool{}
	for idx := range c.Components {
		path := fmt.Sprintf("components.%d", idx)
		if err := c.Components[idx].Validate(path); err != nil {
			return err
		}
		if seen[c.Components[idx].Name] {
			return NewValidationError(path, errors.Errorf("component name %q is not unique", c.Components[idx].Name))
		}
		seen[c.Components[idx].Name] = true
	}
	return nil
}

// Validate checks each cadence is positive and a multiple of the base cadence.
func (c Cadence) Validate(path string) error {
	if c.Base < MinBaseCadence {
		return NewValidationError(path+".base", errors.Errorf("must be at least %s", MinBaseCadence))
	}
	for name, period := range map[string]time.Duration{
		"obstacle":    c.Obstacle,
		"trajectory":  c.Trajectory,
		"servo":       c.Servo,
		"diagnostics": c.Diagnostics,
	} {
		if period <= 0 {
			return NewFieldRequiredError(path, name)
		}
		if period%c.Base != 0 {
			return NewValidationError(path+"."+name, errors.Errorf("%s is not a multiple of the base cadence %s", period, c.Base))
		}
	}
	return nil
}

// Ratio returns how many base ticks make up one period.
func (c Cadence) Ratio(period time.Duration) uint64 {
	return uint64(period / c.Base)
}

// Validate checks the tolerances are usable.
func (p Planner) Validate(path string) error {
	if p.WaypointToleranceM <= 0 {
		return NewFieldRequiredError(path, "waypoint_tolerance_m")
	}
	if p.FinalToleranceM <= 0 {
		return NewFieldRequiredError(path, "final_tolerance_m")
	}
	if p.FinalToleranceM > p.WaypointToleranceM {
		return NewValidationError(path+".final_tolerance_m", errors.New("must not exceed waypoint_tolerance_m"))
	}
	if p.ZeroDistanceM < 0 {
		return NewValidationError(path+".zero_distance_m", errors.New("must not be negative"))
	}
	return nil
}

// Validate checks trace names.
func (d Diagnostics) Validate(path string) error {
	known := []string{TraceMotion, TraceOdometry}
	if unknown := lo.Without(d.Traces, known...); len(unknown) > 0 {
		return NewValidationError(path+".traces", errors.Errorf("unknown traces %v", unknown))
	}
	if len(d.Traces) > 0 && d.TracesPeriod <= 0 {
		return NewFieldRequiredError(path, "traces_period")
	}
	return nil
}

// TraceEnabled reports whether the named trace is configured.
func (d Diagnostics) TraceEnabled(name string) bool {
	return lo.Contains(d.Traces, name)
}
