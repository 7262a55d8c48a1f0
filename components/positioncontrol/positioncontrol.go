// Package positioncontrol defines the position servo that closes the loop on the linear and
// angular setpoints produced by the trajectory planner.
package positioncontrol

import "time"

// PositionControl is a two axis position servo. Enable and Disable may be called from a
// different goroutine than the control loop, so implementations must be safe for concurrent
// use.
type PositionControl interface {
	// SetLinearSetpoint sets the target distance along the path of travel in meters.
	SetLinearSetpoint(meters float64)
	// SetAngularSetpoint sets the target heading in radians.
	SetAngularSetpoint(radians float64)
	// IsConverged reports whether both setpoints are reached within the servo's own tolerance.
	IsConverged() bool
	// Enable starts holding torque on the setpoints. Enabling twice is a no-op.
	Enable()
	// Disable releases the motors.
	Disable()
	// Advance runs one servo step. period is the time since the previous step.
	Advance(period time.Duration)
}
