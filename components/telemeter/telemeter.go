// Package telemeter defines the obstacle sensor polled by the motion orchestrator.
package telemeter

// Telemeter reports whether an obstacle is inside the robot's stopping range.
type Telemeter interface {
	Detected() (bool, error)
}
