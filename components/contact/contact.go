// Package contact defines the pair of rear contact switches that confirm the robot is flat
// against a wall during stall calibration.
package contact

// Contact reports the state of the left and right contact switches.
type Contact interface {
	Touching() (left, right bool, err error)
}
