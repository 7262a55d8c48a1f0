// Package odometry defines the pose estimator contract consumed by the trajectory planner.
package odometry

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Pose is the robot's estimated position. Linear is the distance travelled along the path of
// travel, Position is the absolute XY location and Heading the orientation, all in meters and
// radians.
type Pose struct {
	Linear   float64
	Position r2.Point
	Heading  float64
}

func (p Pose) String() string {
	return fmt.Sprintf("L=%.3f X=%.3f Y=%.3f O=%.3f", p.Linear, p.Position.X, p.Position.Y, p.Heading)
}

// Axis identifies a reference that can be recalibrated.
type Axis int

// Axes that ResetReference accepts.
const (
	AxisX Axis = iota
	AxisY
	AxisHeading
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	case AxisHeading:
		return "heading"
	default:
		return fmt.Sprintf("axis(%d)", int(a))
	}
}

// Odometry estimates the robot pose. Implementations must be safe for concurrent use: the
// planner reads it from the control loop while diagnostics read it from their own loop.
type Odometry interface {
	CurrentPose() Pose
	CurrentLinearPosition() float64
	CurrentAngularPosition() float64
	// ResetReference overwrites the absolute reference of one axis, used after stall calibration.
	ResetReference(axis Axis, value float64)
}
