// Package fake implements a simulated odometry that integrates commanded motion.
package fake

import (
	"math"
	"sync"

	"github.com/fbrobotics/motioncore/components/odometry"
)

// Odometry is an in-memory pose estimator. Motion is fed by Move, typically from the fake
// position servo.
type Odometry struct {
	mu   sync.RWMutex
	pose odometry.Pose
}

// NewOdometry returns an odometry starting at the given pose.
func NewOdometry(start odometry.Pose) *Odometry {
	return &Odometry{pose: start}
}

// Move advances the pose by a linear displacement along the current heading followed by a
// rotation.
func (o *Odometry) Move(linear, angular float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pose.Linear += linear
	o.pose.Position.X += linear * math.Cos(o.pose.Heading)
	o.pose.Position.Y += linear * math.Sin(o.pose.Heading)
	o.pose.Heading += angular
}

// SetPose overwrites the whole pose.
func (o *Odometry) SetPose(pose odometry.Pose) {
	o.mu.Lock()
	o.pose = pose
	o.mu.Unlock()
}

// CurrentPose returns the current pose.
func (o *Odometry) CurrentPose() odometry.Pose {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pose
}

// CurrentLinearPosition returns the distance travelled.
func (o *Odometry) CurrentLinearPosition() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pose.Linear
}

// CurrentAngularPosition returns the heading.
func (o *Odometry) CurrentAngularPosition() float64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.pose.Heading
}

// ResetReference overwrites one axis of the pose.
func (o *Odometry) ResetReference(axis odometry.Axis, value float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch axis {
	case odometry.AxisX:
		o.pose.Position.X = value
	case odometry.AxisY:
		o.pose.Position.Y = value
	case odometry.AxisHeading:
		o.pose.Heading = value
	}
}
