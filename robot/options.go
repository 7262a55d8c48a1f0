package robot

import (
	"github.com/benbjohnson/clock"

	"github.com/fbrobotics/motioncore/components/odometry"
)

// options configures a Robot.
type options struct {
	clock     clock.Clock
	startPose odometry.Pose
}

// Option configures how we set up the robot.
type Option interface {
	apply(*options)
}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithClock returns an Option which sets the clock driving the control loops. Tests pass a
// mock clock to step the schedule deterministically.
func WithClock(clk clock.Clock) Option {
	return newFuncOption(func(o *options) {
		o.clock = clk
	})
}

// WithStartPose returns an Option which sets the initial pose of the simulated odometry.
func WithStartPose(pose odometry.Pose) Option {
	return newFuncOption(func(o *options) {
		o.startPose = pose
	})
}
