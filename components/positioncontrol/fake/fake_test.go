package fake

import (
	"math"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/fbrobotics/motioncore/components/odometry"
	odofake "github.com/fbrobotics/motioncore/components/odometry/fake"
)

func TestServoConverges(t *testing.T) {
	odo := odofake.NewOdometry(odometry.Pose{Linear: 1, Heading: 0.5})
	servo := NewServo(odo, DefaultConfig)

	test.That(t, servo.IsConverged(), test.ShouldBeTrue)
	lin, ang := servo.Setpoints()
	test.That(t, lin, test.ShouldEqual, 1.0)
	test.That(t, ang, test.ShouldEqual, 0.5)

	servo.SetLinearSetpoint(1.5)
	test.That(t, servo.IsConverged(), test.ShouldBeFalse)

	// disabled servo never moves
	servo.Advance(100 * time.Millisecond)
	test.That(t, odo.CurrentLinearPosition(), test.ShouldEqual, 1.0)
	test.That(t, servo.Advances(), test.ShouldEqual, 0)

	servo.Enable()
	test.That(t, servo.Enabled(), test.ShouldBeTrue)
	servo.Advance(100 * time.Millisecond)
	test.That(t, odo.CurrentLinearPosition(), test.ShouldAlmostEqual, 1.05, 1e-9)

	for i := 0; i < 20; i++ {
		servo.Advance(100 * time.Millisecond)
	}
	test.That(t, servo.IsConverged(), test.ShouldBeTrue)
	test.That(t, odo.CurrentLinearPosition(), test.ShouldAlmostEqual, 1.5, 1e-9)
	pose := odo.CurrentPose()
	test.That(t, pose.Position.X, test.ShouldAlmostEqual, 0.5*math.Cos(0.5), 1e-9)

	servo.SetAngularSetpoint(0.5 - math.Pi/2)
	for i := 0; i < 20; i++ {
		servo.Advance(100 * time.Millisecond)
	}
	test.That(t, servo.IsConverged(), test.ShouldBeTrue)
	test.That(t, odo.CurrentAngularPosition(), test.ShouldAlmostEqual, 0.5-math.Pi/2, 1e-9)

	servo.Disable()
	test.That(t, servo.Enabled(), test.ShouldBeFalse)
}
