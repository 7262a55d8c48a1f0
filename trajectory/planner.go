// Package trajectory turns one movement order at a time into linear and angular setpoints for
// the position servo, sequencing multi-phase maneuvers through a small state machine.
//
// A Planner is driven by a single goroutine: entry points and Advance must not be called
// concurrently. The introspection methods (State, CurrentStep, Status, IsFinished, Setpoints)
// read snapshots published at the end of each call and are safe from any goroutine.
package trajectory

import (
	"math"
	"time"

	"github.com/golang/geo/r2"
	"go.uber.org/atomic"

	"github.com/fbrobotics/motioncore/components/contact"
	"github.com/fbrobotics/motioncore/components/odometry"
	"github.com/fbrobotics/motioncore/components/positioncontrol"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/utils"
)

// Status bits reported by Planner.Status.
const (
	// StatusAdvanced is set once Advance has run.
	StatusAdvanced uint16 = 1 << 0
	// StatusInMotion is set while an order is active.
	StatusInMotion uint16 = 1 << 8
)

// Planner is the trajectory state machine.
type Planner struct {
	logger   logging.Logger
	cfg      config.Planner
	odometry odometry.Odometry
	servo    positioncontrol.PositionControl
	contacts contact.Contact

	state    State
	step     int
	finished bool
	status   uint16

	linearSetpoint     float64
	linearNextSetpoint float64
	angularSetpoint    float64

	start        odometry.Pose
	stallMode    StallMode
	stallHeading float64

	waypoints [PathCapacity]r2.Point
	count     int
	index     int

	snapState    atomic.Int32
	snapStep     atomic.Int32
	snapStatus   atomic.Uint32
	snapFinished atomic.Bool
	snapLinear   atomic.Float64
	snapAngular  atomic.Float64
}

// NewPlanner returns an idle planner. contacts may be nil when the robot has no contact
// switches, in which case stall calibration assumes contact as soon as the heading converges.
func NewPlanner(
	cfg config.Planner,
	odo odometry.Odometry,
	servo positioncontrol.PositionControl,
	contacts contact.Contact,
	logger logging.Logger,
) *Planner {
	p := &Planner{
		logger:   logger,
		cfg:      cfg,
		odometry: odo,
		servo:    servo,
		contacts: contacts,
		state:    Free,
		finished: true,
	}
	p.publish()
	return p
}

// GoLinear drives distance meters along the current heading.
func (p *Planner) GoLinear(distance float64) {
	p.linearSetpoint = p.odometry.CurrentLinearPosition() + distance
	p.transition(Linear)
}

// GoAngular rotates in place to the absolute heading.
func (p *Planner) GoAngular(heading float64) {
	p.angularSetpoint = heading
	p.transition(Angular)
}

// GotoXY turns to face the point then drives straight to it. A target within the zero
// distance of the current position is already reached and leaves the planner free.
func (p *Planner) GotoXY(x, y float64) {
	pose := p.odometry.CurrentPose()
	dist, heading := p.aim(pose, r2.Point{X: x, Y: y})
	if dist <= p.cfg.ZeroDistanceM {
		p.logger.Debugw("target already reached", "x", x, "y", y, "pose", pose)
		p.transition(Free)
		return
	}
	p.linearSetpoint = pose.Linear + dist
	p.angularSetpoint = heading
	p.transition(LinearThenAngularPlan)
}

// Keep freezes the robot on the last commanded setpoints.
func (p *Planner) Keep() {
	p.transition(Keep)
}

// Freewheel abandons the active order and releases the motors.
func (p *Planner) Freewheel() {
	p.transition(Free)
}

// Stop abandons the active order. The stop is instantaneous: the servo is disabled on the next
// Advance without a deceleration ramp.
func (p *Planner) Stop() {
	p.transition(Stop)
}

// StopDecelerating always fails; only the instantaneous Stop exists.
func (p *Planner) StopDecelerating() error {
	return ErrDecelerationUnsupported
}

// Curve always fails and leaves the active order untouched.
func (p *Planner) Curve([]r2.Point) error {
	return ErrCurveUnsupported
}

// Advance runs one step of the state machine. Transitions depend on servo convergence and
// pose only, never on period.
func (p *Planner) Advance(_ time.Duration) {
	p.status |= StatusAdvanced
	if p.state.Idle() {
		p.status &^= StatusInMotion
		p.finished = true
	} else {
		p.status |= StatusInMotion
		p.finished = false
		p.servo.Enable()
	}

	switch p.state {
	case Free, Stop:
		p.servo.Disable()
	case Linear:
		p.advanceLinear()
	case Angular:
		p.advanceAngular()
	case LinearThenAngularPlan:
		p.advanceLinearPlan()
	case DrawPlan:
		p.advanceDrawPlan()
	case StallX, StallY:
		p.advanceStall()
	case Keep, CurvePlan:
	}
	p.publish()
}

func (p *Planner) advanceLinear() {
	switch p.step {
	case 1:
		p.servo.SetLinearSetpoint(p.linearSetpoint)
		p.servo.SetAngularSetpoint(p.odometry.CurrentAngularPosition())
		p.step = 2
	case 2:
		if p.servo.IsConverged() {
			p.transition(Free)
		}
	}
}

func (p *Planner) advanceAngular() {
	switch p.step {
	case 1:
		p.servo.SetLinearSetpoint(p.odometry.CurrentLinearPosition())
		p.servo.SetAngularSetpoint(p.angularSetpoint)
		p.step = 2
	case 2:
		if p.servo.IsConverged() {
			p.transition(Free)
		}
	}
}

// advanceLinearPlan rotates to face the target before driving to it so the robot never
// travels on a curve.
func (p *Planner) advanceLinearPlan() {
	switch p.step {
	case 1:
		p.servo.SetLinearSetpoint(p.odometry.CurrentLinearPosition())
		p.servo.SetAngularSetpoint(p.angularSetpoint)
		p.step = 2
	case 2:
		if p.servo.IsConverged() {
			p.step = 3
		}
	case 3:
		p.step = 4
	case 4:
		p.servo.SetLinearSetpoint(p.linearSetpoint)
		p.servo.SetAngularSetpoint(p.odometry.CurrentAngularPosition())
		p.step = 5
	case 5:
		if p.servo.IsConverged() {
			p.transition(Free)
		}
	}
}

// aim returns the distance to target and the heading facing it, taken the short way round
// from the pose heading. Targets within the zero distance keep the current heading.
func (p *Planner) aim(pose odometry.Pose, target r2.Point) (float64, float64) {
	delta := target.Sub(pose.Position)
	dist := delta.Norm()
	if dist <= p.cfg.ZeroDistanceM {
		return dist, pose.Heading
	}
	return dist, utils.ShortestHeading(pose.Heading, math.Atan2(delta.Y, delta.X))
}

func (p *Planner) transition(to State) {
	if p.state != to {
		p.logger.Debugw("trajectory state change", "from", p.state, "to", to)
	}
	p.state = to
	p.step = 1
	p.publish()
}

func (p *Planner) publish() {
	p.snapState.Store(int32(p.state))
	p.snapStep.Store(int32(p.step))
	p.snapStatus.Store(uint32(p.status))
	p.snapFinished.Store(p.finished)
	p.snapLinear.Store(p.linearSetpoint)
	p.snapAngular.Store(p.angularSetpoint)
}

// IsFinished reports whether the planner was idle at the last Advance.
func (p *Planner) IsFinished() bool {
	return p.snapFinished.Load()
}

// State returns the current state.
func (p *Planner) State() State {
	return State(p.snapState.Load())
}

// CurrentStep returns the phase index within the current state.
func (p *Planner) CurrentStep() int {
	return int(p.snapStep.Load())
}

// Status returns the StatusAdvanced and StatusInMotion bits.
func (p *Planner) Status() uint16 {
	return uint16(p.snapStatus.Load())
}

// Setpoints returns the last computed linear and angular targets.
func (p *Planner) Setpoints() (float64, float64) {
	return p.snapLinear.Load(), p.snapAngular.Load()
}
