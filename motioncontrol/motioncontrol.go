// Package motioncontrol runs the motion control schedule: it owns the order inbox, gates
// motion on the enable and safeguard flags, stops on obstacles and drives the trajectory
// planner and the position servo at their own cadences from a single base tick.
package motioncontrol

import (
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/fbrobotics/motioncore/components/positioncontrol"
	"github.com/fbrobotics/motioncore/components/telemeter"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/trajectory"
)

// ErrInboxFull is returned by Submit when the inbox holds its capacity of orders.
var ErrInboxFull = errors.New("order inbox is full")

// Planner is the trajectory planner driven by the orchestrator.
type Planner interface {
	GoLinear(distance float64)
	GoAngular(heading float64)
	GotoXY(x, y float64)
	PushPath(points []r2.Point) error
	StallX(mode trajectory.StallMode) error
	StallY(mode trajectory.StallMode) error
	Keep()
	Stop()
	Freewheel()
	Advance(period time.Duration)
	IsFinished() bool
}

var _ Planner = (*trajectory.Planner)(nil)

// Options configures an Orchestrator.
type Options struct {
	Cadence       config.Cadence
	InboxCapacity int
	Safeguard     bool
}

// Orchestrator is the motion control scheduler. Tick must be called from a single goroutine;
// every other method is safe to call concurrently with it.
type Orchestrator struct {
	logger    logging.Logger
	planner   Planner
	servo     positioncontrol.PositionControl
	obstacles telemeter.Telemeter

	inbox chan Command

	enabled            atomic.Bool
	safeguard          atomic.Bool
	stopRequested      atomic.Bool
	freewheelRequested atomic.Bool
	status             atomic.Uint32
	scheduleClock      atomic.Duration

	obstacleRatio   uint64
	trajectoryRatio uint64
	servoRatio      uint64

	// owned by the Tick goroutine
	ticks          uint64
	finished       bool
	obstacle       bool
	servoConverged bool
}

// New returns a disabled orchestrator. obstacles may be nil when no obstacle sensor is fitted.
func New(
	opts Options,
	planner Planner,
	servo positioncontrol.PositionControl,
	obstacles telemeter.Telemeter,
	logger logging.Logger,
) (*Orchestrator, error) {
	if err := opts.Cadence.Validate("cadence"); err != nil {
		return nil, err
	}
	if opts.InboxCapacity < 1 {
		return nil, errors.Errorf("inbox capacity must be positive, got %d", opts.InboxCapacity)
	}
	o := &Orchestrator{
		logger:          logger,
		planner:         planner,
		servo:           servo,
		obstacles:       obstacles,
		inbox:           make(chan Command, opts.InboxCapacity),
		obstacleRatio:   opts.Cadence.Ratio(opts.Cadence.Obstacle),
		trajectoryRatio: opts.Cadence.Ratio(opts.Cadence.Trajectory),
		servoRatio:      opts.Cadence.Ratio(opts.Cadence.Servo),
		finished:        planner.IsFinished(),
	}
	o.safeguard.Store(opts.Safeguard)
	o.updateStatus()
	return o, nil
}

// Enable enables motion and the position servo.
func (o *Orchestrator) Enable() {
	if !o.enabled.Swap(true) {
		o.logger.Info("motion enabled")
	}
	o.servo.Enable()
}

// Disable disables motion and releases the position servo. Ticks keep refreshing the status
// word but no longer advance the planner or the servo.
func (o *Orchestrator) Disable() {
	if o.enabled.Swap(false) {
		o.logger.Info("motion disabled")
	}
	o.servo.Disable()
}

// EnableSafeguard turns the obstacle check on.
func (o *Orchestrator) EnableSafeguard() {
	o.safeguard.Store(true)
}

// DisableSafeguard turns the obstacle check off.
func (o *Orchestrator) DisableSafeguard() {
	o.safeguard.Store(false)
}

// Submit queues an order without blocking. It fails with ErrInboxFull when the inbox is full
// and with the validation error when the planner would refuse the order.
func (o *Orchestrator) Submit(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		o.logger.Warnw("order rejected", "order", cmd, "error", err)
		return err
	}
	select {
	case o.inbox <- cmd:
		o.logger.Debugw("order queued", "order", cmd, "pending", len(o.inbox))
		return nil
	default:
		o.logger.Warnw("order rejected", "order", cmd, "error", ErrInboxFull)
		return ErrInboxFull
	}
}

// Pending returns how many orders wait in the inbox.
func (o *Orchestrator) Pending() int {
	return len(o.inbox)
}

// ClearInbox drops every queued order and returns how many were dropped.
func (o *Orchestrator) ClearInbox() int {
	dropped := 0
	for {
		select {
		case <-o.inbox:
			dropped++
		default:
			if dropped > 0 {
				o.logger.Infow("inbox cleared", "dropped", dropped)
			}
			return dropped
		}
	}
}

// Stop requests an instantaneous stop of the active order on the next trajectory cadence.
// Queued orders stay queued.
func (o *Orchestrator) Stop() {
	o.stopRequested.Store(true)
}

// Freewheel requests the motors be released on the next trajectory cadence.
func (o *Orchestrator) Freewheel() {
	o.freewheelRequested.Store(true)
}

// Status returns the status word computed by the last Tick.
func (o *Orchestrator) Status() StatusWord {
	return StatusWord(o.status.Load())
}

// ScheduleClock returns the time accumulated by every Tick since construction.
func (o *Orchestrator) ScheduleClock() time.Duration {
	return o.scheduleClock.Load()
}

// Tick runs one base tick of the schedule. elapsed is the time since the previous tick.
// Sub-schedules fire on the ticks that are a multiple of their cadence and receive elapsed
// scaled by the same ratio.
func (o *Orchestrator) Tick(elapsed time.Duration) {
	o.updateStatus()

	o.ticks++
	o.scheduleClock.Add(elapsed)

	if !o.enabled.Load() {
		return
	}

	if o.ticks%o.obstacleRatio == 0 {
		o.checkObstacle()
	}
	if o.ticks%o.trajectoryRatio == 0 {
		o.advanceTrajectory(elapsed * time.Duration(o.trajectoryRatio))
	}
	if o.ticks%o.servoRatio == 0 {
		o.servo.Advance(elapsed * time.Duration(o.servoRatio))
		o.servoConverged = o.servo.IsConverged()
	}
}

func (o *Orchestrator) updateStatus() {
	var s StatusWord
	if o.enabled.Load() {
		s |= StatusMotionEnabled
	}
	if o.safeguard.Load() {
		s |= StatusSafeguardEnabled
	}
	if o.finished {
		s |= StatusTrajectoryFinished
	}
	if o.obstacle {
		s |= StatusObstacle
	}
	if o.servoConverged {
		s |= StatusServoConverged
	}
	o.status.Store(uint32(s))
}

// checkObstacle stops the active order once when the sensor starts seeing an obstacle. A
// sensor that cannot be read counts as an obstacle.
func (o *Orchestrator) checkObstacle() {
	if !o.safeguard.Load() || o.obstacles == nil {
		o.obstacle = false
		return
	}
	detected, err := o.obstacles.Detected()
	if err != nil {
		o.logger.Errorw("cannot read obstacle sensor, stopping", "error", err)
		detected = true
	}
	switch {
	case detected && !o.obstacle:
		o.logger.Warn("obstacle detected, stopping")
		o.planner.Stop()
	case !detected && o.obstacle:
		o.logger.Info("obstacle cleared")
	}
	o.obstacle = detected
}

func (o *Orchestrator) advanceTrajectory(period time.Duration) {
	if o.stopRequested.Swap(false) {
		o.logger.Info("stop requested")
		o.planner.Stop()
	}
	if o.freewheelRequested.Swap(false) {
		o.logger.Info("freewheel requested")
		o.planner.Freewheel()
	}
	if o.planner.IsFinished() && !o.obstacle {
		select {
		case cmd := <-o.inbox:
			o.logger.Infow("dispatching order", "order", cmd, "pending", len(o.inbox))
			if err := cmd.dispatch(o.planner); err != nil {
				o.logger.Errorw("planner refused order", "order", cmd, "error", err)
			}
		default:
		}
	}
	o.planner.Advance(period)
	o.finished = o.planner.IsFinished()
}
