package motioncontrol

import (
	"sync"
	"testing"
	"time"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/fbrobotics/motioncore/components/odometry"
	odofake "github.com/fbrobotics/motioncore/components/odometry/fake"
	servofake "github.com/fbrobotics/motioncore/components/positioncontrol/fake"
	telefake "github.com/fbrobotics/motioncore/components/telemeter/fake"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/trajectory"
)

const base = 5 * time.Millisecond

// ticksPerTrajectory is the number of base ticks between two trajectory cadences.
const ticksPerTrajectory = int(config.DefaultTrajectoryCadence / base)

// stubPlanner records every call. It finishes an order after busyFor advances.
type stubPlanner struct {
	mu       sync.Mutex
	calls    int
	orders   []string
	periods  []time.Duration
	state    string
	busyFor  int
	busy     int
	finished bool
}

func newStubPlanner(busyFor int) *stubPlanner {
	return &stubPlanner{state: "free", busyFor: busyFor, finished: true}
}

func (p *stubPlanner) start(order string) {
	p.calls++
	p.orders = append(p.orders, order)
	p.state = order
	p.busy = p.busyFor
}

func (p *stubPlanner) GoLinear(d float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(GoLinear{Distance: d}.String())
}

func (p *stubPlanner) GoAngular(h float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(GoAngular{Heading: h}.String())
}

func (p *stubPlanner) GotoXY(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(GoToXY{X: x, Y: y}.String())
}

func (p *stubPlanner) PushPath(points []r2.Point) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(PushPath{Points: points}.String())
	return nil
}

func (p *stubPlanner) StallX(mode trajectory.StallMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(StallX{Mode: mode}.String())
	return nil
}

func (p *stubPlanner) StallY(mode trajectory.StallMode) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start(StallY{Mode: mode}.String())
	return nil
}

func (p *stubPlanner) Keep() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start("keep")
}

func (p *stubPlanner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.state = "stop"
	p.busy = 0
}

func (p *stubPlanner) Freewheel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.state = "free"
	p.busy = 0
}

func (p *stubPlanner) Advance(period time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.periods = append(p.periods, period)
	idle := p.state == "free" || p.state == "stop"
	p.finished = idle
	if !idle {
		if p.busy > 0 {
			p.busy--
		} else {
			p.state = "free"
		}
	}
}

func (p *stubPlanner) IsFinished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.finished
}

func (p *stubPlanner) snapshot() (int, string, []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls, p.state, append([]string(nil), p.orders...)
}

// stubServo counts every call.
type stubServo struct {
	mu       sync.Mutex
	calls    int
	advances []time.Duration
	enabled  bool
}

func (s *stubServo) count() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
}

func (s *stubServo) SetLinearSetpoint(float64)  { s.count() }
func (s *stubServo) SetAngularSetpoint(float64) { s.count() }

func (s *stubServo) IsConverged() bool {
	s.count()
	return true
}

func (s *stubServo) Enable() {
	s.count()
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

func (s *stubServo) Disable() {
	s.count()
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

func (s *stubServo) Advance(period time.Duration) {
	s.count()
	s.mu.Lock()
	s.advances = append(s.advances, period)
	s.mu.Unlock()
}

func (s *stubServo) snapshot() (int, []time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls, append([]time.Duration(nil), s.advances...)
}

type brokenTelemeter struct{}

func (brokenTelemeter) Detected() (bool, error) {
	return false, errors.New("no echo")
}

func defaultOptions() Options {
	cfg := config.Default()
	return Options{Cadence: cfg.Cadence, InboxCapacity: cfg.InboxCapacity, Safeguard: cfg.Safeguard}
}

func newTestOrchestrator(t *testing.T, planner Planner) (*Orchestrator, *stubServo, *telefake.Telemeter) {
	t.Helper()
	servo := &stubServo{}
	tele := telefake.NewTelemeter()
	o, err := New(defaultOptions(), planner, servo, tele, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return o, servo, tele
}

func tickN(o *Orchestrator, n int) {
	for i := 0; i < n; i++ {
		o.Tick(base)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	opts := defaultOptions()
	opts.Cadence.Servo = 7 * time.Millisecond
	_, err := New(opts, newStubPlanner(0), &stubServo{}, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not a multiple of the base cadence")

	opts = defaultOptions()
	opts.InboxCapacity = 0
	_, err = New(opts, newStubPlanner(0), &stubServo{}, nil, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeError, "inbox capacity must be positive, got 0")
}

func TestDisabledOrchestrator(t *testing.T) {
	planner := newStubPlanner(0)
	o, servo, tele := newTestOrchestrator(t, planner)
	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)

	plannerCalls, _, _ := planner.snapshot()
	servoCalls, _ := servo.snapshot()

	tickN(o, 10*ticksPerTrajectory)

	afterPlanner, state, orders := planner.snapshot()
	afterServo, _ := servo.snapshot()
	test.That(t, afterPlanner, test.ShouldEqual, plannerCalls)
	test.That(t, afterServo, test.ShouldEqual, servoCalls)
	test.That(t, state, test.ShouldEqual, "free")
	test.That(t, orders, test.ShouldBeEmpty)
	test.That(t, tele.Polls(), test.ShouldEqual, 0)
	test.That(t, o.Pending(), test.ShouldEqual, 1)

	status := o.Status()
	test.That(t, status.Has(StatusMotionEnabled), test.ShouldBeFalse)
	test.That(t, status.Has(StatusSafeguardEnabled), test.ShouldBeTrue)
	test.That(t, o.ScheduleClock(), test.ShouldEqual, time.Duration(10*ticksPerTrajectory)*base)

	// disabling after motion also stops advancing
	o.Enable()
	tickN(o, ticksPerTrajectory)
	o.Disable()
	plannerCalls, _, _ = planner.snapshot()
	servoCalls, _ = servo.snapshot()
	tickN(o, 5*ticksPerTrajectory)
	afterPlanner, _, _ = planner.snapshot()
	afterServo, _ = servo.snapshot()
	test.That(t, afterPlanner, test.ShouldEqual, plannerCalls)
	test.That(t, afterServo, test.ShouldEqual, servoCalls)
	o.Tick(base)
	test.That(t, o.Status().Has(StatusMotionEnabled), test.ShouldBeFalse)
}

func TestScheduleCadences(t *testing.T) {
	planner := newStubPlanner(0)
	o, servo, tele := newTestOrchestrator(t, planner)
	o.Enable()

	tickN(o, 2*ticksPerTrajectory)

	planner.mu.Lock()
	periods := append([]time.Duration(nil), planner.periods...)
	planner.mu.Unlock()
	test.That(t, periods, test.ShouldResemble, []time.Duration{200 * time.Millisecond, 200 * time.Millisecond})

	_, advances := servo.snapshot()
	test.That(t, advances, test.ShouldHaveLength, 4)
	test.That(t, advances[0], test.ShouldEqual, 100*time.Millisecond)
	test.That(t, tele.Polls(), test.ShouldEqual, 2)

	// the period handed down follows the measured tick, not the nominal one
	for i := 0; i < ticksPerTrajectory; i++ {
		o.Tick(6 * time.Millisecond)
	}
	planner.mu.Lock()
	last := planner.periods[len(planner.periods)-1]
	planner.mu.Unlock()
	test.That(t, last, test.ShouldEqual, 240*time.Millisecond)

	o.Tick(base)
	status := o.Status()
	test.That(t, status.Has(StatusMotionEnabled|StatusSafeguardEnabled|StatusTrajectoryFinished), test.ShouldBeTrue)
	test.That(t, status.Has(StatusServoConverged), test.ShouldBeTrue)
	test.That(t, status.Has(StatusObstacle), test.ShouldBeFalse)
}

func TestInboxBackpressure(t *testing.T) {
	planner := newStubPlanner(0)
	o, _, _ := newTestOrchestrator(t, planner)

	var want []string
	for i := 0; i < config.DefaultInboxCapacity; i++ {
		cmd := GoLinear{Distance: float64(i)}
		test.That(t, o.Submit(cmd), test.ShouldBeNil)
		want = append(want, cmd.String())
	}
	test.That(t, o.Submit(GoLinear{Distance: 99}), test.ShouldBeError, ErrInboxFull)
	test.That(t, o.Pending(), test.ShouldEqual, config.DefaultInboxCapacity)

	o.Enable()
	// each order takes one advance to dispatch and one to finish
	tickN(o, 3*config.DefaultInboxCapacity*ticksPerTrajectory)
	_, _, orders := planner.snapshot()
	test.That(t, orders, test.ShouldResemble, want)
	test.That(t, o.Pending(), test.ShouldEqual, 0)
}

func TestNoMidFlightOverride(t *testing.T) {
	planner := newStubPlanner(5)
	o, _, _ := newTestOrchestrator(t, planner)
	o.Enable()

	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)
	tickN(o, ticksPerTrajectory)
	_, state, _ := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "go_linear(1.000)")

	test.That(t, o.Submit(GoAngular{Heading: 1}), test.ShouldBeNil)
	for i := 0; i < 4; i++ {
		tickN(o, ticksPerTrajectory)
		_, state, orders := planner.snapshot()
		test.That(t, state, test.ShouldEqual, "go_linear(1.000)")
		test.That(t, orders, test.ShouldHaveLength, 1)
	}
	test.That(t, o.Pending(), test.ShouldEqual, 1)

	tickN(o, 3*ticksPerTrajectory)
	_, state, orders := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "go_angular(1.000)")
	test.That(t, orders, test.ShouldHaveLength, 2)
}

func TestObstacleStop(t *testing.T) {
	planner := newStubPlanner(100)
	logger, logs := logging.NewObservedTestLogger(t)
	tele := telefake.NewTelemeter()
	o, err := New(defaultOptions(), planner, &stubServo{}, tele, logger)
	test.That(t, err, test.ShouldBeNil)
	o.Enable()

	test.That(t, o.Submit(GoToXY{X: 1, Y: 1}), test.ShouldBeNil)
	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)
	tickN(o, ticksPerTrajectory)
	_, state, _ := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "goto_xy(1.000, 1.000)")

	// the obstacle check runs before the trajectory on the same tick
	tele.SetDetected(true)
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "stop")
	test.That(t, logs.FilterMessage("obstacle detected, stopping").Len(), test.ShouldEqual, 1)

	// no order is dispatched while the obstacle is there
	tickN(o, 3*ticksPerTrajectory)
	_, state, orders := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "stop")
	test.That(t, orders, test.ShouldHaveLength, 1)
	o.Tick(base)
	test.That(t, o.Status().Has(StatusObstacle), test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("obstacle detected, stopping").Len(), test.ShouldEqual, 1)

	// the stop is not retried: the queued order resumes once the obstacle clears
	tele.SetDetected(false)
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "go_linear(1.000)")
	o.Tick(base)
	test.That(t, o.Status().Has(StatusObstacle), test.ShouldBeFalse)
}

func TestSafeguardDisabledSkipsObstacleCheck(t *testing.T) {
	planner := newStubPlanner(100)
	o, _, tele := newTestOrchestrator(t, planner)
	o.DisableSafeguard()
	o.Enable()
	tele.SetDetected(true)

	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)
	tickN(o, 2*ticksPerTrajectory)
	_, state, _ := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "go_linear(1.000)")
	test.That(t, tele.Polls(), test.ShouldEqual, 0)
	test.That(t, o.Status().Has(StatusSafeguardEnabled), test.ShouldBeFalse)

	o.EnableSafeguard()
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "stop")
}

func TestStopAndFreewheelRequests(t *testing.T) {
	planner := newStubPlanner(100)
	o, _, _ := newTestOrchestrator(t, planner)
	o.Enable()
	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)
	test.That(t, o.Submit(Keep{}), test.ShouldBeNil)
	tickN(o, ticksPerTrajectory)

	o.Stop()
	_, state, _ := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "go_linear(1.000)")
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "stop")

	// the queued order is dispatched on the next idle tick
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "keep")

	o.Freewheel()
	tickN(o, ticksPerTrajectory)
	_, state, _ = planner.snapshot()
	test.That(t, state, test.ShouldEqual, "free")
}

func TestSubmitValidation(t *testing.T) {
	o, _, _ := newTestOrchestrator(t, newStubPlanner(0))
	test.That(t, o.Submit(PushPath{Points: make([]r2.Point, trajectory.PathCapacity)}), test.ShouldWrap,
		trajectory.ErrPathTooLong)
	test.That(t, o.Submit(PushPath{}), test.ShouldBeError, trajectory.ErrEmptyPath)
	test.That(t, o.Submit(StallX{Mode: trajectory.StallMode(9)}), test.ShouldWrap, trajectory.ErrInvalidStallMode)
	test.That(t, o.Submit(Curve{}), test.ShouldBeError, trajectory.ErrCurveUnsupported)
	test.That(t, o.Pending(), test.ShouldEqual, 0)

	test.That(t, o.Submit(StallY{Mode: trajectory.StallHigh}), test.ShouldBeNil)
	test.That(t, o.Submit(GoAngular{Heading: 1}), test.ShouldBeNil)
	test.That(t, o.ClearInbox(), test.ShouldEqual, 2)
	test.That(t, o.Pending(), test.ShouldEqual, 0)
}

func TestSensorErrorCountsAsObstacle(t *testing.T) {
	planner := newStubPlanner(100)
	o, err := New(defaultOptions(), planner, &stubServo{}, brokenTelemeter{}, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	o.Enable()
	test.That(t, o.Submit(GoLinear{Distance: 1}), test.ShouldBeNil)
	tickN(o, ticksPerTrajectory)
	_, state, orders := planner.snapshot()
	test.That(t, state, test.ShouldEqual, "stop")
	test.That(t, orders, test.ShouldBeEmpty)
}

// TestWithPlanner runs the real planner against the kinematic servo until the order completes.
func TestWithPlanner(t *testing.T) {
	logger := logging.NewTestLogger(t)
	odo := odofake.NewOdometry(odometry.Pose{})
	servo := servofake.NewServo(odo, servofake.DefaultConfig)
	planner := trajectory.NewPlanner(config.Default().Planner, odo, servo, nil, logger)
	o, err := New(defaultOptions(), planner, servo, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	o.Enable()

	test.That(t, o.Submit(GoToXY{X: 0.6, Y: 0.8}), test.ShouldBeNil)
	test.That(t, o.Submit(GoAngular{Heading: 0}), test.ShouldBeNil)

	for i := 0; i < 100*ticksPerTrajectory && (o.Pending() > 0 || !planner.IsFinished()); i++ {
		o.Tick(base)
	}
	test.That(t, o.Pending(), test.ShouldEqual, 0)
	test.That(t, planner.IsFinished(), test.ShouldBeTrue)
	pose := odo.CurrentPose()
	test.That(t, pose.Position.X, test.ShouldAlmostEqual, 0.6, 0.01)
	test.That(t, pose.Position.Y, test.ShouldAlmostEqual, 0.8, 0.01)
	test.That(t, pose.Heading, test.ShouldAlmostEqual, 0, 0.01)
}
