// Package diagnostics drives the status LEDs and periodic traces from the orchestrator status
// word.
package diagnostics

import (
	"time"

	"go.uber.org/multierr"

	"github.com/fbrobotics/motioncore/components/indicator"
	"github.com/fbrobotics/motioncore/components/odometry"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/motioncontrol"
	"github.com/fbrobotics/motioncore/utils"
)

// Blink periods of the status LEDs.
const (
	AlivePeriod          = 500 * time.Millisecond
	ObstaclePeriod       = 100 * time.Millisecond
	UnarmedPeriod        = 100 * time.Millisecond
	SafeguardOffPeriod   = 200 * time.Millisecond
	MotionDisabledPeriod = 300 * time.Millisecond
)

// StatusSource exposes the orchestrator status word.
type StatusSource interface {
	Status() motioncontrol.StatusWord
}

// PlannerSource exposes the planner introspection used by the motion trace.
type PlannerSource interface {
	CurrentStep() int
	Setpoints() (float64, float64)
}

// LEDs are the four status lights. Any of them may be nil.
type LEDs struct {
	// Alive blinks as long as the service ticks.
	Alive indicator.Indicator
	// Ready is off while the trajectory is finished.
	Ready indicator.Indicator
	// Obstacle blinks while an obstacle is detected.
	Obstacle indicator.Indicator
	// Armed blinks faster the less armed the robot is.
	Armed indicator.Indicator
}

// Service refreshes the LEDs and emits traces once per Tick. Tick is driven by a single loop.
type Service struct {
	logger   logging.Logger
	cfg      config.Diagnostics
	period   time.Duration
	status   StatusSource
	planner  PlannerSource
	odometry odometry.Odometry
	leds     LEDs

	localTime time.Duration
	lastErr   string
}

// New returns a diagnostics service ticked every period. planner and odo are only read when the
// matching trace is configured.
func New(
	cfg config.Diagnostics,
	period time.Duration,
	status StatusSource,
	planner PlannerSource,
	odo odometry.Odometry,
	leds LEDs,
	logger logging.Logger,
) *Service {
	return &Service{
		logger:   logger,
		cfg:      cfg,
		period:   period,
		status:   status,
		planner:  planner,
		odometry: odo,
		leds:     leds,
	}
}

// Tick advances local time by the nominal period so blink phases stay aligned even when a tick
// runs late.
func (s *Service) Tick(_ time.Duration) {
	s.localTime += s.period
	word := s.status.Status()

	err := multierr.Combine(
		s.blink(s.leds.Alive, AlivePeriod),
		s.set(s.leds.Ready, !word.Has(motioncontrol.StatusTrajectoryFinished)),
		s.updateObstacle(word),
		s.updateArmed(word),
	)
	s.report(err)

	if s.cfg.TracesPeriod > 0 && s.localTime%s.cfg.TracesPeriod == 0 {
		s.trace()
	}
}

// LocalTime returns the time accumulated by Tick.
func (s *Service) LocalTime() time.Duration {
	return s.localTime
}

func (s *Service) updateObstacle(word motioncontrol.StatusWord) error {
	if word.Has(motioncontrol.StatusObstacle) {
		return s.blink(s.leds.Obstacle, ObstaclePeriod)
	}
	return s.set(s.leds.Obstacle, true)
}

func (s *Service) updateArmed(word motioncontrol.StatusWord) error {
	enabled := word.Has(motioncontrol.StatusMotionEnabled)
	safeguard := word.Has(motioncontrol.StatusSafeguardEnabled)
	switch {
	case !enabled && !safeguard:
		return s.blink(s.leds.Armed, UnarmedPeriod)
	case !safeguard:
		return s.blink(s.leds.Armed, SafeguardOffPeriod)
	case !enabled:
		return s.blink(s.leds.Armed, MotionDisabledPeriod)
	default:
		return s.set(s.leds.Armed, true)
	}
}

func (s *Service) blink(led indicator.Indicator, every time.Duration) error {
	if led == nil || s.localTime%every != 0 {
		return nil
	}
	return led.Toggle()
}

func (s *Service) set(led indicator.Indicator, on bool) error {
	if led == nil {
		return nil
	}
	return led.Set(on)
}

// report logs LED failures once per distinct error so a dead pin doesn't flood the log.
func (s *Service) report(err error) {
	if err == nil {
		if s.lastErr != "" {
			s.logger.Info("status LEDs recovered")
			s.lastErr = ""
		}
		return
	}
	if msg := err.Error(); msg != s.lastErr {
		s.logger.Warnw("cannot drive status LEDs", "error", err)
		s.lastErr = msg
	}
}

func (s *Service) trace() {
	if s.cfg.TraceEnabled(config.TraceMotion) && s.planner != nil && s.odometry != nil {
		linear, angular := s.planner.Setpoints()
		pose := s.odometry.CurrentPose()
		s.logger.Infow(config.TraceMotion,
			"step", s.planner.CurrentStep(),
			"linear_setpoint", linear,
			"angular_setpoint", angular,
			"linear", pose.Linear,
			"heading", pose.Heading,
		)
	}
	if s.cfg.TraceEnabled(config.TraceOdometry) && s.odometry != nil {
		pose := s.odometry.CurrentPose()
		s.logger.Infow(config.TraceOdometry,
			"x_mm", pose.Position.X*1000,
			"y_mm", pose.Position.Y*1000,
			"heading_deg", utils.RadToDeg(pose.Heading),
		)
	}
}
