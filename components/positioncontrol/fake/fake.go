// Package fake implements a kinematic position servo that moves a fake odometry toward its
// setpoints at bounded speed.
package fake

import (
	"math"
	"sync"
	"time"

	"github.com/fbrobotics/motioncore/components/odometry/fake"
	"github.com/fbrobotics/motioncore/utils"
)

// Config bounds the simulated motion.
type Config struct {
	MaxLinearSpeed   float64 // m/s
	MaxAngularSpeed  float64 // rad/s
	LinearTolerance  float64 // m
	AngularTolerance float64 // rad
}

// DefaultConfig is a slow differential drive robot.
var DefaultConfig = Config{
	MaxLinearSpeed:   0.5,
	MaxAngularSpeed:  math.Pi / 2,
	LinearTolerance:  0.005,
	AngularTolerance: 0.01,
}

// Servo is a fake position servo. Each Advance moves the odometry by at most the configured
// speed times the period on each axis.
type Servo struct {
	mu       sync.Mutex
	cfg      Config
	odometry *fake.Odometry

	enabled         bool
	linearSetpoint  float64
	angularSetpoint float64

	advances int
}

// NewServo returns a disabled servo whose setpoints hold the odometry's current pose.
func NewServo(odo *fake.Odometry, cfg Config) *Servo {
	pose := odo.CurrentPose()
	return &Servo{
		cfg:             cfg,
		odometry:        odo,
		linearSetpoint:  pose.Linear,
		angularSetpoint: pose.Heading,
	}
}

// SetLinearSetpoint sets the linear target.
func (s *Servo) SetLinearSetpoint(meters float64) {
	s.mu.Lock()
	s.linearSetpoint = meters
	s.mu.Unlock()
}

// SetAngularSetpoint sets the heading target.
func (s *Servo) SetAngularSetpoint(radians float64) {
	s.mu.Lock()
	s.angularSetpoint = radians
	s.mu.Unlock()
}

// Setpoints returns the current linear and angular targets.
func (s *Servo) Setpoints() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linearSetpoint, s.angularSetpoint
}

// IsConverged reports whether the odometry is within tolerance of both setpoints.
func (s *Servo) IsConverged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pose := s.odometry.CurrentPose()
	return math.Abs(s.linearSetpoint-pose.Linear) <= s.cfg.LinearTolerance &&
		math.Abs(s.angularSetpoint-pose.Heading) <= s.cfg.AngularTolerance
}

// Enable enables the servo.
func (s *Servo) Enable() {
	s.mu.Lock()
	s.enabled = true
	s.mu.Unlock()
}

// Disable disables the servo.
func (s *Servo) Disable() {
	s.mu.Lock()
	s.enabled = false
	s.mu.Unlock()
}

// Enabled reports whether the servo is holding its setpoints.
func (s *Servo) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Advances returns how many times Advance moved the robot.
func (s *Servo) Advances() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advances
}

// Advance moves the odometry toward the setpoints. A disabled servo does nothing.
func (s *Servo) Advance(period time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	s.advances++
	pose := s.odometry.CurrentPose()
	maxLinear := s.cfg.MaxLinearSpeed * period.Seconds()
	maxAngular := s.cfg.MaxAngularSpeed * period.Seconds()
	s.odometry.Move(
		utils.Clamp(s.linearSetpoint-pose.Linear, -maxLinear, maxLinear),
		utils.Clamp(s.angularSetpoint-pose.Heading, -maxAngular, maxAngular),
	)
}
