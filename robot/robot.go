// Package robot assembles the motion stack described by a config: components, the trajectory
// planner, the orchestrator and diagnostics, each ticked by its own control loop.
package robot

import (
	"context"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fbrobotics/motioncore/components/contact"
	"github.com/fbrobotics/motioncore/components/indicator"
	fakeodometry "github.com/fbrobotics/motioncore/components/odometry/fake"
	fakeservo "github.com/fbrobotics/motioncore/components/positioncontrol/fake"
	// register all component models.
	_ "github.com/fbrobotics/motioncore/components/register"
	"github.com/fbrobotics/motioncore/components/telemeter"
	"github.com/fbrobotics/motioncore/config"
	"github.com/fbrobotics/motioncore/control"
	"github.com/fbrobotics/motioncore/logging"
	"github.com/fbrobotics/motioncore/motioncontrol"
	"github.com/fbrobotics/motioncore/registry"
	"github.com/fbrobotics/motioncore/services/diagnostics"
	"github.com/fbrobotics/motioncore/trajectory"
	"github.com/fbrobotics/motioncore/utils"
)

// MaxIndicators is how many status LEDs diagnostics drive. Indicators are assigned in config
// order: alive, ready, obstacle, armed.
const MaxIndicators = 4

// Robot owns every part of the motion stack.
type Robot struct {
	logger logging.Logger

	odometry     *fakeodometry.Odometry
	servo        *fakeservo.Servo
	planner      *trajectory.Planner
	orchestrator *motioncontrol.Orchestrator
	diagnostics  *diagnostics.Service

	components map[string]interface{}
	indicators []indicator.Indicator

	mu         sync.Mutex
	motionLoop *control.Loop
	diagLoop   *control.Loop
	running    bool
	closed     bool
}

// New builds a robot from cfg. Nothing runs until Start, and motion stays disabled until
// Enable.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts ...Option) (*Robot, error) {
	var o options
	for _, opt := range opts {
		opt.apply(&o)
	}
	if o.clock == nil {
		o.clock = clock.New()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Robot{
		logger:     logger,
		components: map[string]interface{}{},
	}
	r.odometry = fakeodometry.NewOdometry(o.startPose)
	r.servo = fakeservo.NewServo(r.odometry, fakeservo.DefaultConfig)

	obstacles, contacts, err := r.buildComponents(ctx, cfg.Components)
	if err != nil {
		return nil, multierr.Combine(err, r.closeIndicators())
	}

	r.planner = trajectory.NewPlanner(cfg.Planner, r.odometry, r.servo, contacts, logger.Sublogger("trajectory"))
	r.orchestrator, err = motioncontrol.New(motioncontrol.Options{
		Cadence:       cfg.Cadence,
		InboxCapacity: cfg.InboxCapacity,
		Safeguard:     cfg.Safeguard,
	}, r.planner, r.servo, obstacles, logger.Sublogger("motioncontrol"))
	if err != nil {
		return nil, multierr.Combine(err, r.closeIndicators())
	}

	var leds diagnostics.LEDs
	for idx, led := range r.indicators {
		switch idx {
		case 0:
			leds.Alive = led
		case 1:
			leds.Ready = led
		case 2:
			leds.Obstacle = led
		case 3:
			leds.Armed = led
		}
	}
	r.diagnostics = diagnostics.New(cfg.Diagnostics, cfg.Cadence.Diagnostics, r.orchestrator, r.planner,
		r.odometry, leds, logger.Sublogger("diagnostics"))

	if r.motionLoop, err = control.NewLoop("motion", cfg.Cadence.Base, o.clock, r.orchestrator, logger); err != nil {
		return nil, multierr.Combine(err, r.closeIndicators())
	}
	if r.diagLoop, err = control.NewLoop("diagnostics", cfg.Cadence.Diagnostics, o.clock, r.diagnostics, logger); err != nil {
		return nil, multierr.Combine(err, r.closeIndicators())
	}
	return r, nil
}

func (r *Robot) buildComponents(
	ctx context.Context,
	confs []config.Component,
) (telemeter.Telemeter, contact.Contact, error) {
	var (
		obstacles telemeter.Telemeter
		contacts  contact.Contact
	)
	for _, conf := range confs {
		var (
			built interface{}
			err   error
		)
		switch registry.API(conf.API) {
		case registry.TelemeterAPI:
			if obstacles != nil {
				return nil, nil, errors.Errorf("component %q: only one telemeter is supported", conf.Name)
			}
			obstacles, err = registry.Build[telemeter.Telemeter](ctx, conf, r.logger)
			built = obstacles
		case registry.ContactAPI:
			if contacts != nil {
				return nil, nil, errors.Errorf("component %q: only one contact pair is supported", conf.Name)
			}
			contacts, err = registry.Build[contact.Contact](ctx, conf, r.logger)
			built = contacts
		case registry.IndicatorAPI:
			if len(r.indicators) == MaxIndicators {
				return nil, nil, errors.Errorf("component %q: at most %d indicators are supported", conf.Name, MaxIndicators)
			}
			var led indicator.Indicator
			if led, err = registry.Build[indicator.Indicator](ctx, conf, r.logger); err == nil {
				r.indicators = append(r.indicators, led)
			}
			built = led
		default:
			return nil, nil, errors.Errorf("component %q has unknown api %q", conf.Name, conf.API)
		}
		if err != nil {
			return nil, nil, errors.Wrapf(err, "cannot build component %q", conf.Name)
		}
		r.components[conf.Name] = built
		r.logger.Debugw("component built", "component", conf.String())
	}
	return obstacles, contacts, nil
}

// Start starts the motion and diagnostics loops.
func (r *Robot) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return errors.New("robot is closed")
	}
	if r.running {
		return nil
	}
	if err := r.motionLoop.Start(); err != nil {
		return err
	}
	if err := r.diagLoop.Start(); err != nil {
		r.motionLoop.Stop()
		return err
	}
	r.running = true
	return nil
}

// Stop stops both loops. The robot can be started again.
func (r *Robot) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLoops()
}

func (r *Robot) stopLoops() {
	if !r.running {
		return
	}
	r.motionLoop.Stop()
	r.diagLoop.Stop()
	r.running = false
}

// Enable enables motion.
func (r *Robot) Enable() {
	r.orchestrator.Enable()
}

// Disable disables motion.
func (r *Robot) Disable() {
	r.orchestrator.Disable()
}

// Submit queues an order. It never blocks.
func (r *Robot) Submit(cmd motioncontrol.Command) error {
	return r.orchestrator.Submit(cmd)
}

// Status returns the orchestrator status word.
func (r *Robot) Status() motioncontrol.StatusWord {
	return r.orchestrator.Status()
}

// Orchestrator returns the motion orchestrator.
func (r *Robot) Orchestrator() *motioncontrol.Orchestrator {
	return r.orchestrator
}

// Planner returns the trajectory planner.
func (r *Robot) Planner() *trajectory.Planner {
	return r.planner
}

// Odometry returns the simulated odometry.
func (r *Robot) Odometry() *fakeodometry.Odometry {
	return r.odometry
}

// ComponentByName returns the component built from the config entry with the given name.
func (r *Robot) ComponentByName(name string) (interface{}, error) {
	c, ok := r.components[name]
	if !ok {
		return nil, utils.NewComponentNotFoundError(name)
	}
	return c, nil
}

// ComponentAs returns the named component as a T.
func ComponentAs[T any](r *Robot, name string) (T, error) {
	var zero T
	c, err := r.ComponentByName(name)
	if err != nil {
		return zero, err
	}
	typed, ok := c.(T)
	if !ok {
		return zero, utils.NewUnexpectedTypeError(zero, c)
	}
	return typed, nil
}

// Close stops the loops, disables motion and releases the indicators.
func (r *Robot) Close(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	r.stopLoops()
	r.orchestrator.Disable()
	r.orchestrator.ClearInbox()
	return r.closeIndicators()
}

func (r *Robot) closeIndicators() error {
	var err error
	for _, led := range r.indicators {
		err = multierr.Combine(err, led.Close())
	}
	return err
}
