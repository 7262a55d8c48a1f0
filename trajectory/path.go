package trajectory

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// PathCapacity is the size of the waypoint buffer. A path must hold fewer points than this.
const PathCapacity = 10

// Phases of a DrawPlan.
const (
	drawSeed = iota + 1
	drawFollow
	drawLast
	drawFinish
)

// ValidatePath checks a path fits the waypoint buffer.
func ValidatePath(points []r2.Point) error {
	if len(points) == 0 {
		return ErrEmptyPath
	}
	if len(points) >= PathCapacity {
		return errors.Wrapf(ErrPathTooLong, "%d points, capacity %d", len(points), PathCapacity)
	}
	return nil
}

// PushPath replaces the waypoint buffer and follows the path. A rejected path leaves the
// buffer and the active order untouched.
func (p *Planner) PushPath(points []r2.Point) error {
	if err := ValidatePath(points); err != nil {
		return err
	}
	p.count = copy(p.waypoints[:], points)
	p.index = 0
	p.transition(DrawPlan)
	return nil
}

// Waypoints returns a copy of the waypoint buffer.
func (p *Planner) Waypoints() []r2.Point {
	return append([]r2.Point(nil), p.waypoints[:p.count]...)
}

// advanceDrawPlan seeds the path on the first call then evaluates the following phase in the
// same call.
func (p *Planner) advanceDrawPlan() {
	if p.step == drawSeed {
		p.seedPath()
	}
	switch p.step {
	case drawFollow:
		p.followWaypoint()
	case drawLast:
		p.approachLastWaypoint()
	case drawFinish:
		p.finishPath()
	}
	if p.state == DrawPlan {
		p.servo.SetLinearSetpoint(p.linearSetpoint)
		p.servo.SetAngularSetpoint(p.angularSetpoint)
	}
}

func (p *Planner) seedPath() {
	p.index = 0
	if p.count == 1 {
		p.step = drawLast
	} else {
		p.step = drawFollow
	}
}

// followWaypoint moves on to the next waypoint once the current one is within the waypoint
// tolerance.
func (p *Planner) followWaypoint() {
	p.aimAtWaypoint()
	if math.Abs(p.linearNextSetpoint-p.odometry.CurrentLinearPosition()) > p.cfg.WaypointToleranceM {
		return
	}
	p.index++
	p.aimAtWaypoint()
	p.logger.Debugw("next waypoint", "index", p.index, "point", p.waypoints[p.index])
	if p.index >= p.count-1 {
		p.step = drawLast
	}
}

func (p *Planner) approachLastWaypoint() {
	p.aimAtWaypoint()
	if math.Abs(p.linearSetpoint-p.odometry.CurrentLinearPosition()) <= p.cfg.WaypointToleranceM {
		p.step = drawFinish
	}
}

func (p *Planner) finishPath() {
	p.aimAtWaypoint()
	if math.Abs(p.linearSetpoint-p.odometry.CurrentLinearPosition()) <= p.cfg.FinalToleranceM {
		p.transition(Free)
	}
}

// aimAtWaypoint points the setpoints at the current waypoint. The linear setpoint covers the
// whole remaining path; linearNextSetpoint only the distance to the current waypoint.
func (p *Planner) aimAtWaypoint() {
	pose := p.odometry.CurrentPose()
	dist, heading := p.aim(pose, p.waypoints[p.index])
	p.linearNextSetpoint = pose.Linear + dist
	p.linearSetpoint = p.linearNextSetpoint
	p.angularSetpoint = heading
	for i := p.index + 1; i < p.count; i++ {
		p.linearSetpoint += p.waypoints[i].Sub(p.waypoints[i-1]).Norm()
	}
}
