package trajectory

import (
	"math"

	"github.com/fbrobotics/motioncore/components/odometry"
)

// Phases of a stall calibration.
const (
	stallRotate = iota + 1
	stallContact
	stallReset
)

// StallX calibrates the X axis and heading against a wall square to the X axis.
func (p *Planner) StallX(mode StallMode) error {
	return p.startStall(StallX, mode, 0)
}

// StallY calibrates the Y axis and heading against a wall square to the Y axis.
func (p *Planner) StallY(mode StallMode) error {
	return p.startStall(StallY, mode, math.Pi/2)
}

func (p *Planner) startStall(state State, mode StallMode, heading float64) error {
	if err := mode.Validate(); err != nil {
		return err
	}
	p.start = p.odometry.CurrentPose()
	p.stallMode = mode
	p.stallHeading = heading
	p.logger.Infow("stall calibration", "state", state, "mode", mode, "start", p.start)
	p.transition(state)
	return nil
}

// advanceStall rotates square to the wall, waits for both contact switches, then resets the
// odometry reference of the calibrated axis and its heading.
func (p *Planner) advanceStall() {
	switch p.step {
	case stallRotate:
		p.servo.SetLinearSetpoint(p.start.Linear)
		p.servo.SetAngularSetpoint(p.stallHeading)
		if p.servo.IsConverged() {
			p.step = stallContact
		}
	case stallContact:
		if p.touching() {
			p.step = stallReset
		}
	}
	if p.step != stallReset {
		return
	}
	if p.state == StallX {
		p.odometry.ResetReference(odometry.AxisX, p.cfg.StallXDatumM)
	} else {
		p.odometry.ResetReference(odometry.AxisY, p.cfg.StallYDatumM)
	}
	p.odometry.ResetReference(odometry.AxisHeading, p.stallHeading)
	p.logger.Infow("stall calibration done", "state", p.state, "pose", p.odometry.CurrentPose())
	p.transition(Free)
}

func (p *Planner) touching() bool {
	if p.contacts == nil {
		return true
	}
	left, right, err := p.contacts.Touching()
	if err != nil {
		p.logger.Warnw("cannot read contact switches", "error", err)
		return false
	}
	return left && right
}
