package trajectory

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// State is the mode of the trajectory state machine.
type State int32

// States of the planner. Free and Stop are the idle states.
const (
	Free State = iota
	Linear
	Angular
	Stop
	Keep
	LinearThenAngularPlan
	CurvePlan
	StallX
	StallY
	DrawPlan
)

var stateNames = map[State]string{
	Free:                  "free",
	Linear:                "linear",
	Angular:               "angular",
	Stop:                  "stop",
	Keep:                  "keep",
	LinearThenAngularPlan: "linear_then_angular_plan",
	CurvePlan:             "curve_plan",
	StallX:                "stall_x",
	StallY:                "stall_y",
	DrawPlan:              "draw_plan",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Idle reports whether the state holds no order.
func (s State) Idle() bool {
	return s == Free || s == Stop
}

// StallMode selects which wall the robot backs into during stall calibration.
type StallMode int

// Stall modes. Low is the wall at the low end of the axis, High the opposite wall.
const (
	StallLow StallMode = iota
	StallHigh
)

func (m StallMode) String() string {
	switch m {
	case StallLow:
		return "low"
	case StallHigh:
		return "high"
	default:
		return fmt.Sprintf("stall_mode(%d)", int(m))
	}
}

// Validate returns ErrInvalidStallMode for unknown modes.
func (m StallMode) Validate() error {
	if m != StallLow && m != StallHigh {
		return errors.Wrapf(ErrInvalidStallMode, "mode %d", int(m))
	}
	return nil
}

// ParseStallMode parses "low" or "high".
func ParseStallMode(s string) (StallMode, error) {
	switch strings.ToLower(s) {
	case "low":
		return StallLow, nil
	case "high":
		return StallHigh, nil
	default:
		return 0, errors.Wrapf(ErrInvalidStallMode, "mode %q", s)
	}
}
