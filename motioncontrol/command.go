package motioncontrol

import (
	"encoding/json"
	"fmt"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/fbrobotics/motioncore/trajectory"
)

// Command is one movement order waiting in the inbox.
type Command interface {
	fmt.Stringer
	// Validate rejects orders the planner would refuse, so that Submit can report them to the
	// producer instead of dropping them at dispatch.
	Validate() error
	dispatch(p Planner) error
}

// GoLinear drives Distance meters along the current heading.
type GoLinear struct {
	Distance float64
}

// GoAngular rotates to the absolute Heading in radians.
type GoAngular struct {
	Heading float64
}

// GoToXY turns toward then drives to the absolute point X, Y in meters.
type GoToXY struct {
	X, Y float64
}

// PushPath follows the waypoints in order.
type PushPath struct {
	Points []r2.Point
}

// StallX calibrates the X axis against a wall.
type StallX struct {
	Mode trajectory.StallMode
}

// StallY calibrates the Y axis against a wall.
type StallY struct {
	Mode trajectory.StallMode
}

// Keep holds the last commanded setpoints.
type Keep struct{}

// Curve is a smooth multi-point path. It is always rejected.
type Curve struct {
	Points []r2.Point
}

func (c GoLinear) Validate() error  { return nil }
func (c GoAngular) Validate() error { return nil }
func (c GoToXY) Validate() error    { return nil }
func (c PushPath) Validate() error  { return trajectory.ValidatePath(c.Points) }
func (c StallX) Validate() error    { return c.Mode.Validate() }
func (c StallY) Validate() error    { return c.Mode.Validate() }
func (c Keep) Validate() error      { return nil }
func (c Curve) Validate() error     { return trajectory.ErrCurveUnsupported }

func (c GoLinear) dispatch(p Planner) error {
	p.GoLinear(c.Distance)
	return nil
}

func (c GoAngular) dispatch(p Planner) error {
	p.GoAngular(c.Heading)
	return nil
}

func (c GoToXY) dispatch(p Planner) error {
	p.GotoXY(c.X, c.Y)
	return nil
}

func (c PushPath) dispatch(p Planner) error { return p.PushPath(c.Points) }
func (c StallX) dispatch(p Planner) error   { return p.StallX(c.Mode) }
func (c StallY) dispatch(p Planner) error   { return p.StallY(c.Mode) }

func (c Keep) dispatch(p Planner) error {
	p.Keep()
	return nil
}

func (c Curve) dispatch(Planner) error { return trajectory.ErrCurveUnsupported }

func (c GoLinear) String() string  { return fmt.Sprintf("go_linear(%.3f)", c.Distance) }
func (c GoAngular) String() string { return fmt.Sprintf("go_angular(%.3f)", c.Heading) }
func (c GoToXY) String() string    { return fmt.Sprintf("goto_xy(%.3f, %.3f)", c.X, c.Y) }
func (c PushPath) String() string  { return fmt.Sprintf("push_path(%d points)", len(c.Points)) }
func (c StallX) String() string    { return fmt.Sprintf("stall_x(%s)", c.Mode) }
func (c StallY) String() string    { return fmt.Sprintf("stall_y(%s)", c.Mode) }
func (c Keep) String() string      { return "keep" }
func (c Curve) String() string     { return fmt.Sprintf("curve(%d points)", len(c.Points)) }

// Order types accepted by ParseCommand.
const (
	OrderGoLinear  = "go_linear"
	OrderGoAngular = "go_angular"
	OrderGotoXY    = "goto_xy"
	OrderPushPath  = "push_path"
	OrderStallX    = "stall_x"
	OrderStallY    = "stall_y"
	OrderKeep      = "keep"
	OrderCurve     = "curve"
)

type wireOrder struct {
	Type     string       `json:"type"`
	Distance *float64     `json:"distance,omitempty"`
	Heading  *float64     `json:"heading,omitempty"`
	X        *float64     `json:"x,omitempty"`
	Y        *float64     `json:"y,omitempty"`
	Points   [][2]float64 `json:"points,omitempty"`
	Mode     string       `json:"mode,omitempty"`
}

func required(order, field string, v *float64) (float64, error) {
	if v == nil {
		return 0, errors.Errorf("%s order requires %q", order, field)
	}
	return *v, nil
}

func toPoints(points [][2]float64) []r2.Point {
	return lo.Map(points, func(p [2]float64, _ int) r2.Point {
		return r2.Point{X: p[0], Y: p[1]}
	})
}

// ParseCommand decodes one JSON order such as {"type":"goto_xy","x":1,"y":0.5}. The returned
// command has not been validated.
func ParseCommand(data []byte) (Command, error) {
	var w wireOrder
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(err, "cannot decode order")
	}
	switch w.Type {
	case OrderGoLinear:
		d, err := required(w.Type, "distance", w.Distance)
		if err != nil {
			return nil, err
		}
		return GoLinear{Distance: d}, nil
	case OrderGoAngular:
		h, err := required(w.Type, "heading", w.Heading)
		if err != nil {
			return nil, err
		}
		return GoAngular{Heading: h}, nil
	case OrderGotoXY:
		x, err := required(w.Type, "x", w.X)
		if err != nil {
			return nil, err
		}
		y, err := required(w.Type, "y", w.Y)
		if err != nil {
			return nil, err
		}
		return GoToXY{X: x, Y: y}, nil
	case OrderPushPath:
		return PushPath{Points: toPoints(w.Points)}, nil
	case OrderStallX, OrderStallY:
		mode, err := trajectory.ParseStallMode(w.Mode)
		if err != nil {
			return nil, err
		}
		if w.Type == OrderStallX {
			return StallX{Mode: mode}, nil
		}
		return StallY{Mode: mode}, nil
	case OrderKeep:
		return Keep{}, nil
	case OrderCurve:
		return Curve{Points: toPoints(w.Points)}, nil
	case "":
		return nil, errors.New(`order requires "type"`)
	default:
		return nil, errors.Errorf("unknown order type %q", w.Type)
	}
}
