package motioncontrol

import (
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"github.com/fbrobotics/motioncore/trajectory"
)

func TestParseCommand(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Command
	}{
		{`{"type":"go_linear","distance":0.5}`, GoLinear{Distance: 0.5}},
		{`{"type":"go_linear","distance":0}`, GoLinear{}},
		{`{"type":"go_angular","heading":-1.57}`, GoAngular{Heading: -1.57}},
		{`{"type":"goto_xy","x":1,"y":0.25}`, GoToXY{X: 1, Y: 0.25}},
		{`{"type":"push_path","points":[[1,0],[1,1]]}`, PushPath{Points: []r2.Point{{X: 1}, {X: 1, Y: 1}}}},
		{`{"type":"stall_x","mode":"low"}`, StallX{Mode: trajectory.StallLow}},
		{`{"type":"stall_y","mode":"high"}`, StallY{Mode: trajectory.StallHigh}},
		{`{"type":"keep"}`, Keep{}},
	} {
		cmd, err := ParseCommand([]byte(tc.in))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, cmd, test.ShouldResemble, tc.want)
		test.That(t, cmd.Validate(), test.ShouldBeNil)
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, tc := range []struct {
		in  string
		err string
	}{
		{`{"type":"go_linear"}`, `go_linear order requires "distance"`},
		{`{"type":"goto_xy","x":1}`, `goto_xy order requires "y"`},
		{`{"type":"stall_x","mode":"sideways"}`, `mode "sideways": invalid stall mode`},
		{`{"type":"teleport"}`, `unknown order type "teleport"`},
		{`{"distance":1}`, `order requires "type"`},
	} {
		_, err := ParseCommand([]byte(tc.in))
		test.That(t, err, test.ShouldBeError, tc.err)
	}

	_, err := ParseCommand([]byte(`{"type":`))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode order")

	cmd, err := ParseCommand([]byte(`{"type":"curve","points":[[0,1]]}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cmd.Validate(), test.ShouldBeError, trajectory.ErrCurveUnsupported)
	test.That(t, cmd.String(), test.ShouldEqual, "curve(1 points)")
}

func TestStatusWord(t *testing.T) {
	s := StatusMotionEnabled | StatusTrajectoryFinished | StatusObstacle
	test.That(t, s.Has(StatusMotionEnabled|StatusObstacle), test.ShouldBeTrue)
	test.That(t, s.Has(StatusSafeguardEnabled), test.ShouldBeFalse)
	test.That(t, s.String(), test.ShouldEqual, "0x0301[enabled|finished|obstacle]")
	test.That(t, StatusWord(0).String(), test.ShouldEqual, "0x0000[]")
}
