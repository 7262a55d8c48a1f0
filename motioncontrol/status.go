package motioncontrol

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// StatusWord aggregates the orchestrator flags read by diagnostics.
type StatusWord uint16

// Status bits.
const (
	StatusMotionEnabled      StatusWord = 1 << 0
	StatusSafeguardEnabled   StatusWord = 1 << 1
	StatusTrajectoryFinished StatusWord = 1 << 8
	StatusObstacle           StatusWord = 1 << 9
	StatusServoConverged     StatusWord = 1 << 10
)

type statusBit struct {
	bit  StatusWord
	name string
}

var statusBits = []statusBit{
	{StatusMotionEnabled, "enabled"},
	{StatusSafeguardEnabled, "safeguard"},
	{StatusTrajectoryFinished, "finished"},
	{StatusObstacle, "obstacle"},
	{StatusServoConverged, "converged"},
}

// Has reports whether every bit of flags is set.
func (s StatusWord) Has(flags StatusWord) bool {
	return s&flags == flags
}

func (s StatusWord) String() string {
	set := lo.FilterMap(statusBits, func(b statusBit, _ int) (string, bool) {
		return b.name, s.Has(b.bit)
	})
	return fmt.Sprintf("0x%04x[%s]", uint16(s), strings.Join(set, "|"))
}
