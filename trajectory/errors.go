package trajectory

import "github.com/pkg/errors"

var (
	// ErrEmptyPath is returned when a path holds no waypoint.
	ErrEmptyPath = errors.New("path has no waypoints")
	// ErrPathTooLong is returned when a path does not fit the waypoint buffer.
	ErrPathTooLong = errors.New("path does not fit the waypoint buffer")
	// ErrInvalidStallMode is returned for an unknown stall mode.
	ErrInvalidStallMode = errors.New("invalid stall mode")
	// ErrCurveUnsupported is returned for curve orders, which have no algorithm.
	ErrCurveUnsupported = errors.New("curve trajectories are not supported")
	// ErrDecelerationUnsupported is returned when a decelerating stop is requested. Stop is
	// always instantaneous.
	ErrDecelerationUnsupported = errors.New("decelerating stop is not supported")
)
