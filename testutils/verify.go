// Package testutils holds helpers shared by the motion stack's tests.
package testutils

import (
	"go.uber.org/goleak"
)

// VerifyTestMain runs the package's tests then fails if any goroutine is left behind, such
// as a control loop that was never stopped.
func VerifyTestMain(m goleak.TestingM) {
	goleak.VerifyTestMain(m,
		// lumberjack starts its mill goroutine on first write and never stops it
		goleak.IgnoreTopFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}
