// Package register registers all component models.
package register

import (
	// register components.
	_ "github.com/fbrobotics/motioncore/components/contact/fake"
	_ "github.com/fbrobotics/motioncore/components/contact/gpio"
	_ "github.com/fbrobotics/motioncore/components/indicator/fake"
	_ "github.com/fbrobotics/motioncore/components/indicator/gpio"
	_ "github.com/fbrobotics/motioncore/components/telemeter/fake"
	_ "github.com/fbrobotics/motioncore/components/telemeter/gpio"
)
