// Package indicator defines the status LEDs driven by the diagnostics service.
package indicator

// Indicator is a single on/off light.
type Indicator interface {
	Set(on bool) error
	Toggle() error
	// Close turns the light off.
	Close() error
}
