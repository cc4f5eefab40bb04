// pkg/core/intent.go
package core

// Intent is an immutable snapshot of what the pilot currently wants,
// independent of how it was produced (voice command, held key, touch).
// It is rebuilt wholesale every tick by input arbitration; stale flags
// cannot leak across frames.
type Intent struct {
	Throttle     bool
	Brake        bool
	TurnLeft     bool
	TurnRight    bool
	AltitudeUp   bool
	AltitudeDown bool
	StrafeLeft   bool
	StrafeRight  bool

	// TargetSpeed is an explicit speed override in m/s, valid only when
	// TargetSpeedSet is true. It is clamped to the vehicle's envelope by
	// the integrator.
	TargetSpeed    float64
	TargetSpeedSet bool
}

// Zero reports whether the snapshot carries no input at all.
func (in Intent) Zero() bool {
	return in == Intent{}
}
