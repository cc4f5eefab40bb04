// Package autopilot flies a vehicle on a parametric circle around a target
// coordinate. While a session is active the autopilot owns the vehicle's
// pose outright: manual intent may still be latched by input arbitration,
// but the controller's physics update is bypassed until the session stops.
package autopilot

import (
	"fmt"
	"math"
	"sync"

	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/pkg/core"
)

// DefaultBank is the fixed bank angle flown in orbit, leaning into the
// turn. Purely cosmetic; the trajectory is parametric.
const DefaultBank = 0.2

// Craft is the vehicle capability the autopilot drives. Implemented by
// sim.Vehicle.
type Craft interface {
	Pose() core.Pose
	SetPose(core.Pose)
	SyncMotion(heading, speed float64)
}

// FrameProvider supplies the east-north-up frame at the orbit center.
type FrameProvider interface {
	ENUAt(pos core.Position3D) geo.Frame
}

// Params describes one orbit request. Center must already be at the
// desired orbit altitude in the planet frame.
type Params struct {
	Center   core.Position3D
	Radius   float64 // m
	Altitude float64 // m, recorded for status reporting
	Speed    float64 // m/s tangential
	Bank     float64 // rad; zero means DefaultBank
}

type session struct {
	craft   Craft
	enu     geo.Frame
	params  Params
	angVel  float64 // rad/s
	angle   float64 // rad, live parameter
	heading float64
}

// Orbit is the autopilot state machine: Idle until Start, Orbiting until
// Stop. Starting a new session silently replaces any prior one.
type Orbit struct {
	mu      sync.Mutex
	frames  FrameProvider
	session *session
}

// New creates an idle orbit autopilot.
func New(frames FrameProvider) *Orbit {
	return &Orbit{frames: frames}
}

// Start begins orbiting the craft around params.Center. The initial angle
// on the circle is taken from the craft's current bearing off the center,
// so the orbit begins without a visible snap when the craft is already
// nearby.
func (o *Orbit) Start(craft Craft, params Params) error {
	if params.Radius <= 0 {
		return fmt.Errorf("orbit: radius must be positive, got %f", params.Radius)
	}
	if params.Speed <= 0 {
		return fmt.Errorf("orbit: speed must be positive, got %f", params.Speed)
	}
	if params.Bank == 0 {
		params.Bank = DefaultBank
	}

	enu := o.frames.ENUAt(params.Center)
	offset := craft.Pose().Position.Sub(params.Center)
	angle := math.Atan2(enu.Y.Dot(offset), enu.X.Dot(offset))

	craft.SyncMotion(craft.Pose().Orientation.Heading, params.Speed)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.session = &session{
		craft:  craft,
		enu:    enu,
		params: params,
		angVel: params.Speed / params.Radius,
		angle:  core.WrapAngle(angle),
	}
	return nil
}

// Active reports whether a session is running.
func (o *Orbit) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil
}

// Drives reports whether the autopilot currently owns the given craft.
func (o *Orbit) Drives(craft Craft) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session != nil && o.session.craft == craft
}

// Angle returns the live orbit parameter in radians, or false when idle.
func (o *Orbit) Angle() (float64, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return 0, false
	}
	return o.session.angle, true
}

// Update advances the session by dt seconds and overwrites the craft's
// pose with the new point on the circle. No-op while idle.
func (o *Orbit) Update(dt float64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := o.session
	if s == nil {
		return
	}

	s.angle = core.WrapAngle(s.angle + s.angVel*dt)
	sinA, cosA := math.Sincos(s.angle)

	pos := s.enu.Origin.
		Add(s.enu.X.Scale(s.params.Radius * cosA)).
		Add(s.enu.Y.Scale(s.params.Radius * sinA))

	// Tangent of a counterclockwise circle leads the radius by a quarter
	// turn; bank leans into the turn (left side down).
	s.heading = core.WrapAngle(s.angle + math.Pi/2)

	s.craft.SetPose(core.Pose{
		Position: pos,
		Orientation: core.Orientation{
			Heading: s.heading,
			Pitch:   0,
			Roll:    -s.params.Bank,
		},
	})
}

// Stop clears the session and returns control to physics-driven flight.
// The craft's integrator is seeded from the orbit exit state so manual
// updates resume from the current pose. Safe to call repeatedly.
func (o *Orbit) Stop() {
	o.mu.Lock()
	s := o.session
	o.session = nil
	o.mu.Unlock()

	if s != nil {
		s.craft.SyncMotion(s.heading, s.params.Speed)
	}
}
