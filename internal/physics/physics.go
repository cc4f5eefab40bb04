// Package physics integrates pilot intent into smoothed motion deltas.
// The integrator knows nothing about world coordinates; it owns a small
// vehicle-frame motion state and converts an intent snapshot plus a frame
// time into local displacements and attitude. Every controllable quantity
// is split into a target and a smoothed current value so control feel is
// frame-rate independent without PID tuning.
package physics

import (
	"fmt"
	"math"

	"github.com/skyward/flightcore/pkg/core"
)

// verticalResponse is the fixed interpolation factor for vertical velocity.
// Deliberately not scaled by frame time: altitude control must feel
// immediate even at low tick rates.
const verticalResponse = 0.25

// Params is the tuning set for one vehicle class. All fields are required;
// Validate rejects zero values so a missing config key cannot silently
// produce a dead vehicle.
type Params struct {
	MinSpeed        float64 // m/s, airspeed needed before turning has authority
	MaxSpeed        float64 // m/s
	SpeedChangeRate float64 // m/s per second of held throttle
	TurnRate        float64 // rad/s
	ClimbRate       float64 // m/s
	HoverDamping    float64 // 1/s, decay toward rest with no input
	TiltRate        float64 // attitude smoothing rate
	MaxTilt         float64 // rad, roll authority; pitch authority is half
	StrafeSpeed     float64 // m/s lateral translation while strafing

	// RequiresAirspeedToTurn gates yaw on forward speed. Rotorcraft pivot
	// in place; fixed-wing craft need airflow over control surfaces.
	RequiresAirspeedToTurn bool
}

// Validate checks that every required tuning value is usable.
func (p Params) Validate() error {
	checks := []struct {
		name string
		v    float64
	}{
		{"maxSpeed", p.MaxSpeed},
		{"speedChangeRate", p.SpeedChangeRate},
		{"turnRate", p.TurnRate},
		{"climbRate", p.ClimbRate},
		{"hoverDamping", p.HoverDamping},
		{"tiltRate", p.TiltRate},
		{"maxTilt", p.MaxTilt},
	}
	for _, c := range checks {
		if c.v <= 0 {
			return fmt.Errorf("physics params: %s must be positive, got %f", c.name, c.v)
		}
	}
	if p.StrafeSpeed < 0 {
		return fmt.Errorf("physics params: strafeSpeed must not be negative, got %f", p.StrafeSpeed)
	}
	if p.MinSpeed < 0 {
		return fmt.Errorf("physics params: minSpeed must not be negative, got %f", p.MinSpeed)
	}
	if p.MinSpeed >= p.MaxSpeed {
		return fmt.Errorf("physics params: minSpeed %f must be below maxSpeed %f", p.MinSpeed, p.MaxSpeed)
	}
	return nil
}

// State is the integrator's internal motion state. It is owned exclusively
// by one integrator and mutated only by Update.
type State struct {
	CurrentSpeed     float64
	TargetSpeed      float64
	Heading          float64 // rad, wrapped to [0, 2pi)
	Pitch            float64
	Roll             float64
	VerticalVelocity float64
}

// Result carries one tick's local-frame displacements plus the updated
// attitude, for the controller to apply to a world-frame pose.
type Result struct {
	Forward  float64 // m along local forward
	Lateral  float64 // m along local right (strafe)
	Vertical float64 // m along local up
	Heading  float64
	Pitch    float64
	Roll     float64
	Speed    float64
}

// Integrator converts intent snapshots into motion deltas for one vehicle.
type Integrator struct {
	params Params
	state  State
}

// New creates an integrator after validating the class parameters.
func New(params Params) (*Integrator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Integrator{params: params}, nil
}

// State returns a copy of the current motion state.
func (i *Integrator) State() State {
	return i.state
}

// SetHeading seeds the heading, wrapped. Used when control returns from
// the autopilot so integration resumes from the handed-back attitude.
func (i *Integrator) SetHeading(h float64) {
	i.state.Heading = core.WrapAngle(h)
}

// SetSpeed seeds current and target speed, clamped to the envelope.
func (i *Integrator) SetSpeed(speed float64) {
	speed = clamp(speed, 0, i.params.MaxSpeed)
	i.state.CurrentSpeed = speed
	i.state.TargetSpeed = speed
}

// Halt zeroes all motion. Called on collision; the vehicle stops dead.
func (i *Integrator) Halt() {
	i.state.CurrentSpeed = 0
	i.state.TargetSpeed = 0
	i.state.VerticalVelocity = 0
}

// Update advances the motion state by dt seconds under the given intent
// and returns the resulting local-frame deltas. dt must be positive.
func (i *Integrator) Update(dt float64, intent core.Intent) Result {
	p := i.params
	s := &i.state

	// Speed target: explicit override wins, otherwise integrate
	// throttle/brake, otherwise decay toward rest.
	if intent.TargetSpeedSet {
		s.TargetSpeed = clamp(intent.TargetSpeed, 0, p.MaxSpeed)
	} else {
		accel := axis(intent.Throttle, intent.Brake)
		if accel != 0 {
			s.TargetSpeed += accel * p.SpeedChangeRate * dt
		} else {
			s.TargetSpeed *= decayFactor(p.HoverDamping * dt)
		}
		s.TargetSpeed = clamp(s.TargetSpeed, 0, p.MaxSpeed)
	}

	// Rate-limited approach, never a snap.
	s.CurrentSpeed = approach(s.CurrentSpeed, s.TargetSpeed, p.SpeedChangeRate*dt*2)

	// Roll banks into turns and strafes.
	rollIntent := axis(intent.TurnRight || intent.StrafeRight, intent.TurnLeft || intent.StrafeLeft)
	s.Roll = lerp(s.Roll, rollIntent*p.MaxTilt, smoothing(p.TiltRate*dt*10))

	// Yaw. Heading grows counterclockwise, so a left turn is positive.
	turnIntent := axis(intent.TurnLeft, intent.TurnRight)
	if turnIntent != 0 && (!p.RequiresAirspeedToTurn || s.CurrentSpeed > p.MinSpeed) {
		s.Heading = core.WrapAngle(s.Heading + turnIntent*p.TurnRate*dt)
	}

	// Vertical velocity: fast fixed-factor response toward the climb
	// target, plus auto-leveling decay when no climb input is held.
	climbIntent := axis(intent.AltitudeUp, intent.AltitudeDown)
	s.VerticalVelocity = lerp(s.VerticalVelocity, climbIntent*p.ClimbRate, verticalResponse)
	if climbIntent == 0 {
		s.VerticalVelocity *= decayFactor(p.HoverDamping * dt * 3)
	}

	// Pitch: braking raises the nose, throttle drops it. Half the roll
	// authority.
	pitchIntent := axis(intent.Brake, intent.Throttle)
	s.Pitch = lerp(s.Pitch, pitchIntent*p.MaxTilt*0.5, smoothing(p.TiltRate*dt*10))

	strafeIntent := axis(intent.StrafeRight, intent.StrafeLeft)

	return Result{
		Forward:  s.CurrentSpeed * dt,
		Lateral:  strafeIntent * p.StrafeSpeed * dt,
		Vertical: s.VerticalVelocity * dt,
		Heading:  s.Heading,
		Pitch:    s.Pitch,
		Roll:     s.Roll,
		Speed:    s.CurrentSpeed,
	}
}

// axis folds a positive/negative flag pair into a signed unit intent.
func axis(pos, neg bool) float64 {
	var v float64
	if pos {
		v++
	}
	if neg {
		v--
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// approach moves cur toward target by at most maxStep.
func approach(cur, target, maxStep float64) float64 {
	diff := target - cur
	if diff > maxStep {
		return cur + maxStep
	}
	if diff < -maxStep {
		return cur - maxStep
	}
	return target
}

func lerp(cur, target, t float64) float64 {
	return cur + (target-cur)*t
}

// smoothing clamps an interpolation factor so large frame times cannot
// overshoot the target.
func smoothing(t float64) float64 {
	return math.Min(t, 1)
}

// decayFactor returns the per-tick multiplier for exponential decay
// toward zero, floored so a huge dt cannot flip the sign.
func decayFactor(kdt float64) float64 {
	return math.Max(1-kdt, 0)
}
