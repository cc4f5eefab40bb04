// Package input normalizes heterogeneous trigger sources into the intent
// snapshot the physics integrator consumes. Discrete recognized commands
// (a voice recognizer cannot signal "still held") latch an action for a
// bounded window; physical devices report press/release pairs directly.
// Expiry is a single authoritative timestamp table checked lazily against
// an injected clock, so a cleared timer can never race a fresh trigger.
package input

import (
	"sync"
	"time"

	"github.com/skyward/flightcore/pkg/core"
)

// Action names one controllable input.
type Action string

const (
	ActionThrottle     Action = "throttle"
	ActionBrake        Action = "brake"
	ActionTurnLeft     Action = "turnLeft"
	ActionTurnRight    Action = "turnRight"
	ActionAltitudeUp   Action = "altitudeUp"
	ActionAltitudeDown Action = "altitudeDown"
	ActionStrafeLeft   Action = "strafeLeft"
	ActionStrafeRight  Action = "strafeRight"
)

// DefaultHoldWindow is how long a single discrete trigger keeps an action
// live without re-confirmation.
const DefaultHoldWindow = 3 * time.Second

// Arbiter tracks held actions for one vehicle and produces intent
// snapshots. Trigger ingestion runs serialized with the tick loop, but the
// mutex keeps out-of-band sources (a stdin feed, tests) safe too.
type Arbiter struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time

	expiry   map[Action]time.Time
	physical map[Action]bool

	targetSpeed    float64
	targetSpeedSet bool
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithHoldWindow overrides the expiry window for discrete triggers.
func WithHoldWindow(d time.Duration) Option {
	return func(a *Arbiter) {
		a.window = d
	}
}

// WithClock injects the time source. Tests use a fake monotonic clock.
func WithClock(now func() time.Time) Option {
	return func(a *Arbiter) {
		a.now = now
	}
}

// NewArbiter creates an arbiter with the default window and wall clock.
func NewArbiter(opts ...Option) *Arbiter {
	a := &Arbiter{
		window:   DefaultHoldWindow,
		now:      time.Now,
		expiry:   make(map[Action]time.Time),
		physical: make(map[Action]bool),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Trigger latches an action from a discrete recognition event. Re-triggering
// refreshes the expiry rather than stacking.
func (a *Arbiter) Trigger(action Action) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expiry[action] = a.now().Add(a.window)
}

// SetHeld records a physical press/release. A held key keeps the action
// true regardless of any latched window.
func (a *Arbiter) SetHeld(action Action, pressed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if pressed {
		a.physical[action] = true
	} else {
		delete(a.physical, action)
	}
}

// SetTargetSpeed latches an explicit speed override until Clear.
func (a *Arbiter) SetTargetSpeed(speed float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.targetSpeed = speed
	a.targetSpeedSet = true
}

// Clear drops every latched entry and override immediately. This is the
// single global escape hatch the pilot can always use to regain control.
func (a *Arbiter) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.expiry = make(map[Action]time.Time)
	a.targetSpeed = 0
	a.targetSpeedSet = false
}

// Active reports whether an action is currently intended true: either a
// live latched entry or a physically held key.
func (a *Arbiter) Active(action Action) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.activeLocked(action, a.now())
}

func (a *Arbiter) activeLocked(action Action, now time.Time) bool {
	if a.physical[action] {
		return true
	}
	deadline, ok := a.expiry[action]
	if !ok {
		return false
	}
	if now.After(deadline) {
		delete(a.expiry, action)
		return false
	}
	return true
}

// Snapshot builds the immutable intent for this tick. The snapshot is
// rebuilt wholesale every call; nothing in it aliases arbiter state.
func (a *Arbiter) Snapshot() core.Intent {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	return core.Intent{
		Throttle:       a.activeLocked(ActionThrottle, now),
		Brake:          a.activeLocked(ActionBrake, now),
		TurnLeft:       a.activeLocked(ActionTurnLeft, now),
		TurnRight:      a.activeLocked(ActionTurnRight, now),
		AltitudeUp:     a.activeLocked(ActionAltitudeUp, now),
		AltitudeDown:   a.activeLocked(ActionAltitudeDown, now),
		StrafeLeft:     a.activeLocked(ActionStrafeLeft, now),
		StrafeRight:    a.activeLocked(ActionStrafeRight, now),
		TargetSpeed:    a.targetSpeed,
		TargetSpeedSet: a.targetSpeedSet,
	}
}
