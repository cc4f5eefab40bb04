package input

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func newTestArbiter() (*Arbiter, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	return NewArbiter(WithClock(clock.now)), clock
}

func TestTrigger_ActiveWithinWindow(t *testing.T) {
	a, clock := newTestArbiter()

	a.Trigger(ActionTurnLeft)
	if !a.Active(ActionTurnLeft) {
		t.Error("action should be active immediately after trigger")
	}

	clock.advance(DefaultHoldWindow - time.Millisecond)
	if !a.Active(ActionTurnLeft) {
		t.Error("action should still be active just before the window ends")
	}

	clock.advance(2 * time.Millisecond)
	if a.Active(ActionTurnLeft) {
		t.Error("action should expire after the window")
	}
}

func TestTrigger_RefreshesExpiry(t *testing.T) {
	a, clock := newTestArbiter()

	a.Trigger(ActionThrottle)
	clock.advance(2 * time.Second)
	a.Trigger(ActionThrottle)
	clock.advance(2 * time.Second)

	if !a.Active(ActionThrottle) {
		t.Error("re-trigger should refresh the window, not stack on the old one")
	}
}

func TestClear_DropsEverythingImmediately(t *testing.T) {
	a, _ := newTestArbiter()

	a.Trigger(ActionTurnLeft)
	a.Trigger(ActionAltitudeUp)
	a.SetTargetSpeed(40)

	a.Clear()

	if a.Active(ActionTurnLeft) || a.Active(ActionAltitudeUp) {
		t.Error("clear should drop latched actions regardless of remaining window")
	}
	if in := a.Snapshot(); in.TargetSpeedSet {
		t.Error("clear should drop the speed override")
	}
}

func TestClear_DoesNotReleasePhysicalKeys(t *testing.T) {
	a, _ := newTestArbiter()

	a.SetHeld(ActionBrake, true)
	a.Clear()

	if !a.Active(ActionBrake) {
		t.Error("a physically held key is not a latched entry; clear must not release it")
	}

	a.SetHeld(ActionBrake, false)
	if a.Active(ActionBrake) {
		t.Error("release should deactivate the action")
	}
}

func TestPhysicalHeld_OutlivesWindow(t *testing.T) {
	a, clock := newTestArbiter()

	a.SetHeld(ActionThrottle, true)
	clock.advance(10 * DefaultHoldWindow)

	if !a.Active(ActionThrottle) {
		t.Error("physical hold has no expiry")
	}
}

func TestSnapshot_ReflectsLatchedState(t *testing.T) {
	a, clock := newTestArbiter()

	a.Trigger(ActionTurnRight)
	a.Trigger(ActionAltitudeDown)
	a.SetTargetSpeed(25)

	in := a.Snapshot()
	if !in.TurnRight || !in.AltitudeDown {
		t.Errorf("snapshot missing latched actions: %+v", in)
	}
	if in.TurnLeft || in.Throttle || in.Brake || in.StrafeLeft || in.StrafeRight || in.AltitudeUp {
		t.Errorf("snapshot has spurious actions: %+v", in)
	}
	if !in.TargetSpeedSet || in.TargetSpeed != 25 {
		t.Errorf("snapshot missing speed override: %+v", in)
	}

	clock.advance(DefaultHoldWindow + time.Second)
	in = a.Snapshot()
	if in.TurnRight || in.AltitudeDown {
		t.Error("expired actions must not appear in the snapshot")
	}
	if !in.TargetSpeedSet {
		t.Error("speed override does not expire with the window")
	}
}

func TestWithHoldWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	a := NewArbiter(WithClock(clock.now), WithHoldWindow(500*time.Millisecond))

	a.Trigger(ActionStrafeLeft)
	clock.advance(400 * time.Millisecond)
	if !a.Active(ActionStrafeLeft) {
		t.Error("action should be active within the custom window")
	}
	clock.advance(200 * time.Millisecond)
	if a.Active(ActionStrafeLeft) {
		t.Error("action should expire after the custom window")
	}
}
