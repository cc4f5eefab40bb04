package autopilot

import (
	"math"
	"testing"

	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/pkg/core"
)

// planarFrames uses world axes directly as the ENU frame.
type planarFrames struct{}

func (planarFrames) ENUAt(pos core.Position3D) geo.Frame {
	return geo.Frame{
		Origin: pos,
		X:      core.Position3D{X: 1},
		Y:      core.Position3D{Y: 1},
		Z:      core.Position3D{Z: 1},
	}
}

// fakeCraft records pose writes and motion syncs.
type fakeCraft struct {
	pose        core.Pose
	syncHeading float64
	syncSpeed   float64
	syncs       int
}

func (c *fakeCraft) Pose() core.Pose      { return c.pose }
func (c *fakeCraft) SetPose(p core.Pose)  { c.pose = p }
func (c *fakeCraft) SyncMotion(h, s float64) {
	c.syncHeading = h
	c.syncSpeed = s
	c.syncs++
}

func start(t *testing.T, craft *fakeCraft, p Params) *Orbit {
	t.Helper()
	o := New(planarFrames{})
	if err := o.Start(craft, p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return o
}

func TestStart_InitialAngleFromCraftBearing(t *testing.T) {
	// Craft due north of the center: bearing pi/2 on the circle.
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{Y: 1200}}}
	o := start(t, craft, Params{Radius: 1200, Altitude: 400, Speed: 80})

	angle, ok := o.Angle()
	if !ok {
		t.Fatal("expected an active session")
	}
	if math.Abs(angle-math.Pi/2) > 1e-9 {
		t.Errorf("expected initial angle pi/2, got %f", angle)
	}
}

func TestStart_RejectsBadParams(t *testing.T) {
	o := New(planarFrames{})
	craft := &fakeCraft{}

	if err := o.Start(craft, Params{Radius: 0, Speed: 80}); err == nil {
		t.Error("expected error for zero radius")
	}
	if err := o.Start(craft, Params{Radius: 1200, Speed: 0}); err == nil {
		t.Error("expected error for zero speed")
	}
	if o.Active() {
		t.Error("failed start must not activate a session")
	}
}

func TestUpdate_FullPeriodReturnsToStart(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 1200}}}
	o := start(t, craft, Params{Radius: 1200, Altitude: 400, Speed: 80})

	startAngle, _ := o.Angle()

	circumference := 2 * math.Pi * 1200
	period := circumference / 80

	// One full period in many small steps.
	steps := 1000
	for i := 0; i < steps; i++ {
		o.Update(period / float64(steps))
	}

	angle, _ := o.Angle()
	diff := math.Abs(angle - startAngle)
	if diff > 1e-6 && math.Abs(diff-2*math.Pi) > 1e-6 {
		t.Errorf("one period should return to the start angle: start=%f end=%f", startAngle, angle)
	}
}

func TestUpdate_PoseStaysOnCircle(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 500}}}
	o := start(t, craft, Params{Radius: 500, Speed: 40})

	for i := 0; i < 200; i++ {
		o.Update(0.1)
		r := craft.pose.Position.Norm()
		if math.Abs(r-500) > 1e-6 {
			t.Fatalf("pose left the circle at step %d: radius %f", i, r)
		}
	}
}

func TestUpdate_HeadingTangentToCircle(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 1000}}}
	o := start(t, craft, Params{Radius: 1000, Speed: 50})

	o.Update(0.1)
	angle, _ := o.Angle()
	expected := core.WrapAngle(angle + math.Pi/2)
	if math.Abs(craft.pose.Orientation.Heading-expected) > 1e-9 {
		t.Errorf("heading should lead the radius by a quarter turn: got %f want %f",
			craft.pose.Orientation.Heading, expected)
	}
	if craft.pose.Orientation.Pitch != 0 {
		t.Error("orbit flight holds zero pitch")
	}
	if craft.pose.Orientation.Roll == 0 {
		t.Error("orbit flight holds a constant bank")
	}
}

func TestStart_ReplacesPriorSession(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 800}}}
	o := start(t, craft, Params{Radius: 800, Speed: 40})

	other := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 300}}}
	if err := o.Start(other, Params{Radius: 300, Speed: 20}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if o.Drives(craft) {
		t.Error("new session should displace the old craft")
	}
	if !o.Drives(other) {
		t.Error("new session should drive the new craft")
	}

	before := craft.pose
	o.Update(0.1)
	if craft.pose != before {
		t.Error("displaced craft must no longer be driven")
	}
	if other.pose.Position.Norm() == 0 {
		t.Error("new craft should be driven")
	}
}

func TestStop_Idempotent(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 700}}}
	o := start(t, craft, Params{Radius: 700, Speed: 30})

	o.Stop()
	if o.Active() {
		t.Error("stop should clear the session")
	}
	o.Stop()
	if o.Active() {
		t.Error("second stop should be a safe no-op")
	}
}

func TestStop_SeedsMotionForHandback(t *testing.T) {
	craft := &fakeCraft{pose: core.Pose{Position: core.Position3D{X: 600}}}
	o := start(t, craft, Params{Radius: 600, Speed: 35})

	o.Update(1.0)
	heading := craft.pose.Orientation.Heading
	o.Stop()

	if craft.syncSpeed != 35 {
		t.Errorf("stop should seed the orbit speed, got %f", craft.syncSpeed)
	}
	if math.Abs(craft.syncHeading-heading) > 1e-9 {
		t.Errorf("stop should seed the exit heading, got %f want %f", craft.syncHeading, heading)
	}
}

func TestUpdate_IdleIsNoOp(t *testing.T) {
	o := New(planarFrames{})
	o.Update(0.1) // must not panic

	if _, ok := o.Angle(); ok {
		t.Error("idle autopilot reports no angle")
	}
}
