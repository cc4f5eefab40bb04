// Package sim owns the per-vehicle state machine: a world-frame pose fed
// by the physics integrator, terminal collision detection against the
// terrain capability, and the crash/reset lifecycle.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/internal/physics"
	"github.com/skyward/flightcore/pkg/core"
)

// FrameProvider is the geospatial engine capability the controller uses to
// map local-frame displacements into the planet frame.
type FrameProvider interface {
	OrientationToWorld(pos core.Position3D, o core.Orientation) geo.Frame
	LocalUpAt(pos core.Position3D) core.Position3D
	HeightAbove(pos core.Position3D) float64
}

// TerrainQuerier is the terrain/obstacle capability used for collision
// probing.
type TerrainQuerier interface {
	HeightAt(pos core.Position3D) float64
	ClampToSurface(pos core.Position3D) core.Position3D
}

// Status is a vehicle's lifecycle state.
type Status int

const (
	StatusActive Status = iota
	StatusCrashed
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCrashed:
		return "crashed"
	default:
		return "unknown"
	}
}

// CollisionParams tunes the throttled collision probe. The margins are
// empirically tuned per vehicle class, so they are configuration rather
// than constants.
type CollisionParams struct {
	CheckInterval int     // probe every N ticks
	GroundMargin  float64 // m, clearance below which ground contact is a crash
	ProbeDistance float64 // m, forward probe along current heading
	RiseMargin    float64 // m, terrain rise ahead that counts as a wall
}

// DefaultCollisionParams returns the reference tuning.
func DefaultCollisionParams() CollisionParams {
	return CollisionParams{
		CheckInterval: 10,
		GroundMargin:  0.3,
		ProbeDistance: 1.5,
		RiseMargin:    0.5,
	}
}

// Vehicle is one simulated craft. Its pose is written by exactly one of
// {this controller, the orbit autopilot} per tick; the mutex only protects
// cross-goroutine readers like telemetry and the status monitor.
type Vehicle struct {
	name  string
	class core.VehicleClass

	mu             sync.RWMutex
	pose           core.Pose
	status         Status
	ready          bool
	physicsEnabled bool
	ticks          uint64

	integ     *physics.Integrator
	frames    FrameProvider
	terrain   TerrainQuerier
	collision CollisionParams
}

// NewVehicle creates an Active vehicle of the given class at a starting
// pose. frames and terrain may be nil; the vehicle then skips movement or
// collision each tick until the capability appears.
func NewVehicle(
	name string,
	class core.VehicleClass,
	params physics.Params,
	start core.Pose,
	frames FrameProvider,
	terrain TerrainQuerier,
	collision CollisionParams,
) (*Vehicle, error) {
	integ, err := physics.New(params)
	if err != nil {
		return nil, fmt.Errorf("vehicle %q: %w", name, err)
	}
	if collision.CheckInterval <= 0 {
		return nil, fmt.Errorf("vehicle %q: collision check interval must be positive", name)
	}

	integ.SetHeading(start.Orientation.Heading)

	return &Vehicle{
		name:           name,
		class:          class,
		pose:           start,
		status:         StatusActive,
		ready:          true,
		physicsEnabled: true,
		integ:          integ,
		frames:         frames,
		terrain:        terrain,
		collision:      collision,
	}, nil
}

// Name returns the vehicle's identifier.
func (v *Vehicle) Name() string {
	return v.name
}

// Class returns the vehicle's physics class.
func (v *Vehicle) Class() core.VehicleClass {
	return v.class
}

// Pose returns the current world-frame pose.
func (v *Vehicle) Pose() core.Pose {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.pose
}

// SetPose overwrites the pose wholesale. Only the orbit autopilot calls
// this while it owns the vehicle.
func (v *Vehicle) SetPose(p core.Pose) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pose = p
}

// SetReady marks whether the rendering collaborator has the vehicle's
// asset loaded. An unready vehicle skips movement and collision, silently,
// until it becomes ready.
func (v *Vehicle) SetReady(ready bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ready = ready
}

// EnablePhysics toggles the per-tick update without touching pose or
// lifecycle state.
func (v *Vehicle) EnablePhysics(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.physicsEnabled = enabled
}

// Status returns the lifecycle state.
func (v *Vehicle) Status() Status {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.status
}

// IsCrashed reports whether the vehicle hit terrain.
func (v *Vehicle) IsCrashed() bool {
	return v.Status() == StatusCrashed
}

// ResetCrash returns a crashed vehicle to Active. Crashing is terminal
// otherwise; there is no self-recovery.
func (v *Vehicle) ResetCrash() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = StatusActive
}

// SyncMotion seeds the integrator from an externally driven pose so manual
// flight resumes smoothly after the autopilot hands control back.
func (v *Vehicle) SyncMotion(heading, speed float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.integ.SetHeading(heading)
	v.integ.SetSpeed(speed)
}

// Update advances the vehicle by dt seconds under the given intent.
// No-op unless Active, physics-enabled, and ready.
func (v *Vehicle) Update(dt float64, intent core.Intent) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.status != StatusActive || !v.physicsEnabled || !v.ready {
		return
	}

	res := v.integ.Update(dt, intent)
	v.pose.Orientation = core.Orientation{
		Heading: res.Heading,
		Pitch:   res.Pitch,
		Roll:    res.Roll,
	}

	// Without the frame capability the world cannot be moved through;
	// treat as not ready and retry next tick.
	if v.frames == nil {
		return
	}

	body := v.frames.OrientationToWorld(v.pose.Position, v.pose.Orientation)
	horiz := body.TransformVector(core.Position3D{X: res.Lateral, Y: res.Forward})
	vert := v.frames.LocalUpAt(v.pose.Position).Scale(res.Vertical)
	v.pose.Position = v.pose.Position.Add(horiz).Add(vert)

	v.ticks++
	if v.terrain == nil || v.ticks%uint64(v.collision.CheckInterval) != 0 {
		return
	}

	height := v.frames.HeightAbove(v.pose.Position)
	ground := v.terrain.HeightAt(v.pose.Position)
	if height-ground <= v.collision.GroundMargin {
		v.crashLocked()
		return
	}

	// Probe a short distance ahead along the heading: flying into a rise
	// is a crash before the ground check below would see it.
	probe := v.pose.Position.Add(body.Y.Scale(v.collision.ProbeDistance))
	if v.terrain.HeightAt(probe) > height+v.collision.RiseMargin {
		v.crashLocked()
	}
}

func (v *Vehicle) crashLocked() {
	v.status = StatusCrashed
	v.integ.Halt()
}

// State returns a telemetry snapshot of the vehicle.
func (v *Vehicle) State(now time.Time) core.VehicleState {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ms := v.integ.State()
	return core.VehicleState{
		Name:             v.name,
		Class:            v.class,
		Time:             now,
		Position:         v.pose.Position,
		Heading:          v.pose.Orientation.Heading,
		Pitch:            v.pose.Orientation.Pitch,
		Roll:             v.pose.Orientation.Roll,
		Speed:            ms.CurrentSpeed,
		VerticalVelocity: ms.VerticalVelocity,
		Crashed:          v.status == StatusCrashed,
	}
}
