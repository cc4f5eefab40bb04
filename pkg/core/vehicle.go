// pkg/core/vehicle.go
package core

import (
	"math"
	"time"
)

// VehicleClass identifies a vehicle's physics class. Each class has its own
// parameter set in configuration; the class also decides turn policy
// (rotorcraft pivot in place, fixed-wing craft need airspeed).
type VehicleClass string

const (
	ClassDrone     VehicleClass = "drone"
	ClassFixedWing VehicleClass = "fixedwing"
)

// Orientation is a vehicle attitude in radians. Heading is measured
// counterclockwise from local east and always wrapped to [0, 2pi).
type Orientation struct {
	Heading float64
	Pitch   float64
	Roll    float64
}

// Pose is a vehicle's world-frame position plus attitude. Exactly one
// writer owns a vehicle's pose at any instant: its controller, or the
// orbit autopilot while a session is active.
type Pose struct {
	Position    Position3D
	Orientation Orientation
}

// WrapAngle normalizes an angle in radians to [0, 2pi).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// VehicleState is a telemetry snapshot of one vehicle at a point in time.
type VehicleState struct {
	Name             string
	Class            VehicleClass
	Time             time.Time
	Position         Position3D
	Heading          float64
	Pitch            float64
	Roll             float64
	Speed            float64
	VerticalVelocity float64
	Crashed          bool
	OrbitActive      bool
}
