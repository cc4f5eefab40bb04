package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyward/flightcore/internal/physics"
	"github.com/skyward/flightcore/internal/sim"
	"github.com/skyward/flightcore/pkg/core"
)

func testVehicle(t *testing.T, name string) *sim.Vehicle {
	t.Helper()
	v, err := sim.NewVehicle(name, core.ClassDrone, physics.Params{
		MaxSpeed:        50,
		SpeedChangeRate: 10,
		TurnRate:        1.2,
		ClimbRate:       8,
		HoverDamping:    0.6,
		TiltRate:        0.8,
		MaxTilt:         0.5,
	}, core.Pose{}, nil, nil, sim.DefaultCollisionParams())
	require.NoError(t, err)
	return v
}

func TestFleet_AddAndGet(t *testing.T) {
	f := NewFleet()

	v := testVehicle(t, "drone-1")
	f.Add(v)

	got, ok := f.Get("drone-1")
	require.True(t, ok, "expected to find drone-1")
	assert.Same(t, v, got)
}

func TestFleet_Get_NotFound(t *testing.T) {
	f := NewFleet()

	_, ok := f.Get("ghost")
	assert.False(t, ok, "expected not to find unregistered vehicle")
}

func TestFleet_AllKeepsRegistrationOrder(t *testing.T) {
	f := NewFleet()

	names := []string{"c", "a", "b"}
	for _, n := range names {
		f.Add(testVehicle(t, n))
	}

	all := f.All()
	require.Len(t, all, 3)
	for i, v := range all {
		assert.Equal(t, names[i], v.Name())
	}
}

func TestFleet_ReAddReplacesInPlace(t *testing.T) {
	f := NewFleet()
	f.Add(testVehicle(t, "a"))
	f.Add(testVehicle(t, "b"))

	replacement := testVehicle(t, "a")
	f.Add(replacement)

	assert.Equal(t, 2, f.Len())
	all := f.All()
	assert.Same(t, replacement, all[0], "replacement should keep its slot")
}

func TestFleet_Remove(t *testing.T) {
	f := NewFleet()
	f.Add(testVehicle(t, "a"))
	f.Add(testVehicle(t, "b"))

	f.Remove("a")
	assert.Equal(t, 1, f.Len())
	_, ok := f.Get("a")
	assert.False(t, ok)

	// Removing a missing name is a no-op
	f.Remove("ghost")
	assert.Equal(t, 1, f.Len())
}

func TestFleet_Reset(t *testing.T) {
	f := NewFleet()
	f.Add(testVehicle(t, "a"))

	f.Reset()

	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.All())

	f.Add(testVehicle(t, "b"))
	_, ok := f.Get("b")
	assert.True(t, ok, "expected to add after reset")
}

func TestFleet_Concurrent(t *testing.T) {
	f := NewFleet()
	var wg sync.WaitGroup

	vehicles := make([]*sim.Vehicle, 50)
	for i := range vehicles {
		vehicles[i] = testVehicle(t, fmt.Sprintf("v-%d", i))
	}

	for _, v := range vehicles {
		wg.Add(1)
		go func(v *sim.Vehicle) {
			defer wg.Done()
			f.Add(v)
		}(v)
	}
	wg.Wait()

	assert.Equal(t, 50, f.Len())

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			f.Get(fmt.Sprintf("v-%d", i))
		}(i)
	}
	wg.Wait()
}
