package registry

import (
	"sync"

	"github.com/skyward/flightcore/internal/sim"
)

// Fleet caches the live vehicles by name so command handlers avoid a
// registry walk on every recognized utterance. Iteration order is the
// registration order, which keeps tick updates deterministic.
type Fleet struct {
	m        sync.Mutex
	vehicles map[string]*sim.Vehicle
	order    []string
}

func NewFleet() *Fleet {
	return &Fleet{
		vehicles: make(map[string]*sim.Vehicle),
	}
}

func (f *Fleet) Reset() {
	f.m.Lock()
	defer f.m.Unlock()
	f.vehicles = make(map[string]*sim.Vehicle)
	f.order = nil
}

// Add registers a vehicle. Re-adding a name replaces the vehicle but
// keeps its slot in the update order.
func (f *Fleet) Add(v *sim.Vehicle) {
	f.m.Lock()
	defer f.m.Unlock()
	if _, ok := f.vehicles[v.Name()]; !ok {
		f.order = append(f.order, v.Name())
	}
	f.vehicles[v.Name()] = v
}

func (f *Fleet) Get(name string) (*sim.Vehicle, bool) {
	f.m.Lock()
	defer f.m.Unlock()
	v, ok := f.vehicles[name]
	return v, ok
}

func (f *Fleet) Remove(name string) {
	f.m.Lock()
	defer f.m.Unlock()
	if _, ok := f.vehicles[name]; !ok {
		return
	}
	delete(f.vehicles, name)
	for i, n := range f.order {
		if n == name {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
}

// All returns the vehicles in registration order.
func (f *Fleet) All() []*sim.Vehicle {
	f.m.Lock()
	defer f.m.Unlock()
	out := make([]*sim.Vehicle, 0, len(f.order))
	for _, name := range f.order {
		out = append(out, f.vehicles[name])
	}
	return out
}

func (f *Fleet) Len() int {
	f.m.Lock()
	defer f.m.Unlock()
	return len(f.vehicles)
}
