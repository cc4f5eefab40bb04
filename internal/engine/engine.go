// Package engine runs the simulation clock. All vehicle mutation happens on
// the single tick goroutine: manual physics, the orbit autopilot, and any
// control changes submitted by command handlers. Per tick a vehicle is
// advanced by exactly one of the physics controller or the autopilot, so
// latched manual intent can never fight an active orbit.
package engine

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skyward/flightcore/internal/autopilot"
	"github.com/skyward/flightcore/internal/channel"
	"github.com/skyward/flightcore/internal/input"
	"github.com/skyward/flightcore/internal/registry"
	"github.com/skyward/flightcore/internal/sim"
	"github.com/skyward/flightcore/pkg/core"
)

// DefaultTickRate is the simulation frequency in Hz.
const DefaultTickRate = 20.0

// Telemetry receives a snapshot per vehicle per tick. Implemented by
// telemetry.Publisher.
type Telemetry interface {
	Enqueue(core.VehicleState)
}

// Dependencies holds all collaborators for the engine.
type Dependencies struct {
	Fleet     *registry.Fleet
	Orbit     *autopilot.Orbit
	Telemetry Telemetry // may be nil
	Logger    *slog.Logger
}

// Engine advances the fleet at a fixed rate.
type Engine struct {
	deps     Dependencies
	tickRate float64
	dt       float64

	// Control mutations from other goroutines run on the tick goroutine.
	submit channel.Channel[func()]

	mu        sync.RWMutex
	arbiters  map[string]*input.Arbiter
	isRunning bool
	stopChan  chan struct{}
	lastTick  time.Duration
	ticks     uint64
}

// New creates an engine ticking at the given rate in Hz.
func New(deps Dependencies, tickRate float64) *Engine {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Engine{
		deps:     deps,
		tickRate: tickRate,
		dt:       1 / tickRate,
		submit:   channel.New[func()](64),
		arbiters: make(map[string]*input.Arbiter),
		stopChan: make(chan struct{}),
	}
}

// AddPilot registers a vehicle together with its input arbiter.
func (e *Engine) AddPilot(v *sim.Vehicle, arb *input.Arbiter) {
	e.deps.Fleet.Add(v)
	e.mu.Lock()
	e.arbiters[v.Name()] = arb
	e.mu.Unlock()
}

// Arbiter returns the input arbiter for a vehicle.
func (e *Engine) Arbiter(name string) (*input.Arbiter, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	arb, ok := e.arbiters[name]
	return arb, ok
}

// Submit schedules fn on the tick goroutine before the next physics pass.
// Returns false when the control queue is full.
func (e *Engine) Submit(fn func()) bool {
	return e.submit.TrySend(fn)
}

// LastTickDuration returns the wall time of the most recent tick.
func (e *Engine) LastTickDuration() time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastTick
}

// Ticks returns the number of completed ticks.
func (e *Engine) Ticks() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ticks
}

// TickRate returns the configured frequency in Hz.
func (e *Engine) TickRate() float64 {
	return e.tickRate
}

// IsRunning returns whether the tick loop is active.
func (e *Engine) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isRunning
}

// Start launches the tick loop.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return nil
	}
	e.isRunning = true
	e.stopChan = make(chan struct{})
	e.mu.Unlock()

	go func() {
		defer func() {
			e.mu.Lock()
			e.isRunning = false
			e.mu.Unlock()
		}()

		e.deps.Logger.Info("engine started", "tickRate", e.tickRate)

		ticker := time.NewTicker(time.Duration(float64(time.Second) / e.tickRate))
		defer ticker.Stop()

		for {
			select {
			case <-e.stopChan:
				e.deps.Logger.Info("engine stopped", "ticks", e.Ticks())
				return
			case <-ticker.C:
				e.step(e.dt)
			}
		}
	}()

	return nil
}

// Stop halts the tick loop. Vehicles freeze in place until restarted.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.isRunning {
		close(e.stopChan)
	}
}

// StepOnce advances the simulation by a single tick of dt seconds without
// the wall clock. Used by offline replay tooling; the live loop calls the
// same path.
func (e *Engine) StepOnce(dt float64) {
	e.step(dt)
}

// step runs one simulation tick. Control mutations drain first so a
// command recognized between ticks applies atomically before physics.
func (e *Engine) step(dt float64) {
	start := time.Now()

	for {
		select {
		case fn := <-e.submit.Receive():
			fn()
			continue
		default:
		}
		break
	}

	// The autopilot drives its craft; everyone else flies on arbitrated
	// intent.
	if e.deps.Orbit != nil {
		e.deps.Orbit.Update(dt)
	}

	now := time.Now()
	for _, v := range e.deps.Fleet.All() {
		if !e.drives(v) {
			arb, ok := e.Arbiter(v.Name())
			if !ok {
				continue
			}
			v.Update(dt, arb.Snapshot())
		}

		if e.deps.Telemetry != nil {
			s := v.State(now)
			s.OrbitActive = e.drives(v)
			e.deps.Telemetry.Enqueue(s)
		}
	}

	e.mu.Lock()
	e.lastTick = time.Since(start)
	e.ticks++
	e.mu.Unlock()
}

func (e *Engine) drives(v *sim.Vehicle) bool {
	return e.deps.Orbit != nil && e.deps.Orbit.Drives(v)
}
