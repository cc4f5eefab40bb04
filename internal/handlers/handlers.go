// Package handlers binds recognized command verbs to flight behavior: it
// translates dispatcher events into input arbitration changes, orbit
// sessions, and place resolutions against the active vehicle.
package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skyward/flightcore/internal/autopilot"
	"github.com/skyward/flightcore/internal/command"
	"github.com/skyward/flightcore/internal/engine"
	"github.com/skyward/flightcore/internal/geo"
	"github.com/skyward/flightcore/internal/input"
	"github.com/skyward/flightcore/internal/locator"
	"github.com/skyward/flightcore/internal/registry"
	"github.com/skyward/flightcore/internal/sim"
	"github.com/skyward/flightcore/pkg/core"
)

// ResolveTimeout bounds one place lookup from a buffered handler.
const ResolveTimeout = 15 * time.Second

// Resolver is the place lookup capability. Implemented by locator.Locator.
type Resolver interface {
	Resolve(ctx context.Context, query string) (locator.Fix, error)
}

// Geodesy is the coordinate capability. Implemented by geo.Ellipsoid.
type Geodesy interface {
	FromGeodetic(g geo.Geodetic) core.Position3D
	ToGeodetic(pos core.Position3D) geo.Geodetic
	BearingTo(from, to core.Position3D) float64
}

// OrbitDefaults tune orbit sessions started by voice command.
type OrbitDefaults struct {
	Radius float64 // m
	Speed  float64 // m/s
	Bank   float64 // rad, zero means autopilot default
}

// Dependencies holds all dependencies needed by handlers.
type Dependencies struct {
	Engine    *engine.Engine
	Fleet     *registry.Fleet
	Orbit     *autopilot.Orbit
	Locator   Resolver
	Geodesy   Geodesy
	Logger    *slog.Logger
	OrbitOpts OrbitDefaults
}

// Service provides handler methods for recognized commands. Commands act
// on the active vehicle, the one the pilot is currently addressing.
type Service struct {
	deps Dependencies

	mu     sync.RWMutex
	active string
}

// NewService creates a new handler service.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// SetActive selects which vehicle subsequent commands address.
func (s *Service) SetActive(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = name
}

// Active returns the addressed vehicle's name.
func (s *Service) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Register installs all verb handlers on the dispatcher. Place commands
// are buffered; geocoding must never block the recognizer.
func (s *Service) Register(d *command.Dispatcher) {
	trigger := func(action input.Action) command.HandlerFunc {
		return func(e command.Event) (any, error) {
			_, arb, err := s.activePilot()
			if err != nil {
				return nil, err
			}
			arb.Trigger(action)
			return nil, nil
		}
	}

	d.Register(command.VerbThrottle, trigger(input.ActionThrottle))
	d.Register(command.VerbBrake, trigger(input.ActionBrake))
	d.Register(command.VerbTurnLeft, trigger(input.ActionTurnLeft))
	d.Register(command.VerbTurnRight, trigger(input.ActionTurnRight))
	d.Register(command.VerbClimb, trigger(input.ActionAltitudeUp))
	d.Register(command.VerbDescend, trigger(input.ActionAltitudeDown))
	d.Register(command.VerbStrafeLeft, trigger(input.ActionStrafeLeft))
	d.Register(command.VerbStrafeRight, trigger(input.ActionStrafeRight))

	d.Register(command.VerbSpeed, s.handleSpeed)
	d.Register(command.VerbClear, s.handleClear)
	d.Register(command.VerbReset, s.handleReset)
	d.Register(command.VerbStatus, s.handleStatus)
	d.Register(command.VerbStopOrbit, s.handleStopOrbit)

	d.Register(command.VerbFlyTo, s.handleFlyTo, command.Buffered(8), command.Logged())
	d.Register(command.VerbOrbit, s.handleOrbit, command.Buffered(8), command.Logged())
}

func (s *Service) activePilot() (*sim.Vehicle, *input.Arbiter, error) {
	name := s.Active()
	if name == "" {
		return nil, nil, fmt.Errorf("no active vehicle selected")
	}
	v, ok := s.deps.Fleet.Get(name)
	if !ok {
		return nil, nil, fmt.Errorf("vehicle %q not registered", name)
	}
	arb, ok := s.deps.Engine.Arbiter(name)
	if !ok {
		return nil, nil, fmt.Errorf("vehicle %q has no input arbiter", name)
	}
	return v, arb, nil
}

func (s *Service) handleSpeed(e command.Event) (any, error) {
	speed, err := command.SpeedArg(e)
	if err != nil {
		return nil, err
	}
	_, arb, err := s.activePilot()
	if err != nil {
		return nil, err
	}
	arb.SetTargetSpeed(speed)
	return speed, nil
}

func (s *Service) handleClear(e command.Event) (any, error) {
	_, arb, err := s.activePilot()
	if err != nil {
		return nil, err
	}
	arb.Clear()
	return nil, nil
}

func (s *Service) handleReset(e command.Event) (any, error) {
	v, _, err := s.activePilot()
	if err != nil {
		return nil, err
	}
	v.ResetCrash()
	s.deps.Logger.Info("crash reset", "vehicle", v.Name())
	return nil, nil
}

func (s *Service) handleStatus(e command.Event) (any, error) {
	v, _, err := s.activePilot()
	if err != nil {
		return nil, err
	}
	return v.State(time.Now()), nil
}

func (s *Service) handleStopOrbit(e command.Event) (any, error) {
	s.deps.Orbit.Stop()
	return nil, nil
}

// handleFlyTo resolves the spoken place and points the vehicle at it,
// holding current altitude and speed.
func (s *Service) handleFlyTo(e command.Event) (any, error) {
	v, _, err := s.activePilot()
	if err != nil {
		return nil, err
	}

	fix, err := s.resolve(e)
	if err != nil {
		return nil, err
	}

	current := v.Pose().Position
	height := s.deps.Geodesy.ToGeodetic(current).Height
	target := s.deps.Geodesy.FromGeodetic(geo.Geodetic{Lon: fix.Lon, Lat: fix.Lat, Height: height})
	bearing := s.deps.Geodesy.BearingTo(current, target)

	speed := v.State(time.Now()).Speed
	s.schedule(func() {
		v.SyncMotion(bearing, speed)
	})

	s.deps.Logger.Info("course set", "vehicle", v.Name(), "place", fix.DisplayName)
	return fix, nil
}

// handleOrbit resolves the spoken place and starts an orbit session
// centered there at the vehicle's current altitude.
func (s *Service) handleOrbit(e command.Event) (any, error) {
	v, _, err := s.activePilot()
	if err != nil {
		return nil, err
	}

	fix, err := s.resolve(e)
	if err != nil {
		return nil, err
	}

	height := s.deps.Geodesy.ToGeodetic(v.Pose().Position).Height
	center := s.deps.Geodesy.FromGeodetic(geo.Geodetic{Lon: fix.Lon, Lat: fix.Lat, Height: height})

	params := autopilot.Params{
		Center:   center,
		Radius:   s.deps.OrbitOpts.Radius,
		Altitude: height,
		Speed:    s.deps.OrbitOpts.Speed,
		Bank:     s.deps.OrbitOpts.Bank,
	}

	// Start takes the session lock, so this is safe against a concurrent
	// tick; the craft switches controllers on the next Update.
	if err := s.deps.Orbit.Start(v, params); err != nil {
		return nil, err
	}

	s.deps.Logger.Info("orbit started",
		"vehicle", v.Name(), "place", fix.DisplayName,
		"radius", params.Radius, "speed", params.Speed)
	return fix, nil
}

func (s *Service) resolve(e command.Event) (locator.Fix, error) {
	place := command.PlaceArg(e)
	if place == "" {
		return locator.Fix{}, fmt.Errorf("no place given")
	}

	ctx, cancel := context.WithTimeout(context.Background(), ResolveTimeout)
	defer cancel()
	return s.deps.Locator.Resolve(ctx, place)
}

// schedule runs fn on the tick goroutine when possible, inline otherwise.
// Both paths are locked; the tick path keeps a control change from
// splitting across a physics update.
func (s *Service) schedule(fn func()) {
	if s.deps.Engine != nil && s.deps.Engine.Submit(fn) {
		return
	}
	fn()
}
