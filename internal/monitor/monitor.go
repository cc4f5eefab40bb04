package monitor

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/skyward/flightcore/internal/logging"
	"github.com/skyward/flightcore/internal/registry"
	"github.com/skyward/flightcore/internal/telemetry"
	"github.com/skyward/flightcore/pkg/core"
)

// EngineStats is the part of the simulation loop the monitor reports on.
type EngineStats interface {
	LastTickDuration() time.Duration
	Ticks() uint64
	TickRate() float64
	IsRunning() bool
}

// QueueStats exposes the telemetry backlog depth.
type QueueStats interface {
	Depth() int
}

// PerfWriter receives one performance point per status pass.
type PerfWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Engine     EngineStats
	Fleet      *registry.Fleet
	Queue      QueueStats
	Influx     PerfWriter
	LogManager *logging.SlogManager
	StatusPath string
	Interval   time.Duration
}

// Status is the snapshot written to the status file each pass.
type Status struct {
	Time       time.Time           `json:"time"`
	Running    bool                `json:"running"`
	Ticks      uint64              `json:"ticks"`
	TickRate   float64             `json:"tickRate"`
	LastTickMs float64             `json:"lastTickMs"`
	QueueDepth int                 `json:"queueDepth"`
	Vehicles   []core.VehicleState `json:"vehicles"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus builds the current status snapshot and the matching
// performance point.
func (s *Service) GetStatus() (Status, *influxdb2_write.Point) {
	now := time.Now()

	status := Status{
		Time:     now,
		Running:  s.deps.Engine.IsRunning(),
		Ticks:    s.deps.Engine.Ticks(),
		TickRate: s.deps.Engine.TickRate(),
	}
	tick := s.deps.Engine.LastTickDuration()
	status.LastTickMs = float64(tick.Microseconds()) / 1000

	if s.deps.Queue != nil {
		status.QueueDepth = s.deps.Queue.Depth()
	}

	vehicles := s.deps.Fleet.All()
	status.Vehicles = make([]core.VehicleState, 0, len(vehicles))
	for _, v := range vehicles {
		status.Vehicles = append(status.Vehicles, v.State(now))
	}

	perf := telemetry.PerfPoint(now, tick, len(vehicles), status.QueueDepth)
	return status, perf
}

// Start starts the status monitor goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		logger := s.deps.LogManager.Logger()
		logger.Debug("Starting status monitor goroutine", "function", "startStatusMonitor")

		statusFile, err := os.Create(s.deps.StatusPath)
		if err != nil {
			logger.Error("Error creating status file", "error", err)
		}
		defer statusFile.Close()

		for {
			select {
			case <-s.stopChan:
				return
			default:
				time.Sleep(s.deps.Interval)

				status, perf := s.GetStatus()

				if statusFile != nil {
					body, err := json.MarshalIndent(status, "", "  ")
					if err != nil {
						logger.Error("Error encoding status", "error", err)
						continue
					}
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.Write(append(body, '\n'))
				}

				if s.deps.Influx != nil {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := s.deps.Influx.WritePoint(ctx, telemetry.BucketSimPerformance, perf); err != nil {
						logger.Error("Error writing perf point", "error", err)
					}
					cancel()
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
