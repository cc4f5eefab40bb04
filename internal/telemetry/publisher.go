package telemetry

import (
	"context"
	"sync"
	"time"

	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"github.com/skyward/flightcore/internal/queue"
	"github.com/skyward/flightcore/pkg/core"
)

// PointWriter is the sink capability. Implemented by Manager.
type PointWriter interface {
	WritePoint(ctx context.Context, bucket string, point *influxdb2_write.Point) error
}

// Publisher batches vehicle snapshots off the tick path. The engine pushes
// into the queue synchronously; this service drains it on its own interval
// so a slow sink never stalls the simulation.
type Publisher struct {
	writer   PointWriter
	states   *queue.Queue[core.VehicleState]
	interval time.Duration
	log      zerolog.Logger

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
}

// NewPublisher creates a publisher draining into the given writer.
func NewPublisher(writer PointWriter, interval time.Duration, log zerolog.Logger) *Publisher {
	return &Publisher{
		writer:   writer,
		states:   queue.New[core.VehicleState](),
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Enqueue records a snapshot for the next flush. Safe from any goroutine.
func (p *Publisher) Enqueue(s core.VehicleState) {
	p.states.Push(s)
}

// Depth returns the number of snapshots waiting to be flushed.
func (p *Publisher) Depth() int {
	return p.states.Len()
}

// IsRunning returns whether the publisher is running.
func (p *Publisher) IsRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isRunning
}

// Start starts the flush goroutine.
func (p *Publisher) Start() error {
	p.mu.Lock()
	if p.isRunning {
		p.mu.Unlock()
		return nil
	}
	p.isRunning = true
	p.stopChan = make(chan struct{})
	p.mu.Unlock()

	go func() {
		defer func() {
			p.mu.Lock()
			p.isRunning = false
			p.mu.Unlock()
		}()

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopChan:
				// Final drain so a clean shutdown loses nothing.
				p.Flush()
				return
			case <-ticker.C:
				p.Flush()
			}
		}
	}()

	return nil
}

// Stop stops the publisher after a final flush.
func (p *Publisher) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.isRunning {
		close(p.stopChan)
	}
}

// Flush writes all queued snapshots to the sink.
func (p *Publisher) Flush() {
	batch := p.states.GetAndEmpty()
	if len(batch) == 0 {
		return
	}

	ctx := context.Background()
	for _, s := range batch {
		if err := p.writer.WritePoint(ctx, BucketFlightState, StatePoint(s)); err != nil {
			p.log.Error().Err(err).Str("vehicle", s.Name).Msg("failed to publish vehicle state")
		}
	}
}
