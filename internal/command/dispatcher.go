// Package command routes recognized pilot utterances to their handlers.
// Recognition runs off the tick path; the dispatcher is the boundary where
// one-shot recognized commands re-enter the simulation, either directly or
// through a buffered queue for handlers that may do slow work (geocoding).
package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Event is one recognized command: a verb plus whatever free text followed
// it ("orbit around", "the old lighthouse").
type Event struct {
	Verb  string
	Args  []string
	Heard time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger is the pluggable logging interface handlers report through.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	bufferSize int
	blocking   bool
	logged     bool
}

// Buffered makes the handler async with a queue of the given size.
func Buffered(size int) Option {
	return func(c *config) {
		c.bufferSize = size
	}
}

// Blocking makes a buffered handler block when the queue is full instead
// of dropping.
func Blocking() Option {
	return func(c *config) {
		c.blocking = true
	}
}

// Logged adds debug logging around the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes events to registered handlers by verb.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	// Track buffers for the gauge callback.
	mu      sync.RWMutex
	buffers map[string]chan Event
}

// New creates a Dispatcher with the given logger. Metrics use the global
// OTel meter, which is a no-op unless configured.
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		buffers:  make(map[string]chan Event),
		logger:   logger,
	}

	m := meter()

	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"command.queue.size",
		metric.WithDescription("Current number of commands queued per verb"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	_, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			d.mu.RLock()
			defer d.mu.RUnlock()
			for verb, buf := range d.buffers {
				o.ObserveInt64(d.queueSize, int64(len(buf)),
					metric.WithAttributes(attribute.String("verb", verb)))
			}
			return nil
		},
		d.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"command.events.processed",
		metric.WithDescription("Total commands processed"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"command.events.dropped",
		metric.WithDescription("Total commands dropped due to a full queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given verb with optional configuration.
func (d *Dispatcher) Register(verb string, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := h

	if cfg.bufferSize > 0 {
		handler = d.withBuffer(verb, cfg.bufferSize, cfg.blocking, handler)
	}

	if cfg.logged {
		handler = d.withLogging(verb, handler)
	}

	d.handlers[verb] = handler
}

// Dispatch routes an event to its registered handler.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	h, ok := d.handlers[e.Verb]
	if !ok {
		return nil, fmt.Errorf("unknown verb: %s", e.Verb)
	}
	return h(e)
}

// HasHandler returns true if a handler is registered for the verb.
func (d *Dispatcher) HasHandler(verb string) bool {
	_, ok := d.handlers[verb]
	return ok
}

func (d *Dispatcher) withBuffer(verb string, size int, blocking bool, h HandlerFunc) HandlerFunc {
	buffer := make(chan Event, size)

	d.mu.Lock()
	d.buffers[verb] = buffer
	d.mu.Unlock()

	verbAttr := attribute.String("verb", verb)

	go func() {
		for e := range buffer {
			h(e)
			d.processed.Add(context.Background(), 1, metric.WithAttributes(verbAttr))
		}
	}()

	if blocking {
		return func(e Event) (any, error) {
			buffer <- e
			return "queued", nil
		}
	}

	return func(e Event) (any, error) {
		select {
		case buffer <- e:
			return "queued", nil
		default:
			d.dropped.Add(context.Background(), 1, metric.WithAttributes(verbAttr))
			return nil, fmt.Errorf("queue full: %s", verb)
		}
	}
}

func (d *Dispatcher) withLogging(verb string, h HandlerFunc) HandlerFunc {
	return func(e Event) (any, error) {
		start := time.Now()
		d.logger.Debug("handling command", "verb", verb, "args", len(e.Args))

		result, err := h(e)

		if err != nil {
			d.logger.Error("command failed", "verb", verb, "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("command complete", "verb", verb, "duration", time.Since(start))
		}

		return result, err
	}
}
