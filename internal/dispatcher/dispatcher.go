package dispatcher

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/planewar/planewar/pkg/protocol"
)

// HandlerFunc processes one decoded message from the peer.
type HandlerFunc func(protocol.Message) error

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// Option configures handler registration.
type Option func(*config)

type config struct {
	logged bool
}

// Logged adds debug logging to the handler.
func Logged() Option {
	return func(c *config) {
		c.logged = true
	}
}

// Dispatcher routes messages to the handler registered for their kind.
// Handlers are registered before the transport starts delivering; Dispatch is then safe to
// call from the read loop.
type Dispatcher struct {
	handlers map[protocol.Kind]HandlerFunc
	logger   Logger

	// OTEL metrics
	processed metric.Int64Counter
	failed    metric.Int64Counter
	unhandled metric.Int64Counter
}

// New creates a new Dispatcher with the given logger.
// Uses the global OTel meter for metrics (no-op if not configured).
func New(logger Logger) (*Dispatcher, error) {
	d := &Dispatcher{
		handlers: make(map[protocol.Kind]HandlerFunc),
		logger:   logger,
	}

	m := meter()

	var err error

	d.processed, err = m.Int64Counter(
		"dispatcher.messages.processed",
		metric.WithDescription("Total peer messages handled"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.failed, err = m.Int64Counter(
		"dispatcher.messages.failed",
		metric.WithDescription("Total peer messages whose handler returned an error"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failed counter: %w", err)
	}

	d.unhandled, err = m.Int64Counter(
		"dispatcher.messages.unhandled",
		metric.WithDescription("Total peer messages with no registered handler"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating unhandled counter: %w", err)
	}

	return d, nil
}

// Register adds a handler for the given message kind with optional configuration.
func (d *Dispatcher) Register(kind protocol.Kind, h HandlerFunc, opts ...Option) {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	handler := d.withMetrics(kind, h)

	if cfg.logged {
		handler = d.withLogging(kind, handler)
	}

	d.handlers[kind] = handler
}

// Dispatch routes a message to its registered handler.
func (d *Dispatcher) Dispatch(m protocol.Message) error {
	if m == nil {
		return fmt.Errorf("dispatch: nil message")
	}
	h, ok := d.handlers[m.Kind()]
	if !ok {
		d.unhandled.Add(context.Background(), 1,
			metric.WithAttributes(attribute.String("kind", m.Kind().String())))
		return fmt.Errorf("no handler for message: %s", m.Kind())
	}
	return h(m)
}

// HasHandler returns true if a handler is registered for the kind.
func (d *Dispatcher) HasHandler(kind protocol.Kind) bool {
	_, ok := d.handlers[kind]
	return ok
}

func (d *Dispatcher) withMetrics(kind protocol.Kind, h HandlerFunc) HandlerFunc {
	kindAttr := metric.WithAttributes(attribute.String("kind", kind.String()))
	return func(m protocol.Message) error {
		err := h(m)
		if err != nil {
			d.failed.Add(context.Background(), 1, kindAttr)
		}
		d.processed.Add(context.Background(), 1, kindAttr)
		return err
	}
}

func (d *Dispatcher) withLogging(kind protocol.Kind, h HandlerFunc) HandlerFunc {
	return func(m protocol.Message) error {
		start := time.Now()
		d.logger.Debug("handling message", "kind", kind.String(), "message", m)

		err := h(m)

		if err != nil {
			d.logger.Error("message failed", "kind", kind.String(), "duration", time.Since(start), "error", err)
		} else {
			d.logger.Debug("message complete", "kind", kind.String(), "duration", time.Since(start))
		}

		return err
	}
}
