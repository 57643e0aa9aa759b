package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"friendsd/internal/platform/middleware"
)

// DefaultQueueSize bounds the events waiting for the worker.
const DefaultQueueSize = 1024

// Publisher queues events for a Worker. Emit never blocks the caller: when
// the queue is full the event is dropped and counted.
type Publisher struct {
	queue   chan Event
	dropped atomic.Int64
	now     func() time.Time
	logger  *slog.Logger
}

type PublisherOption func(*Publisher)

func WithQueueSize(n int) PublisherOption {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan Event, n)
		}
	}
}

func WithClock(now func() time.Time) PublisherOption {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		queue:  make(chan Event, DefaultQueueSize),
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit stamps and queues an event. A nil publisher discards it.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if event.RequestID == "" {
		event.RequestID = middleware.GetRequestID(ctx)
	}
	select {
	case p.queue <- event:
	default:
		p.dropped.Add(1)
		p.logger.WarnContext(ctx, "audit queue full, event dropped", "action", string(event.Action))
	}
}

// Events is the worker's inbox.
func (p *Publisher) Events() <-chan Event {
	return p.queue
}

// Dropped reports how many events were discarded because the queue was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// LogEvent writes a structured log line for event and emits it.
func LogEvent(ctx context.Context, logger *slog.Logger, p *Publisher, event Event) {
	attrs := []any{
		"action", string(event.Action),
		"player_id", event.PlayerID.String(),
	}
	if !event.PeerID.IsNil() {
		attrs = append(attrs, "peer_id", event.PeerID.String())
	}
	if rid := middleware.GetRequestID(ctx); rid != "" {
		attrs = append(attrs, "request_id", rid)
	}
	logger.InfoContext(ctx, "audit", attrs...)
	p.Emit(ctx, event)
}
