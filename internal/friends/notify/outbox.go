package notify

import (
	"context"
	"log/slog"
	"sync"

	id "friendsd/pkg/domain"
)

// DefaultCapacity bounds each player's outbox.
const DefaultCapacity = 64

// Outbox keeps undelivered notices per player until the host drains them.
type Outbox struct {
	mu       sync.Mutex
	boxes    map[id.PlayerID]*ring
	capacity int
	logger   *slog.Logger
	// accepts reports whether a player may still receive notices.
	accepts func(id.PlayerID) bool
}

type OutboxOption func(*Outbox)

func WithCapacity(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.capacity = n
		}
	}
}

func WithLogger(logger *slog.Logger) OutboxOption {
	return func(o *Outbox) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecipientCheck drops notices for players that accepts rejects. It is
// consulted under the outbox lock, so a player cleared after going inactive
// cannot get a new outbox from a racing Notify.
func WithRecipientCheck(accepts func(id.PlayerID) bool) OutboxOption {
	return func(o *Outbox) {
		o.accepts = accepts
	}
}

func NewOutbox(opts ...OutboxOption) *Outbox {
	o := &Outbox{
		boxes:    make(map[id.PlayerID]*ring),
		capacity: DefaultCapacity,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Notify queues notice for to, dropping that player's oldest notice when
// the outbox is full. Notices for rejected recipients are discarded.
func (o *Outbox) Notify(ctx context.Context, to id.PlayerID, notice Notice) {
	o.mu.Lock()
	if o.accepts != nil && !o.accepts(to) {
		o.mu.Unlock()
		o.logger.DebugContext(ctx, "notice for inactive player discarded",
			"player_id", to.String(),
			"kind", string(notice.Kind),
		)
		return
	}
	box, ok := o.boxes[to]
	if !ok {
		box = newRing(o.capacity)
		o.boxes[to] = box
	}
	before := box.dropped
	box.push(notice)
	dropped := box.dropped > before
	o.mu.Unlock()

	if dropped {
		o.logger.WarnContext(ctx, "outbox full, dropped oldest notice",
			"player_id", to.String(),
			"kind", string(notice.Kind),
		)
	}
}

// Drain returns and removes every queued notice for player, oldest first.
func (o *Outbox) Drain(player id.PlayerID) []Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	box, ok := o.boxes[player]
	if !ok {
		return nil
	}
	delete(o.boxes, player)
	return box.drain()
}

// Clear discards player's notices.
func (o *Outbox) Clear(player id.PlayerID) {
	o.mu.Lock()
	delete(o.boxes, player)
	o.mu.Unlock()
}

// Len reports how many notices are queued for player.
func (o *Outbox) Len(player id.PlayerID) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if box, ok := o.boxes[player]; ok {
		return box.count
	}
	return 0
}
