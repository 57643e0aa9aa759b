// Package invitation holds outstanding friend invitations in memory. Entries
// are never persisted: a restart drops every pending request.
package invitation

import (
	"sort"
	"sync"
	"time"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
)

// DefaultTTL is how long an invitation stays answerable.
const DefaultTTL = 120 * time.Second

// CreateOutcome is the result of Registry.Create.
type CreateOutcome int

const (
	Created CreateOutcome = iota + 1
	// AlreadySentForward means the same sender already invited the same receiver.
	AlreadySentForward
	// AlreadyReceivedFromTarget means the receiver has an outstanding
	// invitation to the sender.
	AlreadyReceivedFromTarget
)

func (o CreateOutcome) String() string {
	switch o {
	case Created:
		return "created"
	case AlreadySentForward:
		return "already_sent"
	case AlreadyReceivedFromTarget:
		return "already_received"
	default:
		return "unknown"
	}
}

type pair struct {
	sender   id.PlayerID
	receiver id.PlayerID
}

type entry struct {
	inv   models.Invitation
	timer *time.Timer
}

// Registry is the set of outstanding (sender, receiver) invitations.
//
// Expiry is wall-clock driven: each entry owns a cancellable timer. Reads also
// filter by deadline and DeleteExpired sweeps leftovers, so an invitation is
// never observable past its deadline even if a timer runs late.
type Registry struct {
	mu      sync.Mutex
	entries map[pair]*entry
	closed  bool

	ttl      time.Duration
	now      func() time.Time
	onExpire func(models.Invitation)
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithClock injects the time source used for deadlines.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.now = now
		}
	}
}

// WithOnExpire registers a hook called once for every invitation that
// expires, outside the registry lock.
func WithOnExpire(fn func(models.Invitation)) Option {
	return func(r *Registry) {
		r.onExpire = fn
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[pair]*entry),
		ttl:     DefaultTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TTL returns the configured lifetime.
func (r *Registry) TTL() time.Duration { return r.ttl }

// Create registers sender→receiver unless the pair or its reverse is
// outstanding. The returned invitation is only meaningful for Created.
func (r *Registry) Create(sender, receiver id.PlayerID) (CreateOutcome, models.Invitation) {
	var expired []models.Invitation
	defer func() { r.notifyExpired(expired) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	forward := pair{sender: sender, receiver: receiver}
	reverse := pair{sender: receiver, receiver: sender}

	if e, ok := r.liveLocked(forward, now, &expired); ok {
		return AlreadySentForward, e.inv
	}
	if e, ok := r.liveLocked(reverse, now, &expired); ok {
		return AlreadyReceivedFromTarget, e.inv
	}

	inv := models.Invitation{
		Sender:    sender,
		Receiver:  receiver,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}
	r.insertLocked(forward, inv, r.ttl)
	return Created, inv
}

// Restore puts back an invitation previously returned by Take, keeping its
// original deadline. It is a no-op when the invitation has expired or when
// either direction of the pair was created again in the meantime.
func (r *Registry) Restore(inv models.Invitation) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.closed || inv.IsExpiredAt(now) {
		return false
	}
	forward := pair{sender: inv.Sender, receiver: inv.Receiver}
	reverse := pair{sender: inv.Receiver, receiver: inv.Sender}
	if _, ok := r.entries[forward]; ok {
		return false
	}
	if _, ok := r.entries[reverse]; ok {
		return false
	}
	r.insertLocked(forward, inv, inv.ExpiresAt.Sub(now))
	return true
}

// insertLocked stores inv and arms its timer. The timer only removes the
// exact entry it was armed for, so a late timer never deletes a newer
// invitation for the same pair.
func (r *Registry) insertLocked(key pair, inv models.Invitation, after time.Duration) {
	e := &entry{inv: inv}
	r.entries[key] = e
	if r.closed {
		return
	}
	e.timer = time.AfterFunc(after, func() { r.expire(key, e) })
}

func (r *Registry) expire(key pair, e *entry) {
	r.mu.Lock()
	current, ok := r.entries[key]
	if !ok || current != e {
		r.mu.Unlock()
		return
	}
	delete(r.entries, key)
	r.mu.Unlock()

	r.notifyExpired([]models.Invitation{e.inv})
}

// liveLocked returns the entry for key if it has not expired at now. An
// expired entry found on the way is removed and appended to expired.
func (r *Registry) liveLocked(key pair, now time.Time, expired *[]models.Invitation) (*entry, bool) {
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	if e.inv.IsExpiredAt(now) {
		r.deleteLocked(key, e)
		*expired = append(*expired, e.inv)
		return nil, false
	}
	return e, true
}

func (r *Registry) deleteLocked(key pair, e *entry) {
	if e.timer != nil {
		e.timer.Stop()
	}
	delete(r.entries, key)
}

func (r *Registry) notifyExpired(invs []models.Invitation) {
	if r.onExpire == nil {
		return
	}
	for _, inv := range invs {
		r.onExpire(inv)
	}
}

// ListIncoming returns the senders of live invitations to receiver, oldest
// first.
func (r *Registry) ListIncoming(receiver id.PlayerID) []id.PlayerID {
	return r.list(func(p pair) (id.PlayerID, bool) { return p.sender, p.receiver == receiver })
}

// ListOutgoing returns the receivers of live invitations from sender, oldest
// first.
func (r *Registry) ListOutgoing(sender id.PlayerID) []id.PlayerID {
	return r.list(func(p pair) (id.PlayerID, bool) { return p.receiver, p.sender == sender })
}

func (r *Registry) list(match func(pair) (id.PlayerID, bool)) []id.PlayerID {
	r.mu.Lock()
	now := r.now()
	type row struct {
		peer    id.PlayerID
		created time.Time
	}
	var rows []row
	for key, e := range r.entries {
		peer, ok := match(key)
		if !ok || e.inv.IsExpiredAt(now) {
			continue
		}
		rows = append(rows, row{peer: peer, created: e.inv.CreatedAt})
	}
	r.mu.Unlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].created.Equal(rows[j].created) {
			return rows[i].peer.Less(rows[j].peer)
		}
		return rows[i].created.Before(rows[j].created)
	})
	out := make([]id.PlayerID, len(rows))
	for i, row := range rows {
		out[i] = row.peer
	}
	return out
}

// Has reports whether a live sender→receiver invitation exists.
func (r *Registry) Has(sender, receiver id.PlayerID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[pair{sender: sender, receiver: receiver}]
	return ok && !e.inv.IsExpiredAt(r.now())
}

// Remove drops sender→receiver and cancels its timer. Absent pairs are a
// no-op; the result reports whether a live invitation was removed.
func (r *Registry) Remove(sender, receiver id.PlayerID) bool {
	_, ok := r.Take(sender, receiver)
	return ok
}

// Take atomically removes and returns a live sender→receiver invitation.
// Of two concurrent callers at most one gets ok == true.
func (r *Registry) Take(sender, receiver id.PlayerID) (models.Invitation, bool) {
	var expired []models.Invitation
	defer func() { r.notifyExpired(expired) }()

	r.mu.Lock()
	defer r.mu.Unlock()

	key := pair{sender: sender, receiver: receiver}
	e, ok := r.liveLocked(key, r.now(), &expired)
	if !ok {
		return models.Invitation{}, false
	}
	r.deleteLocked(key, e)
	return e.inv, true
}

// DeleteExpired removes every invitation whose deadline is at or before now
// and returns how many were removed.
func (r *Registry) DeleteExpired(now time.Time) int {
	var expired []models.Invitation

	r.mu.Lock()
	for key, e := range r.entries {
		if e.inv.IsExpiredAt(now) {
			r.deleteLocked(key, e)
			expired = append(expired, e.inv)
		}
	}
	r.mu.Unlock()

	r.notifyExpired(expired)
	return len(expired)
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Close stops every timer and drops all entries. Later Creates still work
// but are only expired lazily.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, e := range r.entries {
		r.deleteLocked(key, e)
	}
	r.closed = true
}
