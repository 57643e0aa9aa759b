// Package registry tracks active players and caches their relationship sets
// while they are online.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"friendsd/internal/friends/metrics"
	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
	pstrings "friendsd/pkg/platform/strings"
)

// Store is the persistence the registry reads on activation and writes on
// deactivation and edge changes.
type Store interface {
	Load(ctx context.Context, owner id.PlayerID) (models.RelationshipSet, error)
	Save(ctx context.Context, owner id.PlayerID, set models.RelationshipSet) error
	AddEdge(ctx context.Context, owner, peer id.PlayerID) error
	RemoveEdge(ctx context.Context, owner, peer id.PlayerID) error
}

// EdgeResult describes what ApplyEdge did.
type EdgeResult struct {
	// Changed is false when the edge was already in the requested state.
	// Inactive owners always report true: the store delta is idempotent.
	Changed bool
	// Active reports whether the owner's cached session was updated.
	Active bool
}

// Registry is the set of active sessions.
type Registry struct {
	store   Store
	locks   *addressLocks
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu       sync.RWMutex
	sessions map[id.PlayerID]*Session
	byName   map[string]id.PlayerID
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// WithStoreTimeout bounds every store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.locks.timeout = d
	}
}

func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		locks:    &addressLocks{timeout: defaultStoreTimeout},
		logger:   slog.New(slog.DiscardHandler),
		sessions: make(map[id.PlayerID]*Session),
		byName:   make(map[string]id.PlayerID),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Activate loads identity's relationships and marks it active. Activating an
// already active address returns the existing session and refreshes its
// display name.
func (r *Registry) Activate(ctx context.Context, identity models.Identity) (*Session, error) {
	if identity.Address.IsNil() {
		r.logger.ErrorContext(ctx, "activation without an address",
			"name", identity.DisplayName,
		)
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "cannot activate an identity without an address")
	}

	var session *Session
	err := r.locks.run(ctx, identity.Address, func(ctx context.Context) error {
		if existing, ok := r.LookupActive(identity.Address); ok {
			r.renameLocked(existing, identity.DisplayName)
			session = existing
			return nil
		}

		set, err := r.store.Load(ctx, identity.Address)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeIdentityLoadFailed, "failed to load relationships")
		}

		session = newSession(identity, set)
		r.mu.Lock()
		r.sessions[identity.Address] = session
		r.indexNameLocked(identity.Address, identity.DisplayName)
		count := len(r.sessions)
		r.mu.Unlock()
		r.metrics.SetActiveIdentities(count)
		return nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "activation failed",
			"player_id", identity.Address.String(),
			"error", err,
		)
		return nil, err
	}
	return session, nil
}

func (r *Registry) renameLocked(session *Session, name string) {
	if name == "" || name == session.DisplayName() {
		return
	}
	r.mu.Lock()
	old := pstrings.FoldKey(session.DisplayName())
	if r.byName[old] == session.Address() {
		delete(r.byName, old)
	}
	r.indexNameLocked(session.Address(), name)
	r.mu.Unlock()
	session.rename(name)
}

func (r *Registry) indexNameLocked(address id.PlayerID, name string) {
	if key := pstrings.FoldKey(name); key != "" {
		r.byName[key] = address
	}
}

// Deactivate persists the session's set and evicts it. A failed persist is
// logged and counted; the session is evicted regardless and nil is returned.
func (r *Registry) Deactivate(ctx context.Context, address id.PlayerID) error {
	ctx = context.WithoutCancel(ctx)
	return r.locks.run(ctx, address, func(ctx context.Context) error {
		session, ok := r.LookupActive(address)
		if !ok {
			return nil
		}

		if err := r.store.Save(ctx, address, session.Friends()); err != nil {
			r.metrics.IncPersistFailure("deactivate")
			r.logger.ErrorContext(ctx, "failed to persist relationships on deactivate",
				"player_id", address.String(),
				"error", err,
			)
		}

		r.mu.Lock()
		delete(r.sessions, address)
		key := pstrings.FoldKey(session.DisplayName())
		if r.byName[key] == address {
			delete(r.byName, key)
		}
		count := len(r.sessions)
		r.mu.Unlock()
		r.metrics.SetActiveIdentities(count)
		return nil
	})
}

// ApplyEdge adds or removes peer in owner's relationship set. For an active
// owner the new set is persisted first and only then published to the
// cache, so a store failure leaves the cache untouched. For an inactive
// owner the single-edge delta goes straight to the store.
func (r *Registry) ApplyEdge(ctx context.Context, owner, peer id.PlayerID, op models.EdgeOp) (EdgeResult, error) {
	var result EdgeResult
	err := r.locks.run(ctx, owner, func(ctx context.Context) error {
		session, active := r.LookupActive(owner)
		if !active {
			result = EdgeResult{Changed: true}
			if op == models.EdgeAdd {
				return r.store.AddEdge(ctx, owner, peer)
			}
			return r.store.RemoveEdge(ctx, owner, peer)
		}

		next := session.Friends()
		var changed bool
		if op == models.EdgeAdd {
			changed = next.Add(peer)
		} else {
			changed = next.Remove(peer)
		}
		result = EdgeResult{Changed: changed, Active: true}
		if !changed {
			return nil
		}
		if err := r.store.Save(ctx, owner, next); err != nil {
			return err
		}
		session.replace(next)
		return nil
	})
	if err != nil {
		return EdgeResult{}, err
	}
	return result, nil
}

// LookupActive returns the session for address if it is active.
func (r *Registry) LookupActive(address id.PlayerID) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[address]
	return s, ok
}

func (r *Registry) IsActive(address id.PlayerID) bool {
	_, ok := r.LookupActive(address)
	return ok
}

// LookupActiveByName finds an active session by display name, ignoring case.
func (r *Registry) LookupActiveByName(name string) (*Session, bool) {
	key := pstrings.FoldKey(name)
	if key == "" {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	address, ok := r.byName[key]
	if !ok {
		return nil, false
	}
	s, ok := r.sessions[address]
	return s, ok
}

func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot lists active identities ordered by display name.
func (r *Registry) Snapshot() []models.Identity {
	r.mu.RLock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	out := make([]models.Identity, len(sessions))
	for i, s := range sessions {
		out[i] = s.Identity()
	}
	sort.Slice(out, func(i, j int) bool {
		return pstrings.FoldKey(out[i].DisplayName) < pstrings.FoldKey(out[j].DisplayName)
	})
	return out
}
