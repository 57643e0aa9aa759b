package relationship

import (
	"context"
	"sync"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
)

// InMemoryStore keeps relationship records in a map. Sets are cloned on the
// way in and out so callers never share storage.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.PlayerID]models.RelationshipSet
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.PlayerID]models.RelationshipSet)}
}

func (s *InMemoryStore) Load(ctx context.Context, owner id.PlayerID) (models.RelationshipSet, error) {
	if err := ctx.Err(); err != nil {
		return models.RelationshipSet{}, wrap("load relationships", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.records[owner]
	if !ok {
		set = models.NewRelationshipSet()
		s.records[owner] = set
	}
	return set.Clone(), nil
}

func (s *InMemoryStore) Save(ctx context.Context, owner id.PlayerID, set models.RelationshipSet) error {
	if err := ctx.Err(); err != nil {
		return wrap("save relationships", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[owner] = set.Clone()
	return nil
}

func (s *InMemoryStore) AddEdge(ctx context.Context, owner, peer id.PlayerID) error {
	return s.mutate(ctx, "add edge", owner, func(set *models.RelationshipSet) { set.Add(peer) })
}

func (s *InMemoryStore) RemoveEdge(ctx context.Context, owner, peer id.PlayerID) error {
	return s.mutate(ctx, "remove edge", owner, func(set *models.RelationshipSet) { set.Remove(peer) })
}

func (s *InMemoryStore) mutate(ctx context.Context, op string, owner id.PlayerID, fn func(*models.RelationshipSet)) error {
	if err := ctx.Err(); err != nil {
		return wrap(op, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	set := s.records[owner].Clone()
	fn(&set)
	s.records[owner] = set
	return nil
}

// Ping always succeeds.
func (s *InMemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *InMemoryStore) Close() error { return nil }
