package registry

import (
	"sync"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
)

// Session is the live, cached state of an active player.
type Session struct {
	address id.PlayerID

	mu          sync.Mutex
	displayName string
	friends     models.RelationshipSet
}

func newSession(identity models.Identity, friends models.RelationshipSet) *Session {
	return &Session{address: identity.Address, displayName: identity.DisplayName, friends: friends}
}

func (s *Session) Address() id.PlayerID { return s.address }

func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

func (s *Session) Identity() models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Identity{Address: s.address, DisplayName: s.displayName}
}

// Friends returns a copy of the cached set.
func (s *Session) Friends() models.RelationshipSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends.Clone()
}

func (s *Session) IsFriend(peer id.PlayerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.friends.Contains(peer)
}

func (s *Session) rename(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.displayName = name
}

func (s *Session) replace(set models.RelationshipSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friends = set
}
