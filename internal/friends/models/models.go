package models

import (
	"sort"
	"time"

	id "friendsd/pkg/domain"
)

// Identity is a player's durable address plus the name they currently use.
type Identity struct {
	Address     id.PlayerID `json:"address"`
	DisplayName string      `json:"name"`
}

// RelationshipSet is the set of confirmed friends of one player. It is not
// safe for concurrent use; the owning session serializes access.
type RelationshipSet struct {
	peers map[id.PlayerID]struct{}
}

// NewRelationshipSet builds a set from peers, ignoring duplicates and the
// nil address.
func NewRelationshipSet(peers ...id.PlayerID) RelationshipSet {
	s := RelationshipSet{peers: make(map[id.PlayerID]struct{}, len(peers))}
	for _, p := range peers {
		s.Add(p)
	}
	return s
}

// Add inserts peer and reports whether the set changed.
func (s *RelationshipSet) Add(peer id.PlayerID) bool {
	if peer.IsNil() {
		return false
	}
	if s.peers == nil {
		s.peers = make(map[id.PlayerID]struct{})
	}
	if _, ok := s.peers[peer]; ok {
		return false
	}
	s.peers[peer] = struct{}{}
	return true
}

// Remove deletes peer and reports whether the set changed.
func (s *RelationshipSet) Remove(peer id.PlayerID) bool {
	if _, ok := s.peers[peer]; !ok {
		return false
	}
	delete(s.peers, peer)
	return true
}

func (s RelationshipSet) Contains(peer id.PlayerID) bool {
	_, ok := s.peers[peer]
	return ok
}

func (s RelationshipSet) Len() int {
	return len(s.peers)
}

// Slice returns the peers ordered by their string form.
func (s RelationshipSet) Slice() []id.PlayerID {
	out := make([]id.PlayerID, 0, len(s.peers))
	for p := range s.peers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Clone returns an independent copy.
func (s RelationshipSet) Clone() RelationshipSet {
	c := RelationshipSet{peers: make(map[id.PlayerID]struct{}, len(s.peers))}
	for p := range s.peers {
		c.peers[p] = struct{}{}
	}
	return c
}

// Equal reports whether both sets hold the same peers.
func (s RelationshipSet) Equal(other RelationshipSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for p := range s.peers {
		if !other.Contains(p) {
			return false
		}
	}
	return true
}

// Invitation is a directional, time-limited friend request.
type Invitation struct {
	Sender    id.PlayerID `json:"sender"`
	Receiver  id.PlayerID `json:"receiver"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// IsExpiredAt reports whether the invitation can no longer be answered at now.
func (i Invitation) IsExpiredAt(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}

// FriendStatus is one row of a friend listing.
type FriendStatus struct {
	Address     id.PlayerID `json:"address"`
	DisplayName string      `json:"name"`
	Active      bool        `json:"online"`
}

// EdgeOp is a single-edge change applied to one side of a friendship.
type EdgeOp int

const (
	EdgeAdd EdgeOp = iota + 1
	EdgeRemove
)

func (op EdgeOp) String() string {
	switch op {
	case EdgeAdd:
		return "add"
	case EdgeRemove:
		return "remove"
	default:
		return "unknown"
	}
}
