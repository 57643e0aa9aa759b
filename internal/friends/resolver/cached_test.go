package resolver

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "friendsd/pkg/domain"
	"friendsd/pkg/platform/sentinel"
)

// stubResolver answers from a fixed table and counts calls.
type stubResolver struct {
	mu      sync.Mutex
	players map[string]Profile
	down    bool
	calls   int
}

func (s *stubResolver) Lookup(_ context.Context, name string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.down {
		return Profile{}, fmt.Errorf("stub: %w", sentinel.ErrUnavailable)
	}
	p, ok := s.players[name]
	if !ok {
		return Profile{}, fmt.Errorf("stub %q: %w", name, sentinel.ErrNotFound)
	}
	return p, nil
}

func (s *stubResolver) Resolve(ctx context.Context, name string) (id.PlayerID, error) {
	p, err := s.Lookup(ctx, name)
	return p.ID, err
}

func (s *stubResolver) Name(context.Context, id.PlayerID) (string, bool) { return "", false }

func (s *stubResolver) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type CachedSuite struct {
	suite.Suite
	bob    Profile
	stub   *stubResolver
	cached *Cached
}

func TestCachedSuite(t *testing.T) {
	suite.Run(t, new(CachedSuite))
}

func (s *CachedSuite) SetupTest() {
	s.bob = Profile{ID: id.NewPlayerID(), Name: "Bob"}
	s.stub = &stubResolver{players: map[string]Profile{"bob": s.bob, "BOB": s.bob}}
	s.cached = NewCached(s.stub, time.Minute)
}

func (s *CachedSuite) TestHitsAreServedLocally() {
	ctx := context.Background()

	first, err := s.cached.Resolve(ctx, "bob")
	s.Require().NoError(err)
	second, err := s.cached.Resolve(ctx, "BOB")
	s.Require().NoError(err)

	s.Equal(s.bob.ID, first)
	s.Equal(first, second)
	s.Equal(1, s.stub.callCount())
}

func (s *CachedSuite) TestReverseLookupUsesCanonicalName() {
	ctx := context.Background()
	_, ok := s.cached.Name(ctx, s.bob.ID)
	s.False(ok)

	_, err := s.cached.Resolve(ctx, "bob")
	s.Require().NoError(err)

	name, ok := s.cached.Name(ctx, s.bob.ID)
	s.True(ok)
	s.Equal("Bob", name)
}

func (s *CachedSuite) TestMissesAreNotCached() {
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := s.cached.Resolve(ctx, "carol")
		s.ErrorIs(err, sentinel.ErrNotFound)
	}
	s.Equal(2, s.stub.callCount())
}

func (s *CachedSuite) TestFailuresAreNotCached() {
	ctx := context.Background()
	s.stub.down = true
	_, err := s.cached.Resolve(ctx, "bob")
	s.ErrorIs(err, sentinel.ErrUnavailable)

	s.stub.down = false
	address, err := s.cached.Resolve(ctx, "bob")
	s.Require().NoError(err)
	s.Equal(s.bob.ID, address)
}
