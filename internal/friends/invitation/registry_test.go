package invitation

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
	"friendsd/pkg/testutil"
)

type RegistrySuite struct {
	suite.Suite
	clock    *testutil.Clock
	registry *Registry
	expired  atomic.Int32
	alice    id.PlayerID
	bob      id.PlayerID
	carol    id.PlayerID
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.clock = testutil.NewClock(time.Time{})
	s.expired.Store(0)
	s.registry = New(
		WithClock(s.clock.Now),
		WithOnExpire(func(models.Invitation) { s.expired.Add(1) }),
	)
	s.alice, s.bob, s.carol = id.NewPlayerID(), id.NewPlayerID(), id.NewPlayerID()
}

func (s *RegistrySuite) TearDownTest() {
	s.registry.Close()
}

func (s *RegistrySuite) TestCreate() {
	s.Run("first invitation is created with a deadline", func() {
		outcome, inv := s.registry.Create(s.alice, s.bob)
		s.Equal(Created, outcome)
		s.Equal(s.clock.Now(), inv.CreatedAt)
		s.Equal(s.clock.Now().Add(DefaultTTL), inv.ExpiresAt)
		s.True(s.registry.Has(s.alice, s.bob))
	})

	s.Run("same direction again is rejected", func() {
		outcome, _ := s.registry.Create(s.alice, s.bob)
		s.Equal(AlreadySentForward, outcome)
		s.Equal(1, s.registry.Len())
	})

	s.Run("reverse direction is rejected", func() {
		outcome, _ := s.registry.Create(s.bob, s.alice)
		s.Equal(AlreadyReceivedFromTarget, outcome)
		s.False(s.registry.Has(s.bob, s.alice))
	})

	s.Run("unrelated pair is independent", func() {
		outcome, _ := s.registry.Create(s.carol, s.bob)
		s.Equal(Created, outcome)
		s.Equal(2, s.registry.Len())
	})
}

func (s *RegistrySuite) TestExpiryBoundary() {
	s.registry.Create(s.alice, s.bob)

	s.clock.Advance(DefaultTTL - time.Millisecond)
	s.True(s.registry.Has(s.alice, s.bob), "answerable just before the deadline")
	s.Equal([]id.PlayerID{s.alice}, s.registry.ListIncoming(s.bob))

	s.clock.Advance(time.Millisecond)
	s.False(s.registry.Has(s.alice, s.bob), "not answerable at the deadline")
	s.Empty(s.registry.ListIncoming(s.bob))
	s.Empty(s.registry.ListOutgoing(s.alice))

	_, ok := s.registry.Take(s.alice, s.bob)
	s.False(ok)
	s.Equal(int32(1), s.expired.Load())
}

func (s *RegistrySuite) TestExpiredPairCanBeRecreated() {
	s.registry.Create(s.alice, s.bob)
	s.clock.Advance(DefaultTTL)

	outcome, _ := s.registry.Create(s.bob, s.alice)
	s.Equal(Created, outcome, "expired forward invitation no longer blocks the reverse")
	s.Equal(1, s.registry.Len())
	s.Equal(int32(1), s.expired.Load())
}

func (s *RegistrySuite) TestTakeAndRemove() {
	s.Run("take returns the invitation once", func() {
		s.registry.Create(s.alice, s.bob)
		inv, ok := s.registry.Take(s.alice, s.bob)
		s.True(ok)
		s.Equal(s.alice, inv.Sender)
		s.Equal(s.bob, inv.Receiver)

		_, ok = s.registry.Take(s.alice, s.bob)
		s.False(ok)
	})

	s.Run("take is directional", func() {
		s.registry.Create(s.alice, s.carol)
		_, ok := s.registry.Take(s.carol, s.alice)
		s.False(ok)
		s.True(s.registry.Has(s.alice, s.carol))
	})

	s.Run("remove is idempotent", func() {
		s.True(s.registry.Remove(s.alice, s.carol))
		s.False(s.registry.Remove(s.alice, s.carol))
		s.False(s.registry.Remove(s.bob, s.carol))
	})
}

func (s *RegistrySuite) TestRestore() {
	s.registry.Create(s.alice, s.bob)
	inv, ok := s.registry.Take(s.alice, s.bob)
	s.Require().True(ok)

	s.Run("restores with the original deadline", func() {
		s.True(s.registry.Restore(inv))
		got, ok := s.registry.Take(s.alice, s.bob)
		s.True(ok)
		s.Equal(inv.ExpiresAt, got.ExpiresAt)
	})

	s.Run("does not clobber a reverse invitation created meanwhile", func() {
		outcome, _ := s.registry.Create(s.bob, s.alice)
		s.Require().Equal(Created, outcome)
		s.False(s.registry.Restore(inv))
		s.False(s.registry.Has(s.alice, s.bob))
		s.registry.Remove(s.bob, s.alice)
	})

	s.Run("expired invitations stay gone", func() {
		s.clock.Advance(DefaultTTL)
		s.False(s.registry.Restore(inv))
		s.Equal(0, s.registry.Len())
	})
}

func (s *RegistrySuite) TestListsAreOrderedSnapshots() {
	s.registry.Create(s.alice, s.bob)
	s.clock.Advance(time.Second)
	s.registry.Create(s.carol, s.bob)
	s.registry.Create(s.bob, id.NewPlayerID())

	incoming := s.registry.ListIncoming(s.bob)
	s.Equal([]id.PlayerID{s.alice, s.carol}, incoming)

	incoming[0] = s.carol
	s.Equal([]id.PlayerID{s.alice, s.carol}, s.registry.ListIncoming(s.bob))
	s.Len(s.registry.ListOutgoing(s.bob), 1)
}

func (s *RegistrySuite) TestDeleteExpired() {
	s.registry.Create(s.alice, s.bob)
	s.clock.Advance(time.Minute)
	s.registry.Create(s.alice, s.carol)

	s.Equal(0, s.registry.DeleteExpired(s.clock.Now()))
	s.Equal(1, s.registry.DeleteExpired(s.clock.Advance(time.Minute)))
	s.Equal(1, s.registry.Len())
	s.True(s.registry.Has(s.alice, s.carol))
	s.Equal(int32(1), s.expired.Load())
}

func (s *RegistrySuite) TestConcurrentCreateSameDirection() {
	const n = 64
	var created, duplicate atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			switch outcome, _ := s.registry.Create(s.alice, s.bob); outcome {
			case Created:
				created.Add(1)
			case AlreadySentForward:
				duplicate.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.Equal(int32(1), created.Load())
	s.Equal(int32(n-1), duplicate.Load())
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestConcurrentTakeHasOneWinner() {
	s.registry.Create(s.alice, s.bob)

	const n = 32
	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := s.registry.Take(s.alice, s.bob); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	s.Equal(int32(1), winners.Load())
}

func (s *RegistrySuite) TestStaleTimerDoesNotRemoveNewerEntry() {
	s.registry.Create(s.alice, s.bob)
	key := pair{sender: s.alice, receiver: s.bob}

	s.registry.mu.Lock()
	stale := s.registry.entries[key]
	s.registry.mu.Unlock()

	s.registry.Remove(s.alice, s.bob)
	s.registry.Create(s.alice, s.bob)

	s.registry.expire(key, stale)
	s.True(s.registry.Has(s.alice, s.bob))
	s.Equal(int32(0), s.expired.Load())
}

func TestRegistry_TimerExpiresWithoutReads(t *testing.T) {
	var expired atomic.Int32
	r := New(WithTTL(20*time.Millisecond), WithOnExpire(func(models.Invitation) { expired.Add(1) }))
	defer r.Close()

	alice, bob := id.NewPlayerID(), id.NewPlayerID()
	r.Create(alice, bob)

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if r.Len() != 0 {
		t.Fatalf("invitation was not removed by its timer")
	}
	if expired.Load() != 1 {
		t.Fatalf("expected one expiry notification, got %d", expired.Load())
	}
}

func TestRegistry_CloseStopsTimers(t *testing.T) {
	var expired atomic.Int32
	r := New(WithTTL(10*time.Millisecond), WithOnExpire(func(models.Invitation) { expired.Add(1) }))
	r.Create(id.NewPlayerID(), id.NewPlayerID())
	r.Close()

	time.Sleep(40 * time.Millisecond)
	if r.Len() != 0 || expired.Load() != 0 {
		t.Fatalf("closed registry should be empty and silent, len=%d expired=%d", r.Len(), expired.Load())
	}
}

func (s *RegistrySuite) TestTTL() {
	s.Equal(DefaultTTL, s.registry.TTL())

	custom := New(WithClock(s.clock.Now), WithTTL(45*time.Second), WithTTL(0))
	defer custom.Close()
	s.Equal(45*time.Second, custom.TTL(), "non-positive overrides are ignored")

	_, inv := custom.Create(s.alice, s.bob)
	s.Equal(s.clock.Now().Add(custom.TTL()), inv.ExpiresAt)
}
