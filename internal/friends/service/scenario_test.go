package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"friendsd/internal/audit"
	"friendsd/internal/friends/invitation"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	"friendsd/internal/friends/registry"
	"friendsd/internal/friends/resolver"
	"friendsd/internal/friends/store/relationship"
	id "friendsd/pkg/domain"
	"friendsd/pkg/platform/sentinel"
	pstrings "friendsd/pkg/platform/strings"
	"friendsd/pkg/testutil"
)

// knownPlayers stands in for the remote profile API.
type knownPlayers struct {
	mu    sync.Mutex
	names map[string]id.PlayerID
}

func (k *knownPlayers) add(identity models.Identity) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.names[pstrings.FoldKey(identity.DisplayName)] = identity.Address
}

func (k *knownPlayers) Resolve(_ context.Context, name string) (id.PlayerID, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if address, ok := k.names[pstrings.FoldKey(name)]; ok {
		return address, nil
	}
	return id.NilPlayerID, fmt.Errorf("lookup %q: %w", name, sentinel.ErrNotFound)
}

func (k *knownPlayers) Name(context.Context, id.PlayerID) (string, bool) { return "", false }

type world struct {
	store       *relationship.InMemoryStore
	identities  *registry.Registry
	invitations *invitation.Registry
	outbox      *notify.Outbox
	auditLog    *audit.InMemoryStore
	publisher   *audit.Publisher
	clock       *testutil.Clock
	players     *knownPlayers
	service     *Service
}

func newWorld(t *testing.T) *world {
	t.Helper()
	w := &world{
		store:     relationship.NewInMemory(),
		outbox:    notify.NewOutbox(),
		auditLog:  audit.NewInMemoryStore(),
		publisher: audit.NewPublisher(),
		clock:     testutil.NewClock(time.Time{}),
		players:   &knownPlayers{names: map[string]id.PlayerID{}},
	}
	w.identities = registry.New(w.store)
	w.invitations = invitation.New(invitation.WithClock(w.clock.Now))
	t.Cleanup(w.invitations.Close)
	w.service = New(w.identities, w.invitations, resolver.NewDirectory(w.identities, w.players),
		WithNotifier(w.outbox),
		WithAuditPublisher(w.publisher),
		WithClock(w.clock.Now),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = audit.NewWorker(w.auditLog, w.publisher.Events(), nil).Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func (w *world) player(name string) models.Identity {
	identity := models.Identity{Address: id.NewPlayerID(), DisplayName: name}
	w.players.add(identity)
	return identity
}

func (w *world) friendsOf(t *testing.T, address id.PlayerID) models.RelationshipSet {
	t.Helper()
	if session, ok := w.identities.LookupActive(address); ok {
		return session.Friends()
	}
	set, err := w.store.Load(context.Background(), address)
	require.NoError(t, err)
	return set
}

func kinds(notices []notify.Notice) []notify.Kind {
	out := make([]notify.Kind, len(notices))
	for i, n := range notices {
		out[i] = n.Kind
	}
	return out
}

func TestScenario_InviteAcceptLeaveKick(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	alice, bob := w.player("Alice"), w.player("Bob")

	testutil.Given(t, "alice and bob are online", func(t *testing.T) {
		require.NoError(t, w.service.Joined(ctx, alice))
		require.NoError(t, w.service.Joined(ctx, bob))
	})

	testutil.When(t, "alice invites bob", func(t *testing.T) {
		outcome, err := w.service.Invite(ctx, alice.Address, "bob")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvitationSent, outcome)
	})

	testutil.Then(t, "bob sees the incoming invitation", func(t *testing.T) {
		incoming, _ := w.service.Pending(ctx, bob.Address)
		assert.Equal(t, []id.PlayerID{alice.Address}, incoming)
		assert.Equal(t, []notify.Kind{notify.KindInvitationReceived}, kinds(w.outbox.Drain(bob.Address)))
		assert.Zero(t, w.outbox.Len(alice.Address), "the sender only gets the outcome")
	})

	testutil.When(t, "bob accepts", func(t *testing.T) {
		outcome, err := w.service.AcceptInvite(ctx, bob.Address, "ALICE")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvitationAccepted, outcome)
	})

	testutil.Then(t, "both sets contain each other", func(t *testing.T) {
		assert.True(t, w.friendsOf(t, alice.Address).Contains(bob.Address))
		assert.True(t, w.friendsOf(t, bob.Address).Contains(alice.Address))
		assert.Contains(t, kinds(w.outbox.Drain(alice.Address)), notify.KindInvitationAccepted)
	})

	testutil.When(t, "alice leaves", func(t *testing.T) {
		require.NoError(t, w.service.Left(ctx, alice.Address))
	})

	testutil.Then(t, "alice's set was persisted and bob was told", func(t *testing.T) {
		stored, err := w.store.Load(ctx, alice.Address)
		require.NoError(t, err)
		assert.True(t, stored.Contains(bob.Address))
		assert.Equal(t, []notify.Kind{notify.KindFriendLeft}, kinds(w.outbox.Drain(bob.Address)))
	})

	testutil.When(t, "bob kicks alice while she is offline", func(t *testing.T) {
		outcome, err := w.service.Kick(ctx, bob.Address, "Alice")
		require.NoError(t, err)
		assert.Equal(t, OutcomeFriendRemoved, outcome)
	})

	testutil.Then(t, "neither side remembers the friendship", func(t *testing.T) {
		assert.False(t, w.friendsOf(t, bob.Address).Contains(alice.Address))

		require.NoError(t, w.service.Joined(ctx, alice))
		assert.False(t, w.friendsOf(t, alice.Address).Contains(bob.Address))
		assert.Zero(t, w.outbox.Len(alice.Address), "no friends online to greet")
	})

	testutil.And(t, "the changes were audited", func(t *testing.T) {
		require.Eventually(t, func() bool {
			events, _ := w.auditLog.ListByPlayer(ctx, bob.Address)
			for _, e := range events {
				if e.Action == audit.ActionFriendshipRemoved && e.PeerID == alice.Address {
					return true
				}
			}
			return false
		}, time.Second, 10*time.Millisecond)
	})
}

func TestScenario_RoundTripRestoresFriendship(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	alice, bob := w.player("Alice"), w.player("Bob")
	require.NoError(t, w.service.Joined(ctx, alice))
	require.NoError(t, w.service.Joined(ctx, bob))

	befriend := func(t *testing.T) {
		_, err := w.service.Invite(ctx, alice.Address, "Bob")
		require.NoError(t, err)
		_, err = w.service.AcceptInvite(ctx, bob.Address, "Alice")
		require.NoError(t, err)
	}

	testutil.Given(t, "alice and bob are friends", befriend)

	var original []id.PlayerID
	testutil.When(t, "alice kicks bob and they befriend again", func(t *testing.T) {
		original = w.friendsOf(t, alice.Address).Slice()
		_, err := w.service.Kick(ctx, alice.Address, "Bob")
		require.NoError(t, err)
		assert.Zero(t, w.friendsOf(t, bob.Address).Len())
		befriend(t)
	})

	testutil.Then(t, "the symmetric state is restored", func(t *testing.T) {
		assert.Equal(t, original, w.friendsOf(t, alice.Address).Slice())
		assert.Equal(t, []id.PlayerID{alice.Address}, w.friendsOf(t, bob.Address).Slice())
	})
}

func TestScenario_InvitationExpires(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	alice, bob := w.player("Alice"), w.player("Bob")
	require.NoError(t, w.service.Joined(ctx, alice))
	require.NoError(t, w.service.Joined(ctx, bob))

	testutil.Given(t, "a pending invitation", func(t *testing.T) {
		_, err := w.service.Invite(ctx, alice.Address, "Bob")
		require.NoError(t, err)
	})

	testutil.When(t, "the deadline passes", func(t *testing.T) {
		w.clock.Advance(invitation.DefaultTTL)
	})

	testutil.Then(t, "it can no longer be answered and a new one can be sent", func(t *testing.T) {
		incoming, _ := w.service.Pending(ctx, bob.Address)
		assert.Empty(t, incoming)
		_, err := w.service.AcceptInvite(ctx, bob.Address, "Alice")
		require.Error(t, err)

		outcome, err := w.service.Invite(ctx, bob.Address, "Alice")
		require.NoError(t, err)
		assert.Equal(t, OutcomeInvitationSent, outcome)
	})
}
