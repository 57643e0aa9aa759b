package service

import (
	"context"

	"friendsd/internal/audit"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	id "friendsd/pkg/domain"
)

// Joined activates identity and tells its online friends.
func (s *Service) Joined(ctx context.Context, identity models.Identity) error {
	const op = "joined"
	ctx, span := s.startSpan(ctx, op, identity.Address)
	defer span.End()

	session, err := s.identities.Activate(ctx, identity)
	if err != nil {
		return s.fail(ctx, span, op, err)
	}
	for _, peer := range session.Friends().Slice() {
		s.notifyIfActive(ctx, peer, notify.KindFriendJoined, session)
	}
	s.emit(ctx, audit.ActionIdentityJoined, identity.Address, id.NilPlayerID)
	return nil
}

type outboxClearer interface {
	Clear(player id.PlayerID)
}

// Left tells address's online friends, then persists and evicts its session.
// Pending invitations are kept until they expire.
func (s *Service) Left(ctx context.Context, address id.PlayerID) error {
	const op = "left"
	ctx, span := s.startSpan(ctx, op, address)
	defer span.End()

	session, ok := s.identities.LookupActive(address)
	if !ok {
		return nil
	}
	for _, peer := range session.Friends().Slice() {
		s.notifyIfActive(ctx, peer, notify.KindFriendLeft, session)
	}
	if err := s.identities.Deactivate(ctx, address); err != nil {
		return s.fail(ctx, span, op, err)
	}
	if c, ok := s.notifier.(outboxClearer); ok {
		c.Clear(address)
	}
	s.emit(ctx, audit.ActionIdentityLeft, address, id.NilPlayerID)
	return nil
}
