package service

import (
	"context"

	"friendsd/internal/audit"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
)

var errNoSuchInvitation = dErrors.New(dErrors.CodeNoSuchInvitation, "no pending invitation from that player")

// AcceptInvite confirms the invitation the player named name sent to self.
// If self's new set cannot be persisted the invitation is put back and the
// error returned. The sender's side is best effort.
func (s *Service) AcceptInvite(ctx context.Context, self id.PlayerID, name string) (Outcome, error) {
	const op = "accept"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	session, err := s.activeSession(self)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	sender, err := s.resolveTarget(ctx, session, name)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}

	inv, ok := s.invitations.Take(sender, self)
	if !ok {
		return OutcomeNone, s.fail(ctx, span, op, errNoSuchInvitation)
	}

	if _, err := s.identities.ApplyEdge(ctx, self, sender, models.EdgeAdd); err != nil {
		s.metrics.IncPersistFailure(op)
		if !s.invitations.Restore(inv) {
			s.logger.WarnContext(ctx, "could not restore invitation after failed accept",
				"player_id", self.String(),
				"peer_id", sender.String(),
			)
		}
		return OutcomeNone, s.fail(ctx, span, op, storeError(err))
	}
	if _, err := s.identities.ApplyEdge(ctx, sender, self, models.EdgeAdd); err != nil {
		s.metrics.IncPersistFailure("accept_reciprocal")
		s.logger.WarnContext(ctx, "failed to add reciprocal friendship",
			"player_id", self.String(),
			"peer_id", sender.String(),
			"error", err,
		)
	}

	s.metrics.IncInvitationsAccepted()
	s.metrics.IncFriendshipsAdded()
	s.notifyIfActive(ctx, sender, notify.KindInvitationAccepted, session)
	s.emit(ctx, audit.ActionInvitationAccepted, self, sender)
	return OutcomeInvitationAccepted, nil
}

// DenyInvite discards the invitation the player named name sent to self.
func (s *Service) DenyInvite(ctx context.Context, self id.PlayerID, name string) (Outcome, error) {
	const op = "deny"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	session, err := s.activeSession(self)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	sender, err := s.resolveTarget(ctx, session, name)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	if _, ok := s.invitations.Take(sender, self); !ok {
		return OutcomeNone, s.fail(ctx, span, op, errNoSuchInvitation)
	}

	s.metrics.IncInvitationsDenied()
	s.notifyIfActive(ctx, sender, notify.KindInvitationDenied, session)
	s.emit(ctx, audit.ActionInvitationDenied, self, sender)
	return OutcomeInvitationDenied, nil
}

// CancelInvite withdraws self's outgoing invitation to the player named
// name. The receiver is not told.
func (s *Service) CancelInvite(ctx context.Context, self id.PlayerID, name string) (Outcome, error) {
	const op = "cancel"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	session, err := s.activeSession(self)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	receiver, err := s.resolveTarget(ctx, session, name)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	if _, ok := s.invitations.Take(self, receiver); !ok {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeNoSuchInvitation, "no pending invitation to that player"))
	}

	s.metrics.IncInvitationsCanceled()
	s.emit(ctx, audit.ActionInvitationCanceled, self, receiver)
	return OutcomeInvitationCanceled, nil
}
