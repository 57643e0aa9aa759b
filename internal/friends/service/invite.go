package service

import (
	"context"

	"friendsd/internal/audit"
	"friendsd/internal/friends/invitation"
	"friendsd/internal/friends/notify"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
)

// Invite sends a friend invitation from self to the active player named
// targetName. Already being friends is an outcome, not an error.
func (s *Service) Invite(ctx context.Context, self id.PlayerID, targetName string) (Outcome, error) {
	const op = "invite"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	sender, err := s.activeSession(self)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	if id.SameName(targetName, sender.DisplayName()) {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeSelfTarget, "cannot invite yourself"))
	}
	receiver, ok := s.identities.LookupActiveByName(targetName)
	if !ok {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeTargetUnreachable, "player is not online"))
	}
	target := receiver.Address()
	if target == self {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeSelfTarget, "cannot invite yourself"))
	}
	if sender.IsFriend(target) {
		return OutcomeAlreadyFriends, nil
	}

	outcome, _ := s.invitations.Create(self, target)
	switch outcome {
	case invitation.AlreadySentForward:
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeAlreadySent, "invitation already sent"))
	case invitation.AlreadyReceivedFromTarget:
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeAlreadyReceived, "invitation already received from that player"))
	}

	s.metrics.IncInvitationsCreated()
	// The sender learns the result from the returned outcome.
	s.notifyIfActive(ctx, target, notify.KindInvitationReceived, sender)
	s.emit(ctx, audit.ActionInvitationCreated, self, target)
	return OutcomeInvitationSent, nil
}
