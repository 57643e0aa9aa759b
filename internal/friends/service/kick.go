package service

import (
	"context"

	"friendsd/internal/audit"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
)

// Kick removes the friendship between self and the player named name. Self's
// side is persisted before it becomes visible; the peer's side is best effort
// and an asymmetric pair heals on the next mutation.
func (s *Service) Kick(ctx context.Context, self id.PlayerID, name string) (Outcome, error) {
	const op = "kick"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	session, err := s.activeSession(self)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	target, err := s.resolveTarget(ctx, session, name)
	if err != nil {
		return OutcomeNone, s.fail(ctx, span, op, err)
	}
	if !session.IsFriend(target) {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeNotFriends, "not friends with that player"))
	}

	result, err := s.identities.ApplyEdge(ctx, self, target, models.EdgeRemove)
	if err != nil {
		s.metrics.IncPersistFailure(op)
		return OutcomeNone, s.fail(ctx, span, op, storeError(err))
	}
	if !result.Changed {
		return OutcomeNone, s.fail(ctx, span, op, dErrors.New(dErrors.CodeNotFriends, "not friends with that player"))
	}

	if _, err := s.identities.ApplyEdge(ctx, target, self, models.EdgeRemove); err != nil {
		s.metrics.IncPersistFailure("kick_reciprocal")
		s.logger.WarnContext(ctx, "failed to remove reciprocal friendship",
			"player_id", self.String(),
			"peer_id", target.String(),
			"error", err,
		)
	}

	s.metrics.IncFriendshipsRemoved()
	s.notifyIfActive(ctx, target, notify.KindFriendRemoved, session)
	s.emit(ctx, audit.ActionFriendshipRemoved, self, target)
	return OutcomeFriendRemoved, nil
}
