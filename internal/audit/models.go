package audit

import (
	"time"

	id "friendsd/pkg/domain"
)

// Action names a relationship change worth keeping a record of.
type Action string

const (
	ActionInvitationCreated  Action = "invitation_created"
	ActionInvitationAccepted Action = "invitation_accepted"
	ActionInvitationDenied   Action = "invitation_denied"
	ActionInvitationCanceled Action = "invitation_canceled"
	ActionInvitationExpired  Action = "invitation_expired"
	ActionFriendshipRemoved  Action = "friendship_removed"
	ActionIdentityJoined     Action = "identity_joined"
	ActionIdentityLeft       Action = "identity_left"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    Action      `json:"action"`
	PlayerID  id.PlayerID `json:"player_id"`
	// PeerID is the other side of the relationship, if any.
	PeerID    id.PlayerID `json:"peer_id,omitzero"`
	RequestID string      `json:"request_id,omitempty"`
}
