// Package notify delivers relationship notices to players through per-player
// outboxes that the host drains.
package notify

import (
	"context"
	"time"

	id "friendsd/pkg/domain"
)

// Kind names what happened.
type Kind string

const (
	KindInvitationReceived Kind = "invitation_received"
	KindInvitationAccepted Kind = "invitation_accepted"
	KindInvitationDenied   Kind = "invitation_denied"
	KindFriendRemoved      Kind = "friend_removed"
	KindFriendJoined       Kind = "friend_joined"
	KindFriendLeft         Kind = "friend_left"
)

// Notice is a message for one player about another.
type Notice struct {
	Kind     Kind        `json:"kind"`
	From     id.PlayerID `json:"from"`
	FromName string      `json:"from_name"`
	At       time.Time   `json:"at"`
}

// Notifier delivers notices. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, to id.PlayerID, notice Notice)
}
