// Package command parses "/friend" style command lines and renders the
// replies a player sees.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"friendsd/internal/friends/invitation"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	"friendsd/internal/friends/service"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
	pstrings "friendsd/pkg/platform/strings"
)

// Service is the part of the relationship service the dispatcher drives.
type Service interface {
	Invite(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)
	Kick(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)
	AcceptInvite(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)
	DenyInvite(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)
	CancelInvite(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)
	List(ctx context.Context, self id.PlayerID) ([]models.FriendStatus, error)
}

type action func(ctx context.Context, self id.PlayerID, name string) (service.Outcome, error)

// Dispatcher turns one command line into reply lines.
type Dispatcher struct {
	svc     Service
	ttl     time.Duration
	logger  *slog.Logger
	actions map[string]action
}

type Option func(*Dispatcher)

// WithInvitationTTL sets the lifetime quoted in invitation notices.
func WithInvitationTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func New(svc Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		svc:    svc,
		ttl:    invitation.DefaultTTL,
		logger: slog.New(slog.DiscardHandler),
	}
	d.actions = map[string]action{
		"invite": svc.Invite,
		"kick":   svc.Kick,
		"accept": svc.AcceptInvite,
		"deny":   svc.DenyInvite,
		"cancel": svc.CancelInvite,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs line on behalf of self. Verbs are case-insensitive; an empty
// line or "help" prints the help text and a wrong arity prints usage.
func (d *Dispatcher) Dispatch(ctx context.Context, self id.PlayerID, line string) []string {
	words := pstrings.Words(line)
	if len(words) == 0 {
		return helpText()
	}

	switch verb := words[0]; verb {
	case "help":
		return helpText()
	case "list":
		if len(words) != 1 {
			return []string{usage}
		}
		return d.list(ctx, self)
	default:
		act, ok := d.actions[verb]
		if !ok || len(words) != 2 {
			return []string{usage}
		}
		name := words[1]
		outcome, err := act(ctx, self, name)
		if err != nil {
			return []string{d.renderError(ctx, verb, name, err)}
		}
		return []string{renderOutcome(outcome, name)}
	}
}

func (d *Dispatcher) list(ctx context.Context, self id.PlayerID) []string {
	friends, err := d.svc.List(ctx, self)
	if err != nil {
		return []string{d.renderError(ctx, "list", "", err)}
	}
	if len(friends) == 0 {
		return []string{"You have no friends yet. Try /friend invite <name>."}
	}
	lines := make([]string, 0, len(friends)+1)
	lines = append(lines, "~~~Friends~~~")
	for _, f := range friends {
		status := "offline"
		if f.Active {
			status = "online"
		}
		lines = append(lines, fmt.Sprintf("> %s | %s", f.DisplayName, status))
	}
	return lines
}

func renderOutcome(outcome service.Outcome, name string) string {
	switch outcome {
	case service.OutcomeInvitationSent:
		return fmt.Sprintf("Sent %s a friend request.", name)
	case service.OutcomeAlreadyFriends:
		return fmt.Sprintf("You are already friends with %s!", name)
	case service.OutcomeFriendRemoved:
		return fmt.Sprintf("You are no longer friends with %s!", name)
	case service.OutcomeInvitationAccepted:
		return fmt.Sprintf("You are now friends with %s!", name)
	case service.OutcomeInvitationDenied:
		return fmt.Sprintf("Denied the friend request from %s.", name)
	case service.OutcomeInvitationCanceled:
		return fmt.Sprintf("Cancelled your friend request to %s.", name)
	default:
		return "Done."
	}
}

func (d *Dispatcher) renderError(ctx context.Context, verb, name string, err error) string {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeSelfTarget:
		return "You can't friend yourself."
	case dErrors.CodeTargetUnreachable:
		return "That player is not currently online."
	case dErrors.CodeUnknownTarget:
		return "That player does not exist."
	case dErrors.CodeNotFriends:
		return "You are not friends with that player."
	case dErrors.CodeNoSuchInvitation:
		if verb == "cancel" {
			return fmt.Sprintf("You have no pending friend request to %s.", name)
		}
		return fmt.Sprintf("You have no friend request from %s.", name)
	case dErrors.CodeAlreadySent:
		return fmt.Sprintf("You already sent %s a friend request.", name)
	case dErrors.CodeAlreadyReceived:
		return fmt.Sprintf("%s already sent you a friend request. Type \"/friend accept %s\".", name, name)
	case dErrors.CodeResolverUnavailable:
		return "Player lookup is unavailable right now, try again later."
	}
	d.logger.ErrorContext(ctx, "command failed", "verb", verb, "error", err)
	return "Something went wrong, try again later."
}

const usage = "Usage: /friend <invite|kick|accept|deny|cancel> <name> | /friend list | /friend help"

func helpText() []string {
	return []string{
		"~~~Friend commands~~~",
		"/friend invite <name> - send a friend request",
		"/friend accept <name> - accept a friend request",
		"/friend deny <name> - deny a friend request",
		"/friend cancel <name> - withdraw a friend request you sent",
		"/friend kick <name> - remove a friend",
		"/friend list - show your friends",
	}
}

// RenderNotice formats a notice the way it is shown in chat.
func (d *Dispatcher) RenderNotice(n notify.Notice) string {
	from := n.FromName
	if from == "" {
		from = n.From.String()
	}
	switch n.Kind {
	case notify.KindInvitationReceived:
		return fmt.Sprintf("Friend request from %s. Type \"/friend accept/deny %s\".\nThis request expires in %d seconds.",
			from, from, int(d.ttl/time.Second))
	case notify.KindInvitationAccepted:
		return fmt.Sprintf("You are now friends with %s!", from)
	case notify.KindInvitationDenied:
		return fmt.Sprintf("%s denied your friend request.", from)
	case notify.KindFriendRemoved:
		return fmt.Sprintf("You are no longer friends with %s!", from)
	case notify.KindFriendJoined:
		return fmt.Sprintf("Your friend %s joined.", from)
	case notify.KindFriendLeft:
		return fmt.Sprintf("Your friend %s left.", from)
	default:
		return strings.TrimSpace(string(n.Kind) + " " + from)
	}
}
