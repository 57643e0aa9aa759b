// Package service implements the relationship operations: invitations,
// confirmed friendships, and the join/leave hooks.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"friendsd/internal/audit"
	"friendsd/internal/friends/invitation"
	"friendsd/internal/friends/metrics"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	"friendsd/internal/friends/registry"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
	"friendsd/pkg/platform/sentinel"
)

var tracer = otel.Tracer("friendsd/friends")

// Resolver maps display names to addresses. Implementations may do network
// I/O; the service never calls them while holding a lock.
type Resolver interface {
	Resolve(ctx context.Context, name string) (id.PlayerID, error)
	Name(ctx context.Context, address id.PlayerID) (string, bool)
}

// Notifier delivers notices to active players.
type Notifier interface {
	Notify(ctx context.Context, to id.PlayerID, notice notify.Notice)
}

// Outcome is the non-error result of an operation.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeInvitationSent
	OutcomeAlreadyFriends
	OutcomeFriendRemoved
	OutcomeInvitationAccepted
	OutcomeInvitationDenied
	OutcomeInvitationCanceled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvitationSent:
		return "invitation_sent"
	case OutcomeAlreadyFriends:
		return "already_friends"
	case OutcomeFriendRemoved:
		return "friend_removed"
	case OutcomeInvitationAccepted:
		return "invitation_accepted"
	case OutcomeInvitationDenied:
		return "invitation_denied"
	case OutcomeInvitationCanceled:
		return "invitation_canceled"
	default:
		return "none"
	}
}

const defaultListConcurrency = 8

// Service coordinates the identity registry, the invitation registry and
// name resolution.
type Service struct {
	identities  *registry.Registry
	invitations *invitation.Registry
	resolver    Resolver
	notifier    Notifier
	audit       *audit.Publisher
	metrics     *metrics.Metrics
	logger      *slog.Logger
	now         func() time.Time

	listConcurrency int
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithAuditPublisher(p *audit.Publisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithListConcurrency bounds parallel name lookups in List.
func WithListConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.listConcurrency = n
		}
	}
}

func New(identities *registry.Registry, invitations *invitation.Registry, resolver Resolver, opts ...Option) *Service {
	s := &Service{
		identities:      identities,
		invitations:     invitations,
		resolver:        resolver,
		notifier:        discardNotifier{},
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		listConcurrency: defaultListConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, id.PlayerID, notify.Notice) {}

// activeSession returns self's session. Commands only arrive for joined
// players, so a miss means the host skipped Joined.
func (s *Service) activeSession(self id.PlayerID) (*registry.Session, error) {
	session, ok := s.identities.LookupActive(self)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "player has no active session")
	}
	return session, nil
}

// resolveTarget turns a name into an address for kick, accept, deny and
// cancel. Self-targeting is checked on the name before resolution and on the
// address after it.
func (s *Service) resolveTarget(ctx context.Context, self *registry.Session, name string) (id.PlayerID, error) {
	if id.SameName(name, self.DisplayName()) {
		return id.NilPlayerID, dErrors.New(dErrors.CodeSelfTarget, "cannot target yourself")
	}
	if err := id.ValidateDisplayName(name); err != nil {
		return id.NilPlayerID, dErrors.Wrap(err, dErrors.CodeUnknownTarget, "player not found")
	}

	address, err := s.resolver.Resolve(ctx, name)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return id.NilPlayerID, dErrors.Wrap(err, dErrors.CodeUnknownTarget, "player not found")
	case err != nil:
		return id.NilPlayerID, dErrors.Wrap(err, dErrors.CodeResolverUnavailable, "name lookup failed")
	}
	if address == self.Address() {
		return id.NilPlayerID, dErrors.New(dErrors.CodeSelfTarget, "cannot target yourself")
	}
	return address, nil
}

// storeError keeps typed errors from the registry and wraps the rest.
func storeError(err error) error {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to save relationships")
}

func (s *Service) startSpan(ctx context.Context, op string, self id.PlayerID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "friends."+op, trace.WithAttributes(
		attribute.String("player_id", self.String()),
	))
}

// fail records a rejected operation on the span, in metrics and, for
// anything that is not the caller's fault, in the log.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error) error {
	code := string(dErrors.CodeOf(err))
	if code == "" {
		code = string(dErrors.CodeInternal)
	}
	span.SetAttributes(attribute.String("error.code", code))
	if dErrors.IsUserError(err) {
		s.metrics.IncRejection(op, code)
		return err
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, code)
	s.logger.ErrorContext(ctx, "relationship operation failed",
		"operation", op,
		"code", code,
		"error", err,
	)
	return err
}

func (s *Service) notifyIfActive(ctx context.Context, to id.PlayerID, kind notify.Kind, from *registry.Session) {
	if !s.identities.IsActive(to) {
		return
	}
	s.notifier.Notify(ctx, to, notify.Notice{
		Kind:     kind,
		From:     from.Address(),
		FromName: from.DisplayName(),
		At:       s.now(),
	})
}

func (s *Service) emit(ctx context.Context, action audit.Action, player, peer id.PlayerID) {
	audit.LogEvent(ctx, s.logger, s.audit, audit.Event{
		Timestamp: s.now(),
		Action:    action,
		PlayerID:  player,
		PeerID:    peer,
	})
}

// HandleExpired is the invitation registry's expiry hook. Expiry is silent
// for both players.
func (s *Service) HandleExpired(inv models.Invitation) {
	s.metrics.IncInvitationsExpired()
	s.emit(context.Background(), audit.ActionInvitationExpired, inv.Sender, inv.Receiver)
}
