// Package friends assembles the friend-relationship core: session registry,
// pending invitations, name resolution, the relationship service and its
// host-facing transport.
package friends

import (
	"context"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"friendsd/internal/audit"
	"friendsd/internal/friends/command"
	"friendsd/internal/friends/handler"
	"friendsd/internal/friends/invitation"
	"friendsd/internal/friends/metrics"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	"friendsd/internal/friends/registry"
	"friendsd/internal/friends/resolver"
	"friendsd/internal/friends/service"
	"friendsd/internal/platform/config"
	httpmetrics "friendsd/internal/platform/metrics"
	"friendsd/internal/platform/middleware"
)

// Deps are the process-level resources the module is built on.
type Deps struct {
	Store  registry.Store
	Redis  goredis.Cmdable
	Audit  *audit.Publisher
	Logger *slog.Logger

	Metrics     *metrics.Metrics
	HTTPMetrics *httpmetrics.Metrics
	// HostAuth validates host bearer tokens. Nil disables auth.
	HostAuth middleware.TokenValidator
}

// Module owns the wired components.
type Module struct {
	Identities  *registry.Registry
	Invitations *invitation.Registry
	Service     *service.Service
	Commands    *command.Dispatcher
	Outbox      *notify.Outbox
	Handler     *handler.Handler
	Sweeper     *invitation.Sweeper
}

// New wires the module from cfg and deps.
func New(cfg config.Server, deps Deps) *Module {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	identities := registry.New(deps.Store,
		registry.WithLogger(logger),
		registry.WithMetrics(deps.Metrics),
		registry.WithStoreTimeout(cfg.StoreTimeout),
	)

	var remote resolver.Resolver = resolver.NewProfileClient(cfg.Resolver.URL, cfg.Resolver.Timeout,
		resolver.WithMetrics(deps.Metrics),
		resolver.WithLogger(logger),
	)
	cacheOpts := []resolver.CachedOption{resolver.WithCacheLogger(logger)}
	if deps.Redis != nil {
		cacheOpts = append(cacheOpts, resolver.WithRedis(deps.Redis))
	}
	remote = resolver.NewCached(remote, cfg.Resolver.CacheTTL, cacheOpts...)
	names := resolver.NewDirectory(identities, remote)

	outbox := notify.NewOutbox(
		notify.WithCapacity(cfg.NoticeBuffer),
		notify.WithLogger(logger),
		notify.WithRecipientCheck(identities.IsActive),
	)

	// Expiry callbacks only fire after New returns, so svc is set by then.
	var svc *service.Service
	invitations := invitation.New(
		invitation.WithTTL(cfg.InvitationTTL),
		invitation.WithOnExpire(func(inv models.Invitation) { svc.HandleExpired(inv) }),
	)
	svc = service.New(identities, invitations, names,
		service.WithNotifier(outbox),
		service.WithAuditPublisher(deps.Audit),
		service.WithMetrics(deps.Metrics),
		service.WithLogger(logger),
	)

	commands := command.New(svc,
		command.WithInvitationTTL(invitations.TTL()),
		command.WithLogger(logger),
	)
	h := handler.New(svc, commands, outbox, logger, deps.HTTPMetrics, deps.HostAuth)

	return &Module{
		Identities:  identities,
		Invitations: invitations,
		Service:     svc,
		Commands:    commands,
		Outbox:      outbox,
		Handler:     h,
		Sweeper:     invitation.NewSweeper(invitations, cfg.SweepInterval, logger),
	}
}

// Shutdown deactivates every active session so their relationships are
// persisted, then stops invitation timers.
func (m *Module) Shutdown(ctx context.Context) error {
	var firstErr error
	for _, identity := range m.Identities.Snapshot() {
		if err := m.Service.Left(ctx, identity.Address); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	m.Invitations.Close()
	return firstErr
}
