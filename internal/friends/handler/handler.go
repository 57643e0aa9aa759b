package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	"friendsd/internal/platform/metrics"
	"friendsd/internal/platform/middleware"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
	"friendsd/pkg/platform/httputil"
)

// Service is the slice of the friends service the host API drives directly.
type Service interface {
	Joined(ctx context.Context, identity models.Identity) error
	Left(ctx context.Context, address id.PlayerID) error
	List(ctx context.Context, self id.PlayerID) ([]models.FriendStatus, error)
	Pending(ctx context.Context, self id.PlayerID) (incoming, outgoing []id.PlayerID)
}

// Dispatcher turns a typed /friend line into reply text.
type Dispatcher interface {
	Dispatch(ctx context.Context, self id.PlayerID, line string) []string
	RenderNotice(n notify.Notice) string
}

// Outbox holds notices until the host collects them.
type Outbox interface {
	Drain(player id.PlayerID) []notify.Notice
}

// Notice is a notice plus the line the host should show the player.
type Notice struct {
	notify.Notice
	Text string `json:"text"`
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler serves the host-facing API.
type Handler struct {
	logger    *slog.Logger
	service   Service
	commands  Dispatcher
	notices   Outbox
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
	checks    map[string]HealthCheck
}

// New creates a Handler. validator may be nil to disable host auth.
func New(
	service Service,
	commands Dispatcher,
	notices Outbox,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		commands:  commands,
		notices:   notices,
		metrics:   metrics,
		validator: validator,
		checks:    make(map[string]HealthCheck),
	}
}

// AddHealthCheck registers a dependency probed by /healthz.
func (h *Handler) AddHealthCheck(name string, check HealthCheck) {
	h.checks[name] = check
}

// Register registers the host API routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.handleHealth)

	apiRouter := chi.NewRouter()
	apiRouter.Use(middleware.Recovery(h.logger))
	apiRouter.Use(middleware.RequestID)
	apiRouter.Use(middleware.Logger(h.logger, h.metrics))
	apiRouter.Use(middleware.RequireHostToken(h.validator, h.logger))
	apiRouter.Post("/sessions", h.handleJoined)
	apiRouter.Delete("/sessions/{address}", h.handleLeft)
	apiRouter.Route("/players/{address}", func(r chi.Router) {
		r.Post("/commands", h.handleCommand)
		r.Get("/friends", h.handleFriends)
		r.Get("/invitations", h.handleInvitations)
		r.Get("/notices", h.handleNotices)
	})

	r.Mount("/", apiRouter)
}

type joinRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (h *Handler) handleJoined(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid join request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	address, err := id.ParsePlayerID(req.Address)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := id.ValidateDisplayName(req.Name); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Joined(ctx, models.Identity{Address: address, DisplayName: req.Name}); err != nil {
		h.writeServiceError(ctx, w, "failed to activate identity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLeft(w http.ResponseWriter, r *http.Request) {
	address, ok := h.address(w, r)
	if !ok {
		return
	}
	if err := h.service.Left(r.Context(), address); err != nil {
		h.writeServiceError(r.Context(), w, "failed to deactivate identity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type commandRequest struct {
	Command string `json:"command"`
}

type commandResponse struct {
	Reply []string `json:"reply"`
}

func (h *Handler) handleCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	address, ok := h.address(w, r)
	if !ok {
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid command request",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, commandResponse{Reply: h.commands.Dispatch(ctx, address, req.Command)})
}

type friendsResponse struct {
	Friends []models.FriendStatus `json:"friends"`
}

func (h *Handler) handleFriends(w http.ResponseWriter, r *http.Request) {
	address, ok := h.address(w, r)
	if !ok {
		return
	}
	friends, err := h.service.List(r.Context(), address)
	if err != nil {
		h.writeServiceError(r.Context(), w, "failed to list friends", err)
		return
	}
	if friends == nil {
		friends = []models.FriendStatus{}
	}
	httputil.WriteJSON(w, http.StatusOK, friendsResponse{Friends: friends})
}

type invitationsResponse struct {
	Incoming []id.PlayerID `json:"incoming"`
	Outgoing []id.PlayerID `json:"outgoing"`
}

func (h *Handler) handleInvitations(w http.ResponseWriter, r *http.Request) {
	address, ok := h.address(w, r)
	if !ok {
		return
	}
	incoming, outgoing := h.service.Pending(r.Context(), address)
	resp := invitationsResponse{Incoming: incoming, Outgoing: outgoing}
	if resp.Incoming == nil {
		resp.Incoming = []id.PlayerID{}
	}
	if resp.Outgoing == nil {
		resp.Outgoing = []id.PlayerID{}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type noticesResponse struct {
	Notices []Notice `json:"notices"`
}

func (h *Handler) handleNotices(w http.ResponseWriter, r *http.Request) {
	address, ok := h.address(w, r)
	if !ok {
		return
	}
	drained := h.notices.Drain(address)
	resp := noticesResponse{Notices: make([]Notice, 0, len(drained))}
	for _, n := range drained {
		resp.Notices = append(resp.Notices, Notice{Notice: n, Text: h.commands.RenderNotice(n)})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.checks))}
	status := http.StatusOK
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed",
				"check", name,
				"error", err.Error(),
			)
			resp.Checks[name] = "down"
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "up"
	}
	httputil.WriteJSON(w, status, resp)
}

func (h *Handler) address(w http.ResponseWriter, r *http.Request) (id.PlayerID, bool) {
	address, err := id.ParsePlayerID(chi.URLParam(r, "address"))
	if err != nil {
		h.logger.WarnContext(r.Context(), "invalid player address",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return id.NilPlayerID, false
	}
	return address, true
}

func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	if dErrors.IsUserError(err) {
		h.logger.WarnContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
