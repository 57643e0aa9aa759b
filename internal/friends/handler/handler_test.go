package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Dispatcher

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"friendsd/internal/friends/handler/mocks"
	"friendsd/internal/friends/models"
	"friendsd/internal/friends/notify"
	jwttoken "friendsd/internal/jwt_token"
	"friendsd/internal/platform/metrics"
	"friendsd/internal/platform/middleware"
	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
	"friendsd/pkg/testutil"
)

var (
	alice = id.MustPlayerID("11111111-1111-1111-1111-111111111111")
	bob   = id.MustPlayerID("22222222-2222-2222-2222-222222222222")
)

type HandlerSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	service  *mocks.MockService
	commands *mocks.MockDispatcher
	outbox   *notify.Outbox
	handler  *Handler
	router   http.Handler
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.commands = mocks.NewMockDispatcher(s.ctrl)
	s.outbox = notify.NewOutbox()
	s.handler = New(s.service, s.commands, s.outbox,
		slog.New(slog.DiscardHandler), metrics.New(prometheus.NewRegistry()), nil)
	s.router = s.routes(s.handler)
}

func (s *HandlerSuite) SetupSubTest() {
	s.SetupTest()
}

func (s *HandlerSuite) routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func (s *HandlerSuite) TestJoined() {
	s.Run("activates the identity", func() {
		s.service.EXPECT().
			Joined(gomock.Any(), models.Identity{Address: alice, DisplayName: "Alice"}).
			Return(nil)

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost, "/sessions",
			map[string]string{"address": alice.String(), "name": "Alice"}))

		s.Equal(http.StatusNoContent, rec.Code)
		s.NotEmpty(rec.Header().Get(middleware.RequestIDHeader))
	})

	s.Run("malformed body is a bad request", func() {
		req := testutil.JSONRequest(s.T(), http.MethodPost, "/sessions", nil)
		testutil.AssertError(s.T(), testutil.Serve(s.router, req), http.StatusBadRequest, "bad_request")
	})

	s.Run("invalid address is rejected before the service", func() {
		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost, "/sessions",
			map[string]string{"address": "not-a-uuid", "name": "Alice"}))
		testutil.AssertError(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})

	s.Run("invalid name is rejected", func() {
		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost, "/sessions",
			map[string]string{"address": alice.String(), "name": "no spaces"}))
		testutil.AssertError(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})

	s.Run("load failure is unavailable", func() {
		s.service.EXPECT().Joined(gomock.Any(), gomock.Any()).
			Return(dErrors.New(dErrors.CodeIdentityLoadFailed, "could not load relationships"))

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost, "/sessions",
			map[string]string{"address": alice.String(), "name": "Alice"}))
		testutil.AssertError(s.T(), rec, http.StatusServiceUnavailable, "identity_load_failed")
	})
}

func (s *HandlerSuite) TestLeft() {
	s.Run("deactivates the identity", func() {
		s.service.EXPECT().Left(gomock.Any(), alice).Return(nil)

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodDelete, "/sessions/"+alice.String(), nil))
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("persist failure surfaces as unavailable", func() {
		s.service.EXPECT().Left(gomock.Any(), alice).
			Return(dErrors.Wrap(errors.New("disk full"), dErrors.CodeUnavailable, "save relationships"))

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodDelete, "/sessions/"+alice.String(), nil))
		testutil.AssertError(s.T(), rec, http.StatusServiceUnavailable, "unavailable")
	})
}

func (s *HandlerSuite) TestCommand() {
	s.Run("replies with dispatched lines", func() {
		s.commands.EXPECT().Dispatch(gomock.Any(), alice, "invite Bob").
			Return([]string{"Friend request sent to Bob."})

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost,
			"/players/"+alice.String()+"/commands", map[string]string{"command": "invite Bob"}))

		s.Require().Equal(http.StatusOK, rec.Code)
		body := testutil.DecodeJSON[commandResponse](s.T(), rec)
		s.Equal([]string{"Friend request sent to Bob."}, body.Reply)
	})

	s.Run("bad address never reaches the dispatcher", func() {
		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodPost,
			"/players/bob/commands", map[string]string{"command": "list"}))
		testutil.AssertError(s.T(), rec, http.StatusBadRequest, "invalid_input")
	})
}

func (s *HandlerSuite) TestFriends() {
	s.Run("lists friends", func() {
		s.service.EXPECT().List(gomock.Any(), alice).
			Return([]models.FriendStatus{{Address: bob, DisplayName: "Bob", Active: true}}, nil)

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/players/"+alice.String()+"/friends", nil))

		s.Require().Equal(http.StatusOK, rec.Code)
		body := testutil.DecodeJSON[friendsResponse](s.T(), rec)
		s.Equal([]models.FriendStatus{{Address: bob, DisplayName: "Bob", Active: true}}, body.Friends)
	})

	s.Run("empty list encodes as an array", func() {
		s.service.EXPECT().List(gomock.Any(), alice).Return(nil, nil)

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/players/"+alice.String()+"/friends", nil))
		s.JSONEq(`{"friends":[]}`, rec.Body.String())
	})

	s.Run("inactive player is not found", func() {
		s.service.EXPECT().List(gomock.Any(), alice).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "player has no active session"))

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/players/"+alice.String()+"/friends", nil))
		testutil.AssertError(s.T(), rec, http.StatusNotFound, "not_found")
	})
}

func (s *HandlerSuite) TestInvitations() {
	s.service.EXPECT().Pending(gomock.Any(), alice).Return([]id.PlayerID{bob}, nil)

	rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/players/"+alice.String()+"/invitations", nil))

	s.Require().Equal(http.StatusOK, rec.Code)
	body := testutil.DecodeJSON[invitationsResponse](s.T(), rec)
	s.Equal([]id.PlayerID{bob}, body.Incoming)
	s.Empty(body.Outgoing)
	s.NotNil(body.Outgoing)
}

func (s *HandlerSuite) TestNotices() {
	notice := notify.Notice{Kind: notify.KindFriendJoined, From: bob, FromName: "Bob", At: time.Unix(100, 0).UTC()}
	s.outbox.Notify(context.Background(), alice, notice)
	s.commands.EXPECT().RenderNotice(notice).Return("Bob joined.")

	path := "/players/" + alice.String() + "/notices"
	rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, path, nil))

	s.Require().Equal(http.StatusOK, rec.Code)
	body := testutil.DecodeJSON[noticesResponse](s.T(), rec)
	s.Require().Len(body.Notices, 1)
	s.Equal("Bob joined.", body.Notices[0].Text)
	s.Equal(notify.KindFriendJoined, body.Notices[0].Kind)
	s.Equal(bob, body.Notices[0].From)

	again := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, path, nil))
	s.JSONEq(`{"notices":[]}`, again.Body.String())
}

func (s *HandlerSuite) TestHealth() {
	s.Run("ok with no checks", func() {
		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/healthz", nil))
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("failing check degrades", func() {
		s.handler.AddHealthCheck("store", func(context.Context) error { return nil })
		s.handler.AddHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		rec := testutil.Serve(s.router, testutil.JSONRequest(s.T(), http.MethodGet, "/healthz", nil))

		s.Equal(http.StatusServiceUnavailable, rec.Code)
		body := testutil.DecodeJSON[healthResponse](s.T(), rec)
		s.Equal("degraded", body.Status)
		s.Equal(map[string]string{"store": "up", "redis": "down"}, body.Checks)
	})
}

func TestHostAuth(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockService(ctrl)
	jwt := jwttoken.NewJWTService("test-signing-key", "friendsd")
	h := New(svc, mocks.NewMockDispatcher(ctrl), notify.NewOutbox(),
		slog.New(slog.DiscardHandler), nil, jwttoken.NewMiddlewareAdapter(jwt))
	r := chi.NewRouter()
	h.Register(r)

	t.Run("missing token is unauthorized", func(t *testing.T) {
		rec := testutil.Serve(r, testutil.JSONRequest(t, http.MethodDelete, "/sessions/"+alice.String(), nil))
		testutil.AssertError(t, rec, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("healthz stays open", func(t *testing.T) {
		rec := testutil.Serve(r, testutil.JSONRequest(t, http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid host token passes", func(t *testing.T) {
		token, err := jwt.GenerateHostToken("lobby-1", time.Minute)
		require.NoError(t, err)
		svc.EXPECT().Left(gomock.Any(), alice).Return(nil)

		req := testutil.JSONRequest(t, http.MethodDelete, "/sessions/"+alice.String(), nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := testutil.Serve(r, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
