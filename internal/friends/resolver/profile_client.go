package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"friendsd/internal/friends/metrics"
	id "friendsd/pkg/domain"
	"friendsd/pkg/platform/circuit"
	"friendsd/pkg/platform/sentinel"
)

const profilePath = "/users/profiles/minecraft/"

type profileResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfileClient looks names up against a Mojang-compatible profile API.
type ProfileClient struct {
	baseURL string
	client  *http.Client
	breaker *circuit.Breaker
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// ProfileOption configures a ProfileClient.
type ProfileOption func(*ProfileClient)

func WithHTTPClient(client *http.Client) ProfileOption {
	return func(c *ProfileClient) {
		if client != nil {
			c.client = client
		}
	}
}

func WithBreaker(b *circuit.Breaker) ProfileOption {
	return func(c *ProfileClient) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithMetrics(m *metrics.Metrics) ProfileOption {
	return func(c *ProfileClient) {
		c.metrics = m
	}
}

func WithLogger(logger *slog.Logger) ProfileOption {
	return func(c *ProfileClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewProfileClient creates a client for the API rooted at baseURL.
func NewProfileClient(baseURL string, timeout time.Duration, opts ...ProfileOption) *ProfileClient {
	c := &ProfileClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		breaker: circuit.New("profile-api"),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ProfileClient) Resolve(ctx context.Context, name string) (id.PlayerID, error) {
	profile, err := c.Lookup(ctx, name)
	if err != nil {
		return id.NilPlayerID, err
	}
	return profile.ID, nil
}

// Name always misses: the profile API has no cheap reverse lookup.
func (c *ProfileClient) Name(context.Context, id.PlayerID) (string, bool) {
	return "", false
}

// Lookup fetches the profile for name. Names that cannot exist are reported
// as not found without a request.
func (c *ProfileClient) Lookup(ctx context.Context, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if err := id.ValidateDisplayName(name); err != nil {
		return Profile{}, fmt.Errorf("lookup %q: %w", name, sentinel.ErrNotFound)
	}
	if !c.breaker.Allow() {
		c.metrics.ObserveResolverLookup("short_circuit", 0)
		return Profile{}, fmt.Errorf("lookup %q: circuit open: %w", name, sentinel.ErrUnavailable)
	}

	start := time.Now()
	profile, result, err := c.fetch(ctx, name)
	c.metrics.ObserveResolverLookup(result, time.Since(start).Seconds())

	if result == "error" {
		if _, change := c.breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "profile api circuit opened", "breaker", c.breaker.Name(), "error", err)
		}
		return Profile{}, err
	}
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "profile api circuit closed", "breaker", c.breaker.Name())
	}
	return profile, err
}

func (c *ProfileClient) fetch(ctx context.Context, name string) (Profile, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+profilePath+url.PathEscape(name), nil)
	if err != nil {
		return Profile{}, "error", fmt.Errorf("build profile request: %w: %w", sentinel.ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Profile{}, "error", fmt.Errorf("profile request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return Profile{}, "not_found", fmt.Errorf("lookup %q: %w", name, sentinel.ErrNotFound)
	default:
		return Profile{}, "error", fmt.Errorf("profile api returned %s: %w", resp.Status, sentinel.ErrUnavailable)
	}

	var body profileResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Profile{}, "error", fmt.Errorf("decode profile response: %w: %w", sentinel.ErrUnavailable, err)
	}
	address, err := id.ParsePlayerID(body.ID)
	if err != nil {
		return Profile{}, "error", fmt.Errorf("profile response id: %w: %w", sentinel.ErrUnavailable, err)
	}
	if body.Name == "" {
		body.Name = name
	}
	return Profile{ID: address, Name: body.Name}, "found", nil
}
