package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	id "friendsd/pkg/domain"
	pstrings "friendsd/pkg/platform/strings"
)

const redisKeyPrefix = "friendsd:resolver:"

// Cached remembers successful lookups of the wrapped resolver in process and,
// when configured, in Redis. Misses and failures are never cached.
type Cached struct {
	next   Resolver
	ttl    time.Duration
	byName *gocache.Cache
	byID   *gocache.Cache
	redis  redis.Cmdable
	logger *slog.Logger
}

// CachedOption configures a Cached resolver.
type CachedOption func(*Cached)

// WithRedis adds a shared second tier.
func WithRedis(client redis.Cmdable) CachedOption {
	return func(c *Cached) {
		c.redis = client
	}
}

func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewCached(next Resolver, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		next:   next,
		ttl:    ttl,
		byName: gocache.New(ttl, 2*ttl),
		byID:   gocache.New(ttl, 2*ttl),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Resolve(ctx context.Context, name string) (id.PlayerID, error) {
	key := pstrings.FoldKey(name)
	if v, ok := c.byName.Get(key); ok {
		return v.(Profile).ID, nil
	}
	if profile, ok := c.fromRedis(ctx, key); ok {
		c.remember(profile)
		return profile.ID, nil
	}

	profile, err := c.lookupNext(ctx, name)
	if err != nil {
		return id.NilPlayerID, err
	}
	c.remember(profile)
	c.toRedis(ctx, profile)
	return profile.ID, nil
}

// Name answers from names seen by earlier lookups.
func (c *Cached) Name(ctx context.Context, address id.PlayerID) (string, bool) {
	if v, ok := c.byID.Get(address.String()); ok {
		return v.(string), true
	}
	if c.redis != nil {
		name, err := c.redis.Get(ctx, redisKeyPrefix+"id:"+address.String()).Result()
		if err == nil && name != "" {
			c.byID.Set(address.String(), name, c.ttl)
			return name, true
		}
		if err != nil && !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "resolver redis read failed", "error", err)
		}
	}
	return c.next.Name(ctx, address)
}

func (c *Cached) lookupNext(ctx context.Context, name string) (Profile, error) {
	if lookup, ok := c.next.(profileLookup); ok {
		return lookup.Lookup(ctx, name)
	}
	address, err := c.next.Resolve(ctx, name)
	if err != nil {
		return Profile{}, err
	}
	return Profile{ID: address, Name: strings.TrimSpace(name)}, nil
}

func (c *Cached) remember(profile Profile) {
	c.byName.Set(pstrings.FoldKey(profile.Name), profile, c.ttl)
	c.byID.Set(profile.ID.String(), profile.Name, c.ttl)
}

// Redis values are "<uuid>|<name>" under the folded name.
func (c *Cached) fromRedis(ctx context.Context, key string) (Profile, bool) {
	if c.redis == nil {
		return Profile{}, false
	}
	raw, err := c.redis.Get(ctx, redisKeyPrefix+"name:"+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "resolver redis read failed", "error", err)
		}
		return Profile{}, false
	}
	rawID, name, ok := strings.Cut(raw, "|")
	if !ok {
		return Profile{}, false
	}
	address, err := id.ParsePlayerID(rawID)
	if err != nil {
		return Profile{}, false
	}
	return Profile{ID: address, Name: name}, true
}

func (c *Cached) toRedis(ctx context.Context, profile Profile) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, redisKeyPrefix+"name:"+pstrings.FoldKey(profile.Name), profile.ID.String()+"|"+profile.Name, c.ttl)
		pipe.Set(ctx, redisKeyPrefix+"id:"+profile.ID.String(), profile.Name, c.ttl)
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "resolver redis write failed", "error", err)
	}
}
