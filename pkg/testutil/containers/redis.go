//go:build integration

package containers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"friendsd/internal/platform/config"
	"friendsd/internal/platform/redis"
)

// RedisContainer is a throwaway Redis reached through the same client the
// server uses.
type RedisContainer struct {
	Container testcontainers.Container
	URL       string
	*redis.Client
}

// NewRedisContainer starts redis:7-alpine and connects to it. Startup
// failures abort the test.
func NewRedisContainer(t *testing.T) *RedisContainer {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err, "start redis container")

	url, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "redis connection string")
	}

	client, err := redis.New(ctx, config.RedisConfig{URL: url, PoolSize: 4})
	if err != nil {
		_ = container.Terminate(ctx)
		require.NoError(t, err, "connect redis")
	}
	return &RedisContainer{Container: container, URL: url, Client: client}
}

// FlushAll drops every key so tests sharing the container start clean.
func (r *RedisContainer) FlushAll(ctx context.Context) error {
	return r.Client.FlushAll(ctx).Err()
}
