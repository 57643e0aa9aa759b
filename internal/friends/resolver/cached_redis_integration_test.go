//go:build integration

package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "friendsd/pkg/domain"
	"friendsd/pkg/testutil/containers"
)

func TestCached_SharesLookupsThroughRedis(t *testing.T) {
	rc := containers.GetManager().GetRedis(t)
	require.NoError(t, rc.FlushAll(context.Background()))
	ctx := context.Background()

	bob := Profile{ID: id.NewPlayerID(), Name: "Bob"}
	stub := &stubResolver{players: map[string]Profile{"bob": bob}}

	first := NewCached(stub, time.Minute, WithRedis(rc.Client))
	address, err := first.Resolve(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, address)

	ttl, err := rc.Client.TTL(ctx, redisKeyPrefix+"name:bob").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A second process with a cold local cache reads through Redis.
	second := NewCached(stub, time.Minute, WithRedis(rc.Client))
	address, err = second.Resolve(ctx, "BOB")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, address)
	assert.Equal(t, 1, stub.callCount())

	name, ok := NewCached(stub, time.Minute, WithRedis(rc.Client)).Name(ctx, bob.ID)
	assert.True(t, ok)
	assert.Equal(t, "Bob", name)
}
