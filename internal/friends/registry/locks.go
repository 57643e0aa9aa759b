package registry

import (
	"context"
	"sync"
	"time"

	id "friendsd/pkg/domain"
	dErrors "friendsd/pkg/domain-errors"
)

// numAddressShards spreads per-address critical sections over a fixed set of
// mutexes so unrelated players rarely contend.
const numAddressShards = 128

// defaultStoreTimeout bounds each store call made under an address lock.
const defaultStoreTimeout = 3 * time.Second

// addressLocks serializes activation, deactivation and edge writes for one
// address. Callers never hold two shards at once.
type addressLocks struct {
	shards  [numAddressShards]sync.Mutex
	timeout time.Duration
}

// run executes fn with the address shard held and a bounded context.
func (l *addressLocks) run(ctx context.Context, address id.PlayerID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "aborted: context cancelled")
	}

	timeout := l.timeout
	if timeout <= 0 {
		timeout = defaultStoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	shard := &l.shards[hashAddress(address)%numAddressShards]
	shard.Lock()
	defer shard.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "aborted: context cancelled")
	}
	return fn(ctx)
}

// hashAddress is FNV-1a over the raw uuid bytes.
func hashAddress(address id.PlayerID) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for _, b := range address {
		h ^= uint32(b)
		h *= fnvPrime
	}
	return h
}
