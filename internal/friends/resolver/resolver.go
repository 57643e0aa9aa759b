// Package resolver maps player names to addresses. Lookups go to the active
// session directory first, then to a cached remote profile API.
package resolver

import (
	"context"

	id "friendsd/pkg/domain"
)

// Resolver turns a display name into a player address.
//
// Resolve returns an error wrapping sentinel.ErrNotFound when no player has
// the name, or sentinel.ErrUnavailable when the lookup could not be made.
// Name is the best-effort reverse lookup from names already seen. It never
// calls the profile API, but a cache tier may read Redis, so it honors ctx.
type Resolver interface {
	Resolve(ctx context.Context, name string) (id.PlayerID, error)
	Name(ctx context.Context, address id.PlayerID) (string, bool)
}

// Profile is a resolved player with the canonical spelling of its name.
type Profile struct {
	ID   id.PlayerID
	Name string
}

// profileLookup is implemented by resolvers that know the canonical name.
type profileLookup interface {
	Lookup(ctx context.Context, name string) (Profile, error)
}
