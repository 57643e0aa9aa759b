package resolver

import (
	"context"
	"fmt"

	"friendsd/internal/friends/registry"
	id "friendsd/pkg/domain"
	"friendsd/pkg/platform/sentinel"
)

// ActiveSessions is the part of the identity registry the directory reads.
type ActiveSessions interface {
	LookupActive(address id.PlayerID) (*registry.Session, bool)
	LookupActiveByName(name string) (*registry.Session, bool)
}

// Directory answers from active sessions before falling back to next.
type Directory struct {
	active ActiveSessions
	next   Resolver
}

// NewDirectory builds a directory. next may be nil, in which case only
// active players resolve.
func NewDirectory(active ActiveSessions, next Resolver) *Directory {
	return &Directory{active: active, next: next}
}

func (d *Directory) Resolve(ctx context.Context, name string) (id.PlayerID, error) {
	if session, ok := d.active.LookupActiveByName(name); ok {
		return session.Address(), nil
	}
	if d.next == nil {
		return id.NilPlayerID, fmt.Errorf("lookup %q: %w", name, sentinel.ErrNotFound)
	}
	return d.next.Resolve(ctx, name)
}

func (d *Directory) Name(ctx context.Context, address id.PlayerID) (string, bool) {
	if session, ok := d.active.LookupActive(address); ok {
		return session.DisplayName(), true
	}
	if d.next == nil {
		return "", false
	}
	return d.next.Name(ctx, address)
}
