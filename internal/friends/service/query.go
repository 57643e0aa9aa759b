package service

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
	pstrings "friendsd/pkg/platform/strings"
)

// List returns self's friends with their activity, online friends first and
// then by name. Offline names come from the resolver's cache and fall back to
// the address.
func (s *Service) List(ctx context.Context, self id.PlayerID) ([]models.FriendStatus, error) {
	const op = "list"
	ctx, span := s.startSpan(ctx, op, self)
	defer span.End()

	session, err := s.activeSession(self)
	if err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	peers := session.Friends().Slice()
	out := make([]models.FriendStatus, len(peers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.listConcurrency)
	for i, peer := range peers {
		g.Go(func() error {
			out[i] = s.friendStatus(gctx, peer)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, span, op, err)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Active != out[j].Active {
			return out[i].Active
		}
		return pstrings.FoldKey(out[i].DisplayName) < pstrings.FoldKey(out[j].DisplayName)
	})
	return out, nil
}

func (s *Service) friendStatus(ctx context.Context, peer id.PlayerID) models.FriendStatus {
	if session, ok := s.identities.LookupActive(peer); ok {
		return models.FriendStatus{Address: peer, DisplayName: session.DisplayName(), Active: true}
	}
	name, ok := s.resolver.Name(ctx, peer)
	if !ok {
		name = peer.String()
	}
	return models.FriendStatus{Address: peer, DisplayName: name}
}

// Pending lists the senders of self's incoming invitations and the receivers
// of its outgoing ones, oldest first.
func (s *Service) Pending(ctx context.Context, self id.PlayerID) (incoming, outgoing []id.PlayerID) {
	_, span := s.startSpan(ctx, "pending", self)
	defer span.End()
	return s.invitations.ListIncoming(self), s.invitations.ListOutgoing(self)
}
