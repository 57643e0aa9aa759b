package relationship

import (
	"fmt"
	"strings"

	"friendsd/internal/friends/models"
	id "friendsd/pkg/domain"
	pstrings "friendsd/pkg/platform/strings"
)

// peerDelimiter separates peers in the sqlite user_friends column.
const peerDelimiter = "|"

func encodePeers(set models.RelationshipSet) string {
	peers := set.Slice()
	parts := make([]string, len(peers))
	for i, p := range peers {
		parts[i] = p.String()
	}
	return strings.Join(parts, peerDelimiter)
}

func decodePeers(raw string) (models.RelationshipSet, error) {
	return parsePeers(pstrings.SplitFields(raw, peerDelimiter))
}

func parsePeers(values []string) (models.RelationshipSet, error) {
	set := models.NewRelationshipSet()
	for _, v := range values {
		peer, err := id.ParsePlayerID(v)
		if err != nil {
			return models.RelationshipSet{}, fmt.Errorf("decode peer %q: %w", v, err)
		}
		set.Add(peer)
	}
	return set, nil
}

func peerStrings(set models.RelationshipSet) []string {
	peers := set.Slice()
	out := make([]string, len(peers))
	for i, p := range peers {
		out[i] = p.String()
	}
	return out
}
