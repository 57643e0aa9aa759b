package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	id "friendsd/pkg/domain"
)

func TestRelationshipSet(t *testing.T) {
	a, b := id.NewPlayerID(), id.NewPlayerID()

	t.Run("add and remove report changes", func(t *testing.T) {
		var s RelationshipSet
		assert.True(t, s.Add(a))
		assert.False(t, s.Add(a))
		assert.False(t, s.Add(id.NilPlayerID))
		assert.True(t, s.Contains(a))
		assert.Equal(t, 1, s.Len())

		assert.True(t, s.Remove(a))
		assert.False(t, s.Remove(a))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := NewRelationshipSet(a)
		c := s.Clone()
		c.Add(b)
		assert.False(t, s.Contains(b))
		assert.True(t, c.Contains(a))
		assert.False(t, s.Equal(c))
	})

	t.Run("slice is ordered", func(t *testing.T) {
		s := NewRelationshipSet(b, a, b)
		got := s.Slice()
		assert.Len(t, got, 2)
		assert.True(t, got[0].Less(got[1]))
	})

	t.Run("zero value is usable", func(t *testing.T) {
		var s RelationshipSet
		assert.False(t, s.Contains(a))
		assert.Empty(t, s.Slice())
		assert.True(t, s.Equal(NewRelationshipSet()))
	})
}

func TestInvitationIsExpiredAt(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	inv := Invitation{CreatedAt: created, ExpiresAt: created.Add(120 * time.Second)}

	assert.False(t, inv.IsExpiredAt(created))
	assert.False(t, inv.IsExpiredAt(created.Add(119*time.Second+999*time.Millisecond)))
	assert.True(t, inv.IsExpiredAt(created.Add(120*time.Second)))
	assert.True(t, inv.IsExpiredAt(created.Add(time.Hour)))
}
