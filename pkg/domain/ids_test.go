package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "friendsd/pkg/domain-errors"
)

func TestParsePlayerID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePlayerID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParsePlayerID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts dashed and undashed forms of the same id", func(t *testing.T) {
		dashed, err := ParsePlayerID("069a79f4-44e9-4726-a5be-fca90e38aaf5")
		require.NoError(t, err)
		undashed, err := ParsePlayerID("069a79f444e94726a5befca90e38aaf5")
		require.NoError(t, err)
		assert.Equal(t, dashed, undashed)
		assert.Equal(t, "069a79f4-44e9-4726-a5be-fca90e38aaf5", undashed.String())
	})
}

func TestParsePlayerID_RejectsHostileInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE users;--", true},
		{"Delimiter injection", "069a79f4-44e9-4726-a5be-fca90e38aaf5|x", true},
		{"Null byte injection", "069a79f4\x00-44e9-4726-a5be-fca90e38aaf5", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Braced form", "{069a79f4-44e9-4726-a5be-fca90e38aaf5}", true},
		{"URN form", "urn:uuid:069a79f4-44e9-4726-a5be-fca90e38aaf5", true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "069A79F4-44E9-4726-A5BE-FCA90E38AAF5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlayerID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPlayerID_JSON(t *testing.T) {
	id := NewPlayerID()
	payload := map[PlayerID][]PlayerID{id: {id}}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.Contains(t, string(raw), id.String())

	var decoded map[PlayerID][]PlayerID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, payload, decoded)

	var bad PlayerID
	err = json.Unmarshal([]byte(`"nope"`), &bad)
	require.Error(t, err)
}

func TestValidateDisplayName(t *testing.T) {
	require.NoError(t, ValidateDisplayName("Notch"))
	require.NoError(t, ValidateDisplayName("jeb_"))
	assert.True(t, dErrors.HasCode(ValidateDisplayName(""), dErrors.CodeInvalidInput))
	assert.True(t, dErrors.HasCode(ValidateDisplayName("this_name_is_too_long"), dErrors.CodeInvalidInput))
	assert.True(t, dErrors.HasCode(ValidateDisplayName("bob/../x"), dErrors.CodeInvalidInput))
	assert.True(t, SameName(" Alice", "aLiCe"))
	assert.False(t, SameName("alice", "alice2"))
}
