package domain

import (
	"github.com/google/uuid"

	dErrors "friendsd/pkg/domain-errors"
)

// PlayerID is the durable address of a player. It never changes across
// sessions or renames, unlike the display name.
type PlayerID uuid.UUID

// NilPlayerID is the zero address. It is never a valid identity.
var NilPlayerID PlayerID

// ParsePlayerID accepts the canonical dashed form and the 32 hex digit
// undashed form used by profile services. The nil UUID is rejected.
func ParsePlayerID(s string) (PlayerID, error) {
	if len(s) != 36 && len(s) != 32 {
		return NilPlayerID, dErrors.New(dErrors.CodeInvalidInput, "player id must be a dashed or undashed uuid")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return NilPlayerID, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid player id")
	}
	if u == uuid.Nil {
		return NilPlayerID, dErrors.New(dErrors.CodeInvalidInput, "player id must not be nil")
	}
	return PlayerID(u), nil
}

// MustPlayerID parses s and panics on failure. Test and fixture use only.
func MustPlayerID(s string) PlayerID {
	id, err := ParsePlayerID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// NewPlayerID returns a random address.
func NewPlayerID() PlayerID {
	return PlayerID(uuid.New())
}

func (id PlayerID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero address.
func (id PlayerID) IsNil() bool {
	return id == NilPlayerID
}

// MarshalText encodes the dashed form so PlayerID works as a JSON value and
// map key.
func (id PlayerID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *PlayerID) UnmarshalText(b []byte) error {
	parsed, err := ParsePlayerID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Less orders ids by their string form.
func (id PlayerID) Less(other PlayerID) bool {
	return id.String() < other.String()
}
