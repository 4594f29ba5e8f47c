// Package profile holds player identity records and the archetype enum.
package profile

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

// Archetype describes the player character category gating level compatibility.
type Archetype int

const (
	// ArchetypeUnspecified represents an invalid archetype value.
	ArchetypeUnspecified Archetype = iota
	// ArchetypeMan is the human male archetype.
	ArchetypeMan
	// ArchetypeWoman is the human female archetype.
	ArchetypeWoman
	// ArchetypeBeast is the beast archetype.
	ArchetypeBeast
	// ArchetypeSpirit is the spirit archetype.
	ArchetypeSpirit
)

var (
	// ErrEmptyUsername indicates a missing username.
	ErrEmptyUsername = apperrors.New(apperrors.CodeProfileEmptyUsername, "username is required")
	// ErrInvalidArchetype indicates a missing or invalid archetype.
	ErrInvalidArchetype = apperrors.New(apperrors.CodeProfileInvalidClass, "player archetype is required")
	// ErrNotFound indicates the caller has no profile record.
	ErrNotFound = apperrors.New(apperrors.CodeProfileNotFound, "player profile not found")
	// ErrAlreadyExists indicates the identity already holds a profile.
	ErrAlreadyExists = apperrors.New(apperrors.CodeProfileAlreadyExists, "player profile already exists")
)

// archetypeWireCodes is the explicit boundary mapping to the on-chain ABI.
// Man=0, Woman=1, Beast=2, Spirit=3.
var archetypeWireCodes = map[Archetype]uint8{
	ArchetypeMan:    0,
	ArchetypeWoman:  1,
	ArchetypeBeast:  2,
	ArchetypeSpirit: 3,
}

// WireCode returns the numeric code used by the external payload schema.
func (a Archetype) WireCode() (uint8, bool) {
	code, ok := archetypeWireCodes[a]
	return code, ok
}

// ArchetypeFromWire maps an external numeric code back to an archetype.
func ArchetypeFromWire(code uint8) (Archetype, bool) {
	for a, c := range archetypeWireCodes {
		if c == code {
			return a, true
		}
	}
	return ArchetypeUnspecified, false
}

// IsValid reports whether the archetype is a usable value.
func (a Archetype) IsValid() bool {
	_, ok := archetypeWireCodes[a]
	return ok
}

// String returns the lowercase label used in storage and event payloads.
func (a Archetype) String() string {
	switch a {
	case ArchetypeMan:
		return "man"
	case ArchetypeWoman:
		return "woman"
	case ArchetypeBeast:
		return "beast"
	case ArchetypeSpirit:
		return "spirit"
	default:
		return "unspecified"
	}
}

// ArchetypeFromLabel parses a storage label back to an archetype.
func ArchetypeFromLabel(label string) Archetype {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "man":
		return ArchetypeMan
	case "woman":
		return ArchetypeWoman
	case "beast":
		return ArchetypeBeast
	case "spirit":
		return ArchetypeSpirit
	default:
		return ArchetypeUnspecified
	}
}

// Profile represents a player identity record.
// Profiles are created once per identity and never deleted.
type Profile struct {
	// PlayerID is the player address, the identity key for all ledger records.
	PlayerID  string
	Username  string
	Archetype Archetype
	CreatedAt time.Time
	// LastActiveAt is raised by every mutating ledger operation the player issues.
	LastActiveAt time.Time
	// TotalGamesPlayed counts create_game calls over the profile lifetime.
	TotalGamesPlayed int
	// TotalScore accumulates score awards from completed levels.
	TotalScore int64
	// HighestLevel is only ever raised, never lowered.
	HighestLevel uint32
	IsActive     bool
}

// New validates input and builds a fresh profile record.
func New(playerID, username string, archetype Archetype, now time.Time) (Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Profile{}, ErrEmptyUsername
	}
	if !archetype.IsValid() {
		return Profile{}, ErrInvalidArchetype
	}
	return Profile{
		PlayerID:     strings.TrimSpace(playerID),
		Username:     username,
		Archetype:    archetype,
		CreatedAt:    now,
		LastActiveAt: now,
		IsActive:     true,
	}, nil
}
