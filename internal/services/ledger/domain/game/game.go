// Package game holds the game session record and its status machine.
package game

import (
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
)

// Status describes the game session lifecycle.
type Status int

const (
	// StatusNotStarted indicates a created but not yet started game.
	StatusNotStarted Status = iota
	// StatusInProgress indicates an actively played game.
	StatusInProgress
	// StatusPaused indicates a suspended game.
	StatusPaused
	// StatusCompleted is the terminal game state.
	StatusCompleted
)

var (
	// ErrNotOwner indicates the caller does not own the referenced game.
	ErrNotOwner = apperrors.New(apperrors.CodeNotOwner, "caller does not own this game")
	// ErrNotInProgress indicates an operation that requires an in-progress game.
	ErrNotInProgress = apperrors.New(apperrors.CodeInvalidGameState, "game is not in progress")
	// ErrInvalidStatusTransition indicates a backwards status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeInvalidStatusTransition, "game status transition is not allowed")
	// ErrCannotSkipLevels indicates a start_level target beyond the next level.
	ErrCannotSkipLevels = apperrors.New(apperrors.CodeCannotSkipLevels, "levels must be played in order")
	// ErrMustCompleteCurrentLevel indicates a complete_level for a level not being played.
	ErrMustCompleteCurrentLevel = apperrors.New(apperrors.CodeMustCompleteCurrentLevel, "must complete the current level first")
)

// statusWireCodes is the explicit boundary mapping to the on-chain ABI.
// NotStarted=0, InProgress=1, Paused=2, Completed=3.
var statusWireCodes = map[Status]uint8{
	StatusNotStarted: 0,
	StatusInProgress: 1,
	StatusPaused:     2,
	StatusCompleted:  3,
}

// WireCode returns the numeric status code used by the external payload schema.
func (s Status) WireCode() (uint8, bool) {
	code, ok := statusWireCodes[s]
	return code, ok
}

// StatusFromWire maps an external numeric code back to a status.
func StatusFromWire(code uint8) (Status, bool) {
	for s, c := range statusWireCodes {
		if c == code {
			return s, true
		}
	}
	return StatusNotStarted, false
}

// String returns the lowercase storage label for the status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusPaused:
		return "paused"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// StatusFromLabel parses a storage label back to a status.
func StatusFromLabel(label string) Status {
	switch label {
	case "in_progress":
		return StatusInProgress
	case "paused":
		return StatusPaused
	case "completed":
		return StatusCompleted
	default:
		return StatusNotStarted
	}
}

// IsStatusTransitionAllowed reports whether a status change is permitted.
// Transitions only move forward through the lifecycle; the ledger never
// reopens a completed game.
func IsStatusTransitionAllowed(from, to Status) bool {
	return to > from
}

// Game represents one player's run through the level progression.
type Game struct {
	// ID is allocated by the counter allocator and unique across the ledger.
	ID       uint64
	PlayerID string
	Status   Status
	// CurrentLevel is 0 until the first start_level call targets level 1.
	CurrentLevel uint32
	CreatedAt    time.Time
	Score        int64
	// Archetype snapshots the profile archetype at creation time so later
	// profile edits cannot change level compatibility mid-run.
	Archetype profile.Archetype
}

// ScoreAward computes the score credited on level completion.
func ScoreAward(coins, beasts, objectives int) int64 {
	return 100 + 10*int64(coins) + 25*int64(beasts) + 50*int64(objectives)
}

// ExperienceAward computes the experience credited on level completion.
func ExperienceAward(level uint32, coins, beasts, objectives int) int {
	return 50*int(level) + 10*coins + 25*beasts + 100*objectives
}
