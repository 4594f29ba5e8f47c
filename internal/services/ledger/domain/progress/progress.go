// Package progress separates attempt-scoped session counters from
// permanently committed level progress.
package progress

import (
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

var (
	// ErrLevelAlreadyCompleted indicates a second completion of the same level.
	ErrLevelAlreadyCompleted = apperrors.New(apperrors.CodeLevelAlreadyCompleted, "level already completed for this game")
	// ErrObjectivesIncomplete indicates completion was requested before the
	// level's required objectives were met.
	ErrObjectivesIncomplete = apperrors.New(apperrors.CodeObjectivesIncomplete, "level objectives are not complete")
	// ErrSessionNotActive indicates a session-scoped operation without an
	// active session.
	ErrSessionNotActive = apperrors.New(apperrors.CodeSessionNotActive, "no active session for this level")
)

// GameProgress holds the permanent, committed counters for one (game, level).
type GameProgress struct {
	GameID uint64
	Level  uint32
	// CoinsCollected is committed at pickup time, not at finalize time.
	// Currency banked during a failed attempt stays banked.
	CoinsCollected      int
	BeastsDefeated      int
	ObjectivesCompleted int
	StartedAt           time.Time
	CompletedAt         *time.Time
	Completed           bool
}

// SessionProgress holds the attempt-scoped counters for one playthrough of a
// level. At most one session is active per (game, level); reset discards it.
type SessionProgress struct {
	GameID              uint64
	Level               uint32
	CoinsCollected      int
	BeastsDefeated      int
	ObjectivesCompleted int
	// Per-item-type pickup counts for the attempt.
	HealthPotions int
	SurvivalKits  int
	Books         int
	StartedAt     time.Time
	Active        bool
}

// NewSession returns a fresh zeroed active session for one level attempt.
func NewSession(gameID uint64, levelID uint32, now time.Time) SessionProgress {
	return SessionProgress{
		GameID:    gameID,
		Level:     levelID,
		StartedAt: now,
		Active:    true,
	}
}

// Commit copies the session's counters into the permanent record.
// Counters are overwritten, not added: the last successful finalize wins.
func Commit(gp GameProgress, sp SessionProgress) GameProgress {
	gp.CoinsCollected = sp.CoinsCollected
	gp.BeastsDefeated = sp.BeastsDefeated
	gp.ObjectivesCompleted = sp.ObjectivesCompleted
	return gp
}

// MarkCompleted stamps the permanent record as completed.
// The completed flag is set at most once per (game, level).
func MarkCompleted(gp GameProgress, now time.Time) (GameProgress, error) {
	if gp.Completed {
		return gp, ErrLevelAlreadyCompleted
	}
	gp.Completed = true
	completedAt := now
	gp.CompletedAt = &completedAt
	return gp, nil
}
