package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutProgress persists the permanent progress record for one (game, level).
func (s *Store) PutProgress(ctx context.Context, gp progress.GameProgress) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO game_progress (
    game_id, level, coins_collected, beasts_defeated, objectives_completed,
    started_at, completed_at, completed
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, level) DO UPDATE SET
    coins_collected = excluded.coins_collected,
    beasts_defeated = excluded.beasts_defeated,
    objectives_completed = excluded.objectives_completed,
    completed_at = excluded.completed_at,
    completed = excluded.completed`,
		gp.GameID,
		gp.Level,
		gp.CoinsCollected,
		gp.BeastsDefeated,
		gp.ObjectivesCompleted,
		toMillis(gp.StartedAt),
		toNullMillis(gp.CompletedAt),
		boolToInt(gp.Completed),
	)
	if err != nil {
		return fmt.Errorf("put game progress: %w", err)
	}
	return nil
}

// GetProgress loads the permanent progress record for one (game, level).
func (s *Store) GetProgress(ctx context.Context, gameID uint64, levelID uint32) (progress.GameProgress, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, level, coins_collected, beasts_defeated, objectives_completed,
       started_at, completed_at, completed
FROM game_progress WHERE game_id = ? AND level = ?`, gameID, levelID)

	var gp progress.GameProgress
	var startedAt int64
	var completedAt sql.NullInt64
	var completed int64
	err := row.Scan(&gp.GameID, &gp.Level, &gp.CoinsCollected, &gp.BeastsDefeated,
		&gp.ObjectivesCompleted, &startedAt, &completedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.GameProgress{}, storage.ErrNotFound
	}
	if err != nil {
		return progress.GameProgress{}, fmt.Errorf("get game progress: %w", err)
	}
	gp.StartedAt = fromMillis(startedAt)
	gp.CompletedAt = fromNullMillis(completedAt)
	gp.Completed = completed != 0
	return gp, nil
}

// PutSession persists the attempt-scoped session record for one (game, level).
func (s *Store) PutSession(ctx context.Context, sp progress.SessionProgress) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO session_progress (
    game_id, level, coins_collected, beasts_defeated, objectives_completed,
    health_potions, survival_kits, books, started_at, active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, level) DO UPDATE SET
    coins_collected = excluded.coins_collected,
    beasts_defeated = excluded.beasts_defeated,
    objectives_completed = excluded.objectives_completed,
    health_potions = excluded.health_potions,
    survival_kits = excluded.survival_kits,
    books = excluded.books,
    started_at = excluded.started_at,
    active = excluded.active`,
		sp.GameID,
		sp.Level,
		sp.CoinsCollected,
		sp.BeastsDefeated,
		sp.ObjectivesCompleted,
		sp.HealthPotions,
		sp.SurvivalKits,
		sp.Books,
		toMillis(sp.StartedAt),
		boolToInt(sp.Active),
	)
	if err != nil {
		return fmt.Errorf("put session progress: %w", err)
	}
	return nil
}

// GetSession loads the attempt-scoped session record for one (game, level).
func (s *Store) GetSession(ctx context.Context, gameID uint64, levelID uint32) (progress.SessionProgress, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, level, coins_collected, beasts_defeated, objectives_completed,
       health_potions, survival_kits, books, started_at, active
FROM session_progress WHERE game_id = ? AND level = ?`, gameID, levelID)

	var sp progress.SessionProgress
	var startedAt, active int64
	err := row.Scan(&sp.GameID, &sp.Level, &sp.CoinsCollected, &sp.BeastsDefeated,
		&sp.ObjectivesCompleted, &sp.HealthPotions, &sp.SurvivalKits, &sp.Books,
		&startedAt, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return progress.SessionProgress{}, storage.ErrNotFound
	}
	if err != nil {
		return progress.SessionProgress{}, fmt.Errorf("get session progress: %w", err)
	}
	sp.StartedAt = fromMillis(startedAt)
	sp.Active = active != 0
	return sp, nil
}

// PutObjectiveState stores the session-scoped completion flag for one
// catalog objective.
func (s *Store) PutObjectiveState(ctx context.Context, gameID uint64, levelID uint32, objectiveID uint64, completed bool) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO session_objectives (game_id, level, objective_id, completed)
VALUES (?, ?, ?, ?)
ON CONFLICT (game_id, level, objective_id) DO UPDATE SET
    completed = excluded.completed`,
		gameID, levelID, objectiveID, boolToInt(completed))
	if err != nil {
		return fmt.Errorf("put objective state: %w", err)
	}
	return nil
}

// GetObjectiveState loads the session-scoped completion flag for one
// catalog objective. A missing row reads as not completed.
func (s *Store) GetObjectiveState(ctx context.Context, gameID uint64, levelID uint32, objectiveID uint64) (bool, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT completed FROM session_objectives
WHERE game_id = ? AND level = ? AND objective_id = ?`, gameID, levelID, objectiveID)

	var completed int64
	err := row.Scan(&completed)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get objective state: %w", err)
	}
	return completed != 0, nil
}
