package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutGame persists a game session record, replacing any existing row.
func (s *Store) PutGame(ctx context.Context, g game.Game) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO games (id, player_id, status, current_level, created_at, score, archetype)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    status = excluded.status,
    current_level = excluded.current_level,
    score = excluded.score`,
		g.ID,
		g.PlayerID,
		g.Status.String(),
		g.CurrentLevel,
		toMillis(g.CreatedAt),
		g.Score,
		g.Archetype.String(),
	)
	if err != nil {
		return fmt.Errorf("put game: %w", err)
	}
	return nil
}

// GetGame loads a game session by ID.
func (s *Store) GetGame(ctx context.Context, gameID uint64) (game.Game, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, player_id, status, current_level, created_at, score, archetype
FROM games WHERE id = ?`, gameID)

	var g game.Game
	var status, archetype string
	var createdAt int64
	err := row.Scan(&g.ID, &g.PlayerID, &status, &g.CurrentLevel, &createdAt, &g.Score, &archetype)
	if errors.Is(err, sql.ErrNoRows) {
		return game.Game{}, storage.ErrNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("get game: %w", err)
	}
	g.Status = game.StatusFromLabel(status)
	g.CreatedAt = fromMillis(createdAt)
	g.Archetype = profile.ArchetypeFromLabel(archetype)
	return g, nil
}
