package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutProfile persists a player profile record, replacing any existing row.
func (s *Store) PutProfile(ctx context.Context, p profile.Profile) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (
    player_id, username, archetype, created_at, last_active_at,
    total_games_played, total_score, highest_level, is_active
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    username = excluded.username,
    archetype = excluded.archetype,
    last_active_at = excluded.last_active_at,
    total_games_played = excluded.total_games_played,
    total_score = excluded.total_score,
    highest_level = excluded.highest_level,
    is_active = excluded.is_active`,
		p.PlayerID,
		p.Username,
		p.Archetype.String(),
		toMillis(p.CreatedAt),
		toMillis(p.LastActiveAt),
		p.TotalGamesPlayed,
		p.TotalScore,
		p.HighestLevel,
		boolToInt(p.IsActive),
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

// GetProfile loads a player profile by address.
func (s *Store) GetProfile(ctx context.Context, playerID string) (profile.Profile, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT player_id, username, archetype, created_at, last_active_at,
       total_games_played, total_score, highest_level, is_active
FROM profiles WHERE player_id = ?`, playerID)

	var p profile.Profile
	var archetype string
	var createdAt, lastActiveAt int64
	var isActive int64
	err := row.Scan(
		&p.PlayerID,
		&p.Username,
		&archetype,
		&createdAt,
		&lastActiveAt,
		&p.TotalGamesPlayed,
		&p.TotalScore,
		&p.HighestLevel,
		&isActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return profile.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	p.Archetype = profile.ArchetypeFromLabel(archetype)
	p.CreatedAt = fromMillis(createdAt)
	p.LastActiveAt = fromMillis(lastActiveAt)
	p.IsActive = isActive != 0
	return p, nil
}
