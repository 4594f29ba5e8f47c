package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/fight"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// outcomeFromLabel reverses fight.Outcome.String for persisted rows.
func outcomeFromLabel(label string) fight.Outcome {
	switch label {
	case "victory":
		return fight.OutcomeVictory
	case "defeat":
		return fight.OutcomeDefeat
	case "fled":
		return fight.OutcomeFled
	default:
		return fight.OutcomeNone
	}
}

// PutFight persists a fight session, replacing any existing row.
func (s *Store) PutFight(ctx context.Context, sess fight.Session) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO fights (
    game_id, level, started_at, turn_number, player_turn,
    player_hp, enemies_remaining, active, outcome
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (game_id, level) DO UPDATE SET
    started_at = excluded.started_at,
    turn_number = excluded.turn_number,
    player_turn = excluded.player_turn,
    player_hp = excluded.player_hp,
    enemies_remaining = excluded.enemies_remaining,
    active = excluded.active,
    outcome = excluded.outcome`,
		sess.GameID,
		sess.Level,
		toMillis(sess.StartedAt),
		sess.TurnNumber,
		boolToInt(sess.PlayerTurn),
		sess.PlayerHP,
		sess.EnemiesRemaining,
		boolToInt(sess.Active),
		sess.Outcome.String(),
	)
	if err != nil {
		return fmt.Errorf("put fight: %w", err)
	}
	return nil
}

// GetFight loads the fight session for one (game, level).
func (s *Store) GetFight(ctx context.Context, gameID uint64, levelID uint32) (fight.Session, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, level, started_at, turn_number, player_turn,
       player_hp, enemies_remaining, active, outcome
FROM fights WHERE game_id = ? AND level = ?`, gameID, levelID)

	var sess fight.Session
	var startedAt, playerTurn, active int64
	var outcome string
	err := row.Scan(&sess.GameID, &sess.Level, &startedAt, &sess.TurnNumber,
		&playerTurn, &sess.PlayerHP, &sess.EnemiesRemaining, &active, &outcome)
	if errors.Is(err, sql.ErrNoRows) {
		return fight.Session{}, storage.ErrNotFound
	}
	if err != nil {
		return fight.Session{}, fmt.Errorf("get fight: %w", err)
	}
	sess.StartedAt = fromMillis(startedAt)
	sess.PlayerTurn = playerTurn != 0
	sess.Active = active != 0
	sess.Outcome = outcomeFromLabel(outcome)
	return sess, nil
}

// PutBeastState persists fight-local state for one adversary.
func (s *Store) PutBeastState(ctx context.Context, b fight.BeastState) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO fight_beasts (game_id, level, beast_id, hp, alive)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (game_id, level, beast_id) DO UPDATE SET
    hp = excluded.hp,
    alive = excluded.alive`,
		b.GameID, b.Level, b.BeastID, b.HP, boolToInt(b.Alive))
	if err != nil {
		return fmt.Errorf("put beast state: %w", err)
	}
	return nil
}

// GetBeastState loads fight-local state for one adversary.
func (s *Store) GetBeastState(ctx context.Context, gameID uint64, levelID uint32, beastID uint64) (fight.BeastState, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, level, beast_id, hp, alive
FROM fight_beasts WHERE game_id = ? AND level = ? AND beast_id = ?`,
		gameID, levelID, beastID)

	var b fight.BeastState
	var alive int64
	err := row.Scan(&b.GameID, &b.Level, &b.BeastID, &b.HP, &alive)
	if errors.Is(err, sql.ErrNoRows) {
		return fight.BeastState{}, storage.ErrNotFound
	}
	if err != nil {
		return fight.BeastState{}, fmt.Errorf("get beast state: %w", err)
	}
	b.Alive = alive != 0
	return b, nil
}

// ListBeastStates returns the fight roster for one (game, level) ordered by
// beast ID.
func (s *Store) ListBeastStates(ctx context.Context, gameID uint64, levelID uint32) ([]fight.BeastState, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT game_id, level, beast_id, hp, alive
FROM fight_beasts WHERE game_id = ? AND level = ? ORDER BY beast_id`,
		gameID, levelID)
	if err != nil {
		return nil, fmt.Errorf("list beast states: %w", err)
	}
	defer rows.Close()

	var beasts []fight.BeastState
	for rows.Next() {
		var b fight.BeastState
		var alive int64
		if err := rows.Scan(&b.GameID, &b.Level, &b.BeastID, &b.HP, &alive); err != nil {
			return nil, fmt.Errorf("scan beast state: %w", err)
		}
		b.Alive = alive != 0
		beasts = append(beasts, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read beast states: %w", err)
	}
	return beasts, nil
}

// DeleteBeastStates removes the entire roster for one (game, level). Deleting
// an empty roster is not an error.
func (s *Store) DeleteBeastStates(ctx context.Context, gameID uint64, levelID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM fight_beasts WHERE game_id = ? AND level = ?",
		gameID, levelID)
	if err != nil {
		return fmt.Errorf("delete beast states: %w", err)
	}
	return nil
}
