package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutLevel stores a level definition, replacing the header and every
// sub-record wholesale. The lifetime coin aggregate on the header is
// preserved across modifications.
func (s *Store) PutLevel(ctx context.Context, def level.Definition) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin level tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	lvl := def.Level
	if _, err := tx.ExecContext(ctx, `
INSERT INTO levels (
    id, name, archetype, active, created_at, updated_at, created_by,
    next_level, coin_spawn_count, coins_collected_total,
    env_scale, env_x, env_y, env_z, env_rotation
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    archetype = excluded.archetype,
    active = excluded.active,
    updated_at = excluded.updated_at,
    next_level = excluded.next_level,
    coin_spawn_count = excluded.coin_spawn_count,
    env_scale = excluded.env_scale,
    env_x = excluded.env_x,
    env_y = excluded.env_y,
    env_z = excluded.env_z,
    env_rotation = excluded.env_rotation`,
		lvl.ID,
		lvl.Name,
		lvl.Archetype.String(),
		boolToInt(lvl.Active),
		toMillis(lvl.CreatedAt),
		toMillis(lvl.UpdatedAt),
		lvl.CreatedBy,
		lvl.NextLevel,
		def.Coins.SpawnCount,
		def.Coins.TotalCollected,
		def.Environment.Scale,
		def.Environment.Position.X,
		def.Environment.Position.Y,
		def.Environment.Position.Z,
		def.Environment.Rotation,
	); err != nil {
		return fmt.Errorf("put level header: %w", err)
	}

	// Sub-records are replaced wholesale rather than diffed.
	for _, table := range []string{"level_coins", "level_beasts", "level_objectives"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE level_id = ?", lvl.ID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, pos := range def.Coins.Positions {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO level_coins (level_id, ord, x, y, z) VALUES (?, ?, ?, ?, ?)",
			lvl.ID, i, pos.X, pos.Y, pos.Z,
		); err != nil {
			return fmt.Errorf("put level coin %d: %w", i, err)
		}
	}

	for _, b := range def.Beasts {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO level_beasts (level_id, beast_id, beast_type, x, y, z, health, damage, speed, defeated)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			lvl.ID, b.ID, b.Type.String(),
			b.Position.X, b.Position.Y, b.Position.Z,
			b.Health, b.Damage, b.Speed, boolToInt(b.Defeated),
		); err != nil {
			return fmt.Errorf("put level beast %d: %w", b.ID, err)
		}
	}

	for _, o := range def.Objectives {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO level_objectives (level_id, objective_id, title, description, objective_type, target, required_count, reward)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			lvl.ID, o.ID, o.Title, o.Description, o.Type.String(),
			o.Target, o.RequiredCount, o.Reward,
		); err != nil {
			return fmt.Errorf("put level objective %d: %w", o.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit level tx: %w", err)
	}
	return nil
}

// GetLevel loads a level catalog header by ID.
func (s *Store) GetLevel(ctx context.Context, levelID uint64) (level.Level, error) {
	lvl, _, _, err := s.getLevelHeader(ctx, levelID)
	return lvl, err
}

func (s *Store) getLevelHeader(ctx context.Context, levelID uint64) (level.Level, level.Coins, level.Environment, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, name, archetype, active, created_at, updated_at, created_by,
       next_level, coin_spawn_count, coins_collected_total,
       env_scale, env_x, env_y, env_z, env_rotation
FROM levels WHERE id = ?`, levelID)

	var lvl level.Level
	var coins level.Coins
	var env level.Environment
	var archetype string
	var active int64
	var createdAt, updatedAt int64
	err := row.Scan(
		&lvl.ID, &lvl.Name, &archetype, &active, &createdAt, &updatedAt,
		&lvl.CreatedBy, &lvl.NextLevel, &coins.SpawnCount, &coins.TotalCollected,
		&env.Scale, &env.Position.X, &env.Position.Y, &env.Position.Z, &env.Rotation,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return level.Level{}, level.Coins{}, level.Environment{}, storage.ErrNotFound
	}
	if err != nil {
		return level.Level{}, level.Coins{}, level.Environment{}, fmt.Errorf("get level: %w", err)
	}
	lvl.Archetype = profile.ArchetypeFromLabel(archetype)
	lvl.Active = active != 0
	lvl.CreatedAt = fromMillis(createdAt)
	lvl.UpdatedAt = fromMillis(updatedAt)
	return lvl, coins, env, nil
}

// GetLevelDefinition loads a full level definition including every sub-record.
func (s *Store) GetLevelDefinition(ctx context.Context, levelID uint64) (level.Definition, error) {
	lvl, coins, env, err := s.getLevelHeader(ctx, levelID)
	if err != nil {
		return level.Definition{}, err
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT x, y, z FROM level_coins WHERE level_id = ? ORDER BY ord", levelID)
	if err != nil {
		return level.Definition{}, fmt.Errorf("list level coins: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pos level.Position
		if err := rows.Scan(&pos.X, &pos.Y, &pos.Z); err != nil {
			return level.Definition{}, fmt.Errorf("scan level coin: %w", err)
		}
		coins.Positions = append(coins.Positions, pos)
	}
	if err := rows.Err(); err != nil {
		return level.Definition{}, fmt.Errorf("read level coins: %w", err)
	}

	beastRows, err := s.sqlDB.QueryContext(ctx, `
SELECT beast_id, beast_type, x, y, z, health, damage, speed, defeated
FROM level_beasts WHERE level_id = ? ORDER BY beast_id`, levelID)
	if err != nil {
		return level.Definition{}, fmt.Errorf("list level beasts: %w", err)
	}
	defer beastRows.Close()
	var beasts []level.Beast
	for beastRows.Next() {
		var b level.Beast
		var beastType string
		var defeated int64
		if err := beastRows.Scan(&b.ID, &beastType, &b.Position.X, &b.Position.Y, &b.Position.Z,
			&b.Health, &b.Damage, &b.Speed, &defeated); err != nil {
			return level.Definition{}, fmt.Errorf("scan level beast: %w", err)
		}
		b.Type = level.AdversaryFromLabel(beastType)
		b.Defeated = defeated != 0
		beasts = append(beasts, b)
	}
	if err := beastRows.Err(); err != nil {
		return level.Definition{}, fmt.Errorf("read level beasts: %w", err)
	}

	objRows, err := s.sqlDB.QueryContext(ctx, `
SELECT objective_id, title, description, objective_type, target, required_count, reward
FROM level_objectives WHERE level_id = ? ORDER BY objective_id`, levelID)
	if err != nil {
		return level.Definition{}, fmt.Errorf("list level objectives: %w", err)
	}
	defer objRows.Close()
	var objectives []level.Objective
	for objRows.Next() {
		var o level.Objective
		var objType string
		if err := objRows.Scan(&o.ID, &o.Title, &o.Description, &objType,
			&o.Target, &o.RequiredCount, &o.Reward); err != nil {
			return level.Definition{}, fmt.Errorf("scan level objective: %w", err)
		}
		o.Type = level.ObjectiveTypeFromLabel(objType)
		objectives = append(objectives, o)
	}
	if err := objRows.Err(); err != nil {
		return level.Definition{}, fmt.Errorf("read level objectives: %w", err)
	}

	return level.Definition{
		Level:       lvl,
		Coins:       coins,
		Beasts:      beasts,
		Objectives:  objectives,
		Environment: env,
	}, nil
}

// SetLevelActive toggles a level's availability without touching its content.
func (s *Store) SetLevelActive(ctx context.Context, levelID uint64, active bool, updatedAt time.Time) error {
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE levels SET active = ?, updated_at = ? WHERE id = ?",
		boolToInt(active), toMillis(updatedAt), levelID)
	if err != nil {
		return fmt.Errorf("set level active: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set level active: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// AddLevelCoinsCollected raises the lifetime coin pickup aggregate.
func (s *Store) AddLevelCoinsCollected(ctx context.Context, levelID uint64, count int) error {
	if count <= 0 {
		return nil
	}
	res, err := s.sqlDB.ExecContext(ctx,
		"UPDATE levels SET coins_collected_total = coins_collected_total + ? WHERE id = ?",
		count, levelID)
	if err != nil {
		return fmt.Errorf("add level coins collected: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("add level coins collected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListLevels returns a page of level headers ordered by ID ascending. The
// page token is the last ID of the previous page.
func (s *Store) ListLevels(ctx context.Context, pageSize int, pageToken string) (storage.LevelPage, error) {
	if pageSize <= 0 {
		pageSize = 50
	}
	var afterID uint64
	if pageToken != "" {
		parsed, err := strconv.ParseUint(pageToken, 10, 64)
		if err != nil {
			return storage.LevelPage{}, fmt.Errorf("parse page token: %w", err)
		}
		afterID = parsed
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, archetype, active, created_at, updated_at, created_by, next_level
FROM levels WHERE id > ? ORDER BY id LIMIT ?`, afterID, pageSize+1)
	if err != nil {
		return storage.LevelPage{}, fmt.Errorf("list levels: %w", err)
	}
	defer rows.Close()

	var page storage.LevelPage
	for rows.Next() {
		var lvl level.Level
		var archetype string
		var active, createdAt, updatedAt int64
		if err := rows.Scan(&lvl.ID, &lvl.Name, &archetype, &active,
			&createdAt, &updatedAt, &lvl.CreatedBy, &lvl.NextLevel); err != nil {
			return storage.LevelPage{}, fmt.Errorf("scan level: %w", err)
		}
		lvl.Archetype = profile.ArchetypeFromLabel(archetype)
		lvl.Active = active != 0
		lvl.CreatedAt = fromMillis(createdAt)
		lvl.UpdatedAt = fromMillis(updatedAt)
		page.Levels = append(page.Levels, lvl)
	}
	if err := rows.Err(); err != nil {
		return storage.LevelPage{}, fmt.Errorf("read levels: %w", err)
	}

	if len(page.Levels) > pageSize {
		page.Levels = page.Levels[:pageSize]
		page.NextPageToken = strconv.FormatUint(page.Levels[pageSize-1].ID, 10)
	}
	return page, nil
}
