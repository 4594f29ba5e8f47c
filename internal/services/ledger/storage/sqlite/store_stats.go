package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutStats persists a player stat block, replacing any existing row.
func (s *Store) PutStats(ctx context.Context, st stats.Stats) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO player_stats (
    player_id, health, max_health, level, experience,
    items_collected, beasts_defeated, objectives_completed, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    health = excluded.health,
    max_health = excluded.max_health,
    level = excluded.level,
    experience = excluded.experience,
    items_collected = excluded.items_collected,
    beasts_defeated = excluded.beasts_defeated,
    objectives_completed = excluded.objectives_completed,
    updated_at = excluded.updated_at`,
		st.PlayerID,
		st.Health,
		st.MaxHealth,
		st.Level,
		st.Experience,
		st.ItemsCollected,
		st.BeastsDefeated,
		st.ObjectivesCompleted,
		toMillis(st.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put stats: %w", err)
	}
	return nil
}

// GetStats loads a player stat block by address.
func (s *Store) GetStats(ctx context.Context, playerID string) (stats.Stats, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT player_id, health, max_health, level, experience,
       items_collected, beasts_defeated, objectives_completed, updated_at
FROM player_stats WHERE player_id = ?`, playerID)

	var st stats.Stats
	var updatedAt int64
	err := row.Scan(&st.PlayerID, &st.Health, &st.MaxHealth, &st.Level, &st.Experience,
		&st.ItemsCollected, &st.BeastsDefeated, &st.ObjectivesCompleted, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Stats{}, storage.ErrNotFound
	}
	if err != nil {
		return stats.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	st.UpdatedAt = fromMillis(updatedAt)
	return st, nil
}

// PutInventory persists a player inventory, replacing any existing row.
func (s *Store) PutInventory(ctx context.Context, inv stats.Inventory) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO inventories (
    player_id, coins, health_potions, survival_kits, books,
    beast_essences, ancient_knowledge, capacity, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    coins = excluded.coins,
    health_potions = excluded.health_potions,
    survival_kits = excluded.survival_kits,
    books = excluded.books,
    beast_essences = excluded.beast_essences,
    ancient_knowledge = excluded.ancient_knowledge,
    capacity = excluded.capacity,
    updated_at = excluded.updated_at`,
		inv.PlayerID,
		inv.Coins,
		inv.HealthPotions,
		inv.SurvivalKits,
		inv.Books,
		inv.BeastEssences,
		inv.AncientKnowledge,
		inv.Capacity,
		toMillis(inv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put inventory: %w", err)
	}
	return nil
}

// GetInventory loads a player inventory by address.
func (s *Store) GetInventory(ctx context.Context, playerID string) (stats.Inventory, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT player_id, coins, health_potions, survival_kits, books,
       beast_essences, ancient_knowledge, capacity, updated_at
FROM inventories WHERE player_id = ?`, playerID)

	var inv stats.Inventory
	var updatedAt int64
	err := row.Scan(&inv.PlayerID, &inv.Coins, &inv.HealthPotions, &inv.SurvivalKits,
		&inv.Books, &inv.BeastEssences, &inv.AncientKnowledge, &inv.Capacity, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return stats.Inventory{}, storage.ErrNotFound
	}
	if err != nil {
		return stats.Inventory{}, fmt.Errorf("get inventory: %w", err)
	}
	inv.UpdatedAt = fromMillis(updatedAt)
	return inv, nil
}
