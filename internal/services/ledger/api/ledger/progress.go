package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// sessionGame validates the shared preconditions for session-scoped
// operations: the caller owns an in-progress game currently on this level.
func (s *Service) sessionGame(ctx context.Context, playerID string, gameID uint64, levelID uint32) (game.Game, error) {
	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := requireInProgress(g); err != nil {
		return game.Game{}, err
	}
	if err := requirePlayingLevel(g, levelID); err != nil {
		return game.Game{}, err
	}
	return g, nil
}

// PickupCoin records one coin pickup. The coin is credited to the session
// counter AND to the permanent progress counter and inventory immediately;
// coins banked during a failed attempt are never rolled back.
func (s *Service) PickupCoin(ctx context.Context, playerID string, gameID uint64, levelID uint32, coinIndex int) (progress.SessionProgress, error) {
	ctx, span := s.startSpan(ctx, "ledger.PickupCoin")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return progress.SessionProgress{}, err
	}

	now := s.clock()
	sp, err := s.loadOrStartSession(ctx, gameID, levelID, now)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	gp, err := s.loadOrInitProgress(ctx, gameID, levelID, now)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	inv, err := s.GetPlayerInventory(ctx, playerID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return progress.SessionProgress{}, err
	}

	sp.CoinsCollected++
	gp.CoinsCollected++
	if err := inv.Add(stats.ItemCoin, 1); err != nil {
		return progress.SessionProgress{}, err
	}
	inv.UpdatedAt = now
	st.ItemsCollected++
	st.UpdatedAt = now

	if err := s.store.PutSession(ctx, sp); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save session progress: %w", err)
	}
	if err := s.store.PutProgress(ctx, gp); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save game progress: %w", err)
	}
	if err := s.store.PutInventory(ctx, inv); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save inventory: %w", err)
	}
	if err := s.store.PutStats(ctx, st); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save stats: %w", err)
	}
	if err := s.store.AddLevelCoinsCollected(ctx, uint64(levelID), 1); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("update level coin aggregate: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return progress.SessionProgress{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeCoinCollected,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "coin",
		EntityID:   strconv.Itoa(coinIndex),
	}, map[string]any{
		"coin_index":     coinIndex,
		"session_total":  sp.CoinsCollected,
		"lifetime_total": inv.Coins,
	}); err != nil {
		return progress.SessionProgress{}, err
	}
	return sp, nil
}

// PickupItem records a non-coin pickup: health potions, survival kits and
// books. Items commit to the permanent inventory immediately with the same
// asymmetry as coins, but count against the inventory slot capacity.
func (s *Service) PickupItem(ctx context.Context, playerID string, gameID uint64, levelID uint32, item stats.ItemType, itemIndex int) (progress.SessionProgress, error) {
	ctx, span := s.startSpan(ctx, "ledger.PickupItem")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	defer unlock()

	if item != stats.ItemHealthPotion && item != stats.ItemSurvivalKit && item != stats.ItemBook {
		return progress.SessionProgress{}, apperrors.WithMetadata(apperrors.CodeLevelInvalidSpec,
			"item type cannot be picked up",
			map[string]string{"item": item.String()})
	}

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return progress.SessionProgress{}, err
	}

	now := s.clock()
	sp, err := s.loadOrStartSession(ctx, gameID, levelID, now)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	inv, err := s.GetPlayerInventory(ctx, playerID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return progress.SessionProgress{}, err
	}

	if err := inv.Add(item, 1); err != nil {
		return progress.SessionProgress{}, err
	}
	inv.UpdatedAt = now

	switch item {
	case stats.ItemHealthPotion:
		sp.HealthPotions++
	case stats.ItemSurvivalKit:
		sp.SurvivalKits++
	case stats.ItemBook:
		sp.Books++
	}
	st.ItemsCollected++
	st.UpdatedAt = now

	if err := s.store.PutSession(ctx, sp); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save session progress: %w", err)
	}
	if err := s.store.PutInventory(ctx, inv); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save inventory: %w", err)
	}
	if err := s.store.PutStats(ctx, st); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save stats: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return progress.SessionProgress{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeItemCollected,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "item",
		EntityID:   strconv.Itoa(itemIndex),
	}, map[string]any{
		"item":           item.String(),
		"item_index":     itemIndex,
		"lifetime_total": inv.Count(item),
	}); err != nil {
		return progress.SessionProgress{}, err
	}
	return sp, nil
}

// CompleteObjective marks one catalog objective complete for the current
// session attempt and credits its experience reward. Objective completions
// only reach permanent progress through a successful finalize.
func (s *Service) CompleteObjective(ctx context.Context, playerID string, gameID uint64, levelID uint32, objectiveID uint64) (progress.SessionProgress, error) {
	ctx, span := s.startSpan(ctx, "ledger.CompleteObjective")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return progress.SessionProgress{}, err
	}

	def, err := s.GetLevelDefinition(ctx, uint64(levelID))
	if err != nil {
		return progress.SessionProgress{}, err
	}
	obj, ok := def.Objective(objectiveID)
	if !ok {
		return progress.SessionProgress{}, apperrors.WithMetadata(apperrors.CodeObjectiveNotFound,
			"objective is not part of this level",
			map[string]string{"objective_id": strconv.FormatUint(objectiveID, 10)})
	}

	// Load the session before reading the flag: a lazily restarted attempt
	// clears the flags left behind by the previous one.
	now := s.clock()
	sp, err := s.loadOrStartSession(ctx, gameID, levelID, now)
	if err != nil {
		return progress.SessionProgress{}, err
	}

	done, err := s.store.GetObjectiveState(ctx, gameID, levelID, objectiveID)
	if err != nil {
		return progress.SessionProgress{}, fmt.Errorf("load objective state: %w", err)
	}
	if done {
		return progress.SessionProgress{}, apperrors.WithMetadata(apperrors.CodeObjectiveCompleted,
			"objective is already complete",
			map[string]string{"objective_id": strconv.FormatUint(objectiveID, 10)})
	}
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return progress.SessionProgress{}, err
	}

	sp.ObjectivesCompleted++
	levelsGained := st.AddExperience(obj.Reward)
	st.ObjectivesCompleted++
	st.UpdatedAt = now

	if err := s.store.PutObjectiveState(ctx, gameID, levelID, objectiveID, true); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save objective state: %w", err)
	}
	if err := s.store.PutSession(ctx, sp); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save session progress: %w", err)
	}
	if err := s.store.PutStats(ctx, st); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save stats: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return progress.SessionProgress{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeObjectiveCompleted,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "objective",
		EntityID:   strconv.FormatUint(objectiveID, 10),
	}, map[string]any{
		"objective_id":  objectiveID,
		"title":         obj.Title,
		"reward":        obj.Reward,
		"session_total": sp.ObjectivesCompleted,
	}); err != nil {
		return progress.SessionProgress{}, err
	}
	if levelsGained > 0 {
		if err := s.emit(ctx, event.Event{
			Type:       event.TypePlayerLevelUp,
			PlayerID:   playerID,
			GameID:     gameID,
			Level:      levelID,
			EntityType: "profile",
			EntityID:   playerID,
		}, map[string]any{
			"player_level": st.Level,
			"max_health":   st.MaxHealth,
		}); err != nil {
			return progress.SessionProgress{}, err
		}
	}
	return sp, nil
}

// GetSessionProgress returns the attempt-scoped record for one (game, level).
func (s *Service) GetSessionProgress(ctx context.Context, gameID uint64, levelID uint32) (progress.SessionProgress, error) {
	sp, err := s.store.GetSession(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return progress.SessionProgress{}, progress.ErrSessionNotActive
	}
	if err != nil {
		return progress.SessionProgress{}, fmt.Errorf("load session progress: %w", err)
	}
	return sp, nil
}

// GetGameProgress returns the permanent record for one (game, level).
func (s *Service) GetGameProgress(ctx context.Context, gameID uint64, levelID uint32) (progress.GameProgress, error) {
	gp, err := s.store.GetProgress(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return progress.GameProgress{}, apperrors.WithMetadata(apperrors.CodeNotFound, "no progress for this level",
			map[string]string{"level": strconv.FormatUint(uint64(levelID), 10)})
	}
	if err != nil {
		return progress.GameProgress{}, fmt.Errorf("load game progress: %w", err)
	}
	return gp, nil
}

// ResetSession discards the current attempt and starts a fresh zeroed one.
// Permanent progress and inventory are untouched.
func (s *Service) ResetSession(ctx context.Context, playerID string, gameID uint64, levelID uint32) (progress.SessionProgress, error) {
	ctx, span := s.startSpan(ctx, "ledger.ResetSession")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	defer unlock()

	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return progress.SessionProgress{}, err
	}
	if err := requireInProgress(g); err != nil {
		return progress.SessionProgress{}, err
	}

	now := s.clock()
	sp := progress.NewSession(gameID, levelID, now)
	if err := s.store.PutSession(ctx, sp); err != nil {
		return progress.SessionProgress{}, fmt.Errorf("save session progress: %w", err)
	}

	// Objective completion flags are session-scoped; a reset clears them.
	if err := s.clearObjectiveStates(ctx, gameID, levelID); err != nil {
		return progress.SessionProgress{}, err
	}

	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return progress.SessionProgress{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeSessionReset,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "session",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, nil); err != nil {
		return progress.SessionProgress{}, err
	}
	return sp, nil
}

// FinalizeSession reconciles the current attempt into permanent progress.
// On success the session counters overwrite the permanent ones; on failure
// the session is discarded but inventory already banked during the attempt
// stays banked.
func (s *Service) FinalizeSession(ctx context.Context, playerID string, gameID uint64, levelID uint32, success bool) (progress.GameProgress, error) {
	ctx, span := s.startSpan(ctx, "ledger.FinalizeSession")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return progress.GameProgress{}, err
	}
	defer unlock()

	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return progress.GameProgress{}, err
	}
	if err := requireInProgress(g); err != nil {
		return progress.GameProgress{}, err
	}

	sp, err := s.store.GetSession(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return progress.GameProgress{}, progress.ErrSessionNotActive
	}
	if err != nil {
		return progress.GameProgress{}, fmt.Errorf("load session progress: %w", err)
	}
	if !sp.Active {
		return progress.GameProgress{}, progress.ErrSessionNotActive
	}

	now := s.clock()
	gp, err := s.loadOrInitProgress(ctx, gameID, levelID, now)
	if err != nil {
		return progress.GameProgress{}, err
	}
	if success {
		gp = progress.Commit(gp, sp)
		if err := s.store.PutProgress(ctx, gp); err != nil {
			return progress.GameProgress{}, fmt.Errorf("save game progress: %w", err)
		}
	}

	sp.Active = false
	if err := s.store.PutSession(ctx, sp); err != nil {
		return progress.GameProgress{}, fmt.Errorf("save session progress: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return progress.GameProgress{}, err
	}

	message := "Failed"
	if success {
		message = "Success"
	}
	if err := s.emit(ctx, event.Event{
		Type:       event.TypeSessionFinalized,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "session",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, map[string]any{
		"success":              success,
		"message":              message,
		"coins_collected":      sp.CoinsCollected,
		"beasts_defeated":      sp.BeastsDefeated,
		"objectives_completed": sp.ObjectivesCompleted,
	}); err != nil {
		return progress.GameProgress{}, err
	}
	return gp, nil
}
