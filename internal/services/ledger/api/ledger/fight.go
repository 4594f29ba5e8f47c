package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/fight"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// StartFight opens a combat session against the level's full adversary
// roster. The fight HP pool is seeded from the player's permanent stats and
// the player always holds the opening initiative.
func (s *Service) StartFight(ctx context.Context, playerID string, gameID uint64, levelID uint32) (fight.Session, error) {
	ctx, span := s.startSpan(ctx, "ledger.StartFight")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return fight.Session{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return fight.Session{}, err
	}

	existing, err := s.store.GetFight(ctx, gameID, levelID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fight.Session{}, fmt.Errorf("load fight: %w", err)
	}
	if err == nil && existing.Active {
		return fight.Session{}, fight.ErrAlreadyActive
	}

	def, err := s.GetLevelDefinition(ctx, uint64(levelID))
	if err != nil {
		return fight.Session{}, err
	}
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return fight.Session{}, err
	}

	now := s.clock()
	sess, beasts := fight.NewSession(gameID, levelID, st.Health, def.Beasts, now)
	if err := s.store.PutFight(ctx, sess); err != nil {
		return fight.Session{}, fmt.Errorf("save fight: %w", err)
	}
	// A prior fight's roster may reference beasts the catalog no longer has;
	// the new roster replaces it wholesale.
	if err := s.store.DeleteBeastStates(ctx, gameID, levelID); err != nil {
		return fight.Session{}, fmt.Errorf("clear beast states: %w", err)
	}
	for _, b := range beasts {
		if err := s.store.PutBeastState(ctx, b); err != nil {
			return fight.Session{}, fmt.Errorf("save beast state: %w", err)
		}
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return fight.Session{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeFightStarted,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "fight",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, map[string]any{
		"player_hp":   sess.PlayerHP,
		"adversaries": len(beasts),
	}); err != nil {
		return fight.Session{}, err
	}
	return sess, nil
}

// PlayerAttack resolves one player strike against a target beast. The attack
// never ends the fight by itself: even when the last beast falls, the victory
// is only declared on the following enemy turn.
func (s *Service) PlayerAttack(ctx context.Context, playerID string, gameID uint64, levelID uint32, beastID uint64) (fight.Session, fight.BeastState, error) {
	ctx, span := s.startSpan(ctx, "ledger.PlayerAttack")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return fight.Session{}, fight.BeastState{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return fight.Session{}, fight.BeastState{}, err
	}

	sess, err := s.activeFight(ctx, gameID, levelID)
	if err != nil {
		return fight.Session{}, fight.BeastState{}, err
	}
	if !sess.PlayerTurn {
		return fight.Session{}, fight.BeastState{}, fight.ErrNotPlayerTurn
	}

	target, err := s.store.GetBeastState(ctx, gameID, levelID, beastID)
	if errors.Is(err, storage.ErrNotFound) {
		return fight.Session{}, fight.BeastState{}, fight.ErrBeastNotFound
	}
	if err != nil {
		return fight.Session{}, fight.BeastState{}, fmt.Errorf("load beast state: %w", err)
	}
	if !target.Alive {
		return fight.Session{}, fight.BeastState{}, fight.ErrTargetAlreadyDead
	}

	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return fight.Session{}, fight.BeastState{}, err
	}

	damage := fight.PlayerAttackDamage(st.Level)
	sess.ApplyPlayerAttack(&target, damage)

	if err := s.store.PutBeastState(ctx, target); err != nil {
		return fight.Session{}, fight.BeastState{}, fmt.Errorf("save beast state: %w", err)
	}
	if err := s.store.PutFight(ctx, sess); err != nil {
		return fight.Session{}, fight.BeastState{}, fmt.Errorf("save fight: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypePlayerAttacked,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "beast",
		EntityID:   strconv.FormatUint(beastID, 10),
	}, map[string]any{
		"beast_id":          beastID,
		"damage":            damage,
		"beast_hp":          target.HP,
		"beast_alive":       target.Alive,
		"enemies_remaining": sess.EnemiesRemaining,
	}); err != nil {
		return fight.Session{}, fight.BeastState{}, err
	}
	return sess, target, nil
}

// EnemyTurn resolves the adversary side of the round. If no beasts are left
// alive the fight ends in victory, with zero damage dealt; otherwise every
// living beast strikes once and the combined damage lands on the player.
func (s *Service) EnemyTurn(ctx context.Context, playerID string, gameID uint64, levelID uint32) (fight.Session, error) {
	ctx, span := s.startSpan(ctx, "ledger.EnemyTurn")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return fight.Session{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return fight.Session{}, err
	}

	sess, err := s.activeFight(ctx, gameID, levelID)
	if err != nil {
		return fight.Session{}, err
	}
	if sess.PlayerTurn {
		return fight.Session{}, fight.ErrNotEnemyTurn
	}

	def, err := s.GetLevelDefinition(ctx, uint64(levelID))
	if err != nil {
		return fight.Session{}, err
	}
	beasts, err := s.store.ListBeastStates(ctx, gameID, levelID)
	if err != nil {
		return fight.Session{}, fmt.Errorf("load beast states: %w", err)
	}

	total := 0
	living := 0
	for _, b := range beasts {
		if !b.Alive {
			continue
		}
		living++
		if authored, ok := def.Beast(b.BeastID); ok {
			total += fight.EnemyStrikeDamage(authored)
		}
	}

	if living == 0 {
		return s.finishVictory(ctx, playerID, sess, beasts)
	}

	playerDied := sess.ApplyEnemyStrike(total)
	if err := s.store.PutFight(ctx, sess); err != nil {
		return fight.Session{}, fmt.Errorf("save fight: %w", err)
	}

	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return fight.Session{}, err
	}
	st.SetHealth(sess.PlayerHP)
	st.UpdatedAt = s.clock()
	if err := s.store.PutStats(ctx, st); err != nil {
		return fight.Session{}, fmt.Errorf("save stats: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeEnemyAttacked,
		PlayerID:   playerID,
		GameID:     sess.GameID,
		Level:      sess.Level,
		EntityType: "fight",
		EntityID:   strconv.FormatUint(sess.GameID, 10),
	}, map[string]any{
		"damage":    total,
		"attackers": living,
		"player_hp": sess.PlayerHP,
	}); err != nil {
		return fight.Session{}, err
	}
	if playerDied {
		if err := s.emit(ctx, event.Event{
			Type:       event.TypeFightEnded,
			PlayerID:   playerID,
			GameID:     sess.GameID,
			Level:      sess.Level,
			EntityType: "fight",
			EntityID:   strconv.FormatUint(sess.GameID, 10),
		}, map[string]any{
			"outcome": sess.Outcome.String(),
			"victory": false,
		}); err != nil {
			return fight.Session{}, err
		}
	}
	return sess, nil
}

// finishVictory ends the fight in the player's favor and settles the rewards:
// session kill counters, lifetime stats, and one beast essence per defeat.
func (s *Service) finishVictory(ctx context.Context, playerID string, sess fight.Session, beasts []fight.BeastState) (fight.Session, error) {
	sess.EndVictory()
	if err := s.store.PutFight(ctx, sess); err != nil {
		return fight.Session{}, fmt.Errorf("save fight: %w", err)
	}

	now := s.clock()
	sp, err := s.loadOrStartSession(ctx, sess.GameID, sess.Level, now)
	if err != nil {
		return fight.Session{}, err
	}
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return fight.Session{}, err
	}
	inv, err := s.GetPlayerInventory(ctx, playerID)
	if err != nil {
		return fight.Session{}, err
	}

	defeated := 0
	for _, b := range beasts {
		if !b.Alive {
			defeated++
		}
	}
	sp.BeastsDefeated += defeated
	st.BeastsDefeated += defeated
	st.SetHealth(sess.PlayerHP)
	st.UpdatedAt = now
	if err := inv.Add(stats.ItemBeastEssence, defeated); err != nil && !errors.Is(err, stats.ErrInventoryFull) {
		return fight.Session{}, err
	}
	inv.UpdatedAt = now

	if err := s.store.PutSession(ctx, sp); err != nil {
		return fight.Session{}, fmt.Errorf("save session progress: %w", err)
	}
	if err := s.store.PutStats(ctx, st); err != nil {
		return fight.Session{}, fmt.Errorf("save stats: %w", err)
	}
	if err := s.store.PutInventory(ctx, inv); err != nil {
		return fight.Session{}, fmt.Errorf("save inventory: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return fight.Session{}, err
	}

	for _, b := range beasts {
		if b.Alive {
			continue
		}
		if err := s.emit(ctx, event.Event{
			Type:       event.TypeBeastDefeated,
			PlayerID:   playerID,
			GameID:     sess.GameID,
			Level:      sess.Level,
			EntityType: "beast",
			EntityID:   strconv.FormatUint(b.BeastID, 10),
		}, map[string]any{
			"beast_id": b.BeastID,
		}); err != nil {
			return fight.Session{}, err
		}
	}
	if err := s.emit(ctx, event.Event{
		Type:       event.TypeFightEnded,
		PlayerID:   playerID,
		GameID:     sess.GameID,
		Level:      sess.Level,
		EntityType: "fight",
		EntityID:   strconv.FormatUint(sess.GameID, 10),
	}, map[string]any{
		"outcome":         sess.Outcome.String(),
		"victory":         true,
		"beasts_defeated": defeated,
		"player_hp":       sess.PlayerHP,
	}); err != nil {
		return fight.Session{}, err
	}
	return sess, nil
}

// Flee abandons the active fight. The player's health is preserved as-is and
// the fight counts as a loss.
func (s *Service) Flee(ctx context.Context, playerID string, gameID uint64, levelID uint32) (fight.Session, error) {
	ctx, span := s.startSpan(ctx, "ledger.Flee")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return fight.Session{}, err
	}
	defer unlock()

	if _, err := s.sessionGame(ctx, playerID, gameID, levelID); err != nil {
		return fight.Session{}, err
	}

	sess, err := s.activeFight(ctx, gameID, levelID)
	if err != nil {
		return fight.Session{}, err
	}

	sess.EndFled()
	if err := s.store.PutFight(ctx, sess); err != nil {
		return fight.Session{}, fmt.Errorf("save fight: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, s.clock()); err != nil {
		return fight.Session{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeFightEnded,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "fight",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, map[string]any{
		"outcome":   sess.Outcome.String(),
		"victory":   false,
		"player_hp": sess.PlayerHP,
	}); err != nil {
		return fight.Session{}, err
	}
	return sess, nil
}

// GetFight returns the fight session and roster for one (game, level).
func (s *Service) GetFight(ctx context.Context, gameID uint64, levelID uint32) (fight.Session, []fight.BeastState, error) {
	sess, err := s.store.GetFight(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return fight.Session{}, nil, fight.ErrNotActive
	}
	if err != nil {
		return fight.Session{}, nil, fmt.Errorf("load fight: %w", err)
	}
	beasts, err := s.store.ListBeastStates(ctx, gameID, levelID)
	if err != nil {
		return fight.Session{}, nil, fmt.Errorf("load beast states: %w", err)
	}
	return sess, beasts, nil
}

func (s *Service) activeFight(ctx context.Context, gameID uint64, levelID uint32) (fight.Session, error) {
	sess, err := s.store.GetFight(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return fight.Session{}, fight.ErrNotActive
	}
	if err != nil {
		return fight.Session{}, fmt.Errorf("load fight: %w", err)
	}
	if !sess.Active {
		return fight.Session{}, fight.ErrNotActive
	}
	return sess, nil
}
