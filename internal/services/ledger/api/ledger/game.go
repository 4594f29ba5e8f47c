package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// CreateGame starts a new run for the caller. The caller must already hold
// a profile; the game snapshots the profile archetype and begins in
// progress at level 0, so the first StartLevel must target level 1.
func (s *Service) CreateGame(ctx context.Context, playerID string) (game.Game, error) {
	ctx, span := s.startSpan(ctx, "ledger.CreateGame")
	defer span.End()

	p, err := s.store.GetProfile(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.Game{}, profile.ErrNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load profile: %w", err)
	}

	gameID, err := s.store.AllocateNext(ctx, storage.CounterGame)
	if err != nil {
		return game.Game{}, fmt.Errorf("allocate game id: %w", err)
	}

	now := s.clock()
	g := game.Game{
		ID:           gameID,
		PlayerID:     p.PlayerID,
		Status:       game.StatusInProgress,
		CurrentLevel: 0,
		CreatedAt:    now,
		Archetype:    p.Archetype,
	}
	if err := s.store.PutGame(ctx, g); err != nil {
		return game.Game{}, fmt.Errorf("save game: %w", err)
	}

	p.TotalGamesPlayed++
	p.LastActiveAt = now
	if err := s.store.PutProfile(ctx, p); err != nil {
		return game.Game{}, fmt.Errorf("save profile: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeGameCreated,
		PlayerID:   p.PlayerID,
		GameID:     gameID,
		EntityType: "game",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, map[string]any{
		"archetype": g.Archetype.String(),
	}); err != nil {
		return game.Game{}, err
	}
	return g, nil
}

// GetGame returns a game session record.
func (s *Service) GetGame(ctx context.Context, gameID uint64) (game.Game, error) {
	g, err := s.store.GetGame(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.Game{}, apperrors.WithMetadata(apperrors.CodeNotFound, "game not found",
			map[string]string{"game_id": strconv.FormatUint(gameID, 10)})
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load game: %w", err)
	}
	return g, nil
}

// SetGameStatus moves a game forward through its lifecycle. Backwards
// transitions are rejected; a completed game never reopens.
func (s *Service) SetGameStatus(ctx context.Context, playerID string, gameID uint64, to game.Status) (game.Game, error) {
	ctx, span := s.startSpan(ctx, "ledger.SetGameStatus")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return game.Game{}, err
	}
	defer unlock()

	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if !game.IsStatusTransitionAllowed(g.Status, to) {
		return game.Game{}, game.ErrInvalidStatusTransition
	}

	from := g.Status
	g.Status = to
	if err := s.store.PutGame(ctx, g); err != nil {
		return game.Game{}, fmt.Errorf("save game: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, s.clock()); err != nil {
		return game.Game{}, err
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeGameStatusChanged,
		PlayerID:   playerID,
		GameID:     gameID,
		EntityType: "game",
		EntityID:   strconv.FormatUint(gameID, 10),
	}, map[string]any{
		"from": from.String(),
		"to":   to.String(),
	}); err != nil {
		return game.Game{}, err
	}
	return g, nil
}

// StartLevel enters a level. The level must exist, be active, and match the
// game's archetype snapshot; levels cannot be skipped. Entering a level
// re-initializes its permanent progress record and emits the full level
// payload so the client can render without a separate fetch.
func (s *Service) StartLevel(ctx context.Context, playerID string, gameID uint64, levelID uint32) (game.Game, error) {
	ctx, span := s.startSpan(ctx, "ledger.StartLevel")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return game.Game{}, err
	}
	defer unlock()

	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := requireInProgress(g); err != nil {
		return game.Game{}, err
	}

	def, err := s.GetLevelDefinition(ctx, uint64(levelID))
	if err != nil {
		return game.Game{}, err
	}
	if !def.Level.Active {
		return game.Game{}, level.ErrNotActive
	}
	if def.Level.Archetype != g.Archetype {
		return game.Game{}, level.ErrArchetypeMismatch
	}
	if levelID > g.CurrentLevel+1 {
		return game.Game{}, game.ErrCannotSkipLevels
	}

	now := s.clock()
	g.CurrentLevel = levelID
	if err := s.store.PutGame(ctx, g); err != nil {
		return game.Game{}, fmt.Errorf("save game: %w", err)
	}
	if err := s.store.PutProgress(ctx, progress.GameProgress{
		GameID:    gameID,
		Level:     levelID,
		StartedAt: now,
	}); err != nil {
		return game.Game{}, fmt.Errorf("save game progress: %w", err)
	}
	if err := s.touchProfile(ctx, playerID, now); err != nil {
		return game.Game{}, err
	}

	payload, err := levelStartedPayload(def)
	if err != nil {
		return game.Game{}, err
	}
	if err := s.emit(ctx, event.Event{
		Type:       event.TypeLevelStarted,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "level",
		EntityID:   strconv.FormatUint(uint64(levelID), 10),
	}, payload); err != nil {
		return game.Game{}, err
	}
	return g, nil
}

// levelStartedPayload renders the full level definition in the flat
// positional wire schema the client consumes.
func levelStartedPayload(def level.Definition) (map[string]any, error) {
	beasts, err := level.EncodeBeasts(def.Beasts)
	if err != nil {
		return nil, err
	}
	objectives, err := level.EncodeObjectives(def.Objectives)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"level_id":    def.Level.ID,
		"name":        def.Level.Name,
		"coins":       level.EncodeCoins(def.Coins),
		"adversaries": beasts,
		"objectives":  objectives,
		"environment": level.EncodeEnvironment(def.Environment),
	}, nil
}

// CompleteLevel finishes the level the game is currently playing. The level
// must not already be completed and its objectives must be met. On success
// the game banks the score award, the player banks the experience award,
// and the profile aggregates rise.
func (s *Service) CompleteLevel(ctx context.Context, playerID string, gameID uint64, levelID uint32) (game.Game, error) {
	ctx, span := s.startSpan(ctx, "ledger.CompleteLevel")
	defer span.End()

	unlock, err := s.lockGame(gameID)
	if err != nil {
		return game.Game{}, err
	}
	defer unlock()

	g, err := s.ownedGame(ctx, playerID, gameID)
	if err != nil {
		return game.Game{}, err
	}
	if err := requireInProgress(g); err != nil {
		return game.Game{}, err
	}
	if g.CurrentLevel != levelID {
		return game.Game{}, game.ErrMustCompleteCurrentLevel
	}

	gp, err := s.store.GetProgress(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.Game{}, game.ErrMustCompleteCurrentLevel
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load game progress: %w", err)
	}
	if gp.Completed {
		return game.Game{}, progress.ErrLevelAlreadyCompleted
	}

	def, err := s.GetLevelDefinition(ctx, uint64(levelID))
	if err != nil {
		return game.Game{}, err
	}
	if gp.ObjectivesCompleted < def.RequiredObjectiveCount() {
		return game.Game{}, progress.ErrObjectivesIncomplete
	}

	now := s.clock()
	gp, err = progress.MarkCompleted(gp, now)
	if err != nil {
		return game.Game{}, err
	}
	if err := s.store.PutProgress(ctx, gp); err != nil {
		return game.Game{}, fmt.Errorf("save game progress: %w", err)
	}

	scoreAward := game.ScoreAward(gp.CoinsCollected, gp.BeastsDefeated, gp.ObjectivesCompleted)
	g.Score += scoreAward
	g.CurrentLevel = levelID + 1
	if err := s.store.PutGame(ctx, g); err != nil {
		return game.Game{}, fmt.Errorf("save game: %w", err)
	}

	experienceAward := game.ExperienceAward(levelID, gp.CoinsCollected, gp.BeastsDefeated, gp.ObjectivesCompleted)
	st, err := s.GetPlayerStats(ctx, playerID)
	if err != nil {
		return game.Game{}, err
	}
	levelsGained := st.AddExperience(experienceAward)
	st.BeastsDefeated += gp.BeastsDefeated
	st.ObjectivesCompleted += gp.ObjectivesCompleted
	st.UpdatedAt = now
	if err := s.store.PutStats(ctx, st); err != nil {
		return game.Game{}, fmt.Errorf("save stats: %w", err)
	}

	p, err := s.GetProfile(ctx, playerID)
	if err != nil {
		return game.Game{}, err
	}
	p.TotalScore += scoreAward
	if levelID > p.HighestLevel {
		p.HighestLevel = levelID
	}
	p.LastActiveAt = now
	if err := s.store.PutProfile(ctx, p); err != nil {
		return game.Game{}, fmt.Errorf("save profile: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeLevelCompleted,
		PlayerID:   playerID,
		GameID:     gameID,
		Level:      levelID,
		EntityType: "level",
		EntityID:   strconv.FormatUint(uint64(levelID), 10),
	}, map[string]any{
		"score_award":          scoreAward,
		"experience_award":     experienceAward,
		"coins_collected":      gp.CoinsCollected,
		"beasts_defeated":      gp.BeastsDefeated,
		"objectives_completed": gp.ObjectivesCompleted,
	}); err != nil {
		return game.Game{}, err
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
			return game.Game{}, err
		}
	}
	return g, nil
}
