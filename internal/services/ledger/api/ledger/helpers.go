package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// ownedGame loads a game and verifies the caller owns it.
func (s *Service) ownedGame(ctx context.Context, playerID string, gameID uint64) (game.Game, error) {
	g, err := s.store.GetGame(ctx, gameID)
	if errors.Is(err, storage.ErrNotFound) {
		return game.Game{}, apperrors.WithMetadata(apperrors.CodeNotFound, "game not found",
			map[string]string{"game_id": strconv.FormatUint(gameID, 10)})
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("load game: %w", err)
	}
	if g.PlayerID != playerID {
		return game.Game{}, game.ErrNotOwner
	}
	return g, nil
}

// requireInProgress rejects operations on games that are not actively played.
func requireInProgress(g game.Game) error {
	if g.Status != game.StatusInProgress {
		return game.ErrNotInProgress
	}
	return nil
}

// requirePlayingLevel rejects session-scoped operations that target a level
// other than the one the game is currently on.
func requirePlayingLevel(g game.Game, levelID uint32) error {
	if g.CurrentLevel != levelID {
		return apperrors.WithMetadata(apperrors.CodeInvalidGameState,
			"game is not playing this level",
			map[string]string{
				"current_level": strconv.FormatUint(uint64(g.CurrentLevel), 10),
				"level":         strconv.FormatUint(uint64(levelID), 10),
			})
	}
	return nil
}

// touchProfile raises the profile's last-active timestamp. Mutating player
// operations call this after their own writes.
func (s *Service) touchProfile(ctx context.Context, playerID string, now time.Time) error {
	p, err := s.store.GetProfile(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	p.LastActiveAt = now
	if err := s.store.PutProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// loadOrInitProgress returns the permanent progress record for one
// (game, level), initializing a zeroed record when none exists.
func (s *Service) loadOrInitProgress(ctx context.Context, gameID uint64, levelID uint32, now time.Time) (progress.GameProgress, error) {
	gp, err := s.store.GetProgress(ctx, gameID, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return progress.GameProgress{
			GameID:    gameID,
			Level:     levelID,
			StartedAt: now,
		}, nil
	}
	if err != nil {
		return progress.GameProgress{}, fmt.Errorf("load game progress: %w", err)
	}
	return gp, nil
}

// loadOrStartSession returns the active session for one (game, level),
// lazily starting a fresh one when none is active. Starting fresh also
// clears the level's session-scoped objective flags so the new attempt can
// re-earn them.
func (s *Service) loadOrStartSession(ctx context.Context, gameID uint64, levelID uint32, now time.Time) (progress.SessionProgress, error) {
	sp, err := s.store.GetSession(ctx, gameID, levelID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return progress.SessionProgress{}, fmt.Errorf("load session progress: %w", err)
	}
	if err == nil && sp.Active {
		return sp, nil
	}
	if err := s.clearObjectiveStates(ctx, gameID, levelID); err != nil {
		return progress.SessionProgress{}, err
	}
	return progress.NewSession(gameID, levelID, now), nil
}

// clearObjectiveStates wipes the session-scoped completion flag of every
// catalog objective on the level. A level missing from the catalog has no
// flags to clear.
func (s *Service) clearObjectiveStates(ctx context.Context, gameID uint64, levelID uint32) error {
	def, err := s.store.GetLevelDefinition(ctx, uint64(levelID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load level definition: %w", err)
	}
	for _, obj := range def.Objectives {
		if err := s.store.PutObjectiveState(ctx, gameID, levelID, obj.ID, false); err != nil {
			return fmt.Errorf("reset objective state: %w", err)
		}
	}
	return nil
}
