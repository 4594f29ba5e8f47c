package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// CreateProfile registers a player identity. A profile is created once per
// identity and seeds the starting stat block and empty inventory.
func (s *Service) CreateProfile(ctx context.Context, playerID, username string, archetype profile.Archetype) (profile.Profile, error) {
	ctx, span := s.startSpan(ctx, "ledger.CreateProfile")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return profile.Profile{}, profile.ErrNotFound
	}

	_, err := s.store.GetProfile(ctx, playerID)
	if err == nil {
		return profile.Profile{}, profile.ErrAlreadyExists
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return profile.Profile{}, fmt.Errorf("check existing profile: %w", err)
	}

	now := s.clock()
	p, err := profile.New(playerID, username, archetype, now)
	if err != nil {
		return profile.Profile{}, err
	}

	if err := s.store.PutProfile(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	if err := s.store.PutStats(ctx, stats.NewStats(playerID, now)); err != nil {
		return profile.Profile{}, fmt.Errorf("save stats: %w", err)
	}
	if err := s.store.PutInventory(ctx, stats.NewInventory(playerID, now)); err != nil {
		return profile.Profile{}, fmt.Errorf("save inventory: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeProfileCreated,
		PlayerID:   playerID,
		EntityType: "profile",
		EntityID:   playerID,
	}, map[string]any{
		"username":  p.Username,
		"archetype": p.Archetype.String(),
	}); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// UpdateProfile changes a profile's username and archetype. Games already
// created keep the archetype they snapshotted.
func (s *Service) UpdateProfile(ctx context.Context, playerID, username string, archetype profile.Archetype) (profile.Profile, error) {
	ctx, span := s.startSpan(ctx, "ledger.UpdateProfile")
	defer span.End()

	p, err := s.store.GetProfile(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.Profile{}, profile.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return profile.Profile{}, profile.ErrEmptyUsername
	}
	if !archetype.IsValid() {
		return profile.Profile{}, profile.ErrInvalidArchetype
	}

	p.Username = username
	p.Archetype = archetype
	p.LastActiveAt = s.clock()
	if err := s.store.PutProfile(ctx, p); err != nil {
		return profile.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeProfileUpdated,
		PlayerID:   playerID,
		EntityType: "profile",
		EntityID:   playerID,
	}, map[string]any{
		"username":  p.Username,
		"archetype": p.Archetype.String(),
	}); err != nil {
		return profile.Profile{}, err
	}
	return p, nil
}

// GetProfile returns the profile record for a player.
func (s *Service) GetProfile(ctx context.Context, playerID string) (profile.Profile, error) {
	p, err := s.store.GetProfile(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.Profile{}, profile.ErrNotFound
	}
	if err != nil {
		return profile.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// GetPlayerStats returns the permanent stat block for a player.
func (s *Service) GetPlayerStats(ctx context.Context, playerID string) (stats.Stats, error) {
	st, err := s.store.GetStats(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return stats.Stats{}, profile.ErrNotFound
	}
	if err != nil {
		return stats.Stats{}, fmt.Errorf("load stats: %w", err)
	}
	return st, nil
}

// GetPlayerInventory returns the permanent item ledger for a player.
func (s *Service) GetPlayerInventory(ctx context.Context, playerID string) (stats.Inventory, error) {
	inv, err := s.store.GetInventory(ctx, playerID)
	if errors.Is(err, storage.ErrNotFound) {
		return stats.Inventory{}, profile.ErrNotFound
	}
	if err != nil {
		return stats.Inventory{}, fmt.Errorf("load inventory: %w", err)
	}
	return inv, nil
}
