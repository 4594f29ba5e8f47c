package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// ErrUnauthorized rejects catalog mutations from non-admin callers.
var ErrUnauthorized = apperrors.New(apperrors.CodeUnauthorized, "caller is not an admin")

// requireAdmin verifies the caller is on the admin allow-list.
func (s *Service) requireAdmin(ctx context.Context, address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrUnauthorized
	}
	_, err := s.store.GetAdmin(ctx, address)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	return nil
}

// IsAdmin reports whether an address holds catalog authority.
func (s *Service) IsAdmin(ctx context.Context, address string) (bool, error) {
	_, err := s.store.GetAdmin(ctx, strings.TrimSpace(address))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check admin: %w", err)
	}
	return true, nil
}

// AddAdmin grants catalog authority to an address. Only existing admins may
// extend the allow-list.
func (s *Service) AddAdmin(ctx context.Context, caller, address, role string, permissions uint32) error {
	ctx, span := s.startSpan(ctx, "ledger.AddAdmin")
	defer span.End()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return apperrors.New(apperrors.CodeLevelInvalidSpec, "admin address is required")
	}
	return s.store.PutAdmin(ctx, storage.AdminRecord{
		Address:     address,
		Role:        strings.TrimSpace(role),
		Permissions: permissions,
		AddedAt:     s.clock(),
	})
}

// RemoveAdmin revokes catalog authority from an address.
func (s *Service) RemoveAdmin(ctx context.Context, caller, address string) error {
	ctx, span := s.startSpan(ctx, "ledger.RemoveAdmin")
	defer span.End()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	return s.store.DeleteAdmin(ctx, strings.TrimSpace(address))
}

// CreateLevel authors a new catalog level. The definition's ID, timestamps
// and creator are assigned here; the level starts active.
func (s *Service) CreateLevel(ctx context.Context, caller string, def level.Definition) (level.Definition, error) {
	ctx, span := s.startSpan(ctx, "ledger.CreateLevel")
	defer span.End()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return level.Definition{}, err
	}
	if err := level.Validate(def); err != nil {
		return level.Definition{}, err
	}

	levelID, err := s.store.AllocateNext(ctx, storage.CounterLevel)
	if err != nil {
		return level.Definition{}, fmt.Errorf("allocate level id: %w", err)
	}

	now := s.clock()
	def.Level.ID = levelID
	def.Level.Active = true
	def.Level.CreatedAt = now
	def.Level.UpdatedAt = now
	def.Level.CreatedBy = strings.TrimSpace(caller)
	def.Coins.TotalCollected = 0

	if err := s.store.PutLevel(ctx, def); err != nil {
		return level.Definition{}, fmt.Errorf("save level: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeLevelCreated,
		PlayerID:   def.Level.CreatedBy,
		Level:      uint32(levelID),
		EntityType: "level",
		EntityID:   strconv.FormatUint(levelID, 10),
	}, map[string]any{
		"name":       def.Level.Name,
		"archetype":  def.Level.Archetype.String(),
		"created_by": def.Level.CreatedBy,
	}); err != nil {
		return level.Definition{}, err
	}
	return def, nil
}

// ModifyLevel replaces a level's content wholesale. The creator, creation
// time, active flag and coin aggregate survive the replacement.
func (s *Service) ModifyLevel(ctx context.Context, caller string, levelID uint64, def level.Definition) (level.Definition, error) {
	ctx, span := s.startSpan(ctx, "ledger.ModifyLevel")
	defer span.End()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return level.Definition{}, err
	}

	existing, err := s.store.GetLevel(ctx, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return level.Definition{}, apperrors.WithMetadata(apperrors.CodeNotFound, "level not found",
			map[string]string{"level_id": strconv.FormatUint(levelID, 10)})
	}
	if err != nil {
		return level.Definition{}, fmt.Errorf("load level: %w", err)
	}

	if err := level.Validate(def); err != nil {
		return level.Definition{}, err
	}

	def.Level.ID = existing.ID
	def.Level.Active = existing.Active
	def.Level.CreatedAt = existing.CreatedAt
	def.Level.CreatedBy = existing.CreatedBy
	def.Level.UpdatedAt = s.clock()

	if err := s.store.PutLevel(ctx, def); err != nil {
		return level.Definition{}, fmt.Errorf("save level: %w", err)
	}

	if err := s.emit(ctx, event.Event{
		Type:       event.TypeLevelModified,
		PlayerID:   strings.TrimSpace(caller),
		Level:      uint32(levelID),
		EntityType: "level",
		EntityID:   strconv.FormatUint(levelID, 10),
	}, map[string]any{
		"name":      def.Level.Name,
		"archetype": def.Level.Archetype.String(),
	}); err != nil {
		return level.Definition{}, err
	}
	return def, nil
}

// ActivateLevel makes a level available to players.
func (s *Service) ActivateLevel(ctx context.Context, caller string, levelID uint64) error {
	return s.setLevelActive(ctx, caller, levelID, true)
}

// DeactivateLevel withdraws a level from play without deleting it.
func (s *Service) DeactivateLevel(ctx context.Context, caller string, levelID uint64) error {
	return s.setLevelActive(ctx, caller, levelID, false)
}

func (s *Service) setLevelActive(ctx context.Context, caller string, levelID uint64, active bool) error {
	ctx, span := s.startSpan(ctx, "ledger.SetLevelActive")
	defer span.End()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	if err := s.store.SetLevelActive(ctx, levelID, active, s.clock()); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperrors.WithMetadata(apperrors.CodeNotFound, "level not found",
				map[string]string{"level_id": strconv.FormatUint(levelID, 10)})
		}
		return fmt.Errorf("set level active: %w", err)
	}

	eventType := event.TypeLevelActivated
	if !active {
		eventType = event.TypeLevelDeactivated
	}
	return s.emit(ctx, event.Event{
		Type:       eventType,
		PlayerID:   strings.TrimSpace(caller),
		Level:      uint32(levelID),
		EntityType: "level",
		EntityID:   strconv.FormatUint(levelID, 10),
	}, nil)
}

// GetLevel returns a level catalog header. No authorization required.
func (s *Service) GetLevel(ctx context.Context, levelID uint64) (level.Level, error) {
	lvl, err := s.store.GetLevel(ctx, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return level.Level{}, apperrors.WithMetadata(apperrors.CodeNotFound, "level not found",
			map[string]string{"level_id": strconv.FormatUint(levelID, 10)})
	}
	if err != nil {
		return level.Level{}, fmt.Errorf("load level: %w", err)
	}
	return lvl, nil
}

// GetLevelDefinition returns a full level definition with every sub-record.
// No authorization required.
func (s *Service) GetLevelDefinition(ctx context.Context, levelID uint64) (level.Definition, error) {
	def, err := s.store.GetLevelDefinition(ctx, levelID)
	if errors.Is(err, storage.ErrNotFound) {
		return level.Definition{}, apperrors.WithMetadata(apperrors.CodeNotFound, "level not found",
			map[string]string{"level_id": strconv.FormatUint(levelID, 10)})
	}
	if err != nil {
		return level.Definition{}, fmt.Errorf("load level definition: %w", err)
	}
	return def, nil
}

// ListLevels returns a page of catalog headers. No authorization required.
func (s *Service) ListLevels(ctx context.Context, pageSize int, pageToken string) (storage.LevelPage, error) {
	page, err := s.store.ListLevels(ctx, pageSize, pageToken)
	if err != nil {
		return storage.LevelPage{}, fmt.Errorf("list levels: %w", err)
	}
	return page, nil
}
