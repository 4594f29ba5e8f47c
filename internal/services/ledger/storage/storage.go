// Package storage defines the persistence boundary for the ledger.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/fight"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// CounterKind names a monotonic ID sequence.
type CounterKind string

const (
	// CounterGame allocates game session IDs.
	CounterGame CounterKind = "game"
	// CounterLevel allocates level catalog IDs.
	CounterLevel CounterKind = "level"
)

// CounterStore owns the monotonic ID allocators.
type CounterStore interface {
	// AllocateNext returns the next ID for a counter kind and advances it
	// in the same transaction. An uninitialized counter starts at 1.
	// Returned IDs are strictly increasing and never repeat.
	AllocateNext(ctx context.Context, kind CounterKind) (uint64, error)
}

// ProfileStore owns player identity records.
type ProfileStore interface {
	PutProfile(ctx context.Context, p profile.Profile) error
	GetProfile(ctx context.Context, playerID string) (profile.Profile, error)
}

// LevelPage describes a page of level headers.
type LevelPage struct {
	Levels        []level.Level
	NextPageToken string
}

// LevelStore owns the admin-authored level catalog.
type LevelStore interface {
	// PutLevel stores a level definition, replacing every sub-record
	// (coins, beasts, objectives, environment) wholesale.
	PutLevel(ctx context.Context, def level.Definition) error
	GetLevel(ctx context.Context, levelID uint64) (level.Level, error)
	// GetLevelDefinition returns the full definition the client needs to
	// render a level.
	GetLevelDefinition(ctx context.Context, levelID uint64) (level.Definition, error)
	SetLevelActive(ctx context.Context, levelID uint64, active bool, updatedAt time.Time) error
	// AddLevelCoinsCollected raises the lifetime coin pickup aggregate.
	AddLevelCoinsCollected(ctx context.Context, levelID uint64, count int) error
	// ListLevels returns a page of level headers starting after the page token.
	ListLevels(ctx context.Context, pageSize int, pageToken string) (LevelPage, error)
}

// GameStore owns game session records.
type GameStore interface {
	PutGame(ctx context.Context, g game.Game) error
	GetGame(ctx context.Context, gameID uint64) (game.Game, error)
}

// ProgressStore owns both permanent and attempt-scoped progress records.
type ProgressStore interface {
	PutProgress(ctx context.Context, gp progress.GameProgress) error
	GetProgress(ctx context.Context, gameID uint64, levelID uint32) (progress.GameProgress, error)
	PutSession(ctx context.Context, sp progress.SessionProgress) error
	GetSession(ctx context.Context, gameID uint64, levelID uint32) (progress.SessionProgress, error)
	// PutObjectiveState stores the session-scoped completion state of one
	// catalog objective.
	PutObjectiveState(ctx context.Context, gameID uint64, levelID uint32, objectiveID uint64, completed bool) error
	GetObjectiveState(ctx context.Context, gameID uint64, levelID uint32, objectiveID uint64) (bool, error)
}

// StatsStore owns permanent player stats and inventories.
type StatsStore interface {
	PutStats(ctx context.Context, s stats.Stats) error
	GetStats(ctx context.Context, playerID string) (stats.Stats, error)
	PutInventory(ctx context.Context, inv stats.Inventory) error
	GetInventory(ctx context.Context, playerID string) (stats.Inventory, error)
}

// FightStore owns fight sessions and per-beast fight state.
type FightStore interface {
	PutFight(ctx context.Context, s fight.Session) error
	GetFight(ctx context.Context, gameID uint64, levelID uint32) (fight.Session, error)
	PutBeastState(ctx context.Context, b fight.BeastState) error
	GetBeastState(ctx context.Context, gameID uint64, levelID uint32, beastID uint64) (fight.BeastState, error)
	// ListBeastStates returns the fight roster ordered by beast ID.
	ListBeastStates(ctx context.Context, gameID uint64, levelID uint32) ([]fight.BeastState, error)
	// DeleteBeastStates removes the entire roster for one (game, level).
	DeleteBeastStates(ctx context.Context, gameID uint64, levelID uint32) error
}

// AdminRecord is one allow-list entry granting catalog authority.
type AdminRecord struct {
	Address string
	Role    string
	// Permissions is a bit set reserved for finer-grained authority.
	Permissions uint32
	AddedAt     time.Time
}

// AdminStore owns the catalog-mutation allow-list.
type AdminStore interface {
	PutAdmin(ctx context.Context, a AdminRecord) error
	GetAdmin(ctx context.Context, address string) (AdminRecord, error)
	DeleteAdmin(ctx context.Context, address string) error
}

// EventStore owns the append-only notification journal.
type EventStore interface {
	// AppendEvent atomically appends an event and returns it with its
	// sequence number assigned.
	AppendEvent(ctx context.Context, evt event.Event) (event.Event, error)
	// ListEvents returns events for a game ordered by sequence ascending.
	// gameID 0 returns the unscoped journal.
	ListEvents(ctx context.Context, gameID uint64, afterSeq uint64, limit int) ([]event.Event, error)
	// ListEventsPage returns a paginated, filtered list of events.
	ListEventsPage(ctx context.Context, req ListEventsPageRequest) (ListEventsPageResult, error)
}

// ListEventsPageRequest describes filters for event history views.
type ListEventsPageRequest struct {
	// AfterSeq returns only events with seq greater than this value.
	AfterSeq uint64
	// PageSize is the maximum number of events to return.
	PageSize int
	// Descending orders results by seq desc (newest first) when true.
	Descending bool
	// FilterClause is an optional SQL WHERE clause fragment produced by
	// the filter translator.
	FilterClause string
	// FilterParams are the positional parameters for the filter clause.
	FilterParams []any
}

// ListEventsPageResult contains one page of journal history.
type ListEventsPageResult struct {
	Events []event.Event
	// HasNextPage indicates whether more results exist past this page.
	HasNextPage bool
	// TotalCount is the total number of events matching the filter.
	TotalCount int
}

// Store is the composite interface for all ledger persistence concerns.
type Store interface {
	CounterStore
	ProfileStore
	LevelStore
	GameStore
	ProgressStore
	StatsStore
	FightStore
	AdminStore
	EventStore
	Close() error
}
