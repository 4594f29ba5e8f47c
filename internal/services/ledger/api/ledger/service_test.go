package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/fight"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/game"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/progress"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/stats"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// fakeStore is an in-memory storage.Store for service tests.
type fakeStore struct {
	mu sync.Mutex

	counters    map[storage.CounterKind]uint64
	profiles    map[string]profile.Profile
	levels      map[uint64]level.Definition
	games       map[uint64]game.Game
	progressRec map[string]progress.GameProgress
	sessions    map[string]progress.SessionProgress
	objectives  map[string]bool
	statsRec    map[string]stats.Stats
	inventories map[string]stats.Inventory
	fights      map[string]fight.Session
	beastStates map[string]fight.BeastState
	admins      map[string]storage.AdminRecord
	events      []event.Event
	nextSeq     uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		counters:    make(map[storage.CounterKind]uint64),
		profiles:    make(map[string]profile.Profile),
		levels:      make(map[uint64]level.Definition),
		games:       make(map[uint64]game.Game),
		progressRec: make(map[string]progress.GameProgress),
		sessions:    make(map[string]progress.SessionProgress),
		objectives:  make(map[string]bool),
		statsRec:    make(map[string]stats.Stats),
		inventories: make(map[string]stats.Inventory),
		fights:      make(map[string]fight.Session),
		beastStates: make(map[string]fight.BeastState),
		admins:      make(map[string]storage.AdminRecord),
	}
}

func progressKey(gameID uint64, levelID uint32) string {
	return fmt.Sprintf("%d/%d", gameID, levelID)
}

func objectiveKey(gameID uint64, levelID uint32, objectiveID uint64) string {
	return fmt.Sprintf("%d/%d/%d", gameID, levelID, objectiveID)
}

func beastKey(gameID uint64, levelID uint32, beastID uint64) string {
	return fmt.Sprintf("%d/%d/%d", gameID, levelID, beastID)
}

func (f *fakeStore) AllocateNext(_ context.Context, kind storage.CounterKind) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next, ok := f.counters[kind]
	if !ok {
		next = 1
	}
	f.counters[kind] = next + 1
	return next, nil
}

func (f *fakeStore) PutProfile(_ context.Context, p profile.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.PlayerID] = p
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, playerID string) (profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[playerID]
	if !ok {
		return profile.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) PutLevel(_ context.Context, def level.Definition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.levels[def.Level.ID]; ok {
		def.Coins.TotalCollected = existing.Coins.TotalCollected
	}
	f.levels[def.Level.ID] = def
	return nil
}

func (f *fakeStore) GetLevel(_ context.Context, levelID uint64) (level.Level, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.levels[levelID]
	if !ok {
		return level.Level{}, storage.ErrNotFound
	}
	return def.Level, nil
}

func (f *fakeStore) GetLevelDefinition(_ context.Context, levelID uint64) (level.Definition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.levels[levelID]
	if !ok {
		return level.Definition{}, storage.ErrNotFound
	}
	return def, nil
}

func (f *fakeStore) SetLevelActive(_ context.Context, levelID uint64, active bool, updatedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.levels[levelID]
	if !ok {
		return storage.ErrNotFound
	}
	def.Level.Active = active
	def.Level.UpdatedAt = updatedAt
	f.levels[levelID] = def
	return nil
}

func (f *fakeStore) AddLevelCoinsCollected(_ context.Context, levelID uint64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	def, ok := f.levels[levelID]
	if !ok {
		return storage.ErrNotFound
	}
	def.Coins.TotalCollected += int64(count)
	f.levels[levelID] = def
	return nil
}

func (f *fakeStore) ListLevels(_ context.Context, pageSize int, pageToken string) (storage.LevelPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if pageSize <= 0 {
		pageSize = 50
	}
	var after uint64
	if pageToken != "" {
		parsed, err := strconv.ParseUint(pageToken, 10, 64)
		if err != nil {
			return storage.LevelPage{}, err
		}
		after = parsed
	}
	ids := make([]uint64, 0, len(f.levels))
	for id := range f.levels {
		if id > after {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var page storage.LevelPage
	for _, id := range ids {
		if len(page.Levels) == pageSize {
			page.NextPageToken = strconv.FormatUint(page.Levels[len(page.Levels)-1].ID, 10)
			break
		}
		page.Levels = append(page.Levels, f.levels[id].Level)
	}
	return page, nil
}

func (f *fakeStore) PutGame(_ context.Context, g game.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[g.ID] = g
	return nil
}

func (f *fakeStore) GetGame(_ context.Context, gameID uint64) (game.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[gameID]
	if !ok {
		return game.Game{}, storage.ErrNotFound
	}
	return g, nil
}

func (f *fakeStore) PutProgress(_ context.Context, gp progress.GameProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressRec[progressKey(gp.GameID, gp.Level)] = gp
	return nil
}

func (f *fakeStore) GetProgress(_ context.Context, gameID uint64, levelID uint32) (progress.GameProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gp, ok := f.progressRec[progressKey(gameID, levelID)]
	if !ok {
		return progress.GameProgress{}, storage.ErrNotFound
	}
	return gp, nil
}

func (f *fakeStore) PutSession(_ context.Context, sp progress.SessionProgress) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[progressKey(sp.GameID, sp.Level)] = sp
	return nil
}

func (f *fakeStore) GetSession(_ context.Context, gameID uint64, levelID uint32) (progress.SessionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sp, ok := f.sessions[progressKey(gameID, levelID)]
	if !ok {
		return progress.SessionProgress{}, storage.ErrNotFound
	}
	return sp, nil
}

func (f *fakeStore) PutObjectiveState(_ context.Context, gameID uint64, levelID uint32, objectiveID uint64, completed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objectives[objectiveKey(gameID, levelID, objectiveID)] = completed
	return nil
}

func (f *fakeStore) GetObjectiveState(_ context.Context, gameID uint64, levelID uint32, objectiveID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objectives[objectiveKey(gameID, levelID, objectiveID)], nil
}

func (f *fakeStore) PutStats(_ context.Context, s stats.Stats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsRec[s.PlayerID] = s
	return nil
}

func (f *fakeStore) GetStats(_ context.Context, playerID string) (stats.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.statsRec[playerID]
	if !ok {
		return stats.Stats{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) PutInventory(_ context.Context, inv stats.Inventory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inventories[inv.PlayerID] = inv
	return nil
}

func (f *fakeStore) GetInventory(_ context.Context, playerID string) (stats.Inventory, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inv, ok := f.inventories[playerID]
	if !ok {
		return stats.Inventory{}, storage.ErrNotFound
	}
	return inv, nil
}

func (f *fakeStore) PutFight(_ context.Context, s fight.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fights[progressKey(s.GameID, s.Level)] = s
	return nil
}

func (f *fakeStore) GetFight(_ context.Context, gameID uint64, levelID uint32) (fight.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.fights[progressKey(gameID, levelID)]
	if !ok {
		return fight.Session{}, storage.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) PutBeastState(_ context.Context, b fight.BeastState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beastStates[beastKey(b.GameID, b.Level, b.BeastID)] = b
	return nil
}

func (f *fakeStore) GetBeastState(_ context.Context, gameID uint64, levelID uint32, beastID uint64) (fight.BeastState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.beastStates[beastKey(gameID, levelID, beastID)]
	if !ok {
		return fight.BeastState{}, storage.ErrNotFound
	}
	return b, nil
}

func (f *fakeStore) ListBeastStates(_ context.Context, gameID uint64, levelID uint32) ([]fight.BeastState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fight.BeastState
	for _, b := range f.beastStates {
		if b.GameID == gameID && b.Level == levelID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BeastID < out[j].BeastID })
	return out, nil
}

func (f *fakeStore) DeleteBeastStates(_ context.Context, gameID uint64, levelID uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, b := range f.beastStates {
		if b.GameID == gameID && b.Level == levelID {
			delete(f.beastStates, key)
		}
	}
	return nil
}

func (f *fakeStore) PutAdmin(_ context.Context, a storage.AdminRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.admins[a.Address] = a
	return nil
}

func (f *fakeStore) GetAdmin(_ context.Context, address string) (storage.AdminRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.admins[address]
	if !ok {
		return storage.AdminRecord{}, storage.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) DeleteAdmin(_ context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.admins, address)
	return nil
}

func (f *fakeStore) AppendEvent(_ context.Context, evt event.Event) (event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextSeq++
	evt.Seq = f.nextSeq
	f.events = append(f.events, evt)
	return evt, nil
}

func (f *fakeStore) ListEvents(_ context.Context, gameID uint64, afterSeq uint64, limit int) ([]event.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var out []event.Event
	for _, evt := range f.events {
		if evt.Seq <= afterSeq {
			continue
		}
		if gameID != 0 && evt.GameID != gameID {
			continue
		}
		out = append(out, evt)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeStore) ListEventsPage(_ context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	var matched []event.Event
	for _, evt := range f.events {
		if evt.Seq > req.AfterSeq {
			matched = append(matched, evt)
		}
	}
	if req.Descending {
		sort.Slice(matched, func(i, j int) bool { return matched[i].Seq > matched[j].Seq })
	}
	res := storage.ListEventsPageResult{TotalCount: len(matched)}
	if len(matched) > pageSize {
		res.HasNextPage = true
		matched = matched[:pageSize]
	}
	res.Events = matched
	return res, nil
}

func (f *fakeStore) Close() error { return nil }

// eventTypes returns the appended journal types in order.
func (f *fakeStore) eventTypes() []event.Type {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]event.Type, 0, len(f.events))
	for _, evt := range f.events {
		out = append(out, evt.Type)
	}
	return out
}

var testTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// newTestService wires a service against a fresh fake store with a fixed
// clock and a deterministic event ID sequence.
func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	var n int
	svc := New(store,
		WithClock(func() time.Time { return testTime }),
		WithIDGenerator(func() (string, error) {
			n++
			return fmt.Sprintf("evt-%04d", n), nil
		}),
	)
	return svc, store
}

// testLevelDef is a minimal valid definition used across tests.
func testLevelDef(name string, archetype profile.Archetype) level.Definition {
	return level.Definition{
		Level: level.Level{Name: name, Archetype: archetype},
		Coins: level.Coins{
			SpawnCount: 5,
			Positions: []level.Position{
				{X: 1}, {X: 2}, {X: 3}, {X: 4}, {X: 5},
			},
		},
		Beasts: []level.Beast{
			{ID: 1, Type: level.AdversaryGoblin, Health: 30, Damage: 4},
		},
		Objectives: []level.Objective{
			{ID: 1, Title: "Collect", Type: level.ObjectiveCollect, Target: "coin", RequiredCount: 5, Reward: 50},
		},
		Environment: level.Environment{Scale: 1},
	}
}

// setupPlayerAndGame creates an admin, catalog level, profile and game.
func setupPlayerAndGame(ctx context.Context, svc *Service, store *fakeStore, playerID string) (game.Game, error) {
	if err := store.PutAdmin(ctx, storage.AdminRecord{Address: "admin", Role: "root", AddedAt: testTime}); err != nil {
		return game.Game{}, err
	}
	if _, err := svc.CreateLevel(ctx, "admin", testLevelDef("Sunken Crypt", profile.ArchetypeMan)); err != nil {
		return game.Game{}, err
	}
	if _, err := svc.CreateProfile(ctx, playerID, "hero", profile.ArchetypeMan); err != nil {
		return game.Game{}, err
	}
	return svc.CreateGame(ctx, playerID)
}
