package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
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

func testStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

var storeTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func TestAllocateNextIsMonotonicPerKind(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for want := uint64(1); want <= 3; want++ {
		got, err := store.AllocateNext(ctx, storage.CounterGame)
		if err != nil {
			t.Fatalf("allocate game: %v", err)
		}
		if got != want {
			t.Fatalf("expected game id %d, got %d", want, got)
		}
	}
	// Kinds advance independently.
	got, err := store.AllocateNext(ctx, storage.CounterLevel)
	if err != nil {
		t.Fatalf("allocate level: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected level id 1, got %d", got)
	}
}

func TestProfileRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.GetProfile(ctx, "p1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	p := profile.Profile{
		PlayerID:         "p1",
		Username:         "hero",
		Archetype:        profile.ArchetypeSpirit,
		CreatedAt:        storeTime,
		LastActiveAt:     storeTime.Add(time.Hour),
		TotalGamesPlayed: 2,
		TotalScore:       450,
		HighestLevel:     3,
		IsActive:         true,
	}
	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("put profile: %v", err)
	}
	got, err := store.GetProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Username != "hero" || got.Archetype != profile.ArchetypeSpirit {
		t.Fatalf("unexpected profile %+v", got)
	}
	if !got.CreatedAt.Equal(storeTime) || !got.LastActiveAt.Equal(storeTime.Add(time.Hour)) {
		t.Fatalf("unexpected timestamps %+v", got)
	}
	if got.TotalScore != 450 || got.HighestLevel != 3 || !got.IsActive {
		t.Fatalf("unexpected aggregates %+v", got)
	}

	// Upsert replaces.
	p.Username = "renamed"
	if err := store.PutProfile(ctx, p); err != nil {
		t.Fatalf("put profile again: %v", err)
	}
	got, err = store.GetProfile(ctx, "p1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Username != "renamed" {
		t.Fatalf("expected renamed, got %q", got.Username)
	}
}

func storedLevelDefinition(id uint64) level.Definition {
	return level.Definition{
		Level: level.Level{
			ID:        id,
			Name:      "Crypt",
			Archetype: profile.ArchetypeMan,
			Active:    true,
			CreatedAt: storeTime,
			UpdatedAt: storeTime,
			CreatedBy: "admin",
			NextLevel: id + 1,
		},
		Coins: level.Coins{
			SpawnCount: 2,
			Positions:  []level.Position{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		},
		Beasts: []level.Beast{
			{ID: 1, Type: level.AdversaryGoblin, Position: level.Position{X: 1}, Health: 30, Damage: 4, Speed: 1.2},
			{ID: 2, Type: level.AdversaryDragon, Position: level.Position{X: 2}, Health: 100, Damage: 20, Speed: 1.5},
		},
		Objectives: []level.Objective{
			{ID: 1, Title: "Collect", Description: "Grab coins", Type: level.ObjectiveCollect, Target: "coin", RequiredCount: 2, Reward: 50},
		},
		Environment: level.Environment{Scale: 1.5, Position: level.Position{X: 1, Y: 0, Z: 2}, Rotation: 90},
	}
}

func TestLevelDefinitionRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.PutLevel(ctx, storedLevelDefinition(1)); err != nil {
		t.Fatalf("put level: %v", err)
	}
	def, err := store.GetLevelDefinition(ctx, 1)
	if err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if def.Level.Name != "Crypt" || def.Level.NextLevel != 2 || !def.Level.Active {
		t.Fatalf("unexpected header %+v", def.Level)
	}
	if len(def.Coins.Positions) != 2 || def.Coins.SpawnCount != 2 {
		t.Fatalf("unexpected coins %+v", def.Coins)
	}
	if len(def.Beasts) != 2 || def.Beasts[1].Type != level.AdversaryDragon {
		t.Fatalf("unexpected beasts %+v", def.Beasts)
	}
	if len(def.Objectives) != 1 || def.Objectives[0].Reward != 50 {
		t.Fatalf("unexpected objectives %+v", def.Objectives)
	}
	if def.Environment.Rotation != 90 {
		t.Fatalf("unexpected environment %+v", def.Environment)
	}
}

func TestPutLevelReplacesSubRecords(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if err := store.PutLevel(ctx, storedLevelDefinition(1)); err != nil {
		t.Fatalf("put level: %v", err)
	}
	if err := store.AddLevelCoinsCollected(ctx, 1, 9); err != nil {
		t.Fatalf("bump aggregate: %v", err)
	}

	replacement := storedLevelDefinition(1)
	replacement.Level.Name = "Renamed"
	replacement.Beasts = replacement.Beasts[:1]
	replacement.Objectives = nil
	if err := store.PutLevel(ctx, replacement); err != nil {
		t.Fatalf("replace level: %v", err)
	}

	def, err := store.GetLevelDefinition(ctx, 1)
	if err != nil {
		t.Fatalf("get definition: %v", err)
	}
	if def.Level.Name != "Renamed" {
		t.Fatalf("expected renamed, got %q", def.Level.Name)
	}
	if len(def.Beasts) != 1 || len(def.Objectives) != 0 {
		t.Fatalf("expected sub-records replaced, got %d beasts %d objectives", len(def.Beasts), len(def.Objectives))
	}
	if def.Coins.TotalCollected != 9 {
		t.Fatalf("expected coin aggregate to survive replace, got %d", def.Coins.TotalCollected)
	}
}

func TestSetLevelActiveAndListLevels(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for id := uint64(1); id <= 3; id++ {
		def := storedLevelDefinition(id)
		if err := store.PutLevel(ctx, def); err != nil {
			t.Fatalf("put level %d: %v", id, err)
		}
	}
	if err := store.SetLevelActive(ctx, 2, false, storeTime.Add(time.Hour)); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if err := store.SetLevelActive(ctx, 99, false, storeTime); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	page, err := store.ListLevels(ctx, 2, "")
	if err != nil {
		t.Fatalf("list levels: %v", err)
	}
	if len(page.Levels) != 2 || page.NextPageToken == "" {
		t.Fatalf("expected 2 levels and a token, got %d %q", len(page.Levels), page.NextPageToken)
	}
	if page.Levels[1].ID != 2 || page.Levels[1].Active {
		t.Fatalf("expected level 2 inactive, got %+v", page.Levels[1])
	}
	rest, err := store.ListLevels(ctx, 2, page.NextPageToken)
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Levels) != 1 || rest.Levels[0].ID != 3 || rest.NextPageToken != "" {
		t.Fatalf("unexpected final page %+v", rest)
	}
}

func TestGameAndProgressRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	g := game.Game{
		ID:           1,
		PlayerID:     "p1",
		Status:       game.StatusInProgress,
		CurrentLevel: 2,
		CreatedAt:    storeTime,
		Score:        350,
		Archetype:    profile.ArchetypeMan,
	}
	if err := store.PutGame(ctx, g); err != nil {
		t.Fatalf("put game: %v", err)
	}
	got, err := store.GetGame(ctx, 1)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if got.Status != game.StatusInProgress || got.CurrentLevel != 2 || got.Score != 350 {
		t.Fatalf("unexpected game %+v", got)
	}

	completedAt := storeTime.Add(time.Hour)
	gp := progress.GameProgress{
		GameID:              1,
		Level:               2,
		CoinsCollected:      5,
		BeastsDefeated:      2,
		ObjectivesCompleted: 1,
		StartedAt:           storeTime,
		CompletedAt:         &completedAt,
		Completed:           true,
	}
	if err := store.PutProgress(ctx, gp); err != nil {
		t.Fatalf("put progress: %v", err)
	}
	gotGP, err := store.GetProgress(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if !gotGP.Completed || gotGP.CompletedAt == nil || !gotGP.CompletedAt.Equal(completedAt) {
		t.Fatalf("unexpected progress %+v", gotGP)
	}

	sp := progress.SessionProgress{
		GameID:         1,
		Level:          2,
		CoinsCollected: 3,
		HealthPotions:  1,
		StartedAt:      storeTime,
		Active:         true,
	}
	if err := store.PutSession(ctx, sp); err != nil {
		t.Fatalf("put session: %v", err)
	}
	gotSP, err := store.GetSession(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if gotSP.CoinsCollected != 3 || gotSP.HealthPotions != 1 || !gotSP.Active {
		t.Fatalf("unexpected session %+v", gotSP)
	}
}

func TestObjectiveStateDefaultsFalse(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	done, err := store.GetObjectiveState(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("get objective state: %v", err)
	}
	if done {
		t.Fatalf("expected missing objective state to read false")
	}
	if err := store.PutObjectiveState(ctx, 1, 1, 1, true); err != nil {
		t.Fatalf("put objective state: %v", err)
	}
	done, err = store.GetObjectiveState(ctx, 1, 1, 1)
	if err != nil {
		t.Fatalf("get objective state: %v", err)
	}
	if !done {
		t.Fatalf("expected completed objective state")
	}
}

func TestStatsAndInventoryRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	st := stats.Stats{
		PlayerID:            "p1",
		Health:              80,
		MaxHealth:           120,
		Level:               3,
		Experience:          250,
		ItemsCollected:      7,
		BeastsDefeated:      2,
		ObjectivesCompleted: 1,
		UpdatedAt:           storeTime,
	}
	if err := store.PutStats(ctx, st); err != nil {
		t.Fatalf("put stats: %v", err)
	}
	gotStats, err := store.GetStats(ctx, "p1")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if gotStats.Level != 3 || gotStats.Experience != 250 || gotStats.MaxHealth != 120 {
		t.Fatalf("unexpected stats %+v", gotStats)
	}

	inv := stats.Inventory{
		PlayerID:      "p1",
		Coins:         42,
		HealthPotions: 2,
		BeastEssences: 1,
		Capacity:      64,
		UpdatedAt:     storeTime,
	}
	if err := store.PutInventory(ctx, inv); err != nil {
		t.Fatalf("put inventory: %v", err)
	}
	gotInv, err := store.GetInventory(ctx, "p1")
	if err != nil {
		t.Fatalf("get inventory: %v", err)
	}
	if gotInv.Coins != 42 || gotInv.HealthPotions != 2 || gotInv.BeastEssences != 1 {
		t.Fatalf("unexpected inventory %+v", gotInv)
	}
}

func TestFightRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	sess := fight.Session{
		GameID:           1,
		Level:            2,
		StartedAt:        storeTime,
		TurnNumber:       3,
		PlayerTurn:       false,
		PlayerHP:         64,
		EnemiesRemaining: 1,
		Active:           true,
		Outcome:          fight.OutcomeNone,
	}
	if err := store.PutFight(ctx, sess); err != nil {
		t.Fatalf("put fight: %v", err)
	}
	got, err := store.GetFight(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get fight: %v", err)
	}
	if got.TurnNumber != 3 || got.PlayerTurn || got.PlayerHP != 64 || !got.Active {
		t.Fatalf("unexpected fight %+v", got)
	}

	sess.Active = false
	sess.Outcome = fight.OutcomeVictory
	if err := store.PutFight(ctx, sess); err != nil {
		t.Fatalf("update fight: %v", err)
	}
	got, err = store.GetFight(ctx, 1, 2)
	if err != nil {
		t.Fatalf("get fight: %v", err)
	}
	if got.Active || got.Outcome != fight.OutcomeVictory {
		t.Fatalf("expected victory outcome, got %+v", got)
	}

	beasts := []fight.BeastState{
		{GameID: 1, Level: 2, BeastID: 2, HP: 0, Alive: false},
		{GameID: 1, Level: 2, BeastID: 1, HP: 15, Alive: true},
	}
	for _, b := range beasts {
		if err := store.PutBeastState(ctx, b); err != nil {
			t.Fatalf("put beast state: %v", err)
		}
	}
	listed, err := store.ListBeastStates(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list beast states: %v", err)
	}
	if len(listed) != 2 || listed[0].BeastID != 1 || listed[1].BeastID != 2 {
		t.Fatalf("expected roster ordered by beast id, got %+v", listed)
	}
}

func TestDeleteBeastStatesClearsRoster(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	for _, b := range []fight.BeastState{
		{GameID: 1, Level: 2, BeastID: 1, HP: 15, Alive: true},
		{GameID: 1, Level: 2, BeastID: 2, HP: 0, Alive: false},
		{GameID: 1, Level: 3, BeastID: 1, HP: 9, Alive: true},
	} {
		if err := store.PutBeastState(ctx, b); err != nil {
			t.Fatalf("put beast state: %v", err)
		}
	}

	if err := store.DeleteBeastStates(ctx, 1, 2); err != nil {
		t.Fatalf("delete beast states: %v", err)
	}
	cleared, err := store.ListBeastStates(ctx, 1, 2)
	if err != nil {
		t.Fatalf("list beast states: %v", err)
	}
	if len(cleared) != 0 {
		t.Fatalf("expected empty roster, got %+v", cleared)
	}
	// Other levels are untouched, and re-deleting is not an error.
	kept, err := store.ListBeastStates(ctx, 1, 3)
	if err != nil {
		t.Fatalf("list beast states: %v", err)
	}
	if len(kept) != 1 {
		t.Fatalf("expected other level roster intact, got %+v", kept)
	}
	if err := store.DeleteBeastStates(ctx, 1, 2); err != nil {
		t.Fatalf("delete empty roster: %v", err)
	}
}

func TestAdminRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	record := storage.AdminRecord{Address: "admin", Role: "root", Permissions: 7, AddedAt: storeTime}
	if err := store.PutAdmin(ctx, record); err != nil {
		t.Fatalf("put admin: %v", err)
	}
	got, err := store.GetAdmin(ctx, "admin")
	if err != nil {
		t.Fatalf("get admin: %v", err)
	}
	if got.Role != "root" || got.Permissions != 7 {
		t.Fatalf("unexpected admin %+v", got)
	}
	if err := store.DeleteAdmin(ctx, "admin"); err != nil {
		t.Fatalf("delete admin: %v", err)
	}
	if _, err := store.GetAdmin(ctx, "admin"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	// Deleting a missing admin is not an error.
	if err := store.DeleteAdmin(ctx, "missing"); err != nil {
		t.Fatalf("delete missing admin: %v", err)
	}
}

func appendTestEvent(ctx context.Context, t *testing.T, store *Store, typ event.Type, gameID uint64) event.Event {
	t.Helper()
	evt, err := store.AppendEvent(ctx, event.Event{
		ID:          "evt-" + string(typ),
		Type:        typ,
		Timestamp:   storeTime,
		PlayerID:    "p1",
		GameID:      gameID,
		Level:       1,
		EntityType:  "test",
		EntityID:    "1",
		PayloadJSON: []byte(`{"n":1}`),
	})
	if err != nil {
		t.Fatalf("append event: %v", err)
	}
	return evt
}

func TestEventJournal(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	first := appendTestEvent(ctx, t, store, event.TypeGameCreated, 1)
	second := appendTestEvent(ctx, t, store, event.TypeCoinCollected, 1)
	appendTestEvent(ctx, t, store, event.TypeCoinCollected, 2)

	if first.Seq == 0 || second.Seq <= first.Seq {
		t.Fatalf("expected ascending sequence, got %d then %d", first.Seq, second.Seq)
	}

	scoped, err := store.ListEvents(ctx, 1, 0, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(scoped) != 2 {
		t.Fatalf("expected 2 events for game 1, got %d", len(scoped))
	}
	all, err := store.ListEvents(ctx, 0, 0, 10)
	if err != nil {
		t.Fatalf("list all events: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 events unscoped, got %d", len(all))
	}
	after, err := store.ListEvents(ctx, 1, first.Seq, 10)
	if err != nil {
		t.Fatalf("list events after: %v", err)
	}
	if len(after) != 1 || after[0].Seq != second.Seq {
		t.Fatalf("expected only the second event, got %+v", after)
	}
}

func TestListEventsPageFilterAndOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	appendTestEvent(ctx, t, store, event.TypeGameCreated, 1)
	appendTestEvent(ctx, t, store, event.TypeCoinCollected, 1)
	appendTestEvent(ctx, t, store, event.TypeCoinCollected, 1)

	res, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		PageSize:     10,
		FilterClause: "event_type = ?",
		FilterParams: []any{"coin.collected"},
	})
	if err != nil {
		t.Fatalf("list page: %v", err)
	}
	if len(res.Events) != 2 || res.TotalCount != 2 || res.HasNextPage {
		t.Fatalf("unexpected filtered page %+v", res)
	}

	desc, err := store.ListEventsPage(ctx, storage.ListEventsPageRequest{
		PageSize:   2,
		Descending: true,
	})
	if err != nil {
		t.Fatalf("list desc: %v", err)
	}
	if len(desc.Events) != 2 || !desc.HasNextPage || desc.TotalCount != 3 {
		t.Fatalf("unexpected desc page %+v", desc)
	}
	if desc.Events[0].Seq < desc.Events[1].Seq {
		t.Fatalf("expected newest first, got %d then %d", desc.Events[0].Seq, desc.Events[1].Seq)
	}
}

func TestAppendEventRejectsEmptyType(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	if _, err := store.AppendEvent(ctx, event.Event{ID: "x"}); err == nil {
		t.Fatalf("expected rejection of empty event type")
	}
}
