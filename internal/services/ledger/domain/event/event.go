// Package event defines the ledger's notification journal records.
//
// Events represent facts the ledger has committed, not requests. The journal
// is append-only; clients and indexers replay it to mirror authoritative
// state.
package event

import (
	"strings"
	"time"
)

// Type identifies the kind of a ledger event.
type Type string

// Profile events.
const (
	// TypeProfileCreated records the creation of a player profile.
	TypeProfileCreated Type = "profile.created"
	// TypeProfileUpdated records updates to a player profile.
	TypeProfileUpdated Type = "profile.updated"
	// TypePlayerLevelUp records a player stats level increase.
	TypePlayerLevelUp Type = "player.level_up"
)

// Game session events.
const (
	// TypeGameCreated records the creation of a game session.
	TypeGameCreated Type = "game.created"
	// TypeGameStatusChanged records a forward lifecycle transition.
	TypeGameStatusChanged Type = "game.status_changed"
	// TypeLevelStarted records a game entering a level; the payload carries
	// the full level definition so clients can render without a fetch.
	TypeLevelStarted Type = "level.started"
	// TypeLevelCompleted records a successful level completion.
	TypeLevelCompleted Type = "level.completed"
)

// Catalog events.
const (
	// TypeLevelCreated records an admin authoring a level.
	TypeLevelCreated Type = "level.created"
	// TypeLevelModified records an admin replacing a level definition.
	TypeLevelModified Type = "level.modified"
	// TypeLevelActivated records a level becoming playable.
	TypeLevelActivated Type = "level.activated"
	// TypeLevelDeactivated records a level being withdrawn.
	TypeLevelDeactivated Type = "level.deactivated"
)

// Progress events.
const (
	// TypeCoinCollected records a session coin pickup.
	TypeCoinCollected Type = "coin.collected"
	// TypeItemCollected records a non-coin session pickup.
	TypeItemCollected Type = "item.collected"
	// TypeObjectiveCompleted records a session objective completion.
	TypeObjectiveCompleted Type = "objective.completed"
	// TypeSessionReset records a session being discarded and restarted.
	TypeSessionReset Type = "session.reset"
	// TypeSessionFinalized records a session being reconciled into
	// permanent progress.
	TypeSessionFinalized Type = "session.finalized"
)

// Combat events.
const (
	// TypeFightStarted records a fight session being initialized.
	TypeFightStarted Type = "fight.started"
	// TypePlayerAttacked records one resolved player attack.
	TypePlayerAttacked Type = "fight.player_attacked"
	// TypeEnemyAttacked records one resolved enemy turn.
	TypeEnemyAttacked Type = "fight.enemy_attacked"
	// TypeFightEnded records a fight reaching a terminal outcome.
	TypeFightEnded Type = "fight.ended"
	// TypeBeastDefeated records an adversary's defeat being reported into
	// progress tracking.
	TypeBeastDefeated Type = "beast.defeated"
)

// Event is one journal entry.
type Event struct {
	// Seq is the journal sequence number, assigned by storage on append.
	Seq uint64
	// ID is an opaque identifier assigned before append.
	ID string
	// Type identifies the kind of event.
	Type Type
	// Timestamp is when the ledger committed the fact.
	Timestamp time.Time
	// PlayerID is the correlation key carried by every event.
	PlayerID string
	// GameID scopes the event to a game session (0 for catalog/profile events).
	GameID uint64
	// Level scopes the event to a level (0 when not applicable).
	Level uint32
	// EntityType is the type of entity affected (game, level, fight, ...).
	EntityType string
	// EntityID is the ID of the entity affected.
	EntityID string
	// PayloadJSON holds event-specific data as JSON.
	PayloadJSON []byte
}

// IsValid reports whether the event type is usable.
func (t Type) IsValid() bool {
	return strings.TrimSpace(string(t)) != ""
}

// Domain returns the domain prefix of the event type (e.g. "fight", "level").
func (t Type) Domain() string {
	for i, c := range t {
		if c == '.' {
			return string(t[:i])
		}
	}
	return string(t)
}
