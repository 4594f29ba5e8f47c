// Package level holds admin-authored level definitions and their sub-records.
package level

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
)

// AdversaryType categorises combat units defined by the catalog.
type AdversaryType int

const (
	// AdversaryUnspecified represents an invalid adversary type value.
	AdversaryUnspecified AdversaryType = iota
	// AdversaryMonster is the generic adversary type.
	AdversaryMonster
	// AdversaryDragon is the dragon adversary type.
	AdversaryDragon
	// AdversaryGoblin is the goblin adversary type.
	AdversaryGoblin
	// AdversaryOrc is the orc adversary type.
	AdversaryOrc
	// AdversaryDemon is the demon adversary type.
	AdversaryDemon
	// AdversaryUndead is the undead adversary type.
	AdversaryUndead
	// AdversaryElemental is the elemental adversary type.
	AdversaryElemental
)

var (
	// ErrEmptyName indicates a missing level name.
	ErrEmptyName = apperrors.New(apperrors.CodeLevelEmptyName, "level name is required")
	// ErrInvalidSpec indicates a malformed level authoring payload.
	ErrInvalidSpec = apperrors.New(apperrors.CodeLevelInvalidSpec, "level spec is malformed")
	// ErrNotActive indicates the referenced level is deactivated.
	ErrNotActive = apperrors.New(apperrors.CodeLevelNotActive, "level is not active")
	// ErrArchetypeMismatch indicates the level rejects the game's archetype.
	ErrArchetypeMismatch = apperrors.New(apperrors.CodeArchetypeMismatch, "level is not compatible with the player archetype")
)

// adversaryWireCodes is the explicit boundary mapping to the on-chain ABI.
// Monster=0, Dragon=1, Goblin=2, Orc=3, Demon=4, Undead=5, Elemental=6.
var adversaryWireCodes = map[AdversaryType]uint8{
	AdversaryMonster:   0,
	AdversaryDragon:    1,
	AdversaryGoblin:    2,
	AdversaryOrc:       3,
	AdversaryDemon:     4,
	AdversaryUndead:    5,
	AdversaryElemental: 6,
}

// damageBonuses is the per-type attack bonus applied on the enemy turn.
// The table is part of the external contract and must not drift.
var damageBonuses = map[AdversaryType]int{
	AdversaryDragon:    10,
	AdversaryDemon:     12,
	AdversaryElemental: 8,
	AdversaryOrc:       5,
	AdversaryUndead:    6,
	AdversaryGoblin:    2,
	AdversaryMonster:   0,
}

// WireCode returns the numeric adversary code used by the external payload schema.
func (t AdversaryType) WireCode() (uint8, bool) {
	code, ok := adversaryWireCodes[t]
	return code, ok
}

// AdversaryFromWire maps an external numeric code back to an adversary type.
func AdversaryFromWire(code uint8) (AdversaryType, bool) {
	for t, c := range adversaryWireCodes {
		if c == code {
			return t, true
		}
	}
	return AdversaryUnspecified, false
}

// DamageBonus returns the type-dependent bonus added to the base damage.
func (t AdversaryType) DamageBonus() int {
	return damageBonuses[t]
}

// String returns the lowercase storage label for the adversary type.
func (t AdversaryType) String() string {
	switch t {
	case AdversaryMonster:
		return "monster"
	case AdversaryDragon:
		return "dragon"
	case AdversaryGoblin:
		return "goblin"
	case AdversaryOrc:
		return "orc"
	case AdversaryDemon:
		return "demon"
	case AdversaryUndead:
		return "undead"
	case AdversaryElemental:
		return "elemental"
	default:
		return "unspecified"
	}
}

// AdversaryFromLabel parses a storage label back to an adversary type.
func AdversaryFromLabel(label string) AdversaryType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "monster":
		return AdversaryMonster
	case "dragon":
		return AdversaryDragon
	case "goblin":
		return AdversaryGoblin
	case "orc":
		return AdversaryOrc
	case "demon":
		return AdversaryDemon
	case "undead":
		return AdversaryUndead
	case "elemental":
		return AdversaryElemental
	default:
		return AdversaryUnspecified
	}
}

// ObjectiveType categorises level objectives.
type ObjectiveType int

const (
	// ObjectiveUnspecified represents an invalid objective type value.
	ObjectiveUnspecified ObjectiveType = iota
	// ObjectiveCollect requires collecting target items.
	ObjectiveCollect
	// ObjectiveReachLocation requires reaching a marked location.
	ObjectiveReachLocation
	// ObjectiveDefeat requires defeating target adversaries.
	ObjectiveDefeat
	// ObjectiveSurvive requires surviving for a duration.
	ObjectiveSurvive
	// ObjectiveExplore requires exploring marked areas.
	ObjectiveExplore
)

// objectiveWireCodes is the explicit boundary mapping to the on-chain ABI.
// Collect=0, ReachLocation=1, Defeat=2, Survive=3, Explore=4.
var objectiveWireCodes = map[ObjectiveType]uint8{
	ObjectiveCollect:       0,
	ObjectiveReachLocation: 1,
	ObjectiveDefeat:        2,
	ObjectiveSurvive:       3,
	ObjectiveExplore:       4,
}

// WireCode returns the numeric objective code used by the external payload schema.
func (t ObjectiveType) WireCode() (uint8, bool) {
	code, ok := objectiveWireCodes[t]
	return code, ok
}

// ObjectiveFromWire maps an external numeric code back to an objective type.
func ObjectiveFromWire(code uint8) (ObjectiveType, bool) {
	for t, c := range objectiveWireCodes {
		if c == code {
			return t, true
		}
	}
	return ObjectiveUnspecified, false
}

// String returns the lowercase storage label for the objective type.
func (t ObjectiveType) String() string {
	switch t {
	case ObjectiveCollect:
		return "collect"
	case ObjectiveReachLocation:
		return "reach_location"
	case ObjectiveDefeat:
		return "defeat"
	case ObjectiveSurvive:
		return "survive"
	case ObjectiveExplore:
		return "explore"
	default:
		return "unspecified"
	}
}

// ObjectiveTypeFromLabel parses a storage label back to an objective type.
func ObjectiveTypeFromLabel(label string) ObjectiveType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "collect":
		return ObjectiveCollect
	case "reach_location":
		return ObjectiveReachLocation
	case "defeat":
		return ObjectiveDefeat
	case "survive":
		return ObjectiveSurvive
	case "explore":
		return ObjectiveExplore
	default:
		return ObjectiveUnspecified
	}
}

// Position is a point in the level scene.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Coins describes coin placement for a level.
type Coins struct {
	SpawnCount int
	Positions  []Position
	// TotalCollected aggregates lifetime pickups across all games.
	TotalCollected int64
}

// Beast is one adversary definition authored into a level.
type Beast struct {
	ID       uint64
	Type     AdversaryType
	Position Position
	Health   int
	Damage   int
	Speed    float64
	// Defeated marks catalog-level defeat tracking, not per-fight state.
	Defeated bool
}

// Objective is one completion requirement authored into a level.
type Objective struct {
	ID          uint64
	Title       string
	Description string
	Type        ObjectiveType
	Target      string
	// RequiredCount is how many target units satisfy the objective.
	RequiredCount int
	CurrentCount  int
	// Reward is the experience credited when the objective completes.
	Reward    int
	Completed bool
}

// Environment holds scene placement parameters for the level.
type Environment struct {
	Scale    float64
	Position Position
	Rotation float64
}

// Level is the catalog header record for one level.
type Level struct {
	// ID is allocated by the counter allocator.
	ID   uint64
	Name string
	// Archetype restricts which player archetypes may start this level.
	Archetype profile.Archetype
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	// CreatedBy is the admin address that authored the level.
	CreatedBy string
	// NextLevel points at the level that follows on completion (0 for none).
	NextLevel uint64
}

// Definition bundles a level header with every sub-record the client needs
// to render the level without further fetches.
type Definition struct {
	Level       Level
	Coins       Coins
	Beasts      []Beast
	Objectives  []Objective
	Environment Environment
}

// RequiredObjectiveCount is the number of objectives a game must complete
// before complete_level succeeds.
func (d Definition) RequiredObjectiveCount() int {
	return len(d.Objectives)
}

// Beast returns the authored beast with the given id.
func (d Definition) Beast(beastID uint64) (Beast, bool) {
	for _, b := range d.Beasts {
		if b.ID == beastID {
			return b, true
		}
	}
	return Beast{}, false
}

// Objective returns the authored objective with the given id.
func (d Definition) Objective(objectiveID uint64) (Objective, bool) {
	for _, o := range d.Objectives {
		if o.ID == objectiveID {
			return o, true
		}
	}
	return Objective{}, false
}

// Validate checks a definition before it is written to the catalog.
func Validate(d Definition) error {
	if strings.TrimSpace(d.Level.Name) == "" {
		return ErrEmptyName
	}
	if !d.Level.Archetype.IsValid() {
		return profile.ErrInvalidArchetype
	}
	if d.Coins.SpawnCount < 0 || d.Coins.SpawnCount != len(d.Coins.Positions) {
		return ErrInvalidSpec
	}
	seenBeasts := make(map[uint64]struct{}, len(d.Beasts))
	for _, b := range d.Beasts {
		if _, dup := seenBeasts[b.ID]; dup {
			return ErrInvalidSpec
		}
		seenBeasts[b.ID] = struct{}{}
		if !b.Type.IsValid() || b.Health <= 0 || b.Damage < 0 {
			return ErrInvalidSpec
		}
	}
	seenObjectives := make(map[uint64]struct{}, len(d.Objectives))
	for _, o := range d.Objectives {
		if _, dup := seenObjectives[o.ID]; dup {
			return ErrInvalidSpec
		}
		seenObjectives[o.ID] = struct{}{}
		if !o.Type.IsValid() || o.RequiredCount < 0 || o.Reward < 0 {
			return ErrInvalidSpec
		}
	}
	return nil
}

// IsValid reports whether the adversary type is a usable value.
func (t AdversaryType) IsValid() bool {
	_, ok := adversaryWireCodes[t]
	return ok
}

// IsValid reports whether the objective type is a usable value.
func (t ObjectiveType) IsValid() bool {
	_, ok := objectiveWireCodes[t]
	return ok
}
