// Package fight implements the turn-based combat state machine.
//
// A fight session moves through Uninitialized -> Active (alternating player
// and enemy turns) -> Ended (victory, defeat, or fled). Every transition is
// deterministic: damage derives from the player level and the authored
// adversary stats, never from randomness.
package fight

import (
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
)

var (
	// ErrNotActive indicates an operation on a fight that is not running.
	ErrNotActive = apperrors.New(apperrors.CodeFightNotActive, "no active fight for this level")
	// ErrAlreadyActive indicates fight_start while a fight is running.
	ErrAlreadyActive = apperrors.New(apperrors.CodeFightInProgress, "a fight is already active for this level")
	// ErrNotPlayerTurn indicates a player action during the enemy turn.
	ErrNotPlayerTurn = apperrors.New(apperrors.CodeWrongTurn, "it is not the player's turn")
	// ErrNotEnemyTurn indicates an enemy action during the player turn.
	ErrNotEnemyTurn = apperrors.New(apperrors.CodeWrongTurn, "it is not the enemy's turn")
	// ErrTargetAlreadyDead indicates an attack against a defeated beast.
	ErrTargetAlreadyDead = apperrors.New(apperrors.CodeTargetAlreadyDead, "target beast is already dead")
	// ErrBeastNotFound indicates the target beast is not part of the fight.
	ErrBeastNotFound = apperrors.New(apperrors.CodeBeastNotFound, "beast is not part of this fight")
)

// Outcome is the terminal result of a fight.
type Outcome int

const (
	// OutcomeNone means the fight has not ended.
	OutcomeNone Outcome = iota
	// OutcomeVictory means every adversary was defeated.
	OutcomeVictory
	// OutcomeDefeat means the player's health reached zero.
	OutcomeDefeat
	// OutcomeFled means the player abandoned the fight.
	OutcomeFled
)

// String returns the lowercase label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeFled:
		return "fled"
	default:
		return "none"
	}
}

// Victory reports whether the outcome counts as a win for the player.
func (o Outcome) Victory() bool {
	return o == OutcomeVictory
}

// Session is the per-(game, level) fight record.
type Session struct {
	GameID    uint64
	Level     uint32
	StartedAt time.Time
	// TurnNumber starts at 1 and increments on every completed turn.
	TurnNumber int
	// PlayerTurn is true while the player holds the initiative.
	PlayerTurn bool
	// PlayerHP is the fight-local health pool seeded from player stats.
	PlayerHP         int
	EnemiesRemaining int
	Active           bool
	Outcome          Outcome
}

// BeastState is the fight-local state for one participating adversary.
type BeastState struct {
	GameID  uint64
	Level   uint32
	BeastID uint64
	HP      int
	Alive   bool
}

// NewSession initializes a fight against the full adversary roster.
// The player always opens the fight.
func NewSession(gameID uint64, levelID uint32, playerHealth int, roster []level.Beast, now time.Time) (Session, []BeastState) {
	sess := Session{
		GameID:           gameID,
		Level:            levelID,
		StartedAt:        now,
		TurnNumber:       1,
		PlayerTurn:       true,
		PlayerHP:         playerHealth,
		EnemiesRemaining: len(roster),
		Active:           true,
	}
	beasts := make([]BeastState, 0, len(roster))
	for _, b := range roster {
		beasts = append(beasts, BeastState{
			GameID:  gameID,
			Level:   levelID,
			BeastID: b.ID,
			HP:      b.Health,
			Alive:   true,
		})
	}
	return sess, beasts
}

// PlayerAttackDamage is the deterministic player damage formula.
func PlayerAttackDamage(playerLevel int) int {
	return playerLevel * 5
}

// EnemyStrikeDamage is the deterministic adversary damage formula: the
// authored base damage plus the type bonus table.
func EnemyStrikeDamage(b level.Beast) int {
	return b.Damage + b.Type.DamageBonus()
}

// ApplyPlayerAttack resolves one player attack against the target beast and
// passes the initiative to the enemy. The caller validates all preconditions
// first; this function only applies state.
func (s *Session) ApplyPlayerAttack(target *BeastState, damage int) {
	if damage >= target.HP {
		target.HP = 0
		target.Alive = false
		s.EnemiesRemaining--
	} else {
		target.HP -= damage
	}
	s.PlayerTurn = false
	s.TurnNumber++
}

// ApplyEnemyStrike applies the combined enemy damage to the player.
// When the player survives, the initiative returns to the player; when the
// player dies, the fight ends in defeat without flipping the turn.
func (s *Session) ApplyEnemyStrike(damage int) (playerDied bool) {
	s.PlayerHP -= damage
	if s.PlayerHP <= 0 {
		s.PlayerHP = 0
		s.end(OutcomeDefeat)
		return true
	}
	s.PlayerTurn = true
	s.TurnNumber++
	return false
}

// EndVictory terminates the fight as a player win.
func (s *Session) EndVictory() {
	s.end(OutcomeVictory)
}

// EndFled terminates the fight as a loss, preserving the player's HP.
func (s *Session) EndFled() {
	s.end(OutcomeFled)
}

func (s *Session) end(outcome Outcome) {
	s.Active = false
	s.Outcome = outcome
}
