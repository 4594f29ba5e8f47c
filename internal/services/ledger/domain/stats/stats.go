// Package stats holds permanent player RPG stats and the experience curve.
package stats

import "time"

const (
	// BaseMaxHealth is the starting health pool for new players.
	BaseMaxHealth = 100
	// ExperiencePerLevel is the flat per-level experience requirement.
	ExperiencePerLevel = 100
	// LevelUpHealthBonus is added to max health on every level gained.
	LevelUpHealthBonus = 10
)

// Stats is the permanent per-player stat block.
type Stats struct {
	PlayerID  string
	Health    int
	MaxHealth int
	// Level is derived from lifetime experience, floor(xp/100)+1.
	Level      int
	Experience int
	// Lifetime aggregate counters.
	ItemsCollected      int
	BeastsDefeated      int
	ObjectivesCompleted int
	UpdatedAt           time.Time
}

// NewStats returns the starting stat block for a fresh profile.
func NewStats(playerID string, now time.Time) Stats {
	return Stats{
		PlayerID:  playerID,
		Health:    BaseMaxHealth,
		MaxHealth: BaseMaxHealth,
		Level:     1,
		UpdatedAt: now,
	}
}

// LevelForExperience maps lifetime experience to a player level.
// The remainder carries over toward the next level.
func LevelForExperience(experience int) int {
	if experience < 0 {
		return 1
	}
	return experience/ExperiencePerLevel + 1
}

// AddExperience folds an experience gain into the stat block.
// Each level gained raises max health by LevelUpHealthBonus; any level-up
// fully restores health. Returns the number of levels gained.
func (s *Stats) AddExperience(points int) int {
	if points <= 0 {
		return 0
	}
	s.Experience += points
	newLevel := LevelForExperience(s.Experience)
	gained := newLevel - s.Level
	if gained <= 0 {
		return 0
	}
	s.Level = newLevel
	s.MaxHealth += gained * LevelUpHealthBonus
	s.Health = s.MaxHealth
	return gained
}

// ApplyDamage reduces health, floored at zero.
func (s *Stats) ApplyDamage(amount int) {
	if amount <= 0 {
		return
	}
	s.Health -= amount
	if s.Health < 0 {
		s.Health = 0
	}
}

// Heal raises health, clamped to max health.
func (s *Stats) Heal(amount int) {
	if amount <= 0 {
		return
	}
	s.Health += amount
	if s.Health > s.MaxHealth {
		s.Health = s.MaxHealth
	}
}

// SetHealth stores an absolute health value, clamped to [0, max].
func (s *Stats) SetHealth(value int) {
	if value < 0 {
		value = 0
	}
	if value > s.MaxHealth {
		value = s.MaxHealth
	}
	s.Health = value
}
