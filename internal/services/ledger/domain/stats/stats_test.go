package stats

import (
	"errors"
	"testing"
	"time"
)

func TestLevelForExperience(t *testing.T) {
	cases := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{199, 2},
		{250, 3},
		{1900, 20},
		{-5, 1},
	}
	for _, tc := range cases {
		if got := LevelForExperience(tc.xp); got != tc.want {
			t.Fatalf("LevelForExperience(%d): expected %d, got %d", tc.xp, tc.want, got)
		}
	}
}

func TestAddExperienceLevelUp(t *testing.T) {
	s := NewStats("p1", time.Now())
	s.Health = 40

	gained := s.AddExperience(250)
	if gained != 2 {
		t.Fatalf("expected 2 levels gained, got %d", gained)
	}
	if s.Level != 3 {
		t.Fatalf("expected level 3, got %d", s.Level)
	}
	if s.MaxHealth != BaseMaxHealth+2*LevelUpHealthBonus {
		t.Fatalf("expected max health 120, got %d", s.MaxHealth)
	}
	if s.Health != s.MaxHealth {
		t.Fatalf("expected full heal on level up, got %d", s.Health)
	}

	// Gains below the next threshold change nothing but the total.
	if gained := s.AddExperience(10); gained != 0 {
		t.Fatalf("expected no level gain, got %d", gained)
	}
	if s.Experience != 260 {
		t.Fatalf("expected 260 experience, got %d", s.Experience)
	}
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	s := NewStats("p1", time.Now())
	s.ApplyDamage(150)
	if s.Health != 0 {
		t.Fatalf("expected 0 health, got %d", s.Health)
	}
}

func TestHealClampsToMax(t *testing.T) {
	s := NewStats("p1", time.Now())
	s.Health = 90
	s.Heal(50)
	if s.Health != s.MaxHealth {
		t.Fatalf("expected clamp to %d, got %d", s.MaxHealth, s.Health)
	}
}

func TestSetHealthClamps(t *testing.T) {
	s := NewStats("p1", time.Now())
	s.SetHealth(-10)
	if s.Health != 0 {
		t.Fatalf("expected 0, got %d", s.Health)
	}
	s.SetHealth(500)
	if s.Health != s.MaxHealth {
		t.Fatalf("expected %d, got %d", s.MaxHealth, s.Health)
	}
}

func TestInventoryCapacityExemptsCoins(t *testing.T) {
	inv := NewInventory("p1", time.Now())
	inv.Capacity = 2

	if err := inv.Add(ItemHealthPotion, 2); err != nil {
		t.Fatalf("add potions: %v", err)
	}
	if err := inv.Add(ItemBook, 1); !errors.Is(err, ErrInventoryFull) {
		t.Fatalf("expected inventory full, got %v", err)
	}
	// Coins are currency, not slots.
	if err := inv.Add(ItemCoin, 1000); err != nil {
		t.Fatalf("add coins: %v", err)
	}
	if inv.Coins != 1000 {
		t.Fatalf("expected 1000 coins, got %d", inv.Coins)
	}
	if inv.SlotCount() != 2 {
		t.Fatalf("expected 2 slots used, got %d", inv.SlotCount())
	}
}

func TestItemTypeLabels(t *testing.T) {
	types := []ItemType{ItemCoin, ItemHealthPotion, ItemSurvivalKit, ItemBook, ItemBeastEssence, ItemAncientKnowledge}
	for _, typ := range types {
		if got := ItemTypeFromLabel(typ.String()); got != typ {
			t.Fatalf("label round trip for %v: got %v", typ, got)
		}
	}
	if got := ItemTypeFromLabel("garbage"); got != ItemUnspecified {
		t.Fatalf("expected unspecified, got %v", got)
	}
}
