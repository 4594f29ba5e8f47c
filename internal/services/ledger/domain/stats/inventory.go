package stats

import (
	"strings"
	"time"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
)

// DefaultCapacity is the item-slot ceiling for new inventories.
const DefaultCapacity = 64

// ErrInventoryFull indicates an item pickup would exceed the slot capacity.
var ErrInventoryFull = apperrors.New(apperrors.CodeInventoryFull, "inventory capacity reached")

// ItemType identifies an inventory item category.
type ItemType int

const (
	// ItemUnspecified represents an invalid item type value.
	ItemUnspecified ItemType = iota
	// ItemCoin is the game currency.
	ItemCoin
	// ItemHealthPotion restores health when consumed.
	ItemHealthPotion
	// ItemSurvivalKit is a utility consumable.
	ItemSurvivalKit
	// ItemBook carries lore and experience.
	ItemBook
	// ItemBeastEssence drops from defeated adversaries.
	ItemBeastEssence
	// ItemAncientKnowledge is the rare progression item.
	ItemAncientKnowledge
)

// String returns the lowercase storage label for the item type.
func (t ItemType) String() string {
	switch t {
	case ItemCoin:
		return "coin"
	case ItemHealthPotion:
		return "health_potion"
	case ItemSurvivalKit:
		return "survival_kit"
	case ItemBook:
		return "book"
	case ItemBeastEssence:
		return "beast_essence"
	case ItemAncientKnowledge:
		return "ancient_knowledge"
	default:
		return "unspecified"
	}
}

// ItemTypeFromLabel parses a storage label back to an item type.
func ItemTypeFromLabel(label string) ItemType {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "coin":
		return ItemCoin
	case "health_potion":
		return ItemHealthPotion
	case "survival_kit":
		return ItemSurvivalKit
	case "book":
		return ItemBook
	case "beast_essence":
		return ItemBeastEssence
	case "ancient_knowledge":
		return ItemAncientKnowledge
	default:
		return ItemUnspecified
	}
}

// IsValid reports whether the item type is a usable value.
func (t ItemType) IsValid() bool {
	return t >= ItemCoin && t <= ItemAncientKnowledge
}

// Inventory is the permanent per-player item ledger.
type Inventory struct {
	PlayerID         string
	Coins            int64
	HealthPotions    int
	SurvivalKits     int
	Books            int
	BeastEssences    int
	AncientKnowledge int
	// Capacity caps item slots. Coins are currency, not slots, and are
	// exempt from the cap.
	Capacity  int
	UpdatedAt time.Time
}

// NewInventory returns an empty inventory with the default capacity.
func NewInventory(playerID string, now time.Time) Inventory {
	return Inventory{
		PlayerID:  playerID,
		Capacity:  DefaultCapacity,
		UpdatedAt: now,
	}
}

// SlotCount is the number of capacity-counted items currently held.
func (inv Inventory) SlotCount() int {
	return inv.HealthPotions + inv.SurvivalKits + inv.Books + inv.BeastEssences + inv.AncientKnowledge
}

// Count returns the held quantity for an item type.
func (inv Inventory) Count(item ItemType) int64 {
	switch item {
	case ItemCoin:
		return inv.Coins
	case ItemHealthPotion:
		return int64(inv.HealthPotions)
	case ItemSurvivalKit:
		return int64(inv.SurvivalKits)
	case ItemBook:
		return int64(inv.Books)
	case ItemBeastEssence:
		return int64(inv.BeastEssences)
	case ItemAncientKnowledge:
		return int64(inv.AncientKnowledge)
	default:
		return 0
	}
}

// Add credits quantity of an item type, enforcing the slot capacity for
// everything except coins.
func (inv *Inventory) Add(item ItemType, quantity int) error {
	if quantity <= 0 {
		return nil
	}
	if item == ItemCoin {
		inv.Coins += int64(quantity)
		return nil
	}
	if inv.Capacity > 0 && inv.SlotCount()+quantity > inv.Capacity {
		return ErrInventoryFull
	}
	switch item {
	case ItemHealthPotion:
		inv.HealthPotions += quantity
	case ItemSurvivalKit:
		inv.SurvivalKits += quantity
	case ItemBook:
		inv.Books += quantity
	case ItemBeastEssence:
		inv.BeastEssences += quantity
	case ItemAncientKnowledge:
		inv.AncientKnowledge += quantity
	default:
		return apperrors.New(apperrors.CodeLevelInvalidSpec, "unknown item type")
	}
	return nil
}
