package level

import "strconv"

// Flat positional payload schemas preserved for compatibility with the
// existing on-chain ABI. Structured types are authoritative internally;
// these codecs only translate at the boundary.
//
//	coins:       [spawn_count, x1,y1,z1, x2,y2,z2, ...]
//	beasts:      [id, type_code, x, y, z, health, damage, speed] per beast
//	objectives:  [id, title, description, type_code, target, required, reward] per objective
//	environment: [scale, x, y, z, rotation]
const (
	beastStride     = 8
	objectiveStride = 7
	environmentLen  = 5
)

// EncodeCoins renders coin placement as the flat numeric wire payload.
func EncodeCoins(c Coins) []float64 {
	out := make([]float64, 0, 1+3*len(c.Positions))
	out = append(out, float64(c.SpawnCount))
	for _, p := range c.Positions {
		out = append(out, p.X, p.Y, p.Z)
	}
	return out
}

// DecodeCoins parses the flat numeric coin payload.
func DecodeCoins(raw []float64) (Coins, error) {
	if len(raw) == 0 {
		return Coins{}, ErrInvalidSpec
	}
	spawnCount := int(raw[0])
	rest := raw[1:]
	if spawnCount < 0 || len(rest) != 3*spawnCount {
		return Coins{}, ErrInvalidSpec
	}
	coins := Coins{SpawnCount: spawnCount}
	for i := 0; i < len(rest); i += 3 {
		coins.Positions = append(coins.Positions, Position{X: rest[i], Y: rest[i+1], Z: rest[i+2]})
	}
	return coins, nil
}

// EncodeBeasts renders the adversary roster as the flat numeric wire payload.
func EncodeBeasts(beasts []Beast) ([]float64, error) {
	out := make([]float64, 0, beastStride*len(beasts))
	for _, b := range beasts {
		code, ok := b.Type.WireCode()
		if !ok {
			return nil, ErrInvalidSpec
		}
		out = append(out,
			float64(b.ID),
			float64(code),
			b.Position.X, b.Position.Y, b.Position.Z,
			float64(b.Health),
			float64(b.Damage),
			b.Speed,
		)
	}
	return out, nil
}

// DecodeBeasts parses the flat numeric adversary payload.
func DecodeBeasts(raw []float64) ([]Beast, error) {
	if len(raw)%beastStride != 0 {
		return nil, ErrInvalidSpec
	}
	var beasts []Beast
	for i := 0; i < len(raw); i += beastStride {
		typ, ok := AdversaryFromWire(uint8(raw[i+1]))
		if !ok {
			return nil, ErrInvalidSpec
		}
		beasts = append(beasts, Beast{
			ID:       uint64(raw[i]),
			Type:     typ,
			Position: Position{X: raw[i+2], Y: raw[i+3], Z: raw[i+4]},
			Health:   int(raw[i+5]),
			Damage:   int(raw[i+6]),
			Speed:    raw[i+7],
		})
	}
	return beasts, nil
}

// EncodeObjectives renders objectives as the flat string wire payload.
// Numeric fields are decimal-formatted in place.
func EncodeObjectives(objectives []Objective) ([]string, error) {
	out := make([]string, 0, objectiveStride*len(objectives))
	for _, o := range objectives {
		code, ok := o.Type.WireCode()
		if !ok {
			return nil, ErrInvalidSpec
		}
		out = append(out,
			strconv.FormatUint(o.ID, 10),
			o.Title,
			o.Description,
			strconv.Itoa(int(code)),
			o.Target,
			strconv.Itoa(o.RequiredCount),
			strconv.Itoa(o.Reward),
		)
	}
	return out, nil
}

// DecodeObjectives parses the flat string objective payload.
func DecodeObjectives(raw []string) ([]Objective, error) {
	if len(raw)%objectiveStride != 0 {
		return nil, ErrInvalidSpec
	}
	var objectives []Objective
	for i := 0; i < len(raw); i += objectiveStride {
		id, err := strconv.ParseUint(raw[i], 10, 64)
		if err != nil {
			return nil, ErrInvalidSpec
		}
		code, err := strconv.Atoi(raw[i+3])
		if err != nil {
			return nil, ErrInvalidSpec
		}
		typ, ok := ObjectiveFromWire(uint8(code))
		if !ok {
			return nil, ErrInvalidSpec
		}
		required, err := strconv.Atoi(raw[i+5])
		if err != nil {
			return nil, ErrInvalidSpec
		}
		reward, err := strconv.Atoi(raw[i+6])
		if err != nil {
			return nil, ErrInvalidSpec
		}
		objectives = append(objectives, Objective{
			ID:            id,
			Title:         raw[i+1],
			Description:   raw[i+2],
			Type:          typ,
			Target:        raw[i+4],
			RequiredCount: required,
			Reward:        reward,
		})
	}
	return objectives, nil
}

// EncodeEnvironment renders scene placement as the flat numeric wire payload.
func EncodeEnvironment(e Environment) []float64 {
	return []float64{e.Scale, e.Position.X, e.Position.Y, e.Position.Z, e.Rotation}
}

// DecodeEnvironment parses the flat numeric environment payload.
func DecodeEnvironment(raw []float64) (Environment, error) {
	if len(raw) != environmentLen {
		return Environment{}, ErrInvalidSpec
	}
	return Environment{
		Scale:    raw[0],
		Position: Position{X: raw[1], Y: raw[2], Z: raw[3]},
		Rotation: raw[4],
	}, nil
}
