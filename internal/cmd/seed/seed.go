// Package seed parses seed command flags and authors demo catalog content
// into a local ledger database.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/louisbranch/elysium-descent/internal/platform/config"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/app"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/level"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/profile"
)

// Config holds seed command configuration.
type Config struct {
	App app.Config
	// Admin is the address the demo levels are authored under. It is added
	// to the allow-list for the run.
	Admin   string `env:"ELYSIUM_SEED_ADMIN" envDefault:"seed-admin"`
	Verbose bool
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.App.DBPath, "db", cfg.App.DBPath, "ledger database path")
	fs.StringVar(&cfg.Admin, "admin", cfg.Admin, "admin address authoring the demo levels")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run authors the demo levels through the catalog service.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	appCfg := cfg.App
	appCfg.RootAdmins = append(appCfg.RootAdmins, cfg.Admin)
	a, err := app.New(ctx, appCfg)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, def := range demoLevels() {
		created, err := a.Service.CreateLevel(ctx, cfg.Admin, def)
		if err != nil {
			return fmt.Errorf("create level %q: %w", def.Level.Name, err)
		}
		if cfg.Verbose {
			fmt.Fprintf(out, "created level %d %q (%d coins, %d adversaries, %d objectives)\n",
				created.Level.ID, created.Level.Name,
				created.Coins.SpawnCount, len(created.Beasts), len(created.Objectives))
		} else {
			fmt.Fprintf(out, "created level %d %q\n", created.Level.ID, created.Level.Name)
		}
	}
	return nil
}

// demoLevels is a small authored catalog for local development.
func demoLevels() []level.Definition {
	return []level.Definition{
		{
			Level: level.Level{
				Name:      "Sunken Crypt",
				Archetype: profile.ArchetypeMan,
				NextLevel: 2,
			},
			Coins: level.Coins{
				SpawnCount: 5,
				Positions: []level.Position{
					{X: 2, Y: 0, Z: 3},
					{X: 4, Y: 0, Z: 7},
					{X: 6, Y: 1, Z: 2},
					{X: 8, Y: 0, Z: 9},
					{X: 10, Y: 2, Z: 4},
				},
			},
			Beasts: []level.Beast{
				{ID: 1, Type: level.AdversaryGoblin, Position: level.Position{X: 5, Z: 5}, Health: 30, Damage: 4, Speed: 1.2},
				{ID: 2, Type: level.AdversaryUndead, Position: level.Position{X: 9, Z: 8}, Health: 45, Damage: 6, Speed: 0.8},
			},
			Objectives: []level.Objective{
				{ID: 1, Title: "Coin hoard", Description: "Collect every coin in the crypt", Type: level.ObjectiveCollect, Target: "coin", RequiredCount: 5, Reward: 50},
				{ID: 2, Title: "Clear the dead", Description: "Defeat the crypt guardians", Type: level.ObjectiveDefeat, Target: "undead", RequiredCount: 2, Reward: 75},
			},
			Environment: level.Environment{Scale: 1, Rotation: 0},
		},
		{
			Level: level.Level{
				Name:      "Ember Gate",
				Archetype: profile.ArchetypeMan,
				NextLevel: 0,
			},
			Coins: level.Coins{
				SpawnCount: 3,
				Positions: []level.Position{
					{X: 1, Y: 0, Z: 1},
					{X: 3, Y: 1, Z: 6},
					{X: 7, Y: 0, Z: 2},
				},
			},
			Beasts: []level.Beast{
				{ID: 1, Type: level.AdversaryDragon, Position: level.Position{X: 6, Z: 6}, Health: 100, Damage: 20, Speed: 1.5},
			},
			Objectives: []level.Objective{
				{ID: 1, Title: "Gatekeeper", Description: "Defeat the dragon at the gate", Type: level.ObjectiveDefeat, Target: "dragon", RequiredCount: 1, Reward: 150},
			},
			Environment: level.Environment{Scale: 1.5, Rotation: 90},
		},
	}
}
