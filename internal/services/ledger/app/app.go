// Package app boots the ledger service from process configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/api/ledger"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage/sqlite"
)

// Config holds ledger process configuration.
type Config struct {
	// DBPath is the SQLite database file path.
	DBPath string `env:"ELYSIUM_LEDGER_DB" envDefault:"elysium.db"`
	// RootAdmins are admin addresses granted catalog authority at boot.
	RootAdmins []string `env:"ELYSIUM_ROOT_ADMINS" envSeparator:","`
}

// App bundles the running ledger service with its backing store.
type App struct {
	Service *ledger.Service
	Store   storage.Store
}

// New opens the store, installs the configured root admins, and constructs
// the ledger service.
func New(ctx context.Context, cfg Config, opts ...ledger.Option) (*App, error) {
	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger store: %w", err)
	}
	if err := seedRootAdmins(ctx, store, cfg.RootAdmins); err != nil {
		store.Close()
		return nil, err
	}
	return &App{
		Service: ledger.New(store, opts...),
		Store:   store,
	}, nil
}

// Close releases the backing store.
func (a *App) Close() error {
	return a.Store.Close()
}

// seedRootAdmins installs the configured addresses in the allow-list.
// Addresses already present keep their original record.
func seedRootAdmins(ctx context.Context, store storage.Store, addresses []string) error {
	for _, address := range addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		_, err := store.GetAdmin(ctx, address)
		if err == nil {
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("check admin %s: %w", address, err)
		}
		record := storage.AdminRecord{
			Address: address,
			Role:    "root",
			AddedAt: time.Now().UTC(),
		}
		if err := store.PutAdmin(ctx, record); err != nil {
			return fmt.Errorf("seed admin %s: %w", address, err)
		}
	}
	return nil
}
