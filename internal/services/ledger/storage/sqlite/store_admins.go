package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// PutAdmin persists an allow-list entry, replacing any existing row.
func (s *Store) PutAdmin(ctx context.Context, a storage.AdminRecord) error {
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO admins (address, role, permissions, added_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (address) DO UPDATE SET
    role = excluded.role,
    permissions = excluded.permissions`,
		a.Address, a.Role, a.Permissions, toMillis(a.AddedAt))
	if err != nil {
		return fmt.Errorf("put admin: %w", err)
	}
	return nil
}

// GetAdmin loads an allow-list entry by address.
func (s *Store) GetAdmin(ctx context.Context, address string) (storage.AdminRecord, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT address, role, permissions, added_at FROM admins WHERE address = ?", address)

	var a storage.AdminRecord
	var addedAt int64
	err := row.Scan(&a.Address, &a.Role, &a.Permissions, &addedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.AdminRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.AdminRecord{}, fmt.Errorf("get admin: %w", err)
	}
	a.AddedAt = fromMillis(addedAt)
	return a, nil
}

// DeleteAdmin removes an allow-list entry. Deleting a missing entry is not
// an error.
func (s *Store) DeleteAdmin(ctx context.Context, address string) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM admins WHERE address = ?", address); err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	return nil
}
