package sqlite

import (
	"context"
	"database/sql"

	"github.com/tverano/docqa"
)

// Compile-time interface verification.
var _ docqa.VaultStateStore = (*VaultStateStore)(nil)

// VaultStateStore implements docqa.VaultStateStore using SQLite. The
// vault_state table holds at most one row.
type VaultStateStore struct {
	db *DB
}

// NewVaultStateStore creates a new VaultStateStore.
func NewVaultStateStore(db *DB) *VaultStateStore {
	return &VaultStateStore{db: db}
}

// LoadVaultState returns the stored state.
func (s *VaultStateStore) LoadVaultState(ctx context.Context) (*docqa.VaultState, error) {
	var state docqa.VaultState

	err := s.db.QueryRowContext(ctx, `
		SELECT enabled, salt, wrapped_key, biometric_enabled FROM vault_state WHERE id = 1
	`).Scan(&state.Enabled, &state.Salt, &state.WrappedKey, &state.BiometricEnabled)

	if err == sql.ErrNoRows {
		return nil, docqa.Errorf(docqa.ENOTFOUND, "vault state not found")
	}
	if err != nil {
		return nil, err
	}

	return &state, nil
}

// SaveVaultState writes the state, replacing any previous one.
func (s *VaultStateStore) SaveVaultState(ctx context.Context, state *docqa.VaultState) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vault_state (id, enabled, salt, wrapped_key, biometric_enabled)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			enabled = excluded.enabled,
			salt = excluded.salt,
			wrapped_key = excluded.wrapped_key,
			biometric_enabled = excluded.biometric_enabled
	`, state.Enabled, state.Salt, state.WrappedKey, state.BiometricEnabled)
	return err
}

// ClearVaultState removes the stored state.
func (s *VaultStateStore) ClearVaultState(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM vault_state WHERE id = 1")
	return err
}
