package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SettingsStore keeps global operator settings in the single-row admin_config
// table. Required groups are comma-joined at rest and split in memory.
type SettingsStore struct {
	db *sqlx.DB
}

// NewSettingsStore constructs a SettingsStore on the shared pool.
func NewSettingsStore(db *sqlx.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// RequiredGroups returns the configured group references, empty when unset.
func (s *SettingsStore) RequiredGroups(ctx context.Context) ([]string, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw,
		`SELECT required_groups FROM admin_config WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("required groups: %w", err)
	}
	return SplitGroups(raw), nil
}

// SetRequiredGroups replaces the global required-group list.
func (s *SettingsStore) SetRequiredGroups(ctx context.Context, groups []string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_config (id, required_groups)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET required_groups = EXCLUDED.required_groups`,
		JoinGroups(groups),
	)
	if err != nil {
		return fmt.Errorf("set required groups: %w", err)
	}
	return nil
}

// SplitGroups parses the comma-joined at-rest form, dropping blanks.
func SplitGroups(raw string) []string {
	var groups []string
	for _, g := range strings.Split(raw, ",") {
		g = strings.TrimSpace(g)
		if g != "" {
			groups = append(groups, g)
		}
	}
	return groups
}

// JoinGroups builds the comma-joined at-rest form.
func JoinGroups(groups []string) string {
	cleaned := make([]string, 0, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" {
			cleaned = append(cleaned, g)
		}
	}
	return strings.Join(cleaned, ",")
}
