package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// AdminStore is the Postgres-backed Admins implementation.
type AdminStore struct {
	db *sqlx.DB
}

// NewAdminStore constructs an AdminStore on the shared pool.
func NewAdminStore(db *sqlx.DB) *AdminStore {
	return &AdminStore{db: db}
}

// Add registers a dynamic admin; re-adding an existing id refreshes the username.
func (s *AdminStore) Add(ctx context.Context, userID int64, username string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admins (user_id, username)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET username = EXCLUDED.username`,
		userID, username,
	)
	if err != nil {
		return fmt.Errorf("add admin: %w", err)
	}
	return nil
}

// Remove drops a dynamic admin and reports whether a row was removed.
func (s *AdminStore) Remove(ctx context.Context, userID int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM admins WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("remove admin: %w", err)
	}
	return res.RowsAffected()
}

// List returns dynamic admins in registration order.
func (s *AdminStore) List(ctx context.Context) ([]Admin, error) {
	var admins []Admin
	err := s.db.SelectContext(ctx, &admins,
		`SELECT user_id, username, added_at FROM admins ORDER BY added_at, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}
