package store

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/jmoiron/sqlx"
)

// WinnerStore is the Postgres-backed Winners implementation.
type WinnerStore struct {
	db *sqlx.DB
}

// NewWinnerStore constructs a WinnerStore on the shared pool.
func NewWinnerStore(db *sqlx.DB) *WinnerStore {
	return &WinnerStore{db: db}
}

// Upsert registers a winner with a null phone. Duplicate pairs are a no-op;
// the unique index on (product_name, handle) backs the conflict clause.
func (s *WinnerStore) Upsert(ctx context.Context, product, handle string) error {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO winners (product_name, handle)
		VALUES ($1, $2)
		ON CONFLICT (product_name, handle) DO NOTHING`,
		product, handle,
	)
	if err != nil {
		return fmt.Errorf("upsert winner: %w", err)
	}
	return nil
}

// DeleteProduct removes all records of a product.
func (s *WinnerStore) DeleteProduct(ctx context.Context, product string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM winners WHERE product_name = $1`, product)
	if err != nil {
		return 0, fmt.Errorf("delete product winners: %w", err)
	}
	return res.RowsAffected()
}

// Delete removes exactly one (product, handle) pair.
func (s *WinnerStore) Delete(ctx context.Context, product, handle string) (int64, error) {
	handle = NormalizeHandle(handle)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM winners WHERE product_name = $1 AND handle = $2`,
		product, handle,
	)
	if err != nil {
		return 0, fmt.Errorf("delete winner: %w", err)
	}
	return res.RowsAffected()
}

// DeleteBatch removes several handles independently. A failing element is
// recorded in the aggregated error but never aborts its siblings.
func (s *WinnerStore) DeleteBatch(ctx context.Context, product string, handles []string) (map[string]int64, error) {
	results := make(map[string]int64, len(handles))
	var errs *multierror.Error
	for _, h := range handles {
		normalized := NormalizeHandle(h)
		if normalized == "" {
			continue
		}
		count, err := s.Delete(ctx, product, normalized)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("handle %s: %w", normalized, err))
			continue
		}
		results[normalized] = count
	}
	return results, errs.ErrorOrNil()
}

// HandleExists checks membership globally, regardless of product.
func (s *WinnerStore) HandleExists(ctx context.Context, handle string) (bool, error) {
	handle = NormalizeHandle(handle)
	var exists bool
	err := s.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM winners WHERE handle = $1)`, handle)
	if err != nil {
		return false, fmt.Errorf("handle exists: %w", err)
	}
	return exists, nil
}

// SetPhone stores the phone on every record of the handle.
func (s *WinnerStore) SetPhone(ctx context.Context, handle, phone string) (int64, error) {
	handle = NormalizeHandle(handle)
	res, err := s.db.ExecContext(ctx,
		`UPDATE winners SET phone_number = $1 WHERE handle = $2`,
		phone, handle,
	)
	if err != nil {
		return 0, fmt.Errorf("set phone: %w", err)
	}
	return res.RowsAffected()
}

// ClearPhones nulls out every stored phone number.
func (s *WinnerStore) ClearPhones(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE winners SET phone_number = NULL WHERE phone_number IS NOT NULL`)
	if err != nil {
		return 0, fmt.Errorf("clear phones: %w", err)
	}
	return res.RowsAffected()
}

// ClearProductPhones nulls out phones for one product only.
func (s *WinnerStore) ClearProductPhones(ctx context.Context, product string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE winners SET phone_number = NULL WHERE product_name = $1 AND phone_number IS NOT NULL`,
		product,
	)
	if err != nil {
		return 0, fmt.Errorf("clear product phones: %w", err)
	}
	return res.RowsAffected()
}

// ListGrouped returns winners grouped by product, products alphabetically and
// winners in insertion order inside each product.
func (s *WinnerStore) ListGrouped(ctx context.Context, filter ListFilter) ([]ProductGroup, error) {
	query := `SELECT id, product_name, handle, phone_number, created_at FROM winners`
	switch filter {
	case ListWithPhone:
		query += ` WHERE phone_number IS NOT NULL`
	case ListWithoutPhone:
		query += ` WHERE phone_number IS NULL`
	}
	query += ` ORDER BY product_name, id`

	var rows []Winner
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list winners: %w", err)
	}
	return groupByProduct(rows), nil
}

// ChangeProduct re-keys every record of a handle under a new product inside a
// transaction so a concurrent admin cannot slip a conflicting pair in between
// the check and the move. A handle holding wins in several products collapses
// to a single record first; the unique (product_name, handle) index would
// reject the move otherwise.
func (s *WinnerStore) ChangeProduct(ctx context.Context, handle, newProduct string) (ChangeProductResult, error) {
	handle = NormalizeHandle(handle)

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return ChangeNotFound, fmt.Errorf("change product: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM winners WHERE handle = $1)`, handle); err != nil {
		return ChangeNotFound, fmt.Errorf("change product: lookup: %w", err)
	}
	if !exists {
		return ChangeNotFound, nil
	}

	var conflict bool
	if err := tx.GetContext(ctx, &conflict,
		`SELECT EXISTS (SELECT 1 FROM winners WHERE handle = $1 AND product_name = $2)`,
		handle, newProduct); err != nil {
		return ChangeNotFound, fmt.Errorf("change product: conflict check: %w", err)
	}
	if conflict {
		return ChangeConflict, nil
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM winners
		 WHERE handle = $1
		   AND id <> (SELECT MIN(id) FROM winners WHERE handle = $1)`,
		handle); err != nil {
		return ChangeNotFound, fmt.Errorf("change product: merge: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE winners SET product_name = $1 WHERE handle = $2`,
		newProduct, handle); err != nil {
		return ChangeNotFound, fmt.Errorf("change product: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return ChangeNotFound, fmt.Errorf("change product: commit: %w", err)
	}
	return ChangeOK, nil
}

// ExportAll dumps every row ordered for the CSV export.
func (s *WinnerStore) ExportAll(ctx context.Context) ([]Winner, error) {
	var rows []Winner
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, product_name, handle, phone_number, created_at
		 FROM winners ORDER BY product_name, id`)
	if err != nil {
		return nil, fmt.Errorf("export winners: %w", err)
	}
	return rows, nil
}

func groupByProduct(rows []Winner) []ProductGroup {
	var groups []ProductGroup
	for _, w := range rows {
		if n := len(groups); n > 0 && groups[n-1].Product == w.ProductName {
			groups[n-1].Winners = append(groups[n-1].Winners, w)
			continue
		}
		groups = append(groups, ProductGroup{Product: w.ProductName, Winners: []Winner{w}})
	}
	return groups
}
