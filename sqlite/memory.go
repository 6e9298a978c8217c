package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fwojciec/harvest"
)

// Compile-time interface verification.
var _ harvest.SelectorMemory = (*MemoryService)(nil)

// MemoryService implements harvest.SelectorMemory using SQLite. One
// descriptor is kept per site key; remembering again replaces it.
type MemoryService struct {
	db *DB
}

// NewMemoryService creates a new MemoryService.
func NewMemoryService(db *DB) *MemoryService {
	return &MemoryService{db: db}
}

// Remember stores or replaces the descriptor for its site key.
func (s *MemoryService) Remember(ctx context.Context, d *harvest.ContainerDescriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO selectors (id, site_key, signature, depth, score, support, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(site_key) DO UPDATE SET
			signature = excluded.signature,
			depth = excluded.depth,
			score = excluded.score,
			support = excluded.support,
			updated_at = excluded.updated_at
	`, d.ID, d.SiteKey, d.Signature, d.Depth, d.Score, d.Support,
		d.UpdatedAt.Format(time.RFC3339))

	return err
}

// Recall retrieves the descriptor for a site key.
func (s *MemoryService) Recall(ctx context.Context, siteKey string) (*harvest.ContainerDescriptor, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, site_key, signature, depth, score, support, updated_at
		FROM selectors
		WHERE site_key = ?
	`, siteKey)

	d, err := scanDescriptor(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, harvest.Errorf(harvest.ENOTFOUND, "no descriptor for site %q", siteKey)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Forget removes the descriptor for a site key.
func (s *MemoryService) Forget(ctx context.Context, siteKey string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM selectors WHERE site_key = ?`, siteKey)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return harvest.Errorf(harvest.ENOTFOUND, "no descriptor for site %q", siteKey)
	}
	return nil
}

// List retrieves all stored descriptors ordered by site key.
func (s *MemoryService) List(ctx context.Context) ([]*harvest.ContainerDescriptor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, site_key, signature, depth, score, support, updated_at
		FROM selectors
		ORDER BY site_key ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var descriptors []*harvest.ContainerDescriptor
	for rows.Next() {
		d, err := scanDescriptor(rows.Scan)
		if err != nil {
			return nil, err
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, rows.Err()
}

func scanDescriptor(scan func(dest ...any) error) (*harvest.ContainerDescriptor, error) {
	var d harvest.ContainerDescriptor
	var updatedAt string

	if err := scan(&d.ID, &d.SiteKey, &d.Signature, &d.Depth, &d.Score, &d.Support, &updatedAt); err != nil {
		return nil, err
	}

	parsed, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	d.UpdatedAt = parsed
	return &d, nil
}
