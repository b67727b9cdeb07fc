package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/id"
	"github.com/mediavault/mediavault-server/internal/store"
)

// tagColumns is the ordered list of columns selected in tag queries.
// Must match the scan order in scanTag.
const tagColumns = `id, asset_id, label, facet, confidence, auto_approved, is_manual, created_at, updated_at`

// scanTag scans a sql.Row (or sql.Rows via its Scan method) into a domain.Tag.
func scanTag(scanner interface{ Scan(dest ...any) error }) (*domain.Tag, error) {
	var t domain.Tag

	var (
		autoApproved int
		isManual     int
		createdAt    string
		updatedAt    string
	)

	err := scanner.Scan(
		&t.ID,
		&t.AssetID,
		&t.Label,
		&t.Facet,
		&t.Confidence,
		&autoApproved,
		&isManual,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.AutoApproved = autoApproved != 0
	t.IsManual = isManual != 0

	t.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	t.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

// ReplaceAssetTags replaces all tags for an asset in a single transaction.
// Tags without an ID are assigned one. The incoming set is stored as-is; the
// taxonomy engine is responsible for normalization and dedup before this call.
func (s *Store) ReplaceAssetTags(ctx context.Context, assetID string, tags []*domain.Tag) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM asset_tags WHERE asset_id = ?`, assetID); err != nil {
		return fmt.Errorf("delete asset_tags: %w", err)
	}

	now := time.Now().UTC()
	for _, t := range tags {
		if t.ID == "" {
			tagID, err := id.Generate("tag")
			if err != nil {
				return fmt.Errorf("generate tag id: %w", err)
			}
			t.ID = tagID
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		t.UpdatedAt = now

		_, err := tx.ExecContext(ctx, `
			INSERT INTO asset_tags (`+tagColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID,
			assetID,
			t.NormalizedLabel(),
			t.Facet,
			t.Confidence,
			boolToInt(t.AutoApproved),
			boolToInt(t.IsManual),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert asset_tag %q: %w", t.Label, err)
		}
	}

	return tx.Commit()
}

// GetAssetTags returns all tags for an asset ordered by confidence, highest first.
func (s *Store) GetAssetTags(ctx context.Context, assetID string) ([]*domain.Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM asset_tags WHERE asset_id = ? ORDER BY confidence DESC, label ASC`,
		assetID)
	if err != nil {
		return nil, fmt.Errorf("query asset_tags: %w", err)
	}
	defer rows.Close()

	var tags []*domain.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if tags == nil {
		tags = []*domain.Tag{}
	}
	return tags, nil
}

// DeleteAssetTag removes a single tag from an asset.
// Returns store.ErrNotFound if the tag does not exist on that asset.
func (s *Store) DeleteAssetTag(ctx context.Context, assetID, tagID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM asset_tags WHERE id = ? AND asset_id = ?`, tagID, assetID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
