package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/store"
)

// assetColumns is the ordered list of columns selected in asset queries.
// Must match the scan order in scanAsset.
const assetColumns = `id, original_filename, file_extension, file_size, mime_type,
	sha256_hash, upload_source, ingested_at, group_classification, group_confidence,
	description, pipeline_status, preview_status, review_status, review_reason,
	reviewed_at, storage_disk, storage_path, preview_path, thumbnail_path, blur_hash,
	created_at, updated_at`

// scanAsset scans a sql.Row (or sql.Rows via its Scan method) into a domain.Asset.
func scanAsset(scanner interface{ Scan(dest ...any) error }) (*domain.Asset, error) {
	var a domain.Asset

	var (
		ingestedAt string
		reviewedAt string
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&a.ID,
		&a.OriginalFilename,
		&a.FileExtension,
		&a.FileSize,
		&a.MimeType,
		&a.SHA256Hash,
		&a.UploadSource,
		&ingestedAt,
		&a.GroupClassification,
		&a.GroupConfidence,
		&a.Description,
		&a.PipelineStatus,
		&a.PreviewStatus,
		&a.ReviewStatus,
		&a.ReviewReason,
		&reviewedAt,
		&a.StorageDisk,
		&a.StoragePath,
		&a.PreviewPath,
		&a.ThumbnailPath,
		&a.BlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.IngestedAt, err = parseTime(ingestedAt)
	if err != nil {
		return nil, err
	}
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	a.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if reviewedAt != "" {
		t, err := parseTime(reviewedAt)
		if err != nil {
			return nil, err
		}
		a.ReviewedAt = &t
	}

	return &a, nil
}

// CreateAsset inserts a new asset into the database.
// Returns store.ErrAlreadyExists on duplicate ID.
func (s *Store) CreateAsset(ctx context.Context, a *domain.Asset) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (`+assetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID,
		a.OriginalFilename,
		a.FileExtension,
		a.FileSize,
		a.MimeType,
		a.SHA256Hash,
		a.UploadSource,
		formatTime(a.IngestedAt),
		a.GroupClassification,
		a.GroupConfidence,
		a.Description,
		string(a.PipelineStatus),
		string(a.PreviewStatus),
		string(a.ReviewStatus),
		a.ReviewReason,
		formatOptionalTime(a.ReviewedAt),
		a.StorageDisk,
		a.StoragePath,
		a.PreviewPath,
		a.ThumbnailPath,
		a.BlurHash,
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetAsset retrieves an asset by its ID.
// Returns store.ErrNotFound if the asset does not exist.
func (s *Store) GetAsset(ctx context.Context, assetID string) (*domain.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = ?`, assetID)

	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetAssetBySHA256 retrieves the most recently ingested asset with the given
// content hash. Returns store.ErrNotFound if no asset matches.
func (s *Store) GetAssetBySHA256(ctx context.Context, hash string) (*domain.Asset, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE sha256_hash = ? ORDER BY ingested_at DESC LIMIT 1`, hash)

	a, err := scanAsset(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// UpdateAsset persists all mutable fields of an asset.
// Returns store.ErrNotFound if the asset does not exist.
func (s *Store) UpdateAsset(ctx context.Context, a *domain.Asset) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET
			original_filename = ?,
			file_extension = ?,
			file_size = ?,
			mime_type = ?,
			sha256_hash = ?,
			upload_source = ?,
			ingested_at = ?,
			group_classification = ?,
			group_confidence = ?,
			description = ?,
			pipeline_status = ?,
			preview_status = ?,
			review_status = ?,
			review_reason = ?,
			reviewed_at = ?,
			storage_disk = ?,
			storage_path = ?,
			preview_path = ?,
			thumbnail_path = ?,
			blur_hash = ?,
			updated_at = ?
		WHERE id = ?`,
		a.OriginalFilename,
		a.FileExtension,
		a.FileSize,
		a.MimeType,
		a.SHA256Hash,
		a.UploadSource,
		formatTime(a.IngestedAt),
		a.GroupClassification,
		a.GroupConfidence,
		a.Description,
		string(a.PipelineStatus),
		string(a.PreviewStatus),
		string(a.ReviewStatus),
		a.ReviewReason,
		formatOptionalTime(a.ReviewedAt),
		a.StorageDisk,
		a.StoragePath,
		a.PreviewPath,
		a.ThumbnailPath,
		a.BlurHash,
		formatTime(a.UpdatedAt),
		a.ID,
	)
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

// DeleteAsset removes an asset and (via cascade) its tags.
// Returns store.ErrNotFound if the asset does not exist.
func (s *Store) DeleteAsset(ctx context.Context, assetID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, assetID)
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

// ListAssets returns assets matching the filter, newest first, with cursor
// pagination keyed on (created_at, id).
func (s *Store) ListAssets(ctx context.Context, filter store.AssetFilter, params store.PaginationParams) (*store.PaginatedResult[*domain.Asset], error) {
	params.Validate()

	var (
		conds []string
		args  []any
	)

	if filter.PipelineStatus != "" {
		conds = append(conds, "pipeline_status = ?")
		args = append(args, string(filter.PipelineStatus))
	}
	if filter.ReviewStatus != "" {
		conds = append(conds, "review_status = ?")
		args = append(args, string(filter.ReviewStatus))
	}
	if filter.GroupCode != "" {
		conds = append(conds, "group_classification = ?")
		args = append(args, filter.GroupCode)
	}

	cursorKey, err := store.DecodeCursor(params.Cursor)
	if err != nil {
		return nil, store.ErrInvalidInput.WithCause(err)
	}
	if cursorKey != "" {
		// Cursor encodes "created_at|id" of the last item seen.
		parts := strings.SplitN(cursorKey, "|", 2)
		if len(parts) != 2 {
			return nil, store.ErrInvalidInput.WithMessage("malformed cursor")
		}
		conds = append(conds, "(created_at < ? OR (created_at = ? AND id < ?))")
		args = append(args, parts[0], parts[0], parts[1])
	}

	query := `SELECT ` + assetColumns + ` FROM assets`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, params.Limit+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := &store.PaginatedResult[*domain.Asset]{}
	if len(assets) > params.Limit {
		assets = assets[:params.Limit]
		last := assets[len(assets)-1]
		result.HasMore = true
		result.NextCursor = store.EncodeCursor(formatTime(last.CreatedAt) + "|" + last.ID)
	}
	if assets == nil {
		assets = []*domain.Asset{}
	}
	result.Items = assets

	return result, nil
}

// ListAssetsByStatus returns all assets in the given pipeline stage, oldest
// first. Used at startup to requeue work interrupted by a shutdown.
func (s *Store) ListAssetsByStatus(ctx context.Context, status domain.PipelineStatus) ([]*domain.Asset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE pipeline_status = ? ORDER BY created_at ASC`,
		string(status))
	if err != nil {
		return nil, fmt.Errorf("query assets by status: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if assets == nil {
		assets = []*domain.Asset{}
	}
	return assets, nil
}

// GetPipelineStatus returns just the pipeline status for an asset. This is the
// cheap read the pipeline performs at every stage boundary to honor
// cancellation requests.
func (s *Store) GetPipelineStatus(ctx context.Context, assetID string) (domain.PipelineStatus, error) {
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT pipeline_status FROM assets WHERE id = ?`, assetID).Scan(&status)
	if err == sql.ErrNoRows {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return domain.PipelineStatus(status), nil
}

// TransitionStatus moves an asset from one pipeline stage to the next with a
// compare-and-swap on the stored status. It enforces the forward-only state
// machine and returns store.ErrStaleStatus when the stored status no longer
// matches from (typically because a cancellation landed first).
func (s *Store) TransitionStatus(ctx context.Context, assetID string, from, to domain.PipelineStatus) error {
	if !from.CanTransition(to) {
		return store.ErrInvalidInput.WithMessage(
			fmt.Sprintf("illegal transition %s -> %s", from, to))
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET pipeline_status = ?, updated_at = ?
		WHERE id = ? AND pipeline_status = ?`,
		string(to), formatTime(nowUTC()), assetID, string(from))
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a missing asset from a concurrent status change.
		if _, err := s.GetPipelineStatus(ctx, assetID); err != nil {
			return err
		}
		return store.ErrStaleStatus
	}
	return nil
}

// RequestCancel marks an asset cancelled unless it already reached a terminal
// state. The pipeline honors the request at the next stage boundary; the file
// and any rows written by completed stages are kept.
func (s *Store) RequestCancel(ctx context.Context, assetID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE assets SET pipeline_status = ?, updated_at = ?
		WHERE id = ? AND pipeline_status NOT IN (?, ?, ?)`,
		string(domain.PipelineCancelled), formatTime(nowUTC()), assetID,
		string(domain.PipelineDone), string(domain.PipelineFailed), string(domain.PipelineCancelled))
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		status, err := s.GetPipelineStatus(ctx, assetID)
		if err != nil {
			return err
		}
		return store.ErrStaleStatus.WithMessage(
			fmt.Sprintf("asset already %s", status))
	}
	return nil
}
