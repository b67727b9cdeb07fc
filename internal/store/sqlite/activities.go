package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/id"
)

// CreateActivity appends an audit record for an asset. Activities are
// append-only; there is no update or delete path.
func (s *Store) CreateActivity(ctx context.Context, act *domain.Activity) error {
	if act.ID == "" {
		actID, err := id.Generate("act")
		if err != nil {
			return fmt.Errorf("generate activity id: %w", err)
		}
		act.ID = actID
	}
	if act.CreatedAt.IsZero() {
		act.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities (id, asset_id, type, message, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		act.ID,
		act.AssetID,
		string(act.Type),
		act.Message,
		act.Detail,
		formatTime(act.CreatedAt),
	)
	return err
}

// ListAssetActivities returns the newest activities for one asset.
func (s *Store) ListAssetActivities(ctx context.Context, assetID string, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryActivities(ctx, `
		SELECT id, asset_id, type, message, detail, created_at
		FROM activities WHERE asset_id = ?
		ORDER BY created_at DESC LIMIT ?`, assetID, limit)
}

// ListRecentActivities returns the newest activities across all assets.
func (s *Store) ListRecentActivities(ctx context.Context, limit int) ([]*domain.Activity, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.queryActivities(ctx, `
		SELECT id, asset_id, type, message, detail, created_at
		FROM activities ORDER BY created_at DESC LIMIT ?`, limit)
}

func (s *Store) queryActivities(ctx context.Context, query string, args ...any) ([]*domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var acts []*domain.Activity
	for rows.Next() {
		var a domain.Activity
		var createdAt string

		err := rows.Scan(&a.ID, &a.AssetID, &a.Type, &a.Message, &a.Detail, &createdAt)
		if err != nil {
			return nil, err
		}
		a.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		acts = append(acts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if acts == nil {
		acts = []*domain.Activity{}
	}
	return acts, nil
}
