package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/store"
)

func TestReplaceAndGetAssetTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := makeTestAsset("asset-tag1", "food.jpg")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	tags := []*domain.Tag{
		{AssetID: "asset-tag1", Label: "Burger", Confidence: 0.95, AutoApproved: true},
		{AssetID: "asset-tag1", Label: "Fast Food", Confidence: 0.80, AutoApproved: true},
	}
	if err := s.ReplaceAssetTags(ctx, "asset-tag1", tags); err != nil {
		t.Fatalf("ReplaceAssetTags: %v", err)
	}

	got, err := s.GetAssetTags(ctx, "asset-tag1")
	if err != nil {
		t.Fatalf("GetAssetTags: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(got))
	}

	// Ordered by confidence descending; labels stored lowercase.
	if got[0].Label != "burger" {
		t.Errorf("first tag: got %q, want burger", got[0].Label)
	}
	if got[1].Label != "fast food" {
		t.Errorf("second tag: got %q, want fast food", got[1].Label)
	}
	if !got[0].AutoApproved {
		t.Error("AutoApproved should round-trip")
	}
	if got[0].ID == "" {
		t.Error("tags should be assigned IDs on insert")
	}
}

func TestReplaceAssetTagsOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := makeTestAsset("asset-tag2", "scene.png")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}

	first := []*domain.Tag{{AssetID: "asset-tag2", Label: "mountain", Confidence: 0.7}}
	if err := s.ReplaceAssetTags(ctx, "asset-tag2", first); err != nil {
		t.Fatalf("first replace: %v", err)
	}

	second := []*domain.Tag{
		{AssetID: "asset-tag2", Label: "lake", Confidence: 0.9},
		{AssetID: "asset-tag2", Label: "forest", Confidence: 0.6},
	}
	if err := s.ReplaceAssetTags(ctx, "asset-tag2", second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := s.GetAssetTags(ctx, "asset-tag2")
	if err != nil {
		t.Fatalf("GetAssetTags: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tags after overwrite, got %d", len(got))
	}
	for _, tag := range got {
		if tag.Label == "mountain" {
			t.Error("old tag should have been replaced")
		}
	}
}

func TestReplaceAssetTagsEmptyClears(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := makeTestAsset("asset-tag3", "z.bmp")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	tags := []*domain.Tag{{AssetID: "asset-tag3", Label: "temp", Confidence: 0.5}}
	if err := s.ReplaceAssetTags(ctx, "asset-tag3", tags); err != nil {
		t.Fatalf("ReplaceAssetTags: %v", err)
	}

	if err := s.ReplaceAssetTags(ctx, "asset-tag3", nil); err != nil {
		t.Fatalf("clear tags: %v", err)
	}

	got, err := s.GetAssetTags(ctx, "asset-tag3")
	if err != nil {
		t.Fatalf("GetAssetTags: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no tags, got %d", len(got))
	}
}

func TestDeleteAssetTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	asset := makeTestAsset("asset-tag4", "w.gif")
	if err := s.CreateAsset(ctx, asset); err != nil {
		t.Fatalf("CreateAsset: %v", err)
	}
	tags := []*domain.Tag{{AssetID: "asset-tag4", Label: "remove me", Confidence: 0.4}}
	if err := s.ReplaceAssetTags(ctx, "asset-tag4", tags); err != nil {
		t.Fatalf("ReplaceAssetTags: %v", err)
	}

	stored, err := s.GetAssetTags(ctx, "asset-tag4")
	if err != nil {
		t.Fatalf("GetAssetTags: %v", err)
	}

	if err := s.DeleteAssetTag(ctx, "asset-tag4", stored[0].ID); err != nil {
		t.Fatalf("DeleteAssetTag: %v", err)
	}

	err = s.DeleteAssetTag(ctx, "asset-tag4", stored[0].ID)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
