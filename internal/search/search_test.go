package search

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault-server/internal/domain"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) (*Index, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "search-test-*")
	require.NoError(t, err)

	index, err := NewIndex(Options{
		DataPath: tmpDir,
		Logger:   nil,
	})
	require.NoError(t, err)

	cleanup := func() {
		_ = index.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return index, cleanup
}

func TestNewIndex(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_IndexDocument(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &AssetDocument{
		ID:    "asset-123",
		Name:  "summer-campaign.jpg",
		Group: "FOOD",
		Tags:  []string{"burger", "restaurant"},
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestIndex_IndexDocuments_Batch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "one.jpg"},
		{ID: "asset-2", Name: "two.jpg"},
		{ID: "asset-3", Name: "three.jpg"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)
}

func TestIndex_Delete(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &AssetDocument{
		ID:   "asset-123",
		Name: "deleted-later.jpg",
	}

	err := index.IndexDocument(doc)
	require.NoError(t, err)

	err = index.Delete("asset-123")
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Search_Basic(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "store-opening-chicago.jpg", Group: "GEO"},
		{ID: "asset-2", Name: "chicago-skyline.png", Group: "GEO"},
		{ID: "asset-3", Name: "menu-board.pdf", Group: "DOC-OPS"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		Query: "chicago",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
	assert.Len(t, result.Hits, 2)
}

func TestIndex_Search_TagMatch(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "dsc-0001.jpg", Tags: []string{"burger", "restaurant"}},
		{ID: "asset-2", Name: "dsc-0002.jpg", Tags: []string{"salad"}},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	// Tag terms match even when the filename tells you nothing.
	result, err := index.Search(ctx, Params{
		Query: "burger",
		Limit: 10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "asset-1", result.Hits[0].ID)
}

func TestIndex_Search_ExpandedTerms(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "dsc-0001.jpg", Tags: []string{"burger"}},
		{ID: "asset-2", Name: "dsc-0002.jpg", Tags: []string{"coffee"}},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	// "hamburger" appears nowhere in the index; the taxonomy expansion to
	// its canonical term still finds the asset.
	result, err := index.Search(ctx, Params{
		Query:         "hamburger",
		ExpandedTerms: []string{"burger"},
		Limit:         10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "asset-1", result.Hits[0].ID)
}

func TestIndex_Search_GroupFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "lunch.jpg", Group: "FOOD"},
		{ID: "asset-2", Name: "forest.jpg", Group: "NATURE"},
		{ID: "asset-3", Name: "policy.pdf", Group: "DOC-LEGAL"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		Groups: []string{"FOOD", "NATURE"},
		Limit:  10,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Total)
}

func TestIndex_Search_ReviewStatusFilter(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "a.jpg", ReviewStatus: "pending"},
		{ID: "asset-2", Name: "b.jpg", ReviewStatus: "approved"},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		ReviewStatus: "pending",
		Limit:        10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "asset-1", result.Hits[0].ID)
}

func TestIndex_Search_SizeRange(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "small.jpg", FileSize: 1024},
		{ID: "asset-2", Name: "medium.jpg", FileSize: 5 << 20},
		{ID: "asset-3", Name: "large.mp4", FileSize: 500 << 20},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		MinSize: 1 << 20,
		MaxSize: 100 << 20,
		Limit:   10,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "asset-2", result.Hits[0].ID)
}

func TestIndex_Search_Facets(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	docs := []*AssetDocument{
		{ID: "asset-1", Name: "a.jpg", Group: "FOOD", Tags: []string{"burger"}},
		{ID: "asset-2", Name: "b.jpg", Group: "FOOD", Tags: []string{"salad"}},
		{ID: "asset-3", Name: "c.jpg", Group: "NATURE", Tags: []string{"mountain"}},
	}

	err := index.IndexDocuments(docs)
	require.NoError(t, err)

	ctx := context.Background()

	result, err := index.Search(ctx, Params{
		IncludeFacets: true,
		FacetFields:   []string{"group", "tags"},
		Limit:         10,
	})
	require.NoError(t, err)

	require.NotEmpty(t, result.Facets.Groups)
	counts := make(map[string]int)
	for _, fc := range result.Facets.Groups {
		counts[fc.Value] = fc.Count
	}
	assert.Equal(t, 2, counts["FOOD"])
	assert.Equal(t, 1, counts["NATURE"])
}

func TestIndex_Rebuild(t *testing.T) {
	index, cleanup := setupTestIndex(t)
	defer cleanup()

	doc := &AssetDocument{ID: "asset-1", Name: "gone-after-rebuild.jpg"}
	err := index.IndexDocument(doc)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	err = index.Rebuild()
	require.NoError(t, err)

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestIndex_Persistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "search-persist-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	index1, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)

	doc := &AssetDocument{ID: "asset-1", Name: "persistent.jpg"}
	err = index1.IndexDocument(doc)
	require.NoError(t, err)

	err = index1.Close()
	require.NoError(t, err)

	// Reopen and verify the document survived
	index2, err := NewIndex(Options{DataPath: tmpDir})
	require.NoError(t, err)
	defer index2.Close()

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ctx := context.Background()
	result, err := index2.Search(ctx, Params{Query: "persistent", Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestAssetToDocument(t *testing.T) {
	now := time.Now().UTC()
	asset := &domain.Asset{
		ID:                  "asset-123",
		OriginalFilename:    "summer-campaign.jpg",
		FileExtension:       "jpg",
		FileSize:            2048,
		MimeType:            "image/jpeg",
		GroupClassification: "FOOD",
		Description:         "A burger on a wooden table",
		ReviewStatus:        domain.ReviewPending,
		PreviewStatus:       domain.PreviewDone,
		IngestedAt:          now,
		UpdatedAt:           now,
	}
	tags := []*domain.Tag{
		{Label: "Burger", Facet: "Dishes", Confidence: 0.9},
		{Label: "burger", Facet: "Dishes", Confidence: 0.8}, // dup after normalization
		{Label: "restaurant", Facet: "Foodservice", Confidence: 0.7},
	}

	doc := AssetToDocument(asset, tags)

	assert.Equal(t, "asset-123", doc.ID)
	assert.Equal(t, "summer-campaign.jpg", doc.Name)
	assert.Equal(t, "FOOD", doc.Group)
	assert.Equal(t, []string{"burger", "restaurant"}, doc.Tags)
	assert.Equal(t, []string{"Dishes", "Foodservice"}, doc.Facets)
	assert.Equal(t, "pending", doc.ReviewStatus)
	assert.Equal(t, now.UnixMilli(), doc.IngestedAt)
}

func TestIndex_LargeBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large batch test in short mode")
	}

	index, cleanup := setupTestIndex(t)
	defer cleanup()

	// 1000 documents exercises the chunking path (batch size is 500)
	docs := make([]*AssetDocument, 1000)
	for i := 0; i < 1000; i++ {
		docs[i] = &AssetDocument{
			ID:   fmt.Sprintf("asset-%04d", i),
			Name: fmt.Sprintf("shoot-%04d.jpg", i),
		}
	}

	start := time.Now()
	err := index.IndexDocuments(docs)
	require.NoError(t, err)
	t.Logf("Indexed 1000 documents in %v", time.Since(start))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), count)
}
