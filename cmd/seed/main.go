// Package main provides a tool to seed the database with demo assets.
//
// It creates fully processed assets with tags across the taxonomy groups so
// the search, review, and activity endpoints have data to serve. The search
// index is rebuilt by the server on next start when it notices the new rows.
//
// Usage:
//
//	MEDIAVAULT_PATH=~/mediavault go run ./cmd/seed
//	MEDIAVAULT_PATH=~/mediavault go run ./cmd/seed --count 100
package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/id"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store/sqlite"
	"github.com/mediavault/mediavault-server/internal/taxonomy"
)

var count = flag.Int("count", 25, "Number of demo assets to create")

type demoSpec struct {
	group     string
	labels    []string
	filenames []string
}

var demoSpecs = []demoSpec{
	{"FOOD", []string{"Burger", "Fries", "Restaurant", "Coffee"}, []string{"burger-closeup.jpg", "diner-interior.png", "latte-art.jpg"}},
	{"NATURE", []string{"Mountain", "Forest", "River", "Sunset"}, []string{"alpine-ridge.jpg", "old-growth.png", "valley-dusk.jpg"}},
	{"GEO", []string{"Skyline", "Landmark", "Downtown"}, []string{"chicago-skyline.jpg", "route-66-sign.png"}},
	{"LIFE", []string{"Family", "Travel", "Picnic"}, []string{"beach-day.jpg", "road-trip.png"}},
	{"GENBUS", []string{"Meeting", "Office", "Warehouse"}, []string{"standup-meeting.jpg", "forklift-bay.png"}},
	{"MEDIA", []string{"Podcast", "Broadcast", "Studio"}, []string{"control-room.jpg", "mic-setup.png"}},
	{"SPEC", []string{"Abstract", "Pattern", "Infographic"}, []string{"hex-grid.png", "q3-growth-chart.png"}},
}

func main() {
	flag.Parse()

	basePath := os.Getenv("MEDIAVAULT_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/mediavault")
	}
	dbPath := filepath.Join(basePath, "mediavault.db")

	fmt.Printf("Opening database at: %s\n", dbPath)

	st, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	// Make sure the controlled vocabulary exists before tagging against it.
	tax := taxonomy.NewService(st, logger.New(logger.Config{Writer: os.Stderr, Level: slog.LevelWarn}))
	if err := tax.Seed(ctx); err != nil {
		log.Fatalf("Failed to seed taxonomy: %v", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	created := 0
	for i := 0; i < *count; i++ {
		spec := demoSpecs[rng.Intn(len(demoSpecs))]
		filename := spec.filenames[rng.Intn(len(spec.filenames))]
		asset := buildAsset(rng, spec, filename, i)

		if err := st.CreateAsset(ctx, asset); err != nil {
			log.Printf("Failed to create asset %s: %v", asset.ID, err)
			continue
		}

		tags := buildTags(rng, asset, spec)
		if err := st.ReplaceAssetTags(ctx, asset.ID, tags); err != nil {
			log.Printf("Failed to tag asset %s: %v", asset.ID, err)
			continue
		}

		err := st.CreateActivity(ctx, &domain.Activity{
			AssetID: asset.ID,
			Type:    domain.ActivityUploaded,
			Message: fmt.Sprintf("Uploaded: %s", asset.OriginalFilename),
		})
		if err != nil {
			log.Printf("Failed to record activity for %s: %v", asset.ID, err)
		}

		created++
	}

	fmt.Printf("\nCreated %d demo assets across %d groups.\n", created, len(demoSpecs))
	fmt.Println("Restart the server to rebuild the search index.")
}

func buildAsset(rng *rand.Rand, spec demoSpec, filename string, n int) *domain.Asset {
	now := time.Now().UTC().Add(-time.Duration(rng.Intn(72)) * time.Hour)
	ext := domain.ExtensionOf(filename)

	mime := "image/jpeg"
	if ext == "png" {
		mime = "image/png"
	}

	asset := &domain.Asset{
		ID:                  id.MustGenerate("asset"),
		OriginalFilename:    filename,
		FileExtension:       ext,
		FileSize:            int64(rng.Intn(4_000_000) + 50_000),
		MimeType:            mime,
		SHA256Hash:          fmt.Sprintf("%x", sha256.Sum256(fmt.Appendf(nil, "seed-%s-%d", filename, n))),
		UploadSource:        "seed",
		IngestedAt:          now,
		GroupClassification: spec.group,
		GroupConfidence:     0.80 + rng.Float64()*0.19,
		PipelineStatus:      domain.PipelineDone,
		PreviewStatus:       domain.PreviewDone,
		ReviewStatus:        domain.ReviewNone,
		StorageDisk:         string(domain.DiskAssets),
		StoragePath:         filepath.Join(spec.group, filename),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	// Roughly a fifth of the seeded assets land in the review queue.
	if rng.Intn(5) == 0 {
		asset.ReviewStatus = domain.ReviewPending
		asset.ReviewReason = "Low classification confidence"
		asset.GroupConfidence = 0.60 + rng.Float64()*0.15
	}

	return asset
}

func buildTags(rng *rand.Rand, asset *domain.Asset, spec demoSpec) []*domain.Tag {
	n := 2 + rng.Intn(len(spec.labels)-1)
	if n > len(spec.labels) {
		n = len(spec.labels)
	}

	tags := make([]*domain.Tag, 0, n)
	for _, label := range spec.labels[:n] {
		tags = append(tags, &domain.Tag{
			AssetID:      asset.ID,
			Label:        label,
			Confidence:   0.75 + rng.Float64()*0.24,
			AutoApproved: asset.ReviewStatus == domain.ReviewNone,
		})
	}
	return tags
}
