// Package main provides a read-only inspection tool for the asset database.
//
// Usage:
//
//	MEDIAVAULT_PATH=~/mediavault go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/mediavault/mediavault-server/internal/store"
	"github.com/mediavault/mediavault-server/internal/store/sqlite"
)

func main() {
	basePath := os.Getenv("MEDIAVAULT_PATH")
	if basePath == "" {
		basePath = os.ExpandEnv("$HOME/mediavault")
	}
	dbPath := filepath.Join(basePath, "mediavault.db")

	st, err := sqlite.Open(dbPath, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer st.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	byPipeline := map[string]int{}
	byReview := map[string]int{}
	byGroup := map[string]int{}
	total := 0
	tagged := 0

	cursor := ""
	for {
		page, err := st.ListAssets(ctx, store.AssetFilter{}, store.PaginationParams{Limit: 500, Cursor: cursor})
		if err != nil {
			log.Fatalf("Failed to list assets: %v", err)
		}

		for _, a := range page.Items {
			total++
			byPipeline[string(a.PipelineStatus)]++
			byReview[string(a.ReviewStatus)]++
			if a.GroupClassification != "" {
				byGroup[a.GroupClassification]++
			}

			tags, err := st.GetAssetTags(ctx, a.ID)
			if err == nil && len(tags) > 0 {
				tagged++
			}
		}

		if !page.HasMore {
			break
		}
		cursor = page.NextCursor
	}

	fmt.Printf("Assets: %d total, %d with tags\n\n", total, tagged)
	printCounts("Pipeline status", byPipeline)
	printCounts("Review status", byReview)
	printCounts("Group", byGroup)

	terms, err := st.CountVocabularyTerms(ctx)
	if err == nil {
		fmt.Printf("Vocabulary terms: %d\n\n", terms)
	}

	activities, err := st.ListRecentActivities(ctx, 10)
	if err == nil && len(activities) > 0 {
		fmt.Println("Recent activity:")
		for _, act := range activities {
			fmt.Printf("  %s  %-20s %s\n", act.CreatedAt.Format("2006-01-02 15:04:05"), act.Type, act.Message)
		}
	}
}

func printCounts(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-14s %d\n", k, counts[k])
	}
	fmt.Println()
}
