package taxonomy

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.Store) {
	t.Helper()
	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), slogger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	log := logger.New(logger.Config{Writer: io.Discard, Format: "json"})
	return NewService(st, log), st
}

func TestServiceSeedAndReload(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)

	require.NoError(t, svc.Seed(ctx))

	snap := svc.Snapshot()
	assert.True(t, snap.IsControlledTerm("burger"))
	assert.True(t, snap.IsControlledTerm("SOP"))

	canonical, ok := snap.NormalizeSynonym("hamburger")
	require.True(t, ok)
	assert.Equal(t, "Burger", canonical)

	count, err := st.CountVocabularyTerms(ctx)
	require.NoError(t, err)
	assert.Greater(t, count, 0)

	// Seeding again must not duplicate anything.
	require.NoError(t, svc.Seed(ctx))
	again, err := st.CountVocabularyTerms(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, again)
}

func TestServiceReloadPicksUpNewTerms(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t)
	require.NoError(t, svc.Seed(ctx))

	before := svc.Snapshot()
	assert.False(t, before.IsControlledTerm("quokka portrait"))

	require.NoError(t, st.UpsertVocabularyTerm(ctx, &domain.VocabularyTerm{
		TermType:  domain.TermKeyword,
		GroupCode: "NATURE",
		Label:     "Quokka Portrait",
		IsActive:  true,
	}))
	require.NoError(t, svc.Reload(ctx))

	// The old snapshot pointer is unchanged; only the swapped-in one sees
	// the new term.
	assert.False(t, before.IsControlledTerm("quokka portrait"))
	assert.True(t, svc.Snapshot().IsControlledTerm("quokka portrait"))
}

func TestExpandSearchTerms(t *testing.T) {
	snap := testSnapshot(t)

	t.Run("synonym expands to canonical and siblings", func(t *testing.T) {
		terms := snap.ExpandSearchTerms("Hamburger")
		assert.Equal(t, "hamburger", terms[0])
		assert.Contains(t, terms, "burger")
		assert.Contains(t, terms, "cheeseburger")
	})

	t.Run("canonical expands to its raw synonyms", func(t *testing.T) {
		terms := snap.ExpandSearchTerms("burger")
		assert.Equal(t, "burger", terms[0])
		assert.Contains(t, terms, "hamburger")
		assert.Contains(t, terms, "cheeseburger")
	})

	t.Run("unknown term passes through alone", func(t *testing.T) {
		assert.Equal(t, []string{"xylophone"}, snap.ExpandSearchTerms("xylophone"))
	})

	t.Run("blank query expands to nothing", func(t *testing.T) {
		assert.Nil(t, snap.ExpandSearchTerms("  "))
	})
}

func TestPromptContext(t *testing.T) {
	snap := testSnapshot(t)

	visual := snap.PromptContext(false)
	assert.Contains(t, visual, "FOOD (")
	assert.Contains(t, visual, "Burger")
	assert.NotContains(t, visual, "SOP")

	doc := snap.PromptContext(true)
	assert.Contains(t, doc, "DOC-OPS (")
	assert.Contains(t, doc, "SOP")
	assert.NotContains(t, doc, "Burger")

	// One line per group, in the fixed group order.
	lines := strings.Split(visual, "\n")
	assert.Len(t, lines, len(VisualGroups))
	assert.True(t, strings.HasPrefix(lines[0], VisualGroups[0].Code))
}
