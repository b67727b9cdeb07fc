package taxonomy

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/logger"
	"github.com/mediavault/mediavault-server/internal/store"
)

// synonymEntry is one normalization rule inside a snapshot.
type synonymEntry struct {
	canonical string
	groupHint string
}

// Snapshot is an immutable view of the controlled vocabulary and synonym
// rules. It is rebuilt wholesale on reload and shared read-only across
// goroutines; never mutate a snapshot after construction.
type Snapshot struct {
	// labels holds every active term label, lowercased, for membership checks.
	labels map[string]bool

	// keywords are the taggable terms used for fuzzy matching.
	keywords []*domain.VocabularyTerm

	synonyms map[string]synonymEntry
	reverse  map[string][]string

	visualPrompt string
	docPrompt    string

	loadedAt time.Time
}

// LoadedAt returns when this snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// IsControlledTerm reports whether label exists in the active vocabulary.
func (s *Snapshot) IsControlledTerm(label string) bool {
	return s.labels[strings.ToLower(strings.TrimSpace(label))]
}

// NormalizeSynonym maps a raw term to its canonical controlled term.
// Returns the canonical label and true when a rule matches.
func (s *Snapshot) NormalizeSynonym(raw string) (string, bool) {
	entry, ok := s.synonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", false
	}
	return entry.canonical, true
}

// GroupHint returns the group-vote hint attached to a raw or canonical term's
// synonym rule, if any.
func (s *Snapshot) GroupHint(term string) (string, bool) {
	entry, ok := s.synonyms[strings.ToLower(strings.TrimSpace(term))]
	if !ok || entry.groupHint == "" {
		return "", false
	}
	return entry.groupHint, true
}

// ExpandSearchTerms expands a search query using the synonym rules.
// The result always starts with the query itself (lowercased); when the query
// is a known synonym its canonical term and sibling synonyms are appended,
// and when it is a canonical term all raw synonyms mapping to it are appended.
func (s *Snapshot) ExpandSearchTerms(query string) []string {
	lower := strings.ToLower(strings.TrimSpace(query))
	if lower == "" {
		return nil
	}

	terms := []string{lower}
	seen := map[string]bool{lower: true}
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	if entry, ok := s.synonyms[lower]; ok {
		canonical := strings.ToLower(entry.canonical)
		add(canonical)
		for _, sibling := range s.reverse[canonical] {
			add(sibling)
		}
	}

	for _, raw := range s.reverse[lower] {
		add(raw)
	}

	return terms
}

// PromptContext returns the serialized vocabulary for the AI system prompt,
// visual or document flavor. Built once at snapshot load.
func (s *Snapshot) PromptContext(isDocument bool) string {
	if isDocument {
		return s.docPrompt
	}
	return s.visualPrompt
}

// Service owns the current vocabulary snapshot. Reload builds a fresh
// snapshot from the store and swaps it in atomically; readers always see a
// complete snapshot, never a partially updated one.
type Service struct {
	store store.Store
	log   *logger.Logger
	snap  atomic.Pointer[Snapshot]
}

// NewService creates a taxonomy service. Call Reload before first use.
func NewService(st store.Store, log *logger.Logger) *Service {
	svc := &Service{store: st, log: log.WithComponent("taxonomy")}
	svc.snap.Store(emptySnapshot())
	return svc
}

// Snapshot returns the current vocabulary snapshot.
func (s *Service) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Reload rebuilds the snapshot from the store and swaps it in.
func (s *Service) Reload(ctx context.Context) error {
	terms, err := s.store.ListVocabularyTerms(ctx)
	if err != nil {
		return fmt.Errorf("load vocabulary terms: %w", err)
	}
	rules, err := s.store.ListSynonymRules(ctx)
	if err != nil {
		return fmt.Errorf("load synonym rules: %w", err)
	}

	snap := buildSnapshot(terms, rules)
	s.snap.Store(snap)

	s.log.Info("taxonomy snapshot reloaded",
		"terms", len(terms),
		"rules", len(rules))
	return nil
}

// Seed loads the built-in vocabulary and synonym rules into the store when
// the taxonomy tables are empty, then reloads the snapshot.
func (s *Service) Seed(ctx context.Context) error {
	count, err := s.store.CountVocabularyTerms(ctx)
	if err != nil {
		return fmt.Errorf("count vocabulary terms: %w", err)
	}

	if count == 0 {
		seeded, err := seedDefaults(ctx, s.store)
		if err != nil {
			return fmt.Errorf("seed vocabulary: %w", err)
		}
		s.log.Info("seeded built-in vocabulary", "terms", seeded)
	}

	return s.Reload(ctx)
}

func emptySnapshot() *Snapshot {
	return buildSnapshot(nil, nil)
}

func buildSnapshot(terms []*domain.VocabularyTerm, rules []*domain.SynonymRule) *Snapshot {
	snap := &Snapshot{
		labels:   make(map[string]bool, len(terms)),
		synonyms: make(map[string]synonymEntry, len(rules)),
		reverse:  make(map[string][]string),
		loadedAt: time.Now(),
	}

	for _, term := range terms {
		snap.labels[term.NormalizedLabel()] = true
		switch term.TermType {
		case domain.TermKeyword, domain.TermDocKeyword:
			snap.keywords = append(snap.keywords, term)
		}
	}

	for _, rule := range rules {
		raw := strings.ToLower(strings.TrimSpace(rule.RawTerm))
		canonical := strings.ToLower(strings.TrimSpace(rule.Canonical))
		if raw == "" || canonical == "" {
			continue
		}
		snap.synonyms[raw] = synonymEntry{canonical: rule.Canonical, groupHint: rule.GroupHint}
		snap.reverse[canonical] = append(snap.reverse[canonical], raw)

		// Self-entry for the canonical term so normalized tags still carry
		// the group hint into the vote.
		if _, ok := snap.synonyms[canonical]; !ok {
			snap.synonyms[canonical] = synonymEntry{canonical: rule.Canonical, groupHint: rule.GroupHint}
		}
	}

	snap.visualPrompt = buildPromptContext(terms, false)
	snap.docPrompt = buildPromptContext(terms, true)

	return snap
}
