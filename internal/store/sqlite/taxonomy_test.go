package sqlite

import (
	"context"
	"testing"

	"github.com/mediavault/mediavault-server/internal/domain"
)

func TestUpsertAndListVocabularyTerms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	terms := []*domain.VocabularyTerm{
		{TermType: domain.TermPrimaryGroup, GroupCode: "FOOD", Label: "Food & Beverage", SortOrder: 1, IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "FOOD", Facet: "subject", Label: "Burger", IsActive: true},
		{TermType: domain.TermKeyword, GroupCode: "FOOD", Facet: "subject", Label: "Retired", IsActive: false},
	}
	for _, term := range terms {
		if err := s.UpsertVocabularyTerm(ctx, term); err != nil {
			t.Fatalf("UpsertVocabularyTerm %q: %v", term.Label, err)
		}
		if term.ID == "" {
			t.Errorf("term %q should get an ID", term.Label)
		}
	}

	got, err := s.ListVocabularyTerms(ctx)
	if err != nil {
		t.Fatalf("ListVocabularyTerms: %v", err)
	}
	// Inactive terms are excluded.
	if len(got) != 2 {
		t.Fatalf("expected 2 active terms, got %d", len(got))
	}

	count, err := s.CountVocabularyTerms(ctx)
	if err != nil {
		t.Fatalf("CountVocabularyTerms: %v", err)
	}
	if count != 3 {
		t.Errorf("count includes inactive terms: got %d, want 3", count)
	}
}

func TestUpsertVocabularyTermUpdatesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	term := &domain.VocabularyTerm{
		TermType: domain.TermKeyword, GroupCode: "NATURE", Facet: "subject",
		Label: "Mountain", IsActive: true,
	}
	if err := s.UpsertVocabularyTerm(ctx, term); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Same (type, label) with new group updates rather than duplicating.
	updated := &domain.VocabularyTerm{
		TermType: domain.TermKeyword, GroupCode: "GEO", Facet: "subject",
		Label: "Mountain", IsActive: true,
	}
	if err := s.UpsertVocabularyTerm(ctx, updated); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.ListVocabularyTerms(ctx)
	if err != nil {
		t.Fatalf("ListVocabularyTerms: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 term, got %d", len(got))
	}
	if got[0].GroupCode != "GEO" {
		t.Errorf("GroupCode: got %q, want GEO", got[0].GroupCode)
	}
}

func TestUpsertAndListSynonymRules(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rules := []*domain.SynonymRule{
		{RawTerm: "hamburger", Canonical: "burger", GroupHint: "FOOD", IsActive: true},
		{RawTerm: "cheeseburger", Canonical: "burger", IsActive: true},
		{RawTerm: "obsolete", Canonical: "gone", IsActive: false},
	}
	for _, r := range rules {
		if err := s.UpsertSynonymRule(ctx, r); err != nil {
			t.Fatalf("UpsertSynonymRule %q: %v", r.RawTerm, err)
		}
	}

	got, err := s.ListSynonymRules(ctx)
	if err != nil {
		t.Fatalf("ListSynonymRules: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 active rules, got %d", len(got))
	}
	if got[0].RawTerm != "cheeseburger" {
		t.Errorf("rules should be ordered by raw term, got %q first", got[0].RawTerm)
	}

	// Upserting the same raw term rewrites the mapping.
	if err := s.UpsertSynonymRule(ctx, &domain.SynonymRule{
		RawTerm: "hamburger", Canonical: "sandwich", IsActive: true,
	}); err != nil {
		t.Fatalf("re-upsert: %v", err)
	}

	got, err = s.ListSynonymRules(ctx)
	if err != nil {
		t.Fatalf("ListSynonymRules: %v", err)
	}
	for _, r := range got {
		if r.RawTerm == "hamburger" && r.Canonical != "sandwich" {
			t.Errorf("canonical not updated: got %q", r.Canonical)
		}
	}
}
