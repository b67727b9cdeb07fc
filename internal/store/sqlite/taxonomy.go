package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mediavault/mediavault-server/internal/domain"
	"github.com/mediavault/mediavault-server/internal/id"
)

const termColumns = `id, term_type, group_code, facet, label, parent_code, description, sort_order, is_active`

func scanTerm(scanner interface{ Scan(dest ...any) error }) (*domain.VocabularyTerm, error) {
	var t domain.VocabularyTerm
	var isActive int

	err := scanner.Scan(
		&t.ID,
		&t.TermType,
		&t.GroupCode,
		&t.Facet,
		&t.Label,
		&t.ParentCode,
		&t.Description,
		&t.SortOrder,
		&isActive,
	)
	if err != nil {
		return nil, err
	}

	t.IsActive = isActive != 0
	return &t, nil
}

// ListVocabularyTerms returns all active vocabulary terms ordered by type,
// sort order, and label. The taxonomy engine loads these once per snapshot.
func (s *Store) ListVocabularyTerms(ctx context.Context) ([]*domain.VocabularyTerm, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+termColumns+` FROM taxonomy_terms WHERE is_active = 1
		 ORDER BY term_type, sort_order, label`)
	if err != nil {
		return nil, fmt.Errorf("query taxonomy_terms: %w", err)
	}
	defer rows.Close()

	var terms []*domain.VocabularyTerm
	for rows.Next() {
		t, err := scanTerm(rows)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if terms == nil {
		terms = []*domain.VocabularyTerm{}
	}
	return terms, nil
}

// ListSynonymRules returns all active synonym rules.
func (s *Store) ListSynonymRules(ctx context.Context) ([]*domain.SynonymRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, raw_term, canonical_term, group_hint, is_active, created_at
		FROM taxonomy_rules WHERE is_active = 1 ORDER BY raw_term`)
	if err != nil {
		return nil, fmt.Errorf("query taxonomy_rules: %w", err)
	}
	defer rows.Close()

	var rules []*domain.SynonymRule
	for rows.Next() {
		var r domain.SynonymRule
		var isActive int
		var createdAt string

		err := rows.Scan(&r.ID, &r.RawTerm, &r.Canonical, &r.GroupHint, &isActive, &createdAt)
		if err != nil {
			return nil, err
		}
		r.IsActive = isActive != 0
		r.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		rules = append(rules, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if rules == nil {
		rules = []*domain.SynonymRule{}
	}
	return rules, nil
}

// UpsertVocabularyTerm inserts or updates a vocabulary term keyed on
// (term_type, label). Used by the seeder.
func (s *Store) UpsertVocabularyTerm(ctx context.Context, term *domain.VocabularyTerm) error {
	if term.ID == "" {
		termID, err := id.Generate("term")
		if err != nil {
			return fmt.Errorf("generate term id: %w", err)
		}
		term.ID = termID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO taxonomy_terms (`+termColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(term_type, label) DO UPDATE SET
			group_code = excluded.group_code,
			facet = excluded.facet,
			parent_code = excluded.parent_code,
			description = excluded.description,
			sort_order = excluded.sort_order,
			is_active = excluded.is_active`,
		term.ID,
		string(term.TermType),
		term.GroupCode,
		term.Facet,
		term.Label,
		term.ParentCode,
		term.Description,
		term.SortOrder,
		boolToInt(term.IsActive),
	)
	return err
}

// UpsertSynonymRule inserts or updates a synonym rule keyed on raw_term.
func (s *Store) UpsertSynonymRule(ctx context.Context, rule *domain.SynonymRule) error {
	if rule.ID == "" {
		ruleID, err := id.Generate("rule")
		if err != nil {
			return fmt.Errorf("generate rule id: %w", err)
		}
		rule.ID = ruleID
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO taxonomy_rules (id, raw_term, canonical_term, group_hint, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(raw_term) DO UPDATE SET
			canonical_term = excluded.canonical_term,
			group_hint = excluded.group_hint,
			is_active = excluded.is_active`,
		rule.ID,
		rule.RawTerm,
		rule.Canonical,
		rule.GroupHint,
		boolToInt(rule.IsActive),
		formatTime(rule.CreatedAt),
	)
	return err
}

// CountVocabularyTerms returns the number of vocabulary terms, active or not.
// The seeder uses this to decide whether the built-in vocabulary needs loading.
func (s *Store) CountVocabularyTerms(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM taxonomy_terms`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count taxonomy_terms: %w", err)
	}
	return count, nil
}
