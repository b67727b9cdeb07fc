package taxonomy

import (
	"fmt"
	"sort"
	"strings"
)

// Fuzzy-match acceptance thresholds. The classification path is more lenient
// because raw model output has not been through synonym normalization yet;
// the audit pass only corrects what survived it.
const (
	FuzzyAcceptClassify = 0.80
	FuzzyAcceptAudit    = 0.85
)

const (
	// unknownReviewCount is the number of uncontrolled terms that routes an
	// asset to manual review.
	unknownReviewCount = 3
	// unknownReviewNames caps how many uncontrolled terms the review reason names.
	unknownReviewNames = 5

	// groupKeepConfidence keeps the assigned group without voting.
	groupKeepConfidence = 0.80
	// groupVoteShare is the minimum share of votes the winning group needs.
	groupVoteShare = 0.50
	// groupOverwriteBelow allows the vote winner to replace an existing group.
	groupOverwriteBelow = 0.60
	// fallbackGroupConfidence is assigned with the category default group.
	fallbackGroupConfidence = 0.20
)

// RawTag is one tag entering normalization.
type RawTag struct {
	Label      string
	Facet      string
	Confidence float64 // 0.0 - 1.0
}

// Input is a classification result entering normalization.
type Input struct {
	Group           string
	GroupConfidence float64
	Tags            []RawTag
	IsDocument      bool
}

// Options tune a normalization run.
type Options struct {
	// FuzzyThreshold is the minimum fuzzy-match score that auto-corrects an
	// uncontrolled term (FuzzyAcceptClassify or FuzzyAcceptAudit).
	FuzzyThreshold float64
	// AutoApproveConfidence is the minimum confidence for a controlled tag
	// to be auto-approved.
	AutoApproveConfidence float64
}

// NormalizedTag is one tag after normalization.
type NormalizedTag struct {
	Label        string
	Facet        string
	Confidence   float64
	AutoApproved bool
	Controlled   bool
	Corrected    bool // synonym- or fuzzy-rewritten from the raw label
}

// Result is the outcome of a normalization run.
type Result struct {
	Group           string
	GroupConfidence float64
	GroupCorrected  bool
	Tags            []NormalizedTag
	UnknownTerms    []string
	NeedsReview     bool
	ReviewReason    string
}

// Normalize runs the five-phase taxonomy pass over a classification result:
// synonym normalization, vocabulary validation with fuzzy correction, the
// uncontrolled-term review gate, group voting, and per-label dedup.
// The snapshot is read-only; Normalize never mutates it and is safe to call
// concurrently.
func (s *Snapshot) Normalize(in Input, opts Options) *Result {
	if opts.FuzzyThreshold == 0 {
		opts.FuzzyThreshold = FuzzyAcceptClassify
	}

	res := &Result{
		Group:           in.Group,
		GroupConfidence: in.GroupConfidence,
	}
	votes := make(map[string]int)

	for _, raw := range in.Tags {
		label := strings.ToLower(strings.TrimSpace(raw.Label))
		if label == "" {
			continue
		}

		tag := NormalizedTag{
			Label:      label,
			Facet:      raw.Facet,
			Confidence: raw.Confidence,
		}

		// Phase 1: synonym normalization.
		if canonical, ok := s.NormalizeSynonym(label); ok {
			canonical = strings.ToLower(strings.TrimSpace(canonical))
			if canonical != label {
				tag.Label = canonical
				tag.Corrected = true
			}
		}

		// Phase 2: vocabulary validation with fuzzy correction. Terms that
		// stay unknown are kept but never auto-approved.
		if s.IsControlledTerm(tag.Label) {
			tag.Controlled = true
		} else if match := s.FindClosestTerm(tag.Label); match != nil && match.Score >= opts.FuzzyThreshold {
			tag.Label = strings.ToLower(match.Label)
			tag.Controlled = true
			tag.Corrected = true
		} else {
			res.UnknownTerms = append(res.UnknownTerms, tag.Label)
		}

		tag.AutoApproved = tag.Controlled && tag.Confidence >= opts.AutoApproveConfidence
		res.Tags = append(res.Tags, tag)

		// One vote per tag, from the raw label's rule or the final label's.
		if hint, ok := s.GroupHint(label); ok {
			votes[hint]++
		} else if hint, ok := s.GroupHint(tag.Label); ok {
			votes[hint]++
		}
	}

	// Phase 3: too many uncontrolled terms routes the asset to review.
	if len(res.UnknownTerms) >= unknownReviewCount {
		named := res.UnknownTerms
		if len(named) > unknownReviewNames {
			named = named[:unknownReviewNames]
		}
		res.NeedsReview = true
		res.ReviewReason = fmt.Sprintf("Multiple uncontrolled terms: %s", strings.Join(named, ", "))
	}

	// Phase 4: group validation and vote-based correction.
	resolveGroup(in.IsDocument, res, votes)

	// Phase 5: dedup by label, keeping the highest confidence.
	res.Tags = dedupeTags(res.Tags)

	return res
}

// resolveGroup keeps a confidently assigned valid group, otherwise lets the
// tags vote via synonym group hints, and falls back to the category default
// when nothing valid survives.
func resolveGroup(isDocument bool, res *Result, votes map[string]int) {
	if IsValidGroup(res.Group, isDocument) && res.GroupConfidence >= groupKeepConfidence {
		return
	}

	total := 0
	for _, n := range votes {
		total += n
	}

	if total > 0 {
		topGroup, topVotes := "", 0
		for group, n := range votes {
			if n > topVotes || (n == topVotes && group < topGroup) {
				topGroup, topVotes = group, n
			}
		}

		share := float64(topVotes) / float64(total)
		if share >= groupVoteShare && IsValidGroup(topGroup, isDocument) {
			if res.Group == "" || res.GroupConfidence < groupOverwriteBelow {
				res.Group = topGroup
				if share > res.GroupConfidence {
					res.GroupConfidence = share
				}
				res.GroupCorrected = true
			}
		}
	}

	if !IsValidGroup(res.Group, isDocument) {
		res.Group = DefaultGroup(isDocument)
		res.GroupConfidence = fallbackGroupConfidence
		res.GroupCorrected = true
		res.NeedsReview = true
		if res.ReviewReason == "" {
			res.ReviewReason = "Group classification defaulted"
		}
	}
}

// dedupeTags removes duplicate labels keeping the highest-confidence entry.
// A controlled duplicate wins over an uncontrolled one at equal confidence.
func dedupeTags(tags []NormalizedTag) []NormalizedTag {
	sorted := make([]NormalizedTag, len(tags))
	copy(sorted, tags)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].Controlled && !sorted[j].Controlled
	})

	seen := make(map[string]bool, len(sorted))
	out := sorted[:0]
	for _, tag := range sorted {
		if seen[tag.Label] {
			continue
		}
		seen[tag.Label] = true
		out = append(out, tag)
	}
	return out
}
