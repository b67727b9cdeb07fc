package taxonomy

import "strings"

// Match is the result of a fuzzy vocabulary lookup.
type Match struct {
	Label     string  // canonical term label
	GroupCode string
	Score     float64 // 0.0 - 1.0
}

// matchingChars counts the characters two strings have in common, longest
// common substring first, then recursing on both remainders. This mirrors the
// classic similar_text algorithm so historical match scores stay comparable.
func matchingChars(a, b string) int {
	if a == "" || b == "" {
		return 0
	}

	posA, posB, max := 0, 0, 0
	for i := 0; i < len(a); i++ {
		for j := 0; j < len(b); j++ {
			k := 0
			for i+k < len(a) && j+k < len(b) && a[i+k] == b[j+k] {
				k++
			}
			if k > max {
				max = k
				posA, posB = i, j
			}
		}
	}
	if max == 0 {
		return 0
	}

	sum := max
	sum += matchingChars(a[:posA], b[:posB])
	sum += matchingChars(a[posA+max:], b[posB+max:])
	return sum
}

// similarityRatio returns the similar_text percentage as a 0-1 ratio.
func similarityRatio(a, b string) float64 {
	if len(a)+len(b) == 0 {
		return 0
	}
	return float64(2*matchingChars(a, b)) / float64(len(a)+len(b))
}

// fuzzyCandidateRatio is the minimum pure-similarity ratio for a term to be
// considered a match candidate at all.
const fuzzyCandidateRatio = 0.75

// FindClosestTerm finds the best controlled-vocabulary match for a raw tag.
// An exact (case-insensitive) match scores 1.0. Otherwise candidates come
// from containment (one string inside the other, scored by shared characters
// over the longer length) and from the pure similarity ratio when it exceeds
// fuzzyCandidateRatio. Returns nil when nothing qualifies.
func (s *Snapshot) FindClosestTerm(rawTag string) *Match {
	lower := strings.ToLower(strings.TrimSpace(rawTag))
	if lower == "" {
		return nil
	}

	var best *Match
	for _, term := range s.keywords {
		termLower := term.NormalizedLabel()

		if termLower == lower {
			return &Match{Label: term.Label, GroupCode: term.GroupCode, Score: 1.0}
		}

		if strings.Contains(termLower, lower) || strings.Contains(lower, termLower) {
			longer := len(lower)
			if len(termLower) > longer {
				longer = len(termLower)
			}
			score := float64(matchingChars(lower, termLower)) / float64(longer)
			if best == nil || score > best.Score {
				best = &Match{Label: term.Label, GroupCode: term.GroupCode, Score: score}
			}
		}

		if ratio := similarityRatio(lower, termLower); ratio > fuzzyCandidateRatio {
			if best == nil || ratio > best.Score {
				best = &Match{Label: term.Label, GroupCode: term.GroupCode, Score: ratio}
			}
		}
	}

	return best
}
