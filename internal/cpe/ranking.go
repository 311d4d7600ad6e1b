package cpe

import "sort"

// CpeCandidate is a scored, deconstructed catalog entry paired with its
// display title and stable catalog id (spec §3).
type CpeCandidate struct {
	CPEName   string
	CPENameID string
	Title     string
	Deprecated bool

	Deconstructed DeconstructedCpe
	Score         ScoreBreakdown
	CompositeScore float64
}

// rank sorts candidates by CompositeScore descending, stable on ties (spec
// §4.I — catalog insertion order is preserved among equal scores), and
// truncates to min(topN, len(candidates)).
func rank(candidates []CpeCandidate, topN int) []CpeCandidate {
	sorted := make([]CpeCandidate, len(candidates))
	copy(sorted, candidates)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompositeScore > sorted[j].CompositeScore
	})

	if topN < len(sorted) {
		sorted = sorted[:topN]
	}
	return sorted
}

// clampTopN enforces spec §4.I/§6: caller topN in [1, maxTopN], default
// DefaultTopN when n <= 0.
func clampTopN(n, maxTopN int) int {
	if n <= 0 {
		n = DefaultTopN
	}
	if n > maxTopN {
		n = maxTopN
	}
	return n
}
