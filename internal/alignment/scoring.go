// Package alignment provides affine-gap global alignment and the diff
// renderings built on it.
//
// The aligner implements Gotoh's three-state recurrence for comparing a
// majority sequence against its minority variants.
package alignment

import "fmt"

// Op is one column of an alignment.
type Op byte

const (
	// Match pairs two equal symbols
	Match Op = iota
	// Subst pairs two different symbols
	Subst
	// Del is a symbol of the first sequence with no partner in the second
	Del
	// Ins is a symbol of the second sequence with no partner in the first
	Ins
)

func (o Op) String() string {
	switch o {
	case Match:
		return "match"
	case Subst:
		return "subst"
	case Del:
		return "del"
	case Ins:
		return "ins"
	default:
		return "unknown"
	}
}

// ScoringMatrix represents the scoring parameters for alignment. A gap of
// length k scores GapOpenPenalty + k*GapExtendPenalty.
type ScoringMatrix struct {
	MatchScore       int
	MismatchPenalty  int
	GapOpenPenalty   int
	GapExtendPenalty int
}

// NewScoringMatrix creates a new scoring matrix with validation.
func NewScoringMatrix(match, mismatch, gapOpen, gapExtend int) (*ScoringMatrix, error) {
	if match <= 0 {
		return nil, fmt.Errorf("match score must be positive")
	}
	if mismatch > 0 {
		return nil, fmt.Errorf("mismatch penalty should be <= 0")
	}
	if gapOpen > 0 {
		return nil, fmt.Errorf("gap open penalty should be <= 0")
	}
	if gapExtend > 0 {
		return nil, fmt.Errorf("gap extend penalty should be <= 0")
	}

	return &ScoringMatrix{
		MatchScore:       match,
		MismatchPenalty:  mismatch,
		GapOpenPenalty:   gapOpen,
		GapExtendPenalty: gapExtend,
	}, nil
}

// Default is the scheme used for variant diffs: match +1, mismatch -1,
// gap open -5, gap extend -1.
func Default() *ScoringMatrix {
	return &ScoringMatrix{
		MatchScore:       1,
		MismatchPenalty:  -1,
		GapOpenPenalty:   -5,
		GapExtendPenalty: -1,
	}
}

// Score returns the score for comparing two symbols.
func (s *ScoringMatrix) Score(a, b byte) int {
	if a == b {
		return s.MatchScore
	}
	return s.MismatchPenalty
}

// GapCost returns the score of a gap of length k.
func (s *ScoringMatrix) GapCost(k int) int {
	if k <= 0 {
		return 0
	}
	return s.GapOpenPenalty + k*s.GapExtendPenalty
}

// String returns a string representation of the scoring matrix.
func (s *ScoringMatrix) String() string {
	return fmt.Sprintf("ScoringMatrix { match: %d, mismatch: %d, gap_open: %d, gap_extend: %d }",
		s.MatchScore, s.MismatchPenalty, s.GapOpenPenalty, s.GapExtendPenalty)
}
