package quality

import "fmt"

// DefaultMaxAmbiguous is the ambiguity ratio at or above which a read is not
// counted.
const DefaultMaxAmbiguous = 0.55

// Ambiguity is implemented by anything that knows the share of its symbols
// the sequencer could not call.
type Ambiguity interface {
	RatioAmbiguous() float64
}

// Filter decides whether a read is admitted into the counts.
type Filter struct {
	MaxAmbiguous float64 // Reads with a ratio >= MaxAmbiguous are rejected
}

// DefaultFilter creates a filter with default settings.
func DefaultFilter() *Filter {
	return &Filter{MaxAmbiguous: DefaultMaxAmbiguous}
}

// NewFilter creates a filter with the given ambiguity ceiling.
func NewFilter(maxAmbiguous float64) (*Filter, error) {
	if maxAmbiguous < 0 || maxAmbiguous > 1 {
		return nil, fmt.Errorf("max ambiguous ratio must be in [0, 1], got %v", maxAmbiguous)
	}
	return &Filter{MaxAmbiguous: maxAmbiguous}, nil
}

// Admit reports whether s passes the filter. A nil filter admits everything.
func (f *Filter) Admit(s Ambiguity) bool {
	return f.AdmitRatio(s.RatioAmbiguous())
}

// AdmitRatio reports whether an ambiguity ratio passes the filter.
func (f *Filter) AdmitRatio(ratio float64) bool {
	if f == nil {
		return true
	}
	return ratio < f.MaxAmbiguous
}

// Increment returns 1 for an admitted read and 0 otherwise.
func (f *Filter) Increment(s Ambiguity) int {
	if f.Admit(s) {
		return 1
	}
	return 0
}
