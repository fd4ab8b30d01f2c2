// Package sequence provides fixed-width nucleotide and protein sequences
// carrying per-symbol quality.
//
// A Sequence is parameterised by a Width type, so a UMI and a CDR are
// distinct types even though they share one implementation. Symbols and
// qualities live in an inline buffer; building a sequence never allocates.
//
// Identity is the symbol array alone. Two reads with the same bases but
// different qualities have equal Keys.
package sequence

import (
	"bytes"
	"fmt"
)

// Ambiguous is the symbol a sequencer emits when it cannot call a base.
const Ambiguous byte = 'N'

// Symbols is the comparable identity of a Sequence: its symbol array with
// the unused tail of the buffer zeroed.
type Symbols[W Width] struct {
	b [MaxWidth]byte
}

// SymbolsFrom builds a Symbols value directly from a symbol slice, for
// callers that only carry bases (reference barcode lists, for example).
func SymbolsFrom[W Width](symbols []byte) (Symbols[W], error) {
	var s Symbols[W]
	n, err := widthOf[W]()
	if err != nil {
		return s, err
	}
	if len(symbols) != n {
		return s, &LengthMismatchError{Field: "symbols", Expected: n, Actual: len(symbols)}
	}
	copy(s.b[:], symbols)
	return s, nil
}

// Bytes returns a copy of the symbols.
func (s Symbols[W]) Bytes() []byte {
	n := mustWidth[W]()
	out := make([]byte, n)
	copy(out, s.b[:n])
	return out
}

// Compare orders symbol arrays lexicographically.
func (s Symbols[W]) Compare(other Symbols[W]) int {
	return bytes.Compare(s.b[:], other.b[:])
}

func (s Symbols[W]) String() string {
	return string(s.b[:mustWidth[W]()])
}

// Sequence is a run of exactly W.Width() symbols paired one-to-one with
// quality symbols (Phred+33 encoded, as read from FASTQ).
type Sequence[W Width] struct {
	sym  Symbols[W]
	qual [MaxWidth]byte
}

// UMI is a barcode read.
type UMI = Sequence[UMIWidth]

// CDR is a variable-region read.
type CDR = Sequence[CDRWidth]

// New creates a sequence from equal-length symbol and quality slices.
// Both slices must hold exactly W.Width() bytes; nothing is truncated or
// padded.
func New[W Width](symbols, qualities []byte) (Sequence[W], error) {
	var s Sequence[W]

	n, err := widthOf[W]()
	if err != nil {
		return s, err
	}
	if len(symbols) != n {
		return s, &LengthMismatchError{Field: "symbols", Expected: n, Actual: len(symbols)}
	}
	if len(qualities) != n {
		return s, &LengthMismatchError{Field: "qualities", Expected: n, Actual: len(qualities)}
	}

	copy(s.sym.b[:], symbols)
	copy(s.qual[:], qualities)
	return s, nil
}

// FromString creates a sequence whose every quality symbol is q.
// Useful where only the bases are known.
func FromString[W Width](symbols string, q byte) (Sequence[W], error) {
	quals := bytes.Repeat([]byte{q}, len(symbols))
	return New[W]([]byte(symbols), quals)
}

// Len returns the fixed width of the sequence.
func (s Sequence[W]) Len() int {
	return mustWidth[W]()
}

// Key returns the identity of the sequence.
func (s Sequence[W]) Key() Symbols[W] {
	return s.sym
}

// Bytes returns a copy of the symbols.
func (s Sequence[W]) Bytes() []byte {
	return s.sym.Bytes()
}

// Quals returns a copy of the quality symbols.
func (s Sequence[W]) Quals() []byte {
	n := mustWidth[W]()
	out := make([]byte, n)
	copy(out, s.qual[:n])
	return out
}

// At returns the symbol at index i.
func (s Sequence[W]) At(i int) byte {
	return s.sym.b[i]
}

// Equal reports whether both sequences carry the same symbols.
func (s Sequence[W]) Equal(other Sequence[W]) bool {
	return s.sym == other.sym
}

// RatioAmbiguous returns the fraction of symbols equal to Ambiguous.
func (s Sequence[W]) RatioAmbiguous() float64 {
	return RatioAmbiguousOf(s.sym.b[:mustWidth[W]()])
}

// RatioAmbiguousOf returns the fraction of symbols equal to Ambiguous. An
// empty run has ratio 0.
func RatioAmbiguousOf(symbols []byte) float64 {
	if len(symbols) == 0 {
		return 0
	}
	return float64(bytes.Count(symbols, []byte{Ambiguous})) / float64(len(symbols))
}

// Weigher maps an encoded quality symbol to a numeric weight.
type Weigher interface {
	Weight(q byte) float64
}

// QualityScore sums the weight of every quality symbol.
func (s Sequence[W]) QualityScore(w Weigher) float64 {
	total := 0.0
	for _, q := range s.qual[:mustWidth[W]()] {
		total += w.Weight(q)
	}
	return total
}

// HammingDistance counts the positions at which the two sequences differ.
func (s Sequence[W]) HammingDistance(other Sequence[W]) int {
	n := mustWidth[W]()
	dist := 0
	for i := 0; i < n; i++ {
		if s.sym.b[i] != other.sym.b[i] {
			dist++
		}
	}
	return dist
}

func (s Sequence[W]) String() string {
	return s.sym.String()
}

// GoString shows the symbols and qualities, for debugging.
func (s Sequence[W]) GoString() string {
	n := mustWidth[W]()
	return fmt.Sprintf("Sequence{%s %s}", s.sym.b[:n], s.qual[:n])
}
