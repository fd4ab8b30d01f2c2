// Package quality provides Phred quality weighting and the read admission
// filter.
//
// Phred quality scores are logarithmically related to base-calling error
// probabilities:
//
//	Q = -10 * log10(P_error)
//
// FASTQ stores each score as a single byte offset by 33. The Model turns that
// byte into the linear weight 10^(Q/10), so a Q30 base weighs 1000 and a Q10
// base weighs 10.
package quality

import (
	"fmt"
	"math"
	"sync"
)

// Phred+33 encoding bounds.
const (
	PhredOffset = 33
	PhredMin    = 0
	PhredMax    = 93
)

// QualityError is the base error type for quality operations.
type QualityError interface {
	error
	IsQualityError()
}

// InvalidQualityError is returned when an encoded quality byte is outside
// the printable Phred+33 range.
type InvalidQualityError struct {
	Symbol byte
}

func (e *InvalidQualityError) Error() string {
	return fmt.Sprintf("invalid quality symbol %q (must be in %q..%q)",
		e.Symbol, byte(PhredOffset+PhredMin), byte(PhredOffset+PhredMax))
}

func (e *InvalidQualityError) IsQualityError() {}

// Model maps every encoded quality byte to its weight. It is immutable once
// built and safe for concurrent use.
type Model struct {
	weights [256]float64
}

// NewModel builds the weight table. Bytes below the offset weigh as Q0 and
// bytes above the Phred+33 ceiling weigh as Q93.
func NewModel() *Model {
	m := &Model{}
	for b := 0; b < 256; b++ {
		m.weights[b] = math.Pow(10, float64(Decode(byte(b)))/10)
	}
	return m
}

var (
	defaultOnce  sync.Once
	defaultModel *Model
)

// Default returns the process-wide model, building it on first use.
func Default() *Model {
	defaultOnce.Do(func() {
		defaultModel = NewModel()
	})
	return defaultModel
}

// Weight returns the weight of an encoded quality byte.
func (m *Model) Weight(q byte) float64 {
	return m.weights[q]
}

// Decode converts an encoded quality byte to a Phred score, clamped to
// [PhredMin, PhredMax].
func Decode(q byte) int {
	raw := int(q) - PhredOffset
	if raw < PhredMin {
		return PhredMin
	}
	if raw > PhredMax {
		return PhredMax
	}
	return raw
}

// Encode converts a Phred score to its Phred+33 byte.
func Encode(score int) (byte, error) {
	if score < PhredMin || score > PhredMax {
		return 0, &InvalidQualityError{Symbol: byte(score + PhredOffset)}
	}
	return byte(score + PhredOffset), nil
}

// ErrorProbability converts a Phred score to its base-calling error
// probability.
func ErrorProbability(score int) float64 {
	return math.Pow(10, -float64(score)/10)
}
