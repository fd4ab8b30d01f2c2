package sequence

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fourWide struct{}

func (fourWide) Width() int { return 4 }

type tooWide struct{}

func (tooWide) Width() int { return MaxWidth + 1 }

type flatWeigher float64

func (f flatWeigher) Weight(byte) float64 { return float64(f) }

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		symbols string
		quals   string
		wantErr bool
		field   string
	}{
		{
			name:    "exact width",
			symbols: "ACGT",
			quals:   "IIII",
		},
		{
			name:    "short symbols",
			symbols: "ACG",
			quals:   "IIII",
			wantErr: true,
			field:   "symbols",
		},
		{
			name:    "long qualities",
			symbols: "ACGT",
			quals:   "IIIII",
			wantErr: true,
			field:   "qualities",
		},
		{
			name:    "empty",
			symbols: "",
			quals:   "",
			wantErr: true,
			field:   "symbols",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, err := New[fourWide]([]byte(tt.symbols), []byte(tt.quals))

			if tt.wantErr {
				require.Error(t, err)
				var lm *LengthMismatchError
				require.True(t, errors.As(err, &lm))
				assert.Equal(t, tt.field, lm.Field)
				assert.Equal(t, 4, lm.Expected)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.symbols), seq.Bytes())
			assert.Equal(t, []byte(tt.quals), seq.Quals())
			assert.Equal(t, 4, seq.Len())
		})
	}
}

func TestNewRoles(t *testing.T) {
	umi, err := FromString[UMIWidth](strings.Repeat("A", UMILength), 'I')
	require.NoError(t, err)
	assert.Equal(t, UMILength, umi.Len())

	_, err = FromString[UMIWidth](strings.Repeat("A", CDRLength), 'I')
	assert.IsType(t, &LengthMismatchError{}, err)

	cdr, err := FromString[CDRWidth](strings.Repeat("C", CDRLength), 'I')
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("C", CDRLength), cdr.String())
}

func TestProteinWidth(t *testing.T) {
	assert.Equal(t, 21, Protein[CDRWidth]{}.Width())
	assert.Equal(t, -1, Protein[UMIWidth]{}.Width())

	_, err := FromString[Protein[UMIWidth]]("AAAAAAAAA", 'I')
	var iw *InvalidWidthError
	require.True(t, errors.As(err, &iw))
	assert.Equal(t, -1, iw.Width)

	_, err = FromString[tooWide](strings.Repeat("A", MaxWidth+1), 'I')
	assert.IsType(t, &InvalidWidthError{}, err)
}

func TestKeyIgnoresQuality(t *testing.T) {
	a, err := New[fourWide]([]byte("ACGT"), []byte("IIII"))
	require.NoError(t, err)
	b, err := New[fourWide]([]byte("ACGT"), []byte("####"))
	require.NoError(t, err)

	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))

	m := map[Symbols[fourWide]]int{a.Key(): 1}
	m[b.Key()]++
	assert.Len(t, m, 1)
	assert.Equal(t, 2, m[a.Key()])
}

func TestRatioAmbiguous(t *testing.T) {
	tests := []struct {
		symbols string
		want    float64
	}{
		{"ACGT", 0.0},
		{"NNNN", 1.0},
		{"ANGN", 0.5},
		{"nACG", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.symbols, func(t *testing.T) {
			s, err := FromString[fourWide](tt.symbols, 'I')
			require.NoError(t, err)
			assert.InDelta(t, tt.want, s.RatioAmbiguous(), 1e-9)
			assert.Equal(t, s.RatioAmbiguous(), RatioAmbiguousOf([]byte(tt.symbols)))
		})
	}

	assert.Equal(t, 0.0, RatioAmbiguousOf(nil))
	assert.InDelta(t, 0.5, RatioAmbiguousOf([]byte("NA")), 1e-12)
}

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"AAAA", "AAAA", 0},
		{"AAAA", "AAAT", 1},
		{"ACGT", "TGCA", 4},
		{"NAAA", "AAAN", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			a, err := FromString[fourWide](tt.a, 'I')
			require.NoError(t, err)
			b, err := FromString[fourWide](tt.b, 'I')
			require.NoError(t, err)
			assert.Equal(t, tt.want, a.HammingDistance(b))
			assert.Equal(t, tt.want, b.HammingDistance(a))
		})
	}
}

func TestQualityScore(t *testing.T) {
	s, err := FromString[fourWide]("ACGT", 'I')
	require.NoError(t, err)
	assert.InDelta(t, 10.0, s.QualityScore(flatWeigher(2.5)), 1e-9)
}

func TestSymbols(t *testing.T) {
	a, err := SymbolsFrom[fourWide]([]byte("AAAC"))
	require.NoError(t, err)
	b, err := SymbolsFrom[fourWide]([]byte("AAAG"))
	require.NoError(t, err)

	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, "AAAC", a.String())

	s, err := FromString[fourWide]("AAAC", '#')
	require.NoError(t, err)
	assert.Equal(t, a, s.Key())

	_, err = SymbolsFrom[fourWide]([]byte("AA"))
	assert.IsType(t, &LengthMismatchError{}, err)
}

func TestBytesAreCopies(t *testing.T) {
	s, err := FromString[fourWide]("ACGT", 'I')
	require.NoError(t, err)

	b := s.Bytes()
	b[0] = 'T'
	assert.Equal(t, "ACGT", s.String())
}

func TestIsNucleotide(t *testing.T) {
	for _, b := range []byte("ACGTN") {
		assert.True(t, IsNucleotide(b), string(b))
	}
	for _, b := range []byte("acgtX*") {
		assert.False(t, IsNucleotide(b), string(b))
	}
}

func BenchmarkNew(b *testing.B) {
	symbols := []byte(strings.Repeat("ACGT", 15) + "ACG")
	quals := []byte(strings.Repeat("I", CDRLength))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = New[CDRWidth](symbols, quals)
	}
}

func BenchmarkHammingDistance(b *testing.B) {
	x, _ := FromString[CDRWidth](strings.Repeat("ACG", 21), 'I')
	y, _ := FromString[CDRWidth](strings.Repeat("ACT", 21), 'I')
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.HammingDistance(y)
	}
}
