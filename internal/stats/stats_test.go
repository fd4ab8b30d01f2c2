package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/quality"
	"github.com/11bthornton/clustering/internal/sequence"
)

type twoWide struct{}

func (twoWide) Width() int { return 2 }

func seq(t *testing.T, s string) sequence.Sequence[twoWide] {
	out, err := sequence.FromString[twoWide](s, '+')
	require.NoError(t, err)
	return out
}

func TestSummarize(t *testing.T) {
	ix := cluster.New[twoWide, twoWide]()
	record := func(k, v string, inc int) {
		require.NoError(t, ix.Record(seq(t, k), seq(t, v), inc))
	}
	record("AA", "CC", 3)
	record("AA", "GG", 1)
	record("CC", "CC", 1)
	record("GG", "TT", 2)

	s := Summarize(ix, quality.Default())
	assert.Equal(t, 3, s.Clusters)
	assert.Equal(t, 4, s.Members)
	assert.Equal(t, 7, s.Total)
	assert.Equal(t, 2, s.Singletons)
	assert.Equal(t, 4, s.MaxTotal)
	assert.Equal(t, 2, s.MedianTotal)
	assert.InDelta(t, 7.0/3.0, s.MeanTotal, 1e-9)
	assert.InDelta(t, 4.0/3.0, s.MeanMembers, 1e-9)
	assert.InDelta(t, 6.0/7.0, s.MajorityShare, 1e-9)
	// '+' is Q10, weight 10 per symbol.
	assert.InDelta(t, 20.0, s.MeanKeyWeight, 1e-9)
	assert.Contains(t, s.String(), "clusters: 3")
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(cluster.New[twoWide, twoWide](), nil)
	assert.Equal(t, 0, s.Clusters)
	assert.Equal(t, 0, s.Total)
}

func TestHistogram(t *testing.T) {
	h := NewHistogram()
	for _, size := range []int{1, 1, 1, 2, 5} {
		h.Add(size)
	}

	assert.Equal(t, 3, h.Count(1))
	assert.Equal(t, 0, h.Count(3))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 5, h.Total())
	assert.Equal(t, []Bucket{{1, 3}, {2, 1}, {5, 1}}, h.Buckets())

	other := NewHistogram()
	other.Add(2)
	other.Add(7)
	h.Merge(other)
	assert.Equal(t, 2, h.Count(2))
	assert.Equal(t, 7, h.Total())
}

func TestHistogramString(t *testing.T) {
	h := NewHistogram()
	h.Add(1)
	h.Add(1)
	h.Add(4)

	lines := strings.Split(strings.TrimSpace(h.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Error Size Histogram:", lines[0])
	assert.Equal(t, "     1: "+strings.Repeat("#", 50)+" (2)", lines[1])
	assert.Equal(t, "     4: "+strings.Repeat("#", 25)+" (1)", lines[2])

	assert.Equal(t, "Error Size Histogram:\n", NewHistogram().String())
}
