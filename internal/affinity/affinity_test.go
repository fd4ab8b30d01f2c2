package affinity

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/sequence"
)

var (
	barA = strings.Repeat("A", sequence.UMILength)
	barC = strings.Repeat("C", sequence.UMILength)
	barG = strings.Repeat("G", sequence.UMILength)
	barT = strings.Repeat("T", sequence.UMILength)
)

func csvOf(rows ...string) string {
	return "id,barcode,affinity\n" + strings.Join(rows, "\n") + "\n"
}

func index(t *testing.T, totals map[string]int) *cluster.UMIToCDR {
	ix := cluster.New[sequence.UMIWidth, sequence.CDRWidth]()
	c, err := sequence.FromString[sequence.CDRWidth](strings.Repeat("A", sequence.CDRLength), 'I')
	require.NoError(t, err)
	for bar, n := range totals {
		u, err := sequence.FromString[sequence.UMIWidth](bar, 'I')
		require.NoError(t, err)
		require.NoError(t, ix.Record(u, c, n))
	}
	return ix
}

func TestLoadReference(t *testing.T) {
	ref, err := LoadReference(strings.NewReader(csvOf(
		"1,"+barA+",0.5",
		"2,"+barC+",0.7",
		"3,"+barA+",0.9",
	)))
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Len())

	a, err := sequence.SymbolsFrom[sequence.UMIWidth]([]byte(barA))
	require.NoError(t, err)
	assert.True(t, ref.Has(a))
}

func TestLoadReferenceErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "empty"},
		{"short row", csvOf("1"), "line 2"},
		{"bad barcode", csvOf("1,ACGT,0.1"), "line 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReference(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadReferenceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "affinity.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvOf("1,"+barG+",1")), 0o644))

	ref, err := LoadReferenceFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, ref.Len())

	_, err = LoadReferenceFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestMissing(t *testing.T) {
	ref, err := LoadReference(strings.NewReader(csvOf("1,"+barA+",0", "2,"+barT+",0", "3,"+barC+",0")))
	require.NoError(t, err)

	ix := index(t, map[string]int{barA: 1, barG: 1})
	missing := Missing(ref, ix)
	require.Len(t, missing, 2)
	assert.Equal(t, barC, missing[0].String())
	assert.Equal(t, barT, missing[1].String())
}

func TestSweep(t *testing.T) {
	ref, err := LoadReference(strings.NewReader(csvOf("1,"+barA+",0", "2,"+barC+",0", "3,"+barG+",0")))
	require.NoError(t, err)

	ix := index(t, map[string]int{barA: 3, barC: 1, barT: 2})
	points, err := Sweep(context.Background(), ref, ix, 3)
	require.NoError(t, err)

	assert.Equal(t, []Point{
		{Threshold: 0, Missing: 1, Clusters: 3},
		{Threshold: 1, Missing: 2, Clusters: 2},
		{Threshold: 2, Missing: 2, Clusters: 1},
		{Threshold: 3, Missing: 3, Clusters: 0},
	}, points)

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, points[i].Missing, points[i-1].Missing)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	points, err := Sweep(ctx, NewReference(), index(t, map[string]int{barA: 1}), 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, points)
}
