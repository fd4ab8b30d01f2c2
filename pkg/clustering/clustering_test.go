package clustering

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/11bthornton/clustering/internal/config"
)

var (
	umiA = strings.Repeat("A", UMILength)
	umiT = "T" + strings.Repeat("A", UMILength-1)
	cdrC = strings.Repeat("C", CDRLength)
	cdrV = "CCCACC" + strings.Repeat("C", CDRLength-6)
)

func writeFastq(t *testing.T, dir, name string, seqs ...string) string {
	t.Helper()
	var b strings.Builder
	for i, s := range seqs {
		fmt.Fprintf(&b, "@r%d\n%s\n+\n%s\n", i, s, strings.Repeat("I", len(s)))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.UMIFastq = writeFastq(t, dir, "forward.fastq", umiA, umiA, umiA, umiT)
	cfg.CDRFastq = writeFastq(t, dir, "reverse.fastq", cdrC, cdrC, cdrV, cdrC)
	return &cfg
}

func TestBuild(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, int64(4), res.Pairs)
	assert.Equal(t, 2, res.UMIToCDR.Len())
	assert.Equal(t, 2, res.CDRToUMI.Len())

	s := Summarize(res)
	assert.Equal(t, 4, s.UMIToCDR.Total)
	assert.Equal(t, 2, s.CDRToUMI.Clusters)
}

func TestBuildWithProgressAndTake(t *testing.T) {
	cfg := testConfig(t)
	cfg.Progress = true
	cfg.Take = 2
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, int64(2), res.Pairs)
}

func TestBuildMissingFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.CDRFastq = filepath.Join(t.TempDir(), "missing.fastq")
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}

func TestWriteReportText(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Mode = config.ModeUMI
	var buf bytes.Buffer
	require.NoError(t, WriteReport(context.Background(), &buf, res, cfg))
	assert.Contains(t, buf.String(), "---- Clusters with identical barcode of "+umiA+" (3) {")
	assert.Contains(t, buf.String(), "Error Size Histogram:")

	cfg.Mode = config.ModeCDR
	buf.Reset()
	require.NoError(t, WriteReport(context.Background(), &buf, res, cfg))
	assert.Contains(t, buf.String(), "---- Clusters with identical cdr of "+cdrC+" (3) {")
	assert.Contains(t, buf.String(), "(Only seen with this sequence)")
}

func TestWriteReportJSON(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Mode = config.ModeUMI
	cfg.Format = config.FormatJSON
	var buf bytes.Buffer
	require.NoError(t, WriteReport(context.Background(), &buf, res, cfg))

	var decoded struct {
		Clusters []struct {
			Key string `json:"key"`
		} `json:"clusters"`
		Histogram []struct {
			Size  int `json:"size"`
			Count int `json:"count"`
		} `json:"histogram"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Clusters, 2)
	assert.Equal(t, umiA, decoded.Clusters[0].Key)
	require.Len(t, decoded.Histogram, 1)
	assert.Equal(t, 1, decoded.Histogram[0].Size)
}

func TestReportThreshold(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	cfg.Mode = config.ModeUMI
	cfg.Threshold = 1
	rep, err := Report(context.Background(), res, cfg)
	require.NoError(t, err)
	er := rep.(*ErrorReport)
	require.Len(t, er.Clusters, 1)
	assert.Equal(t, umiA, er.Clusters[0].Key)
}

func TestSweep(t *testing.T) {
	cfg := testConfig(t)
	res, err := Build(context.Background(), cfg)
	require.NoError(t, err)

	_, err = Sweep(context.Background(), res, cfg)
	assert.Error(t, err)

	cfg.AffinityCSV = filepath.Join(t.TempDir(), "affinity.csv")
	require.NoError(t, os.WriteFile(cfg.AffinityCSV, []byte("id,barcode\n1,"+umiA+"\n2,"+umiT+"\n"), 0o644))
	cfg.AffinityMaxThreshold = 3

	points, err := Sweep(context.Background(), res, cfg)
	require.NoError(t, err)
	require.Len(t, points, 4)
	assert.Equal(t, 0, points[0].Missing)
	assert.Equal(t, 1, points[1].Missing)
	assert.Equal(t, 2, points[3].Missing)
}

func TestAlignAndTranslate(t *testing.T) {
	d, err := AlignCDRs("ACGT", "ACCT")
	require.NoError(t, err)
	assert.Equal(t, "--C-", d.Text)

	assert.Equal(t, "MK*", Translate("ATGAAATAG"))
}

func TestInfo(t *testing.T) {
	assert.Contains(t, Info(), Version())
	assert.Contains(t, Info(), "63 nt (21 aa)")
}
