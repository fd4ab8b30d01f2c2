package fastq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/11bthornton/clustering/internal/ingest"
	"github.com/11bthornton/clustering/internal/sequence"
)

func writeFastq(t *testing.T, name string, seqs ...string) string {
	t.Helper()
	var b strings.Builder
	for i, s := range seqs {
		fmt.Fprintf(&b, "@read%d\n%s\n+\n%s\n", i+1, s, strings.Repeat("I", len(s)))
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestPairReader(t *testing.T) {
	umi := strings.Repeat("A", sequence.UMILength)
	cdr := strings.Repeat("C", sequence.CDRLength)
	up := writeFastq(t, "forward.fastq", umi, umi)
	cp := writeFastq(t, "reverse.fastq", cdr, cdr)

	pr, err := OpenPair(up, cp)
	require.NoError(t, err)
	defer pr.Close()

	for i := 0; i < 2; i++ {
		u, c, err := pr.Next()
		require.NoError(t, err)
		assert.Equal(t, umi, string(u.Seq))
		assert.Equal(t, strings.Repeat("I", sequence.UMILength), string(u.Qual))
		assert.Equal(t, cdr, string(c.Seq))
	}
	_, _, err = pr.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestPairReaderUnsynced(t *testing.T) {
	up := writeFastq(t, "forward.fastq", "ACGT", "ACGT")
	cp := writeFastq(t, "reverse.fastq", "ACGT")

	pr, err := OpenPair(up, cp)
	require.NoError(t, err)
	defer pr.Close()

	_, _, err = pr.Next()
	require.NoError(t, err)
	_, _, err = pr.Next()
	var ue *UnsyncedError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, cp, ue.Short)
	assert.Equal(t, int64(1), ue.Pair)
}

func TestOpenPairMissingFile(t *testing.T) {
	up := writeFastq(t, "forward.fastq", "ACGT")
	_, err := OpenPair(up, filepath.Join(t.TempDir(), "missing.fastq"))
	assert.Error(t, err)
}

func TestIngestFromFiles(t *testing.T) {
	umiA := strings.Repeat("A", sequence.UMILength)
	umiC := strings.Repeat("C", sequence.UMILength)
	cdrG := strings.Repeat("G", sequence.CDRLength)
	cdrT := strings.Repeat("T", sequence.CDRLength)

	up := writeFastq(t, "forward.fastq", umiA, umiA, umiC)
	cp := writeFastq(t, "reverse.fastq", cdrG, cdrT, cdrG)

	pr, err := OpenPair(up, cp)
	require.NoError(t, err)
	defer pr.Close()

	res, err := ingest.Run(context.Background(), pr, ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Pairs)
	assert.Equal(t, 2, res.UMIToCDR.Len())
	assert.Equal(t, 2, res.CDRToUMI.Len())
}

func TestCountRecords(t *testing.T) {
	path := writeFastq(t, "forward.fastq", "ACGT", "ACGT", "ACGT")
	n, err := CountRecords(path)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	empty := filepath.Join(t.TempDir(), "empty.fastq")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	n, err = CountRecords(empty)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	noNewline := filepath.Join(t.TempDir(), "trailing.fastq")
	require.NoError(t, os.WriteFile(noNewline, []byte("@r\nACGT\n+\nIIII"), 0o644))
	n, err = CountRecords(noNewline)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = CountRecords("reads.fastq.gz")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	_, err = CountRecords(filepath.Join(t.TempDir(), "missing.fastq"))
	assert.Error(t, err)
}
