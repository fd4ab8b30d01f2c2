// Package fastq reads paired FASTQ files as an ingest.PairSource.
package fastq

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"

	"github.com/11bthornton/clustering/internal/ingest"
)

// UnsyncedError is returned when one file of a pair ends before the other.
type UnsyncedError struct {
	Short string // the file that ran out first
	Pair  int64  // number of complete pairs read
}

func (e *UnsyncedError) Error() string {
	return fmt.Sprintf("%s ended after %d records while its mate has more", e.Short, e.Pair)
}

// MissingQualityError is returned for a record without a quality line, as
// in FASTA input.
type MissingQualityError struct {
	Path string
	ID   string
}

func (e *MissingQualityError) Error() string {
	return fmt.Sprintf("%s: record %q has no qualities", e.Path, e.ID)
}

// PairReader reads the UMI and CDR files in lockstep.
type PairReader struct {
	umiPath, cdrPath string
	umi, cdr         *fastx.Reader
	pairs            int64
}

var _ ingest.PairSource = (*PairReader)(nil)

// OpenPair opens both files of a pair. Gzipped files are read transparently.
func OpenPair(umiPath, cdrPath string) (*PairReader, error) {
	umi, err := fastx.NewReader(seq.DNAredundant, umiPath, "")
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", umiPath, err)
	}
	cdr, err := fastx.NewReader(seq.DNAredundant, cdrPath, "")
	if err != nil {
		umi.Close()
		return nil, fmt.Errorf("opening %s: %w", cdrPath, err)
	}
	return &PairReader{umiPath: umiPath, cdrPath: cdrPath, umi: umi, cdr: cdr}, nil
}

func readOne(r *fastx.Reader, path string) (ingest.Read, error) {
	rec, err := r.Read()
	if err != nil {
		return ingest.Read{}, err
	}
	if len(rec.Seq.Qual) == 0 && len(rec.Seq.Seq) > 0 {
		return ingest.Read{}, &MissingQualityError{Path: path, ID: string(rec.ID)}
	}
	return ingest.Read{Seq: rec.Seq.Seq, Qual: rec.Seq.Qual}, nil
}

// Next returns the next pair, or io.EOF once both files are exhausted
// together.
func (p *PairReader) Next() (umi, cdr ingest.Read, err error) {
	umi, uerr := readOne(p.umi, p.umiPath)
	cdr, cerr := readOne(p.cdr, p.cdrPath)

	uEOF, cEOF := errors.Is(uerr, io.EOF), errors.Is(cerr, io.EOF)
	switch {
	case uEOF && cEOF:
		return ingest.Read{}, ingest.Read{}, io.EOF
	case uEOF && cerr == nil:
		return ingest.Read{}, ingest.Read{}, &UnsyncedError{Short: p.umiPath, Pair: p.pairs}
	case cEOF && uerr == nil:
		return ingest.Read{}, ingest.Read{}, &UnsyncedError{Short: p.cdrPath, Pair: p.pairs}
	case uerr != nil && !uEOF:
		return ingest.Read{}, ingest.Read{}, fmt.Errorf("%s: %w", p.umiPath, uerr)
	case cerr != nil && !cEOF:
		return ingest.Read{}, ingest.Read{}, fmt.Errorf("%s: %w", p.cdrPath, cerr)
	}
	p.pairs++
	return umi, cdr, nil
}

// Close closes both files.
func (p *PairReader) Close() {
	p.umi.Close()
	p.cdr.Close()
}

// CountRecords estimates the number of records in a plain FASTQ file from
// its line count. It returns 0 for compressed or empty files, whose size is
// not known without decoding them.
func CountRecords(path string) (int64, error) {
	if strings.HasSuffix(path, ".gz") {
		return 0, nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer fp.Close()

	fi, err := fp.Stat()
	if err != nil {
		return 0, err
	}
	if fi.Size() == 0 {
		return 0, nil
	}

	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer mm.Unmap()

	lines := bytes.Count(mm, []byte("\n"))
	if mm[len(mm)-1] != '\n' {
		lines++
	}
	return int64(lines / 4), nil
}
