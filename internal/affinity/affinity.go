// Package affinity compares the barcodes of an experiment against a
// reference list of barcodes known to be present, such as the output of an
// affinity assay.
package affinity

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/grailbio/base/log"

	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/sequence"
)

// BarcodeColumn is the zero-based CSV column holding the barcode.
const BarcodeColumn = 1

// Reference is a set of known barcodes.
type Reference struct {
	barcodes map[sequence.Symbols[sequence.UMIWidth]]struct{}
}

// NewReference creates an empty reference set.
func NewReference() *Reference {
	return &Reference{barcodes: make(map[sequence.Symbols[sequence.UMIWidth]]struct{})}
}

// Add inserts a barcode.
func (r *Reference) Add(b sequence.Symbols[sequence.UMIWidth]) {
	r.barcodes[b] = struct{}{}
}

// Len returns the number of distinct barcodes.
func (r *Reference) Len() int {
	return len(r.barcodes)
}

// Has reports whether b is in the set.
func (r *Reference) Has(b sequence.Symbols[sequence.UMIWidth]) bool {
	_, ok := r.barcodes[b]
	return ok
}

// LoadReference reads a CSV with a header row and takes the barcode from
// BarcodeColumn of every following row. Duplicate barcodes collapse.
func LoadReference(r io.Reader) (*Reference, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reference csv is empty")
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	ref := NewReference()
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ref, nil
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(rec) <= BarcodeColumn {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", line, BarcodeColumn+1, len(rec))
		}
		b, err := sequence.SymbolsFrom[sequence.UMIWidth]([]byte(rec[BarcodeColumn]))
		if err != nil {
			return nil, fmt.Errorf("line %d: barcode %q: %w", line, rec[BarcodeColumn], err)
		}
		ref.Add(b)
	}
}

// LoadReferenceFile opens path and calls LoadReference.
func LoadReferenceFile(path string) (*Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ref, err := LoadReference(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ref, nil
}

// Missing returns the reference barcodes that have no cluster in idx, in
// ascending order.
func Missing(ref *Reference, idx *cluster.UMIToCDR) []sequence.Symbols[sequence.UMIWidth] {
	var out []sequence.Symbols[sequence.UMIWidth]
	for b := range ref.barcodes {
		if !idx.Has(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Compare(out[j]) < 0
	})
	return out
}

// Point is one step of a threshold sweep.
type Point struct {
	Threshold int `json:"threshold"`
	Missing   int `json:"missing"`
	Clusters  int `json:"clusters"`
}

// Sweep filters idx in place at every threshold from 0 to max inclusive and
// records how many reference barcodes are missing after each step. Since
// filtering only removes clusters, Missing never decreases along the sweep.
// On cancellation it returns the points computed so far.
func Sweep(ctx context.Context, ref *Reference, idx *cluster.UMIToCDR, max int) ([]Point, error) {
	points := make([]Point, 0, max+1)
	for th := 0; th <= max; th++ {
		if err := ctx.Err(); err != nil {
			return points, err
		}
		idx.FilterThreshold(th)
		p := Point{Threshold: th, Missing: len(Missing(ref, idx)), Clusters: idx.Len()}
		log.Debug.Printf("affinity sweep: threshold %d, %d clusters, %d missing", th, p.Clusters, p.Missing)
		points = append(points, p)
	}
	return points, nil
}
