// Package report builds the per-cluster reports over the cluster indices.
//
// The error report walks the UMI-keyed index and diffs every minority CDR
// against the cluster majority, in nucleotides and in protein. The cross
// report walks the CDR-keyed index, diffs minority UMIs position by position
// and, when given the UMI-keyed index as a companion, explains where else
// each minority UMI was seen.
//
// Reports only read the indices. Clusters are processed in parallel and
// emitted in cluster.Index.Sorted order.
package report

import (
	"context"
	"fmt"

	"github.com/11bthornton/clustering/internal/alignment"
	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/codon"
	"github.com/11bthornton/clustering/internal/sequence"
	"github.com/11bthornton/clustering/internal/stats"
)

// Options tunes a Reporter.
type Options struct {
	Workers int // goroutines computing clusters; <1 means one
}

// Reporter computes reports with a fixed scoring scheme and translator.
type Reporter struct {
	scoring    *alignment.ScoringMatrix
	translator *codon.Translator
	policy     codon.QualityPolicy
	workers    int
}

// New creates a Reporter. Nil arguments select alignment.Default, the
// standard code and codon.FirstThird.
func New(scoring *alignment.ScoringMatrix, tr *codon.Translator, policy codon.QualityPolicy, opts Options) *Reporter {
	if scoring == nil {
		scoring = alignment.Default()
	}
	if tr == nil {
		tr = codon.NewTranslator()
	}
	if policy == nil {
		policy = codon.FirstThird
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Reporter{scoring: scoring, translator: tr, policy: policy, workers: opts.Workers}
}

// ErrorVariant is one minority CDR of a barcode cluster.
type ErrorVariant struct {
	Sequence    string `json:"sequence"`
	Count       int    `json:"count"`
	Diff        string `json:"diff"`
	Score       int    `json:"score"`
	Hamming     int    `json:"hamming"`
	Protein     string `json:"protein"`
	ProteinDiff string `json:"protein_diff"`
}

// ErrorCluster is the report for one barcode.
type ErrorCluster struct {
	Key             string         `json:"key"`
	Total           int            `json:"total"`
	Majority        string         `json:"majority"`
	MajorityCount   int            `json:"majority_count"`
	MajorityProtein string         `json:"majority_protein"`
	Variants        []ErrorVariant `json:"variants"`
}

// ErrorReport holds every barcode cluster and the histogram of minority
// counts.
type ErrorReport struct {
	Clusters  []ErrorCluster   `json:"clusters"`
	Histogram *stats.Histogram `json:"histogram"`
}

// ErrorReport diffs each minority CDR against its barcode's majority.
func (r *Reporter) ErrorReport(ctx context.Context, idx *cluster.UMIToCDR) (*ErrorReport, error) {
	clusters := idx.Sorted()
	rows, err := mapClusters(ctx, r.workers, r.scoring, clusters, r.errorCluster)
	if err != nil {
		return nil, err
	}

	h := stats.NewHistogram()
	for _, row := range rows {
		for _, v := range row.Variants {
			h.Add(v.Count)
		}
	}
	return &ErrorReport{Clusters: rows, Histogram: h}, nil
}

func (r *Reporter) errorCluster(al *alignment.Aligner, c *cluster.Cluster[sequence.UMIWidth, sequence.CDRWidth]) (ErrorCluster, error) {
	members := c.Members()
	maj := members[0]

	majProtein, err := codon.Translate(maj.Seq, r.translator, r.policy)
	if err != nil {
		return ErrorCluster{}, fmt.Errorf("translating majority of %s: %w", c.Key(), err)
	}

	row := ErrorCluster{
		Key:             c.Key().String(),
		Total:           c.Total(),
		Majority:        maj.Seq.String(),
		MajorityCount:   maj.Count,
		MajorityProtein: majProtein.String(),
		Variants:        make([]ErrorVariant, 0, len(members)-1),
	}

	for _, m := range members[1:] {
		d, err := alignment.AnnotatedDiff(al, maj.Seq, m.Seq)
		if err != nil {
			return ErrorCluster{}, err
		}
		protein, err := codon.Translate(m.Seq, r.translator, r.policy)
		if err != nil {
			return ErrorCluster{}, fmt.Errorf("translating variant of %s: %w", c.Key(), err)
		}
		pd, err := alignment.AnnotatedDiff(al, majProtein, protein)
		if err != nil {
			return ErrorCluster{}, err
		}
		row.Variants = append(row.Variants, ErrorVariant{
			Sequence:    m.Seq.String(),
			Count:       m.Count,
			Diff:        d.Text,
			Score:       d.Score,
			Hamming:     maj.Seq.HammingDistance(m.Seq),
			Protein:     protein.String(),
			ProteinDiff: pd.Text,
		})
	}
	return row, nil
}

// CrossRef describes a minority UMI as seen from the UMI-keyed index.
type CrossRef struct {
	Present          bool   `json:"present"`           // false when the UMI has no cluster, e.g. after filtering
	OtherPartners    int    `json:"other_partners"`    // distinct CDRs besides this one
	CoOccurrences    int    `json:"co_occurrences"`    // reads of the UMI with any other CDR
	IsOwnMajority    bool   `json:"is_own_majority"`   // this CDR is the UMI's most common partner
	MajorityCount    int    `json:"majority_count"`    // count of the UMI's most common partner
	MajoritySequence string `json:"majority_sequence"` // the UMI's most common partner
	MajorityDiff     string `json:"majority_diff"`     // cluster key aligned against MajoritySequence
}

// CrossVariant is one minority UMI of a CDR cluster.
type CrossVariant struct {
	Sequence   string    `json:"sequence"`
	Count      int       `json:"count"`
	Diff       string    `json:"diff"`
	Percentage float64   `json:"percentage"`
	Companion  *CrossRef `json:"companion,omitempty"`
}

// CrossCluster is the report for one CDR.
type CrossCluster struct {
	Key           string         `json:"key"`
	Total         int            `json:"total"`
	Majority      string         `json:"majority"`
	MajorityCount int            `json:"majority_count"`
	Percentage    float64        `json:"percentage"`
	Variants      []CrossVariant `json:"variants"`
}

// CrossReport holds every CDR cluster.
type CrossReport struct {
	Clusters      []CrossCluster `json:"clusters"`
	WithCompanion bool           `json:"with_companion"`
}

// CrossReport diffs each minority UMI against its CDR's majority UMI. A nil
// companion leaves every CrossVariant.Companion nil.
func (r *Reporter) CrossReport(ctx context.Context, idx *cluster.CDRToUMI, companion *cluster.UMIToCDR) (*CrossReport, error) {
	clusters := idx.Sorted()
	rows, err := mapClusters(ctx, r.workers, r.scoring, clusters,
		func(al *alignment.Aligner, c *cluster.Cluster[sequence.CDRWidth, sequence.UMIWidth]) (CrossCluster, error) {
			return crossCluster(al, c, companion)
		})
	if err != nil {
		return nil, err
	}
	return &CrossReport{Clusters: rows, WithCompanion: companion != nil}, nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func crossCluster(al *alignment.Aligner, c *cluster.Cluster[sequence.CDRWidth, sequence.UMIWidth],
	companion *cluster.UMIToCDR) (CrossCluster, error) {

	members := c.Members()
	maj := members[0]
	row := CrossCluster{
		Key:           c.Key().String(),
		Total:         c.Total(),
		Majority:      maj.Seq.String(),
		MajorityCount: maj.Count,
		Percentage:    percent(maj.Count, c.Total()),
		Variants:      make([]CrossVariant, 0, len(members)-1),
	}

	for _, m := range members[1:] {
		v := CrossVariant{
			Sequence:   m.Seq.String(),
			Count:      m.Count,
			Diff:       alignment.PositionWiseDiff(maj.Seq, m.Seq),
			Percentage: percent(m.Count, c.Total()),
		}
		if companion != nil {
			ref, err := crossRef(al, c.Key(), m, companion)
			if err != nil {
				return CrossCluster{}, err
			}
			v.Companion = ref
		}
		row.Variants = append(row.Variants, v)
	}
	return row, nil
}

func crossRef(al *alignment.Aligner, key sequence.CDR, m cluster.Member[sequence.UMIWidth],
	companion *cluster.UMIToCDR) (*CrossRef, error) {

	uc, ok := companion.Get(m.Seq.Key())
	if !ok {
		return &CrossRef{}, nil
	}

	// Counts for this pairing come from the companion too. It skips filtered
	// reads, so the pairing may be missing there or recorded with count 0.
	partner := uc.Majority()
	own, seen := uc.Get(key.Key())
	others := uc.Len()
	if seen {
		others--
	}
	ref := &CrossRef{
		Present:          true,
		OtherPartners:    others,
		CoOccurrences:    uc.Total() - own.Count,
		IsOwnMajority:    partner.Seq.Key() == key.Key(),
		MajorityCount:    partner.Count,
		MajoritySequence: partner.Seq.String(),
	}
	if !ref.IsOwnMajority {
		d, err := alignment.AnnotatedDiff(al, key, partner.Seq)
		if err != nil {
			return nil, err
		}
		ref.MajorityDiff = d.Text
	}
	return ref, nil
}
