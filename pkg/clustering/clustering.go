// Package clustering provides a high-level API for clustering paired
// barcode and variable-region reads.
//
// Example usage:
//
//	cfg := config.Default()
//	res, err := clustering.Build(ctx, &cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := clustering.WriteReport(ctx, os.Stdout, res, &cfg); err != nil {
//	    log.Fatal(err)
//	}
package clustering

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/log"

	"github.com/11bthornton/clustering/internal/affinity"
	"github.com/11bthornton/clustering/internal/alignment"
	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/codon"
	"github.com/11bthornton/clustering/internal/config"
	"github.com/11bthornton/clustering/internal/fastq"
	"github.com/11bthornton/clustering/internal/ingest"
	"github.com/11bthornton/clustering/internal/quality"
	"github.com/11bthornton/clustering/internal/report"
	"github.com/11bthornton/clustering/internal/sequence"
	"github.com/11bthornton/clustering/internal/stats"
)

// Re-export types for convenience
type (
	UMI          = sequence.UMI
	CDR          = sequence.CDR
	UMIToCDR     = cluster.UMIToCDR
	CDRToUMI     = cluster.CDRToUMI
	Result       = ingest.Result
	Options      = ingest.Options
	Config       = config.Config
	Reporter     = report.Reporter
	ErrorReport  = report.ErrorReport
	CrossReport  = report.CrossReport
	Alignment    = alignment.Alignment
	Diff         = alignment.Diff
	IndexStats   = stats.IndexStats
	Bucket       = stats.Bucket
	SweepPoint   = affinity.Point
	QualityModel = quality.Model
)

// Sequence widths
const (
	UMILength = sequence.UMILength
	CDRLength = sequence.CDRLength
)

// progressBarEvery is how often the progress bar is advanced.
const progressBarEvery = 10_000

// IngestOptions derives fold options from cfg.
func IngestOptions(cfg *config.Config) (ingest.Options, error) {
	filter, err := quality.NewFilter(cfg.MaxAmbiguous)
	if err != nil {
		return ingest.Options{}, err
	}
	return ingest.Options{
		Limit:         cfg.Take,
		Filter:        filter,
		Workers:       cfg.Workers,
		SkipMalformed: cfg.SkipMalformed,
	}, nil
}

// NewReporter derives a Reporter from cfg.
func NewReporter(cfg *config.Config) (*report.Reporter, error) {
	policy, err := codon.PolicyByName(cfg.ProteinQuality)
	if err != nil {
		return nil, err
	}
	return report.New(alignment.Default(), codon.NewTranslator(), policy,
		report.Options{Workers: cfg.Workers}), nil
}

// Build reads the FASTQ pair named in cfg into both indices. On cancellation
// the partial result is returned along with the error.
func Build(ctx context.Context, cfg *config.Config) (*ingest.Result, error) {
	opts, err := IngestOptions(cfg)
	if err != nil {
		return nil, err
	}

	src, err := fastq.OpenPair(cfg.UMIFastq, cfg.CDRFastq)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var bar *pb.ProgressBar
	if cfg.Progress {
		total, err := fastq.CountRecords(cfg.UMIFastq)
		if err != nil {
			return nil, fmt.Errorf("counting records: %w", err)
		}
		if cfg.Take > 0 && (total == 0 || cfg.Take < total) {
			total = cfg.Take
		}
		bar = pb.Full.Start64(total)
		opts.ProgressEvery = progressBarEvery
		opts.Progress = func(n int64) { bar.SetCurrent(n) }
	} else {
		opts.Progress = func(n int64) {
			log.Printf("read %s pairs", humanize.Comma(n))
		}
	}

	log.Printf("clustering %s and %s", cfg.UMIFastq, cfg.CDRFastq)
	res, err := ingest.Run(ctx, src, opts)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return res, err
	}
	log.Printf("%s pairs: %s admitted, %s malformed; %s barcode clusters, %s CDR clusters",
		humanize.Comma(res.Pairs), humanize.Comma(res.Admitted), humanize.Comma(res.Malformed),
		humanize.Comma(int64(res.UMIToCDR.Len())), humanize.Comma(int64(res.CDRToUMI.Len())))
	return res, nil
}

// Summary holds statistics for both indices of a Result.
type Summary struct {
	Pairs     int64             `json:"pairs"`
	Recorded  int64             `json:"recorded"`
	Admitted  int64             `json:"admitted"`
	Malformed int64             `json:"malformed"`
	Truncated bool              `json:"truncated"`
	UMIToCDR  *stats.IndexStats `json:"umi_to_cdr"`
	CDRToUMI  *stats.IndexStats `json:"cdr_to_umi"`
}

// Summarize describes res.
func Summarize(res *ingest.Result) *Summary {
	m := quality.Default()
	return &Summary{
		Pairs:     res.Pairs,
		Recorded:  res.Recorded,
		Admitted:  res.Admitted,
		Malformed: res.Malformed,
		Truncated: res.Truncated,
		UMIToCDR:  stats.Summarize(res.UMIToCDR, m),
		CDRToUMI:  stats.Summarize(res.CDRToUMI, m),
	}
}

// Report computes the report cfg.Mode selects after dropping clusters at or
// below cfg.Threshold from the keyed index. It returns a
// *report.ErrorReport or a *report.CrossReport.
func Report(ctx context.Context, res *ingest.Result, cfg *config.Config) (interface{}, error) {
	r, err := NewReporter(cfg)
	if err != nil {
		return nil, err
	}

	switch cfg.Mode {
	case config.ModeUMI:
		if n := res.UMIToCDR.FilterThreshold(cfg.Threshold); n > 0 {
			log.Printf("dropped %s barcode clusters at or below %d", humanize.Comma(int64(n)), cfg.Threshold)
		}
		return r.ErrorReport(ctx, res.UMIToCDR)
	case config.ModeCDR:
		if n := res.CDRToUMI.FilterThreshold(cfg.Threshold); n > 0 {
			log.Printf("dropped %s CDR clusters at or below %d", humanize.Comma(int64(n)), cfg.Threshold)
		}
		return r.CrossReport(ctx, res.CDRToUMI, res.UMIToCDR)
	}
	return nil, fmt.Errorf("unknown mode %q", cfg.Mode)
}

// WriteReport computes the configured report and writes it to w as text or
// JSON.
func WriteReport(ctx context.Context, w io.Writer, res *ingest.Result, cfg *config.Config) error {
	rep, err := Report(ctx, res, cfg)
	if err != nil {
		return err
	}

	if cfg.Format == config.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	switch rep := rep.(type) {
	case *report.ErrorReport:
		if err := report.WriteErrorReport(w, rep); err != nil {
			return err
		}
		_, err = io.WriteString(w, rep.Histogram.String())
		return err
	case *report.CrossReport:
		return report.WriteCrossReport(w, rep)
	}
	return fmt.Errorf("unexpected report type %T", rep)
}

// Sweep loads the reference barcodes named in cfg and sweeps the barcode
// index from threshold 0 to cfg.AffinityMaxThreshold. The index is filtered
// in place.
func Sweep(ctx context.Context, res *ingest.Result, cfg *config.Config) ([]affinity.Point, error) {
	if cfg.AffinityCSV == "" {
		return nil, fmt.Errorf("no reference barcodes: set %s", config.KeyAffinityCSV)
	}
	ref, err := affinity.LoadReferenceFile(cfg.AffinityCSV)
	if err != nil {
		return nil, err
	}
	log.Printf("loaded %s reference barcodes", humanize.Comma(int64(ref.Len())))
	return affinity.Sweep(ctx, ref, res.UMIToCDR, cfg.AffinityMaxThreshold)
}

// AlignCDRs diffs two CDR strings with the default scoring scheme.
func AlignCDRs(majority, variant string) (alignment.Diff, error) {
	return alignment.NewAligner(nil).Diff([]byte(majority), []byte(variant))
}

// Translate returns the protein of a nucleotide string.
func Translate(nt string) string {
	return string(codon.NewTranslator().Bytes([]byte(nt)))
}

// Version returns the library version.
func Version() string {
	return "0.3.0"
}

// Info returns a short description of the library.
func Info() string {
	return fmt.Sprintf(`umicluster v%s - barcode/CDR error clustering

Folds paired FASTQ reads into barcode-keyed and CDR-keyed count indices
and reports the minority sequences of every cluster against its majority.

Widths:
  - barcode (UMI): %d nt
  - CDR:           %d nt (%d aa)
`, Version(), UMILength, CDRLength, CDRLength/3)
}
