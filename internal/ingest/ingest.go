// Package ingest folds a stream of read pairs into the two cluster indices.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/quality"
	"github.com/11bthornton/clustering/internal/sequence"
)

// Defaults for Options.
const (
	DefaultBatchSize     = 4096
	DefaultProgressEvery = 1_000_000
)

// Read is one FASTQ record body: its symbols and encoded qualities.
type Read struct {
	Seq  []byte
	Qual []byte
}

// PairSource yields synchronised (UMI, CDR) read pairs. Next returns io.EOF
// once both sides are exhausted. The returned slices are only valid until the
// next call.
type PairSource interface {
	Next() (umi, cdr Read, err error)
}

// Options controls a fold.
type Options struct {
	Limit         int64           // Stop after this many pairs; 0 reads everything
	Filter        *quality.Filter // CDR admission; nil selects quality.DefaultFilter
	Workers       int             // >1 shards batches across goroutines
	BatchSize     int             // Pairs per batch when sharding
	SkipMalformed bool            // Count and skip pairs of the wrong width instead of failing
	Progress      func(pairs int64)
	ProgressEvery int64
}

// Result holds both indices and the fold counters. The indices are valid
// and queryable even when Run returns an error.
type Result struct {
	UMIToCDR *cluster.UMIToCDR
	CDRToUMI *cluster.CDRToUMI

	Pairs     int64 // pairs taken from the source
	Recorded  int64 // pairs folded into the indices
	Admitted  int64 // recorded pairs whose CDR passed the filter
	Malformed int64 // pairs skipped for having the wrong width
	Truncated bool  // the fold stopped at Limit
}

func newResult() *Result {
	return &Result{
		UMIToCDR: cluster.New[sequence.UMIWidth, sequence.CDRWidth](),
		CDRToUMI: cluster.New[sequence.CDRWidth, sequence.UMIWidth](),
	}
}

// MalformedError reports a pair whose reads do not have the role widths.
type MalformedError struct {
	Pair int64 // 1-based
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed read pair %d: %v", e.Pair, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

type pairSeq struct {
	umi sequence.UMI
	cdr sequence.CDR
}

func makePair(umi, cdr Read) (pairSeq, error) {
	u, err := sequence.New[sequence.UMIWidth](umi.Seq, umi.Qual)
	if err != nil {
		return pairSeq{}, fmt.Errorf("umi: %w", err)
	}
	c, err := sequence.New[sequence.CDRWidth](cdr.Seq, cdr.Qual)
	if err != nil {
		return pairSeq{}, fmt.Errorf("cdr: %w", err)
	}
	return pairSeq{umi: u, cdr: c}, nil
}

// record folds one pair. The UMI side counts the CDR only when it is
// admitted; the CDR side always counts the UMI.
func (r *Result) record(f *quality.Filter, p pairSeq) error {
	inc := f.Increment(p.cdr)
	if err := r.UMIToCDR.Record(p.umi, p.cdr, inc); err != nil {
		return err
	}
	if err := r.CDRToUMI.Record(p.cdr, p.umi, 1); err != nil {
		return err
	}
	r.Recorded++
	r.Admitted += int64(inc)
	return nil
}

func (r *Result) merge(o *Result) {
	r.UMIToCDR.Merge(o.UMIToCDR)
	r.CDRToUMI.Merge(o.CDRToUMI)
	r.Recorded += o.Recorded
	r.Admitted += o.Admitted
}

func (o *Options) defaults() {
	if o.Filter == nil {
		o.Filter = quality.DefaultFilter()
	}
	if o.Workers < 1 {
		o.Workers = 1
	}
	if o.BatchSize < 1 {
		o.BatchSize = DefaultBatchSize
	}
	if o.ProgressEvery < 1 {
		o.ProgressEvery = DefaultProgressEvery
	}
}

// reader pulls pairs from a source, applying the limit, the malformed
// policy and progress reporting.
type reader struct {
	src  PairSource
	opts *Options
	res  *Result
}

// next returns the next well-formed pair. ok is false at the end of input or
// at the limit.
func (rd *reader) next() (p pairSeq, ok bool, err error) {
	for {
		if rd.opts.Limit > 0 && rd.res.Pairs >= rd.opts.Limit {
			rd.res.Truncated = true
			return pairSeq{}, false, nil
		}
		umi, cdr, err := rd.src.Next()
		if errors.Is(err, io.EOF) {
			return pairSeq{}, false, nil
		}
		if err != nil {
			return pairSeq{}, false, fmt.Errorf("reading pair %d: %w", rd.res.Pairs+1, err)
		}
		rd.res.Pairs++
		if rd.opts.Progress != nil && rd.res.Pairs%rd.opts.ProgressEvery == 0 {
			rd.opts.Progress(rd.res.Pairs)
		}

		p, err := makePair(umi, cdr)
		if err != nil {
			if rd.opts.SkipMalformed {
				rd.res.Malformed++
				continue
			}
			return pairSeq{}, false, &MalformedError{Pair: rd.res.Pairs, Err: err}
		}
		return p, true, nil
	}
}

// Run folds src into a fresh pair of indices. On cancellation or error it
// returns what was folded so far together with the error.
func Run(ctx context.Context, src PairSource, opts Options) (*Result, error) {
	opts.defaults()
	var (
		res *Result
		err error
	)
	if opts.Workers == 1 {
		res, err = runSequential(ctx, src, &opts)
	} else {
		res, err = runSharded(ctx, src, &opts)
	}
	if opts.Progress != nil {
		opts.Progress(res.Pairs)
	}
	return res, err
}

func runSequential(ctx context.Context, src PairSource, opts *Options) (*Result, error) {
	res := newResult()
	rd := &reader{src: src, opts: opts, res: res}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, ok, err := rd.next()
		if err != nil {
			return res, err
		}
		if !ok {
			return res, nil
		}
		if err := res.record(opts.Filter, p); err != nil {
			return res, err
		}
	}
}

// runSharded reads batches on one goroutine and folds them on opts.Workers
// others, each into its own partial indices. The partials are merged once
// every worker has stopped, so a cancelled fold still yields whole clusters.
func runSharded(ctx context.Context, src PairSource, opts *Options) (*Result, error) {
	res := newResult()
	rd := &reader{src: src, opts: opts, res: res}

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan []pairSeq, opts.Workers*2)

	g.Go(func() error {
		defer close(batches)
		batch := make([]pairSeq, 0, opts.BatchSize)
		for {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, ok, err := rd.next()
			if err != nil {
				return err
			}
			if ok {
				batch = append(batch, p)
			}
			if len(batch) == opts.BatchSize || (!ok && len(batch) > 0) {
				select {
				case batches <- batch:
				case <-gctx.Done():
					return gctx.Err()
				}
				batch = make([]pairSeq, 0, opts.BatchSize)
			}
			if !ok {
				return nil
			}
		}
	})

	partials := make([]*Result, opts.Workers)
	for w := range partials {
		part := newResult()
		partials[w] = part
		g.Go(func() error {
			for batch := range batches {
				if err := gctx.Err(); err != nil {
					return err
				}
				for _, p := range batch {
					if err := part.record(opts.Filter, p); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	err := g.Wait()
	for _, part := range partials {
		res.merge(part)
	}
	if err == nil {
		err = ctx.Err()
	}
	return res, err
}
