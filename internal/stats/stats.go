// Package stats provides summaries of cluster indices and the
// error-cluster-size histogram.
package stats

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/11bthornton/clustering/internal/cluster"
	"github.com/11bthornton/clustering/internal/quality"
	"github.com/11bthornton/clustering/internal/sequence"
)

// IndexStats represents aggregated statistics for one cluster index.
type IndexStats struct {
	Clusters      int     `json:"clusters"`
	Members       int     `json:"members"`        // distinct (key, value) pairings
	Total         int     `json:"total"`          // sum of all counts
	Singletons    int     `json:"singletons"`     // clusters with a single member
	MaxTotal      int     `json:"max_total"`      // largest cluster total
	MeanTotal     float64 `json:"mean_total"`     // mean cluster total
	MedianTotal   int     `json:"median_total"`   // median cluster total
	MeanMembers   float64 `json:"mean_members"`   // mean distinct members per cluster
	MajorityShare float64 `json:"majority_share"` // share of all counts carried by cluster majorities
	MeanKeyWeight float64 `json:"mean_key_weight"`
}

// Summarize calculates statistics for an index. Key weights are the
// model-weighted quality sums of the stored cluster keys.
func Summarize[K, V sequence.Width](ix *cluster.Index[K, V], m *quality.Model) *IndexStats {
	s := &IndexStats{Clusters: ix.Len()}
	if s.Clusters == 0 {
		return s
	}

	totals := make([]int, 0, s.Clusters)
	majorities := 0
	keyWeight := 0.0
	ix.Range(func(c *cluster.Cluster[K, V]) bool {
		totals = append(totals, c.Total())
		s.Members += c.Len()
		s.Total += c.Total()
		if c.Len() == 1 {
			s.Singletons++
		}
		if c.Total() > s.MaxTotal {
			s.MaxTotal = c.Total()
		}
		majorities += c.MaxCount()
		if m != nil {
			keyWeight += c.Key().QualityScore(m)
		}
		return true
	})

	sort.Ints(totals)
	s.MedianTotal = totals[len(totals)/2]
	s.MeanTotal = float64(s.Total) / float64(s.Clusters)
	s.MeanMembers = float64(s.Members) / float64(s.Clusters)
	if s.Total > 0 {
		s.MajorityShare = float64(majorities) / float64(s.Total)
	}
	s.MeanKeyWeight = keyWeight / float64(s.Clusters)
	return s
}

func (s *IndexStats) String() string {
	return fmt.Sprintf(`IndexStats {
  clusters: %d
  members: %d
  total: %d
  singletons: %d
  max total: %d
  mean total: %.2f
  median total: %d
  mean members: %.2f
  majority share: %.1f%%
}`, s.Clusters, s.Members, s.Total, s.Singletons, s.MaxTotal,
		s.MeanTotal, s.MedianTotal, s.MeanMembers, s.MajorityShare*100)
}

// Histogram counts how often each size was observed.
type Histogram struct {
	counts map[int]int
}

// Bucket is one row of a histogram.
type Bucket struct {
	Size  int `json:"size"`
	Count int `json:"count"`
}

// NewHistogram creates an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[int]int)}
}

// Add records one observation of size.
func (h *Histogram) Add(size int) {
	h.counts[size]++
}

// Merge adds every observation of other.
func (h *Histogram) Merge(other *Histogram) {
	for size, n := range other.counts {
		h.counts[size] += n
	}
}

// Count returns how often size was observed.
func (h *Histogram) Count(size int) int {
	return h.counts[size]
}

// Len returns the number of distinct sizes.
func (h *Histogram) Len() int {
	return len(h.counts)
}

// Total returns the number of observations.
func (h *Histogram) Total() int {
	total := 0
	for _, n := range h.counts {
		total += n
	}
	return total
}

// Buckets returns the histogram ordered by size.
func (h *Histogram) Buckets() []Bucket {
	out := make([]Bucket, 0, len(h.counts))
	for size, n := range h.counts {
		out = append(out, Bucket{Size: size, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Size < out[j].Size
	})
	return out
}

// MarshalJSON encodes the histogram as its Buckets.
func (h *Histogram) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.Buckets())
}

// String renders one line per size with a bar scaled to the largest count.
func (h *Histogram) String() string {
	const width = 50

	buckets := h.Buckets()
	maxCount := 0
	for _, b := range buckets {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}

	var sb strings.Builder
	sb.WriteString("Error Size Histogram:\n")
	for _, b := range buckets {
		bar := strings.Repeat("#", (b.Count*width+maxCount-1)/maxCount)
		fmt.Fprintf(&sb, "%6d: %s (%d)\n", b.Size, bar, b.Count)
	}
	return sb.String()
}
