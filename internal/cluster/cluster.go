// Package cluster provides the two-way frequency index between read roles.
//
// An Index maps each distinct outer sequence (the cluster key) to the
// distinct inner sequences seen alongside it, with a count per inner
// sequence. Sequences are grouped by symbols only; the first read seen for a
// given symbol array supplies the stored qualities.
package cluster

import (
	"fmt"
	"sort"

	"github.com/11bthornton/clustering/internal/sequence"
)

// Member is one distinct inner sequence of a cluster with its count.
type Member[V sequence.Width] struct {
	Seq   sequence.Sequence[V]
	Count int
}

// Cluster is the set of inner sequences recorded against one key.
type Cluster[K, V sequence.Width] struct {
	key     sequence.Sequence[K]
	members map[sequence.Symbols[V]]*Member[V]
	total   int
	max     int
}

// Key returns the sequence the cluster is keyed on.
func (c *Cluster[K, V]) Key() sequence.Sequence[K] {
	return c.key
}

// Len returns the number of distinct members.
func (c *Cluster[K, V]) Len() int {
	return len(c.members)
}

// Total returns the sum of all member counts.
func (c *Cluster[K, V]) Total() int {
	return c.total
}

// MaxCount returns the largest member count.
func (c *Cluster[K, V]) MaxCount() int {
	return c.max
}

// Get returns the member with the given symbols.
func (c *Cluster[K, V]) Get(value sequence.Symbols[V]) (Member[V], bool) {
	m, ok := c.members[value]
	if !ok {
		return Member[V]{}, false
	}
	return *m, true
}

// Members returns every member ordered by count, highest first, with ties
// broken by ascending symbols.
func (c *Cluster[K, V]) Members() []Member[V] {
	out := make([]Member[V], 0, len(c.members))
	for _, m := range c.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Seq.Key().Compare(out[j].Seq.Key()) < 0
	})
	return out
}

// Majority returns the first member of Members.
func (c *Cluster[K, V]) Majority() Member[V] {
	var best *Member[V]
	for _, m := range c.members {
		if best == nil || m.Count > best.Count ||
			(m.Count == best.Count && m.Seq.Key().Compare(best.Seq.Key()) < 0) {
			best = m
		}
	}
	return *best
}

// Minorities returns Members without the majority.
func (c *Cluster[K, V]) Minorities() []Member[V] {
	return c.Members()[1:]
}

func (c *Cluster[K, V]) add(value sequence.Sequence[V], inc int) {
	k := value.Key()
	m, ok := c.members[k]
	if !ok {
		m = &Member[V]{Seq: value}
		c.members[k] = m
	}
	m.Count += inc
	c.total += inc
	if m.Count > c.max {
		c.max = m.Count
	}
}

// Index maps cluster keys of role K to inner sequences of role V.
type Index[K, V sequence.Width] struct {
	clusters map[sequence.Symbols[K]]*Cluster[K, V]
}

// UMIToCDR groups variable regions under the barcode they were read with.
type UMIToCDR = Index[sequence.UMIWidth, sequence.CDRWidth]

// CDRToUMI groups barcodes under the variable region they were read with.
type CDRToUMI = Index[sequence.CDRWidth, sequence.UMIWidth]

// New creates an empty index.
func New[K, V sequence.Width]() *Index[K, V] {
	return &Index[K, V]{clusters: make(map[sequence.Symbols[K]]*Cluster[K, V])}
}

// Record adds inc to the count of value under key, creating the cluster and
// the member as needed. A zero increment still creates both.
func (ix *Index[K, V]) Record(key sequence.Sequence[K], value sequence.Sequence[V], inc int) error {
	if inc < 0 {
		return fmt.Errorf("increment must be non-negative, got %d", inc)
	}

	k := key.Key()
	c, ok := ix.clusters[k]
	if !ok {
		c = &Cluster[K, V]{
			key:     key,
			members: make(map[sequence.Symbols[V]]*Member[V], 1),
		}
		ix.clusters[k] = c
	}
	c.add(value, inc)
	return nil
}

// Len returns the number of clusters.
func (ix *Index[K, V]) Len() int {
	return len(ix.clusters)
}

// Total returns the sum of all counts in the index.
func (ix *Index[K, V]) Total() int {
	total := 0
	for _, c := range ix.clusters {
		total += c.total
	}
	return total
}

// Get returns the cluster keyed on the given symbols.
func (ix *Index[K, V]) Get(key sequence.Symbols[K]) (*Cluster[K, V], bool) {
	c, ok := ix.clusters[key]
	return c, ok
}

// Has reports whether a cluster exists for key.
func (ix *Index[K, V]) Has(key sequence.Symbols[K]) bool {
	_, ok := ix.clusters[key]
	return ok
}

// Range calls fn for every cluster in unspecified order until fn returns
// false.
func (ix *Index[K, V]) Range(fn func(*Cluster[K, V]) bool) {
	for _, c := range ix.clusters {
		if !fn(c) {
			return
		}
	}
}

// Sorted returns the clusters ordered by their largest member count,
// highest first, with ties broken by ascending key symbols.
func (ix *Index[K, V]) Sorted() []*Cluster[K, V] {
	out := make([]*Cluster[K, V], 0, len(ix.clusters))
	for _, c := range ix.clusters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].max != out[j].max {
			return out[i].max > out[j].max
		}
		return out[i].key.Key().Compare(out[j].key.Key()) < 0
	})
	return out
}

// FilterThreshold removes every cluster whose total is at most t and
// returns how many were removed. Raising t only ever removes more.
func (ix *Index[K, V]) FilterThreshold(t int) int {
	removed := 0
	for k, c := range ix.clusters {
		if c.total <= t {
			delete(ix.clusters, k)
			removed++
		}
	}
	return removed
}

// Merge adds every count of other into ix. Sequences already present in ix
// keep their stored qualities.
func (ix *Index[K, V]) Merge(other *Index[K, V]) {
	for k, oc := range other.clusters {
		c, ok := ix.clusters[k]
		if !ok {
			c = &Cluster[K, V]{
				key:     oc.key,
				members: make(map[sequence.Symbols[V]]*Member[V], len(oc.members)),
			}
			ix.clusters[k] = c
		}
		for _, m := range oc.members {
			c.add(m.Seq, m.Count)
		}
	}
}

func (ix *Index[K, V]) String() string {
	return fmt.Sprintf("Index { clusters: %d, total: %d }", ix.Len(), ix.Total())
}
