// Package sstree implements a Similarity Search Tree: a height-balanced
// spatial index over fixed-dimension embedding vectors, with bounding-sphere
// node envelopes and a variance-driven split policy.
//
// The tree supports insertion of externally-owned records and exact
// membership lookup. After every completed insertion it maintains three
// structural invariants: all leaves sit at the same depth, every node holds
// at most MaxEntries entries, and every node's bounding sphere contains all
// of its entries (records for leaves, whole child spheres for internal
// nodes).
//
// The index is a single-writer, single-threaded structure and offers no
// thread-safety guarantees of its own; callers that need concurrent readers
// with an exclusive writer must wrap it in their own synchronization.
package sstree

import (
	"fmt"

	"github.com/sanonone/sstree/pkg/core/distance"
	"github.com/sanonone/sstree/pkg/core/point"
	"github.com/sanonone/sstree/pkg/metrics"
)

// Tree is the index façade. It owns the root node, routes insertions to it,
// and grows a new root whenever the old one splits.
type Tree struct {
	p    *params
	dim  int
	root *Node

	// count is the number of distinct records stored; depth the number of
	// levels from root to leaves (0 for an empty tree).
	count int
	depth int
}

// New constructs an empty tree from the given config.
func New(cfg Config) (*Tree, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	distFn, err := distance.GetFloat32Func(distance.Euclidean)
	if err != nil {
		return nil, err
	}

	return &Tree{
		p: &params{
			name:       cfg.Name,
			maxEntries: cfg.MaxEntries,
			minEntries: cfg.MaxEntries / 2,
			distFn:     distFn,
		},
		dim: cfg.Dim,
	}, nil
}

// Insert adds a record to the index. A record whose embedding already exists
// in the tree (within Epsilon, elementwise) is silently suppressed, which
// makes Insert idempotent. The tree keeps a reference to the record; the
// caller retains ownership and must not mutate the embedding afterwards.
func (t *Tree) Insert(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("cannot insert a nil record")
	}
	if t.dim == 0 {
		t.dim = rec.Embedding().Dim()
	} else if rec.Embedding().Dim() != t.dim {
		return fmt.Errorf("record '%s' has dimension %d, tree expects %d", rec.ID(), rec.Embedding().Dim(), t.dim)
	}

	metrics.InsertsTotal.WithLabelValues(t.p.name).Inc()

	if t.root == nil {
		t.root = newLeafNode(t.p, []*Record{rec})
		t.count = 1
		t.depth = 1
		t.publishGauges()
		return nil
	}

	// The record may already sit in a leaf that closest-child descent does
	// not reach, so look it up across the whole tree first.
	if t.root.search(rec.Embedding()) != nil {
		return nil
	}

	left, right, added := t.root.insert(rec)
	if left != nil {
		// Root split: promote a fresh internal root over the two halves.
		t.root = newInternalNode(t.p, []*Node{left, right})
		t.depth++
	}
	if added {
		t.count++
	}
	t.publishGauges()
	return nil
}

// Search returns the leaf node holding a record whose embedding equals the
// given record's embedding within Epsilon, or nil when no such record is
// stored (including on an empty tree).
func (t *Tree) Search(rec *Record) *Node {
	if rec == nil {
		return nil
	}
	return t.SearchPoint(rec.Embedding())
}

// SearchPoint is Search for a bare embedding.
func (t *Tree) SearchPoint(target point.Point) *Node {
	if t.root == nil || target.Dim() != t.dim {
		return nil
	}
	return t.root.search(target)
}

// Root exposes the root node for structural inspection. It is nil until the
// first insertion.
func (t *Tree) Root() *Node {
	return t.root
}

// Len returns the number of distinct records stored.
func (t *Tree) Len() int {
	return t.count
}

// Depth returns the number of levels in the tree: 0 when empty, 1 while the
// root is a leaf.
func (t *Tree) Depth() int {
	return t.depth
}

// MaxEntries returns M, the node capacity.
func (t *Tree) MaxEntries() int {
	return t.p.maxEntries
}

// MinEntries returns m = M/2, the minimum size of a split half.
func (t *Tree) MinEntries() int {
	return t.p.minEntries
}

func (t *Tree) publishGauges() {
	metrics.TotalRecords.WithLabelValues(t.p.name).Set(float64(t.count))
	metrics.TreeDepth.WithLabelValues(t.p.name).Set(float64(t.depth))
}
