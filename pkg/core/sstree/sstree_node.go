package sstree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sanonone/sstree/pkg/core/distance"
	"github.com/sanonone/sstree/pkg/core/point"
	"github.com/sanonone/sstree/pkg/core/record"
	"github.com/sanonone/sstree/pkg/metrics"
)

// params carries the per-tree configuration shared by every node of one tree.
type params struct {
	name       string
	maxEntries int
	minEntries int
	distFn     distance.DistanceFuncF32
}

// Node is a single node of the SS-Tree. A node is either a leaf, holding
// records, or internal, holding child nodes; in both cases its bounding
// sphere (centroid + radius) contains every entry.
type Node struct {
	p *params

	centroid point.Point
	radius   float64
	leaf     bool

	// children is populated for internal nodes, records for leaves.
	children []*Node
	records  []*Record
}

// Record is the record type indexed by this package, aliased so the node
// observation interface is self-contained.
type Record = record.Record

// newLeafNode builds a leaf from the given records and computes its envelope.
func newLeafNode(p *params, records []*Record) *Node {
	n := &Node{p: p, leaf: true, records: records}
	n.updateEnvelope()
	return n
}

// newInternalNode builds an internal node from the given children and
// computes its envelope.
func newInternalNode(p *params, children []*Node) *Node {
	n := &Node{p: p, leaf: false, children: children}
	n.updateEnvelope()
	return n
}

// --- Observation interface (read-only) ---

// Centroid returns the node's centroid. The slice is shared; treat it as
// read-only.
func (n *Node) Centroid() point.Point {
	return n.centroid
}

// Radius returns the radius of the node's bounding sphere.
func (n *Node) Radius() float64 {
	return n.radius
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.leaf
}

// Children returns the child nodes of an internal node (nil for leaves).
func (n *Node) Children() []*Node {
	return n.children
}

// Records returns the records of a leaf node (nil for internal nodes).
func (n *Node) Records() []*Record {
	return n.records
}

// --- Geometry helpers ---

// distanceTo returns the Euclidean distance between two points, using the
// tree's kernel. Dimensions are validated at the Tree boundary, so the kernel
// error cannot trigger here.
func (n *Node) distanceTo(a, b point.Point) float64 {
	sq, _ := n.p.distFn(a, b)
	return math.Sqrt(sq)
}

// contains reports whether the point lies inside the node's bounding sphere.
// An Epsilon slack absorbs the float rounding accumulated along the
// containment chain from the root down to the leaves.
func (n *Node) contains(target point.Point) bool {
	return n.distanceTo(n.centroid, target) <= n.radius+point.Epsilon
}

// entryCentroids returns the centroids of the node's entries: the records'
// embeddings for a leaf, the children's centroids for an internal node.
func (n *Node) entryCentroids() []point.Point {
	if n.leaf {
		out := make([]point.Point, len(n.records))
		for i, r := range n.records {
			out[i] = r.Embedding()
		}
		return out
	}
	out := make([]point.Point, len(n.children))
	for i, c := range n.children {
		out[i] = c.centroid
	}
	return out
}

// updateEnvelope recomputes the node's centroid as the arithmetic mean of its
// entry centroids and grows the radius until every entry is contained. For
// internal nodes the radius must cover the children's whole spheres, not just
// their centroids, or the child-containment invariant breaks.
func (n *Node) updateEnvelope() {
	centroids := n.entryCentroids()
	if len(centroids) == 0 {
		return
	}

	acc := point.New(centroids[0].Dim())
	for _, c := range centroids {
		_ = acc.AddInPlace(c)
	}
	_ = acc.DivideInPlace(float32(len(centroids)))
	n.centroid = acc

	var radius float64
	if n.leaf {
		for _, r := range n.records {
			if d := n.distanceTo(n.centroid, r.Embedding()); d > radius {
				radius = d
			}
		}
	} else {
		for _, c := range n.children {
			if d := n.distanceTo(n.centroid, c.centroid) + c.radius; d > radius {
				radius = d
			}
		}
	}
	n.radius = radius
}

// --- Split policy ---

// sampleVariance returns the Bessel-corrected sample variance, defined as 0
// for fewer than two values.
func sampleVariance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.Variance(values, nil)
}

// directionOfMaxVariance returns the axis along which the entry centroids
// have the highest sample variance. Ties go to the lowest axis.
func (n *Node) directionOfMaxVariance() int {
	centroids := n.entryCentroids()
	dim := centroids[0].Dim()
	values := make([]float64, len(centroids))

	direction := 0
	maxVariance := -1.0
	for k := 0; k < dim; k++ {
		for i, c := range centroids {
			values[i] = float64(c[k])
		}
		if v := sampleVariance(values); v > maxVariance {
			maxVariance = v
			direction = k
		}
	}
	return direction
}

// sortEntriesByAxis reorders the node's entries ascending by their centroid
// coordinate along axis k, so that a split index partitions the entries
// themselves and not just a projection of them.
func (n *Node) sortEntriesByAxis(k int) {
	if n.leaf {
		sort.SliceStable(n.records, func(i, j int) bool {
			return n.records[i].Embedding()[k] < n.records[j].Embedding()[k]
		})
		return
	}
	sort.SliceStable(n.children, func(i, j int) bool {
		return n.children[i].centroid[k] < n.children[j].centroid[k]
	})
}

// findSplitIndex returns the index s, with m <= s <= len(entries)-m, that
// minimizes the summed sample variance of the two partitions [0, s) and
// [s, end) along axis k. The entries must already be sorted along k. Ties go
// to the smallest s.
func (n *Node) findSplitIndex(k int) int {
	centroids := n.entryCentroids()
	values := make([]float64, len(centroids))
	for i, c := range centroids {
		values[i] = float64(c[k])
	}
	return minVarianceSplit(values, n.p.minEntries)
}

// minVarianceSplit scans the candidate split positions of a sorted value
// sequence and returns the one with the smallest summed partition variance.
func minVarianceSplit(values []float64, m int) int {
	splitIndex := m
	minVariance := math.Inf(1)
	for s := m; s <= len(values)-m; s++ {
		if v := sampleVariance(values[:s]) + sampleVariance(values[s:]); v < minVariance {
			minVariance = v
			splitIndex = s
		}
	}
	return splitIndex
}

// split partitions an overfull node into two nodes of the same kind along the
// axis of maximum variance. The caller replaces the node with the returned
// pair.
func (n *Node) split() (*Node, *Node) {
	k := n.directionOfMaxVariance()
	n.sortEntriesByAxis(k)
	s := n.findSplitIndex(k)

	metrics.NodeSplitsTotal.WithLabelValues(n.p.name).Inc()

	if n.leaf {
		left := make([]*Record, s)
		copy(left, n.records[:s])
		right := make([]*Record, len(n.records)-s)
		copy(right, n.records[s:])
		return newLeafNode(n.p, left), newLeafNode(n.p, right)
	}

	left := make([]*Node, s)
	copy(left, n.children[:s])
	right := make([]*Node, len(n.children)-s)
	copy(right, n.children[s:])
	return newInternalNode(n.p, left), newInternalNode(n.p, right)
}

// --- Insertion ---

// closestChild returns the child whose centroid is nearest to target. Ties go
// to the earliest child.
func (n *Node) closestChild(target point.Point) *Node {
	closest := n.children[0]
	minDist := n.distanceTo(closest.centroid, target)
	for _, c := range n.children[1:] {
		if d := n.distanceTo(c.centroid, target); d < minDist {
			minDist = d
			closest = c
		}
	}
	return closest
}

// insert adds the record to the subtree rooted at n. It returns the two split
// halves when the insertion overflowed n, or nils when n absorbed it; added
// reports whether the record was actually stored (false for a suppressed
// duplicate).
func (n *Node) insert(rec *Record) (left, right *Node, added bool) {
	if n.leaf {
		for _, existing := range n.records {
			if point.Equal(existing.Embedding(), rec.Embedding()) {
				return nil, nil, false
			}
		}
		n.records = append(n.records, rec)
		n.updateEnvelope()
		if len(n.records) <= n.p.maxEntries {
			return nil, nil, true
		}
		left, right = n.split()
		return left, right, true
	}

	child := n.closestChild(rec.Embedding())
	childLeft, childRight, added := child.insert(rec)
	if childLeft == nil {
		n.updateEnvelope()
		return nil, nil, added
	}

	// The child overflowed: erase it and adopt its two halves.
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			break
		}
	}
	n.children = append(n.children, childLeft, childRight)
	n.updateEnvelope()

	if len(n.children) <= n.p.maxEntries {
		return nil, nil, added
	}
	left, right = n.split()
	return left, right, added
}

// --- Search ---

// search returns the leaf under n holding a record whose embedding equals
// target within Epsilon, or nil. Bounding spheres may overlap, so every
// intersecting child is explored until one of them yields a hit.
func (n *Node) search(target point.Point) *Node {
	if n.leaf {
		for _, r := range n.records {
			if point.Equal(r.Embedding(), target) {
				return n
			}
		}
		return nil
	}
	for _, c := range n.children {
		if !c.contains(target) {
			continue
		}
		if hit := c.search(target); hit != nil {
			return hit
		}
	}
	return nil
}
