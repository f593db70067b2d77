package sstree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/sanonone/sstree/pkg/core/point"
	"github.com/sanonone/sstree/pkg/core/record"
)

// --- Structural invariant checkers ---
// These mirror the end-to-end checks of the original load driver: balance,
// capacity, point containment, child-sphere containment and completeness.

func collectRecords(n *Node, out map[*Record]struct{}) {
	if n == nil {
		return
	}
	if n.IsLeaf() {
		for _, r := range n.Records() {
			out[r] = struct{}{}
		}
		return
	}
	for _, c := range n.Children() {
		collectRecords(c, out)
	}
}

func leafDepths(n *Node, depth int, out *[]int) {
	if n.IsLeaf() {
		*out = append(*out, depth)
		return
	}
	for _, c := range n.Children() {
		leafDepths(c, depth+1, out)
	}
}

func checkInvariants(t *testing.T, tree *Tree, inserted []*Record) {
	t.Helper()
	root := tree.Root()
	if root == nil {
		t.Fatal("nil root")
	}

	// P1: all leaves at the same depth.
	var depths []int
	leafDepths(root, 0, &depths)
	for _, d := range depths {
		if d != depths[0] {
			t.Fatalf("unbalanced tree: leaf depths %v", depths)
		}
	}

	// P2-P4 via DFS.
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			if len(n.Records()) > tree.MaxEntries() {
				t.Fatalf("leaf holds %d records, max is %d", len(n.Records()), tree.MaxEntries())
			}
			for _, r := range n.Records() {
				d, err := point.Distance(n.Centroid(), r.Embedding())
				if err != nil {
					t.Fatal(err)
				}
				if d > n.Radius()+point.Epsilon {
					t.Fatalf("record outside its leaf sphere: dist %v > radius %v", d, n.Radius())
				}
			}
			return
		}
		if len(n.Children()) > tree.MaxEntries() {
			t.Fatalf("node holds %d children, max is %d", len(n.Children()), tree.MaxEntries())
		}
		for _, c := range n.Children() {
			d, err := point.Distance(n.Centroid(), c.Centroid())
			if err != nil {
				t.Fatal(err)
			}
			if d+c.Radius() > n.Radius()+point.Epsilon {
				t.Fatalf("child sphere outside its parent: %v + %v > %v", d, c.Radius(), n.Radius())
			}
			walk(c)
		}
	}
	walk(root)

	// P5: the records reachable by DFS are exactly the distinct inserted ones.
	reachable := make(map[*Record]struct{})
	collectRecords(root, reachable)
	if len(reachable) != len(inserted) {
		t.Fatalf("tree holds %d records, inserted %d", len(reachable), len(inserted))
	}
	for _, r := range inserted {
		if _, ok := reachable[r]; !ok {
			t.Fatalf("record '%s' not reachable from the root", r.ID())
		}
	}
}

// loadRandom inserts n random records and returns them.
func loadRandom(t testing.TB, tree *Tree, n, dim int, seed int64) []*Record {
	t.Helper()
	reg := record.NewRegistry()
	recs, err := reg.GenerateRandom(rand.New(rand.NewSource(seed)), n, dim, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range recs {
		if err := tree.Insert(rec); err != nil {
			t.Fatal(err)
		}
	}
	return recs
}

// --- End-to-end scenarios ---

func TestEmptyTreeSearch(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20})
	if err != nil {
		t.Fatal(err)
	}

	rec, _ := record.New("ghost", point.Random(8, 0, 1))
	if got := tree.Search(rec); got != nil {
		t.Errorf("search on an empty tree returned %v", got)
	}
	if tree.Root() != nil || tree.Len() != 0 || tree.Depth() != 0 {
		t.Error("empty tree should have no root, no records, depth 0")
	}
}

func TestSingleInsert(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20})
	if err != nil {
		t.Fatal(err)
	}

	emb := point.From([]float32{0.25, 0.5, 0.75})
	rec, _ := record.New("only", emb)
	if err := tree.Insert(rec); err != nil {
		t.Fatal(err)
	}

	root := tree.Root()
	if root == nil || !root.IsLeaf() {
		t.Fatal("root should be a leaf after one insert")
	}
	if len(root.Records()) != 1 || root.Records()[0] != rec {
		t.Fatal("root should hold exactly the inserted record")
	}
	if !point.Equal(root.Centroid(), emb) {
		t.Errorf("centroid = %v, want the embedding", root.Centroid())
	}
	if root.Radius() != 0 {
		t.Errorf("radius = %v, want 0", root.Radius())
	}
	if got := tree.Search(rec); got != root {
		t.Error("search should return the root leaf")
	}
}

func TestFillOneLeaf(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20})
	if err != nil {
		t.Fatal(err)
	}
	recs := loadRandom(t, tree, 20, 32, 1)

	root := tree.Root()
	if !root.IsLeaf() {
		t.Fatal("root should still be a leaf at exactly M records")
	}
	if len(root.Records()) != 20 {
		t.Fatalf("root holds %d records, want 20", len(root.Records()))
	}
	checkInvariants(t, tree, recs)
}

func TestFirstSplit(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20})
	if err != nil {
		t.Fatal(err)
	}
	recs := loadRandom(t, tree, 21, 32, 2)

	root := tree.Root()
	if root.IsLeaf() {
		t.Fatal("root should be internal after the first split")
	}
	if len(root.Children()) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children()))
	}
	for _, c := range root.Children() {
		if !c.IsLeaf() {
			t.Fatal("both root children should be leaves")
		}
		if len(c.Records()) < tree.MinEntries() || len(c.Records()) > tree.MaxEntries() {
			t.Fatalf("leaf holds %d records, want between %d and %d",
				len(c.Records()), tree.MinEntries(), tree.MaxEntries())
		}
	}
	if tree.Depth() != 2 {
		t.Errorf("depth = %d, want 2", tree.Depth())
	}
	checkInvariants(t, tree, recs)
}

func TestBulkLoad(t *testing.T) {
	tree, err := New(Config{Name: "bulk", MaxEntries: 20, Dim: 768})
	if err != nil {
		t.Fatal(err)
	}
	recs := loadRandom(t, tree, 1000, 768, 42)

	if tree.Len() != 1000 {
		t.Fatalf("tree holds %d records, want 1000", tree.Len())
	}
	if tree.Depth() < 2 {
		t.Fatalf("depth = %d, want >= 2", tree.Depth())
	}
	checkInvariants(t, tree, recs)

	// P6: every inserted record is locatable, and the returned leaf holds it.
	for _, rec := range recs {
		leaf := tree.Search(rec)
		if leaf == nil {
			t.Fatalf("record '%s' not found", rec.ID())
		}
		found := false
		for _, r := range leaf.Records() {
			if r == rec {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("search returned a leaf that does not hold record '%s'", rec.ID())
		}
	}
}

func TestOddFanout(t *testing.T) {
	// A small odd M exercises m = 3 split bounds on deep trees.
	tree, err := New(Config{MaxEntries: 7})
	if err != nil {
		t.Fatal(err)
	}
	if tree.MinEntries() != 3 {
		t.Fatalf("m = %d, want 3", tree.MinEntries())
	}
	recs := loadRandom(t, tree, 200, 16, 3)
	checkInvariants(t, tree, recs)

	for _, rec := range recs {
		if tree.Search(rec) == nil {
			t.Fatalf("record '%s' not found", rec.ID())
		}
	}
}

func TestDuplicateSuppression(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20})
	if err != nil {
		t.Fatal(err)
	}

	emb := point.From([]float32{0.1, 0.2, 0.3})
	rec, _ := record.New("twin", emb)
	if err := tree.Insert(rec); err != nil {
		t.Fatal(err)
	}
	if err := tree.Insert(rec); err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 1 {
		t.Errorf("tree holds %d records after a double insert, want 1", tree.Len())
	}

	// A distinct record with an embedding equal within Epsilon is suppressed
	// too: embedding equality is the deduplication predicate.
	near, _ := record.New("twin-2", point.From([]float32{0.1 + point.Epsilon/2, 0.2, 0.3}))
	if err := tree.Insert(near); err != nil {
		t.Fatal(err)
	}
	if tree.Len() != 1 {
		t.Errorf("tree holds %d records, embedding-equal insert should be suppressed", tree.Len())
	}

	reachable := make(map[*Record]struct{})
	collectRecords(tree.Root(), reachable)
	if len(reachable) != 1 {
		t.Errorf("DFS found %d records, want 1", len(reachable))
	}
}

func TestInsertValidation(t *testing.T) {
	tree, err := New(Config{MaxEntries: 20, Dim: 4})
	if err != nil {
		t.Fatal(err)
	}

	if err := tree.Insert(nil); err == nil {
		t.Error("expected an error for a nil record")
	}

	bad, _ := record.New("short", point.From([]float32{1, 2}))
	if err := tree.Insert(bad); err == nil {
		t.Error("expected a dimension mismatch error")
	}

	ok, _ := record.New("fit", point.From([]float32{1, 2, 3, 4}))
	if err := tree.Insert(ok); err != nil {
		t.Errorf("valid insert failed: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	if _, err := New(Config{MaxEntries: 1}); err == nil {
		t.Error("MaxEntries = 1 must be rejected")
	}

	tree, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	if tree.MaxEntries() != DefaultMaxEntries {
		t.Errorf("default MaxEntries = %d, want %d", tree.MaxEntries(), DefaultMaxEntries)
	}
	if tree.MinEntries() != DefaultMaxEntries/2 {
		t.Errorf("default MinEntries = %d, want %d", tree.MinEntries(), DefaultMaxEntries/2)
	}
}

// --- BENCHMARKS ---

func BenchmarkInsert(b *testing.B) {
	// The record pool is generated once, outside the timed loop; beyond the
	// pool size the benchmark measures descent plus duplicate suppression.
	const poolSize = 10000
	dims := []int{128, 768}
	for _, dim := range dims {
		b.Run(fmt.Sprintf("Insert_%dD", dim), func(b *testing.B) {
			reg := record.NewRegistry()
			rng := rand.New(rand.NewSource(42))
			recs, err := reg.GenerateRandom(rng, poolSize, dim, 0, 1)
			if err != nil {
				b.Fatal(err)
			}
			tree, _ := New(Config{MaxEntries: 20, Dim: dim})

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := tree.Insert(recs[i%poolSize]); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSearch(b *testing.B) {
	const dim = 768
	reg := record.NewRegistry()
	rng := rand.New(rand.NewSource(42))
	recs, err := reg.GenerateRandom(rng, 1000, dim, 0, 1)
	if err != nil {
		b.Fatal(err)
	}
	tree, _ := New(Config{MaxEntries: 20, Dim: dim})
	for _, rec := range recs {
		if err := tree.Insert(rec); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if tree.Search(recs[i%len(recs)]) == nil {
			b.Fatal("stored record not found")
		}
	}
}
