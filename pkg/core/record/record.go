// Package record defines the records indexed by the SS-Tree and the Registry
// that owns them.
//
// A Record is an immutable association between an opaque external identifier
// and one embedding. The tree itself never owns records: it stores shared
// *Record references handed out by a Registry (or by any other external
// owner), so records must outlive every tree that indexes them.
package record

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/btree"

	"github.com/sanonone/sstree/pkg/core/point"
)

// Record associates an external identifier with an embedding.
// Records compare by identifier. Neither field changes after construction;
// callers must not mutate the returned embedding.
type Record struct {
	id        string
	embedding point.Point
}

// New creates a record. The embedding is referenced, not copied.
func New(id string, embedding point.Point) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("record ID must not be empty")
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("record '%s' has an empty embedding", id)
	}
	return &Record{id: id, embedding: embedding}, nil
}

// ID returns the external identifier.
func (r *Record) ID() string {
	return r.id
}

// Embedding returns the record's embedding. The slice is shared; treat it as
// read-only.
func (r *Record) Embedding() point.Point {
	return r.embedding
}

// recordLess orders records by identifier.
func recordLess(a, b *Record) bool {
	return a.id < b.id
}

// Registry is the ownership layer for records: it keeps them ordered by
// identifier and rejects identifier collisions, so every record reference the
// tree holds stays valid and unique for the Registry's lifetime.
type Registry struct {
	mu      sync.RWMutex
	records *btree.BTreeG[*Record]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: btree.NewBTreeG[*Record](recordLess),
	}
}

// Add creates a record and registers it. It returns an error if the ID is
// already taken; embeddings are not compared here (duplicate embeddings under
// distinct IDs are legal at this layer, the tree applies its own suppression).
func (reg *Registry) Add(id string, embedding point.Point) (*Record, error) {
	rec, err := New(id, embedding)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, exists := reg.records.Get(&Record{id: id}); exists {
		return nil, fmt.Errorf("ID '%s' already exists", id)
	}
	reg.records.Set(rec)
	return rec, nil
}

// Get retrieves a record by identifier.
func (reg *Registry) Get(id string) (*Record, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.records.Get(&Record{id: id})
}

// Len returns the number of registered records.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return reg.records.Len()
}

// Ascend iterates over all records in identifier order until the callback
// returns false.
func (reg *Registry) Ascend(iter func(*Record) bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	reg.records.Scan(iter)
}

// GenerateRandom registers n records with uuid identifiers and uniform random
// embeddings drawn from rng, and returns them in insertion order. It is used
// by the load driver and the tests.
func (reg *Registry) GenerateRandom(rng *rand.Rand, n, dim int, min, max float32) ([]*Record, error) {
	out := make([]*Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := reg.Add(uuid.NewString(), point.RandomFrom(rng, dim, min, max))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
