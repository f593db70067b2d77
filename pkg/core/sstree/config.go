package sstree

import "fmt"

// DefaultMaxEntries is the reference node fan-out used when the config does
// not specify one.
const DefaultMaxEntries = 20

// Config holds the construction parameters of a Tree.
type Config struct {
	// Name labels the tree in the exported metrics. Defaults to "default".
	Name string
	// MaxEntries is M, the maximum number of entries per node (records for
	// leaves, children for internal nodes). The minimum per split half is
	// m = M/2. Defaults to DefaultMaxEntries when <= 0; values below 2 are
	// rejected.
	MaxEntries int
	// Dim fixes the embedding dimensionality. When 0 it is inferred from the
	// first inserted record.
	Dim int
}

// withDefaults normalizes the config and validates it.
func (c Config) withDefaults() (Config, error) {
	if c.Name == "" {
		c.Name = "default"
	}
	if c.MaxEntries <= 0 {
		c.MaxEntries = DefaultMaxEntries
	}
	if c.MaxEntries < 2 {
		return c, fmt.Errorf("max entries per node must be at least 2, got %d", c.MaxEntries)
	}
	if c.Dim < 0 {
		return c, fmt.Errorf("dimension must be non-negative, got %d", c.Dim)
	}
	return c, nil
}
