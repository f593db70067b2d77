package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Workload describes one load-and-verify run of the driver.
type Workload struct {
	// Points is the number of random records to generate and insert.
	Points int `yaml:"points"`
	// Dim is the embedding dimensionality.
	Dim int `yaml:"dim"`
	// MaxEntries is the node fan-out M of the tree under test.
	MaxEntries int `yaml:"max_entries"`
	// Seed feeds the embedding generator so runs are reproducible.
	Seed int64 `yaml:"seed"`
	// Min and Max bound the uniform coordinate distribution.
	Min float32 `yaml:"min"`
	Max float32 `yaml:"max"`
}

// defaultWorkload mirrors the reference configuration: 1,000 records of
// dimension 768 in a tree with M = 20.
func defaultWorkload() Workload {
	return Workload{
		Points:     1000,
		Dim:        768,
		MaxEntries: 20,
		Seed:       42,
		Min:        0,
		Max:        1,
	}
}

// LoadWorkload reads and parses the YAML workload file from the given path.
// It uses Strict Mode (KnownFields) to prevent silent errors due to typos.
func LoadWorkload(path string) (Workload, error) {
	w := defaultWorkload()

	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("failed to read workload file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&w); err != nil {
		return w, fmt.Errorf("failed to parse workload file '%s': %w", path, err)
	}

	if w.Points <= 0 {
		return w, fmt.Errorf("workload must insert at least one point")
	}
	if w.Dim <= 0 {
		return w, fmt.Errorf("workload dimension must be positive")
	}
	if w.Max <= w.Min {
		return w, fmt.Errorf("workload max must exceed min")
	}
	return w, nil
}
