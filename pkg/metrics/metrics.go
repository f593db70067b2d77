package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Define global variables for metrics.
// We use 'promauto' which automatically registers metrics without complex initialization.

var (
	// 1. Inserts Total (Counter)
	// Counts completed insertions, including suppressed duplicates.
	InsertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sstree_inserts_total",
			Help: "Total number of insert operations processed",
		},
		[]string{"tree"}, // Labels
	)

	// 2. Node Splits (Counter)
	// Counts node splits, the tree's only rebalancing mechanism.
	NodeSplitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sstree_node_splits_total",
			Help: "Total number of node splits performed",
		},
		[]string{"tree"},
	)

	// 3. Record Count (Gauge)
	// Tracks the number of distinct records currently indexed.
	TotalRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sstree_records_total",
			Help: "Total number of indexed records",
		},
		[]string{"tree"},
	)

	// 4. Tree Depth (Gauge)
	// The number of levels from the root to the leaves.
	TreeDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sstree_depth",
			Help: "Current depth of the tree (0 for an empty tree)",
		},
		[]string{"tree"},
	)
)
