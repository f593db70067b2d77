package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/sstree/pkg/core/record"
	"github.com/sanonone/sstree/pkg/core/sstree"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML workload file (optional)")
	points := flag.Int("points", 0, "Number of random records to insert (overrides the workload file)")
	dim := flag.Int("dim", 0, "Embedding dimensionality (overrides the workload file)")
	maxEntries := flag.Int("max-entries", 0, "Max entries per tree node (overrides the workload file)")
	seed := flag.Int64("seed", 0, "Random seed (overrides the workload file)")
	metricsAddr := flag.String("metrics-addr", "", "Address for the Prometheus /metrics endpoint (e.g. :9091); empty disables it")

	flag.Parse()

	workload := defaultWorkload()
	if *configPath != "" {
		var err error
		workload, err = LoadWorkload(*configPath)
		if err != nil {
			log.Fatalf("Cannot load workload: %v", err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "points":
			workload.Points = *points
		case "dim":
			workload.Dim = *dim
		case "max-entries":
			workload.MaxEntries = *maxEntries
		case "seed":
			workload.Seed = *seed
		}
	})

	if err := run(workload); err != nil {
		log.Fatalf("Run failed: %v", err)
	}

	if *metricsAddr != "" {
		serveMetrics(*metricsAddr)
	}
}

// run builds the tree from the workload and verifies its structure.
func run(w Workload) error {
	if w.Points <= 0 || w.Dim <= 0 {
		return fmt.Errorf("workload needs a positive point count and dimension (got points=%d, dim=%d)", w.Points, w.Dim)
	}
	log.Printf("Loading %d random records (dim=%d, M=%d, seed=%d)", w.Points, w.Dim, w.MaxEntries, w.Seed)

	tree, err := sstree.New(sstree.Config{
		Name:       "driver",
		MaxEntries: w.MaxEntries,
		Dim:        w.Dim,
	})
	if err != nil {
		return err
	}

	reg := record.NewRegistry()
	rng := rand.New(rand.NewSource(w.Seed))
	records, err := reg.GenerateRandom(rng, w.Points, w.Dim, w.Min, w.Max)
	if err != nil {
		return err
	}

	start := time.Now()
	for _, rec := range records {
		if err := tree.Insert(rec); err != nil {
			return err
		}
	}
	elapsed := time.Since(start)
	log.Printf("Inserted %d records in %v (%.0f inserts/s)",
		tree.Len(), elapsed, float64(tree.Len())/elapsed.Seconds())
	log.Printf("Tree shape: depth=%d, records=%d", tree.Depth(), tree.Len())

	verify(tree, records)
	log.Println("All structural checks passed.")
	return nil
}

// verify runs the structural checks of the end-to-end driver and aborts the
// process on the first violation.
func verify(tree *sstree.Tree, records []*record.Record) {
	root := tree.Root()

	if !allDataPresent(root, records) {
		log.Fatal("CHECK FAILED: not all inserted records are reachable from the root")
	}
	if !leavesAtSameLevel(root) {
		log.Fatal("CHECK FAILED: leaves are not all at the same level")
	}
	if !noNodeExceedsMaxEntries(root, tree.MaxEntries()) {
		log.Fatal("CHECK FAILED: a node exceeds the maximum entry count")
	}
	if !sphereCoversAllRecords(root) {
		log.Fatal("CHECK FAILED: a leaf sphere does not cover all of its records")
	}
	if !sphereCoversAllChildSpheres(root) {
		log.Fatal("CHECK FAILED: a parent sphere does not cover a child sphere")
	}
	for _, rec := range records {
		if tree.Search(rec) == nil {
			log.Fatalf("CHECK FAILED: record '%s' is not locatable", rec.ID())
		}
	}
}

// serveMetrics exposes the Prometheus registry and blocks until interrupted.
func serveMetrics(addr string) {
	http.Handle("/metrics", promhttp.Handler())
	log.Printf("Serving Prometheus metrics on %s/metrics", addr)

	go func() {
		log.Fatal(http.ListenAndServe(addr, nil))
	}()

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan
}
