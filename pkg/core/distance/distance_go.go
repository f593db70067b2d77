// Package distance provides functions for calculating vector distances.
// It implements the Euclidean metric over float32 and float16 vectors.
//
// The package uses build tags and runtime CPU detection to dispatch to the most
// optimized implementation available, such as pure Go, Gonum (BLAS/SIMD), or
// hardware-accelerated AVX2 routines.
package distance

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/klauspost/cpuid/v2"
	"github.com/x448/float16"
	"gonum.org/v1/gonum/blas/gonum"
)

func init() {
	// Override defaults with optimized versions from Gonum.
	// Gonum handles SIMD dispatch internally.
	if cpuid.CPU.Has(cpuid.AVX2) {
		float32Funcs[Euclidean] = squaredEuclideanGonum
	}

	log.Println("sstree compute engine: using PURE GO / GONUM implementation.")
	if cpuid.CPU.Has(cpuid.AVX2) {
		log.Printf("  - Euclidean (float32): Gonum (SIMD)")
	} else {
		log.Printf("  - Euclidean (float32): Pure Go")
	}
	log.Printf("  - Euclidean (float16): Pure Go (Fallback)")
}

// --- Public Types ---
// These types define the public contract that this package offers to the rest of the system.

// DistanceMetric defines the type of distance calculation to perform.
type DistanceMetric string

// PrecisionType defines the data type used for vector storage and calculations.
type PrecisionType string

const (
	// Euclidean represents the squared Euclidean distance metric.
	Euclidean DistanceMetric = "euclidean"

	// Float32 represents single-precision floating-point numbers.
	Float32 PrecisionType = "float32"
	// Float16 represents half-precision floating-point numbers.
	Float16 PrecisionType = "float16"
)

// ErrLengthMismatch is returned when two vectors of different dimensions are compared.
var ErrLengthMismatch = errors.New("vectors must have the same length")

// DistanceFuncF32 is a function type for distance calculations on float32 vectors.
type DistanceFuncF32 func(v1, v2 []float32) (float64, error)

// DistanceFuncF16 is a function type for distance calculations on float16 (uint16) vectors.
type DistanceFuncF16 func(v1, v2 []uint16) (float64, error)

// --- WORKSPACE POOL ---

// diffWorkspace is a pool of float32 slices used to avoid memory allocations
// in distance calculations. Functions can borrow a slice from the pool, use it
// for intermediate calculations (like the difference between two vectors), and
// then return it, reducing pressure on the garbage collector.
var diffWorkspace = sync.Pool{
	New: func() interface{} {
		// 768 is the reference embedding dimension for this index.
		s := make([]float32, 768)
		return &s
	},
}

// --- REFERENCE IMPLEMENTATIONS (PURE GO) ---

// squaredEuclideanDistanceGo is the pure Go implementation for squared Euclidean distance.
func squaredEuclideanDistanceGo(v1, v2 []float32) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrLengthMismatch
	}
	var sum float32
	for i := range v1 {
		diff := v1[i] - v2[i]
		sum += diff * diff
	}
	return float64(sum), nil
}

// squaredEuclideanGoFloat16 is the pure Go implementation for squared Euclidean distance on float16 vectors.
func squaredEuclideanGoFloat16(v1, v2 []uint16) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrLengthMismatch
	}
	var sum float32
	for i := range v1 {
		f1 := float16.Frombits(v1[i]).Float32()
		f2 := float16.Frombits(v2[i]).Float32()
		diff := f1 - f2
		sum += diff * diff
	}
	return float64(sum), nil
}

// --- Gonum-based Implementations (for float32) ---
var gonumEngine = gonum.Implementation{}

// squaredEuclideanGonum uses the Gonum BLAS library for optimized calculation.
func squaredEuclideanGonum(v1, v2 []float32) (float64, error) {
	n := len(v1)
	if n != len(v2) {
		return 0, ErrLengthMismatch
	}

	// Get a slice from the pool
	diffPtr := diffWorkspace.Get().(*[]float32)
	defer diffWorkspace.Put(diffPtr) // Ensure the slice is returned to the pool

	// Check if the pooled slice is large enough
	if cap(*diffPtr) < n {
		*diffPtr = make([]float32, n)
	}
	diff := (*diffPtr)[:n] // Use only the portion we need

	// Now perform the calculations without allocations
	copy(diff, v1)
	gonumEngine.Saxpy(n, -1, v2, 1, diff, 1)
	dot := gonumEngine.Sdot(n, diff, 1, diff, 1)

	return float64(dot), nil
}

// Norm returns the Euclidean (L2) norm of a vector.
func Norm(v []float32) float64 {
	dot := gonumEngine.Sdot(len(v), v, 1, v, 1)
	return math.Sqrt(float64(dot))
}

// --- Function Catalogs and Dispatchers ---

// float32Funcs maps a distance metric to its corresponding float32 implementation.
var float32Funcs = map[DistanceMetric]DistanceFuncF32{
	Euclidean: squaredEuclideanDistanceGo, // default
}

// float16Funcs maps a distance metric to its corresponding float16 implementation.
var float16Funcs = map[DistanceMetric]DistanceFuncF16{
	Euclidean: squaredEuclideanGoFloat16,
}

// --- Public Getter Functions ---

// GetFloat32Func returns the appropriate distance calculation function for a given
// metric and float32 precision. It returns an error if the metric is not supported.
func GetFloat32Func(metric DistanceMetric) (DistanceFuncF32, error) {
	fn, ok := float32Funcs[metric]
	if !ok {
		return nil, fmt.Errorf("metric '%s' not supported for float32 precision", metric)
	}
	return fn, nil
}

// GetFloat16Func returns the appropriate distance calculation function for a given
// metric and float16 precision. It returns an error if the metric is not supported.
func GetFloat16Func(metric DistanceMetric) (DistanceFuncF16, error) {
	fn, ok := float16Funcs[metric]
	if !ok {
		return nil, fmt.Errorf("metric '%s' not supported for float16 precision", metric)
	}
	return fn, nil
}
