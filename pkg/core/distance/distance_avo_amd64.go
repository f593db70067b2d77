//go:build avo && amd64

package distance

import (
	"log"

	"github.com/klauspost/cpuid/v2"
)

// squaredEuclideanF32AVX2Wrapper orchestrates the call to the AVX2-accelerated function.
func squaredEuclideanF32AVX2Wrapper(v1, v2 []float32) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrLengthMismatch
	}
	if len(v1) == 0 {
		return 0, nil
	}
	res := SquaredEuclideanAVX2(v1, v2)
	return float64(res), nil
}

// squaredEuclideanF16AVX2Wrapper orchestrates the call to the AVX2-accelerated float16 function.
func squaredEuclideanF16AVX2Wrapper(v1, v2 []uint16) (float64, error) {
	if len(v1) != len(v2) {
		return 0, ErrLengthMismatch
	}
	if len(v1) == 0 {
		return 0, nil
	}
	res := SquaredEuclideanFloat16AVX2(v1, v2)
	return float64(res), nil
}

func init() {
	log.Println("sstree compute engine: using AVO/SIMD optimizations where available.")
	if cpuid.CPU.Has(cpuid.AVX2) {
		float32Funcs[Euclidean] = squaredEuclideanF32AVX2Wrapper
	}
	if cpuid.CPU.Has(cpuid.AVX2) && cpuid.CPU.Has(cpuid.F16C) {
		float16Funcs[Euclidean] = squaredEuclideanF16AVX2Wrapper
	}
}
