package distance

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/x448/float16"
)

// floatsAreEqual compares two float64 values within a fixed tolerance.
func floatsAreEqual(a, b float64) bool {
	const tolerance = 1e-6
	return math.Abs(a-b) < tolerance
}

// --- CORRECTNESS TESTS ---
// These tests use the public getters, so they exercise whichever
// implementation the dispatcher selected for this machine.

func TestImplementations(t *testing.T) {
	t.Run("EuclideanF32", func(t *testing.T) {
		fn, err := GetFloat32Func(Euclidean)
		if err != nil {
			t.Fatal(err)
		}
		v1, v2 := []float32{1, 2}, []float32{3, 4}
		expected := 8.0 // (3-1)^2 + (4-2)^2 = 4 + 4 = 8
		dist, _ := fn(v1, v2)
		if !floatsAreEqual(dist, expected) {
			t.Errorf("got %f, want %f", dist, expected)
		}
	})

	t.Run("EuclideanF32LongVector", func(t *testing.T) {
		// A vector longer than any SIMD lane width, with a remainder tail.
		fn, _ := GetFloat32Func(Euclidean)
		const dims = 771
		v1 := make([]float32, dims)
		v2 := make([]float32, dims)
		var expected float64
		for i := 0; i < dims; i++ {
			v1[i] = float32(i)
			v2[i] = float32(i) + 2
			expected += 4
		}
		dist, _ := fn(v1, v2)
		if !floatsAreEqual(dist, expected) {
			t.Errorf("got %f, want %f", dist, expected)
		}
	})

	t.Run("EuclideanF16", func(t *testing.T) {
		fn, _ := GetFloat16Func(Euclidean)
		v1f, v2f := []float32{1, 2}, []float32{3, 4}
		expected := 8.0
		v1 := make([]uint16, len(v1f))
		v2 := make([]uint16, len(v2f))
		for i := range v1f {
			v1[i] = float16.Fromfloat32(v1f[i]).Bits()
			v2[i] = float16.Fromfloat32(v2f[i]).Bits()
		}
		dist, _ := fn(v1, v2)
		if !floatsAreEqual(dist, expected) {
			t.Errorf("got %f, want %f", dist, expected)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		fn, _ := GetFloat32Func(Euclidean)
		_, err := fn([]float32{1, 2}, []float32{1, 2, 3})
		if !errors.Is(err, ErrLengthMismatch) {
			t.Errorf("expected ErrLengthMismatch, got %v", err)
		}
	})

	t.Run("UnknownMetric", func(t *testing.T) {
		if _, err := GetFloat32Func("chebyshev"); err == nil {
			t.Error("expected an error for an unsupported metric")
		}
	})
}

func TestNorm(t *testing.T) {
	v := []float32{3, 4}
	if got := Norm(v); !floatsAreEqual(got, 5.0) {
		t.Errorf("got %f, want 5.0", got)
	}
	if got := Norm([]float32{0, 0, 0}); got != 0 {
		t.Errorf("norm of the zero vector should be 0, got %f", got)
	}
}

// --- BENCHMARKS ---

func generateVectors(dims int) ([]float32, []float32) {
	v1 := make([]float32, dims)
	v2 := make([]float32, dims)
	for i := 0; i < dims; i++ {
		v1[i] = rand.Float32()
		v2[i] = rand.Float32()
	}
	return v1, v2
}

func generateFloat16Vectors(dims int) ([]uint16, []uint16) {
	v1 := make([]uint16, dims)
	v2 := make([]uint16, dims)
	for i := 0; i < dims; i++ {
		v1[i] = float16.Fromfloat32(rand.Float32()).Bits()
		v2[i] = float16.Fromfloat32(rand.Float32()).Bits()
	}
	return v1, v2
}

func BenchmarkFloat32(b *testing.B) {
	eucFunc, _ := GetFloat32Func(Euclidean)
	dims := []int{64, 128, 256, 512, 768, 1536}

	for _, d := range dims {
		b.Run(fmt.Sprintf("Euclidean_%dD", d), func(b *testing.B) {
			v1, v2 := generateVectors(d)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				eucFunc(v1, v2)
			}
		})
	}
}

func BenchmarkFloat16(b *testing.B) {
	f16Func, _ := GetFloat16Func(Euclidean)
	dims := []int{64, 128, 256, 512, 768, 1536}

	for _, d := range dims {
		b.Run(fmt.Sprintf("Euclidean_%dD", d), func(b *testing.B) {
			v1, v2 := generateFloat16Vectors(d)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				f16Func(v1, v2)
			}
		})
	}
}
