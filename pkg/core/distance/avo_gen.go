//go:build amd64

package distance

// SquaredEuclideanAVX2 and SquaredEuclideanFloat16AVX2 are generated by the avo
// program under ./gen. Run the generator before building with the 'avo' tag.
//
//go:generate go run ./gen -stubs ./stubs_avo.go -out ./distance_avo.s
//func SquaredEuclideanAVX2(v1 []float32, v2 []float32) float32
//func SquaredEuclideanFloat16AVX2(v1 []uint16, v2 []uint16) float32
