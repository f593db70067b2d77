// Package point implements the fixed-dimension float32 vectors indexed by the
// SS-Tree, together with the elementwise arithmetic, norm and distance
// operations the tree is built on.
//
// A Point's dimensionality is its length; all points fed to the same tree must
// share it. The heavy numeric work (distance, norm) is delegated to the
// pkg/core/distance compute engine, which picks the fastest kernel available
// on the host CPU.
package point

import (
	"errors"
	"math"

	"github.com/sanonone/sstree/pkg/core/distance"
)

// Epsilon is the absolute tolerance used for float comparisons: two
// coordinates at most Epsilon apart are considered equal, and scalars of
// magnitude at most Epsilon are rejected as divisors.
const Epsilon = 1e-5

var (
	// ErrDivisionByZero is returned when dividing a point by a scalar whose
	// magnitude is at most Epsilon.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOutOfRange is returned when indexing a point outside [0, Dim).
	ErrOutOfRange = errors.New("index out of range")
	// ErrDimensionMismatch is returned when combining points of different dimensions.
	ErrDimensionMismatch = errors.New("points must have the same dimension")
)

// euclidean is the squared-Euclidean kernel selected by the distance package
// for this machine.
var euclidean distance.DistanceFuncF32

func init() {
	fn, err := distance.GetFloat32Func(distance.Euclidean)
	if err != nil {
		panic(err)
	}
	euclidean = fn
}

// Point is an ordered tuple of float32 coordinates.
type Point []float32

// New returns the origin point of the given dimension.
func New(dim int) Point {
	return make(Point, dim)
}

// From copies the given coordinates into a new Point.
func From(coords []float32) Point {
	p := make(Point, len(coords))
	copy(p, coords)
	return p
}

// Dim returns the dimensionality of the point.
func (p Point) Dim() int {
	return len(p)
}

// Clone returns an independent copy of the point.
func (p Point) Clone() Point {
	return From(p)
}

// Add returns a new point holding the elementwise sum p + other.
func (p Point) Add(other Point) (Point, error) {
	if len(p) != len(other) {
		return nil, ErrDimensionMismatch
	}
	result := make(Point, len(p))
	for i := range p {
		result[i] = p[i] + other[i]
	}
	return result, nil
}

// AddInPlace adds other to p elementwise.
func (p Point) AddInPlace(other Point) error {
	if len(p) != len(other) {
		return ErrDimensionMismatch
	}
	for i := range p {
		p[i] += other[i]
	}
	return nil
}

// Sub returns a new point holding the elementwise difference p - other.
func (p Point) Sub(other Point) (Point, error) {
	if len(p) != len(other) {
		return nil, ErrDimensionMismatch
	}
	result := make(Point, len(p))
	for i := range p {
		result[i] = p[i] - other[i]
	}
	return result, nil
}

// SubInPlace subtracts other from p elementwise.
func (p Point) SubInPlace(other Point) error {
	if len(p) != len(other) {
		return ErrDimensionMismatch
	}
	for i := range p {
		p[i] -= other[i]
	}
	return nil
}

// Scale returns a new point with every coordinate multiplied by scalar.
func (p Point) Scale(scalar float32) Point {
	result := make(Point, len(p))
	for i := range p {
		result[i] = p[i] * scalar
	}
	return result
}

// ScaleInPlace multiplies every coordinate of p by scalar.
func (p Point) ScaleInPlace(scalar float32) {
	for i := range p {
		p[i] *= scalar
	}
}

// Divide returns a new point with every coordinate divided by scalar.
// It returns ErrDivisionByZero when |scalar| <= Epsilon.
func (p Point) Divide(scalar float32) (Point, error) {
	if math.Abs(float64(scalar)) <= Epsilon {
		return nil, ErrDivisionByZero
	}
	result := make(Point, len(p))
	for i := range p {
		result[i] = p[i] / scalar
	}
	return result, nil
}

// DivideInPlace divides every coordinate of p by scalar.
// It returns ErrDivisionByZero when |scalar| <= Epsilon.
func (p Point) DivideInPlace(scalar float32) error {
	if math.Abs(float64(scalar)) <= Epsilon {
		return ErrDivisionByZero
	}
	for i := range p {
		p[i] /= scalar
	}
	return nil
}

// At returns the coordinate at index i, or ErrOutOfRange when i >= Dim.
func (p Point) At(i int) (float32, error) {
	if i < 0 || i >= len(p) {
		return 0, ErrOutOfRange
	}
	return p[i], nil
}

// Set writes the coordinate at index i, or returns ErrOutOfRange when i >= Dim.
func (p Point) Set(i int, v float32) error {
	if i < 0 || i >= len(p) {
		return ErrOutOfRange
	}
	p[i] = v
	return nil
}

// Norm returns the Euclidean (L2) norm of the point.
func (p Point) Norm() float64 {
	return distance.Norm(p)
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) (float64, error) {
	sq, err := euclidean(a, b)
	if err != nil {
		return 0, ErrDimensionMismatch
	}
	return math.Sqrt(sq), nil
}

// Equal reports whether a and b agree elementwise within Epsilon.
// Points of different dimensions are never equal.
func Equal(a, b Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > Epsilon {
			return false
		}
	}
	return true
}
