package point

import "math/rand"

// Random draws a point of the given dimension with every coordinate
// independently uniform over [min, max), seeded from the global source.
// For reproducible sequences use RandomFrom with a caller-owned generator.
func Random(dim int, min, max float32) Point {
	p := make(Point, dim)
	for i := range p {
		p[i] = min + rand.Float32()*(max-min)
	}
	return p
}

// RandomFrom draws a uniform random point from the supplied generator.
func RandomFrom(rng *rand.Rand, dim int, min, max float32) Point {
	p := make(Point, dim)
	for i := range p {
		p[i] = min + rng.Float32()*(max-min)
	}
	return p
}
