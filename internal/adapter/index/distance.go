package index

import (
	"math"
	"slices"
)

// SquaredL2 returns the squared Euclidean distance between a and b.
// The vectors must have the same length.
func SquaredL2(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(sum)
}

// NormalizeL2InPlace scales v to unit length. It returns false and leaves
// v untouched when v has zero norm.
func NormalizeL2InPlace(v []float32) bool {
	var norm2 float64
	for _, x := range v {
		norm2 += float64(x) * float64(x)
	}
	if norm2 == 0 || math.IsNaN(norm2) || math.IsInf(norm2, 0) {
		return false
	}
	inv := 1 / math.Sqrt(norm2)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return true
}

// Normalized returns a unit-length copy of v. Zero vectors are returned
// as a zero copy; their distance to every unit vector is 1.
func Normalized(v []float32) []float32 {
	out := slices.Clone(v)
	NormalizeL2InPlace(out)
	return out
}
