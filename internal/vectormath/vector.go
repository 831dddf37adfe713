package vectormath

import "math"

const epsilon = 1e-8

// CosineSimilarity returns the cosine of the angle between a and b over
// their common prefix. Mismatched lengths are truncated, not rejected, so a
// vector from an older embedding model still scores instead of erroring.
// Zero-length input (or an all-zero vector, via the epsilon denominator)
// yields 0.
func CosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + epsilon)
}
