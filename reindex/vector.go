package reindex

import "math"

// NormalizeVector scales a vector to unit length, returning a new slice.
// A zero vector is returned unchanged.
func NormalizeVector(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vector
	}

	magnitude := float32(math.Sqrt(sum))
	normalized := make([]float32, len(vector))
	for i, v := range vector {
		normalized[i] = v / magnitude
	}
	return normalized
}
