package errors

import "math"

// ValidateVertexCount rejects negative vertex counts.
func ValidateVertexCount(n int) error {
	if n < 0 {
		return New(ErrCodeInvalidArgument, "vertex count must be non-negative, got %d", n)
	}
	return nil
}

// ValidateVertex reports whether v is a valid index for a graph of n vertices.
func ValidateVertex(v, n int) error {
	if v < 0 || v >= n {
		return New(ErrCodeOutOfRange, "vertex %d not in [0, %d)", v, n)
	}
	return nil
}

// ValidateProbability rejects edge probabilities outside the closed interval [0, 1].
// NaN is rejected as well.
func ValidateProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return New(ErrCodeInvalidArgument, "probability must be in [0, 1], got %v", p)
	}
	return nil
}

// ValidateIterations rejects non-positive iteration counts for the randomized search.
func ValidateIterations(k int) error {
	if k <= 0 {
		return New(ErrCodeInvalidArgument, "iterations must be positive, got %d", k)
	}
	return nil
}
