// Package vecmath implements the embedding vector algebra the rest of the
// engine is built on: shape-checked arithmetic, similarity/distance, and the
// pooling and blending operators used to fuse per-field embeddings.
package vecmath

import (
	"errors"
	"fmt"
	"math"
)

// Vec is a finite-dimensional real embedding vector.
type Vec []float64

var (
	ErrShapeMismatch  = errors.New("vecmath: shape mismatch")
	ErrInvalidNumValue = errors.New("vecmath: invalid numeric value")
)

func checkShape(a, b Vec) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d", ErrShapeMismatch, len(a), len(b))
	}
	return nil
}

// Add returns a+b.
func Add(a, b Vec) (Vec, error) {
	if err := checkShape(a, b); err != nil {
		return nil, err
	}
	out := make(Vec, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// Sub returns a-b.
func Sub(a, b Vec) (Vec, error) {
	if err := checkShape(a, b); err != nil {
		return nil, err
	}
	out := make(Vec, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// Scale returns a*s.
func Scale(a Vec, s float64) Vec {
	out := make(Vec, len(a))
	for i := range a {
		out[i] = a[i] * s
	}
	return out
}

// Div returns a/s element-wise.
func Div(a Vec, s float64) Vec {
	return Scale(a, 1/s)
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Norm returns the Euclidean (L2) norm of a.
func Norm(a Vec) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize returns a scaled to unit length. Fails if the norm is zero.
func Normalize(a Vec) (Vec, error) {
	n := Norm(a)
	if n == 0 {
		return nil, fmt.Errorf("%w: zero norm", ErrInvalidNumValue)
	}
	return Div(a, n), nil
}

// Cosine returns the cosine similarity between a and b: the dot product of
// the two normalized vectors. Shape mismatches and zero-norm vectors are
// surfaced as errors.
func Cosine(a, b Vec) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	na, err := Normalize(a)
	if err != nil {
		return 0, err
	}
	nb, err := Normalize(b)
	if err != nil {
		return 0, err
	}
	return Dot(na, nb)
}

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b Vec) (float64, error) {
	d, err := Sub(a, b)
	if err != nil {
		return 0, err
	}
	return Norm(d), nil
}

// MeanPool returns the arithmetic mean of vs. All vectors must share shape.
// An empty input returns an empty vector.
func MeanPool(vs []Vec) (Vec, error) {
	if len(vs) == 0 {
		return Vec{}, nil
	}
	dim := len(vs[0])
	sum := make(Vec, dim)
	for _, v := range vs {
		if len(v) != dim {
			return nil, ErrShapeMismatch
		}
		for i, x := range v {
			sum[i] += x
		}
	}
	return Scale(sum, 1/float64(len(vs))), nil
}

// WeightedPool returns sum(v_i * w_i) / sum(w_i). Weights must sum to a
// positive finite value.
func WeightedPool(vs []Vec, weights []float64) (Vec, error) {
	if len(vs) != len(weights) {
		return nil, fmt.Errorf("%w: %d vectors vs %d weights", ErrShapeMismatch, len(vs), len(weights))
	}
	if len(vs) == 0 {
		return Vec{}, nil
	}
	var total float64
	for _, w := range weights {
		total += w
	}
	if !(total > 0) || math.IsInf(total, 0) || math.IsNaN(total) {
		return nil, fmt.Errorf("%w: weights must sum to a positive finite value", ErrInvalidNumValue)
	}
	dim := len(vs[0])
	sum := make(Vec, dim)
	for i, v := range vs {
		if len(v) != dim {
			return nil, ErrShapeMismatch
		}
		for j, x := range v {
			sum[j] += x * weights[i]
		}
	}
	return Scale(sum, 1/total), nil
}

// Blend returns the linear blend f*a + (1-f)*b, f in [0,1].
func Blend(a, b Vec, f float64) (Vec, error) {
	if err := checkShape(a, b); err != nil {
		return nil, err
	}
	out := make(Vec, len(a))
	for i := range a {
		out[i] = f*a[i] + (1-f)*b[i]
	}
	return out, nil
}
