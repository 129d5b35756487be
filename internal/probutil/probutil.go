// Package probutil implements the log-space probability primitives the task
// set builds its softmax-normalized focus distribution on: pairwise and
// slice-wide log-sum-exp, and temperature-scaled softmax.
package probutil

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrInvalidTemperature = errors.New("probutil: invalid temperature")

// LogAddExp2 returns log(e^a + e^b) computed stably, degenerating to the
// finite operand when the other is -Inf.
func LogAddExp2(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	max := math.Max(a, b)
	return max + math.Log(math.Exp(a-max)+math.Exp(b-max))
}

// LogSumExp returns (sum, max) where sum = log(Σ e^(x_i - max)) + max and
// max = max(xs). If max is -Inf (all entries -Inf, or xs empty), both
// returned values are -Inf.
func LogSumExp(xs []float64) (sum, max float64) {
	if len(xs) == 0 {
		return math.Inf(-1), math.Inf(-1)
	}
	max = floats.Max(xs)
	if math.IsInf(max, -1) {
		return math.Inf(-1), math.Inf(-1)
	}
	return floats.LogSumExp(xs), max
}

// OnlineTemperatureSoftmax computes a single-pass, log-space softmax of
// xs/T. Fails with ErrInvalidTemperature if T <= 0 or T is non-finite.
func OnlineTemperatureSoftmax(xs []float64, temperature float64) ([]float64, error) {
	if temperature <= 0 || math.IsNaN(temperature) || math.IsInf(temperature, 0) {
		return nil, ErrInvalidTemperature
	}
	scaled := make([]float64, len(xs))
	for i, x := range xs {
		scaled[i] = x / temperature
	}
	lse, _ := LogSumExp(scaled)
	out := make([]float64, len(xs))
	for i, x := range scaled {
		out[i] = math.Exp(x - lse)
	}
	return out, nil
}

// LogSoftmax applies log-space softmax in place style, returning a new
// slice: p'_i = p_i - (max + log Σ exp(p_j - max)).
func LogSoftmax(xs []float64) []float64 {
	lse, _ := LogSumExp(xs)
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = x - lse
	}
	return out
}
