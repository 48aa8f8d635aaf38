package main

import "math"

// TargetFunc is the unknown law being approximated: a pure mapping from a
// real input to a real output. It must be callable from multiple goroutines
// without shared mutable state.
type TargetFunc func(float64) float64

// nonFinitePenalty stands in for a sample whose evaluation came out NaN or
// infinite. Large enough to sink the candidate's ranking, finite so one
// degenerate point cannot turn the whole aggregate into NaN.
const nonFinitePenalty = 1e6

// penalizedMSE scores a candidate against the target over the grid:
// mean-squared-error plus a parsimony term proportional to tree size.
// The budget is consulted FIRST: if no claim is available the function
// returns ok=false and does no arithmetic at all. No evaluation is free and
// none overruns the cap.
func penalizedMSE(e *ExprNode, target TargetFunc, xs []float64, parsimony float64, budget *EvalBudget) (float64, bool) {
	if !budget.TryClaim() {
		return 0, false
	}
	return rawMSE(e, target, xs) + parsimony*float64(e.NodeCount()), true
}

// rawMSE is the unpenalized, unbudgeted error sum. Shared by the per-
// generation estimate and the final high-precision rescore.
func rawMSE(e *ExprNode, target TargetFunc, xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		v := e.Eval(x)
		var d float64
		if math.IsNaN(v) || math.IsInf(v, 0) {
			d = nonFinitePenalty
		} else {
			d = v - target(x)
		}
		sum += d * d
	}
	return sum / float64(len(xs))
}

// cleanMSE re-scores a single individual on an independent, denser grid with
// no parsimony term and no budget charge. This is the number a finished
// search reports; the per-generation estimates exist only to rank.
func cleanMSE(e *ExprNode, target TargetFunc, xs []float64) float64 {
	return rawMSE(e, target, xs)
}

// DefaultGrid returns the benchmark sample grid: [-10,10] in steps of 0.1.
func DefaultGrid() []float64 {
	xs := make([]float64, 0, 201)
	for i := -100; i <= 100; i++ {
		xs = append(xs, float64(i)/10.0)
	}
	return xs
}

// RefineGrid builds the independent high-precision grid for the final
// rescore: same span as the search grid, four times the resolution.
func RefineGrid(xs []float64) []float64 {
	if len(xs) < 2 {
		return xs
	}
	lo, hi := xs[0], xs[len(xs)-1]
	step := (hi - lo) / float64(4*(len(xs)-1))
	out := make([]float64, 0, 4*(len(xs)-1)+1)
	for i := 0; i <= 4*(len(xs)-1); i++ {
		out = append(out, lo+float64(i)*step)
	}
	return out
}

// GridRange builds a symmetric grid over [lo,hi] with the given step.
func GridRange(lo, hi, step float64) []float64 {
	n := int(math.Floor((hi-lo)/step + 1e-9))
	xs := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		xs = append(xs, lo+float64(i)*step)
	}
	return xs
}
