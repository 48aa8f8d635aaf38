package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidation(t *testing.T) {
	target := func(x float64) float64 { return x }

	_, err := RunSearch(Config{PopSize: 0, Generations: 5}, target)
	require.Error(t, err)

	_, err = RunSearch(Config{PopSize: 10}, target) // no generations, no budget
	require.Error(t, err)

	_, err = RunSearch(Config{PopSize: 10, Generations: -1}, target)
	require.Error(t, err)

	_, err = RunSearch(Config{PopSize: 10, EvalBudget: -5}, target)
	require.Error(t, err)
}

func TestSearchDeterministicSequential(t *testing.T) {
	cfg := Config{
		Seed:        7,
		Generations: 10,
		PopSize:     30,
		Grid:        GridRange(-3, 3, 0.1),
		Workers:     1,
	}
	target := func(x float64) float64 { return 2*x + 1 }

	a, err := RunSearch(cfg, target)
	require.NoError(t, err)
	b, err := RunSearch(cfg, target)
	require.NoError(t, err)

	require.Equal(t, a.Formula, b.Formula)
	require.Equal(t, a.Fitness, b.Fitness)
	require.Equal(t, a.EvalsUsed, b.EvalsUsed)
	require.Equal(t, a.BestTrace, b.BestTrace)
}

func TestBestTraceNeverWorsens(t *testing.T) {
	res, err := RunSearch(Config{
		Seed:        3,
		Generations: 20,
		PopSize:     25,
		Grid:        GridRange(-3, 3, 0.1),
		Workers:     1,
	}, func(x float64) float64 { return math.Sin(x) })
	require.NoError(t, err)
	require.Len(t, res.BestTrace, res.Generations)

	for i := 1; i < len(res.BestTrace); i++ {
		require.LessOrEqual(t, res.BestTrace[i], res.BestTrace[i-1])
	}
}

func TestBudgetStopsSearchExactly(t *testing.T) {
	res, err := RunSearch(Config{
		Seed:       9,
		PopSize:    20,
		EvalBudget: 20, // one full generation, then dry
		Grid:       GridRange(-2, 2, 0.1),
		Workers:    1,
	}, func(x float64) float64 { return x * x })
	require.NoError(t, err)
	require.Equal(t, 1, res.Generations)
	require.EqualValues(t, 20, res.EvalsUsed)
}

func TestBudgetSmallerThanPopulation(t *testing.T) {
	res, err := RunSearch(Config{
		Seed:       9,
		PopSize:    20,
		EvalBudget: 7,
		Grid:       GridRange(-2, 2, 0.1),
		Workers:    1,
	}, func(x float64) float64 { return x })
	require.NoError(t, err)
	require.EqualValues(t, 7, res.EvalsUsed)
	require.Equal(t, 1, res.Generations)
	require.NotNil(t, res.Best)
	require.NotEmpty(t, res.Formula)
}

func TestParallelRespectsBudget(t *testing.T) {
	res, err := RunSearch(Config{
		Seed:       17,
		PopSize:    50,
		EvalBudget: 120,
		Grid:       GridRange(-2, 2, 0.1),
		Workers:    8,
	}, func(x float64) float64 { return x * x })
	require.NoError(t, err)
	require.LessOrEqual(t, res.EvalsUsed, int64(120))
	require.EqualValues(t, 120, res.EvalsUsed) // enough attempts to drain it fully
}

func TestMemoizationSavesBudgetWithoutChangingSearch(t *testing.T) {
	base := Config{
		Seed:        5,
		Generations: 20,
		PopSize:     30,
		Grid:        GridRange(-3, 3, 0.1),
		Workers:     1,
	}
	target := func(x float64) float64 { return x * x }

	plain, err := RunSearch(base, target)
	require.NoError(t, err)

	memo := base
	memo.MemoizeFitness = true
	cached, err := RunSearch(memo, target)
	require.NoError(t, err)

	// Same rng stream and same scores, so the search itself is identical.
	require.Equal(t, plain.Formula, cached.Formula)
	require.Equal(t, plain.BestTrace, cached.BestTrace)

	// The elite reappears verbatim every generation, so the memoized run
	// must spend strictly less budget.
	require.Less(t, cached.EvalsUsed, plain.EvalsUsed)
	require.Greater(t, cached.Duplicates, int64(0))
}

func TestQuadraticRediscovery(t *testing.T) {
	if testing.Short() {
		t.Skip("evolutionary search is slow in -short mode")
	}

	target := func(x float64) float64 { return x * x }
	grid := GridRange(-5, 5, 0.1)

	found := false
	for seed := int64(1); seed <= 12; seed++ {
		res, err := RunSearch(Config{
			Seed:        seed,
			Generations: 50,
			PopSize:     20,
			Grid:        grid,
			Workers:     1,
		}, target)
		require.NoError(t, err)
		if res.Fitness < 0.5 {
			found = true
			break
		}
	}
	require.True(t, found, "no seed in 1..12 recovered x^2 to mse < 0.5")
}
