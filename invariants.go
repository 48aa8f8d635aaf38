package main

import (
	"fmt"
	"log"
)

// Invariants holds configuration for runtime assertion checking
type Invariants struct {
	Enabled         bool // Enable/disable all invariant checks
	CheckPopulation bool // Verify population size and elite slot
	CheckTrace      bool // Verify the best trace never worsens
	CheckBudget     bool // Verify budget accounting stays within the ceiling
}

// DefaultInvariants returns the default invariant checking configuration
func DefaultInvariants() Invariants {
	return Invariants{
		Enabled:         true,
		CheckPopulation: true,
		CheckTrace:      true,
		CheckBudget:     true,
	}
}

// RuntimeChecks gates the engine's internal assertions. Cheap enough to stay
// on; flip off for profiling runs.
var RuntimeChecks = DefaultInvariants()

// assertGenerationInvariants checks the state handed from one generation to
// the next: the population keeps its configured size (unless the budget ran
// dry mid-reproduction), slot 0 carries the run-global best verbatim, and
// the recorded trace is monotone non-increasing.
func assertGenerationInvariants(inv Invariants, cfg Config, pop []*ExprNode, best *ExprNode, trace []float64, budget *EvalBudget) {
	if !inv.Enabled {
		return
	}

	if inv.CheckPopulation {
		if !budget.Exhausted() {
			assert(len(pop) == cfg.PopSize,
				fmt.Sprintf("population size drifted: got %d, want %d", len(pop), cfg.PopSize))
		}
		assert(len(pop) > 0, "population emptied out")
		assert(pop[0].Render() == best.Render(),
			fmt.Sprintf("elite slot lost the best individual: slot0=%s best=%s", pop[0].Render(), best.Render()))
	}

	if inv.CheckTrace {
		for i := 1; i < len(trace); i++ {
			assert(trace[i] <= trace[i-1],
				fmt.Sprintf("best trace worsened at gen %d: %.9f > %.9f", i, trace[i], trace[i-1]))
		}
	}

	if inv.CheckBudget {
		assert(budget.Used() <= budget.Limit(),
			fmt.Sprintf("budget overrun: used=%d limit=%d", budget.Used(), budget.Limit()))
	}
}

// assert logs a fatal error if the condition is false
func assert(cond bool, msg string) {
	if !cond {
		log.Fatalf("INVARIANT VIOLATION: %s", msg)
	}
}
