package main

import (
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"formula_lab/logx"
)

// Verbose enables per-generation console logging from the driver.
var Verbose = false

// memoCacheSize bounds the optional fitness memo.
const memoCacheSize = 4096

// Config parameterizes one search. The interactive "research" engine and the
// heavy benchmark engine are the same driver with different numbers here.
type Config struct {
	Seed        int64
	Generations int   // generation ceiling; 0 = run until the budget is gone
	PopSize     int   // fixed population length, invariant across generations
	EvalBudget  int64 // hard cap on fitness evaluations; 0 = unbounded (needs Generations > 0)

	Grid []float64 // sample grid; nil = DefaultGrid()

	MaxDepth             int     // depth bound for initial random trees
	TournamentK          int     // tournament size; bigger = more selection pressure
	SubtreeReplaceP      float64 // chance a mutation discards the whole subtree
	MutationSubtreeDepth int     // depth bound for injected subtrees
	DonorTakeoverP       float64 // chance crossover takes the donor wholesale
	SinCosFlipP          float64 // chance of the sin<->cos structural mutation
	LocalOptSteps        int     // mutation walk length before crossover
	ParsimonyWeight      float64 // per-node fitness penalty

	Workers        int  // parallel evaluators; <=1 runs strictly sequential
	MemoizeFitness bool // reuse scores of repeat formulas without spending budget

	// OnGeneration, when set, observes each completed Evaluating phase.
	OnGeneration func(GenStats)
}

// GenStats is the per-generation observation handed to OnGeneration.
type GenStats struct {
	Gen         int
	BestFitness float64 // penalized estimate, monotone non-increasing
	BestFormula string
	Used        int64
	Duplicates  int64
}

// withDefaults fills the zero-value knobs with the benchmark engine's
// numbers. Callers that want different behavior set the fields explicitly.
func (c Config) withDefaults() Config {
	if c.Grid == nil {
		c.Grid = DefaultGrid()
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = 3
	}
	if c.TournamentK == 0 {
		c.TournamentK = 3
	}
	if c.SubtreeReplaceP == 0 {
		c.SubtreeReplaceP = 0.12
	}
	if c.MutationSubtreeDepth == 0 {
		c.MutationSubtreeDepth = 3
	}
	if c.DonorTakeoverP == 0 {
		c.DonorTakeoverP = 0.10
	}
	if c.SinCosFlipP == 0 {
		c.SinCosFlipP = 0.10
	}
	if c.LocalOptSteps == 0 {
		c.LocalOptSteps = 1
	}
	if c.ParsimonyWeight == 0 {
		c.ParsimonyWeight = 0.01
	}
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	return c
}

// Validate rejects configurations the driver cannot run. Checked eagerly,
// before any search work; the loop itself has no fatal errors.
func (c Config) Validate() error {
	if c.PopSize <= 0 {
		return fmt.Errorf("config: population size must be positive, got %d", c.PopSize)
	}
	if c.Generations < 0 {
		return fmt.Errorf("config: generation limit must be >= 0, got %d", c.Generations)
	}
	if c.EvalBudget < 0 {
		return fmt.Errorf("config: evaluation budget must be >= 0, got %d", c.EvalBudget)
	}
	if c.Generations == 0 && c.EvalBudget == 0 {
		return fmt.Errorf("config: need a generation limit or an evaluation budget, both are zero")
	}
	if len(c.Grid) == 0 {
		return fmt.Errorf("config: sample grid is empty")
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("config: max depth must be >= 1, got %d", c.MaxDepth)
	}
	if c.TournamentK < 1 {
		return fmt.Errorf("config: tournament size must be >= 1, got %d", c.TournamentK)
	}
	return nil
}

// budgetLimit maps "no explicit budget" onto an effectively unbounded
// ceiling; Validate has already ensured a generation limit exists then.
func (c Config) budgetLimit() int64 {
	if c.EvalBudget == 0 {
		return math.MaxInt64
	}
	return c.EvalBudget
}

// SearchResult is what a completed search hands back.
type SearchResult struct {
	Best        *ExprNode
	Formula     string
	Fitness     float64   // final clean MSE on the high-precision grid
	EvalsUsed   int64     // successful budget claims
	Generations int       // completed Evaluating phases
	BestTrace   []float64 // penalized best per generation, non-increasing
	Duplicates  int64
	Elapsed     time.Duration
}

// RunSearch runs one full evolutionary search against target.
//
// The driver walks Initializing -> Evaluating -> Reproducing and loops until
// either the evaluation budget is exhausted or the generation limit is
// reached. Numeric degeneracy never surfaces as an error; the only error
// path is invalid configuration, rejected up front.
func RunSearch(cfg Config, target TargetFunc) (SearchResult, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return SearchResult{}, err
	}

	start := time.Now()
	rng := rand.New(rand.NewSource(cfg.Seed))
	budget := NewEvalBudget(cfg.budgetLimit())
	seen := NewShardedSeenMap()

	var memo *lru.Cache[string, float64]
	if cfg.MemoizeFitness {
		memo, _ = lru.New[string, float64](memoCacheSize)
	}

	pop := make([]*ExprNode, cfg.PopSize)
	for i := range pop {
		pop[i] = randExpr(rng, cfg.MaxDepth)
	}

	// Fallback if the budget starves before anything is scored: the first
	// initial individual, quality unknown. Callers read an unusually high
	// fitness as budget starvation, not as an error.
	best := pop[0].Clone()
	bestFit := math.Inf(1)
	var trace []float64
	gens := 0

	for gen := 0; cfg.Generations == 0 || gen < cfg.Generations; gen++ {
		if budget.Exhausted() {
			break
		}

		fits := evaluatePopulation(pop, target, cfg, budget, memo, seen)

		// Strict < keeps the incumbent on ties: no churn on equal fitness.
		for i, f := range fits {
			if f < bestFit {
				prev := bestFit
				bestFit = f
				best = pop[i].Clone()
				logx.LogNewBest(prev, bestFit)
			}
		}
		gens++
		trace = append(trace, bestFit)

		if Verbose {
			logx.LogGeneration(gens, bestFit, budget.Used(), seen.Duplicates())
		}
		if cfg.OnGeneration != nil {
			cfg.OnGeneration(GenStats{
				Gen:         gens,
				BestFitness: bestFit,
				BestFormula: best.Render(),
				Used:        budget.Used(),
				Duplicates:  seen.Duplicates(),
			})
		}

		if budget.Exhausted() {
			break
		}
		if cfg.Generations != 0 && gen == cfg.Generations-1 {
			break
		}

		pop = reproduce(rng, cfg, pop, fits, best, budget)
		assertGenerationInvariants(RuntimeChecks, cfg, pop, best, trace, budget)
	}

	return SearchResult{
		Best:        best,
		Formula:     best.Render(),
		Fitness:     cleanMSE(best, target, RefineGrid(cfg.Grid)),
		EvalsUsed:   budget.Used(),
		Generations: gens,
		BestTrace:   trace,
		Duplicates:  seen.Duplicates(),
		Elapsed:     time.Since(start),
	}, nil
}

// evaluatePopulation scores every individual that the budget still admits.
// Individuals the budget refuses keep +Inf and lose every comparison.
// Trees are immutable and the grid is read-only, so the only shared mutable
// state across workers is the budget counter (and the seen/memo maps, both
// internally locked). Results land by index, so the outcome does not depend
// on completion order.
func evaluatePopulation(pop []*ExprNode, target TargetFunc, cfg Config, budget *EvalBudget, memo *lru.Cache[string, float64], seen *ShardedSeenMap) []float64 {
	fits := make([]float64, len(pop))
	for i := range fits {
		fits[i] = math.Inf(1)
	}

	scoreOne := func(i int) {
		formula := pop[i].Render()
		seen.CheckAndSet(formula)
		if memo != nil {
			if v, ok := memo.Get(formula); ok {
				fits[i] = v // repeat formula: reuse the score, spend nothing
				return
			}
		}
		if f, ok := penalizedMSE(pop[i], target, cfg.Grid, cfg.ParsimonyWeight, budget); ok {
			fits[i] = f
			if memo != nil {
				memo.Add(formula, f)
			}
		}
	}

	if cfg.Workers <= 1 {
		// Sequential reference mode: index order, fully deterministic.
		for i := range pop {
			scoreOne(i)
		}
		return fits
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for i := range pop {
		i := i
		g.Go(func() error {
			scoreOne(i)
			return nil
		})
	}
	_ = g.Wait() // workers never error; degeneracy is absorbed in fitness
	return fits
}

// reproduce builds the next generation: the run-global best goes into slot 0
// unmodified, the rest are tournament-selected offspring. If the budget runs
// dry mid-way the generation stops short with whatever offspring exist; the
// outer loop terminates right after.
func reproduce(rng *rand.Rand, cfg Config, pop []*ExprNode, fits []float64, best *ExprNode, budget *EvalBudget) []*ExprNode {
	next := make([]*ExprNode, 0, cfg.PopSize)
	next = append(next, best.Clone()) // elitism

	for len(next) < cfg.PopSize && !budget.Exhausted() {
		pi := tournament(rng, fits, cfg.TournamentK)
		di := tournament(rng, fits, cfg.TournamentK)

		parent := localOpt(rng, cfg, pop[pi])
		child := crossoverExpr(rng, cfg, parent, pop[di])
		child = mutateExpr(rng, cfg, child)

		if !survivesProbe(child) {
			// Reanimation: degenerate offspring is replaced outright.
			child = randExpr(rng, reanimationDepth)
		}
		next = append(next, child)
	}
	return next
}
