package main

import (
	"math"
	"math/rand"
)

// Genetic operators. Every stochastic decision draws from the *rand.Rand
// that the driver owns; there is no ambient randomness anywhere in the
// engine, which is what makes a seeded run reproducible.

// constRange bounds freshly drawn constants. Intentionally narrow so the
// search stays numerically stable.
const (
	constLo = -3.0
	constHi = 3.0

	powExpLo = 0.5
	powExpHi = 3.0

	// reanimationDepth bounds the fresh tree that replaces a degenerate child
	reanimationDepth = 2
)

func randConst(rng *rand.Rand) float64 {
	return constLo + (constHi-constLo)*rng.Float64()
}

func randLeaf(rng *rand.Rand) *ExprNode {
	if rng.Float64() < 0.5 {
		return &ExprNode{Op: OpVar}
	}
	return &ExprNode{Op: OpConst, Val: randConst(rng)}
}

// randExpr generates a random tree of at most maxDepth levels above the
// leaves. At depth 0 it always emits a leaf; otherwise it picks uniformly
// among the node kinds (with one extra slot that short-circuits to a leaf,
// keeping trees from always being full).
func randExpr(rng *rand.Rand, maxDepth int) *ExprNode {
	if maxDepth <= 0 {
		return randLeaf(rng)
	}
	switch rng.Intn(8) {
	case 0:
		return &ExprNode{Op: OpAdd, L: randExpr(rng, maxDepth-1), R: randExpr(rng, maxDepth-1)}
	case 1:
		return &ExprNode{Op: OpMul, L: randExpr(rng, maxDepth-1), R: randExpr(rng, maxDepth-1)}
	case 2:
		return &ExprNode{Op: OpSin, L: randExpr(rng, maxDepth-1)}
	case 3:
		return &ExprNode{Op: OpCos, L: randExpr(rng, maxDepth-1)}
	case 4:
		return &ExprNode{Op: OpExp, L: randExpr(rng, maxDepth-1)}
	case 5:
		return &ExprNode{Op: OpPow, Val: powExpLo + (powExpHi-powExpLo)*rng.Float64(), L: randExpr(rng, maxDepth-1)}
	case 6:
		return &ExprNode{Op: OpScale, Val: randConst(rng), L: randExpr(rng, maxDepth-1)}
	default:
		return randLeaf(rng)
	}
}

// mutateExpr returns a mutated copy of e. The parent is never touched.
// With probability cfg.SubtreeReplaceP the whole subtree is discarded for a
// fresh random one (the escape hatch against local optima); otherwise
// constants, exponents and scale factors get small perturbations, sin and
// cos occasionally swap, and recursion carries the mutation into children.
func mutateExpr(rng *rand.Rand, cfg Config, e *ExprNode) *ExprNode {
	if rng.Float64() < cfg.SubtreeReplaceP {
		return randExpr(rng, cfg.MutationSubtreeDepth)
	}
	switch e.Op {
	case OpConst:
		return &ExprNode{Op: OpConst, Val: e.Val + (rng.Float64()*0.4 - 0.2)}
	case OpVar:
		if rng.Float64() < 0.1 {
			return &ExprNode{Op: OpConst, Val: randConst(rng)}
		}
		return &ExprNode{Op: OpVar}
	case OpAdd:
		return &ExprNode{Op: OpAdd, L: mutateExpr(rng, cfg, e.L), R: mutateExpr(rng, cfg, e.R)}
	case OpMul:
		return &ExprNode{Op: OpMul, L: mutateExpr(rng, cfg, e.L), R: mutateExpr(rng, cfg, e.R)}
	case OpSin:
		if rng.Float64() < cfg.SinCosFlipP {
			return &ExprNode{Op: OpCos, L: e.L.Clone()}
		}
		return &ExprNode{Op: OpSin, L: mutateExpr(rng, cfg, e.L)}
	case OpCos:
		if rng.Float64() < cfg.SinCosFlipP {
			return &ExprNode{Op: OpSin, L: e.L.Clone()}
		}
		return &ExprNode{Op: OpCos, L: mutateExpr(rng, cfg, e.L)}
	case OpExp:
		return &ExprNode{Op: OpExp, L: mutateExpr(rng, cfg, e.L)}
	case OpPow:
		return &ExprNode{Op: OpPow, Val: e.Val + (rng.Float64()*0.2 - 0.1), L: mutateExpr(rng, cfg, e.L)}
	case OpScale:
		return &ExprNode{Op: OpScale, Val: e.Val + (rng.Float64()*0.4 - 0.2), L: mutateExpr(rng, cfg, e.L)}
	}
	return e.Clone()
}

// crossoverExpr builds a child from parent and donor. With probability
// cfg.DonorTakeoverP the donor's whole tree replaces this node; otherwise
// recursion descends into one child (a random one for binary nodes, the
// sole child for unary nodes). Leaves and parameterized nodes (pow, scale)
// are structurally untouched; their values only move under mutation.
func crossoverExpr(rng *rand.Rand, cfg Config, parent, donor *ExprNode) *ExprNode {
	if rng.Float64() < cfg.DonorTakeoverP {
		return donor.Clone()
	}
	switch parent.Op {
	case OpConst, OpVar, OpPow, OpScale:
		return parent.Clone()
	case OpSin:
		return &ExprNode{Op: OpSin, L: crossoverExpr(rng, cfg, parent.L, donor)}
	case OpCos:
		return &ExprNode{Op: OpCos, L: crossoverExpr(rng, cfg, parent.L, donor)}
	case OpExp:
		return &ExprNode{Op: OpExp, L: crossoverExpr(rng, cfg, parent.L, donor)}
	case OpAdd:
		if rng.Float64() < 0.5 {
			return &ExprNode{Op: OpAdd, L: crossoverExpr(rng, cfg, parent.L, donor), R: parent.R.Clone()}
		}
		return &ExprNode{Op: OpAdd, L: parent.L.Clone(), R: crossoverExpr(rng, cfg, parent.R, donor)}
	case OpMul:
		if rng.Float64() < 0.5 {
			return &ExprNode{Op: OpMul, L: crossoverExpr(rng, cfg, parent.L, donor), R: parent.R.Clone()}
		}
		return &ExprNode{Op: OpMul, L: parent.L.Clone(), R: crossoverExpr(rng, cfg, parent.R, donor)}
	}
	return parent.Clone()
}

// localOpt runs a short mutation walk on a copy of e before crossover,
// biasing offspring toward locally improved parents without a real
// numerical optimizer.
func localOpt(rng *rand.Rand, cfg Config, e *ExprNode) *ExprNode {
	cur := e.Clone()
	for i := 0; i < cfg.LocalOptSteps; i++ {
		if rng.Float64() < 0.5 {
			cur = mutateExpr(rng, cfg, cur)
		}
	}
	return cur
}

// tournament draws k individuals with replacement and returns the index of
// the one with the lowest fitness. Unevaluated individuals carry +Inf and
// lose every comparison.
func tournament(rng *rand.Rand, fits []float64, k int) int {
	best := rng.Intn(len(fits))
	for i := 1; i < k; i++ {
		c := rng.Intn(len(fits))
		if fits[c] < fits[best] {
			best = c
		}
	}
	return best
}

// survivesProbe is the reanimation check: a child whose value is already
// non-finite at the trivial points x=0 and x=1 is discarded before it can
// poison a generation.
func survivesProbe(e *ExprNode) bool {
	t0 := e.Eval(0)
	t1 := e.Eval(1)
	return !math.IsNaN(t0) && !math.IsInf(t0, 0) && !math.IsNaN(t1) && !math.IsInf(t1, 0)
}
