package main

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/PaesslerAG/gval"
	"github.com/stretchr/testify/require"
)

func TestEvalIsTotal(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	xs := GridRange(-10, 10, 0.5)
	for i := 0; i < 500; i++ {
		e := randExpr(rng, 4)
		for _, x := range xs {
			// Must return, never panic. NaN and Inf are legal outputs.
			_ = e.Eval(x)
		}
	}
}

func TestPowNegativeBaseFractionalExponent(t *testing.T) {
	e := &ExprNode{Op: OpPow, Val: 2.5, L: &ExprNode{Op: OpVar}}

	// Fractional exponent on a negative base falls back to the magnitude.
	require.InDelta(t, math.Pow(2, 2.5), e.Eval(-2), 1e-12)
	require.InDelta(t, math.Pow(2, 2.5), e.Eval(2), 1e-12)

	// Whole exponents keep ordinary semantics.
	sq := &ExprNode{Op: OpPow, Val: 2.0, L: &ExprNode{Op: OpVar}}
	require.InDelta(t, 4.0, sq.Eval(-2), 1e-12)
}

func TestPowNonFiniteBase(t *testing.T) {
	inner := &ExprNode{Op: OpExp, L: &ExprNode{Op: OpConst, Val: 1000}} // overflows to +Inf
	e := &ExprNode{Op: OpPow, Val: 0.5, L: inner}
	require.True(t, math.IsNaN(e.Eval(0)) || math.IsInf(e.Eval(0), 0))
}

func TestCloneIsIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	orig := randExpr(rng, 4)
	before := orig.Render()

	c := orig.Clone()
	c.Val = 99
	if c.L != nil {
		c.L.Val = -99
	}

	require.Equal(t, before, orig.Render())
}

func TestNodeCountAndDepth(t *testing.T) {
	x := &ExprNode{Op: OpVar}
	require.Equal(t, 1, x.NodeCount())
	require.Equal(t, 0, x.Depth())

	sum := &ExprNode{Op: OpAdd, L: x, R: &ExprNode{Op: OpConst, Val: 1}}
	require.Equal(t, 3, sum.NodeCount())
	require.Equal(t, 1, sum.Depth())

	wrapped := &ExprNode{Op: OpSin, L: sum}
	require.Equal(t, 4, wrapped.NodeCount())
	require.Equal(t, 2, wrapped.Depth())
}

// Cross-check the renderer against an independent expression evaluator: a
// rendered formula, parsed and evaluated by gval, must agree with Eval.
func TestRenderAgreesWithEval(t *testing.T) {
	lang := gval.Full(
		gval.Function("sin", math.Sin),
		gval.Function("cos", math.Cos),
		gval.Function("exp", math.Exp),
	)

	trees := []*ExprNode{
		{Op: OpAdd,
			L: &ExprNode{Op: OpMul, L: &ExprNode{Op: OpVar}, R: &ExprNode{Op: OpVar}},
			R: &ExprNode{Op: OpConst, Val: 1.5}},
		{Op: OpSin, L: &ExprNode{Op: OpScale, Val: 2.25, L: &ExprNode{Op: OpVar}}},
		{Op: OpCos, L: &ExprNode{Op: OpAdd, L: &ExprNode{Op: OpVar}, R: &ExprNode{Op: OpConst, Val: -0.75}}},
		{Op: OpExp, L: &ExprNode{Op: OpScale, Val: 0.5, L: &ExprNode{Op: OpVar}}},
		{Op: OpPow, Val: 2.5, L: &ExprNode{Op: OpVar}}, // positive xs only below
	}

	for _, tree := range trees {
		formula := strings.ReplaceAll(tree.Render(), "^", "**")
		for _, x := range []float64{0.5, 1.0, 2.5} {
			got, err := lang.Evaluate(formula, map[string]interface{}{"x": x})
			require.NoError(t, err, formula)
			require.InDelta(t, tree.Eval(x), got.(float64), 1e-9, formula)
		}
	}
}

func TestFingerprintCollapsesConstants(t *testing.T) {
	a := &ExprNode{Op: OpAdd, L: &ExprNode{Op: OpVar}, R: &ExprNode{Op: OpConst, Val: 1.0}}
	b := &ExprNode{Op: OpAdd, L: &ExprNode{Op: OpVar}, R: &ExprNode{Op: OpConst, Val: 2.7}}
	c := &ExprNode{Op: OpMul, L: &ExprNode{Op: OpVar}, R: &ExprNode{Op: OpConst, Val: 1.0}}

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	require.NotEqual(t, a.Render(), b.Render())
}
