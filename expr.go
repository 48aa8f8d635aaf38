package main

import (
	"fmt"
	"math"
	"strings"
)

// ExprOp identifies the kind of an expression node
type ExprOp int

const (
	OpConst ExprOp = iota // fixed constant, value in Val
	OpVar                 // the free variable x
	OpAdd                 // L + R
	OpMul                 // L * R
	OpSin                 // sin(L)
	OpCos                 // cos(L)
	OpExp                 // e^L
	OpPow                 // L raised to the fixed real exponent in Val
	OpScale               // L scaled by the fixed factor in Val
)

// ExprNode is a node of a candidate formula tree.
// Val is the constant for OpConst, the exponent for OpPow and the factor
// for OpScale; it is unused for the other ops. Children are exclusively
// owned: trees are never shared between individuals, clones are deep.
type ExprNode struct {
	Op  ExprOp
	Val float64
	L   *ExprNode
	R   *ExprNode
}

// Eval computes the node's value at x. Total for every finite x: a negative
// base with a fractional exponent uses the absolute value of the base, and a
// non-finite base short-circuits to NaN so the fitness layer can penalize it.
func (e *ExprNode) Eval(x float64) float64 {
	switch e.Op {
	case OpConst:
		return e.Val
	case OpVar:
		return x
	case OpAdd:
		return e.L.Eval(x) + e.R.Eval(x)
	case OpMul:
		return e.L.Eval(x) * e.R.Eval(x)
	case OpSin:
		return math.Sin(e.L.Eval(x))
	case OpCos:
		return math.Cos(e.L.Eval(x))
	case OpExp:
		return math.Exp(e.L.Eval(x))
	case OpPow:
		base := e.L.Eval(x)
		if math.IsNaN(base) || math.IsInf(base, 0) {
			return math.NaN()
		}
		if base < 0 && e.Val != math.Trunc(e.Val) {
			// negative base with fractional exponent would be complex
			base = -base
		}
		return math.Pow(base, e.Val)
	case OpScale:
		return e.L.Eval(x) * e.Val
	}
	return math.NaN()
}

// NodeCount counts every node in the tree. Used only as a parsimony signal.
func (e *ExprNode) NodeCount() int {
	if e == nil {
		return 0
	}
	return 1 + e.L.NodeCount() + e.R.NodeCount()
}

// Depth returns the height of the tree (a lone leaf has depth 0).
func (e *ExprNode) Depth() int {
	if e == nil {
		return -1
	}
	d := e.L.Depth()
	if r := e.R.Depth(); r > d {
		d = r
	}
	return d + 1
}

// Clone deep-copies the tree so mutation of the copy can never reach the
// original. Parents referenced by several offspring in the same generation
// rely on this.
func (e *ExprNode) Clone() *ExprNode {
	if e == nil {
		return nil
	}
	return &ExprNode{Op: e.Op, Val: e.Val, L: e.L.Clone(), R: e.R.Clone()}
}

// Render returns the formula in stable human-readable form, e.g.
// (sin((1.200*x))+(0.400*(x)^2.000)). Display round-trip only; the engine
// never parses it back.
func (e *ExprNode) Render() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (e *ExprNode) render(b *strings.Builder) {
	switch e.Op {
	case OpConst:
		fmt.Fprintf(b, "%.3f", e.Val)
	case OpVar:
		b.WriteString("x")
	case OpAdd:
		b.WriteString("(")
		e.L.render(b)
		b.WriteString("+")
		e.R.render(b)
		b.WriteString(")")
	case OpMul:
		b.WriteString("(")
		e.L.render(b)
		b.WriteString("*")
		e.R.render(b)
		b.WriteString(")")
	case OpSin:
		b.WriteString("sin(")
		e.L.render(b)
		b.WriteString(")")
	case OpCos:
		b.WriteString("cos(")
		e.L.render(b)
		b.WriteString(")")
	case OpExp:
		b.WriteString("exp(")
		e.L.render(b)
		b.WriteString(")")
	case OpPow:
		b.WriteString("(")
		e.L.render(b)
		fmt.Fprintf(b, ")^%.3f", e.Val)
	case OpScale:
		fmt.Fprintf(b, "(%.3f*", e.Val)
		e.L.render(b)
		b.WriteString(")")
	}
}

// Fingerprint returns the structural skeleton of the tree: same shape and
// ops, constants collapsed to "c". Two formulas differing only in tuned
// constants share a fingerprint, which is what the hall of fame caps on.
func (e *ExprNode) Fingerprint() string {
	var b strings.Builder
	e.fingerprint(&b)
	return b.String()
}

func (e *ExprNode) fingerprint(b *strings.Builder) {
	switch e.Op {
	case OpConst:
		b.WriteString("c")
	case OpVar:
		b.WriteString("x")
	case OpAdd:
		b.WriteString("(")
		e.L.fingerprint(b)
		b.WriteString("+")
		e.R.fingerprint(b)
		b.WriteString(")")
	case OpMul:
		b.WriteString("(")
		e.L.fingerprint(b)
		b.WriteString("*")
		e.R.fingerprint(b)
		b.WriteString(")")
	case OpSin:
		b.WriteString("sin(")
		e.L.fingerprint(b)
		b.WriteString(")")
	case OpCos:
		b.WriteString("cos(")
		e.L.fingerprint(b)
		b.WriteString(")")
	case OpExp:
		b.WriteString("exp(")
		e.L.fingerprint(b)
		b.WriteString(")")
	case OpPow:
		b.WriteString("(")
		e.L.fingerprint(b)
		b.WriteString(")^c")
	case OpScale:
		b.WriteString("(c*")
		e.L.fingerprint(b)
		b.WriteString(")")
	}
}
