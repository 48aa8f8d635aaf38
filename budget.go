package main

import "sync/atomic"

// EvalBudget is the one object in the engine that concurrent workers mutate:
// a hard ceiling on fitness evaluations for a whole run. Claims go through a
// single compare-and-swap, so the total number of successful claims can
// never exceed the ceiling no matter how many workers hammer it.
type EvalBudget struct {
	limit int64
	used  atomic.Int64
}

// NewEvalBudget creates a budget with the given ceiling.
func NewEvalBudget(limit int64) *EvalBudget {
	return &EvalBudget{limit: limit}
}

// TryClaim atomically claims one evaluation. It returns false, leaving the
// counter untouched, once the ceiling is reached. This is hard
// backpressure: a failed claim means the evaluation must not run.
func (b *EvalBudget) TryClaim() bool {
	for {
		cur := b.used.Load()
		if cur >= b.limit {
			return false
		}
		if b.used.CompareAndSwap(cur, cur+1) {
			return true
		}
	}
}

// Used returns the number of successful claims so far.
func (b *EvalBudget) Used() int64 {
	return b.used.Load()
}

// Remaining returns how many claims are still available.
func (b *EvalBudget) Remaining() int64 {
	r := b.limit - b.used.Load()
	if r < 0 {
		return 0
	}
	return r
}

// Limit returns the configured ceiling.
func (b *EvalBudget) Limit() int64 {
	return b.limit
}

// Exhausted reports whether no claims remain.
func (b *EvalBudget) Exhausted() bool {
	return b.used.Load() >= b.limit
}
