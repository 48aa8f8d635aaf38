package main

import (
	"sync"
	"sync/atomic"
)

const numSeenShards = 64 // power of 2

// ShardedSeenMap tracks which rendered formulas a run has already produced,
// sharded across 64 mutexes so concurrent evaluators don't serialize on one
// lock. Duplicate counts feed the progress line and the live monitor; the
// map never blocks an evaluation.
type ShardedSeenMap struct {
	dups   atomic.Int64
	shards [numSeenShards]struct {
		mu    sync.Mutex
		items map[string]struct{}
	}
}

// NewShardedSeenMap creates a seen map with pre-sized shards.
func NewShardedSeenMap() *ShardedSeenMap {
	ssm := &ShardedSeenMap{}
	for i := 0; i < numSeenShards; i++ {
		ssm.shards[i].items = make(map[string]struct{}, 64)
	}
	return ssm
}

// fnv1a32 hashes a string with FNV-1a. Fast, good shard distribution.
func fnv1a32(s string) uint32 {
	hash := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// fnv1a64 is the 64-bit variant, used to derive follow-up search seeds from
// formula text.
func fnv1a64(s string) uint64 {
	hash := uint64(14695981039346656037)
	for i := 0; i < len(s); i++ {
		hash ^= uint64(s[i])
		hash *= 1099511628211
	}
	return hash
}

// CheckAndSet records a formula. Returns true if it was new, false if the
// run has produced it before (and bumps the duplicate counter).
func (ssm *ShardedSeenMap) CheckAndSet(formula string) bool {
	shard := &ssm.shards[fnv1a32(formula)&(numSeenShards-1)]
	shard.mu.Lock()
	_, seen := shard.items[formula]
	if !seen {
		shard.items[formula] = struct{}{}
	}
	shard.mu.Unlock()
	if seen {
		ssm.dups.Add(1)
	}
	return !seen
}

// Duplicates returns how many repeat formulas have been recorded.
func (ssm *ShardedSeenMap) Duplicates() int64 {
	return ssm.dups.Load()
}

// Len returns the number of distinct formulas recorded.
func (ssm *ShardedSeenMap) Len() int {
	n := 0
	for i := 0; i < numSeenShards; i++ {
		shard := &ssm.shards[i]
		shard.mu.Lock()
		n += len(shard.items)
		shard.mu.Unlock()
	}
	return n
}
