package main

import (
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"

	"formula_lab/logx"
)

// MaxPerFingerprint caps how many discoveries of one structural family the
// hall keeps, so one lucky shape can't crowd out everything else.
const MaxPerFingerprint = 3

// HallOfFame keeps the top-K discoveries across a whole benchmark session,
// sorted by curiosity descending. Writes take the mutex; Len and Sample read
// from an atomic snapshot and never block the writers.
type HallOfFame struct {
	mu       sync.RWMutex
	K        int
	Records  []DiscoveryRecord
	snapshot atomic.Value // stores []DiscoveryRecord for lock-free reads
}

func NewHallOfFame(k int) *HallOfFame {
	return &HallOfFame{K: k}
}

// Add offers a discovery to the hall with proper locking.
func (h *HallOfFame) Add(rec DiscoveryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.addLocked(rec)
}

// addLocked assumes the lock is already held.
func (h *HallOfFame) addLocked(rec DiscoveryRecord) {
	// Once the hall is full, only admit records better than the current worst.
	if len(h.Records) >= h.K {
		worst := h.Records[len(h.Records)-1].Curiosity
		if rec.Curiosity <= worst {
			return
		}
	}

	// Count records of this structural family and track its worst member.
	fpCount := 0
	worstIndex := -1
	worstCuriosity := rec.Curiosity
	for i, r := range h.Records {
		if r.Fingerprint == rec.Fingerprint {
			fpCount++
			if r.Curiosity < worstCuriosity {
				worstCuriosity = r.Curiosity
				worstIndex = i
			}
		}
	}

	if fpCount >= MaxPerFingerprint {
		if rec.Curiosity <= worstCuriosity || worstIndex == -1 {
			return
		}
		// Replace the worst record of this family.
		h.Records[worstIndex] = rec
	} else {
		h.Records = append(h.Records, rec)
	}

	sort.Slice(h.Records, func(i, j int) bool { return h.Records[i].Curiosity > h.Records[j].Curiosity })

	if len(h.Records) > h.K {
		h.Records = h.Records[:h.K]
	}

	// Update atomic snapshot AFTER modification
	snapshot := make([]DiscoveryRecord, len(h.Records))
	copy(snapshot, h.Records)
	h.snapshot.Store(snapshot)

	logx.LogDiscoveryAdded(rec.Name, rec.Curiosity, len(h.Records))
}

func (h *HallOfFame) Len() int {
	if recs := h.snapshot.Load(); recs != nil {
		if slice, ok := recs.([]DiscoveryRecord); ok {
			return len(slice)
		}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Records)
}

// Top returns the current records, best first.
func (h *HallOfFame) Top() []DiscoveryRecord {
	if recs := h.snapshot.Load(); recs != nil {
		if slice, ok := recs.([]DiscoveryRecord); ok {
			return slice
		}
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]DiscoveryRecord, len(h.Records))
	copy(out, h.Records)
	return out
}

// Sample draws one record by tournament (fast + good), lock-free.
func (h *HallOfFame) Sample(rng *rand.Rand) (DiscoveryRecord, bool) {
	recs := h.Top()
	n := len(recs)
	if n == 0 {
		return DiscoveryRecord{}, false
	}
	k := 4
	best := recs[rng.Intn(n)]
	for i := 1; i < k; i++ {
		c := recs[rng.Intn(n)]
		if c.Curiosity > best.Curiosity {
			best = c
		}
	}
	return best, true
}

// InitSnapshot initializes the atomic snapshot after bulk-loading records
// from a previous session's log.
func (h *HallOfFame) InitSnapshot() {
	h.mu.Lock()
	defer h.mu.Unlock()
	sort.Slice(h.Records, func(i, j int) bool { return h.Records[i].Curiosity > h.Records[j].Curiosity })
	if len(h.Records) > h.K {
		h.Records = h.Records[:h.K]
	}
	snapshot := make([]DiscoveryRecord, len(h.Records))
	copy(snapshot, h.Records)
	h.snapshot.Store(snapshot)
}
