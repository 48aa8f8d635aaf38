package main

import (
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func rec(name, fp string, curiosity float64) DiscoveryRecord {
	return DiscoveryRecord{Name: name, Formula: name, Fingerprint: fp, Curiosity: curiosity}
}

func TestHallOrdering(t *testing.T) {
	h := NewHallOfFame(10)
	h.Add(rec("a", "fa", 0.3))
	h.Add(rec("b", "fb", 0.9))
	h.Add(rec("c", "fc", 0.6))

	top := h.Top()
	require.Len(t, top, 3)
	require.Equal(t, "b", top[0].Name)
	require.Equal(t, "c", top[1].Name)
	require.Equal(t, "a", top[2].Name)
}

func TestHallCapacity(t *testing.T) {
	h := NewHallOfFame(3)
	for i := 0; i < 10; i++ {
		h.Add(rec(fmt.Sprintf("r%d", i), fmt.Sprintf("f%d", i), float64(i)/10.0))
	}

	require.Equal(t, 3, h.Len())
	top := h.Top()
	require.InDelta(t, 0.9, top[0].Curiosity, 1e-12)
	require.InDelta(t, 0.7, top[2].Curiosity, 1e-12)
}

func TestHallFingerprintCap(t *testing.T) {
	h := NewHallOfFame(10)
	for i := 0; i < 6; i++ {
		h.Add(rec(fmt.Sprintf("same%d", i), "shared", 0.1*float64(i+1)))
	}
	h.Add(rec("other", "distinct", 0.05))

	// At most MaxPerFingerprint of one family, keeping the best of them.
	count := 0
	for _, r := range h.Top() {
		if r.Fingerprint == "shared" {
			count++
		}
	}
	require.Equal(t, MaxPerFingerprint, count)
	require.InDelta(t, 0.6, h.Top()[0].Curiosity, 1e-12)

	// The unrelated family still got in.
	require.Equal(t, MaxPerFingerprint+1, h.Len())
}

func TestHallRejectsWorseWhenFull(t *testing.T) {
	h := NewHallOfFame(2)
	h.Add(rec("a", "fa", 0.8))
	h.Add(rec("b", "fb", 0.6))
	h.Add(rec("c", "fc", 0.1)) // worse than the current worst

	require.Equal(t, 2, h.Len())
	for _, r := range h.Top() {
		require.NotEqual(t, "c", r.Name)
	}
}

func TestHallSample(t *testing.T) {
	h := NewHallOfFame(10)
	rng := rand.New(rand.NewSource(1))

	_, ok := h.Sample(rng)
	require.False(t, ok)

	h.Add(rec("a", "fa", 0.4))
	h.Add(rec("b", "fb", 0.8))
	got, ok := h.Sample(rng)
	require.True(t, ok)
	require.Contains(t, []string{"a", "b"}, got.Name)
}

func TestHallConcurrentAdds(t *testing.T) {
	h := NewHallOfFame(16)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				h.Add(rec(
					fmt.Sprintf("w%d-r%d", id, i),
					fmt.Sprintf("fp%d-%d", id, i),
					rand.New(rand.NewSource(int64(id*100+i))).Float64(),
				))
			}
		}(w)
	}
	wg.Wait()

	top := h.Top()
	require.LessOrEqual(t, len(top), 16)
	for i := 1; i < len(top); i++ {
		require.GreaterOrEqual(t, top[i-1].Curiosity, top[i].Curiosity)
	}
}
