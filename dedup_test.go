package main

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeenMapCheckAndSet(t *testing.T) {
	m := NewShardedSeenMap()

	require.True(t, m.CheckAndSet("(x+1.000)"))
	require.False(t, m.CheckAndSet("(x+1.000)"))
	require.True(t, m.CheckAndSet("(x*x)"))

	require.EqualValues(t, 1, m.Duplicates())
	require.Equal(t, 2, m.Len())
}

func TestSeenMapConcurrent(t *testing.T) {
	m := NewShardedSeenMap()

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				m.CheckAndSet(fmt.Sprintf("w%d-f%d", id, i))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*perWorker, m.Len())
	require.EqualValues(t, 0, m.Duplicates())
}

func TestSeenMapSharedFormulaCountedOnce(t *testing.T) {
	m := NewShardedSeenMap()

	const workers = 8
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.CheckAndSet("sin(x)")
		}()
	}
	wg.Wait()

	require.Equal(t, 1, m.Len())
	require.EqualValues(t, workers-1, m.Duplicates())
}
