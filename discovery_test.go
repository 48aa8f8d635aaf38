package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCuriosityFromMSE(t *testing.T) {
	require.Equal(t, 1.0, CuriosityFromMSE(0))
	require.InDelta(t, 0.5, CuriosityFromMSE(1), 1e-12)

	// Monotone: a better fit is always more curious.
	prev := CuriosityFromMSE(0)
	for _, mse := range []float64{0.001, 0.1, 1, 10, 1e6} {
		c := CuriosityFromMSE(mse)
		require.Greater(t, c, 0.0)
		require.LessOrEqual(t, c, 1.0)
		require.Less(t, c, prev)
		prev = c
	}
}

func TestJSONLSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discoveries.jsonl")
	sink, err := NewJSONLSink(path)
	require.NoError(t, err)

	recs := []DiscoveryRecord{
		{Name: "wave", Formula: "sin(x)", Fingerprint: "sin(x)", MSE: 0.5, Curiosity: CuriosityFromMSE(0.5), Seed: 1},
		{Name: "quad", Formula: "(x*x)", Fingerprint: "(x*x)", MSE: 0.0, Curiosity: 1.0, Seed: 2},
		{Name: "exp", Formula: "exp(x)", Fingerprint: "exp(x)", MSE: 2.0, Curiosity: CuriosityFromMSE(2.0), Seed: 3},
	}
	for _, r := range recs {
		require.NoError(t, sink.Append(r))
	}
	require.NoError(t, sink.Close())

	got, err := LoadRecentDiscoveries(path, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "quad", got[0].Name)
	require.Equal(t, "exp", got[1].Name)
	require.Equal(t, int64(3), got[1].Seed)
}

func TestLoadSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "discoveries.jsonl")
	content := `{"name":"wave","formula":"sin(x)","mse":0.5}
this line is not json
{"name":"quad","formula":"(x*x)","mse":0.0}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := LoadRecentDiscoveries(path, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "wave", got[0].Name)
	require.Equal(t, "quad", got[1].Name)
}

func TestSubSeedFromFormulaStable(t *testing.T) {
	a := SubSeedFromFormula("(x*x)")
	b := SubSeedFromFormula("(x*x)")
	c := SubSeedFromFormula("sin(x)")

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
	require.GreaterOrEqual(t, a, int64(0))
	require.GreaterOrEqual(t, c, int64(0))
}
