package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeStat(t *testing.T) {
	require.Equal(t, Stat{WinningFraction: 0.5}, ComputeStat(0, 0, 0))

	var even = ComputeStat(10, 10, 20)
	require.InDelta(t, 0.5, even.WinningFraction, 1e-9)
	require.InDelta(t, 0, even.EloDifference, 1e-9)
	require.InDelta(t, 0.5, even.LOS, 1e-9)

	var ahead = ComputeStat(30, 10, 0)
	require.InDelta(t, 0.75, ahead.WinningFraction, 1e-9)
	require.Greater(t, ahead.EloDifference, 150.0)
	require.Greater(t, ahead.LOS, 0.99)

	var drawsOnly = ComputeStat(0, 0, 12)
	require.InDelta(t, 0.5, drawsOnly.WinningFraction, 1e-9)
	require.InDelta(t, 0.5, drawsOnly.LOS, 1e-9, "all draws prove nothing either way")
}
