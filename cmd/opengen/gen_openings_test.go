package main

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gauntlet/pkg/engine"
	"gauntlet/pkg/variant"
)

func TestExploreEmitsReplayableLines(t *testing.T) {
	config.Bound = 700
	var w = &walker{
		rand:    rand.New(rand.NewSource(1)),
		weights: engine.ScoringWeights(nil),
	}

	var lines = make(chan opening, 64)
	require.NoError(t, w.explore(context.Background(), variant.NewStandardPosition(), nil, 2, lines))
	close(lines)

	var count int
	for op := range lines {
		count++
		require.Len(t, op.moves, 2)
		var pos = variant.NewStandardPosition()
		for _, m := range op.moves {
			require.NoError(t, pos.Apply(m))
		}
		require.Equal(t, op.key, pos.Key())
	}
	require.Greater(t, count, 0)
}

func TestSaveLinesDedupes(t *testing.T) {
	var out = filepath.Join(t.TempDir(), "book.txt")

	var e4 = variant.Move{From: variant.Coord{X: 5, Y: 2}, To: variant.Coord{X: 5, Y: 4}}
	var d4 = variant.Move{From: variant.Coord{X: 4, Y: 2}, To: variant.Coord{X: 4, Y: 4}}

	var lines = make(chan opening, 8)
	lines <- opening{moves: []variant.Move{e4}, key: 1}
	lines <- opening{moves: []variant.Move{e4}, key: 1}
	lines <- opening{moves: []variant.Move{e4, d4}, key: 2}

	require.NoError(t, saveLines(context.Background(), out, 2, lines, zerolog.Nop()))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.Equal(t, "5,2>5,4\n5,2>5,4 4,2>4,4\n", string(data))
}
