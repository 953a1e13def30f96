package main

import (
	"context"
	"math/rand"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gauntlet/pkg/engine"
	"gauntlet/pkg/variant"
)

const branchFactor = 3

type opening struct {
	moves []variant.Move
	key   variant.PositionKey
}

// run restarts the random walk from the standard setup forever; the
// writer cancels the context once it has collected enough unique lines.
func run(ctx context.Context, log zerolog.Logger) error {
	log.Info().Msg("opengen started")
	defer log.Info().Msg("opengen finished")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	var lines = make(chan opening, 128)

	g.Go(func() error {
		var w = &walker{
			rand:    rand.New(rand.NewSource(config.Seed)),
			weights: engine.ScoringWeights(nil),
		}
		for {
			var err = w.explore(ctx, variant.NewStandardPosition(), nil, config.Ply, lines)
			if err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		var err = saveLines(ctx, config.Output, config.Lines, lines, log)
		cancel()
		return err
	})

	return g.Wait()
}

type walker struct {
	rand    *rand.Rand
	weights map[string]float64
}

// explore plays a few random moves per node. A reached leaf is emitted
// when its static eval sits inside the balance bound; lines that lose a
// royal on the way never reach a leaf.
func (w *walker) explore(ctx context.Context, pos *variant.Position, line []variant.Move, depth int, lines chan<- opening) error {
	if depth <= 0 {
		var score = engine.Eval(pos, w.weights)
		if score <= -config.Bound || score >= config.Bound {
			return nil
		}
		var op = opening{moves: append([]variant.Move(nil), line...), key: pos.Key()}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case lines <- op:
		}
		return nil
	}

	var moves = engine.Moves(pos)
	if len(moves) == 0 {
		return nil
	}
	for i := 0; i < branchFactor; i++ {
		var m = moves[w.rand.Intn(len(moves))]
		var child = pos.Clone()
		if err := child.Apply(m); err != nil {
			continue
		}
		if child.Material().Over {
			continue
		}
		if err := w.explore(ctx, child, append(line, m), depth-1, lines); err != nil {
			return err
		}
	}
	return nil
}
