package engine

import (
	"context"
	"fmt"
	"sort"
	"time"
)

const defaultMaxDepth = 64

// Config describes one engine build: a label for logs and results, scalar
// eval weight overrides, and an optional depth cap for deterministic play.
type Config struct {
	Name     string
	Weights  map[string]float64
	MaxDepth int
}

// Local searches in-process with the scalar evaluator. It satisfies Engine.
type Local struct {
	name      string
	overrides map[string]float64
	weights   map[string]float64
	maxDepth  int
}

func NewLocal(cfg Config) *Local {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Local{
		name:      cfg.Name,
		overrides: cfg.Weights,
		weights:   ScoringWeights(cfg.Weights),
		maxDepth:  maxDepth,
	}
}

func (e *Local) Name() string {
	return e.name
}

// Init rejects weight overrides that name no known eval term, so a
// mistyped parameter file fails the whole run instead of silently scoring
// with defaults.
func (e *Local) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var bad []string
	for name := range e.overrides {
		if !KnownFeature(name) {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("unknown eval weight %q", bad[0])
	}
	return nil
}

func (e *Local) Select(ctx context.Context, snap Snapshot, budget time.Duration) (Reply, error) {
	pos, err := snap.Rebuild()
	if err != nil {
		return Reply{}, fmt.Errorf("rebuild position: %w", err)
	}
	s := &searcher{
		weights:  e.weights,
		maxDepth: e.maxDepth,
		ctx:      ctx,
	}
	if budget > 0 {
		s.deadline = time.Now().Add(budget)
	}
	res := s.search(pos)
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	if !res.hasMove {
		return Reply{Eval: res.score, HasEval: true}, nil
	}
	return Reply{Move: res.move, HasMove: true, Eval: res.score, HasEval: true}, nil
}

func (e *Local) Close() error {
	return nil
}
