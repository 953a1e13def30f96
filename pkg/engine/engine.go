// Package engine supplies the in-process acting role for trials: move
// selection by shallow search over the fairy piece set, plus the feature
// extraction the tuning pipeline feeds on.
package engine

import (
	"context"
	"fmt"
	"time"

	"gauntlet/pkg/variant"
)

// Snapshot is the stateless move-request input: the original starting
// position plus every move played since. The acting role never receives a
// pre-mutated running state.
type Snapshot struct {
	Initial *variant.Position
	Moves   []variant.Move
}

// Rebuild replays the snapshot from scratch into a live position.
func (s Snapshot) Rebuild() (*variant.Position, error) {
	p := s.Initial.Clone()
	for i, m := range s.Moves {
		if err := p.Apply(m); err != nil {
			return nil, fmt.Errorf("replay move %d (%v): %w", i+1, m, err)
		}
	}
	return p, nil
}

// Reply carries the chosen move, if any, and an optional evaluation in
// centipawns from the mover's perspective.
type Reply struct {
	Move    variant.Move
	HasMove bool
	Eval    int
	HasEval bool
}

// Engine is the acting-role contract. Select must answer within the given
// budget; an empty reply means no usable move. Implementations are expected
// to be stateless across Select calls so trials can replay from scratch
// every ply.
type Engine interface {
	Init(ctx context.Context) error
	Select(ctx context.Context, snap Snapshot, budget time.Duration) (Reply, error)
	Close() error
}
