package engine

import (
	"context"
	"time"

	"gauntlet/pkg/variant"
)

const (
	// MateScore bounds every heuristic eval; losing the last royal at ply
	// n scores -MateScore+n so nearer mates dominate.
	MateScore = 100_000

	checkNodesMask = 511
)

type searcher struct {
	weights  map[string]float64
	maxDepth int
	deadline time.Time
	ctx      context.Context

	nodes   int64
	stopped bool
}

type searchResult struct {
	move    variant.Move
	hasMove bool
	score   int
	depth   int
}

// search runs iterative deepening until the budget expires or maxDepth
// completes. Depth 1 always finishes so there is a move whenever one
// exists.
func (s *searcher) search(p *variant.Position) searchResult {
	var best searchResult
	for depth := 1; depth <= s.maxDepth; depth++ {
		move, hasMove, score := s.root(p, depth)
		if s.stopped && depth > 1 {
			break
		}
		best = searchResult{move: move, hasMove: hasMove, score: score, depth: depth}
		if !hasMove || score >= MateScore-maxMatePly || score <= -MateScore+maxMatePly {
			break
		}
		if s.stopped {
			break
		}
	}
	return best
}

// maxMatePly keeps mate scores distinguishable from heuristic ones.
const maxMatePly = 1000

func (s *searcher) root(p *variant.Position, depth int) (variant.Move, bool, int) {
	moves := Moves(p)
	if len(moves) == 0 {
		return variant.Move{}, false, s.eval(p)
	}
	var bestMove variant.Move
	bestScore := -MateScore - 1
	alpha, beta := -MateScore-1, MateScore+1
	for _, m := range moves {
		child := p.Clone()
		if err := child.Apply(m); err != nil {
			continue
		}
		score := -s.negamax(child, depth-1, 1, -beta, -alpha)
		if s.stopped && depth > 1 {
			break
		}
		if score > bestScore {
			bestScore = score
			bestMove = m
		}
		if score > alpha {
			alpha = score
		}
	}
	return bestMove, true, bestScore
}

func (s *searcher) negamax(p *variant.Position, depth, ply, alpha, beta int) int {
	s.nodes++
	if s.nodes&checkNodesMask == 0 {
		if !s.deadline.IsZero() && time.Now().After(s.deadline) {
			s.stopped = true
		}
		if s.ctx != nil && s.ctx.Err() != nil {
			s.stopped = true
		}
	}
	if s.stopped {
		return 0
	}

	// A side with no royal left has already lost.
	if !hasRoyal(p, p.SideToMove) {
		return -MateScore + ply
	}
	if depth <= 0 {
		return s.eval(p)
	}

	moves := Moves(p)
	if len(moves) == 0 {
		return s.eval(p)
	}
	best := -MateScore - 1
	for _, m := range moves {
		child := p.Clone()
		if err := child.Apply(m); err != nil {
			continue
		}
		score := -s.negamax(child, depth-1, ply+1, -beta, -alpha)
		if s.stopped {
			return 0
		}
		if score > best {
			best = score
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}
	return best
}

// eval scores the position for the side to move.
func (s *searcher) eval(p *variant.Position) int {
	score := Eval(p, s.weights)
	if p.SideToMove == variant.Black {
		return -score
	}
	return score
}

func hasRoyal(p *variant.Position, side variant.Color) bool {
	for _, pc := range p.Pieces {
		if pc.Owner == side && pc.Type.IsRoyal() {
			return true
		}
	}
	return false
}
