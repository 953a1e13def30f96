package arena

import (
	"context"
	"fmt"
	"time"

	"gauntlet/internal/domain"
	"gauntlet/pkg/engine"
	"gauntlet/pkg/variant"
)

// Adjudication never fires before this many plies, and never below this
// many centipawns no matter how low the configured threshold is set.
const (
	adjMinPly       = 20
	adjMinThreshold = 1500
)

const (
	roleOld = 0
	roleNew = 1
)

type roleEval struct {
	cp int
	ok bool
}

type trial struct {
	cfg     domain.TrialConfig
	engines [2]engine.Engine

	initial *variant.Position
	pos     *variant.Position
	moves   []variant.Move
	plies   []domain.PlyRecord
	keys    map[variant.PositionKey]int
	clock   *gameClock

	lastEval [2]roleEval
	samples  []domain.Sample
}

// RunTrial plays one game between the two roles and returns its outcome.
// The acting engine is handed the initial position plus the full move
// history every ply, never a running state, so engines stay stateless.
func RunTrial(ctx context.Context, oldEng, newEng engine.Engine, cfg domain.TrialConfig) domain.Outcome {
	var out = domain.Outcome{GameNumber: cfg.GameNumber, NewPlaysWhite: cfg.NewPlaysWhite}

	if cfg.Settings.TrialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Settings.TrialTimeout)
		defer cancel()
	}

	var t = &trial{
		cfg:     cfg,
		engines: [2]engine.Engine{roleOld: oldEng, roleNew: newEng},
		initial: variant.NewStandardPosition(),
		keys:    make(map[variant.PositionKey]int),
		clock:   newGameClock(cfg.Settings.Time),
	}
	t.pos = t.initial.Clone()
	t.keys[t.pos.Key()]++

	for _, m := range cfg.Opening {
		var mover = t.pos.SideToMove
		if err := t.pos.Apply(m); err != nil {
			out.Err = fmt.Errorf("game %d: opening move %v: %w", cfg.GameNumber, m, err)
			return out
		}
		t.moves = append(t.moves, m)
		t.plies = append(t.plies, domain.PlyRecord{Move: m, Mover: mover})
		t.keys[t.pos.Key()]++
	}

	for {
		if err := ctx.Err(); err != nil {
			out.Err = fmt.Errorf("game %d: %w", cfg.GameNumber, err)
			return out
		}
		t.maybeSample()

		var mover = t.pos.SideToMove
		var role = t.roleFor(mover)
		var reply, elapsed, err = t.act(ctx, role)
		if err != nil {
			out.Err = fmt.Errorf("game %d ply %d: %w", cfg.GameNumber, len(t.moves)+1, err)
			return out
		}

		if t.clock != nil && t.clock.charge(mover, elapsed) {
			return t.finishWin(out, mover.Opponent(), domain.ReasonTimeForfeit)
		}
		if reply.HasEval {
			t.lastEval[role] = roleEval{cp: whiteRelative(reply.Eval, mover), ok: true}
		}
		if !reply.HasMove {
			return t.finishWin(out, mover.Opponent(), domain.ReasonNoMove)
		}
		if err := t.pos.Apply(reply.Move); err != nil {
			// The offending move is kept out of the history so the log
			// stays replayable.
			return t.finishWin(out, mover.Opponent(), domain.ReasonIllegalMove)
		}
		t.moves = append(t.moves, reply.Move)
		var rec = domain.PlyRecord{Move: reply.Move, Mover: mover, Elapsed: elapsed}
		if reply.HasEval {
			rec.EvalCP = whiteRelative(reply.Eval, mover)
			rec.HasEval = true
		}
		t.plies = append(t.plies, rec)

		t.keys[t.pos.Key()]++
		if t.keys[t.pos.Key()] >= 3 {
			return t.finishDraw(out, domain.ReasonThreefold)
		}
		if t.pos.HalfmoveClock >= 100 {
			return t.finishDraw(out, domain.ReasonFiftyMove)
		}
		if v := t.pos.Material(); v.Over {
			if v.Decided {
				return t.finishWin(out, v.Winner, domain.ReasonCheckmateProxy)
			}
			return t.finishDraw(out, domain.ReasonMaterialDraw)
		}
		if winner, ok := t.adjudicate(); ok {
			return t.finishWin(out, winner, domain.ReasonAdjudication)
		}
		if len(t.moves) >= t.cfg.Settings.MaxMoves {
			return t.finishDraw(out, domain.ReasonMoveLimit)
		}
	}
}

func (t *trial) roleFor(side variant.Color) int {
	if (side == variant.White) == t.cfg.NewPlaysWhite {
		return roleNew
	}
	return roleOld
}

func (t *trial) act(ctx context.Context, role int) (engine.Reply, time.Duration, error) {
	var budget time.Duration
	if t.clock != nil {
		budget = t.clock.budget(t.pos.SideToMove)
	} else {
		budget = t.cfg.Settings.Time.MoveTime
	}
	var snap = engine.Snapshot{Initial: t.initial, Moves: t.moves}
	var start = time.Now()
	reply, err := t.engines[role].Select(ctx, snap, budget)
	return reply, time.Since(start), err
}

// adjudicate awards the game once both roles agree the position is
// lopsided: same sign, both magnitudes at or above the threshold.
func (t *trial) adjudicate() (variant.Color, bool) {
	if len(t.moves) < adjMinPly {
		return variant.White, false
	}
	var oldEval, newEval = t.lastEval[roleOld], t.lastEval[roleNew]
	if !oldEval.ok || !newEval.ok {
		return variant.White, false
	}
	var threshold = t.cfg.Settings.AdjThreshold
	if threshold < adjMinThreshold {
		threshold = adjMinThreshold
	}
	if oldEval.cp >= threshold && newEval.cp >= threshold {
		return variant.White, true
	}
	if oldEval.cp <= -threshold && newEval.cp <= -threshold {
		return variant.Black, true
	}
	return variant.White, false
}

func (t *trial) finishWin(out domain.Outcome, winner variant.Color, reason domain.Reason) domain.Outcome {
	out.Decisive = true
	out.Winner = winner
	return t.finish(out, reason)
}

func (t *trial) finishDraw(out domain.Outcome, reason domain.Reason) domain.Outcome {
	return t.finish(out, reason)
}

func (t *trial) finish(out domain.Outcome, reason domain.Reason) domain.Outcome {
	out.Reason = reason
	out.Moves = t.moves
	out.Plies = t.plies
	var token = out.Token()
	for i := range t.samples {
		t.samples[i].Result = token
	}
	out.Samples = t.samples
	if t.lastEval[roleOld].ok && t.lastEval[roleNew].ok {
		out.EvalDiff = t.lastEval[roleNew].cp - t.lastEval[roleOld].cp
	}
	return out
}

func whiteRelative(cp int, mover variant.Color) int {
	if mover == variant.Black {
		return -cp
	}
	return cp
}
