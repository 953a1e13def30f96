// Package domain holds the data types shared between the trial pipeline
// and the tuner: trial configuration, verdicts, training samples and
// dataset rows.
package domain

import (
	"strings"
	"time"

	"gauntlet/pkg/variant"
)

// Result is a trial verdict relative to the new (candidate) role.
type Result int

const (
	ResultDraw Result = iota
	ResultWin
	ResultLoss
)

func (r Result) String() string {
	switch r {
	case ResultWin:
		return "win"
	case ResultLoss:
		return "loss"
	}
	return "draw"
}

// Reason records why a trial terminated.
type Reason string

const (
	ReasonTimeForfeit    Reason = "time_forfeit"
	ReasonNoMove         Reason = "no_move"
	ReasonIllegalMove    Reason = "illegal_move"
	ReasonThreefold      Reason = "threefold"
	ReasonFiftyMove      Reason = "fifty_move"
	ReasonCheckmateProxy Reason = "checkmate_proxy"
	ReasonMaterialDraw   Reason = "material_draw"
	ReasonAdjudication   Reason = "adjudication"
	ReasonMoveLimit      Reason = "move_limit"
)

// Result tokens stamped onto samples once the verdict is known.
const (
	TokenWhiteWins = "1-0"
	TokenBlackWins = "0-1"
	TokenDraw      = "1/2-1/2"
)

// TimeControl selects the per-move budget. A positive MoveTime means a
// fixed budget per move with no forfeits; otherwise Base/Increment clocks
// are simulated and exhausting one loses.
type TimeControl struct {
	MoveTime  time.Duration
	Base      time.Duration
	Increment time.Duration
}

// Clocked reports whether per-side clocks are in effect.
func (tc TimeControl) Clocked() bool {
	return tc.MoveTime <= 0 && tc.Base > 0
}

// TrialSettings are shared by every trial in a run.
type TrialSettings struct {
	Time         TimeControl
	MaxMoves     int
	AdjThreshold int

	// TrialTimeout bounds one whole trial; zero disables it and a hung
	// engine call then stalls its worker.
	TrialTimeout time.Duration
}

// TrialConfig describes a single scheduled game.
type TrialConfig struct {
	GameNumber    int
	NewPlaysWhite bool
	Opening       []variant.Move
	Settings      TrialSettings
}

// PlyRecord is one played half-move with its telemetry: the mover's
// white-relative eval when one was reported, and the time the move took.
// Opening moves carry neither.
type PlyRecord struct {
	Move    variant.Move
	Mover   variant.Color
	EvalCP  int
	HasEval bool
	Elapsed time.Duration
}

// Sample is a training position captured mid-trial. Result stays empty
// until the trial terminates and every sample is stamped with one token.
type Sample struct {
	Position   *variant.Position
	Moves      []variant.Move
	SideToMove variant.Color
	Ply        int
	PieceCount int
	Result     string
}

// Outcome is a finished trial. Err set means the trial aborted on a
// runtime failure: no verdict, samples discarded, excluded from counters.
// Plies parallels Moves entry for entry.
type Outcome struct {
	GameNumber    int
	NewPlaysWhite bool
	Decisive      bool
	Winner        variant.Color
	Reason        Reason
	Moves         []variant.Move
	Plies         []PlyRecord
	Samples       []Sample
	EvalDiff      int
	Err           error
}

// Token renders the verdict as a result token.
func (o *Outcome) Token() string {
	if !o.Decisive {
		return TokenDraw
	}
	if o.Winner == variant.White {
		return TokenWhiteWins
	}
	return TokenBlackWins
}

// Result maps the verdict onto the new role's side.
func (o *Outcome) Result() Result {
	if !o.Decisive {
		return ResultDraw
	}
	newWon := (o.Winner == variant.White) == o.NewPlaysWhite
	if newWon {
		return ResultWin
	}
	return ResultLoss
}

// MoveLog renders the played moves as one space-separated line.
func (o *Outcome) MoveLog() string {
	parts := make([]string, len(o.Moves))
	for i, m := range o.Moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

// TuneRow is one persisted dataset record: sparse feature counts and the
// outcome mapped into [0,1] from White's perspective.
type TuneRow struct {
	Features map[string]float64 `json:"features"`
	Result   float64            `json:"result"`
}
