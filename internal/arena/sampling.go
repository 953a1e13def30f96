package arena

import (
	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

// Sampling window: every fourth ply inside the middlegame band, skipping
// near-empty boards, capped per trial.
const (
	sampleMinPly      = 12
	sampleMaxPly      = 120
	sampleEveryPly    = 4
	sampleMinPieces   = 5
	sampleMaxPerTrial = 32
)

// maybeSample snapshots the current position before the next move is
// requested. The Result token stays empty until the trial terminates;
// aborted trials drop their samples unstamped.
func (t *trial) maybeSample() {
	var ply = len(t.moves)
	if ply < sampleMinPly || ply > sampleMaxPly || ply%sampleEveryPly != 0 {
		return
	}
	if len(t.samples) >= sampleMaxPerTrial {
		return
	}
	var pieces = t.pos.PieceCount()
	if pieces < sampleMinPieces {
		return
	}
	t.samples = append(t.samples, domain.Sample{
		Position:   t.pos.Clone(),
		Moves:      append([]variant.Move(nil), t.moves...),
		SideToMove: t.pos.SideToMove,
		Ply:        ply,
		PieceCount: pieces,
	})
}
