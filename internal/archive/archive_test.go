package archive

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

func sampleOutcome(t *testing.T) *domain.Outcome {
	t.Helper()
	open, err := variant.ParseMove("5,2>5,4")
	require.NoError(t, err)
	knight, err := variant.ParseMove("2,8>1,6")
	require.NoError(t, err)
	return &domain.Outcome{
		GameNumber:    9,
		NewPlaysWhite: true,
		Decisive:      true,
		Winner:        variant.White,
		Reason:        domain.ReasonAdjudication,
		Plies: []domain.PlyRecord{
			{Move: open, Mover: variant.White},
			{Move: knight, Mover: variant.Black, EvalCP: 1600, HasEval: true, Elapsed: 42 * time.Millisecond},
		},
	}
}

func TestRowsFlattenOutcome(t *testing.T) {
	var rows = Rows(sampleOutcome(t))
	require.Equal(t, []PlyRow{
		{Game: 9, Ply: 0, Mover: "w", Role: "new", Move: "5,2>5,4", Result: "1-0", Reason: "adjudication"},
		{Game: 9, Ply: 1, Mover: "b", Role: "old", Move: "2,8>1,6", EvalCP: 1600, HasEval: true, ElapsedMS: 42, Result: "1-0", Reason: "adjudication"},
	}, rows)
}

func TestRowsRoleFollowsColorAssignment(t *testing.T) {
	var out = sampleOutcome(t)
	out.NewPlaysWhite = false
	var rows = Rows(out)
	require.Equal(t, "old", rows[0].Role)
	require.Equal(t, "new", rows[1].Role)
}

func TestWriterRoundTrip(t *testing.T) {
	var dir = t.TempDir()
	w, err := NewWriter(dir)
	require.NoError(t, err)

	var sink = NewSink(w, zerolog.Nop())
	sink.HandleResult(sampleOutcome(t), arena.Counters{})
	sink.HandleResult(&domain.Outcome{GameNumber: 10, Err: errors.New("boom"),
		Plies: []domain.PlyRecord{{Mover: variant.White}}}, arena.Counters{})

	require.NoError(t, w.Close())
	require.Len(t, w.Batches(), 1)

	rows, err := ReadBatch(w.Batches()[0])
	require.NoError(t, err)
	require.Len(t, rows, 2, "the aborted trial must not be archived")
	require.Equal(t, Rows(sampleOutcome(t)), rows)
}

func TestWriterNothingToWrite(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.WriteOutcome(&domain.Outcome{GameNumber: 1}))
	require.NoError(t, w.Close())
	require.Empty(t, w.Batches(), "no batch file appears until a row is written")
}
