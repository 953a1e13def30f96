package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
	"gauntlet/internal/tuner"
	"gauntlet/pkg/variant"
)

func openStore(t *testing.T, dir string) *Store {
	t.Helper()
	s, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestMatchLedgerAccumulates(t *testing.T) {
	var dir = t.TempDir()
	var s = openStore(t, dir)

	var win = &domain.Outcome{Decisive: true, Winner: variant.White, NewPlaysWhite: true}
	var loss = &domain.Outcome{Decisive: true, Winner: variant.White, NewPlaysWhite: false}
	var draw = &domain.Outcome{}
	var aborted = &domain.Outcome{Err: errors.New("boom")}

	require.NoError(t, s.RecordOutcome("a vs b", win))
	require.NoError(t, s.RecordOutcome("a vs b", loss))
	require.NoError(t, s.RecordOutcome("a vs b", draw))
	require.NoError(t, s.RecordOutcome("a vs b", aborted))
	require.NoError(t, s.RecordOutcome("other", win))

	rec, err := s.Match("a vs b")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Wins)
	require.Equal(t, 1, rec.Losses)
	require.Equal(t, 1, rec.Draws)
	require.Equal(t, 1, rec.Errors)
	require.Equal(t, 3, rec.Games())
	require.False(t, rec.UpdatedAt.IsZero())

	// The ledger survives a close and reopen.
	require.NoError(t, s.Close())
	s = openStore(t, dir)
	defer s.Close()

	rec, err = s.Match("a vs b")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Wins)

	other, err := s.Match("other")
	require.NoError(t, err)
	require.Equal(t, 1, other.Wins)
	require.Zero(t, other.Losses)
}

func TestMatchUnknownIsEmpty(t *testing.T) {
	var s = openStore(t, t.TempDir())
	defer s.Close()

	rec, err := s.Match("never played")
	require.NoError(t, err)
	require.Equal(t, MatchRecord{Matchup: "never played"}, rec)
}

func TestSinkRecords(t *testing.T) {
	var s = openStore(t, t.TempDir())
	defer s.Close()

	var sink = NewSink(s, "a vs b")
	sink.HandleResult(&domain.Outcome{Decisive: true, Winner: variant.Black, NewPlaysWhite: false}, arena.Counters{})

	rec, err := s.Match("a vs b")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Wins)
}

func TestArtifactHistoryOrdered(t *testing.T) {
	var s = openStore(t, t.TempDir())
	defer s.Close()

	var older = tuner.Artifact{
		Params:           map[string]float64{"edge": 200},
		NegLogLikelihood: 7.5,
		Samples:          16,
		Timestamp:        time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	var newer = tuner.Artifact{
		Params:           map[string]float64{"edge": 180},
		NegLogLikelihood: 7.1,
		Samples:          64,
		Timestamp:        time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	// Insertion order must not matter.
	require.NoError(t, s.AppendArtifact(newer))
	require.NoError(t, s.AppendArtifact(older))

	got, err := s.Artifacts()
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, older.Params, got[0].Params)
	require.Equal(t, newer.Params, got[1].Params)
	require.True(t, older.Timestamp.Equal(got[0].Timestamp))
}
