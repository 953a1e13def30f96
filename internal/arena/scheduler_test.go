package arena

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

func TestBuildQueue(t *testing.T) {
	var openings = [][]variant.Move{
		mustMoves(t, "5,2>5,4"),
		mustMoves(t, "4,2>4,4"),
	}
	var s = settings()
	var queue = BuildQueue(3, openings, s, rand.New(rand.NewSource(7)))

	require.Len(t, queue, 6, "every game is played once with each color")

	var seen = map[int]domain.TrialConfig{}
	var whites int
	for _, cfg := range queue {
		require.NotContains(t, seen, cfg.GameNumber)
		seen[cfg.GameNumber] = cfg
		if cfg.NewPlaysWhite {
			whites++
		}
		require.Equal(t, s, cfg.Settings)
	}
	require.Equal(t, 3, whites)

	for num := 1; num <= 6; num += 2 {
		require.Equal(t, seen[num].Opening, seen[num+1].Opening, "paired games share an opening")
		require.NotEqual(t, seen[num].NewPlaysWhite, seen[num+1].NewPlaysWhite, "paired games swap colors")
	}
	require.Equal(t, openings[0], seen[1].Opening)
	require.Equal(t, openings[1], seen[3].Opening)
	require.Equal(t, openings[0], seen[5].Opening, "openings cycle when games outnumber them")

	require.Equal(t, queue, BuildQueue(3, openings, s, rand.New(rand.NewSource(7))),
		"the same seed must produce the same schedule")

	var bare = BuildQueue(1, nil, s, rand.New(rand.NewSource(1)))
	require.Len(t, bare, 2)
	require.Nil(t, bare[0].Opening)
}

// recordingSink runs on the collector goroutine, so plain fields suffice.
type recordingSink struct {
	outcomes []*domain.Outcome
	last     Counters
}

func (s *recordingSink) HandleResult(out *domain.Outcome, c Counters) {
	s.outcomes = append(s.outcomes, out)
	s.last = c
}

func TestPoolPlaysWholeQueue(t *testing.T) {
	// Engines with no script forfeit their first move, so whoever holds
	// white loses instantly and the match splits evenly by color.
	var queue = BuildQueue(4, nil, settings(), rand.New(rand.NewSource(1)))
	var workers []*Worker
	for i := 1; i <= 3; i++ {
		workers = append(workers, NewWorker(i, &scriptEngine{}, &scriptEngine{}, zerolog.Nop()))
	}
	var sink = &recordingSink{}
	var pool = NewPool(workers, queue, zerolog.Nop(), sink)

	counters, err := pool.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 8, counters.Games())
	require.Equal(t, 4, counters.Wins)
	require.Equal(t, 4, counters.Losses)
	require.Zero(t, counters.Draws)
	require.Zero(t, counters.Errors)

	require.Len(t, sink.outcomes, 8)
	require.Equal(t, counters, sink.last)
	for _, out := range sink.outcomes {
		require.Equal(t, domain.ReasonNoMove, out.Reason)
	}
}

func TestPoolInitFailureIsFatal(t *testing.T) {
	var queue = BuildQueue(1, nil, settings(), rand.New(rand.NewSource(1)))
	var bad = NewWorker(1, &scriptEngine{initErr: errors.New("no binary")}, &scriptEngine{}, zerolog.Nop())
	var ok = NewWorker(2, &scriptEngine{}, &scriptEngine{}, zerolog.Nop())
	var sink = &recordingSink{}
	var pool = NewPool([]*Worker{bad, ok}, queue, zerolog.Nop(), sink)

	_, err := pool.Run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no binary")
	require.Empty(t, sink.outcomes, "no trial may start when a worker fails to come up")
}

func TestWorkerInitTimeout(t *testing.T) {
	var saved = initTimeout
	initTimeout = 20 * time.Millisecond
	defer func() { initTimeout = saved }()

	var w = NewWorker(1, &scriptEngine{hang: true}, &scriptEngine{}, zerolog.Nop())
	require.ErrorIs(t, w.Init(context.Background()), ErrInitTimeout)
}
