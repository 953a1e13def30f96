package arena

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

// Counters aggregate finished trials relative to the new role. Errors
// counts aborted trials, which carry no verdict.
type Counters struct {
	Wins   int
	Losses int
	Draws  int
	Errors int
}

func (c Counters) Games() int {
	return c.Wins + c.Losses + c.Draws
}

func (c Counters) Stat() Stat {
	return ComputeStat(c.Wins, c.Losses, c.Draws)
}

// ResultSink receives every finished trial along with the counters as of
// that trial. Sinks run on the collector goroutine, one call at a time.
type ResultSink interface {
	HandleResult(out *domain.Outcome, c Counters)
}

// BuildQueue enumerates every requested game twice, once with each role
// moving first, then permutes the whole queue so color assignment never
// correlates with time of run.
func BuildQueue(games int, openings [][]variant.Move, settings domain.TrialSettings, rng *rand.Rand) []domain.TrialConfig {
	var queue []domain.TrialConfig
	var num = 1
	for i := 0; i < games; i++ {
		var opening []variant.Move
		if len(openings) > 0 {
			opening = openings[i%len(openings)]
		}
		for _, newWhite := range [2]bool{true, false} {
			queue = append(queue, domain.TrialConfig{
				GameNumber:    num,
				NewPlaysWhite: newWhite,
				Opening:       opening,
				Settings:      settings,
			})
			num++
		}
	}
	rng.Shuffle(len(queue), func(i, j int) {
		queue[i], queue[j] = queue[j], queue[i]
	})
	return queue
}

// Pool drives a fixed set of workers through a queue of trials. Workers
// pull greedily from a shared channel; a single collector goroutine owns
// the counters and feeds the sinks, so no lock guards them.
type Pool struct {
	workers []*Worker
	queue   []domain.TrialConfig
	sinks   []ResultSink
	log     zerolog.Logger

	counters Counters
}

func NewPool(workers []*Worker, queue []domain.TrialConfig, log zerolog.Logger, sinks ...ResultSink) *Pool {
	return &Pool{workers: workers, queue: queue, sinks: sinks, log: log}
}

// Run initializes every worker, plays the whole queue and drains the
// results. Any worker failing to initialize fails the pool before a
// single trial starts.
func (p *Pool) Run(ctx context.Context) (Counters, error) {
	ig, ictx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		var w = w
		ig.Go(func() error {
			return w.Init(ictx)
		})
	}
	if err := ig.Wait(); err != nil {
		p.terminate()
		return Counters{}, err
	}
	defer p.terminate()

	g, ctx := errgroup.WithContext(ctx)

	var jobs = make(chan domain.TrialConfig)
	var results = make(chan domain.Outcome)

	g.Go(func() error {
		defer close(jobs)
		for _, cfg := range p.queue {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case jobs <- cfg:
			}
		}
		return nil
	})

	var wg = &sync.WaitGroup{}
	for _, w := range p.workers {
		var w = w
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			for cfg := range jobs {
				var out = w.RunGame(ctx, cfg)
				select {
				case <-ctx.Done():
					return ctx.Err()
				case results <- out:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		for out := range results {
			var out = out
			p.collect(&out)
		}
		return nil
	})

	var err = g.Wait()
	return p.counters, err
}

func (p *Pool) collect(out *domain.Outcome) {
	if out.Err != nil {
		p.counters.Errors++
		p.log.Error().Err(out.Err).Int("game", out.GameNumber).Msg("trial aborted")
	} else {
		switch out.Result() {
		case domain.ResultWin:
			p.counters.Wins++
		case domain.ResultLoss:
			p.counters.Losses++
		default:
			p.counters.Draws++
		}
	}
	for _, sink := range p.sinks {
		sink.HandleResult(out, p.counters)
	}
}

func (p *Pool) terminate() {
	for _, w := range p.workers {
		if err := w.Terminate(); err != nil {
			p.log.Warn().Err(err).Int("worker", w.id).Msg("terminate failed")
		}
	}
}
