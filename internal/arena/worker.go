package arena

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"gauntlet/internal/domain"
	"gauntlet/pkg/engine"
)

// ErrInitTimeout marks a worker whose engines never signalled readiness.
// It is fatal to the whole pool.
var ErrInitTimeout = errors.New("worker initialization timed out")

var initTimeout = 30 * time.Second

// Worker owns one long-lived engine pair and plays one trial at a time.
type Worker struct {
	id     int
	oldEng engine.Engine
	newEng engine.Engine
	log    zerolog.Logger
}

func NewWorker(id int, oldEng, newEng engine.Engine, log zerolog.Logger) *Worker {
	return &Worker{
		id:     id,
		oldEng: oldEng,
		newEng: newEng,
		log:    log.With().Int("worker", id).Logger(),
	}
}

// Init brings both engines up. It enforces the readiness deadline even
// against an engine that ignores its context; a timeout or failure here
// is not retried.
func (w *Worker) Init(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	var done = make(chan error, 1)
	go func() {
		if err := w.oldEng.Init(ctx); err != nil {
			done <- fmt.Errorf("old engine: %w", err)
			return
		}
		done <- w.newEng.Init(ctx)
	}()

	select {
	case err := <-done:
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("worker %d: %w", w.id, ErrInitTimeout)
		}
		if err != nil {
			return fmt.Errorf("worker %d init: %w", w.id, err)
		}
		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("worker %d: %w", w.id, ErrInitTimeout)
		}
		return ctx.Err()
	}
}

// RunGame executes one trial. A panic inside the trial becomes an error
// on the outcome instead of crossing the goroutine boundary.
func (w *Worker) RunGame(ctx context.Context, cfg domain.TrialConfig) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = domain.Outcome{
				GameNumber:    cfg.GameNumber,
				NewPlaysWhite: cfg.NewPlaysWhite,
				Err:           fmt.Errorf("worker %d game %d: panic: %v", w.id, cfg.GameNumber, r),
			}
		}
	}()
	w.log.Debug().Int("game", cfg.GameNumber).Bool("new_white", cfg.NewPlaysWhite).Msg("trial started")
	return RunTrial(ctx, w.oldEng, w.newEng, cfg)
}

// Terminate releases both engines. Safe to call regardless of Init's
// result.
func (w *Worker) Terminate() error {
	return errors.Join(w.oldEng.Close(), w.newEng.Close())
}
