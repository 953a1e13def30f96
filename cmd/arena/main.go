package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"gauntlet/internal/arena"
	"gauntlet/internal/archive"
	"gauntlet/internal/dataset"
	"gauntlet/internal/domain"
	"gauntlet/internal/storage"
	"gauntlet/internal/tui"
	"gauntlet/pkg/engine"
)

type Config struct {
	Games        int
	Concurrency  int
	MoveTime     time.Duration
	Base         time.Duration
	Increment    time.Duration
	MaxMoves     int
	AdjThreshold int
	TrialTimeout time.Duration
	OldParams    string
	NewParams    string
	DatasetPath  string
	ArchiveDir   string
	StoreDir     string
	TUI          bool
	Seed         int64
}

var config Config

func main() {
	flag.IntVar(&config.Games, "games", 20, "Games per opening pair")
	flag.IntVar(&config.Concurrency, "concurrency", 4, "Number of parallel workers")
	flag.DurationVar(&config.MoveTime, "movetime", 0, "Fixed budget per move, overrides the clock")
	flag.DurationVar(&config.Base, "base", 10*time.Second, "Base clock per side")
	flag.DurationVar(&config.Increment, "inc", 100*time.Millisecond, "Clock increment per move")
	flag.IntVar(&config.MaxMoves, "maxmoves", 400, "Half-move cap per game")
	flag.IntVar(&config.AdjThreshold, "adjudicate", 0, "Adjudication threshold in centipawns, floored at 1500")
	flag.DurationVar(&config.TrialTimeout, "trial-timeout", 0, "Deadline for one whole game, 0 disables")
	flag.StringVar(&config.OldParams, "old", "", "Weights file for the baseline engine")
	flag.StringVar(&config.NewParams, "new", "", "Weights file for the candidate engine")
	flag.StringVar(&config.DatasetPath, "dataset", "", "Append training samples to this file")
	flag.StringVar(&config.ArchiveDir, "archive", "", "Write per-ply parquet batches into this directory")
	flag.StringVar(&config.StoreDir, "store", "", "Match ledger directory")
	flag.BoolVar(&config.TUI, "tui", false, "Show live progress instead of per-game logs")
	flag.Int64Var(&config.Seed, "seed", 1, "Schedule shuffle seed")
	flag.Parse()

	var log = newLogger(config.TUI)
	log.Info().Msgf("%+v", config)

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("arena failed")
	}
}

// newLogger writes to stderr. With the TUI active only errors get through,
// so log lines cannot tear the display.
func newLogger(quiet bool) zerolog.Logger {
	var w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var log = zerolog.New(w).With().Timestamp().Logger()
	if quiet {
		log = log.Level(zerolog.ErrorLevel)
	}
	return log
}

func run(log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openings, err := getOpenings()
	if err != nil {
		return err
	}

	oldWeights, err := loadWeights(config.OldParams)
	if err != nil {
		return fmt.Errorf("old weights: %w", err)
	}
	newWeights, err := loadWeights(config.NewParams)
	if err != nil {
		return fmt.Errorf("new weights: %w", err)
	}

	var settings = domain.TrialSettings{
		Time: domain.TimeControl{
			MoveTime:  config.MoveTime,
			Base:      config.Base,
			Increment: config.Increment,
		},
		MaxMoves:     config.MaxMoves,
		AdjThreshold: config.AdjThreshold,
		TrialTimeout: config.TrialTimeout,
	}
	var queue = arena.BuildQueue(config.Games, openings, settings,
		rand.New(rand.NewSource(config.Seed)))

	log.Info().
		Int("cpus", runtime.NumCPU()).
		Int("workers", config.Concurrency).
		Int("openings", len(openings)).
		Int("trials", len(queue)).
		Msg("arena started")

	var workers []*arena.Worker
	for i := 0; i < config.Concurrency; i++ {
		workers = append(workers, arena.NewWorker(i,
			engine.NewLocal(engine.Config{Name: engineLabel(config.OldParams, "old"), Weights: oldWeights}),
			engine.NewLocal(engine.Config{Name: engineLabel(config.NewParams, "new"), Weights: newWeights}),
			log))
	}

	var sinks []arena.ResultSink

	if config.DatasetPath != "" {
		w, err := dataset.NewWriter(config.DatasetPath)
		if err != nil {
			return err
		}
		defer w.Close()
		sinks = append(sinks, dataset.NewSink(w, engine.Features, log))
	}
	if config.ArchiveDir != "" {
		aw, err := archive.NewWriter(config.ArchiveDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := aw.Close(); err != nil {
				log.Error().Err(err).Msg("archive close failed")
			}
		}()
		sinks = append(sinks, archive.NewSink(aw, log))
	}
	if config.StoreDir != "" {
		st, err := storage.Open(config.StoreDir, log)
		if err != nil {
			return err
		}
		defer st.Close()
		sinks = append(sinks, storage.NewSink(st, matchupLabel()))
	}

	if config.TUI {
		return runWithTUI(ctx, workers, queue, sinks, log)
	}

	sinks = append(sinks, &logSink{log: log, total: len(queue)})
	counters, err := arena.NewPool(workers, queue, log, sinks...).Run(ctx)
	showResults(log, counters)
	return err
}

// runWithTUI drives the pool behind a bubbletea program. Quitting the
// display cancels the match; a finished match waits for a final key.
func runWithTUI(ctx context.Context, workers []*arena.Worker, queue []domain.TrialConfig, sinks []arena.ResultSink, log zerolog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var updates = make(chan tui.Update, 64)
	sinks = append(sinks, tui.NewSink(updates))
	var pool = arena.NewPool(workers, queue, log, sinks...)

	var done = make(chan struct{})
	var counters arena.Counters
	var runErr error
	go func() {
		defer close(done)
		counters, runErr = pool.Run(ctx)
		close(updates)
	}()

	_, uiErr := tea.NewProgram(tui.New(len(queue), updates)).Run()
	cancel()
	<-done

	showResults(newLogger(false), counters)
	if uiErr != nil {
		return uiErr
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// engineLabel names an engine after its weights file, or falls back to
// the role name when it plays defaults.
func engineLabel(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func matchupLabel() string {
	return engineLabel(config.NewParams, "new") + " vs " + engineLabel(config.OldParams, "old")
}
