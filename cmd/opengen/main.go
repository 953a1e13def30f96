package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Output string
	Lines  int
	Ply    int
	Bound  int
	Seed   int64
}

var config Config

func main() {
	flag.StringVar(&config.Output, "output", "openings.txt", "Path to the output book")
	flag.IntVar(&config.Lines, "lines", 200, "Number of unique openings to generate")
	flag.IntVar(&config.Ply, "ply", 8, "Length of each opening in half-moves")
	flag.IntVar(&config.Bound, "bound", 700, "Drop lines ending further than this many centipawns from balance")
	flag.Int64Var(&config.Seed, "seed", 1, "Random walk seed")
	flag.Parse()

	var w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	var log = zerolog.New(w).With().Timestamp().Logger()
	log.Info().Msgf("%+v", config)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("opengen failed")
	}
}
