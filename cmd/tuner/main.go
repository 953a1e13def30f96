package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gauntlet/internal/dataset"
	"gauntlet/internal/storage"
	"gauntlet/internal/tuner"
	"gauntlet/pkg/engine"
)

type Config struct {
	DatasetPath string
	OutPath     string
	StoreDir    string
	Rounds      int
	Denylist    string
}

var config Config

func main() {
	flag.StringVar(&config.DatasetPath, "dataset", "", "Path to training dataset")
	flag.StringVar(&config.OutPath, "out", "weights.json", "Path for the tuned artifact")
	flag.StringVar(&config.StoreDir, "store", "", "Ledger directory recording artifact history")
	flag.IntVar(&config.Rounds, "rounds", 2, "Number of descent rounds")
	flag.StringVar(&config.Denylist, "denylist", "", "Extra feature names to freeze, comma separated")
	flag.Parse()

	var log = newLogger()
	log.Info().Msgf("%+v", config)

	if err := run(log); err != nil {
		log.Fatal().Err(err).Msg("tuner failed")
	}
}

func newLogger() zerolog.Logger {
	var w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	return zerolog.New(w).With().Timestamp().Logger()
}

func run(log zerolog.Logger) error {
	rows, err := dataset.Load(config.DatasetPath, log)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("dataset %s: no usable rows", config.DatasetPath)
	}
	log.Info().Int("rows", len(rows)).Msg("dataset loaded")

	var seed = engine.ScoringWeights(nil)
	var params = tuner.Derive(rows, seed, denylist(), nil)
	if len(params) == 0 {
		return fmt.Errorf("dataset %s: no tunable parameters", config.DatasetPath)
	}

	var eval = tuner.NewEvaluator(rows, seed)
	var res = tuner.Descend(eval, params, config.Rounds, log)

	var artifact = tuner.NewArtifact(res, eval.Samples(), time.Now())
	if err := artifact.WriteFile(config.OutPath); err != nil {
		return err
	}
	log.Info().
		Str("out", config.OutPath).
		Float64("mean_loss", res.Mean).
		Int("rounds", res.Rounds).
		Msg("artifact written")

	if config.StoreDir != "" {
		st, err := storage.Open(config.StoreDir, log)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.AppendArtifact(artifact); err != nil {
			return err
		}
		log.Info().Str("store", config.StoreDir).Msg("artifact recorded")
	}
	return nil
}

// denylist freezes the material terms plus any extra names from the flag.
func denylist() map[string]bool {
	var names = make(map[string]bool)
	for name := range engine.PieceValueWeights() {
		names[name] = true
	}
	for _, name := range strings.Split(config.Denylist, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names[name] = true
		}
	}
	return names
}
