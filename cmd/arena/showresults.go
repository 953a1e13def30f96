package main

import (
	"github.com/rs/zerolog"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
)

// logSink prints one block per finished game with the running score.
// Aborted games are already reported by the pool collector.
type logSink struct {
	log   zerolog.Logger
	total int
}

func (s *logSink) HandleResult(out *domain.Outcome, c arena.Counters) {
	if out.Err != nil {
		return
	}
	s.log.Info().Msgf("Finished game %v of %v: %v {%v, %v plies}",
		out.GameNumber, s.total, out.Token(), out.Reason, len(out.Moves))
	var stat = c.Stat()
	s.log.Info().Msgf("Score: %v - %v - %v  [%.3f] %v",
		c.Wins, c.Losses, c.Draws, stat.WinningFraction, c.Games())
	s.log.Info().Msgf("Elo difference: %.1f, LOS: %.1f %%",
		stat.EloDifference, stat.LOS*100)
}

func showResults(log zerolog.Logger, c arena.Counters) {
	var stat = c.Stat()
	log.Info().Msgf("Score: %v - %v - %v  [%.3f]",
		c.Wins, c.Losses, c.Draws, stat.WinningFraction)
	log.Info().Msgf("Elo difference: %.1f, LOS: %.1f %%",
		stat.EloDifference, stat.LOS*100)
	if c.Errors > 0 {
		log.Warn().Int("errors", c.Errors).Msg("aborted games excluded from the score")
	}
}
