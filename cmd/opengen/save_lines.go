package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gauntlet/pkg/variant"
)

// saveLines writes one opening per line, deduplicated by the key of the
// final position, until target unique lines are on disk.
func saveLines(ctx context.Context, filename string, target int, lines <-chan opening, log zerolog.Logger) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var out = bufio.NewWriter(file)

	var ticker = time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	var total, unique int
	var seen = make(map[variant.PositionKey]struct{})

	var showProgress = func() {
		log.Info().Int("total", total).Int("unique", unique).Msg("generating")
	}

	for unique < target {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			showProgress()
		case op, ok := <-lines:
			if !ok {
				return out.Flush()
			}
			total++
			if _, found := seen[op.key]; found {
				continue
			}
			seen[op.key] = struct{}{}
			unique++
			if _, err := fmt.Fprintln(out, moveLine(op.moves)); err != nil {
				return err
			}
		}
	}
	showProgress()
	return out.Flush()
}

func moveLine(moves []variant.Move) string {
	var parts = make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
