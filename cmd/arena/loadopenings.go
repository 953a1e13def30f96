package main

import (
	_ "embed"
	"fmt"
	"strings"

	"gauntlet/pkg/variant"
)

//go:embed openings.txt
var openingsTxt string

// getOpenings parses the embedded book. Every line is replayed from the
// standard setup, so a broken book fails the run before any game starts.
func getOpenings() ([][]variant.Move, error) {
	var result [][]variant.Move
	for i, line := range strings.Split(openingsTxt, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		moves, err := parseOpening(line)
		if err != nil {
			return nil, fmt.Errorf("openings.txt line %d: %w", i+1, err)
		}
		result = append(result, moves)
	}
	return result, nil
}

func parseOpening(line string) ([]variant.Move, error) {
	var pos = variant.NewStandardPosition()
	var moves []variant.Move
	for _, field := range strings.Fields(line) {
		var m, err = variant.ParseMove(field)
		if err != nil {
			return nil, err
		}
		if err := pos.Apply(m); err != nil {
			return nil, fmt.Errorf("move %q: %w", field, err)
		}
		moves = append(moves, m)
	}
	return moves, nil
}
