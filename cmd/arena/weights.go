package main

import (
	"encoding/json"
	"fmt"
	"os"

	"gauntlet/internal/tuner"
)

// loadWeights reads scalar eval overrides: either a tuner artifact or a
// bare name-to-value map. An empty filename keeps the built-in defaults.
func loadWeights(filename string) (map[string]float64, error) {
	if filename == "" {
		return nil, nil
	}
	if a, err := tuner.ReadArtifact(filename); err == nil && len(a.Params) > 0 {
		return a.Params, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var weights map[string]float64
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if len(weights) == 0 {
		return nil, fmt.Errorf("%s: no weights", filename)
	}
	return weights, nil
}
