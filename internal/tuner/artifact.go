package tuner

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Artifact is the immutable tuning output handed to the collaborator
// that applies tuned weights to the next engine build.
type Artifact struct {
	Params           map[string]float64 `json:"params"`
	NegLogLikelihood float64            `json:"negLogLikelihood"`
	Samples          int                `json:"samples"`
	Timestamp        time.Time          `json:"timestamp"`
}

func NewArtifact(res Result, samples int, now time.Time) Artifact {
	var params = make(map[string]float64, len(res.Params))
	for _, p := range res.Params {
		params[p.Name] = p.Value
	}
	return Artifact{
		Params:           params,
		NegLogLikelihood: res.Loss,
		Samples:          samples,
		Timestamp:        now,
	}
}

// WriteFile persists the artifact atomically: a sibling temp file
// renamed over the destination, so readers never observe a half-written
// artifact.
func (a Artifact) WriteFile(filename string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	data = append(data, '\n')
	var tmp = filename + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := os.Rename(tmp, filename); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// ReadArtifact loads a previously written artifact.
func ReadArtifact(filename string) (Artifact, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Artifact{}, fmt.Errorf("read artifact: %w", err)
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, fmt.Errorf("decode artifact: %w", err)
	}
	return a, nil
}
