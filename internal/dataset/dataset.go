// Package dataset persists training samples as newline-delimited JSON
// rows and reads them back for tuning. The file is append-only: one
// record per line, never rewritten.
package dataset

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

// ErrMissing reports a dataset file that does not exist.
var ErrMissing = errors.New("dataset missing")

// FeatureFunc converts a sampled position into sparse feature counts.
type FeatureFunc func(*variant.Position) map[string]float64

// ResultValue maps a result token onto the tuning target from White's
// perspective.
func ResultValue(token string) (float64, error) {
	switch token {
	case domain.TokenWhiteWins:
		return 1, nil
	case domain.TokenBlackWins:
		return 0, nil
	case domain.TokenDraw:
		return 0.5, nil
	}
	return 0, fmt.Errorf("unknown result token %q", token)
}

// Writer appends rows to an NDJSON file. Append is not safe for
// concurrent use; the arena feeds it from the single collector goroutine.
type Writer struct {
	f   *os.File
	enc *json.Encoder
}

func NewWriter(filename string) (*Writer, error) {
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	return &Writer{f: f, enc: json.NewEncoder(f)}, nil
}

func (w *Writer) Append(rows ...domain.TuneRow) error {
	for i := range rows {
		if err := w.enc.Encode(&rows[i]); err != nil {
			return fmt.Errorf("append dataset row: %w", err)
		}
	}
	return nil
}

func (w *Writer) Close() error {
	return w.f.Close()
}

// Sink converts every finished trial's samples into dataset rows. Trials
// that aborted carry no verdict and are never persisted, not even in
// part.
type Sink struct {
	w     *Writer
	feats FeatureFunc
	log   zerolog.Logger
}

func NewSink(w *Writer, feats FeatureFunc, log zerolog.Logger) *Sink {
	return &Sink{w: w, feats: feats, log: log}
}

func (s *Sink) HandleResult(out *domain.Outcome, _ arena.Counters) {
	if out.Err != nil {
		return
	}
	for _, sample := range out.Samples {
		result, err := ResultValue(sample.Result)
		if err != nil {
			s.log.Error().Err(err).Int("game", out.GameNumber).Msg("sample dropped")
			continue
		}
		var row = domain.TuneRow{Features: s.feats(sample.Position), Result: result}
		if err := s.w.Append(row); err != nil {
			s.log.Error().Err(err).Int("game", out.GameNumber).Msg("dataset append failed")
			return
		}
	}
}

// Load reads every well-formed row in file order. Malformed lines are
// skipped with a debug log so one bad record never aborts a whole tuning
// run.
func Load(filename string, log zerolog.Logger) ([]domain.TuneRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, filename)
		}
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close()

	var rows []domain.TuneRow
	var scanner = bufio.NewScanner(file)
	var lineNo int
	for scanner.Scan() {
		lineNo++
		var line = scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := parseRow([]byte(line))
		if err != nil {
			log.Debug().Err(err).Int("line", lineNo).Msg("skipping malformed dataset line")
			continue
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return rows, nil
}

func parseRow(line []byte) (domain.TuneRow, error) {
	var raw struct {
		Features map[string]float64 `json:"features"`
		Result   json.RawMessage    `json:"result"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return domain.TuneRow{}, err
	}
	if len(raw.Features) == 0 {
		return domain.TuneRow{}, errors.New("row has no features")
	}
	result, err := parseResult(raw.Result)
	if err != nil {
		return domain.TuneRow{}, err
	}
	return domain.TuneRow{Features: raw.Features, Result: result}, nil
}

// parseResult accepts the numeric form this repo writes and the token
// form ("1-0", "0-1", "1/2-1/2") found in imported game databases.
func parseResult(raw json.RawMessage) (float64, error) {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		if num < 0 || num > 1 {
			return 0, fmt.Errorf("result %v outside [0,1]", num)
		}
		return num, nil
	}
	var token string
	if err := json.Unmarshal(raw, &token); err != nil {
		return 0, errors.New("result is neither a number nor a token")
	}
	return ResultValue(token)
}
