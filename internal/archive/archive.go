// Package archive writes per-ply trial logs as parquet batches for
// offline inspection of a whole run.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
	"github.com/rs/zerolog"

	"gauntlet/internal/arena"
	"gauntlet/internal/domain"
	"gauntlet/pkg/variant"
)

// Rows per batch file before it rotates.
const batchRows = 1 << 16

// PlyRow is one played half-move of one finished trial. Opening plies
// appear with HasEval false and zero elapsed time.
type PlyRow struct {
	Game      int32  `parquet:"game"`
	Ply       int32  `parquet:"ply"`
	Mover     string `parquet:"mover,dict"`
	Role      string `parquet:"role,dict"`
	Move      string `parquet:"move"`
	EvalCP    int32  `parquet:"eval_cp"`
	HasEval   bool   `parquet:"has_eval"`
	ElapsedMS int64  `parquet:"elapsed_ms"`
	Result    string `parquet:"result,dict"`
	Reason    string `parquet:"reason,dict"`
}

// Rows flattens a finished trial into archive rows, one per ply.
func Rows(out *domain.Outcome) []PlyRow {
	var token = out.Token()
	var rows = make([]PlyRow, 0, len(out.Plies))
	for i, p := range out.Plies {
		var role = "old"
		if (p.Mover == variant.White) == out.NewPlaysWhite {
			role = "new"
		}
		rows = append(rows, PlyRow{
			Game:      int32(out.GameNumber),
			Ply:       int32(i),
			Mover:     p.Mover.String(),
			Role:      role,
			Move:      p.Move.String(),
			EvalCP:    int32(p.EvalCP),
			HasEval:   p.HasEval,
			ElapsedMS: p.Elapsed.Milliseconds(),
			Result:    token,
			Reason:    string(out.Reason),
		})
	}
	return rows
}

// Writer accumulates rows into parquet batch files under dir. Each
// batch is written to dir/tmp and renamed into place once complete, so
// readers never observe a partial file.
type Writer struct {
	dir    string
	tmpDir string

	tmpPath string
	outPath string
	file    *os.File
	writer  *parquet.GenericWriter[PlyRow]

	buffered int
	written  []string
}

func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive dir is required")
	}
	var tmpDir = filepath.Join(dir, "tmp")
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Writer{dir: dir, tmpDir: tmpDir}, nil
}

func (w *Writer) open() error {
	var name = fmt.Sprintf("plies_%d.parquet", time.Now().UnixNano())
	w.tmpPath = filepath.Join(w.tmpDir, name)
	w.outPath = filepath.Join(w.dir, name)
	f, err := os.OpenFile(w.tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open archive batch: %w", err)
	}
	w.file = f
	w.writer = parquet.NewGenericWriter[PlyRow](f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.writer.SetKeyValueMetadata("schema", "ply_row_v1")
	return nil
}

func (w *Writer) WriteOutcome(out *domain.Outcome) error {
	var rows = Rows(out)
	if len(rows) == 0 {
		return nil
	}
	if w.writer == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("write archive rows: %w", err)
	}
	w.buffered += len(rows)
	if w.buffered >= batchRows {
		return w.rotate()
	}
	return nil
}

func (w *Writer) rotate() error {
	if w.writer == nil {
		return nil
	}
	var closeErr = w.writer.Close()
	_ = w.file.Sync()
	var fileErr = w.file.Close()
	w.writer, w.file = nil, nil
	w.buffered = 0
	if closeErr != nil {
		return fmt.Errorf("close archive batch: %w", closeErr)
	}
	if fileErr != nil {
		return fmt.Errorf("close archive file: %w", fileErr)
	}
	if err := os.Rename(w.tmpPath, w.outPath); err != nil {
		return fmt.Errorf("rename archive batch: %w", err)
	}
	w.written = append(w.written, w.outPath)
	return nil
}

// Close finishes the open batch. Batches already renamed stay in place.
func (w *Writer) Close() error {
	return w.rotate()
}

// Batches lists the files completed so far, oldest first.
func (w *Writer) Batches() []string {
	return w.written
}

// Sink archives every finished trial. Aborted trials have no verdict
// and are skipped.
type Sink struct {
	w   *Writer
	log zerolog.Logger
}

func NewSink(w *Writer, log zerolog.Logger) *Sink {
	return &Sink{w: w, log: log}
}

func (s *Sink) HandleResult(out *domain.Outcome, _ arena.Counters) {
	if out.Err != nil {
		return
	}
	if err := s.w.WriteOutcome(out); err != nil {
		s.log.Error().Err(err).Int("game", out.GameNumber).Msg("archive write failed")
	}
}

// ReadBatch loads one completed batch file, mainly for tooling and
// tests.
func ReadBatch(path string) ([]PlyRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, err
	}
	var r = parquet.NewGenericReader[PlyRow](pf)
	defer r.Close()

	var rows = make([]PlyRow, 0, int(r.NumRows()))
	var buf = make([]PlyRow, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			rows = append(rows, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}
