package log

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// JSONLZstdWriter appends JSON lines to one zstd-compressed file, opened on
// the first Write. It is safe for concurrent use.
type JSONLZstdWriter struct {
	path string

	mu     sync.Mutex
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
	lines  int
	closed bool
}

func NewJSONLZstdWriter(path string) *JSONLZstdWriter {
	return &JSONLZstdWriter{path: path}
}

func (w *JSONLZstdWriter) Path() string { return w.path }

// Lines returns the number of records written so far.
func (w *JSONLZstdWriter) Lines() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

func (w *JSONLZstdWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return w.closeLocked()
}

func (w *JSONLZstdWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return os.ErrClosed
	}
	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

func (w *JSONLZstdWriter) openLocked() error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 128*1024)
	return nil
}

func (w *JSONLZstdWriter) closeLocked() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// TileLogEntry records the outcome of one source tile.
type TileLogEntry struct {
	RunID   string         `json:"run_id"`
	Seq     int            `json:"seq"`
	TileX   int            `json:"tile_x"`
	TileY   int            `json:"tile_y"`
	OriginX int            `json:"origin_x"`
	OriginY int            `json:"origin_y"`
	Missing bool           `json:"missing,omitempty"`
	Cells   map[string]int `json:"cells,omitempty"`
	Micros  int64          `json:"micros"`
}

// TileLogger writes one JSONL entry per processed tile (compressed).
type TileLogger struct{ w *JSONLZstdWriter }

// NewTileLogger logs into <dir>/logs/tiles-<runID>.jsonl.zst.
func NewTileLogger(dir, runID string) *TileLogger {
	return &TileLogger{w: NewJSONLZstdWriter(filepath.Join(dir, "logs", "tiles-"+runID+".jsonl.zst"))}
}

func (l *TileLogger) WriteTile(v TileLogEntry) error { return l.w.Write(v) }
func (l *TileLogger) Path() string                   { return l.w.Path() }
func (l *TileLogger) Close() error                   { return l.w.Close() }
