package capture

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/relabs-tech/inertial_replay/internal/imu"
)

// Writer appends samples to a capture log. Rows are buffered and flushed
// whenever a packet id is a multiple of flushEvery, and on Close.
type Writer struct {
	w          *csv.Writer
	c          io.Closer
	flushEvery int
	rows       int
}

// NewWriter writes the header to w and returns a Writer. If w is an
// io.Closer it is closed by Close.
func NewWriter(w io.Writer, flushEvery int) (*Writer, error) {
	if flushEvery <= 0 {
		flushEvery = 1
	}
	cw := &Writer{w: csv.NewWriter(w), flushEvery: flushEvery}
	if c, ok := w.(io.Closer); ok {
		cw.c = c
	}
	if err := cw.w.Write(Header); err != nil {
		return nil, fmt.Errorf("capture: write header: %w", err)
	}
	cw.w.Flush()
	return cw, cw.w.Error()
}

// FileName is the log name for a capture started at t.
func FileName(t time.Time) string {
	return "impacts_" + t.UTC().Format("2006-01-02_15-04-05") + ".csv"
}

// Create makes dir if needed and opens a new capture log in it.
func Create(dir string, flushEvery int, now time.Time) (*Writer, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("capture: %w", err)
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("capture: %w", err)
	}
	w, err := NewWriter(f, flushEvery)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	return w, path, nil
}

// Write buffers one sample.
func (w *Writer) Write(r imu.Raw) error {
	if err := w.w.Write(Fields(r)); err != nil {
		return fmt.Errorf("capture: write row: %w", err)
	}
	w.rows++
	if r.PacketID%w.flushEvery == 0 {
		w.w.Flush()
		return w.w.Error()
	}
	return nil
}

// Rows is the number of samples written.
func (w *Writer) Rows() int {
	return w.rows
}

// Close flushes pending rows and closes the underlying file.
func (w *Writer) Close() error {
	w.w.Flush()
	err := w.w.Error()
	if w.c != nil {
		if cerr := w.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
