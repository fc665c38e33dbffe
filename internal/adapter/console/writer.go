package console

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/couchcryptid/sun-schedule/internal/domain"
)

// Writer prints entries as array-literal lines, one per entry.
// It implements pipeline.Loader.
type Writer struct {
	w *bufio.Writer
}

// NewWriter wraps out, typically os.Stdout. Call Flush when done.
func NewWriter(out io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(out)}
}

// Load writes the entry followed by a newline.
func (w *Writer) Load(_ context.Context, entry domain.Entry) error {
	if _, err := w.w.WriteString(entry.String() + "\n"); err != nil {
		return fmt.Errorf("write entry %d: %w", entry.DayCounter, err)
	}
	return nil
}

// Flush pushes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
