package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/sun-schedule/internal/domain"
)

// Reader streams rows from a CSV file.
type Reader struct {
	path   string
	file   *os.File
	logger *slog.Logger
}

// Open opens the CSV file at path. The returned error names the path.
func Open(path string, logger *slog.Logger) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	logger.Debug("input opened", "path", path)
	return &Reader{path: path, file: f, logger: logger}, nil
}

// Path returns the file path the reader was opened with.
func (r *Reader) Path() string { return r.path }

// Rows yields each record in file order. Record width is not enforced here;
// short rows are reported by the consumer with their row number. A blank line
// between records is yielded as an empty row so it still takes its place in
// the day count. Iteration ends at EOF, at the first read error, or when ctx
// is cancelled.
func (r *Reader) Rows(ctx context.Context) iter.Seq2[domain.Row, error] {
	return rows(ctx, r.file, r.path)
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.file.Close()
}

// NewRows streams records from an arbitrary reader, for callers that already
// hold the input in memory.
func NewRows(ctx context.Context, src io.Reader) iter.Seq2[domain.Row, error] {
	return rows(ctx, src, "input")
}

func rows(ctx context.Context, src io.Reader, name string) iter.Seq2[domain.Row, error] {
	return func(yield func(domain.Row, error) bool) {
		cr := csv.NewReader(src)
		cr.FieldsPerRecord = -1

		// next is the line a record would start on if no blank lines came first.
		next := 1
		for {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}

			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("read %s: %w", name, err))
				return
			}

			start, _ := cr.FieldPos(0)
			for ; next < start; next++ {
				if !yield(domain.Row{}, nil) {
					return
				}
			}
			next = endLine(cr, record) + 1

			if !yield(domain.Row(record), nil) {
				return
			}
		}
	}
}

// endLine returns the line the record's last field ends on. Quoted fields may
// span lines; csv.Reader normalizes their line breaks to \n.
func endLine(cr *csv.Reader, record []string) int {
	last := len(record) - 1
	line, _ := cr.FieldPos(last)
	return line + strings.Count(record[last], "\n")
}
