package pipeline

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/couchcryptid/sun-schedule/internal/domain"
	"github.com/couchcryptid/sun-schedule/internal/observability"
)

// RowSource yields CSV rows in file order, header first.
type RowSource interface {
	Rows(ctx context.Context) iter.Seq2[domain.Row, error]
}

// Loader writes one formatted entry to the destination.
type Loader interface {
	Load(ctx context.Context, entry domain.Entry) error
}

// Summary reports what a run did.
type Summary struct {
	RowsRead     int
	RowsSelected int
	Entries      int
	Duration     time.Duration
}

// Pipeline runs a single forward pass from source to loader.
type Pipeline struct {
	source  RowSource
	loader  Loader
	opts    domain.Options
	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Pipeline for one set of run options.
func New(src RowSource, l Loader, opts domain.Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  src,
		loader:  l,
		opts:    opts,
		logger:  logger,
		metrics: metrics,
	}
}

// Run streams every row through the selector and loads each entry. The first
// error from the source, the selector, or the loader aborts the run and is
// returned for the caller to report; entries already loaded stay loaded.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var sum Summary

	p.logger.Info("run started",
		"field", p.opts.Field.String(),
		"daily", p.opts.Granularity.Daily(),
	)
	if !p.opts.Field.Known() {
		p.logger.Warn("field matches neither sunrise (r) nor sunset (s), no entries will be written",
			"field", string(p.opts.Field))
	}

	err := p.run(ctx, &sum)
	sum.Duration = time.Since(start)
	p.metrics.RunDuration.Set(sum.Duration.Seconds())

	if err != nil {
		p.metrics.RunFailures.Inc()
		p.logger.Warn("run aborted",
			"rows_read", sum.RowsRead,
			"entries", sum.Entries,
		)
		return sum, err
	}

	p.metrics.LastSuccess.SetToCurrentTime()
	p.logger.Info("run complete",
		"rows_read", sum.RowsRead,
		"rows_selected", sum.RowsSelected,
		"entries", sum.Entries,
		"duration", sum.Duration,
	)
	return sum, nil
}

func (p *Pipeline) run(ctx context.Context, sum *Summary) error {
	rows := p.countRows(p.source.Rows(ctx), sum)

	for entry, err := range domain.Entries(rows, p.opts) {
		if err != nil {
			return err
		}
		if err := p.loader.Load(ctx, entry); err != nil {
			return fmt.Errorf("load entry: %w", err)
		}
		sum.Entries++
		p.metrics.EntriesEmitted.Inc()
		p.logger.Debug("entry written", "day", entry.DayCounter, "date", entry.Date.String(), "time", entry.Time.String())
	}
	return nil
}

// countRows passes rows through unchanged while tallying rows read and the
// data rows the sampling rule picks.
func (p *Pipeline) countRows(rows iter.Seq2[domain.Row, error], sum *Summary) iter.Seq2[domain.Row, error] {
	return func(yield func(domain.Row, error) bool) {
		for row, err := range rows {
			if err == nil {
				sum.RowsRead++
				p.metrics.RowsRead.Inc()
				// The header is row 1, so data row n is RowsRead-1.
				if day := sum.RowsRead - 1; day > 0 && p.opts.Selects(day) {
					sum.RowsSelected++
					p.metrics.RowsSelected.Inc()
				}
			}
			if !yield(row, err) {
				return
			}
		}
	}
}
