package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"iter"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/couchcryptid/sun-schedule/internal/adapter/csvfile"
	"github.com/couchcryptid/sun-schedule/internal/domain"
	"github.com/couchcryptid/sun-schedule/internal/observability"
	"github.com/couchcryptid/sun-schedule/internal/pipeline"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type sliceSource struct {
	rows []domain.Row
	err  error // yielded after rows when set
}

func (s *sliceSource) Rows(_ context.Context) iter.Seq2[domain.Row, error] {
	return func(yield func(domain.Row, error) bool) {
		for _, r := range s.rows {
			if !yield(r, nil) {
				return
			}
		}
		if s.err != nil {
			yield(nil, s.err)
		}
	}
}

type mockLoader struct {
	loaded []string
	failAt int // 1-based; 0 never fails
}

func (m *mockLoader) Load(_ context.Context, entry domain.Entry) error {
	if m.failAt > 0 && len(m.loaded)+1 == m.failAt {
		return errors.New("stdout closed")
	}
	m.loaded = append(m.loaded, entry.String())
	return nil
}

// csvFixture renders a header plus n days in the 26-column layout, with
// sunrise minute equal to the day number.
func csvFixture(n int) string {
	var b strings.Builder
	cols := make([]string, domain.MinColumns)
	for i := range cols {
		cols[i] = "h" + strconv.Itoa(i)
	}
	b.WriteString(strings.Join(cols, ",") + "\n")

	for day := 1; day <= n; day++ {
		for i := range cols {
			cols[i] = "0"
		}
		cols[domain.DateColumn] = "1/" + strconv.Itoa(day) + "/2021"
		cols[domain.SunriseColumn] = "8:" + strconv.Itoa(day) + ":00"
		cols[domain.SunsetColumn] = "16:0" + strconv.Itoa(day%10) + ":00"
		b.WriteString(strings.Join(cols, ",") + "\n")
	}
	return b.String()
}

type readerSource struct{ src string }

func (r readerSource) Rows(ctx context.Context) iter.Seq2[domain.Row, error] {
	return csvfile.NewRows(ctx, strings.NewReader(r.src))
}

// --- tests ---

func TestPipeline_Run_Weekly(t *testing.T) {
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityWeekly}

	p := pipeline.New(readerSource{csvFixture(15)}, ldr, opts, slog.Default(), metrics)

	sum, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"{8, 1},", "{8, 8},", "{8, 15},"}, ldr.loaded)
	assert.Equal(t, 16, sum.RowsRead)
	assert.Equal(t, 3, sum.RowsSelected)
	assert.Equal(t, 3, sum.Entries)

	assert.InDelta(t, 16, testutil.ToFloat64(metrics.RowsRead), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.RowsSelected), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.EntriesEmitted), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RunFailures), 0)
	assert.Positive(t, testutil.ToFloat64(metrics.LastSuccess))
}

func TestPipeline_Run_DailySunset(t *testing.T) {
	ldr := &mockLoader{}
	opts := domain.Options{Field: domain.FieldSunset, Granularity: domain.GranularityDaily}

	p := pipeline.New(readerSource{csvFixture(10)}, ldr, opts, slog.Default(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 10)
	assert.Equal(t, "{16, 1},", ldr.loaded[0])
	assert.Equal(t, "{16, 0},", ldr.loaded[9])
	assert.Equal(t, 10, sum.RowsSelected)
}

func TestPipeline_Run_UnknownFieldWritesNothing(t *testing.T) {
	ldr := &mockLoader{}
	opts := domain.Options{Field: "x", Granularity: domain.GranularityDaily}

	p := pipeline.New(readerSource{csvFixture(10)}, ldr, opts, slog.Default(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 10, sum.RowsSelected)
	assert.Zero(t, sum.Entries)
}

func TestPipeline_Run_HeaderOnly(t *testing.T) {
	ldr := &mockLoader{}
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}

	p := pipeline.New(readerSource{csvFixture(0)}, ldr, opts, slog.Default(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	assert.Equal(t, 1, sum.RowsRead)
	assert.Zero(t, sum.RowsSelected)
}

func TestPipeline_Run_ShortRowAborts(t *testing.T) {
	header := make(domain.Row, domain.MinColumns)
	good := make(domain.Row, domain.MinColumns)
	good[domain.DateColumn] = "1/1/2020"
	good[domain.SunriseColumn] = "6:05:00"
	good[domain.SunsetColumn] = "18:30:00"
	short := make(domain.Row, 20)

	src := &sliceSource{rows: []domain.Row{header, good, short, good}}
	ldr := &mockLoader{}
	metrics := observability.NewMetricsForTesting()
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}

	p := pipeline.New(src, ldr, opts, slog.Default(), metrics)

	sum, err := p.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrShortRow)
	assert.Equal(t, []string{"{6, 5},"}, ldr.loaded)
	assert.Equal(t, 1, sum.Entries)
	assert.Equal(t, 3, sum.RowsRead)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RunFailures), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.LastSuccess), 0)
}

func TestPipeline_Run_AbortLeavesErrorToCaller(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	src := &sliceSource{rows: []domain.Row{make(domain.Row, domain.MinColumns), make(domain.Row, 20)}}
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}

	_, err := pipeline.New(src, &mockLoader{}, opts, logger, observability.NewMetricsForTesting()).Run(context.Background())
	require.ErrorIs(t, err, domain.ErrShortRow)
	assert.Contains(t, logs.String(), "run aborted")
	assert.NotContains(t, logs.String(), err.Error())
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestPipeline_Run_SourceError(t *testing.T) {
	boom := errors.New("read: input/output error")
	src := &sliceSource{rows: []domain.Row{make(domain.Row, domain.MinColumns)}, err: boom}
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}

	p := pipeline.New(src, &mockLoader{}, opts, slog.Default(), observability.NewMetricsForTesting())

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestPipeline_Run_LoaderError(t *testing.T) {
	ldr := &mockLoader{failAt: 2}
	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}

	p := pipeline.New(readerSource{csvFixture(5)}, ldr, opts, slog.Default(), observability.NewMetricsForTesting())

	sum, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load entry")
	assert.Contains(t, err.Error(), "stdout closed")
	assert.Equal(t, []string{"{8, 1},"}, ldr.loaded)
	assert.Equal(t, 1, sum.Entries)
}

func TestPipeline_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := domain.Options{Field: domain.FieldSunrise, Granularity: domain.GranularityDaily}
	p := pipeline.New(readerSource{csvFixture(5)}, &mockLoader{}, opts, slog.Default(), observability.NewMetricsForTesting())

	_, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
