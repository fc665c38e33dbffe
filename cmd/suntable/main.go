// Command suntable prints sunrise or sunset times from a daily solar CSV as
// C array-literal entries, one "{H, M}," line per selected day.
//
// Usage:
//
//	go run ./cmd/suntable -file sunrisesunset.csv -field r -granularity w > sunrise_weeks.inc
//
// Without -field or -granularity (and the SUNTABLE_FIELD / SUNTABLE_GRANULARITY
// environment variables) the two choices are asked for interactively on
// stderr. Only table lines are written to stdout.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/couchcryptid/sun-schedule/internal/adapter/console"
	"github.com/couchcryptid/sun-schedule/internal/adapter/csvfile"
	"github.com/couchcryptid/sun-schedule/internal/config"
	"github.com/couchcryptid/sun-schedule/internal/domain"
	"github.com/couchcryptid/sun-schedule/internal/observability"
	"github.com/couchcryptid/sun-schedule/internal/pipeline"
)

const (
	fieldPrompt       = "Sunrise (r) or Sunset (s) times? "
	granularityPrompt = "Weeks only (w) or all days (d)? "
)

// errNoAnswer means stdin closed before a prompt was answered.
var errNoAnswer = errors.New("no answer on stdin")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			slog.Error("suntable failed", "error", err)
		}
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := flag.NewFlagSet("suntable", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.InputFile, "file", cfg.InputFile, "input CSV (header row, date in column 3, sunrise/sunset in columns 24/25)")
	fs.StringVar(&cfg.Field, "field", cfg.Field, "r for sunrise, s for sunset; prompted when empty")
	fs.StringVar(&cfg.Granularity, "granularity", cfg.Granularity, "w for weekly sampling, d for every day; prompted when empty")
	fs.StringVar(&cfg.MetricsTextfile, "metrics-textfile", cfg.MetricsTextfile, "write run metrics to this Prometheus textfile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := observability.NewLoggerTo(stderr, cfg)
	metrics := observability.NewMetrics()

	opts, err := askOptions(cfg, bufio.NewReader(stdin), stderr)
	if err != nil {
		return err
	}

	runErr := generate(ctx, cfg.InputFile, opts, stdout, logger, metrics)

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("metrics not written", "error", err)
		}
	}
	return runErr
}

// askOptions fills in whichever choice the configuration left empty by
// prompting, then maps both answers onto domain options unchanged.
func askOptions(cfg *config.Config, in *bufio.Reader, out io.Writer) (domain.Options, error) {
	field := cfg.Field
	if field == "" {
		answer, err := ask(in, out, fieldPrompt)
		if err != nil {
			return domain.Options{}, err
		}
		field = answer
	}

	granularity := cfg.Granularity
	if granularity == "" {
		answer, err := ask(in, out, granularityPrompt)
		if err != nil {
			return domain.Options{}, err
		}
		granularity = answer
	}

	return domain.Options{Field: domain.Field(field), Granularity: domain.Granularity(granularity)}, nil
}

// ask writes the prompt and returns one line of input without its line ending.
func ask(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	line, err := in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("%q: %w", strings.TrimSpace(prompt), errNoAnswer)
		}
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func generate(ctx context.Context, path string, opts domain.Options, stdout io.Writer, logger *slog.Logger, metrics *observability.Metrics) error {
	src, err := csvfile.Open(path, logger)
	if err != nil {
		metrics.RunFailures.Inc()
		return err
	}
	defer src.Close()

	out := console.NewWriter(stdout)
	_, runErr := pipeline.New(src, out, opts, logger, metrics).Run(ctx)

	// Lines produced before a failure are still printed, as a plain
	// print-as-you-go loop would have done.
	if err := out.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("flush output: %w", err)
	}
	return runErr
}
