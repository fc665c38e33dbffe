// Command validate checks a sunrise/sunset CSV before it is turned into a
// firmware table. It verifies row structure, field formats, that dates run
// day by day without gaps, and optionally that the times agree with computed
// ephemeris values for a location.
//
// Usage:
//
//	go run ./cmd/validate -file sunrisesunset.csv
//	go run ./cmd/validate -file sunrisesunset.csv \
//	  -lat 56.9496 -lon 24.1052 -tz Europe/Riga -tolerance 3m
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/couchcryptid/sun-schedule/internal/adapter/csvfile"
	"github.com/couchcryptid/sun-schedule/internal/domain"
	"github.com/couchcryptid/sun-schedule/internal/ephemeris"
)

// maxReported caps the detail lines printed per phase.
const maxReported = 20

// phase tracks pass/fail for a validation phase.
type phase struct {
	name    string
	skipped bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// day is one data row with its parsed values. Parse failures leave ok false.
type day struct {
	line    int // 1-based file line
	row     domain.Row
	date    time.Time
	sunrise time.Time
	sunset  time.Time
	ok      bool
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("file", "sunrisesunset.csv", "CSV file to check")
	lat := fs.Float64("lat", 0, "latitude for the ephemeris check")
	lon := fs.Float64("lon", 0, "longitude for the ephemeris check")
	tz := fs.String("tz", "", "IANA zone of the CSV times; enables the ephemeris check")
	tolerance := fs.Duration("tolerance", 2*time.Minute, "allowed difference from computed times")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	zone := time.UTC
	var loc *ephemeris.Location
	if *tz != "" {
		l := ephemeris.Location{Latitude: *lat, Longitude: *lon, TZ: *tz}
		if err := l.Validate(); err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		z, err := time.LoadLocation(*tz)
		if err != nil {
			fmt.Fprintf(stderr, "FATAL: %v\n", err)
			return 1
		}
		zone = z
		loc = &l
	}

	header, days, err := load(ctx, *path, zone)
	if err != nil {
		fmt.Fprintf(stderr, "FATAL: %v\n", err)
		return 1
	}

	fmt.Fprintln(stdout, "=== Sun Schedule CSV Validation ===")
	fmt.Fprintln(stdout)

	phases := []*phase{
		validateStructure(header, days),
		validateFields(days),
		validateOrdering(days),
		validateEphemeris(days, loc, *tolerance),
	}

	return report(stdout, phases, len(days))
}

func report(w io.Writer, phases []*phase, rows int) int {
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.skipped:
			status = "SKIP"
		case !p.passed():
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-30s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Data rows: %d (weekly table: %d entries)\n", rows, (rows+6)/7)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

// load reads every row and parses what it can; structural problems are left
// for the phases to report.
func load(ctx context.Context, path string, zone *time.Location) (domain.Row, []day, error) {
	r, err := csvfile.Open(path, discardLogger())
	if err != nil {
		return nil, nil, err
	}
	defer r.Close()

	var header domain.Row
	var days []day
	line := 0
	for row, err := range r.Rows(ctx) {
		if err != nil {
			return nil, nil, err
		}
		line++
		if line == 1 {
			header = row
			continue
		}
		days = append(days, parseDay(line, row, zone))
	}
	return header, days, nil
}

func parseDay(line int, row domain.Row, zone *time.Location) day {
	d := day{line: line, row: row}
	if len(row) < domain.MinColumns {
		return d
	}

	dv, errD := domain.ParseDate(row[domain.DateColumn])
	rise, errR := domain.ParseTime(row[domain.SunriseColumn])
	set, errS := domain.ParseTime(row[domain.SunsetColumn])
	if errD != nil || errR != nil || errS != nil {
		return d
	}

	date, err := dv.Date(zone)
	if err != nil {
		return d
	}
	sunrise, errR := rise.On(date)
	sunset, errS := set.On(date)
	if errR != nil || errS != nil {
		return d
	}

	d.date, d.sunrise, d.sunset, d.ok = date, sunrise, sunset, true
	return d
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ── Validation phases ──

func validateStructure(header domain.Row, days []day) *phase {
	p := &phase{name: "Structure"}
	if header == nil {
		p.errorf("file is empty, expected a header row")
		return p
	}
	if len(days) == 0 {
		p.errorf("no data rows after the header")
	}
	for _, d := range days {
		if len(d.row) < domain.MinColumns {
			p.errorf("line %d: %d columns, need at least %d", d.line, len(d.row), domain.MinColumns)
		}
	}
	return p
}

func validateFields(days []day) *phase {
	p := &phase{name: "Field formats"}
	for _, d := range days {
		if len(d.row) < domain.MinColumns {
			continue
		}
		checkField(p, d.line, "date", d.row[domain.DateColumn], func(s string) error {
			dv, err := domain.ParseDate(s)
			if err != nil {
				return err
			}
			_, err = dv.Date(time.UTC)
			return err
		})
		for _, c := range []struct {
			name string
			col  int
		}{{"sunrise", domain.SunriseColumn}, {"sunset", domain.SunsetColumn}} {
			checkField(p, d.line, c.name, d.row[c.col], func(s string) error {
				tv, err := domain.ParseTime(s)
				if err != nil {
					return err
				}
				_, err = tv.On(time.Time{})
				return err
			})
		}
		if d.ok && !d.sunrise.Before(d.sunset) {
			p.errorf("line %d: sunrise %s is not before sunset %s",
				d.line, d.sunrise.Format(time.TimeOnly), d.sunset.Format(time.TimeOnly))
		}
	}
	return p
}

func checkField(p *phase, line int, name, value string, parse func(string) error) {
	if err := parse(value); err != nil {
		p.errorf("line %d %s: %v", line, name, err)
	}
}

func validateOrdering(days []day) *phase {
	p := &phase{name: "Date ordering"}
	var prev *day
	for i := range days {
		d := &days[i]
		if !d.ok {
			continue
		}
		if prev != nil {
			want := prev.date.AddDate(0, 0, 1)
			if !d.date.Equal(want) {
				p.errorf("line %d: date %s follows %s, expected %s",
					d.line, d.date.Format(time.DateOnly), prev.date.Format(time.DateOnly), want.Format(time.DateOnly))
			}
		}
		prev = d
	}
	return p
}

func validateEphemeris(days []day, loc *ephemeris.Location, tolerance time.Duration) *phase {
	p := &phase{name: "Ephemeris agreement"}
	if loc == nil {
		p.skipped = true
		return p
	}
	for _, d := range days {
		if !d.ok {
			continue
		}
		want, err := ephemeris.Day(d.date, *loc)
		if err != nil {
			p.errorf("line %d: %v", d.line, err)
			continue
		}
		compareTime(p, d.line, "sunrise", d.sunrise, want.Sunrise, tolerance)
		compareTime(p, d.line, "sunset", d.sunset, want.Sunset, tolerance)
	}
	return p
}

func compareTime(p *phase, line int, name string, got, want time.Time, tolerance time.Duration) {
	if diff := got.Sub(want).Abs(); diff > tolerance {
		p.errorf("line %d %s: %s, computed %s (off by %s)",
			line, name, got.Format(time.TimeOnly), want.Format(time.TimeOnly), diff)
	}
}
