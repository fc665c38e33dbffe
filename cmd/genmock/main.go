// Command genmock computes a year of sunrise/sunset times for a location and
// writes them as a CSV fixture in the layout suntable reads. It uses the
// ephemeris package so fixtures match what the validator checks against.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -lat 56.9496 -lon 24.1052 -tz Europe/Riga \
//	  -year 2025 \
//	  -out testdata/riga_2025.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/couchcryptid/sun-schedule/internal/ephemeris"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("genmock", flag.ContinueOnError)
	lat := fs.Float64("lat", 56.9496, "latitude in degrees, north positive")
	lon := fs.Float64("lon", 24.1052, "longitude in degrees, east positive")
	tz := fs.String("tz", "Europe/Riga", "IANA zone for local times")
	year := fs.Int("year", 0, "calendar year (default: current year in -tz)")
	out := fs.String("out", "", "output CSV path (default: stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	loc := ephemeris.Location{Latitude: *lat, Longitude: *lon, TZ: *tz}
	if err := loc.Validate(); err != nil {
		return err
	}

	if *year == 0 {
		y, err := ephemeris.CurrentYear(loc)
		if err != nil {
			return err
		}
		*year = y
	}

	days, err := ephemeris.Year(*year, loc)
	if err != nil {
		return fmt.Errorf("computing %d: %w", *year, err)
	}

	if *out == "" {
		return writeCSV(os.Stdout, days)
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	if err := writeCSV(f, days); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", *out, err)
	}

	log.Printf("wrote %d days for %d at %.4f,%.4f (%s): %s", len(days), *year, *lat, *lon, *tz, *out)
	return nil
}

func writeCSV(w io.Writer, days []ephemeris.Times) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ephemeris.Header()); err != nil {
		return err
	}
	for _, d := range days {
		if err := cw.Write(ephemeris.Row(d)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
