package domain

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"time"
)

var (
	// dateRe finds the first M/D/Y digit group, e.g. "1/1/2020".
	dateRe = regexp.MustCompile(`(\d+)/(\d+)/(\d+)`)

	// timeRe finds the first H:M:S digit group, e.g. "6:05:00".
	timeRe = regexp.MustCompile(`(\d+):(\d+):(\d+)`)
)

var (
	ErrShortRow = errors.New("row has too few columns")
	ErrBadDate  = errors.New("date does not match M/D/Y")
	ErrBadTime  = errors.New("time does not match H:M:S")
)

// ParseDate extracts the first M/D/Y group from s.
func ParseDate(s string) (DateValue, error) {
	m := dateRe.FindStringSubmatch(s)
	if m == nil {
		return DateValue{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return DateValue{Month: m[1], Day: m[2], Year: m[3]}, nil
}

// ParseTime extracts the first H:M:S group from s.
func ParseTime(s string) (TimeValue, error) {
	m := timeRe.FindStringSubmatch(s)
	if m == nil {
		return TimeValue{}, fmt.Errorf("%w: %q", ErrBadTime, s)
	}
	return TimeValue{Hour: m[1], Minute: m[2], Second: m[3]}, nil
}

// TrimMinute drops one leading '0' from a minute string: "05" -> "5",
// "00" -> "0", "50" stays "50". A lone "0" is returned unchanged.
func TrimMinute(m string) string {
	if len(m) > 1 && m[0] == '0' {
		return m[1:]
	}
	return m
}

// Date converts the matched digits to a calendar date in loc.
func (d DateValue) Date(loc *time.Location) (time.Time, error) {
	month, errM := strconv.Atoi(d.Month)
	day, errD := strconv.Atoi(d.Day)
	year, errY := strconv.Atoi(d.Year)
	if err := errors.Join(errM, errD, errY); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrBadDate, d, err)
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("%w: %s out of range", ErrBadDate, d)
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), nil
}

// On places the time of day on the given date.
func (t TimeValue) On(date time.Time) (time.Time, error) {
	hour, errH := strconv.Atoi(t.Hour)
	mins, errM := strconv.Atoi(t.Minute)
	secs, errS := strconv.Atoi(t.Second)
	if err := errors.Join(errH, errM, errS); err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", ErrBadTime, t, err)
	}
	if hour > 23 || mins > 59 || secs > 59 {
		return time.Time{}, fmt.Errorf("%w: %s out of range", ErrBadTime, t)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, mins, secs, 0, date.Location()), nil
}

// Extract builds the entry for a selected data row. The row must be wide
// enough to hold every column and its date must parse. The time column is
// only read for a known field; an unknown field yields an entry with an
// empty Time and ok == false.
func Extract(row Row, dayCounter int, field Field) (entry Entry, ok bool, err error) {
	if len(row) < MinColumns {
		return Entry{}, false, fmt.Errorf("data row %d: %w: got %d, need %d", dayCounter, ErrShortRow, len(row), MinColumns)
	}

	date, err := ParseDate(row[DateColumn])
	if err != nil {
		return Entry{}, false, fmt.Errorf("data row %d column %d: %w", dayCounter, DateColumn, err)
	}

	entry = Entry{DayCounter: dayCounter, Field: field, Date: date}

	col, known := field.Column()
	if !known {
		return entry, false, nil
	}

	tv, err := ParseTime(row[col])
	if err != nil {
		return Entry{}, false, fmt.Errorf("data row %d column %d: %w", dayCounter, col, err)
	}
	entry.Time = tv
	return entry, true, nil
}

// Entries lazily maps rows to entries. The first row is the header and is
// skipped. Every following row advances the day counter; rows chosen by
// opts.Selects are extracted and, when opts.Field names a column, yielded in
// order. The sequence stops at the first error, which is yielded once.
func Entries(rows iter.Seq2[Row, error], opts Options) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		header := true
		dayCounter := 0

		for row, err := range rows {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if header {
				header = false
				continue
			}

			dayCounter++
			if !opts.Selects(dayCounter) {
				continue
			}

			entry, ok, err := Extract(row, dayCounter, opts.Field)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !ok {
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
