package domain

import "fmt"

// Column positions in the source CSV.
const (
	DateColumn    = 3
	SunriseColumn = 24
	SunsetColumn  = 25

	// MinColumns is the narrowest row that still carries every column read.
	MinColumns = SunsetColumn + 1
)

// Row is one CSV record as parsed, fields in file order.
type Row []string

// Field selects which time column an entry is built from. Values other than
// FieldSunrise and FieldSunset are accepted but match no column.
type Field string

const (
	FieldSunrise Field = "r"
	FieldSunset  Field = "s"
)

// Column returns the CSV index for the field and false when the field is
// unrecognized.
func (f Field) Column() (int, bool) {
	switch f {
	case FieldSunrise:
		return SunriseColumn, true
	case FieldSunset:
		return SunsetColumn, true
	default:
		return 0, false
	}
}

// Known reports whether f names a time column.
func (f Field) Known() bool {
	_, ok := f.Column()
	return ok
}

func (f Field) String() string {
	switch f {
	case FieldSunrise:
		return "sunrise"
	case FieldSunset:
		return "sunset"
	default:
		return fmt.Sprintf("unknown(%q)", string(f))
	}
}

// Granularity controls row sampling. Only GranularityDaily is special;
// every other value samples weekly.
type Granularity string

const (
	GranularityWeekly Granularity = "w"
	GranularityDaily  Granularity = "d"
)

// Daily reports whether every row is emitted.
func (g Granularity) Daily() bool { return g == GranularityDaily }

// Options are the two choices made once per run.
type Options struct {
	Field       Field
	Granularity Granularity
}

// Selects reports whether the data row with the given 1-based day counter is
// emitted.
func (o Options) Selects(dayCounter int) bool {
	return o.Granularity.Daily() || dayCounter%7 == 1
}

// DateValue is a M/D/Y date with the digits kept as matched.
type DateValue struct {
	Month string
	Day   string
	Year  string
}

func (d DateValue) String() string {
	return d.Month + "/" + d.Day + "/" + d.Year
}

// TimeValue is a H:M:S time with the digits kept as matched.
type TimeValue struct {
	Hour   string
	Minute string
	Second string
}

func (t TimeValue) String() string {
	return t.Hour + ":" + t.Minute + ":" + t.Second
}

// Entry is one selected row ready for output.
type Entry struct {
	DayCounter int
	Field      Field
	Date       DateValue
	Time       TimeValue
}

// String renders the entry as an array-literal element, e.g. "{6, 5},".
func (e Entry) String() string {
	return "{" + e.Time.Hour + ", " + TrimMinute(e.Time.Minute) + "},"
}
