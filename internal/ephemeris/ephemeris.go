// Package ephemeris computes daily sunrise and sunset for a location and
// renders them in the CSV layout the table generator reads. It backs the
// fixture generator and the ephemeris check in the validator.
package ephemeris

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/couchcryptid/sun-schedule/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/sixdouglas/suncalc"
)

// ErrNoSunriseOrSunset is returned for polar day or polar night, when the
// sun does not cross the horizon on a date.
var ErrNoSunriseOrSunset = errors.New("sun does not rise or set")

// Location is an observer position and the zone local times are shown in.
type Location struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
	TZ        string  `validate:"required,timezone"`
}

var validate = validator.New()

// Validate checks coordinate ranges and that TZ names a loadable zone.
func (l Location) Validate() error {
	if err := validate.Struct(l); err != nil {
		return fmt.Errorf("invalid location: %w", err)
	}
	return nil
}

func (l Location) zone() (*time.Location, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return time.LoadLocation(l.TZ)
}

// Times are the sun events of one local calendar day, truncated to seconds.
type Times struct {
	Date      time.Time
	Location  Location
	Sunrise   time.Time
	Sunset    time.Time
	SolarNoon time.Time

	// NoonAltitude is the sun's altitude at solar noon in degrees.
	NoonAltitude float64
}

// DayLength is the time between sunrise and sunset.
func (t Times) DayLength() time.Duration {
	return t.Sunset.Sub(t.Sunrise)
}

// Day computes sun events for the calendar day of date in loc's zone.
func Day(date time.Time, loc Location) (Times, error) {
	tz, err := loc.zone()
	if err != nil {
		return Times{}, err
	}
	return day(date, loc, tz)
}

func day(date time.Time, loc Location, tz *time.Location) (Times, error) {
	y, m, d := date.In(tz).Date()
	midday := time.Date(y, m, d, 12, 0, 0, 0, tz)

	events := suncalc.GetTimes(midday, loc.Latitude, loc.Longitude)
	rise := events["sunrise"].Value
	set := events["sunset"].Value
	noon := events["solarNoon"].Value

	if !near(rise, midday) || !near(set, midday) || !rise.Before(set) {
		return Times{}, fmt.Errorf("%s at %.4f,%.4f: %w", midday.Format(time.DateOnly), loc.Latitude, loc.Longitude, ErrNoSunriseOrSunset)
	}

	pos := suncalc.GetPosition(noon, loc.Latitude, loc.Longitude)

	return Times{
		Date:         time.Date(y, m, d, 0, 0, 0, 0, tz),
		Location:     loc,
		Sunrise:      rise.In(tz).Truncate(time.Second),
		Sunset:       set.In(tz).Truncate(time.Second),
		SolarNoon:    noon.In(tz).Truncate(time.Second),
		NoonAltitude: pos.Altitude * 180 / math.Pi,
	}, nil
}

// near rejects the out-of-range instants suncalc produces when an event
// does not happen on a day.
func near(t, midday time.Time) bool {
	return !t.IsZero() && t.Sub(midday).Abs() < 14*time.Hour
}

// Year computes sun events for every day of year, in date order.
func Year(year int, loc Location) ([]Times, error) {
	tz, err := loc.zone()
	if err != nil {
		return nil, err
	}

	start := time.Date(year, time.January, 1, 0, 0, 0, 0, tz)
	end := start.AddDate(1, 0, 0)

	days := make([]Times, 0, 366)
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		t, err := day(d, loc, tz)
		if err != nil {
			return nil, err
		}
		days = append(days, t)
	}
	return days, nil
}

// columns is the CSV header, modeled on the NOAA solar calculation sheet.
// The intermediate orbital terms are not computed and stay blank.
var columns = [...]string{
	"Latitude", "Longitude", "Time Zone", "Date",
	"Time (past local midnight)", "Julian Day", "Julian Century",
	"Geom Mean Long Sun (deg)", "Geom Mean Anom Sun (deg)", "Eccent Earth Orbit",
	"Sun Eq of Ctr", "Sun True Long (deg)", "Sun True Anom (deg)", "Sun Rad Vector (AUs)",
	"Sun App Long (deg)", "Mean Obliq Ecliptic (deg)", "Obliq Corr (deg)",
	"Sun Rt Ascen (deg)", "Sun Declin (deg)", "var y", "Eq of Time (minutes)",
	"HA Sunrise (deg)", "Solar Noon (LST)", "Solar Elevation at Noon (deg)",
	"Sunrise Time (LST)", "Sunset Time (LST)", "Sunlight Duration (minutes)",
}

const (
	colLatitude     = 0
	colLongitude    = 1
	colTimeZone     = 2
	colTimeOfDay    = 4
	colJulianDay    = 5
	colJulianCent   = 6
	colSolarNoon    = 22
	colNoonAltitude = 23
	colDuration     = 26
)

// Header returns the CSV header row.
func Header() domain.Row {
	row := make(domain.Row, len(columns))
	copy(row, columns[:])
	return row
}

// Row renders t in the input layout: date at domain.DateColumn, sunrise
// and sunset at domain.SunriseColumn and domain.SunsetColumn.
func Row(t Times) domain.Row {
	row := make(domain.Row, len(columns))

	jd := julianDay(t.Date)
	row[colLatitude] = strconv.FormatFloat(t.Location.Latitude, 'f', 4, 64)
	row[colLongitude] = strconv.FormatFloat(t.Location.Longitude, 'f', 4, 64)
	row[colTimeZone] = t.Location.TZ
	row[domain.DateColumn] = FormatDate(t.Date)
	row[colTimeOfDay] = "0:00:00"
	row[colJulianDay] = strconv.FormatFloat(jd, 'f', 4, 64)
	row[colJulianCent] = strconv.FormatFloat((jd-2451545)/36525, 'f', 8, 64)
	row[colSolarNoon] = FormatClock(t.SolarNoon)
	row[colNoonAltitude] = strconv.FormatFloat(t.NoonAltitude, 'f', 2, 64)
	row[domain.SunriseColumn] = FormatClock(t.Sunrise)
	row[domain.SunsetColumn] = FormatClock(t.Sunset)
	row[colDuration] = strconv.FormatFloat(t.DayLength().Minutes(), 'f', 1, 64)

	return row
}

// FormatDate renders M/D/YYYY without padding, e.g. "1/9/2025".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}

// FormatClock renders H:MM:SS with an unpadded hour, e.g. "6:05:00".
func FormatClock(t time.Time) string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// julianDay converts the date's zone-local midnight to a Julian day number.
func julianDay(t time.Time) float64 {
	return float64(t.Unix())/86400 + 2440587.5
}
