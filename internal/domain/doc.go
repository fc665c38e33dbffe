// Package domain turns daily sunrise/sunset CSV rows into array-literal
// entries for firmware sun schedules.
//
// # Data Source
//
// Input rows come from a daily solar calculation sheet exported as CSV (one
// header row, then one row per calendar day in date order). Only three
// columns are read; the rest are ignored:
//
//	index  3   date     "M/D/YYYY", e.g. "1/1/2020"
//	index 24   sunrise  "H:MM:SS" local time, e.g. "6:05:00"
//	index 25   sunset   "H:MM:SS" local time, e.g. "18:30:00"
//
// A row therefore needs at least 26 fields. Fields are located by pattern
// search, so surrounding text such as a trailing " AM" is tolerated; a field
// with no digit/separator match at all is an error.
//
// # Selection
//
// Data rows are numbered from 1 by a day counter (the header is not counted).
// In daily mode every row is emitted. In weekly mode only rows with
// counter%7 == 1 are emitted: days 1, 8, 15, ... which gives the 53 entries a
// weekly firmware table indexes by week number.
//
// # Output Format
//
//	{H, M},
//
// H is the hour exactly as it appears in the source. M is the minute with a
// single leading zero dropped ("05" -> "5", "00" -> "0"); source minutes are
// always two digits so one character is all that is ever removed. The result
// pastes straight into a C initializer such as
//
//	const SimpleTime sunriseTimes[] PROGMEM = { {7, 43}, {7, 41}, ... };
//
// See [Entries] for the streaming entry point.
package domain
