package ephemeris

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze "this year" via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// CurrentYear returns the clock's year in loc.
func CurrentYear(loc Location) (int, error) {
	tz, err := loc.zone()
	if err != nil {
		return 0, err
	}
	return clock.Now().In(tz).Year(), nil
}
