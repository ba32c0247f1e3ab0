package utils

import "time"

// EasternLocation is the timezone for US equity markets.
var EasternLocation *time.Location

func init() {
	var err error
	EasternLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		EasternLocation = time.FixedZone("ET", -5*60*60)
	}
}

// IsMarketOpen reports whether the regular US equity session is open at
// the given instant (9:30-16:00 ET, weekdays). Holidays are not
// tracked; a scan on a holiday simply sees stale quotes.
func IsMarketOpen(now time.Time) bool {
	et := now.In(EasternLocation)
	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday {
		return false
	}
	minutes := et.Hour()*60 + et.Minute()
	return minutes >= 9*60+30 && minutes < 16*60
}

// DaysUntil counts whole calendar days from now to a future date,
// negative when the date has passed.
func DaysUntil(now, date time.Time) int {
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DaysToEarnings converts a known earnings date into the gate's
// days-to-earnings input. Nil when no date is known.
func DaysToEarnings(now time.Time, earnings *time.Time) *int {
	if earnings == nil {
		return nil
	}
	d := DaysUntil(now, *earnings)
	return &d
}

// WithinWindow reports whether a day count falls inside an upcoming
// event window of the given width.
func WithinWindow(days *int, windowDays int) bool {
	return days != nil && *days >= 0 && *days <= windowDays
}
