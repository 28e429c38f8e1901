package utils

import (
	"time"

	"github.com/joy095/roombooking/config"
)

// Today returns the current civil date in the organization's time zone,
// truncated to midnight UTC so it compares cleanly against DATE columns.
func Today() time.Time {
	return CivilDate(time.Now())
}

// CivilDate maps an instant to the civil date it falls on in the booking
// time zone.
func CivilDate(t time.Time) time.Time {
	local := t.In(config.BookingLocation())
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
