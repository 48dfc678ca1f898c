package timezone

import (
	"time"
	_ "time/tzdata"
)

// Location is the civil calendar the water portals publish their data in.
var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Paris")
	if err != nil {
		panic(err)
	}
}

// Now returns the current time in Paris. Day and month boundaries of the
// portal data follow this calendar, whatever the host timezone is.
func Now() time.Time {
	return time.Now().In(Location)
}

// In converts t to the portal calendar.
func In(t time.Time) time.Time {
	return t.In(Location)
}

// SameDay reports whether a and b fall on the same Paris calendar day.
func SameDay(a, b time.Time) bool {
	a, b = a.In(Location), b.In(Location)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
