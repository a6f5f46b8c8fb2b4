// Package calendar decides whether an instant falls inside the clinic's
// operating hours. It is pure: no state, no errors.
package calendar

import "time"

// Clock is the clinic operating window, expressed as minute-of-day offsets.
// The lower bound is inclusive, the upper exclusive: a clinic open 08:00-18:00
// accepts 08:00 and 17:59 but not 18:00.
type Clock struct {
	OpenMinute  int
	CloseMinute int
}

// Default is the reference deployment window, 08:00-18:00.
var Default = Clock{OpenMinute: 8 * 60, CloseMinute: 18 * 60}

// OperatingInstant reports whether t is a bookable instant: a weekday with the
// time of day inside [OpenMinute, CloseMinute).
func (c Clock) OperatingInstant(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	minute := t.Hour()*60 + t.Minute()
	return minute >= c.OpenMinute && minute < c.CloseMinute
}

// ShiftMinutes returns t offset by delta minutes. Used to compute slot ends
// and the widened lower bound of the resource conflict scan.
func ShiftMinutes(t time.Time, delta int) time.Time {
	return t.Add(time.Duration(delta) * time.Minute)
}
