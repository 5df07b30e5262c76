package availability

import "time"

const (
	OverrideAvailable   = "available"
	OverrideUnavailable = "unavailable"
)

const (
	ReasonBooked   = "booked"
	ReasonOverride = "override"
	ReasonWeekly   = "weekly"
)

// weekOrder is the canonical weekday ordering used when the weekly set is
// serialized back out.
var weekOrder = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// WeeklySet is a partner's recurring weekly availability pattern, keyed by
// weekday name.
type WeeklySet map[string]struct{}

func NewWeeklySet(days []string) WeeklySet {
	set := make(WeeklySet, len(days))
	for _, day := range days {
		if validWeekday(day) {
			set[day] = struct{}{}
		}
	}
	return set
}

func (s WeeklySet) Has(day time.Weekday) bool {
	_, ok := s[day.String()]
	return ok
}

// With returns a copy of the set with the named day added or removed. Adding
// a day already present (or removing an absent one) is a no-op.
func (s WeeklySet) With(day string, present bool) WeeklySet {
	next := make(WeeklySet, len(s)+1)
	for d := range s {
		next[d] = struct{}{}
	}
	if !validWeekday(day) {
		return next
	}
	if present {
		next[day] = struct{}{}
	} else {
		delete(next, day)
	}
	return next
}

// Days lists the set in canonical week order, Sunday first.
func (s WeeklySet) Days() []string {
	days := make([]string, 0, len(s))
	for _, day := range weekOrder {
		if _, ok := s[day]; ok {
			days = append(days, day)
		}
	}
	return days
}

func validWeekday(day string) bool {
	for _, name := range weekOrder {
		if name == day {
			return true
		}
	}
	return false
}

type Override struct {
	ID     int64
	Date   Date
	Type   string
	Reason *string
}

// BookingRange is an inclusive date interval a partner is already committed to.
type BookingRange struct {
	Start Date
	End   Date
}

func (r BookingRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

type Resolution struct {
	Date      Date      `json:"date"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason"`
	Override  *Override `json:"-"`
}

// Resolve decides a partner's availability for a single date. Bookings block
// the date outright; otherwise a date-specific override wins over the weekly
// pattern. If the backend ever holds duplicate overrides for one date, the
// first match is authoritative.
func Resolve(weekly WeeklySet, overrides []Override, bookings []BookingRange, date Date) Resolution {
	for _, booking := range bookings {
		if booking.Contains(date) {
			return Resolution{Date: date, Available: false, Reason: ReasonBooked}
		}
	}

	for i := range overrides {
		if overrides[i].Date.Equal(date) {
			return Resolution{
				Date:      date,
				Available: overrides[i].Type == OverrideAvailable,
				Reason:    ReasonOverride,
				Override:  &overrides[i],
			}
		}
	}

	return Resolution{
		Date:      date,
		Available: weekly.Has(date.Weekday()),
		Reason:    ReasonWeekly,
	}
}

// MonthGrid lists every date of the calendar grid for a displayed month: full
// weeks aligned to Sunday, from the week containing the 1st through the week
// containing the last day. The result length is always a multiple of 7.
func MonthGrid(year int, month time.Month) []Date {
	first := NewDate(year, month, 1)
	last := DateOf(first.Time().AddDate(0, 1, -1))

	start := first.AddDays(-int(first.Weekday()))
	end := last.AddDays(6 - int(last.Weekday()))

	grid := make([]Date, 0, 42)
	for d := start; !d.After(end); d = d.AddDays(1) {
		grid = append(grid, d)
	}
	return grid
}
