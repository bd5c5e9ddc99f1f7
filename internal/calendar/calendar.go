package calendar

import (
	"fmt"
	"sort"
	"time"
)

// maxSkipDays bounds non-working-day scans so a calendar with no working
// days at all (e.g. all seven weekdays closed) fails instead of spinning.
const maxSkipDays = 366 * 50

// Calendar is a business-day calendar: a set of closed weekdays plus an
// explicit, unbounded set of holiday dates. The zero value treats every
// day as working; use New or Default.
type Calendar struct {
	closed   [7]bool
	holidays []time.Time // sorted, unique, UTC midnights
}

// Default returns a calendar with Saturday/Sunday closed and no holidays.
func Default() *Calendar {
	return New([]time.Weekday{time.Saturday, time.Sunday}, nil)
}

// New builds a calendar from a closed-weekday set and holiday dates.
// Holiday dates are normalized, deduplicated and kept sorted so lookups
// are binary searches.
func New(closedDays []time.Weekday, holidays []time.Time) *Calendar {
	c := &Calendar{}
	for _, wd := range closedDays {
		c.closed[wd] = true
	}
	c.holidays = normalizeDates(holidays)
	return c
}

func normalizeDates(dates []time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		out = append(out, DayOf(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	uniq := out[:0]
	for i, d := range out {
		if i == 0 || !d.Equal(out[i-1]) {
			uniq = append(uniq, d)
		}
	}
	return uniq
}

// Day returns the UTC midnight for a civil date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DayOf truncates t to its UTC civil date.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WithHolidays returns a copy of the calendar with extra holiday dates
// merged in. Used for per-member overlays on a shared base calendar.
func (c *Calendar) WithHolidays(extra []time.Time) *Calendar {
	merged := make([]time.Time, 0, len(c.holidays)+len(extra))
	merged = append(merged, c.holidays...)
	merged = append(merged, extra...)
	out := &Calendar{closed: c.closed}
	out.holidays = normalizeDates(merged)
	return out
}

// Union returns the least permissive combination of two calendars: a day
// is working only if it is working in both.
func (c *Calendar) Union(o *Calendar) *Calendar {
	out := &Calendar{closed: c.closed}
	for wd, closed := range o.closed {
		if closed {
			out.closed[wd] = true
		}
	}
	merged := make([]time.Time, 0, len(c.holidays)+len(o.holidays))
	merged = append(merged, c.holidays...)
	merged = append(merged, o.holidays...)
	out.holidays = normalizeDates(merged)
	return out
}

// IsHoliday reports whether the date is in the explicit holiday set.
func (c *Calendar) IsHoliday(d time.Time) bool {
	d = DayOf(d)
	i := sort.Search(len(c.holidays), func(i int) bool {
		return !c.holidays[i].Before(d)
	})
	return i < len(c.holidays) && c.holidays[i].Equal(d)
}

// IsWorking reports whether the date is a working day: not a closed
// weekday and not a holiday.
func (c *Calendar) IsWorking(d time.Time) bool {
	d = DayOf(d)
	if c.closed[d.Weekday()] {
		return false
	}
	return !c.IsHoliday(d)
}

// ClosedWeekdays returns the closed weekday set in Sunday..Saturday order.
func (c *Calendar) ClosedWeekdays() []time.Weekday {
	var out []time.Weekday
	for wd, closed := range c.closed {
		if closed {
			out = append(out, time.Weekday(wd))
		}
	}
	return out
}

// Holidays returns the explicit holiday dates in ascending order.
func (c *Calendar) Holidays() []time.Time {
	out := make([]time.Time, len(c.holidays))
	copy(out, c.holidays)
	return out
}

func (c *Calendar) nextWorkingDay(d time.Time) (time.Time, error) {
	d = DayOf(d)
	for i := 0; i < maxSkipDays; i++ {
		if c.IsWorking(d) {
			return d, nil
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, fmt.Errorf("no working day within %d days of %s", maxSkipDays, d.Format(dateLayout))
}

// NextWorking normalizes an instant to the earliest working instant at or
// after it: a fully consumed or non-working day rolls forward to the next
// working morning.
func (c *Calendar) NextWorking(at Instant) (Instant, error) {
	day, frac := DayOf(at.Day), at.Frac
	if frac >= 1-instantEps {
		day = day.AddDate(0, 0, 1)
		frac = 0
	}
	if !c.IsWorking(day) {
		next, err := c.nextWorkingDay(day)
		if err != nil {
			return Instant{}, err
		}
		day, frac = next, 0
	}
	return Instant{Day: day, Frac: frac}, nil
}

// Advance returns the instant at which the given amount of working time
// has elapsed from start. A working day supplies exactly 1.0 unit; the
// amount is consumed day by day, carrying fractional remainders across
// non-working dates. Zero units normalizes start to the next working
// instant.
func (c *Calendar) Advance(start Instant, units float64) (Instant, error) {
	cur, err := c.NextWorking(start)
	if err != nil {
		return Instant{}, err
	}
	if units <= instantEps {
		return cur, nil
	}
	for {
		avail := 1 - cur.Frac
		if units <= avail+instantEps {
			frac := cur.Frac + units
			if frac > 1 {
				frac = 1
			}
			return Instant{Day: cur.Day, Frac: frac}, nil
		}
		units -= avail
		next, err := c.nextWorkingDay(cur.Day.AddDate(0, 0, 1))
		if err != nil {
			return Instant{}, err
		}
		cur = Instant{Day: next}
	}
}

// WorkingTimeBetween returns the working-time units elapsed between two
// instants. The inverse of Advance; used for validation and reporting.
func (c *Calendar) WorkingTimeBetween(a, b Instant) (float64, error) {
	start, err := c.NextWorking(a)
	if err != nil {
		return 0, err
	}
	if !start.Before(b) {
		return 0, nil
	}
	if start.Day.Equal(DayOf(b.Day)) {
		return b.Frac - start.Frac, nil
	}
	total := 1 - start.Frac
	end := DayOf(b.Day)
	for d := start.Day.AddDate(0, 0, 1); d.Before(end); d = d.AddDate(0, 0, 1) {
		if c.IsWorking(d) {
			total++
		}
	}
	if c.IsWorking(end) {
		total += b.Frac
	}
	return total, nil
}

// NonWorkingBetween returns the non-working dates in [from, to], in
// ascending order. Renderers use this for pause-day annotations.
func (c *Calendar) NonWorkingBetween(from, to time.Time) []time.Time {
	var out []time.Time
	for d := DayOf(from); !d.After(DayOf(to)); d = d.AddDate(0, 0, 1) {
		if !c.IsWorking(d) {
			out = append(out, d)
		}
	}
	return out
}
