package schedule

import (
	"time"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/project"
	"github.com/planloom/planloom/internal/resource"
)

// DayKind classifies one member-day for utilization reporting and the
// Gantt resource footbox.
type DayKind string

const (
	KindClosed        DayKind = "closed"         // closed weekday on the base calendar
	KindPublicHoliday DayKind = "public-holiday" // base-calendar holiday
	KindHoliday       DayKind = "holiday"        // personal leave
	KindOtherDuty     DayKind = "other-duty"     // recurring obligation
	KindIdle          DayKind = "idle"           // working day, nothing booked
	KindUnderloaded   DayKind = "underloaded"    // partially booked
	KindFine          DayKind = "fine"           // fully booked
	KindOverloaded    DayKind = "overloaded"     // booked past capacity; a ledger bug
)

// DayAllocation is one member's booked working time on one date.
type DayAllocation struct {
	Day   time.Time `json:"day"`
	Units float64   `json:"units"` // fraction of the day booked, 0..1
	Kind  DayKind   `json:"kind"`
}

// buildAllocations derives the per-member day-by-day utilization view for
// the project range from the finished ledgers.
func buildAllocations(p *project.Project, book *resource.Book, from, to time.Time) map[string][]DayAllocation {
	out := make(map[string][]DayAllocation, len(p.Members))
	for i := range p.Members {
		m := &p.Members[i]
		out[m.Name] = memberAllocations(m, book.Intervals(m.Name), from, to)
	}
	return out
}

func memberAllocations(m *project.TeamMember, ivs []resource.Interval, from, to time.Time) []DayAllocation {
	base := m.Base
	if base == nil {
		base = calendar.Default()
	}
	personal := dateSet(m.Holidays)
	duties := dateSet(m.OtherDuties)

	var out []DayAllocation
	for d := calendar.DayOf(from); !d.After(calendar.DayOf(to)); d = d.AddDate(0, 0, 1) {
		a := DayAllocation{Day: d}
		switch {
		case personal[d.Unix()]:
			a.Kind = KindHoliday
		case duties[d.Unix()]:
			a.Kind = KindOtherDuty
		case base.IsHoliday(d):
			a.Kind = KindPublicHoliday
		case !base.IsWorking(d):
			a.Kind = KindClosed
		default:
			a.Units = bookedUnits(ivs, d)
			switch {
			case a.Units > 1+effortEps:
				a.Kind = KindOverloaded
			case a.Units >= 1-effortEps:
				a.Kind = KindFine
			case a.Units > effortEps:
				a.Kind = KindUnderloaded
			default:
				a.Kind = KindIdle
			}
		}
		out = append(out, a)
	}
	return out
}

func dateSet(dates []time.Time) map[int64]bool {
	set := make(map[int64]bool, len(dates))
	for _, d := range dates {
		set[calendar.DayOf(d).Unix()] = true
	}
	return set
}

// bookedUnits returns the fraction of date d covered by the intervals.
func bookedUnits(ivs []resource.Interval, d time.Time) float64 {
	total := 0.0
	for _, iv := range ivs {
		if !iv.Start.Before(iv.End) {
			continue
		}
		lo, hi := 0.0, 1.0
		if d.Before(iv.Start.Date()) || d.After(iv.End.Date()) {
			continue
		}
		if d.Equal(iv.Start.Date()) {
			lo = iv.Start.Frac
		}
		if d.Equal(iv.End.Date()) {
			hi = iv.End.Frac
		}
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}
