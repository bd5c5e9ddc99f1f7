package schedule

import (
	"fmt"
	"time"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/graph"
	"github.com/planloom/planloom/internal/project"
	"github.com/planloom/planloom/internal/resource"
)

const effortEps = 1e-9

// taskSetup is the per-task scheduling context derived from assignments.
type taskSetup struct {
	members []string
	rates   []float64
	cals    []*calendar.Calendar
	union   *calendar.Calendar
	rate    float64 // combined focus rate per working day
}

// Compute runs the single deterministic scheduling pass over the project.
// It validates first and never returns a partial schedule: any error
// aborts the whole run.
func Compute(p *project.Project, opts Options) (*Schedule, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g, err := graph.Build(p.Tasks)
	if err != nil {
		return nil, err
	}
	order := g.TopoOrder()

	startDay := p.Start
	if !opts.Start.IsZero() {
		startDay = opts.Start
	}
	start := calendar.At(startDay)

	memberCals := make(map[string]*calendar.Calendar, len(p.Members))
	for i := range p.Members {
		m := &p.Members[i]
		memberCals[m.Name] = m.EffectiveCalendar()
	}

	book := resource.NewBook()
	finishes := make(map[string]calendar.Instant, len(order))
	readies := make(map[string]calendar.Instant, len(order))

	sched := &Schedule{
		Project: p.Name,
		Policy:  opts.Progress.String(),
		Start:   start,
		Finish:  start,
		Tasks:   make([]ScheduledTask, 0, len(order)),
	}
	sched.ClosedWeekdays = baseClosedWeekdays(p)

	for _, id := range order {
		t, _ := p.Task(id)
		setup := newTaskSetup(p, t, memberCals)

		ready := start
		for _, pred := range g.RevAdj[id] {
			ready = ready.Max(finishes[pred])
		}
		readies[id] = ready

		iv, span, err := placeTask(t, setup, ready, book, opts.Progress)
		if err != nil {
			return nil, fmt.Errorf("schedule task %q: %w", id, err)
		}
		for _, m := range setup.members {
			if err := book.Reserve(m, iv); err != nil {
				// ConflictError here means the placement search is broken.
				return nil, fmt.Errorf("schedule task %q: %w", id, err)
			}
		}

		finishes[id] = iv.End
		sched.Finish = sched.Finish.Max(iv.End)
		sched.Tasks = append(sched.Tasks, ScheduledTask{
			ID:        id,
			Name:      t.Name,
			Assignees: setup.members,
			After:     append([]string(nil), g.RevAdj[id]...),
			Start:     iv.Start,
			Finish:    iv.End,
			Effort:    t.Effort,
			Span:      span,
			PauseDays: pauseDays(iv, setup, opts.Progress),
		})
	}

	markCriticalPath(sched, g, start, readies, finishes)

	sched.Utilization = make(map[string][]resource.Interval)
	for _, m := range book.Members() {
		sched.Utilization[m] = book.Intervals(m)
	}
	sched.Allocations = buildAllocations(p, book, start.Day, sched.Finish.Day)

	return sched, nil
}

// baseClosedWeekdays unions the closed weekday sets of every member's base
// calendar, so the rendered closure lines hold for the whole team.
func baseClosedWeekdays(p *project.Project) []time.Weekday {
	var u *calendar.Calendar
	for i := range p.Members {
		b := p.Members[i].Base
		if b == nil {
			b = calendar.Default()
		}
		if u == nil {
			u = b
		} else {
			u = u.Union(b)
		}
	}
	if u == nil {
		u = calendar.Default()
	}
	return u.ClosedWeekdays()
}

func newTaskSetup(p *project.Project, t *project.Task, memberCals map[string]*calendar.Calendar) taskSetup {
	var s taskSetup
	for _, a := range t.Assignees {
		m, _ := p.Member(a.Member) // existence checked by Validate
		s.members = append(s.members, a.Member)
		s.rates = append(s.rates, resource.EffectiveRate(m, a))
		s.cals = append(s.cals, memberCals[a.Member])
	}
	s.union = s.cals[0]
	for _, c := range s.cals[1:] {
		s.union = s.union.Union(c)
	}
	for _, r := range s.rates {
		s.rate += r
	}
	return s
}

// placeTask finds the earliest interval at or after ready where every
// assignee is free for the task's whole span, and returns it along with
// the working-day units the task occupies. The search advances past every
// conflicting reservation, so the caller's Reserve cannot fail.
func placeTask(t *project.Task, s taskSetup, ready calendar.Instant, book *resource.Book, policy ProgressPolicy) (resource.Interval, float64, error) {
	// Every step strictly advances the candidate past a finite set of
	// reservations or non-working stretches, so the search converges.
	limit := 16 + 4*len(s.members)*(ledgerSize(book, s.members)+2)
	candidate := ready
	for iter := 0; iter < limit; iter++ {
		moved := false
		// Fixed point: all assignees simultaneously free at the candidate.
		for _, m := range s.members {
			if ea := book.EarliestAvailable(m, candidate); candidate.Before(ea) {
				candidate = ea
				moved = true
			}
		}
		if moved {
			continue
		}

		iv, span, err := taskInterval(t, s, candidate, policy)
		if err != nil {
			return resource.Interval{}, 0, err
		}
		if candidate.Before(iv.Start) {
			// Normalization skipped non-working time; re-check availability
			// at the real start.
			candidate = iv.Start
			continue
		}
		for _, m := range s.members {
			if have, ok := book.NextConflict(m, iv); ok {
				candidate = have.End
				moved = true
				break
			}
		}
		if moved {
			continue
		}
		return iv, span, nil
	}
	return resource.Interval{}, 0, fmt.Errorf("internal: availability search for %d assignees did not converge", len(s.members))
}

func ledgerSize(book *resource.Book, members []string) int {
	n := 0
	for _, m := range members {
		n += len(book.Intervals(m))
	}
	return n
}

// taskInterval converts the task's ideal effort into a concrete calendar
// interval starting at or after the candidate instant.
func taskInterval(t *project.Task, s taskSetup, candidate calendar.Instant, policy ProgressPolicy) (resource.Interval, float64, error) {
	if policy == ProgressAnyAvailable && len(s.members) > 1 {
		return anyAvailableInterval(t.Effort, s, candidate)
	}
	tStart, err := s.union.NextWorking(candidate)
	if err != nil {
		return resource.Interval{}, 0, err
	}
	span := t.Effort / s.rate
	tEnd, err := s.union.Advance(tStart, span)
	if err != nil {
		return resource.Interval{}, 0, err
	}
	return resource.Interval{Start: tStart, End: tEnd}, span, nil
}

// anyAvailableInterval walks days letting whichever assignees are working
// contribute their focus rate. Days where nobody works are skipped
// without consuming effort.
func anyAvailableInterval(effort float64, s taskSetup, candidate calendar.Instant) (resource.Interval, float64, error) {
	dayRate := func(d time.Time) float64 {
		sum := 0.0
		for i, c := range s.cals {
			if c.IsWorking(d) {
				sum += s.rates[i]
			}
		}
		return sum
	}

	day, frac := calendar.DayOf(candidate.Day), candidate.Frac
	if frac >= 1-effortEps {
		day = day.AddDate(0, 0, 1)
		frac = 0
	}
	skipped := 0
	for dayRate(day) == 0 {
		day = day.AddDate(0, 0, 1)
		frac = 0
		if skipped++; skipped > maxDeadDays {
			return resource.Interval{}, 0, fmt.Errorf("no assignee availability within %d days of %s", maxDeadDays, candidate)
		}
	}
	tStart := calendar.Instant{Day: day, Frac: frac}
	if effort <= effortEps {
		return resource.Interval{Start: tStart, End: tStart}, 0, nil
	}

	remaining := effort
	span := 0.0
	cur := tStart
	for {
		r := dayRate(cur.Day)
		if r == 0 {
			cur = calendar.Instant{Day: cur.Day.AddDate(0, 0, 1)}
			if skipped++; skipped > maxDeadDays {
				return resource.Interval{}, 0, fmt.Errorf("no assignee availability within %d days of %s", maxDeadDays, candidate)
			}
			continue
		}
		availFrac := 1 - cur.Frac
		capacity := r * availFrac
		if remaining <= capacity+effortEps {
			f := remaining / r
			if cur.Frac+f > 1 {
				f = 1 - cur.Frac
			}
			span += f
			end := calendar.Instant{Day: cur.Day, Frac: cur.Frac + f}
			return resource.Interval{Start: tStart, End: end}, span, nil
		}
		remaining -= capacity
		span += availFrac
		cur = calendar.Instant{Day: cur.Day.AddDate(0, 0, 1)}
	}
}

const maxDeadDays = 366 * 50

// pauseDays lists the dates inside the task's occupied range on which no
// progress was made: under the strict policy any date not working for all
// assignees, under the lenient one only dates no assignee works.
func pauseDays(iv resource.Interval, s taskSetup, policy ProgressPolicy) []time.Time {
	if !iv.Start.Before(iv.End) {
		return nil
	}
	var out []time.Time
	for d := iv.Start.Date(); !d.After(iv.End.Date()); d = d.AddDate(0, 0, 1) {
		paused := false
		if policy == ProgressAnyAvailable && len(s.members) > 1 {
			paused = true
			for _, c := range s.cals {
				if c.IsWorking(d) {
					paused = false
					break
				}
			}
		} else {
			paused = !s.union.IsWorking(d)
		}
		if paused {
			out = append(out, d)
		}
	}
	return out
}

// markCriticalPath walks backward from the latest-finishing task, at each
// step to the predecessor whose finish equals the current task's ready
// instant, i.e. the predecessor that actually gated the start. Ties are
// broken by ascending task id.
func markCriticalPath(s *Schedule, g *graph.Graph, start calendar.Instant, readies, finishes map[string]calendar.Instant) {
	if len(s.Tasks) == 0 {
		return
	}

	last := ""
	latest := start
	for _, id := range g.IDs { // ascending: first of equals wins
		if f := finishes[id]; last == "" || latest.Before(f) {
			last, latest = id, f
		}
	}

	var chain []string
	for cur := last; cur != ""; {
		chain = append(chain, cur)
		ready := readies[cur]
		next := ""
		for _, pred := range g.RevAdj[cur] { // sorted ascending
			if finishes[pred].Equal(ready) {
				next = pred
				break
			}
		}
		cur = next
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	s.CriticalPath = chain

	critical := make(map[string]bool, len(chain))
	for _, id := range chain {
		critical[id] = true
	}
	for i := range s.Tasks {
		s.Tasks[i].Critical = critical[s.Tasks[i].ID]
	}
}
