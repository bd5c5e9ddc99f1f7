// Package schedule implements the scheduling pass: it walks the dependency
// graph in topological order, places each task at its earliest feasible
// start under calendar and resource constraints, and produces the
// immutable schedule handed to renderers.
package schedule

import (
	"time"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/resource"
)

// ScheduledTask is the computed placement of one task. Produced exactly
// once per task; immutable afterwards.
type ScheduledTask struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Assignees []string         `json:"assignees"`
	After     []string         `json:"after,omitempty"`
	Start     calendar.Instant `json:"start"`
	Finish    calendar.Instant `json:"finish"`
	Effort    float64          `json:"effort"`
	Span      float64          `json:"span"` // elapsed working-day units occupied
	PauseDays []time.Time      `json:"pause_days,omitempty"`
	Critical  bool             `json:"critical"`
}

// Schedule is the full computed result of one run and the only surface
// exposed to the external rendering collaborator. Tasks are in
// topological order; everything is a copy, so renderers never touch the
// scheduler's ledgers or calendars.
type Schedule struct {
	Project        string                         `json:"project"`
	Policy         string                         `json:"policy"`
	Start          calendar.Instant               `json:"start"`
	Finish         calendar.Instant               `json:"finish"`
	ClosedWeekdays []time.Weekday                 `json:"closed_weekdays"`
	Tasks          []ScheduledTask                `json:"tasks"`
	CriticalPath   []string                       `json:"critical_path"`
	Utilization    map[string][]resource.Interval `json:"utilization"`
	Allocations    map[string][]DayAllocation     `json:"allocations"`
}

// Task returns the scheduled task with the given id.
func (s *Schedule) Task(id string) (ScheduledTask, bool) {
	for _, t := range s.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return ScheduledTask{}, false
}
