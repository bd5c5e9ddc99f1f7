// Package project holds the resolved input model handed to the scheduler:
// team members with calendars and focus factors, tasks with effort
// estimates, dependency edges, and assignments.
package project

import (
	"time"

	"github.com/planloom/planloom/internal/calendar"
)

// TeamMember is one schedulable person. Definitions are read-only inputs;
// the scheduler only mutates its own derived ledgers.
type TeamMember struct {
	Name        string
	FocusFactor float64 // effective fraction of a working day, in (0, 1]
	Base        *calendar.Calendar
	Holidays    []time.Time // personal leave, overlaid on Base
	OtherDuties []time.Time // recurring obligations, also non-working here
}

// EffectiveCalendar returns the member's working-time calendar: the base
// calendar with personal holidays and other duties merged in as
// non-working dates.
func (m *TeamMember) EffectiveCalendar() *calendar.Calendar {
	base := m.Base
	if base == nil {
		base = calendar.Default()
	}
	if len(m.Holidays) == 0 && len(m.OtherDuties) == 0 {
		return base
	}
	extra := make([]time.Time, 0, len(m.Holidays)+len(m.OtherDuties))
	extra = append(extra, m.Holidays...)
	extra = append(extra, m.OtherDuties...)
	return base.WithHolidays(extra)
}

// Assignment binds a task to a member, optionally overriding the member's
// focus factor for this task only.
type Assignment struct {
	Member string
	Focus  float64 // 0 means use the member's own focus factor
}

// Task is one unit of work to schedule.
type Task struct {
	ID        string
	Name      string
	Effort    float64 // ideal effort in person-days, fractional allowed
	After     []string
	Assignees []Assignment
}

// Project is the fully resolved input to a scheduling run.
type Project struct {
	Name    string
	Start   time.Time
	Members []TeamMember
	Tasks   []Task
}

// Member looks a team member up by name.
func (p *Project) Member(name string) (*TeamMember, bool) {
	for i := range p.Members {
		if p.Members[i].Name == name {
			return &p.Members[i], true
		}
	}
	return nil, false
}

// Task looks a task up by id.
func (p *Project) Task(id string) (*Task, bool) {
	for i := range p.Tasks {
		if p.Tasks[i].ID == id {
			return &p.Tasks[i], true
		}
	}
	return nil, false
}

// Validate checks the scheduling-semantic invariants that must hold before
// a pass starts: member names and task ids unique, every focus factor in
// (0, 1], every task assigned to a set of known members. Dependency edges
// are checked by the graph package. The first violation found is returned.
func (p *Project) Validate() error {
	names := make(map[string]bool, len(p.Members))
	for i := range p.Members {
		m := &p.Members[i]
		if names[m.Name] {
			return &DuplicateError{Kind: "member", ID: m.Name}
		}
		names[m.Name] = true
		if m.FocusFactor <= 0 || m.FocusFactor > 1 {
			return &FocusFactorError{Member: m.Name, Value: m.FocusFactor}
		}
	}
	ids := make(map[string]bool, len(p.Tasks))
	for i := range p.Tasks {
		t := &p.Tasks[i]
		if ids[t.ID] {
			return &DuplicateError{Kind: "task", ID: t.ID}
		}
		ids[t.ID] = true
		if len(t.Assignees) == 0 {
			return &UnassignedError{Task: t.ID}
		}
		assignees := make(map[string]bool, len(t.Assignees))
		for _, a := range t.Assignees {
			if assignees[a.Member] {
				return &DuplicateError{Kind: "assignee", ID: a.Member, Task: t.ID}
			}
			assignees[a.Member] = true
			if _, ok := p.Member(a.Member); !ok {
				return &DanglingError{Kind: "member", From: t.ID, Ref: a.Member}
			}
			if a.Focus != 0 && (a.Focus < 0 || a.Focus > 1) {
				return &FocusFactorError{Member: a.Member, Task: t.ID, Value: a.Focus}
			}
		}
	}
	return nil
}
