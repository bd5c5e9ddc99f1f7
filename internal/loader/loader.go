// Package loader reads project and calendar definitions from disk and
// resolves them into the scheduler's input model. Projects are TOML (the
// native format) or JSON; calendars are TOML files referenced per member.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/project"
)

const dateLayout = "2006-01-02"

type tomlProject struct {
	ProjectName string           `toml:"project_name"`
	StartDate   string           `toml:"start_date"`
	Team        []tomlMember     `toml:"team"`
	Tasks       []tomlTask       `toml:"tasks"`
	Assignments []tomlAssignment `toml:"assignments"`
}

type tomlMember struct {
	Name         string  `toml:"name"`
	BaseCalendar string  `toml:"base_calendar"`
	FocusFactor  float64 `toml:"focus_factor"`
	Holidays     string  `toml:"holidays"`
	OtherDuties  string  `toml:"other_duties"`
}

type tomlTask struct {
	ID       string  `toml:"id"`
	Name     string  `toml:"name"`
	Estimate float64 `toml:"estimate"`
	After    string  `toml:"after"`
}

type tomlAssignment struct {
	Task        string  `toml:"task"`
	Owner       string  `toml:"owner"`
	FocusFactor float64 `toml:"focus_factor"`
}

type tomlCalendar struct {
	ClosedDays      []string      `toml:"closed_days"`
	WorkingHrsInDay int           `toml:"working_hrs_in_day"`
	PublicHolidays  []tomlHoliday `toml:"public_holidays"`
}

type tomlHoliday struct {
	Date string `toml:"date"`
	Name string `toml:"name"`
}

// ParseDate parses a "YYYY-MM-DD" date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return calendar.DayOf(d), nil
}

// ParseDates expands a multi-date entry: comma-separated single dates and
// inclusive "from:to" ranges, e.g. "2024-01-01, 2024-07-01:2024-07-14".
func ParseDates(s string) ([]time.Time, error) {
	var out []time.Time
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, ":"); ok {
			start, err := ParseDate(from)
			if err != nil {
				return nil, err
			}
			end, err := ParseDate(to)
			if err != nil {
				return nil, err
			}
			if end.Before(start) {
				return nil, fmt.Errorf("date range %q ends before it starts", part)
			}
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				out = append(out, d)
			}
			continue
		}
		d, err := ParseDate(part)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// LoadCalendar reads a business-day calendar from a TOML file.
func LoadCalendar(path string) (*calendar.Calendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tc tomlCalendar
	if err := toml.Unmarshal(raw, &tc); err != nil {
		return nil, fmt.Errorf("parse calendar %s: %w", path, err)
	}
	var closed []time.Weekday
	for _, cd := range tc.ClosedDays {
		wd, err := parseWeekday(cd)
		if err != nil {
			return nil, fmt.Errorf("calendar %s: %w", path, err)
		}
		closed = append(closed, wd)
	}
	var holidays []time.Time
	for _, h := range tc.PublicHolidays {
		dates, err := ParseDates(h.Date)
		if err != nil {
			return nil, fmt.Errorf("calendar %s, holiday %q: %w", path, h.Name, err)
		}
		holidays = append(holidays, dates...)
	}
	return calendar.New(closed, holidays), nil
}

// LoadProject reads a project definition (TOML, or JSON when the file
// ends in .json) and resolves member base calendars relative to the
// project file's directory.
func LoadProject(path string) (*project.Project, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tp tomlProject
	if strings.EqualFold(filepath.Ext(path), ".json") {
		tp, err = decodeJSONProject(raw)
	} else {
		err = toml.Unmarshal(raw, &tp)
	}
	if err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	return resolve(&tp, filepath.Dir(path))
}

func resolve(tp *tomlProject, baseDir string) (*project.Project, error) {
	start, err := ParseDate(tp.StartDate)
	if err != nil {
		return nil, fmt.Errorf("start_date: %w", err)
	}

	p := &project.Project{
		Name:  tp.ProjectName,
		Start: start,
	}

	// Base calendars are cached per file so members sharing one share the
	// parsed instance.
	cals := make(map[string]*calendar.Calendar)
	for _, tm := range tp.Team {
		base := calendar.Default()
		if tm.BaseCalendar != "" {
			if cached, ok := cals[tm.BaseCalendar]; ok {
				base = cached
			} else {
				base, err = LoadCalendar(filepath.Join(baseDir, tm.BaseCalendar))
				if err != nil {
					return nil, fmt.Errorf("member %q: %w", tm.Name, err)
				}
				cals[tm.BaseCalendar] = base
			}
		}
		holidays, err := ParseDates(tm.Holidays)
		if err != nil {
			return nil, fmt.Errorf("member %q holidays: %w", tm.Name, err)
		}
		duties, err := ParseDates(tm.OtherDuties)
		if err != nil {
			return nil, fmt.Errorf("member %q other_duties: %w", tm.Name, err)
		}
		p.Members = append(p.Members, project.TeamMember{
			Name:        tm.Name,
			FocusFactor: tm.FocusFactor,
			Base:        base,
			Holidays:    holidays,
			OtherDuties: duties,
		})
	}

	byTask := make(map[string][]project.Assignment)
	for _, a := range tp.Assignments {
		byTask[a.Task] = append(byTask[a.Task], project.Assignment{
			Member: a.Owner,
			Focus:  a.FocusFactor,
		})
	}

	known := make(map[string]bool, len(tp.Tasks))
	for _, tt := range tp.Tasks {
		if known[tt.ID] {
			return nil, fmt.Errorf("duplicate task id %q", tt.ID)
		}
		known[tt.ID] = true
		var after []string
		for _, dep := range strings.Split(tt.After, ",") {
			if dep = strings.TrimSpace(dep); dep != "" {
				after = append(after, dep)
			}
		}
		p.Tasks = append(p.Tasks, project.Task{
			ID:        tt.ID,
			Name:      tt.Name,
			Effort:    tt.Estimate,
			After:     after,
			Assignees: byTask[tt.ID],
		})
	}

	for _, a := range tp.Assignments {
		if !known[a.Task] {
			return nil, fmt.Errorf("assignment of %q references unknown task %q", a.Owner, a.Task)
		}
	}
	return p, nil
}
