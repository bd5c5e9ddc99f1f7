// Package render turns a computed schedule into consumable output: a
// PlantUML Gantt script, a colored terminal table, or JSON. It works only
// off the schedule export surface.
package render

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/planloom/planloom/internal/loader"
	"github.com/planloom/planloom/internal/schedule"
)

const dateLayout = "2006-01-02"

// Script generates a PlantUML Gantt script for the schedule, including a
// custom per-member utilization footbox colored via the config.
func Script(cfg loader.Config, s *schedule.Schedule) string {
	var b strings.Builder
	b.WriteString("@startgantt\n")
	fmt.Fprintf(&b, "title %s\n", s.Project)

	for _, wd := range s.ClosedWeekdays {
		fmt.Fprintf(&b, "%s are closed\n", strings.ToLower(wd.String()))
	}

	members := sortedMembers(s)

	// Member absences (personal holidays and other duties).
	for _, m := range members {
		for _, a := range s.Allocations[m] {
			if a.Kind == schedule.KindHoliday || a.Kind == schedule.KindOtherDuty {
				fmt.Fprintf(&b, "{%s} is off on %s\n", m, a.Day.Format(dateLayout))
			}
		}
	}

	// The default footbox is replaced by the utilization rows below.
	b.WriteString("hide ressources footbox\n")

	for _, d := range publicHolidays(s, members) {
		fmt.Fprintf(&b, "%s is colored in %s\n", d.Format(dateLayout), cfg.Backend.Colors.PubHolidays)
	}

	fmt.Fprintf(&b, "\nProject starts %s\n\n", s.Start.Date().Format(dateLayout))

	for _, t := range s.Tasks {
		var owners strings.Builder
		for _, m := range t.Assignees {
			fmt.Fprintf(&owners, "{%s}", m)
		}
		fmt.Fprintf(&b, "[%s] as [%s] on %s starts %s\n",
			t.Name, t.ID, owners.String(), t.Start.Date().Format(dateLayout))
		fmt.Fprintf(&b, "[%s] ends at %s\n", t.ID, t.Finish.Date().Format(dateLayout))
		if t.Critical {
			fmt.Fprintf(&b, "[%s] is colored in Crimson\n", t.ID)
		}
		for _, p := range t.PauseDays {
			fmt.Fprintf(&b, "[%s] pauses on %s\n", t.ID, p.Format(dateLayout))
		}
	}
	b.WriteString("\n")

	for _, t := range s.Tasks {
		for _, after := range t.After {
			fmt.Fprintf(&b, "[%s] -> [%s]\n", after, t.ID)
		}
	}

	// Utilization footbox: one row of single-day cells per member.
	for _, m := range members {
		fmt.Fprintf(&b, "-- %s --\n", m)
		prev := ""
		for i, a := range s.Allocations[m] {
			cell := fmt.Sprintf("%s_%d", m, i)
			fmt.Fprintf(&b, "[.] as [%s] starts %s and requires 1 days\n", cell, a.Day.Format(dateLayout))
			fmt.Fprintf(&b, "[%s] is colored in %s\n", cell, kindColor(cfg.Backend.Colors, a.Kind))
			if prev != "" {
				fmt.Fprintf(&b, "[%s] displays on same row as [%s]\n", cell, prev)
			}
			prev = cell
		}
	}

	b.WriteString("@endgantt\n")
	return b.String()
}

func sortedMembers(s *schedule.Schedule) []string {
	members := make([]string, 0, len(s.Allocations))
	for m := range s.Allocations {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// publicHolidays collects the base-calendar holiday dates seen by any
// member inside the project range, ascending and unique.
func publicHolidays(s *schedule.Schedule, members []string) []time.Time {
	seen := make(map[int64]time.Time)
	for _, m := range members {
		for _, a := range s.Allocations[m] {
			if a.Kind == schedule.KindPublicHoliday {
				seen[a.Day.Unix()] = a.Day
			}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func kindColor(c loader.Colors, k schedule.DayKind) string {
	switch k {
	case schedule.KindPublicHoliday, schedule.KindClosed:
		return c.PubHolidays
	case schedule.KindHoliday:
		return c.Holidays
	case schedule.KindOtherDuty:
		return c.OtherDuties
	case schedule.KindOverloaded:
		return c.Overloaded
	case schedule.KindUnderloaded:
		return c.Underloaded
	case schedule.KindFine:
		return c.Fine
	}
	return c.Unassigned
}

// WriteScript writes the script next to where the diagram should land.
func WriteScript(path, script string) error {
	return os.WriteFile(path, []byte(script), 0o644)
}

// Invoke runs the configured local plantuml command on a script file.
func Invoke(cfg loader.PlantUMLConfig, scriptPath string) error {
	cmd := cfg.LocalCmd
	if cmd == "" {
		cmd = "plantuml"
	}
	out, err := exec.Command(cmd, scriptPath).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", cmd, scriptPath, err, string(out))
	}
	return nil
}
