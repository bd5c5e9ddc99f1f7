package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/planloom/planloom/internal/schedule"
	"github.com/planloom/planloom/internal/ui"
)

// PrintTable writes a terminal-friendly view of the schedule: one line per
// task in topological order, critical tasks highlighted, then the overall
// finish and critical path.
func PrintTable(w io.Writer, s *schedule.Schedule) {
	fmt.Fprintf(w, "%s %s\n", ui.BoldCyan(s.Project), ui.Dim(fmt.Sprintf("(policy: %s)", s.Policy)))
	fmt.Fprintf(w, "%s %s\n\n", ui.Bold("Starts"), s.Start.Date().Format(dateLayout))

	idWidth, nameWidth := 4, 4
	for _, t := range s.Tasks {
		if len(t.ID) > idWidth {
			idWidth = len(t.ID)
		}
		if len(t.Name) > nameWidth {
			nameWidth = len(t.Name)
		}
	}

	fmt.Fprintf(w, "  %-*s  %-*s  %-10s  %-10s  %7s  %s\n",
		idWidth, "id", nameWidth, "task", "start", "finish", "span", "assignees")
	for _, t := range s.Tasks {
		marker := " "
		line := fmt.Sprintf("%-*s  %-*s  %-10s  %-10s  %6.2fd  %s",
			idWidth, t.ID, nameWidth, t.Name,
			t.Start.Date().Format(dateLayout), t.Finish.Date().Format(dateLayout),
			t.Span, strings.Join(t.Assignees, ", "))
		if t.Critical {
			marker = ui.BoldRed("*")
			line = ui.Red(line)
		}
		fmt.Fprintf(w, "%s %s", marker, line)
		if len(t.PauseDays) > 0 {
			fmt.Fprintf(w, " %s", ui.Dim(fmt.Sprintf("(%d pause days)", len(t.PauseDays))))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\n%s %s\n", ui.Bold("Finishes"), ui.Green(s.Finish.Date().Format(dateLayout)))
	if len(s.CriticalPath) > 0 {
		fmt.Fprintf(w, "%s %s\n", ui.Bold("Critical path"), ui.Red(strings.Join(s.CriticalPath, " -> ")))
	}
}
