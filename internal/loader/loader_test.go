package loader

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planloom/planloom/internal/calendar"
)

const calendarTOML = `closed_days = ["Saturday", "Sunday"]
working_hrs_in_day = 8

[[public_holidays]]
date = "2024-01-01"
name = "New Year"

[[public_holidays]]
date = "2024-12-24:2024-12-26"
name = "Christmas"
`

const projectTOML = `project_name = "Web notes assistant"
start_date = "2024-01-08"

[[team]]
name = "ann"
base_calendar = "calendar.toml"
focus_factor = 0.7
holidays = "2024-02-01, 2024-07-01:2024-07-03"
other_duties = "2024-01-15"

[[team]]
name = "bob"
base_calendar = "calendar.toml"
focus_factor = 1.0
holidays = ""
other_duties = ""

[[tasks]]
id = "design"
name = "Design"
estimate = 3.0
after = ""

[[tasks]]
id = "impl"
name = "Implementation"
estimate = 10.0
after = "design"

[[assignments]]
task = "design"
owner = "ann"

[[assignments]]
task = "impl"
owner = "bob"
focus_factor = 0.8
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDates_SinglesAndRanges(t *testing.T) {
	dates, err := ParseDates("2024-01-01, 2024-07-01:2024-07-03")
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		calendar.Day(2024, time.January, 1),
		calendar.Day(2024, time.July, 1),
		calendar.Day(2024, time.July, 2),
		calendar.Day(2024, time.July, 3),
	}, dates)
}

func TestParseDates_Empty(t *testing.T) {
	dates, err := ParseDates("")
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestParseDates_BadInput(t *testing.T) {
	_, err := ParseDates("2024-13-99")
	assert.Error(t, err)

	_, err = ParseDates("2024-07-03:2024-07-01")
	assert.ErrorContains(t, err, "ends before it starts")
}

func TestLoadCalendar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calendar.toml", calendarTOML)

	cal, err := LoadCalendar(path)
	require.NoError(t, err)

	assert.False(t, cal.IsWorking(calendar.Day(2024, time.January, 1)))  // holiday
	assert.False(t, cal.IsWorking(calendar.Day(2024, time.December, 25))) // in range
	assert.False(t, cal.IsWorking(calendar.Day(2024, time.January, 6)))  // Saturday
	assert.True(t, cal.IsWorking(calendar.Day(2024, time.January, 2)))
	assert.Len(t, cal.Holidays(), 4)
}

func TestLoadCalendar_BadWeekday(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "calendar.toml", `closed_days = ["Caturday"]`)

	_, err := LoadCalendar(path)
	assert.ErrorContains(t, err, "unknown weekday")
}

func TestLoadProject_TOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calendar.toml", calendarTOML)
	path := writeFile(t, dir, "project.toml", projectTOML)

	p, err := LoadProject(path)
	require.NoError(t, err)

	assert.Equal(t, "Web notes assistant", p.Name)
	assert.Equal(t, calendar.Day(2024, time.January, 8), p.Start)
	require.Len(t, p.Members, 2)

	ann := p.Members[0]
	assert.Equal(t, 0.7, ann.FocusFactor)
	assert.Len(t, ann.Holidays, 4) // one date plus a 3-day range
	assert.Len(t, ann.OtherDuties, 1)
	require.NotNil(t, ann.Base)
	assert.False(t, ann.Base.IsWorking(calendar.Day(2024, time.January, 1)))

	require.Len(t, p.Tasks, 2)
	impl := p.Tasks[1]
	assert.Equal(t, []string{"design"}, impl.After)
	assert.Equal(t, 10.0, impl.Effort)
	require.Len(t, impl.Assignees, 1)
	assert.Equal(t, "bob", impl.Assignees[0].Member)
	assert.Equal(t, 0.8, impl.Assignees[0].Focus)

	require.NoError(t, p.Validate())
}

func TestLoadProject_SharedCalendarInstance(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calendar.toml", calendarTOML)
	path := writeFile(t, dir, "project.toml", projectTOML)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Same(t, p.Members[0].Base, p.Members[1].Base)
}

func TestLoadProject_JSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "calendar.toml", calendarTOML)
	path := writeFile(t, dir, "project.json", `{
		"project_name": "JSON project",
		"start_date": "2024-01-08",
		"team": [
			{"name": "ann", "base_calendar": "calendar.toml", "focus_factor": 1.0}
		],
		"tasks": [
			{"id": "a", "name": "A", "estimate": 2},
			{"id": "b", "name": "B", "estimate": 1, "after": "a"}
		],
		"assignments": [
			{"task": "a", "owner": "ann"},
			{"task": "b", "owner": "ann", "focus_factor": 0.5}
		]
	}`)

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "JSON project", p.Name)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, []string{"a"}, p.Tasks[1].After)
	assert.Equal(t, 0.5, p.Tasks[1].Assignees[0].Focus)
}

func TestLoadProject_JSONInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.json", `{not json`)

	_, err := LoadProject(path)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestLoadProject_AssignmentUnknownTask(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.toml", `project_name = "x"
start_date = "2024-01-08"

[[team]]
name = "ann"
focus_factor = 1.0

[[tasks]]
id = "a"
name = "A"
estimate = 1.0

[[assignments]]
task = "ghost"
owner = "ann"
`)

	_, err := LoadProject(path)
	assert.ErrorContains(t, err, `unknown task "ghost"`)
}

func TestLoadProject_DuplicateTaskID(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "project.toml", `project_name = "x"
start_date = "2024-01-08"

[[tasks]]
id = "a"
name = "A"
estimate = 1.0

[[tasks]]
id = "a"
name = "A again"
estimate = 2.0
`)

	_, err := LoadProject(path)
	assert.ErrorContains(t, err, "duplicate task id")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "plantuml", cfg.Backend.PlantUML.LocalCmd)
	assert.Equal(t, "salmon", cfg.Backend.Colors.PubHolidays)
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cfg.toml", `[backend.plantuml]
local_cmd = "/usr/bin/plantuml"

[backend.colors]
worker_fine = "green"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/plantuml", cfg.Backend.PlantUML.LocalCmd)
	assert.Equal(t, "green", cfg.Backend.Colors.Fine)
	// Untouched fields keep their defaults.
	assert.Equal(t, "salmon", cfg.Backend.Colors.PubHolidays)
}
