package loader

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// decodeJSONProject maps a JSON project definition onto the same shape the
// TOML decoder produces. Field names mirror the TOML keys.
func decodeJSONProject(raw []byte) (tomlProject, error) {
	if !gjson.ValidBytes(raw) {
		return tomlProject{}, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(raw)

	tp := tomlProject{
		ProjectName: doc.Get("project_name").String(),
		StartDate:   doc.Get("start_date").String(),
	}

	doc.Get("team").ForEach(func(_, v gjson.Result) bool {
		tp.Team = append(tp.Team, tomlMember{
			Name:         v.Get("name").String(),
			BaseCalendar: v.Get("base_calendar").String(),
			FocusFactor:  v.Get("focus_factor").Float(),
			Holidays:     v.Get("holidays").String(),
			OtherDuties:  v.Get("other_duties").String(),
		})
		return true
	})

	doc.Get("tasks").ForEach(func(_, v gjson.Result) bool {
		tp.Tasks = append(tp.Tasks, tomlTask{
			ID:       v.Get("id").String(),
			Name:     v.Get("name").String(),
			Estimate: v.Get("estimate").Float(),
			After:    v.Get("after").String(),
		})
		return true
	})

	doc.Get("assignments").ForEach(func(_, v gjson.Result) bool {
		tp.Assignments = append(tp.Assignments, tomlAssignment{
			Task:        v.Get("task").String(),
			Owner:       v.Get("owner").String(),
			FocusFactor: v.Get("focus_factor").Float(),
		})
		return true
	})

	return tp, nil
}
