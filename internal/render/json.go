package render

import (
	"encoding/json"
	"io"

	"github.com/planloom/planloom/internal/schedule"
)

// WriteJSON serializes the schedule for machine consumers. Map keys and
// instants marshal to fixed forms, so identical schedules produce
// identical bytes.
func WriteJSON(w io.Writer, s *schedule.Schedule) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
