package graph

import (
	"fmt"
	"strings"
)

// CycleError reports that the dependency edges are not acyclic. Cycle
// holds one offending cycle as a task-id path in edge direction.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}
