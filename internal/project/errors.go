package project

import "fmt"

// DanglingError reports a dependency or assignment naming an unknown task
// or member id.
type DanglingError struct {
	Kind string // "task" or "member"
	From string // the task carrying the bad reference
	Ref  string // the unknown id
}

func (e *DanglingError) Error() string {
	return fmt.Sprintf("task %q references unknown %s %q", e.From, e.Kind, e.Ref)
}

// DuplicateError reports an id declared more than once: a member name, a
// task id, or a member assigned to the same task twice.
type DuplicateError struct {
	Kind string // "member", "task" or "assignee"
	ID   string
	Task string // set when Kind is "assignee"
}

func (e *DuplicateError) Error() string {
	if e.Kind == "assignee" {
		return fmt.Sprintf("task %q lists member %q more than once", e.Task, e.ID)
	}
	return fmt.Sprintf("duplicate %s %q", e.Kind, e.ID)
}

// UnassignedError reports a task with no assignees: nobody to do the work,
// so it can never be scheduled.
type UnassignedError struct {
	Task string
}

func (e *UnassignedError) Error() string {
	return fmt.Sprintf("task %q has no assignees", e.Task)
}

// FocusFactorError reports a focus factor outside (0, 1]. Task is empty
// when the member's own factor is at fault rather than a per-assignment
// override.
type FocusFactorError struct {
	Member string
	Task   string
	Value  float64
}

func (e *FocusFactorError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("assignment of %q to task %q has focus factor %g, want (0, 1]", e.Member, e.Task, e.Value)
	}
	return fmt.Sprintf("member %q has focus factor %g, want (0, 1]", e.Member, e.Value)
}
