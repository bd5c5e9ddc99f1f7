package schedule

import (
	"fmt"
	"time"
)

// ProgressPolicy decides how a multi-assignee task burns effort on days
// when only some assignees are working. This is an explicit policy choice,
// not something inferred from the input.
type ProgressPolicy int

const (
	// ProgressAllTogether (default): effort burns only on days every
	// assignee is working, at the summed focus rate.
	ProgressAllTogether ProgressPolicy = iota
	// ProgressAnyAvailable: each day contributes the summed focus rates
	// of whichever assignees are working that day.
	ProgressAnyAvailable
)

func (p ProgressPolicy) String() string {
	switch p {
	case ProgressAllTogether:
		return "all-together"
	case ProgressAnyAvailable:
		return "any-available"
	}
	return fmt.Sprintf("ProgressPolicy(%d)", int(p))
}

// ParseProgress maps a CLI/config string onto a ProgressPolicy.
func ParseProgress(s string) (ProgressPolicy, error) {
	switch s {
	case "", "all-together":
		return ProgressAllTogether, nil
	case "any-available":
		return ProgressAnyAvailable, nil
	}
	return 0, fmt.Errorf("unknown progress policy %q (want all-together or any-available)", s)
}

// Options configures one scheduling run. Never process-global: each run
// owns its options, ledgers and output.
type Options struct {
	// Start overrides the project's declared start date when non-zero.
	Start time.Time
	// Progress is the multi-assignee progress policy.
	Progress ProgressPolicy
}
