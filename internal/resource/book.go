// Package resource tracks each team member's committed working time as a
// ledger of non-overlapping busy intervals, built up as scheduling
// proceeds. A Book is owned by a single scheduling pass; it is never
// shared across runs.
package resource

import (
	"fmt"
	"sort"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/project"
)

// Interval is a half-open [Start, End) claim on a member's time. A
// zero-length interval (Start == End) conflicts with nothing.
type Interval struct {
	Start calendar.Instant
	End   calendar.Instant
}

// Overlaps reports whether two half-open intervals intersect.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start, iv.End)
}

// ConflictError reports a reservation overlapping an existing claim. The
// scheduler checks availability immediately before reserving, so this
// signals an algorithm bug, never bad user input.
type ConflictError struct {
	Member   string
	New      Interval
	Existing Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("internal: reservation %s for %q overlaps existing %s", e.New, e.Member, e.Existing)
}

// Book holds the busy-interval ledger of every member, each kept sorted
// by start and free of overlaps.
type Book struct {
	byMember map[string][]Interval
}

// NewBook returns an empty ledger book.
func NewBook() *Book {
	return &Book{byMember: make(map[string][]Interval)}
}

// EffectiveRate returns the focus factor in force for one assignment: the
// per-assignment override if set, else the member's own factor.
func EffectiveRate(m *project.TeamMember, a project.Assignment) float64 {
	if a.Focus != 0 {
		return a.Focus
	}
	return m.FocusFactor
}

// EarliestAvailable returns the earliest instant at or after notBefore at
// which the member has no conflicting claim. Returns notBefore itself if
// the member is already free then.
func (b *Book) EarliestAvailable(member string, notBefore calendar.Instant) calendar.Instant {
	cur := notBefore
	for _, iv := range b.byMember[member] {
		if !cur.Before(iv.End) {
			continue
		}
		if cur.Before(iv.Start) {
			break // ledger is sorted: everything later starts later still
		}
		cur = iv.End
	}
	return cur
}

// NextConflict returns the earliest existing reservation overlapping iv,
// if any. The scheduler uses it to advance past gaps too short for a
// task's full span.
func (b *Book) NextConflict(member string, iv Interval) (Interval, bool) {
	for _, have := range b.byMember[member] {
		if have.Overlaps(iv) {
			return have, true
		}
		if !have.Start.Before(iv.End) {
			break
		}
	}
	return Interval{}, false
}

// Reserve appends a claim to the member's ledger, keeping it sorted. An
// overlap with an existing claim returns ConflictError.
func (b *Book) Reserve(member string, iv Interval) error {
	if have, ok := b.NextConflict(member, iv); ok {
		return &ConflictError{Member: member, New: iv, Existing: have}
	}
	ivs := b.byMember[member]
	i := sort.Search(len(ivs), func(i int) bool { return iv.Start.Before(ivs[i].Start) })
	ivs = append(ivs, Interval{})
	copy(ivs[i+1:], ivs[i:])
	ivs[i] = iv
	b.byMember[member] = ivs
	return nil
}

// Intervals returns a copy of the member's ledger in start order.
func (b *Book) Intervals(member string) []Interval {
	ivs := b.byMember[member]
	out := make([]Interval, len(ivs))
	copy(out, ivs)
	return out
}

// Members returns the members with at least one reservation, sorted.
func (b *Book) Members() []string {
	out := make([]string, 0, len(b.byMember))
	for m := range b.byMember {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
