package resource

import (
	"errors"
	"testing"
	"time"

	"github.com/planloom/planloom/internal/calendar"
	"github.com/planloom/planloom/internal/project"
)

func day(d int) calendar.Instant {
	return calendar.At(calendar.Day(2024, time.January, d))
}

func at(d int, frac float64) calendar.Instant {
	return calendar.Instant{Day: calendar.Day(2024, time.January, d), Frac: frac}
}

func reserve(t *testing.T, b *Book, member string, iv Interval) {
	t.Helper()
	if err := b.Reserve(member, iv); err != nil {
		t.Fatalf("reserve %s for %s: %v", iv, member, err)
	}
}

func TestEarliestAvailable_EmptyLedger(t *testing.T) {
	b := NewBook()
	if got := b.EarliestAvailable("ann", day(8)); !got.Equal(day(8)) {
		t.Errorf("expected notBefore back, got %s", got)
	}
}

func TestEarliestAvailable_SkipsClaims(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(8), End: at(9, 1)})
	reserve(t, b, "ann", Interval{Start: day(11), End: at(12, 1)})

	// Inside the first claim: pushed to its end.
	if got := b.EarliestAvailable("ann", at(8, 0.5)); !got.Equal(at(9, 1)) {
		t.Errorf("expected end of first claim, got %s", got)
	}
	// In the gap between claims: free immediately.
	if got := b.EarliestAvailable("ann", day(10)); !got.Equal(day(10)) {
		t.Errorf("expected gap instant back, got %s", got)
	}
	// Past everything.
	if got := b.EarliestAvailable("ann", day(20)); !got.Equal(day(20)) {
		t.Errorf("expected late instant back, got %s", got)
	}
}

func TestEarliestAvailable_ChainsAdjacentClaims(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(8), End: day(10)})
	reserve(t, b, "ann", Interval{Start: day(10), End: day(12)})

	if got := b.EarliestAvailable("ann", day(8)); !got.Equal(day(12)) {
		t.Errorf("expected to clear both claims, got %s", got)
	}
}

func TestReserve_ConflictIsInternalError(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(8), End: day(10)})

	err := b.Reserve("ann", Interval{Start: day(9), End: day(11)})
	if err == nil {
		t.Fatal("expected conflict error")
	}
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConflictError, got %T: %v", err, err)
	}
	if cerr.Member != "ann" {
		t.Errorf("unexpected member %q", cerr.Member)
	}
}

func TestReserve_OtherMemberUnaffected(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(8), End: day(10)})
	reserve(t, b, "bob", Interval{Start: day(8), End: day(10)})

	if got := b.EarliestAvailable("bob", day(8)); !got.Equal(day(10)) {
		t.Errorf("expected bob busy too, got %s", got)
	}
}

func TestReserve_ZeroLengthNeverConflicts(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(8), End: day(10)})
	reserve(t, b, "ann", Interval{Start: day(9), End: day(9)})
	reserve(t, b, "ann", Interval{Start: day(10), End: day(12)})
}

func TestNextConflict_FindsFirstOverlap(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(10), End: day(12)})
	reserve(t, b, "ann", Interval{Start: day(15), End: day(16)})

	have, ok := b.NextConflict("ann", Interval{Start: day(8), End: day(11)})
	if !ok {
		t.Fatal("expected a conflict")
	}
	if !have.Start.Equal(day(10)) {
		t.Errorf("expected conflict with claim starting Jan 10, got %s", have)
	}

	if _, ok := b.NextConflict("ann", Interval{Start: day(12), End: day(15)}); ok {
		t.Error("expected gap interval to be conflict-free")
	}
}

func TestIntervals_SortedCopies(t *testing.T) {
	b := NewBook()
	reserve(t, b, "ann", Interval{Start: day(15), End: day(16)})
	reserve(t, b, "ann", Interval{Start: day(8), End: day(9)})

	ivs := b.Intervals("ann")
	if len(ivs) != 2 || !ivs[0].Start.Equal(day(8)) {
		t.Fatalf("expected sorted ledger, got %v", ivs)
	}
	ivs[0].Start = day(20) // mutating the copy must not touch the ledger
	if got := b.Intervals("ann"); !got[0].Start.Equal(day(8)) {
		t.Error("Intervals returned a live reference to the ledger")
	}
}

func TestEffectiveRate_AssignmentOverride(t *testing.T) {
	m := &project.TeamMember{Name: "ann", FocusFactor: 0.8}

	if got := EffectiveRate(m, project.Assignment{Member: "ann"}); got != 0.8 {
		t.Errorf("expected member rate 0.8, got %g", got)
	}
	if got := EffectiveRate(m, project.Assignment{Member: "ann", Focus: 0.5}); got != 0.5 {
		t.Errorf("expected override 0.5, got %g", got)
	}
}
