package calendar

import (
	"fmt"
	"time"
)

// instantEps absorbs float error from repeated fractional-day arithmetic.
const instantEps = 1e-9

const dateLayout = "2006-01-02"

// Instant is a point in working time: a civil date plus the fraction of
// that day's working capacity already consumed. Frac 0 is the start of the
// working day, Frac 1 the end. Instants are totally ordered.
type Instant struct {
	Day  time.Time
	Frac float64
}

// At returns the instant at the start of the given date's working day.
func At(day time.Time) Instant {
	return Instant{Day: DayOf(day)}
}

// Before reports whether i is strictly earlier than o (epsilon-tolerant).
func (i Instant) Before(o Instant) bool {
	if !i.Day.Equal(o.Day) {
		return i.Day.Before(o.Day)
	}
	return i.Frac < o.Frac-instantEps
}

// After reports whether i is strictly later than o.
func (i Instant) After(o Instant) bool { return o.Before(i) }

// Equal reports whether the two instants coincide within epsilon.
func (i Instant) Equal(o Instant) bool { return !i.Before(o) && !o.Before(i) }

// Max returns the later of the two instants.
func (i Instant) Max(o Instant) Instant {
	if i.Before(o) {
		return o
	}
	return i
}

// Date returns the instant's civil date.
func (i Instant) Date() time.Time { return DayOf(i.Day) }

func (i Instant) String() string {
	return fmt.Sprintf("%s+%.4f", i.Day.Format(dateLayout), i.Frac)
}

// MarshalJSON emits the fixed "2006-01-02+0.0000" form so serialized
// schedules are byte-identical across runs.
func (i Instant) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", i.String())), nil
}
