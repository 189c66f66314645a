package date

import (
	"fmt"
	"time"
)

// Range represents a range of dates, boundaries included.
//
// A zero From or To leaves that side of the range open.
type Range struct{ From, To Date }

// NewRange returns the period p containing d.
func NewRange(d Date, period Period) Range {
	return Range{From: d.StartOf(period), To: d.EndOf(period)}
}

// Contains reports whether date is in the range, boundaries included.
func (r Range) Contains(date Date) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

// ContainsTime reports whether the day of t is included in the range.
func (r Range) ContainsTime(t time.Time) bool { return r.Contains(FromTime(t)) }

// IsOpen reports whether the range has no boundary at all.
func (r Range) IsOpen() bool { return r.From.IsZero() && r.To.IsZero() }

// Valid reports an error when both boundaries are set and From is after To.
func (r Range) Valid() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("range start %s is after its end %s", r.From, r.To)
	}
	return nil
}

// Period returns the calendar period the range is exactly aligned on, if any.
// A single day is Daily.
func (r Range) Period() (Period, bool) {
	if r.From.IsZero() || r.To.IsZero() {
		return Daily, false
	}
	for _, p := range []Period{Daily, Weekly, Monthly, Quarterly, Yearly} {
		if r.From.StartOf(p) == r.From && r.From.EndOf(p) == r.To {
			return p, true
		}
	}
	return Daily, false
}

// Identifier returns a short name of the range: "2025-W37", "2025-09",
// "2025-Q3" or "2025" for aligned ranges, both boundaries otherwise.
func (r Range) Identifier() string {
	p, ok := r.Period()
	if !ok {
		return fmt.Sprintf("%s_%s", r.From, r.To)
	}

	switch p {
	case Weekly:
		year, week := r.From.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case Monthly:
		return r.From.Format("2006-01")
	case Quarterly:
		return fmt.Sprintf("%d-Q%d", r.From.Year(), (r.From.Month()-1)/3+1)
	case Yearly:
		return r.From.Format("2006")
	default:
		return r.From.String()
	}
}
