package date

import (
	"fmt"
	"strings"
)

// Period is a calendar period a range can be aligned on.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

// String returns the name accepted by the -period flag.
func (p Period) String() string {
	switch p {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	case Yearly:
		return "year"
	default:
		return fmt.Sprintf("period(%d)", int(p))
	}
}

// Periods returns the names of every period, shortest first.
func Periods() []string {
	return []string{Daily.String(), Weekly.String(), Monthly.String(), Quarterly.String(), Yearly.String()}
}

// ParsePeriod parses a period name, "month" and "monthly" alike.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "day":
		return Daily, nil
	case "weekly", "week":
		return Weekly, nil
	case "monthly", "month":
		return Monthly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "yearly", "year":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q, want one of %s", s, strings.Join(Periods(), ", "))
	}
}
