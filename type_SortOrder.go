package lotbook

import "fmt"

// SortOrder defines how the per-asset rows of a Report are ordered.
type SortOrder int

const (
	// Discovery keeps assets in the order their first sale was matched.
	Discovery SortOrder = iota
	// ByPnlPct sorts by realized return percentage, best performers first.
	ByPnlPct
	// ByNetPnl sorts by realized net gain, largest first.
	ByNetPnl
	// ByInvested sorts by realized cost basis, largest first.
	ByInvested
	// BySymbol sorts alphabetically by symbol then currency.
	BySymbol
)

func (s SortOrder) String() string {
	switch s {
	case Discovery:
		return "discovery"
	case ByPnlPct:
		return "pnl-pct"
	case ByNetPnl:
		return "pnl"
	case ByInvested:
		return "invested"
	case BySymbol:
		return "symbol"
	default:
		return "unknown"
	}
}

// ParseSortOrder parses a string into a SortOrder. The empty string is Discovery.
func ParseSortOrder(s string) (SortOrder, error) {
	switch s {
	case "", "discovery":
		return Discovery, nil
	case "pnl-pct", "top":
		return ByPnlPct, nil
	case "pnl":
		return ByNetPnl, nil
	case "invested":
		return ByInvested, nil
	case "symbol":
		return BySymbol, nil
	default:
		return 0, fmt.Errorf("unknown sort order: %q", s)
	}
}

// SortOrders lists every order accepted by ParseSortOrder, in declaration order.
func SortOrders() []string {
	return []string{Discovery.String(), ByPnlPct.String(), ByNetPnl.String(), ByInvested.String(), BySymbol.String()}
}
