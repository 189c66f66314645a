package lotbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/lotbook/date"
)

// ErrInvalidFilter is returned, wrapped in a *FilterError, when filter
// parameters are inconsistent. It is reported before any ledger work begins.
var ErrInvalidFilter = errors.New("invalid filter")

// FilterError describes the filter field that failed validation.
type FilterError struct {
	Field  string
	Reason string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Reason)
}

func (e *FilterError) Unwrap() error { return ErrInvalidFilter }

// Filter selects the transactions taking part in a report.
//
// String fields left empty, or set to "all" (or the original store's "todos",
// "todas"), do not restrict anything. Dates are inclusive, a zero date leaves
// that side of the range open.
type Filter struct {
	From          date.Date `json:"dateFrom"`
	To            date.Date `json:"dateTo"`
	Owner         string    `json:"ownerId,omitempty"`
	Symbol        string    `json:"symbol,omitempty"`
	Currency      string    `json:"currency,omitempty"`
	AssetType     string    `json:"assetType,omitempty"`
	Operation     string    `json:"operationType,omitempty"`
	IncludeVoided bool      `json:"includeVoided"`
}

// Range returns the date range of the filter.
func (f Filter) Range() date.Range { return date.Range{From: f.From, To: f.To} }

// Validate checks the filter for inconsistent combinations.
func (f Filter) Validate() error {
	if err := f.Range().Valid(); err != nil {
		return &FilterError{Field: "dateTo", Reason: err.Error()}
	}
	if !isAll(f.Operation) {
		if _, err := ParseOperationType(f.Operation); err != nil {
			return &FilterError{Field: "operationType", Reason: err.Error()}
		}
	}
	return nil
}

// Match reports whether tx passes every restriction of the filter. The voided
// marker is not considered here.
func (f Filter) Match(tx Transaction) bool {
	if !f.Range().ContainsTime(tx.OccurredAt) {
		return false
	}
	if !isAll(f.Owner) && tx.Owner != f.Owner {
		return false
	}
	if !isAll(f.Symbol) && tx.Symbol != strings.ToUpper(strings.TrimSpace(f.Symbol)) {
		return false
	}
	if !isAll(f.Currency) && tx.Currency != strings.ToUpper(strings.TrimSpace(f.Currency)) {
		return false
	}
	if !isAll(f.AssetType) && !strings.EqualFold(tx.AssetType, f.AssetType) {
		return false
	}
	if !isAll(f.Operation) {
		op, err := ParseOperationType(f.Operation)
		if err != nil || tx.Operation != op {
			return false
		}
	}
	return true
}

// isAll reports whether a filter value means "no restriction".
func isAll(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "all", "todos", "todas":
		return true
	}
	return false
}
