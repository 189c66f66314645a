package lotbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// ARS is a helper for test to create peso money from const
func ARS(v float64) Money { return M(v, "ARS") }

// rec is a helper building a raw record for owner "alice" settled in USD.
func rec(id, op, symbol string, quantity, amount any, occurredAt string) Record {
	return Record{
		"id":            id,
		"operationType": op,
		"symbol":        symbol,
		"currency":      "USD",
		"quantity":      quantity,
		"totalAmount":   amount,
		"ownerId":       "alice",
		"occurredAt":    occurredAt,
	}
}

// with returns a copy of r with the given fields overridden.
func with(r Record, kv ...any) Record {
	c := make(Record, len(r)+len(kv)/2)
	for k, v := range r {
		c[k] = v
	}
	for i := 0; i+1 < len(kv); i += 2 {
		c[kv[i].(string)] = kv[i+1]
	}
	return c
}

// assertDecimal compares an exact decimal against its string representation.
func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	w := decimal.RequireFromString(want)
	if !assert.True(t, w.Equal(got), msgAndArgs...) {
		t.Logf("want %s, got %s", w, got)
	}
}

func mustCompute(t *testing.T, records []Record, filter Filter, opts ...Option) *Report {
	t.Helper()
	r, err := Compute(records, filter, opts...)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return r
}
