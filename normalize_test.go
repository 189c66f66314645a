package lotbook

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/etnz/lotbook/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	got, err := ParseRecord(3, Record{
		"id":            "tx-1",
		"operationType": "Buy",
		"symbol":        " aapl ",
		"currency":      "usd",
		"quantity":      json.Number("2.5"),
		"unitPrice":     "100",
		"totalAmount":   json.Number("251.25"),
		"assetType":     "Stock",
		"assetName":     "Apple Inc.",
		"ownerId":       "alice",
		"occurredAt":    "2024-05-01T10:30:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "tx-1", got.ID)
	assert.Equal(t, 3, got.Index)
	assert.Equal(t, OpBuy, got.Operation)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, "USD", got.Currency)
	assertDecimal(t, "2.5", got.Quantity.Decimal())
	assertDecimal(t, "100", got.UnitPrice.Decimal())
	assertDecimal(t, "251.25", got.Amount.Decimal())
	assertDecimal(t, "1.25", got.ImplicitFees().Decimal())
	assert.Equal(t, "Stock", got.AssetType)
	assert.Equal(t, "Apple Inc.", got.AssetName)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC), got.OccurredAt)
	assert.False(t, got.Voided)
}

func TestParseRecord_StoreNames(t *testing.T) {
	got, err := ParseRecord(0, Record{
		"id":             "abc",
		"tipoOperacion":  "venta",
		"activo":         "ggal",
		"moneda":         "ARS",
		"cantidad":       "10",
		"precioUnitario": "1.234,5",
		"totalOperacion": "12345,50",
		"tipoActivo":     "Acciones",
		"nombreActivo":   "Grupo Galicia",
		"usuarioId":      "u1",
		"fecha":          map[string]any{"seconds": json.Number("1704067200"), "nanoseconds": json.Number("0")},
		"anulada":        false,
	})
	require.NoError(t, err)

	assert.Equal(t, OpSell, got.Operation)
	assert.Equal(t, "GGAL", got.Symbol)
	assert.Equal(t, "ARS", got.Currency)
	assertDecimal(t, "12345.5", got.Amount.Decimal())
	// the unusable unit price is derived from the amount.
	assertDecimal(t, "1234.55", got.UnitPrice.Decimal())
	assert.Equal(t, "Acciones", got.AssetType)
	assert.Equal(t, "Grupo Galicia", got.AssetName)
	assert.Equal(t, "u1", got.Owner)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got.OccurredAt)
}

func TestParseRecord_AmountFromUnitPrice(t *testing.T) {
	r := rec("x", "buy", "X", 4, nil, "2024-01-01")
	delete(r, "totalAmount")
	r["unitPrice"] = 2.5
	got, err := ParseRecord(0, r)
	require.NoError(t, err)
	assertDecimal(t, "10", got.Amount.Decimal())
	assertDecimal(t, "2.5", got.UnitPrice.Decimal())
}

func TestParseRecord_Times(t *testing.T) {
	testCases := []struct {
		name  string
		value any
		want  time.Time
	}{
		{"date string", "2024-02-03", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"lenient date", "2024-2-3", time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"rfc3339 offset", "2024-02-03T10:00:00-03:00", time.Date(2024, 2, 3, 13, 0, 0, 0, time.UTC)},
		{"local timestamp", "2024-02-03 10:00:00", time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC)},
		{"unix millis", json.Number("1706918400000"), time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
		{"timestamp object", map[string]any{"_seconds": 1706918400, "_nanoseconds": 500}, time.Date(2024, 2, 3, 0, 0, 0, 500, time.UTC)},
		{"time value", time.Date(2024, 2, 3, 1, 2, 3, 0, time.UTC), time.Date(2024, 2, 3, 1, 2, 3, 0, time.UTC)},
		{"date value", date.New(2024, 2, 3), time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRecord(0, with(rec("x", "buy", "X", 1, 1, ""), "occurredAt", tc.value))
			require.NoError(t, err)
			assert.True(t, tc.want.Equal(got.OccurredAt), "want %s, got %s", tc.want, got.OccurredAt)
		})
	}
}

func TestParseRecord_Rejections(t *testing.T) {
	base := rec("x", "buy", "X", 1, 1, "2024-01-01")
	testCases := []struct {
		name   string
		record Record
		reason string
	}{
		{"unknown operation", with(base, "operationType", "gift"), ReasonOperation},
		{"missing operation", with(base, "operationType", nil), ReasonOperation},
		{"empty symbol", with(base, "symbol", "  "), ReasonSymbol},
		{"empty currency", with(base, "currency", ""), ReasonCurrency},
		{"zero quantity", with(base, "quantity", 0), ReasonQuantity},
		{"negative quantity", with(base, "quantity", "-1"), ReasonQuantity},
		{"text quantity", with(base, "quantity", "ten"), ReasonQuantity},
		{"missing quantity", with(base, "quantity", nil), ReasonQuantity},
		{"zero amount", with(base, "totalAmount", json.Number("0")), ReasonAmount},
		{"text amount", with(base, "totalAmount", "a lot"), ReasonAmount},
		{"missing amount", with(base, "totalAmount", nil), ReasonAmount},
		{"bad time", with(base, "occurredAt", "yesterday"), ReasonOccurredAt},
		{"missing time", with(base, "occurredAt", nil), ReasonOccurredAt},
		{"bool time", with(base, "occurredAt", true), ReasonOccurredAt},
		{"nan quantity", with(base, "quantity", math.NaN()), ReasonQuantity},
		{"nan float32 quantity", with(base, "quantity", float32(math.NaN())), ReasonQuantity},
		{"infinite amount", with(base, "totalAmount", math.Inf(1)), ReasonAmount},
		{"infinite unit price", with(with(base, "totalAmount", nil), "unitPrice", math.Inf(1)), ReasonAmount},
		{"infinite millis", with(base, "occurredAt", math.Inf(-1)), ReasonOccurredAt},
		{"nan timestamp seconds", with(base, "occurredAt", map[string]any{"seconds": math.NaN()}), ReasonOccurredAt},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRecord(0, tc.record)
			require.Error(t, err)
			assert.Equal(t, tc.reason, rejectionOf(0, "x", err).Reason)
		})
	}
}

func TestRecordID(t *testing.T) {
	r := with(rec("", "buy", "X", 1, 1, "2024-01-01"), "id", nil)
	first := recordID(r)
	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, recordID(with(r, "ownerId", "alice")), "same content, same id")
	assert.NotEqual(t, first, recordID(with(r, "ownerId", "bob")))
	assert.Equal(t, "given", recordID(with(r, "id", "given")))
	assert.Equal(t, "42", recordID(with(r, "id", json.Number("42"))))
}

func TestNormalize(t *testing.T) {
	records := []Record{
		rec("b1", "buy", "X", 1, 1, "2024-01-01"),
		rec("bad", "buy", "", 1, 1, "2024-01-01"),
		with(rec("v1", "buy", "X", 1, 1, "2024-01-01"), "voided", true),
		rec("other", "buy", "Y", 1, 1, "2024-01-01"),
		rec("bad-other", "buy", "Y", 0, 1, "2024-01-01"),
		with(rec("v-other", "buy", "Y", 1, 1, "2024-01-01"), "voided", true),
		rec("s1", "sell", "X", 1, 1, "2024-01-02"),
	}
	txs, rejected, err := Normalize(records, Filter{Symbol: "x"})
	require.NoError(t, err)

	var ids []string
	for _, tx := range txs {
		ids = append(ids, tx.ID)
	}
	assert.Equal(t, []string{"b1", "s1"}, ids)

	// malformed records are reported whatever the filter, voided ones only
	// when they are selected.
	require.Len(t, rejected, 3)
	assert.Equal(t, Rejection{ID: "bad", Index: 1, Reason: ReasonSymbol}, rejected[0])
	assert.Equal(t, Rejection{ID: "v1", Index: 2, Reason: ReasonVoided}, rejected[1])
	assert.Equal(t, "bad-other", rejected[2].ID)
	assert.Equal(t, ReasonQuantity, rejected[2].Reason)
	assert.Equal(t, "got 0", rejected[2].Detail)
}

func TestDecimalOf(t *testing.T) {
	testCases := []struct {
		value any
		want  string
	}{
		{json.Number("0.1"), "0.1"},
		{"1,5", "1.5"},
		{" 7 ", "7"},
		{3, "3"},
		{int64(4), "4"},
		{0.25, "0.25"},
		{decimal.RequireFromString("9.99"), "9.99"},
	}
	for _, tc := range testCases {
		got, err := decimalOf(tc.value)
		require.NoError(t, err, "%v", tc.value)
		assertDecimal(t, tc.want, got)
	}
	for _, bad := range []any{"", "abc", true, []any{1}, math.NaN(), math.Inf(1), float32(math.Inf(-1))} {
		_, err := decimalOf(bad)
		assert.Error(t, err, "%v", bad)
	}
}
