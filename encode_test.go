package lotbook

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecords(t *testing.T) {
	input := `{"id":"a","quantity":0.1,"totalAmount":12.345}

  {"id":"b","fecha":{"seconds":1704067200}}
`
	records, err := DecodeRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, json.Number("0.1"), records[0]["quantity"])
	assert.Equal(t, json.Number("12.345"), records[0]["totalAmount"])
	assert.Equal(t, "b", records[1]["id"])
}

func TestDecodeRecords_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"broken json", "{\"id\":\"a\"}\n{\"id\":", "line 2"},
		{"not an object", "{}\n[1,2]\n", "line 2"},
		{"null", "\n\nnull\n", "line 3"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRecords(strings.NewReader(tc.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestEncodeRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeRecord(&buf, rec("a", "buy", "X", json.Number("1.50"), 3, "2024-01-01")))
	require.NoError(t, EncodeRecord(&buf, Record{"id": "b"}))

	records, err := DecodeRecords(&buf)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, json.Number("1.50"), records[0]["quantity"])
	assert.Equal(t, "b", records[1]["id"])
}

func TestReport_MarshalJSON(t *testing.T) {
	records := []Record{
		rec("b1", "buy", "X", 3, 100, "2024-01-01"),
		rec("s1", "sell", "X", 1, "12.346", "2024-01-02"),
	}

	r := mustCompute(t, records, Filter{})
	var buf bytes.Buffer
	require.NoError(t, EncodeReport(&buf, r))

	var got struct {
		Sort          string            `json:"sort"`
		GlobalSummary map[string]any    `json:"globalSummary"`
		ByAsset       []map[string]any  `json:"byAsset"`
		OpenPositions []map[string]any  `json:"openPositions"`
		Rejected      []json.RawMessage `json:"rejected"`
		Oversold      []json.RawMessage `json:"oversold"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "discovery", got.Sort)
	require.Len(t, got.ByAsset, 1)
	asset := got.ByAsset[0]
	assert.Equal(t, "1", asset["closedQuantity"])
	assert.Equal(t, "33.33", asset["totalInvested"])
	assert.Equal(t, "12.35", asset["totalRecovered"])
	assert.Equal(t, "-20.99", asset["netPnl"])
	assert.Equal(t, "-62.96", asset["pnlPct"])
	require.Len(t, got.OpenPositions, 1)
	assert.Equal(t, "2", got.OpenPositions[0]["remainingQuantity"])
	assert.Equal(t, "66.67", got.OpenPositions[0]["investedAmount"])
	assert.Equal(t, "USD", got.GlobalSummary["currency"])
	assert.Equal(t, float64(1), got.GlobalSummary["openPositionCount"])

	// empty diagnostics are lists, not null.
	assert.Contains(t, buf.String(), `"rejected": []`)
	assert.Contains(t, buf.String(), `"oversold": []`)

	exact := mustCompute(t, records, Filter{}, WithExact(true))
	data, err := json.Marshal(exact)
	require.NoError(t, err)
	var raw struct {
		ByAsset []map[string]string `json:"byAsset"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw.ByAsset, 1)
	assert.Equal(t, "12.346", raw.ByAsset[0]["totalRecovered"])
	assert.True(t, strings.HasPrefix(raw.ByAsset[0]["totalInvested"], "33.3333"))
}

func TestReport_MarshalJSONKeyOrder(t *testing.T) {
	r := mustCompute(t, nil, Filter{})
	data, err := json.Marshal(r)
	require.NoError(t, err)

	keys := []string{`"filter"`, `"sort"`, `"globalSummary"`, `"currencies"`, `"byAsset"`, `"openPositions"`, `"activity"`, `"rejected"`, `"oversold"`}
	last := -1
	for _, k := range keys {
		i := bytes.Index(data, []byte(k))
		require.Greater(t, i, last, "%s out of order in %s", k, data)
		last = i
	}
}

func TestDiagnostics_MarshalJSON(t *testing.T) {
	r := mustCompute(t, []Record{
		rec("s1", "sell", "X", 2, 10, "2024-01-02T10:00:00-03:00"),
		rec("bad", "buy", "X", "zero", 10, "2024-01-02"),
	}, Filter{})

	data, err := json.Marshal(r.Oversold)
	require.NoError(t, err)
	assert.JSONEq(t, `[{
		"ownerId": "alice",
		"symbol": "X",
		"currency": "USD",
		"transactionId": "s1",
		"occurredAt": "2024-01-02T13:00:00Z",
		"unmatched": "2"
	}]`, string(data))

	data, err = json.Marshal(r.Rejected)
	require.NoError(t, err)
	var rejected []map[string]any
	require.NoError(t, json.Unmarshal(data, &rejected))
	require.Len(t, rejected, 1)
	assert.Equal(t, "bad", rejected[0]["id"])
	assert.Equal(t, float64(1), rejected[0]["index"])
	assert.Equal(t, ReasonQuantity, rejected[0]["reason"])
	assert.NotEmpty(t, rejected[0]["detail"])
}

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{USD(1234.5), "$1,234.50"},
		{M(7, "JPY"), "¥7"},
		{M(1.5, ""), "1.50"},
		{M(1.5, "XYZW"), "1.50 XYZW"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, tc.m.String())
	}
	assert.Equal(t, int32(0), M(7, "JPY").Fraction())
	assert.Equal(t, int32(2), M(7, "XYZW").Fraction())
	assert.Equal(t, "-", USD(0).SignedString())
	assert.Equal(t, "+$1.00", USD(1).SignedString())
}

func TestMoney_CurrencyMismatch(t *testing.T) {
	assert.Panics(t, func() { USD(1).Add(ARS(1)) })
	assert.NotPanics(t, func() { USD(1).Add(M(1, "")) })
}
