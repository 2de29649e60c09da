package venue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// detailFixture builds a detail document the way the venue encodes it:
// portfolio is a list of [periodName, periodData] pairs.
func detailFixture(t *testing.T) Document {
	t.Helper()

	raw := `{
		"name": "Test Vault",
		"apr": 0.42,
		"leader": "0xleader",
		"portfolio": [
			["allTime", {
				"accountValueHistory": [[0, 100.0], [86400000, "120.5"], [172800000, 90]],
				"pnlHistory": [[0, 0], [86400000, 20.5]]
			}],
			["week", {"accountValueHistory": [[0, 100.0], [86400000, 110.0]]}]
		]
	}`

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &m))
	return Document(m)
}

func TestBucketLookup(t *testing.T) {
	detail := detailFixture(t)

	allTime := detail.Bucket("allTime")
	assert.Len(t, allTime.Series("accountValueHistory"), 3)

	t.Run("missing period returns empty bucket, not an error", func(t *testing.T) {
		missing := detail.Bucket("quarter")
		assert.NotNil(t, missing)
		assert.Empty(t, missing.Series("accountValueHistory"))
	})
}

func TestSeriesCoercion(t *testing.T) {
	detail := detailFixture(t)
	series := detail.Bucket("allTime").Series("accountValueHistory")

	require.Len(t, series, 3)
	assert.Equal(t, Point{Time: 0, Value: 100.0}, series[0])
	// string values are coerced, never rejected
	assert.Equal(t, Point{Time: 86400000, Value: 120.5}, series[1])
	assert.Equal(t, Point{Time: 172800000, Value: 90.0}, series[2])
}

func TestSeriesMalformedEntries(t *testing.T) {
	bucket := Document{
		"pnlHistory": []interface{}{
			[]interface{}{float64(0), "not-a-number"},
			"garbage",
			[]interface{}{float64(1000), nil},
		},
	}

	series := bucket.Series("pnlHistory")
	require.Len(t, series, 2)
	assert.Equal(t, 0.0, series[0].Value)
	assert.Equal(t, 0.0, series[1].Value)
}

func TestSeriesDoesNotMutateInput(t *testing.T) {
	raw := []interface{}{[]interface{}{float64(1), "5.5"}}
	bucket := Document{"pnlHistory": raw}

	_ = bucket.Series("pnlHistory")

	pair := raw[0].([]interface{})
	assert.Equal(t, "5.5", pair[1], "extraction must not rewrite the source document")
}

func TestParseFills(t *testing.T) {
	items := []interface{}{
		map[string]interface{}{
			"coin": "BTC", "dir": "Open Long", "px": 100.0, "sz": 1.0,
			"time": float64(0), "closedPnl": "10.5",
		},
		"not-a-fill",
		map[string]interface{}{
			"coin": "ETH", "dir": "Close Short", "px": "2000", "sz": 0.5,
			"time": float64(3600000),
		},
	}

	fills := ParseFills(items)
	require.Len(t, fills, 2)

	assert.Equal(t, "BTC", fills[0].Coin)
	require.NotNil(t, fills[0].ClosedPnl)
	assert.Equal(t, 10.5, *fills[0].ClosedPnl)

	assert.Equal(t, 2000.0, fills[1].Px)
	assert.Nil(t, fills[1].ClosedPnl, "absent closedPnl stays absent")
}

func TestToFloatTotality(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
	}{
		{"nil", nil, 0.0},
		{"float", 1.25, 1.25},
		{"numeric string", "3.5", 3.5},
		{"empty string", "", 0.0},
		{"garbage string", "abc", 0.0},
		{"unexpected type", []interface{}{1}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, toFloat(tt.value))
		})
	}
}
