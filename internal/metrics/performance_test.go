package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

func TestApplyPerformance(t *testing.T) {
	detail := mkDetail(
		map[string]interface{}{"apr": 0.42},
		map[string]map[string]interface{}{
			"allTime": {
				"accountValueHistory": mkSeries(
					venue.Point{Time: 0, Value: 100},
					venue.Point{Time: dayMs, Value: 150},
				),
				"pnlHistory": mkSeries(
					venue.Point{Time: 0, Value: 0},
					venue.Point{Time: dayMs, Value: 20},
					venue.Point{Time: 2 * dayMs, Value: 10},
					venue.Point{Time: 3 * dayMs, Value: 50},
				),
			},
			"month": {"accountValueHistory": mkSeries(
				venue.Point{Time: 0, Value: 200},
				venue.Point{Time: dayMs, Value: 250},
			)},
			"week": {"accountValueHistory": mkSeries(
				venue.Point{Time: 0, Value: 100},
				venue.Point{Time: dayMs, Value: 90},
			)},
		},
	)

	var row models.VaultMetrics
	applyPerformance(&row, detail)

	assert.InDelta(t, 42.0, row.APR, 1e-9)
	assert.InDelta(t, 50.0, row.TotalPnlUSD, 1e-9)
	// (50 - 100) / 100 * 100
	assert.InDelta(t, -50.0, row.TotalPnlPercent, 1e-9)
	assert.InDelta(t, 25.0, row.MonthlyAccountValueChange, 1e-9)
	assert.InDelta(t, -10.0, row.WeeklyAccountValueChange, 1e-9)
	// steps: +20, -10, +40 -> 2 of 3 increasing
	assert.InDelta(t, 200.0/3.0, row.WinDaysRatio, 1e-9)
}

func TestApplyPerformanceEmptySeries(t *testing.T) {
	var row models.VaultMetrics
	applyPerformance(&row, venue.Document{"apr": 0.1})

	assert.InDelta(t, 10.0, row.APR, 1e-9)
	assert.Zero(t, row.TotalPnlUSD)
	assert.Zero(t, row.TotalPnlPercent)
	assert.Zero(t, row.WinDaysRatio)
}

func TestPctChangeZeroStart(t *testing.T) {
	bucket := venue.Document{"accountValueHistory": mkSeries(
		venue.Point{Time: 0, Value: 0},
		venue.Point{Time: dayMs, Value: 100},
	)}
	assert.Zero(t, pctChange(bucket), "zero starting value has no defined percent change")
}
