package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

func fillsWithPnl(pnls ...float64) []venue.Fill {
	fills := make([]venue.Fill, len(pnls))
	for i, p := range pnls {
		pnl := p
		fills[i] = venue.Fill{Coin: "BTC", Dir: "Close Long", Time: int64(i), ClosedPnl: &pnl}
	}
	return fills
}

func TestProfitFactorScenario(t *testing.T) {
	var row models.VaultMetrics
	applyEfficiency(&row, venue.Document{}, fillsWithPnl(10, -5, 20, -2))

	assert.InDelta(t, 30.0/7.0, row.ProfitFactor, 1e-9)
	assert.InDelta(t, 23.0/4.0, row.AveragePnlPerTrade, 1e-9)
}

func TestProfitFactorNoLosses(t *testing.T) {
	var row models.VaultMetrics
	applyEfficiency(&row, venue.Document{}, fillsWithPnl(10, 20))

	assert.Zero(t, row.ProfitFactor, "no losses means the factor is undefined, reported as 0")
}

func TestEfficiencyNoPnlFills(t *testing.T) {
	fills := []venue.Fill{{Coin: "BTC", Dir: "Open Long", Px: 100, Sz: 1}}

	var row models.VaultMetrics
	applyEfficiency(&row, venue.Document{}, fills)

	assert.Zero(t, row.AveragePnlPerTrade)
	assert.Zero(t, row.ProfitFactor)
}

func TestReturnToDrawdownRatio(t *testing.T) {
	detail := mkDetail(
		map[string]interface{}{"apr": 0.5},
		map[string]map[string]interface{}{
			"allTime": {"accountValueHistory": mkSeries(
				venue.Point{Time: 0, Value: 100},
				venue.Point{Time: dayMs, Value: 75}, // 25% max drawdown
			)},
		},
	)

	var row models.VaultMetrics
	applyEfficiency(&row, detail, nil)

	// declared apr fraction over the drawdown fraction: 0.5 / 0.25
	assert.InDelta(t, 2.0, row.ReturnToDrawdownRatio, 1e-9)
}

func TestCapitalEfficiency(t *testing.T) {
	detail := mkDetail(nil, map[string]map[string]interface{}{
		"allTime": {"accountValueHistory": mkSeries(
			venue.Point{Time: 0, Value: 100},
			venue.Point{Time: dayMs, Value: 300},
		)},
	})

	var row models.VaultMetrics
	applyEfficiency(&row, detail, fillsWithPnl(40, 10))

	// 50 realized pnl over a mean account value of 200
	assert.InDelta(t, 25.0, row.CapitalEfficiency, 1e-9)
}
