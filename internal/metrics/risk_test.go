package metrics

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

func TestDrawdownScenario(t *testing.T) {
	// 120 -> 90 is the worst decline; 150 sets a fresh peak at the end.
	series := []venue.Point{
		{Time: 0, Value: 100},
		{Time: dayMs, Value: 120},
		{Time: 2 * dayMs, Value: 90},
		{Time: 3 * dayMs, Value: 150},
	}

	assert.InDelta(t, 25.0, maxDrawdown(series), 1e-9)
	assert.InDelta(t, 0.0, currentDrawdown(series), 1e-9)
}

func TestDrawdownEmptyAndZeroPeak(t *testing.T) {
	assert.Zero(t, maxDrawdown(nil))
	assert.Zero(t, currentDrawdown(nil))

	// all-zero series: the ratio is undefined everywhere, counted as 0
	zeros := []venue.Point{{Time: 0, Value: 0}, {Time: dayMs, Value: 0}}
	assert.Zero(t, maxDrawdown(zeros))
	assert.Zero(t, currentDrawdown(zeros))
}

// Property: the current drawdown (global peak to last point) can never
// exceed the historical worst case.
func TestMaxDrawdownDominatesCurrentDrawdown(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("max_drawdown >= current_drawdown", prop.ForAll(
		func(values []float64) bool {
			series := make([]venue.Point, len(values))
			for i, v := range values {
				series[i] = venue.Point{Time: int64(i) * dayMs, Value: v}
			}
			return maxDrawdown(series) >= currentDrawdown(series)-1e-9
		},
		gen.SliceOf(gen.Float64Range(0, 1e9)),
	))

	properties.TestingRun(t)
}

func TestDailyVolatilityAndSharpe(t *testing.T) {
	detail := mkDetail(nil, map[string]map[string]interface{}{
		"allTime": {"accountValueHistory": mkSeries(
			venue.Point{Time: 0, Value: 100},
			venue.Point{Time: dayMs, Value: 110},
			venue.Point{Time: 2 * dayMs, Value: 99},
		)},
	})

	var row models.VaultMetrics
	applyRisk(&row, detail)

	returns := []float64{0.1, -0.1}
	wantVol := sampleStdDev(returns)
	assert.InDelta(t, wantVol, row.DailyVolatility, 1e-9)

	wantSharpe := (mean(returns) - dailyRiskFreeRate) / wantVol * math.Sqrt(365)
	assert.InDelta(t, wantSharpe, row.SharpeRatio, 1e-9)
}

func TestVolatilityNeedsTwoReturns(t *testing.T) {
	detail := mkDetail(nil, map[string]map[string]interface{}{
		"allTime": {"accountValueHistory": mkSeries(
			venue.Point{Time: 0, Value: 100},
			venue.Point{Time: dayMs, Value: 110},
		)},
	})

	var row models.VaultMetrics
	applyRisk(&row, detail)

	assert.Zero(t, row.DailyVolatility)
	assert.Zero(t, row.SharpeRatio, "sharpe is 0 when volatility is 0")
}

func TestAverageRecoveryDays(t *testing.T) {
	// Drops 20% below the 100 peak on day 1, recovers on day 3 (2 days),
	// then drops 15% below the 120 peak on day 4 and recovers on day 8
	// (4 days). Mean episode length: 3 days.
	series := []venue.Point{
		{Time: 0, Value: 100},
		{Time: dayMs, Value: 80},
		{Time: 3 * dayMs, Value: 120},
		{Time: 4 * dayMs, Value: 102},
		{Time: 8 * dayMs, Value: 130},
	}

	assert.InDelta(t, 3.0, averageRecoveryDays(series), 1e-9)
}

func TestAverageRecoveryDaysIgnoresShallowDips(t *testing.T) {
	series := []venue.Point{
		{Time: 0, Value: 100},
		{Time: dayMs, Value: 95}, // 5% dip, below the 10% threshold
		{Time: 2 * dayMs, Value: 105},
	}

	assert.Zero(t, averageRecoveryDays(series))
}

func TestAverageRecoveryDaysOpenEpisodeNeverCloses(t *testing.T) {
	series := []venue.Point{
		{Time: 0, Value: 100},
		{Time: dayMs, Value: 50},
		{Time: 2 * dayMs, Value: 60}, // never makes a new peak
	}

	assert.Zero(t, averageRecoveryDays(series), "unresolved drawdowns contribute no sample")
}
