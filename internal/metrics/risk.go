package metrics

import (
	"math"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// drawdownThreshold opens a recovery episode once the decline from the
// running peak reaches 10%.
const drawdownThreshold = 0.10

// maxDrawdown is the worst peak-to-trough decline over the series as a
// percentage of the running peak. Points observed while the peak is zero are
// skipped: the ratio is undefined there.
func maxDrawdown(series []venue.Point) float64 {
	if len(series) == 0 {
		return 0.0
	}
	peak := series[0].Value
	maxDD := 0.0
	for _, p := range series {
		if p.Value > peak {
			peak = p.Value
		}
		if peak == 0 {
			continue
		}
		if dd := (peak - p.Value) / peak; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD * 100.0
}

// currentDrawdown measures the last point against the global maximum.
func currentDrawdown(series []venue.Point) float64 {
	if len(series) == 0 {
		return 0.0
	}
	peak := series[0].Value
	for _, p := range series {
		if p.Value > peak {
			peak = p.Value
		}
	}
	if peak == 0 {
		return 0.0
	}
	last := series[len(series)-1].Value
	return (peak - last) / peak * 100.0
}

// averageRecoveryDays averages the duration of drawdown episodes that reach
// the 10% threshold. An episode opens at the first point crossing the
// threshold while the peak is positive and closes when a new peak is set.
func averageRecoveryDays(series []venue.Point) float64 {
	var recoveries []float64
	peak := -1.0
	var episodeStart *int64

	for _, p := range series {
		if p.Value > peak {
			peak = p.Value
			if episodeStart != nil {
				if days := float64(p.Time-*episodeStart) / float64(msPerDay); days > 0 {
					recoveries = append(recoveries, days)
				}
				episodeStart = nil
			}
			continue
		}
		dd := 0.0
		if peak != 0 {
			dd = (peak - p.Value) / peak
		}
		if peak > 0 && dd >= drawdownThreshold && episodeStart == nil {
			start := p.Time
			episodeStart = &start
		}
	}

	return mean(recoveries)
}

// applyRisk fills the drawdown, volatility, sharpe, and recovery fields.
func applyRisk(row *models.VaultMetrics, detail venue.Document) {
	accountHistory := detail.Bucket("allTime").Series("accountValueHistory")

	row.MaxDrawdown = maxDrawdown(accountHistory)
	row.CurrentDrawdown = currentDrawdown(accountHistory)

	daily := dailyReturns(accountHistory)
	vol := sampleStdDev(daily)
	row.DailyVolatility = vol

	if vol > 0 {
		excess := mean(daily) - dailyRiskFreeRate
		row.SharpeRatio = excess / vol * math.Sqrt(daysPerYear)
	}

	row.AverageRecoveryDays = averageRecoveryDays(accountHistory)
}
