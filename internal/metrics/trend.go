package metrics

import (
	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// applyTrend fills the change, momentum, ATH-distance, and streak fields.
func applyTrend(row *models.VaultMetrics, detail venue.Document) {
	allTime := detail.Bucket("allTime")
	accountHistory := allTime.Series("accountValueHistory")

	row.SevenDayChange = pctChange(detail.Bucket("week"))
	row.ThirtyDayChange = pctChange(detail.Bucket("month"))

	// Momentum divides the week bucket's percent change by the volatility of
	// the trailing (up to 7) daily returns of the allTime series. The two
	// windows come from different series slices; that asymmetry is
	// intentional upstream behavior and is preserved as-is.
	trailing := trailingReturns(accountHistory, 7)
	if vol := populationStdDev(trailing); vol > 0 {
		row.MomentumScore = row.SevenDayChange * 0.01 / vol
	}

	if len(accountHistory) > 0 {
		athIdx := 0
		for i, p := range accountHistory {
			if p.Value > accountHistory[athIdx].Value {
				athIdx = i
			}
		}
		lastTime := accountHistory[len(accountHistory)-1].Time
		row.DaysSinceATH = int((lastTime - accountHistory[athIdx].Time) / msPerDay)
	}

	pnlHistory := allTime.Series("pnlHistory")
	for i := len(pnlHistory) - 1; i > 0; i-- {
		if pnlHistory[i].Value-pnlHistory[i-1].Value <= 0 {
			break
		}
		row.ConsecutivePositiveDays++
	}
}

// trailingReturns computes up to n day-over-day returns from the end of the
// series, most recent first, skipping steps that start at zero.
func trailingReturns(series []venue.Point, n int) []float64 {
	var returns []float64
	for i := 1; i <= n && i < len(series); i++ {
		prev := series[len(series)-i-1].Value
		if prev == 0 {
			continue
		}
		cur := series[len(series)-i].Value
		returns = append(returns, (cur-prev)/prev)
	}
	return returns
}
