package metrics

import (
	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// applyPerformance fills apr, pnl totals, monthly/weekly account value
// change, and the win-days ratio.
func applyPerformance(row *models.VaultMetrics, detail venue.Document) {
	allTime := detail.Bucket("allTime")
	accountHistory := allTime.Series("accountValueHistory")
	pnlHistory := allTime.Series("pnlHistory")

	// the venue declares apr as a fraction; stored as a percentage
	row.APR = detail.Float("apr") * 100.0

	if len(pnlHistory) > 0 {
		row.TotalPnlUSD = pnlHistory[len(pnlHistory)-1].Value
	}

	if len(accountHistory) > 0 && len(pnlHistory) > 0 {
		start := accountHistory[0].Value
		if start != 0 {
			current := pnlHistory[len(pnlHistory)-1].Value
			row.TotalPnlPercent = (current - start) / start * 100.0
		}
	}

	row.MonthlyAccountValueChange = pctChange(detail.Bucket("month"))
	row.WeeklyAccountValueChange = pctChange(detail.Bucket("week"))

	if len(pnlHistory) >= 2 {
		winDays := 0
		for i := 1; i < len(pnlHistory); i++ {
			if pnlHistory[i].Value > pnlHistory[i-1].Value {
				winDays++
			}
		}
		row.WinDaysRatio = float64(winDays) / float64(len(pnlHistory)-1) * 100.0
	}
}
