package metrics

import (
	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// applyEfficiency fills the realized-pnl fields. It reuses the drawdown
// calculation on the same document for the return-to-drawdown ratio.
func applyEfficiency(row *models.VaultMetrics, detail venue.Document, fills []venue.Fill) {
	var pnls []float64
	for _, fill := range fills {
		if fill.ClosedPnl != nil {
			pnls = append(pnls, *fill.ClosedPnl)
		}
	}

	totalPnl := 0.0
	for _, p := range pnls {
		totalPnl += p
	}
	if len(pnls) > 0 {
		row.AveragePnlPerTrade = totalPnl / float64(len(pnls))
	}

	totalProfit, totalLoss := 0.0, 0.0
	for _, p := range pnls {
		if p > 0 {
			totalProfit += p
		} else if p < 0 {
			totalLoss += -p
		}
	}
	if totalLoss > 0 {
		row.ProfitFactor = totalProfit / totalLoss
	}

	accountHistory := detail.Bucket("allTime").Series("accountValueHistory")

	// apr here is the declared fraction, not the percentage stored on the row
	apr := detail.Float("apr")
	if maxDD := maxDrawdown(accountHistory); maxDD > 0 {
		row.ReturnToDrawdownRatio = apr / (maxDD * 0.01)
	}

	values := make([]float64, len(accountHistory))
	for i, p := range accountHistory {
		values[i] = p.Value
	}
	if avgValue := mean(values); avgValue > 0 {
		row.CapitalEfficiency = totalPnl / avgValue * 100.0
	}
}
