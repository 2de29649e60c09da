package metrics

import (
	"time"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// Compute derives the full analytics row for one vault. now is injected so
// the only time-relative field, vault_age_days, stays testable; nothing else
// reads a clock.
func Compute(detail venue.Document, fills []venue.Fill, now time.Time) models.VaultMetrics {
	row := models.VaultMetrics{
		VaultAddress: detail.Str("vaultAddress"),
		Name:         detail.Str("name"),
	}

	applyPerformance(&row, detail)
	applyRisk(&row, detail)
	applyTrading(&row, fills)
	applyTrend(&row, detail)
	applyCapital(&row, detail, now)
	applyEfficiency(&row, detail, fills)

	return row
}
