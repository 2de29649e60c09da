package metrics

import (
	"time"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// applyCapital fills tvl, follower, age, and commission fields. now is the
// injected clock for vault_age_days.
func applyCapital(row *models.VaultMetrics, detail venue.Document, now time.Time) {
	accountHistory := detail.Bucket("allTime").Series("accountValueHistory")

	// The detail document carries no true TVL field; the last account value
	// is the closest available approximation.
	if len(accountHistory) > 0 {
		row.TVL = accountHistory[len(accountHistory)-1].Value
	}

	row.FollowerCount = len(detail.List("followers"))
	if row.FollowerCount > 0 {
		row.AverageInvestmentPerFollower = row.TVL / float64(row.FollowerCount)
	}

	if len(accountHistory) > 0 {
		if createMs := accountHistory[0].Time; createMs != 0 {
			row.VaultAgeDays = int((now.UnixMilli() - createMs) / msPerDay)
		}
	}

	row.LeaderCommissionRate = detail.Float("leaderCommission")
}
