package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/vault-analytics/internal/models"
	"github.com/vault-analytics/internal/venue"
)

// applyTrading fills the volume, trade-count, holding-time, and token-share
// fields from the vault leader's fills. No fills means every field stays 0.
func applyTrading(row *models.VaultMetrics, fills []venue.Fill) {
	if len(fills) == 0 {
		return
	}

	dailyVolumes := make(map[string]float64)
	dailyTrades := make(map[string]int)
	tokenVolume := make(map[string]float64)
	opensByCoin := make(map[string][]venue.Fill)
	closesByCoin := make(map[string][]venue.Fill)

	for _, fill := range fills {
		notional := fill.Px * fill.Sz
		day := time.UnixMilli(fill.Time).UTC().Format("2006-01-02")

		dailyVolumes[day] += notional
		dailyTrades[day]++
		tokenVolume[fill.Coin] += notional

		switch {
		case strings.Contains(fill.Dir, "Open"):
			opensByCoin[fill.Coin] = append(opensByCoin[fill.Coin], fill)
		case strings.Contains(fill.Dir, "Close"):
			closesByCoin[fill.Coin] = append(closesByCoin[fill.Coin], fill)
		}
	}

	days := len(dailyVolumes)
	if days == 0 {
		days = 1
	}

	totalVolume := 0.0
	for _, day := range sortedKeys(dailyVolumes) {
		totalVolume += dailyVolumes[day]
	}
	totalTrades := 0
	for _, n := range dailyTrades {
		totalTrades += n
	}

	row.DailyVolume = totalVolume / float64(days)
	row.TradesPerDay = float64(totalTrades) / float64(days)
	if totalTrades > 0 {
		row.AverageTradeSize = totalVolume / float64(totalTrades)
	}

	topVolume, totalTokenVolume := 0.0, 0.0
	for _, coin := range sortedKeys(tokenVolume) {
		vol := tokenVolume[coin]
		totalTokenVolume += vol
		if vol > topVolume {
			topVolume = vol
		}
	}
	if totalTokenVolume > 0 {
		row.TopTokenVolumeShare = topVolume / totalTokenVolume * 100.0
	}

	row.AveragePositionHoldingTime = mean(holdingHours(opensByCoin, closesByCoin))
}

// holdingHours FIFO-matches closing fills against the oldest open volume per
// coin and records the elapsed hours of each matched chunk. Partially
// consumed opens carry their remainder to the next close. Coins are walked
// in sorted order so the result is deterministic.
func holdingHours(opensByCoin, closesByCoin map[string][]venue.Fill) []float64 {
	var hours []float64

	for _, coin := range sortedKeys(closesByCoin) {
		opens := append([]venue.Fill(nil), opensByCoin[coin]...)
		closes := append([]venue.Fill(nil), closesByCoin[coin]...)
		sort.SliceStable(opens, func(i, j int) bool { return opens[i].Time < opens[j].Time })
		sort.SliceStable(closes, func(i, j int) bool { return closes[i].Time < closes[j].Time })

		openIdx := 0
		var openTime int64
		remainingOpenSz := 0.0

		for _, close := range closes {
			closeSz := close.Sz

			for closeSz > 0 && (remainingOpenSz > 0 || openIdx < len(opens)) {
				if remainingOpenSz == 0 {
					remainingOpenSz = opens[openIdx].Sz
					openTime = opens[openIdx].Time
					openIdx++
				}

				matched := remainingOpenSz
				if closeSz < matched {
					matched = closeSz
				}

				if holdMs := close.Time - openTime; holdMs > 0 {
					hours = append(hours, float64(holdMs)*24.0/float64(msPerDay))
				}

				remainingOpenSz -= matched
				closeSz -= matched
			}
		}
	}

	return hours
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
