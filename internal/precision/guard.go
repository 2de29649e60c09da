// Package precision quantizes computed metrics to the fixed-point domains of
// their storage columns: clamp to the column's maximum magnitude, then
// truncate toward zero at its fractional-digit count. Applying the guard to
// an already-guarded row is a no-op.
package precision

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vault-analytics/internal/logging"
	"github.com/vault-analytics/internal/models"
)

// Domain is the storage shape of one output field.
type Domain int

const (
	// DomainScale8 holds 8 fractional digits, |v| <= 9999999999.99999999.
	DomainScale8 Domain = iota
	// DomainScale10 holds 10 fractional digits, |v| <= 99999999.9999999999.
	DomainScale10
	// DomainCurrency is an unconstrained high-precision currency value.
	DomainCurrency
)

var (
	maxScale8  = decimal.RequireFromString("9999999999.99999999")
	maxScale10 = decimal.RequireFromString("99999999.9999999999")
)

type fieldSpec struct {
	name   string
	value  *float64
	domain Domain
}

// Apply quantizes every float field of the row in place according to its
// declared domain. Integer counts are left untouched. Non-finite values
// coerce to 0 with a warning naming the field.
func Apply(row *models.VaultMetrics) {
	for _, f := range fieldSpecs(row) {
		*f.value = quantize(f.name, *f.value, f.domain)
	}
}

func fieldSpecs(row *models.VaultMetrics) []fieldSpec {
	return []fieldSpec{
		{"apr", &row.APR, DomainScale8},
		{"total_pnl_usd", &row.TotalPnlUSD, DomainCurrency},
		{"total_pnl_percent", &row.TotalPnlPercent, DomainScale8},
		{"monthly_account_value_change", &row.MonthlyAccountValueChange, DomainScale8},
		{"weekly_account_value_change", &row.WeeklyAccountValueChange, DomainScale8},
		{"win_days_ratio", &row.WinDaysRatio, DomainScale8},
		{"max_drawdown", &row.MaxDrawdown, DomainScale8},
		{"current_drawdown", &row.CurrentDrawdown, DomainScale8},
		{"daily_volatility", &row.DailyVolatility, DomainScale10},
		{"sharpe_ratio", &row.SharpeRatio, DomainScale10},
		{"average_recovery_days", &row.AverageRecoveryDays, DomainScale8},
		{"daily_volume", &row.DailyVolume, DomainCurrency},
		{"trades_per_day", &row.TradesPerDay, DomainScale8},
		{"average_trade_size", &row.AverageTradeSize, DomainCurrency},
		{"average_position_holding_time", &row.AveragePositionHoldingTime, DomainScale8},
		{"top_token_volume_share", &row.TopTokenVolumeShare, DomainScale8},
		{"seven_day_change", &row.SevenDayChange, DomainScale8},
		{"thirty_day_change", &row.ThirtyDayChange, DomainScale8},
		{"momentum_score", &row.MomentumScore, DomainScale10},
		{"tvl", &row.TVL, DomainCurrency},
		{"average_investment_per_follower", &row.AverageInvestmentPerFollower, DomainCurrency},
		{"leader_commission_rate", &row.LeaderCommissionRate, DomainScale10},
		{"average_pnl_per_trade", &row.AveragePnlPerTrade, DomainCurrency},
		{"profit_factor", &row.ProfitFactor, DomainScale10},
		{"return_to_drawdown_ratio", &row.ReturnToDrawdownRatio, DomainScale10},
		{"capital_efficiency", &row.CapitalEfficiency, DomainScale8},
	}
}

// quantize clamps value into its domain and truncates it (toward zero, never
// rounding up past the ceiling) at the domain's fractional-digit count.
func quantize(field string, value float64, domain Domain) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		logging.GetGlobalLogger().Warnf("precision guard: field %s has non-numeric value %v, coerced to 0", field, value)
		return 0.0
	}
	if domain == DomainCurrency {
		return value
	}

	limit, scale := maxScale8, int32(8)
	if domain == DomainScale10 {
		limit, scale = maxScale10, 10
	}

	d := decimal.NewFromFloat(value)
	switch {
	case d.GreaterThan(limit):
		logging.GetGlobalLogger().Warnf("precision guard: field %s value %v exceeds %s, clamped", field, value, limit)
		d = limit
	case d.LessThan(limit.Neg()):
		logging.GetGlobalLogger().Warnf("precision guard: field %s value %v exceeds -%s, clamped", field, value, limit)
		d = limit.Neg()
	}

	result, _ := d.Truncate(scale).Float64()
	return result
}
