package storage

import (
	"context"
	"fmt"

	"github.com/vault-analytics/internal/models"
)

// VaultRepository persists derived vault metrics rows.
type VaultRepository struct {
	db *PostgresDB
}

// NewVaultRepository creates a new vault metrics repository
func NewVaultRepository(db *PostgresDB) *VaultRepository {
	return &VaultRepository{db: db}
}

const upsertVaultQuery = `
	INSERT INTO vaults (
		vault_address, name, apr, total_pnl_usd, total_pnl_percent,
		monthly_account_value_change, weekly_account_value_change, win_days_ratio,
		max_drawdown, current_drawdown, daily_volatility, sharpe_ratio,
		average_recovery_days, daily_volume, trades_per_day, average_trade_size,
		average_position_holding_time, top_token_volume_share, seven_day_change,
		thirty_day_change, momentum_score, days_since_ath, consecutive_positive_days,
		tvl, follower_count, average_investment_per_follower, vault_age_days,
		leader_commission_rate, average_pnl_per_trade, profit_factor,
		return_to_drawdown_ratio, capital_efficiency, last_updated
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
		$17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		$31, $32, NOW()
	)
	ON CONFLICT (vault_address) DO UPDATE SET
		name = EXCLUDED.name,
		apr = EXCLUDED.apr,
		total_pnl_usd = EXCLUDED.total_pnl_usd,
		total_pnl_percent = EXCLUDED.total_pnl_percent,
		monthly_account_value_change = EXCLUDED.monthly_account_value_change,
		weekly_account_value_change = EXCLUDED.weekly_account_value_change,
		win_days_ratio = EXCLUDED.win_days_ratio,
		max_drawdown = EXCLUDED.max_drawdown,
		current_drawdown = EXCLUDED.current_drawdown,
		daily_volatility = EXCLUDED.daily_volatility,
		sharpe_ratio = EXCLUDED.sharpe_ratio,
		average_recovery_days = EXCLUDED.average_recovery_days,
		daily_volume = EXCLUDED.daily_volume,
		trades_per_day = EXCLUDED.trades_per_day,
		average_trade_size = EXCLUDED.average_trade_size,
		average_position_holding_time = EXCLUDED.average_position_holding_time,
		top_token_volume_share = EXCLUDED.top_token_volume_share,
		seven_day_change = EXCLUDED.seven_day_change,
		thirty_day_change = EXCLUDED.thirty_day_change,
		momentum_score = EXCLUDED.momentum_score,
		days_since_ath = EXCLUDED.days_since_ath,
		consecutive_positive_days = EXCLUDED.consecutive_positive_days,
		tvl = EXCLUDED.tvl,
		follower_count = EXCLUDED.follower_count,
		average_investment_per_follower = EXCLUDED.average_investment_per_follower,
		vault_age_days = EXCLUDED.vault_age_days,
		leader_commission_rate = EXCLUDED.leader_commission_rate,
		average_pnl_per_trade = EXCLUDED.average_pnl_per_trade,
		profit_factor = EXCLUDED.profit_factor,
		return_to_drawdown_ratio = EXCLUDED.return_to_drawdown_ratio,
		capital_efficiency = EXCLUDED.capital_efficiency,
		last_updated = NOW()
`

// Upsert inserts or updates one vault's metrics row keyed by vault_address.
// The operation is idempotent: replaying the same row leaves the table in
// the same state.
func (r *VaultRepository) Upsert(ctx context.Context, row *models.VaultMetrics) error {
	if row.VaultAddress == "" {
		return fmt.Errorf("vault address is required")
	}

	_, err := r.db.Pool().Exec(ctx, upsertVaultQuery,
		row.VaultAddress,
		row.Name,
		row.APR,
		row.TotalPnlUSD,
		row.TotalPnlPercent,
		row.MonthlyAccountValueChange,
		row.WeeklyAccountValueChange,
		row.WinDaysRatio,
		row.MaxDrawdown,
		row.CurrentDrawdown,
		row.DailyVolatility,
		row.SharpeRatio,
		row.AverageRecoveryDays,
		row.DailyVolume,
		row.TradesPerDay,
		row.AverageTradeSize,
		row.AveragePositionHoldingTime,
		row.TopTokenVolumeShare,
		row.SevenDayChange,
		row.ThirtyDayChange,
		row.MomentumScore,
		row.DaysSinceATH,
		row.ConsecutivePositiveDays,
		row.TVL,
		row.FollowerCount,
		row.AverageInvestmentPerFollower,
		row.VaultAgeDays,
		row.LeaderCommissionRate,
		row.AveragePnlPerTrade,
		row.ProfitFactor,
		row.ReturnToDrawdownRatio,
		row.CapitalEfficiency,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vault %s: %w", row.VaultAddress, err)
	}

	return nil
}
