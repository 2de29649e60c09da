package models

// VaultMetrics is the derived analytics row for one vault: the vault key,
// its display name, and thirty numeric fields. It is produced once by the
// metrics engine, quantized by the precision guard, and upserted keyed by
// VaultAddress.
type VaultMetrics struct {
	VaultAddress string `db:"vault_address"`
	Name         string `db:"name"`

	// performance
	APR                       float64 `db:"apr"`
	TotalPnlUSD               float64 `db:"total_pnl_usd"`
	TotalPnlPercent           float64 `db:"total_pnl_percent"`
	MonthlyAccountValueChange float64 `db:"monthly_account_value_change"`
	WeeklyAccountValueChange  float64 `db:"weekly_account_value_change"`
	WinDaysRatio              float64 `db:"win_days_ratio"`

	// risk
	MaxDrawdown         float64 `db:"max_drawdown"`
	CurrentDrawdown     float64 `db:"current_drawdown"`
	DailyVolatility     float64 `db:"daily_volatility"`
	SharpeRatio         float64 `db:"sharpe_ratio"`
	AverageRecoveryDays float64 `db:"average_recovery_days"`

	// trading
	DailyVolume                float64 `db:"daily_volume"`
	TradesPerDay               float64 `db:"trades_per_day"`
	AverageTradeSize           float64 `db:"average_trade_size"`
	AveragePositionHoldingTime float64 `db:"average_position_holding_time"`
	TopTokenVolumeShare        float64 `db:"top_token_volume_share"`

	// trend
	SevenDayChange          float64 `db:"seven_day_change"`
	ThirtyDayChange         float64 `db:"thirty_day_change"`
	MomentumScore           float64 `db:"momentum_score"`
	DaysSinceATH            int     `db:"days_since_ath"`
	ConsecutivePositiveDays int     `db:"consecutive_positive_days"`

	// capital
	TVL                          float64 `db:"tvl"`
	FollowerCount                int     `db:"follower_count"`
	AverageInvestmentPerFollower float64 `db:"average_investment_per_follower"`
	VaultAgeDays                 int     `db:"vault_age_days"`
	LeaderCommissionRate         float64 `db:"leader_commission_rate"`

	// efficiency
	AveragePnlPerTrade    float64 `db:"average_pnl_per_trade"`
	ProfitFactor          float64 `db:"profit_factor"`
	ReturnToDrawdownRatio float64 `db:"return_to_drawdown_ratio"`
	CapitalEfficiency     float64 `db:"capital_efficiency"`
}
