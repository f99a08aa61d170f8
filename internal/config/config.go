// Package config defines the file-based configuration schema (spec.md
// §6) loaded through viper/mapstructure, grounded on the teacher's
// cmd/root.go godotenv + viper bootstrap.
package config

import "time"

// Config is the full, keyed-section configuration document.
type Config struct {
	Trading  TradingConfig  `mapstructure:"trading"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Quality  QualityConfig  `mapstructure:"quality"`
	Backtest BacktestConfig `mapstructure:"backtest"`
	Broker   BrokerConfig   `mapstructure:"broker"`
	Risk     RiskConfig     `mapstructure:"risk"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Notify   NotifyConfig   `mapstructure:"notify"`
}

// TradingConfig is spec.md §6's [trading] section.
type TradingConfig struct {
	Symbols          []string `mapstructure:"symbols"`
	Timeframes       []string `mapstructure:"timeframes"`
	RiskPerTrade     float64  `mapstructure:"risk_per_trade"`
	MaxSpread        float64  `mapstructure:"max_spread"`
	ATRLength        int      `mapstructure:"atr_length"`
	ATRMultiplier    float64  `mapstructure:"atr_multiplier"`
	NewsImpactLevel  string   `mapstructure:"news_impact_level"`
	MinVolumeRatio   float64  `mapstructure:"min_volume_ratio"`
	TickIntervalSecs int      `mapstructure:"tick_interval_seconds"`
}

// AnalysisConfig is spec.md §6's [analysis] section.
type AnalysisConfig struct {
	SwingLength        int     `mapstructure:"swing_length"`
	FVGMinSizePips     float64 `mapstructure:"fvg_min_size"`
	OrderBlockLookback int     `mapstructure:"order_block_lookback"`
	LiquidityThreshold float64 `mapstructure:"liquidity_threshold"`
	SwingPointLookback int     `mapstructure:"swing_point_lookback"`
}

// QualityConfig is spec.md §6's [quality] section.
type QualityConfig struct {
	MinConfluenceScore    int     `mapstructure:"min_confluence_score"`
	MinRRRatio            float64 `mapstructure:"min_rr_ratio"`
	EnableQualityAnalysis bool    `mapstructure:"enable_quality_analysis"`
	EnableLogging         bool    `mapstructure:"enable_logging"`
}

// BacktestConfig is spec.md §6's [backtest] section.
type BacktestConfig struct {
	InitialBalance float64 `mapstructure:"initial_balance"`
	Commission     float64 `mapstructure:"commission"`
	StartDate      string  `mapstructure:"start_date"` // YYYY-MM-DD
	EndDate        string  `mapstructure:"end_date"`   // YYYY-MM-DD
}

// BrokerConfig is spec.md §6's [broker] section. Login/Password/Server
// accept the literal string "auto" to mean "read from environment".
type BrokerConfig struct {
	Login    string  `mapstructure:"login"`
	Password string  `mapstructure:"password"`
	Server   string  `mapstructure:"server"`
	PipSize  float64 `mapstructure:"pip_size"`
}

// RiskConfig selects one of the named risk profiles.
type RiskConfig struct {
	Profile string `mapstructure:"profile"` // conservative|moderate|aggressive
}

// LoggingConfig configures the teacher's zap logger wrapper.
type LoggingConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// MetricsConfig configures the prometheus HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// NotifyConfig configures the Telegram alert transport.
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Token   string `mapstructure:"token"`
	ChatID  int64  `mapstructure:"chat_id"`
}

// ParseDate parses a [backtest] YYYY-MM-DD date field.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
