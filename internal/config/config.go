// Package config provides configuration management for the scanning pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration. Components receive the
// sub-structs as immutable values; nothing mutates them after Load.
type Config struct {
	Scan   ScanConfig   `mapstructure:"scan"`
	Tiers  TierConfig   `mapstructure:"tiers"`
	Filter FilterConfig `mapstructure:"filter"`
	Risk   RiskConfig   `mapstructure:"risk"`
	Gate   GateConfig   `mapstructure:"gate"`
	Chain  ChainConfig  `mapstructure:"chain"`
}

// TierConfig lists the broker-approval tiers unlocked on the account.
type TierConfig struct {
	Unlocked []int `mapstructure:"unlocked"`
}

// ScanConfig holds contract-selection configuration.
type ScanConfig struct {
	MinDTE            int     `mapstructure:"min_dte"`
	MaxDTE            int     `mapstructure:"max_dte"`
	LEAPMinDTE        int     `mapstructure:"leap_min_dte"`
	ITMDepthPercent   float64 `mapstructure:"itm_depth_percent"`
	OTMTargetPercent  float64 `mapstructure:"otm_target_percent"`
	AllowMultiExpiry  bool    `mapstructure:"allow_multi_expiry"`
	ContractMultiplier int    `mapstructure:"contract_multiplier"`
}

// FilterConfig holds pre-filter thresholds. Strict mode re-uses the same
// algorithm with the floor multiplied up and the ceiling multiplied down.
type FilterConfig struct {
	MinDTE              int     `mapstructure:"min_dte"`
	LiquidityFloor      float64 `mapstructure:"liquidity_floor"`
	SpreadCeilingPercent float64 `mapstructure:"spread_ceiling_percent"`
	StrictMode          bool    `mapstructure:"strict_mode"`
}

// RiskConfig holds capital allocation configuration.
type RiskConfig struct {
	CapitalLimit float64 `mapstructure:"capital_limit"`
}

// GateConfig holds acceptance gate thresholds. Gate thresholds are never
// relaxed to force a different outcome.
type GateConfig struct {
	RequiredIVHistoryDays int     `mapstructure:"required_iv_history_days"`
	ExecutionFloor        float64 `mapstructure:"execution_floor"`
	EarningsWindowDays    int     `mapstructure:"earnings_window_days"`
	StressElevated        float64 `mapstructure:"stress_elevated"`
	StressHalt            float64 `mapstructure:"stress_halt"`
}

// ChainConfig holds chain provider configuration.
type ChainConfig struct {
	Provider    string `mapstructure:"provider"` // "static" or "kite"
	APIKey      string `mapstructure:"api_key"`
	AccessToken string `mapstructure:"access_token"`
	Workers     int    `mapstructure:"workers"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			MinDTE:             7,
			MaxDTE:             60,
			LEAPMinDTE:         300,
			ITMDepthPercent:    8.0,
			OTMTargetPercent:   3.0,
			AllowMultiExpiry:   false,
			ContractMultiplier: 100,
		},
		Tiers: TierConfig{
			Unlocked: []int{1},
		},
		Filter: FilterConfig{
			MinDTE:               5,
			LiquidityFloor:       40.0,
			SpreadCeilingPercent: 10.0,
			StrictMode:           false,
		},
		Risk: RiskConfig{
			CapitalLimit: 25000.0,
		},
		Gate: GateConfig{
			RequiredIVHistoryDays: 120,
			ExecutionFloor:        70.0,
			EarningsWindowDays:    5,
			StressElevated:        25.0,
			StressHalt:            35.0,
		},
		Chain: ChainConfig{
			Provider: "static",
			Workers:  4,
		},
	}
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/options-scout"
	}
	return filepath.Join(home, ".config", "options-scout")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// Config file not found, create template and continue on defaults
		if werr := createTemplateConfig(configDir); werr != nil {
			return nil, fmt.Errorf("writing config template: %w", werr)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("scan.min_dte", cfg.Scan.MinDTE)
	v.SetDefault("scan.max_dte", cfg.Scan.MaxDTE)
	v.SetDefault("scan.leap_min_dte", cfg.Scan.LEAPMinDTE)
	v.SetDefault("scan.itm_depth_percent", cfg.Scan.ITMDepthPercent)
	v.SetDefault("scan.otm_target_percent", cfg.Scan.OTMTargetPercent)
	v.SetDefault("scan.allow_multi_expiry", cfg.Scan.AllowMultiExpiry)
	v.SetDefault("scan.contract_multiplier", cfg.Scan.ContractMultiplier)
	v.SetDefault("tiers.unlocked", cfg.Tiers.Unlocked)
	v.SetDefault("filter.min_dte", cfg.Filter.MinDTE)
	v.SetDefault("filter.liquidity_floor", cfg.Filter.LiquidityFloor)
	v.SetDefault("filter.spread_ceiling_percent", cfg.Filter.SpreadCeilingPercent)
	v.SetDefault("filter.strict_mode", cfg.Filter.StrictMode)
	v.SetDefault("risk.capital_limit", cfg.Risk.CapitalLimit)
	v.SetDefault("gate.required_iv_history_days", cfg.Gate.RequiredIVHistoryDays)
	v.SetDefault("gate.execution_floor", cfg.Gate.ExecutionFloor)
	v.SetDefault("gate.earnings_window_days", cfg.Gate.EarningsWindowDays)
	v.SetDefault("gate.stress_elevated", cfg.Gate.StressElevated)
	v.SetDefault("gate.stress_halt", cfg.Gate.StressHalt)
	v.SetDefault("chain.provider", cfg.Chain.Provider)
	v.SetDefault("chain.workers", cfg.Chain.Workers)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KITE_API_KEY"); v != "" {
		cfg.Chain.APIKey = v
	}
	if v := os.Getenv("KITE_ACCESS_TOKEN"); v != "" {
		cfg.Chain.AccessToken = v
	}
	if v := os.Getenv("CHAIN_PROVIDER"); v != "" {
		cfg.Chain.Provider = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Scan.MinDTE < 0 || c.Scan.MaxDTE < 0 {
		return fmt.Errorf("scan DTE bounds must be non-negative")
	}
	if c.Scan.MaxDTE > 0 && c.Scan.MinDTE > c.Scan.MaxDTE {
		return fmt.Errorf("scan min_dte %d exceeds max_dte %d", c.Scan.MinDTE, c.Scan.MaxDTE)
	}
	if c.Scan.ITMDepthPercent < 0 || c.Scan.ITMDepthPercent > 100 {
		return fmt.Errorf("itm_depth_percent must be between 0 and 100")
	}
	if c.Scan.ContractMultiplier <= 0 {
		return fmt.Errorf("contract_multiplier must be positive")
	}
	for _, tier := range c.Tiers.Unlocked {
		if tier < 1 || tier > 3 {
			return fmt.Errorf("unlocked tier %d out of range 1-3", tier)
		}
	}
	if c.Filter.LiquidityFloor < 0 || c.Filter.LiquidityFloor > 100 {
		return fmt.Errorf("liquidity_floor must be between 0 and 100")
	}
	if c.Filter.SpreadCeilingPercent <= 0 {
		return fmt.Errorf("spread_ceiling_percent must be positive")
	}
	if c.Risk.CapitalLimit <= 0 {
		return fmt.Errorf("capital_limit must be positive")
	}
	if c.Gate.RequiredIVHistoryDays < 0 {
		return fmt.Errorf("required_iv_history_days must be non-negative")
	}
	if c.Gate.ExecutionFloor < 0 || c.Gate.ExecutionFloor > 100 {
		return fmt.Errorf("execution_floor must be between 0 and 100")
	}
	if c.Gate.StressHalt < c.Gate.StressElevated {
		return fmt.Errorf("stress_halt %.1f below stress_elevated %.1f", c.Gate.StressHalt, c.Gate.StressElevated)
	}
	if c.Chain.Provider != "static" && c.Chain.Provider != "kite" {
		return fmt.Errorf("unknown chain provider: %s", c.Chain.Provider)
	}
	if c.Chain.Workers <= 0 {
		return fmt.Errorf("chain workers must be positive")
	}
	return nil
}
