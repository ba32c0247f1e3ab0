package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Options Scout Configuration

[scan]
# Default target DTE window when a candidate carries none
min_dte = 7
max_dte = 60
# DTE at or above which a single leg is treated as a LEAP
leap_min_dte = 300
# Minimum in-the-money depth for LEAP strike selection (percent of spot)
itm_depth_percent = 8.0
# Out-of-the-money distance target for strangles and covered calls
otm_target_percent = 3.0
# Permit single-expiration approximation of calendar structures
allow_multi_expiry = false
# Shares per contract
contract_multiplier = 100

[tiers]
# Broker-approval tiers unlocked on the account
unlocked = [1]

[filter]
# Selections below this DTE are rejected outright
min_dte = 5
# Liquidity score floor for execution candidacy
liquidity_floor = 40.0
# Bid/ask spread ceiling (percent of mid)
spread_ceiling_percent = 10.0
# Strict mode tightens the floor and ceiling by fixed factors
strict_mode = false

[risk]
# Hard capital ceiling across an entire run, never exceeded
capital_limit = 25000.0

[gate]
# IV history required before a candidate may leave WAIT
required_iv_history_days = 120
# PCS score required for READY_NOW
execution_floor = 70.0
# Candidates within this many days of earnings are held in WAIT
earnings_window_days = 5
# Stress readings at or above stress_halt block the whole ticker
stress_elevated = 25.0
stress_halt = 35.0

[chain]
# Chain provider: "static" (quotes file) or "kite"
provider = "static"
# Kite credentials; prefer KITE_API_KEY / KITE_ACCESS_TOKEN env vars
api_key = ""
access_token = ""
# Parallel ticker workers
workers = 4
`

// createTemplateConfig writes a commented config template so a first run
// has something to edit.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	return os.WriteFile(path, []byte(configTemplate), 0644)
}
