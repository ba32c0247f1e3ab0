// Package models defines the core value objects shared across the pipeline.
package models

import "time"

// OptionType identifies the option right.
type OptionType string

const (
	Call OptionType = "CALL"
	Put  OptionType = "PUT"
)

// Greeks holds per-contract option Greeks.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
}

// Add returns the leg-wise sum of two Greek sets.
func (g Greeks) Add(other Greeks) Greeks {
	return Greeks{
		Delta: g.Delta + other.Delta,
		Gamma: g.Gamma + other.Gamma,
		Vega:  g.Vega + other.Vega,
		Theta: g.Theta + other.Theta,
	}
}

// OptionQuote is a single contract quote from a chain provider.
// Greeks is nil when the feed does not supply them; absence is never
// treated as a penalty downstream.
type OptionQuote struct {
	Strike       float64    `json:"strike"`
	Type         OptionType `json:"type"`
	Bid          float64    `json:"bid"`
	Ask          float64    `json:"ask"`
	OpenInterest int64      `json:"open_interest"`
	Volume       int64      `json:"volume"`
	Expiration   time.Time  `json:"expiration"`
	Greeks       *Greeks    `json:"greeks,omitempty"`
}

// Mid returns the bid/ask midpoint, falling back to whichever side is
// present when the other is missing.
func (q OptionQuote) Mid() float64 {
	switch {
	case q.Bid > 0 && q.Ask > 0:
		return (q.Bid + q.Ask) / 2
	case q.Ask > 0:
		return q.Ask
	default:
		return q.Bid
	}
}

// SpreadPercent returns the bid/ask spread as a percentage of the midpoint.
func (q OptionQuote) SpreadPercent() float64 {
	mid := q.Mid()
	if mid <= 0 {
		return 0
	}
	spread := q.Ask - q.Bid
	if spread < 0 {
		return 0
	}
	return spread / mid * 100
}

// DTE returns the whole days remaining until expiration as of now.
func (q OptionQuote) DTE(now time.Time) int {
	d := int(q.Expiration.Sub(now).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// ChainSnapshot is one ticker's option chain as returned by a provider.
// It is fetched at most once per ticker per run and cached for the rest
// of that run.
type ChainSnapshot struct {
	Ticker          string        `json:"ticker"`
	UnderlyingPrice float64       `json:"underlying_price"`
	AsOf            time.Time     `json:"as_of"`
	Quotes          []OptionQuote `json:"quotes"`
}

// TickerContext carries the per-ticker market context consumed by the
// acceptance gate. The same context applies identically to every sibling
// strategy on the ticker.
type TickerContext struct {
	IVHistoryDays   int     `json:"iv_history_days"`
	IVRankAvailable bool    `json:"iv_rank_available"`
	StressIndex     float64 `json:"stress_index"` // VIX-style stress reading
	DaysToEarnings  *int    `json:"days_to_earnings,omitempty"` // nil when no earnings is scheduled
}
