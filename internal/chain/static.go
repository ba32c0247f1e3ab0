package chain

import (
	"context"
	"encoding/json"
	"os"
	"time"

	scouterrors "options-scout/internal/errors"
	"options-scout/internal/models"
)

// fixtureFile is the on-disk shape of a static chain fixture: a map of
// ticker to its quotes and gate context.
type fixtureFile map[string]fixtureTicker

type fixtureTicker struct {
	UnderlyingPrice float64         `json:"underlying_price"`
	AsOf            time.Time       `json:"as_of"`
	Quotes          []fixtureQuote  `json:"quotes"`
	Context         *fixtureContext `json:"context,omitempty"`
}

type fixtureQuote struct {
	Strike       float64            `json:"strike"`
	Type         models.OptionType  `json:"type"`
	Bid          float64            `json:"bid"`
	Ask          float64            `json:"ask"`
	OpenInterest int64              `json:"open_interest"`
	Volume       int64              `json:"volume"`
	Expiration   time.Time          `json:"expiration"`
	Greeks       *models.Greeks     `json:"greeks,omitempty"`
}

type fixtureContext struct {
	IVHistoryDays   int     `json:"iv_history_days"`
	IVRankAvailable bool    `json:"iv_rank_available"`
	StressIndex     float64 `json:"stress_index"`
	DaysToEarnings  *int    `json:"days_to_earnings,omitempty"`
}

// StaticProvider serves chains from an in-memory fixture. It backs
// file-driven scans and tests; fetches are deterministic and never
// block.
type StaticProvider struct {
	data map[string]TickerData
}

// NewStaticProvider wraps pre-built ticker data.
func NewStaticProvider(data map[string]TickerData) *StaticProvider {
	return &StaticProvider{data: data}
}

// LoadStaticProvider reads a JSON fixture file.
func LoadStaticProvider(path string) (*StaticProvider, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, scouterrors.Wrapf(err, "read chain fixture %s", path)
	}

	var file fixtureFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, scouterrors.Wrapf(err, "parse chain fixture %s", path)
	}

	data := make(map[string]TickerData, len(file))
	for ticker, ft := range file {
		td := TickerData{
			Snapshot: models.ChainSnapshot{
				Ticker:          ticker,
				UnderlyingPrice: ft.UnderlyingPrice,
				AsOf:            ft.AsOf,
			},
		}
		for _, q := range ft.Quotes {
			td.Snapshot.Quotes = append(td.Snapshot.Quotes, models.OptionQuote{
				Strike:       q.Strike,
				Type:         q.Type,
				Bid:          q.Bid,
				Ask:          q.Ask,
				OpenInterest: q.OpenInterest,
				Volume:       q.Volume,
				Expiration:   q.Expiration,
				Greeks:       q.Greeks,
			})
		}
		if ft.Context != nil {
			td.Context = models.TickerContext{
				IVHistoryDays:   ft.Context.IVHistoryDays,
				IVRankAvailable: ft.Context.IVRankAvailable,
				StressIndex:     ft.Context.StressIndex,
				DaysToEarnings:  ft.Context.DaysToEarnings,
			}
		}
		data[ticker] = td
	}
	return &StaticProvider{data: data}, nil
}

// Fetch returns the fixture entry for a ticker. Unknown tickers report
// chain unavailability, which the pipeline annotates rather than fails.
func (p *StaticProvider) Fetch(_ context.Context, ticker string) (*TickerData, error) {
	td, ok := p.data[ticker]
	if !ok {
		return nil, &scouterrors.ProviderError{
			Provider: ProviderStatic,
			Ticker:   ticker,
			Err:      scouterrors.ErrChainUnavailable,
		}
	}
	return &td, nil
}
