package chain

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	kiteconnect "github.com/zerodha/gokiteconnect/v4"

	"options-scout/internal/config"
	scouterrors "options-scout/internal/errors"
	"options-scout/internal/models"
	"options-scout/pkg/utils"
)

// stressSymbol is the volatility gauge quoted for the gate's stress
// input.
const stressSymbol = "NSE:INDIA VIX"

// KiteProvider fetches live chains from Kite Connect. The full NFO
// instrument dump is large, so it is fetched once per provider and
// filtered per ticker.
type KiteProvider struct {
	client *kiteconnect.Client

	// Contexts supplies per-ticker gate inputs (IV history, earnings)
	// that the broker API does not carry. Tickers without an entry get
	// a zero context, which the gate treats as immature data.
	Contexts map[string]models.TickerContext

	// EarningsDates maps ticker to its next scheduled earnings date;
	// fetch converts it into the gate's days-to-earnings input.
	EarningsDates map[string]time.Time

	mu          sync.Mutex
	instruments []kiteconnect.Instrument
	stress      float64
	loaded      bool
}

// NewKiteProvider builds a provider from chain config. The access token
// must already be generated; the scanner never drives the login flow.
func NewKiteProvider(cfg config.ChainConfig) (*KiteProvider, error) {
	if cfg.APIKey == "" || cfg.AccessToken == "" {
		return nil, scouterrors.Wrap(scouterrors.ErrNotAuthenticated, "kite provider requires api_key and access_token")
	}
	client := kiteconnect.New(cfg.APIKey)
	client.SetAccessToken(cfg.AccessToken)
	return &KiteProvider{client: client}, nil
}

// Fetch builds a chain snapshot for one ticker from NFO option
// instruments and their quoted depth.
func (p *KiteProvider) Fetch(ctx context.Context, ticker string) (*TickerData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	instruments, stress, err := p.loadInstruments()
	if err != nil {
		return nil, scouterrors.NewProviderError(ProviderKite, ticker, err)
	}

	spot, err := p.spotPrice(ticker)
	if err != nil {
		return nil, scouterrors.NewProviderError(ProviderKite, ticker, err)
	}

	snapshot := models.ChainSnapshot{
		Ticker:          ticker,
		UnderlyingPrice: spot,
		AsOf:            time.Now(),
	}

	symbols := make([]string, 0, 64)
	bySymbol := make(map[string]kiteconnect.Instrument)
	for _, inst := range instruments {
		if inst.Name != ticker {
			continue
		}
		if inst.InstrumentType != "CE" && inst.InstrumentType != "PE" {
			continue
		}
		sym := fmt.Sprintf("NFO:%s", inst.Tradingsymbol)
		symbols = append(symbols, sym)
		bySymbol[sym] = inst
	}
	if len(symbols) == 0 {
		return nil, scouterrors.NewProviderError(ProviderKite, ticker, scouterrors.ErrChainUnavailable)
	}
	sort.Strings(symbols)

	// Kite quotes up to 500 symbols per call.
	for _, batch := range utils.ChunkStrings(symbols, 500) {
		quotes, err := p.client.GetQuote(batch...)
		if err != nil {
			return nil, scouterrors.NewProviderError(ProviderKite, ticker, err)
		}
		for _, sym := range batch {
			q, ok := quotes[sym]
			if !ok {
				continue
			}
			inst := bySymbol[sym]
			oq := models.OptionQuote{
				Strike:       inst.StrikePrice,
				Type:         optionTypeFor(inst.InstrumentType),
				OpenInterest: int64(q.OI),
				Volume:       int64(q.Volume),
				Expiration:   inst.Expiry.Time,
			}
			if len(q.Depth.Buy) > 0 {
				oq.Bid = q.Depth.Buy[0].Price
			}
			if len(q.Depth.Sell) > 0 {
				oq.Ask = q.Depth.Sell[0].Price
			}
			snapshot.Quotes = append(snapshot.Quotes, oq)
		}
	}

	tctx := p.Contexts[ticker]
	tctx.StressIndex = stress
	if tctx.DaysToEarnings == nil {
		if date, ok := p.EarningsDates[ticker]; ok {
			tctx.DaysToEarnings = utils.DaysToEarnings(time.Now(), &date)
		}
	}

	return &TickerData{Snapshot: snapshot, Context: tctx}, nil
}

// loadInstruments pulls the NFO instrument dump and the stress gauge
// once and caches them for the provider's lifetime (one scan run).
func (p *KiteProvider) loadInstruments() ([]kiteconnect.Instrument, float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded {
		return p.instruments, p.stress, nil
	}

	all, err := p.client.GetInstruments()
	if err != nil {
		return nil, 0, scouterrors.Wrap(err, "fetch instruments")
	}
	nfo := all[:0]
	for _, inst := range all {
		if inst.Exchange == "NFO" {
			nfo = append(nfo, inst)
		}
	}
	p.instruments = nfo

	if quotes, err := p.client.GetQuote(stressSymbol); err == nil {
		if q, ok := quotes[stressSymbol]; ok {
			p.stress = q.LastPrice
		}
	}

	p.loaded = true
	return p.instruments, p.stress, nil
}

func (p *KiteProvider) spotPrice(ticker string) (float64, error) {
	sym := fmt.Sprintf("NSE:%s", ticker)
	quotes, err := p.client.GetQuote(sym)
	if err != nil {
		return 0, scouterrors.Wrapf(err, "fetch spot for %s", ticker)
	}
	q, ok := quotes[sym]
	if !ok {
		return 0, scouterrors.Wrapf(scouterrors.ErrChainUnavailable, "no spot quote for %s", ticker)
	}
	return q.LastPrice, nil
}

func optionTypeFor(instrumentType string) models.OptionType {
	if instrumentType == "PE" {
		return models.Put
	}
	return models.Call
}
