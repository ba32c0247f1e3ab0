// Package integration exercises the full scan path: chain provider,
// tier classification, selection, scoring, pairing, acceptance, and
// run persistence working together.
package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-scout/internal/chain"
	"options-scout/internal/config"
	"options-scout/internal/models"
	"options-scout/internal/pipeline"
	"options-scout/internal/store"
)

var scanNow = time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)

func fixtureChain(ticker string, spot float64) models.ChainSnapshot {
	near := scanNow.AddDate(0, 0, 30)
	far := scanNow.AddDate(0, 0, 90)
	snap := models.ChainSnapshot{Ticker: ticker, UnderlyingPrice: spot, AsOf: scanNow}
	for _, exp := range []time.Time{near, far} {
		for strike := spot * 0.8; strike <= spot*1.2; strike += spot * 0.05 {
			snap.Quotes = append(snap.Quotes,
				models.OptionQuote{
					Strike: strike, Type: models.Call, Bid: 4.9, Ask: 5.1,
					OpenInterest: 4000, Volume: 900, Expiration: exp,
					Greeks: &models.Greeks{Delta: 0.52, Vega: 0.18},
				},
				models.OptionQuote{
					Strike: strike, Type: models.Put, Bid: 4.9, Ask: 5.1,
					OpenInterest: 4000, Volume: 900, Expiration: exp,
					Greeks: &models.Greeks{Delta: -0.52, Vega: 0.18},
				},
			)
		}
	}
	return snap
}

func fixtureProvider() chain.Provider {
	soon := 3
	return chain.NewStaticProvider(map[string]chain.TickerData{
		"AAPL": {
			Snapshot: fixtureChain("AAPL", 200),
			Context:  models.TickerContext{IVHistoryDays: 250, IVRankAvailable: true, StressIndex: 18},
		},
		"NVDA": {
			Snapshot: fixtureChain("NVDA", 120),
			Context:  models.TickerContext{IVHistoryDays: 250, IVRankAvailable: true, StressIndex: 18, DaysToEarnings: &soon},
		},
	})
}

func fixtureBook() []models.StrategyCandidate {
	return []models.StrategyCandidate{
		{Ticker: "AAPL", Strategy: "long call", Structure: models.StructureSingleLeg, Bias: models.BiasBullish, MinDTE: 20, MaxDTE: 45},
		{Ticker: "AAPL", Strategy: "bull call spread", Structure: models.StructureVertical, Bias: models.BiasBullish, MinDTE: 20, MaxDTE: 45},
		{Ticker: "NVDA", Strategy: "long put", Structure: models.StructureSingleLeg, Bias: models.BiasBearish, MinDTE: 20, MaxDTE: 45},
		{Ticker: "ZZZZ", Strategy: "long call", Structure: models.StructureSingleLeg, Bias: models.BiasBullish, MinDTE: 20, MaxDTE: 45},
	}
}

// TestScanToHistoryRoundTrip runs a mixed candidate book end to end and
// persists the run the way `scan --save` does.
func TestScanToHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	cfg := config.Default()
	cfg.Chain.Workers = 2

	evaluator := pipeline.NewAt(cfg, fixtureProvider(), zerolog.Nop(), scanNow)
	results := evaluator.Evaluate(ctx, fixtureBook())

	if len(results) != 4 {
		t.Fatalf("results = %d, want 4, every candidate must come back annotated", len(results))
	}

	byKey := make(map[string]models.AnnotatedResult)
	for _, r := range results {
		byKey[r.Candidate.Ticker+"/"+r.Candidate.Strategy] = r
	}

	if got := byKey["AAPL/long call"].Acceptance.Status; got != models.StatusReadyNow {
		t.Errorf("AAPL long call = %s, want READY_NOW", got)
	}
	if got := byKey["AAPL/bull call spread"].Acceptance.Status; got != models.StatusWait {
		t.Errorf("AAPL bull call spread = %s, want WAIT behind the tier lock", got)
	}
	if got := byKey["NVDA/long put"].Acceptance.Status; got != models.StatusWait {
		t.Errorf("NVDA long put = %s, want WAIT inside the earnings window", got)
	}
	if got := byKey["ZZZZ/long call"].Acceptance.Status; got != models.StatusIncomplete {
		t.Errorf("ZZZZ long call = %s, want INCOMPLETE without a chain", got)
	}

	winner := byKey["AAPL/long call"].Paired
	if winner == nil {
		t.Fatal("sole execution-ready candidate should win its ticker pairing")
	}
	if winner.AllocatedCapital <= 0 || winner.AllocatedCapital > cfg.Risk.CapitalLimit {
		t.Errorf("allocated capital = %.2f, want within (0, %.2f]", winner.AllocatedCapital, cfg.Risk.CapitalLimit)
	}

	// persist and reload, as the history command does
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "scout.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	defer s.Close()

	run := store.Run{
		ID:         store.NewRunID(scanNow),
		CreatedAt:  scanNow,
		Provider:   chain.ProviderStatic,
		Candidates: len(results),
	}
	if err := s.SaveRun(ctx, run, results); err != nil {
		t.Fatalf("saving run: %v", err)
	}

	gotRun, gotResults, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("loading run: %v", err)
	}
	if gotRun.Candidates != 4 {
		t.Errorf("stored candidates = %d, want 4", gotRun.Candidates)
	}
	if len(gotResults) != len(results) {
		t.Fatalf("stored results = %d, want %d", len(gotResults), len(results))
	}
	for _, r := range gotResults {
		orig, ok := byKey[r.Candidate.Ticker+"/"+r.Candidate.Strategy]
		if !ok {
			t.Fatalf("stored row %s/%s not in the original run", r.Candidate.Ticker, r.Candidate.Strategy)
		}
		if r.Acceptance.Status != orig.Acceptance.Status || r.Scored.PCS != orig.Scored.PCS {
			t.Errorf("%s/%s changed across the store round-trip", r.Candidate.Ticker, r.Candidate.Strategy)
		}
	}
}

// TestScanSurvivesProviderOutage runs the same book through a breaker
// whose inner provider is down for one ticker.
func TestScanSurvivesProviderOutage(t *testing.T) {
	cfg := config.Default()
	cfg.Chain.Workers = 2

	provider := chain.NewBreakerProvider(fixtureProvider(), chain.DefaultBreakerConfig())
	evaluator := pipeline.NewAt(cfg, provider, zerolog.Nop(), scanNow)

	results := evaluator.Evaluate(context.Background(), fixtureBook())
	if len(results) != 4 {
		t.Fatalf("results = %d, want 4", len(results))
	}
	for _, r := range results {
		if r.Acceptance.Status == "" || r.Acceptance.Reason == "" {
			t.Errorf("%s/%s: missing acceptance annotation", r.Candidate.Ticker, r.Candidate.Strategy)
		}
	}
}
