package pairing

import (
	"strings"
	"testing"
	"time"

	"options-scout/internal/config"
	"options-scout/internal/models"
)

func testRiskConfig() config.RiskConfig {
	return config.RiskConfig{CapitalLimit: 25000}
}

func ready(ticker, strategy string, structure models.StructureType, pcs, liquidity, capital float64, risk *float64) models.ScoredCandidate {
	return models.ScoredCandidate{
		Selection: models.ContractSelection{
			Ticker:          ticker,
			Strategy:        strategy,
			Structure:       structure,
			Viable:          true,
			LiquidityScore:  liquidity,
			CapitalRequired: capital,
			RiskModel:       models.RiskDebitMax,
			RiskPerContract: risk,
			Intent:          models.IntentExecutionCandidate,
		},
		PCS:            pcs,
		FilterStatus:   models.FilterValid,
		ExecutionReady: true,
	}
}

func riskOf(v float64) *float64 { return &v }

func TestPairSelectsHighestPCSPerTicker(t *testing.T) {
	a := New(testRiskConfig())
	spread := ready("AAPL", "bull call spread", models.StructureVertical, 85, 75, 450, riskOf(450))
	straddle := ready("AAPL", "long straddle", models.StructureVolatility, 81, 80, 900, riskOf(900))

	winners := a.Pair([]models.ScoredCandidate{straddle, spread})
	if len(winners) != 1 {
		t.Fatalf("winners = %d, want 1", len(winners))
	}
	if winners[0].Strategy != "bull call spread" {
		t.Errorf("winner = %q, want the higher-PCS bull call spread", winners[0].Strategy)
	}
}

func TestPairTieBreaks(t *testing.T) {
	a := New(testRiskConfig())

	t.Run("liquidity wins on equal PCS", func(t *testing.T) {
		thin := ready("MSFT", "long call", models.StructureSingleLeg, 70, 55, 400, riskOf(400))
		deep := ready("MSFT", "long put", models.StructureSingleLeg, 70, 82, 400, riskOf(400))
		winners := a.Pair([]models.ScoredCandidate{thin, deep})
		if winners[0].Strategy != "long put" {
			t.Errorf("winner = %q, want the higher-liquidity candidate", winners[0].Strategy)
		}
	})

	t.Run("lower capital wins on equal PCS and liquidity", func(t *testing.T) {
		heavy := ready("MSFT", "cash-secured put", models.StructureSingleLeg, 70, 60, 9000, riskOf(9000))
		light := ready("MSFT", "bull call spread", models.StructureVertical, 70, 60, 300, riskOf(300))
		winners := a.Pair([]models.ScoredCandidate{heavy, light})
		if winners[0].Strategy != "bull call spread" {
			t.Errorf("winner = %q, want the lower-capital candidate", winners[0].Strategy)
		}
	})
}

func TestPairExcludesNonExecutionReady(t *testing.T) {
	a := New(testRiskConfig())
	watch := ready("NVDA", "long call", models.StructureSingleLeg, 90, 80, 500, riskOf(500))
	watch.ExecutionReady = false
	watch.FilterStatus = models.FilterWatch

	winners := a.Pair([]models.ScoredCandidate{watch})
	if len(winners) != 0 {
		t.Fatalf("winners = %d, want 0 when nothing is execution-ready", len(winners))
	}
}

func TestPairBuildsSyntheticStraddle(t *testing.T) {
	a := New(testRiskConfig())
	exp := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	call := ready("TSLA", "long call", models.StructureSingleLeg, 74, 70, 600, riskOf(600))
	call.Selection.Expiration = exp
	call.Selection.Greeks = &models.Greeks{Delta: 0.5, Vega: 0.2}
	call.Selection.Legs = []models.SelectedLeg{{Type: models.Call, Side: models.SideBuy, Strike: 250}}

	put := ready("TSLA", "long put", models.StructureSingleLeg, 72, 68, 550, riskOf(550))
	put.Selection.Expiration = exp
	put.Selection.Greeks = &models.Greeks{Delta: -0.5, Vega: 0.2}
	put.Selection.Legs = []models.SelectedLeg{{Type: models.Put, Side: models.SideBuy, Strike: 250}}

	winners := a.Pair([]models.ScoredCandidate{call, put})
	if len(winners) != 1 {
		t.Fatalf("winners = %d, want 1", len(winners))
	}
	w := winners[0]
	if !strings.Contains(w.Strategy, "straddle") {
		t.Fatalf("winner = %q, want the synthetic straddle (PCS %.1f)", w.Strategy, w.PCS)
	}
	if len(w.Components) != 2 {
		t.Errorf("components = %d, want 2", len(w.Components))
	}
	if w.PCS != 78 {
		t.Errorf("composite PCS = %.2f, want mean 73 plus coverage bonus", w.PCS)
	}
	if w.LiquidityScore != 68 {
		t.Errorf("composite liquidity = %.2f, want weaker leg 68", w.LiquidityScore)
	}
	if w.CapitalRequired != 1150 {
		t.Errorf("composite capital = %.2f, want sum 1150", w.CapitalRequired)
	}
	if w.Greeks == nil || w.Greeks.Delta != 0 || w.Greeks.Vega != 0.4 {
		t.Errorf("composite Greeks = %+v, want leg-wise sum", w.Greeks)
	}
	if w.RiskPerContract == nil || *w.RiskPerContract != 1150 {
		t.Errorf("composite risk = %v, want summed 1150", w.RiskPerContract)
	}
}

func TestPairSkipsMismatchedLegs(t *testing.T) {
	a := New(testRiskConfig())
	exp := time.Date(2025, 7, 18, 0, 0, 0, 0, time.UTC)

	call := ready("TSLA", "long call", models.StructureSingleLeg, 74, 70, 600, riskOf(600))
	call.Selection.Expiration = exp
	call.Selection.Legs = []models.SelectedLeg{{Type: models.Call, Side: models.SideBuy, Strike: 250}}

	put := ready("TSLA", "long put", models.StructureSingleLeg, 72, 68, 550, riskOf(550))
	put.Selection.Expiration = exp.AddDate(0, 1, 0)
	put.Selection.Legs = []models.SelectedLeg{{Type: models.Put, Side: models.SideBuy, Strike: 250}}

	winners := a.Pair([]models.ScoredCandidate{call, put})
	if len(winners) != 1 || len(winners[0].Components) != 1 {
		t.Errorf("expiration-mismatched legs must not merge, winner = %+v", winners)
	}
}

func TestAllocateProportionalToPCS(t *testing.T) {
	a := New(config.RiskConfig{CapitalLimit: 10000})
	high := ready("AAPL", "bull call spread", models.StructureVertical, 80, 70, 450, riskOf(450))
	low := ready("MSFT", "long call", models.StructureSingleLeg, 20, 60, 300, riskOf(300))

	winners := a.Pair([]models.ScoredCandidate{high, low})
	if len(winners) != 2 {
		t.Fatalf("winners = %d, want 2", len(winners))
	}
	byTicker := map[string]models.PairedStrategy{}
	for _, w := range winners {
		byTicker[w.Ticker] = w
	}
	if got := byTicker["AAPL"].AllocatedCapital; got != 8000 {
		t.Errorf("AAPL allocation = %.2f, want 8000 (80/100 of limit)", got)
	}
	if got := byTicker["MSFT"].AllocatedCapital; got != 2000 {
		t.Errorf("MSFT allocation = %.2f, want 2000", got)
	}
	if got := byTicker["AAPL"].RecommendedContracts; got != 17 {
		t.Errorf("AAPL contracts = %d, want floor(8000/450) = 17", got)
	}
}

func TestAllocateMinimumOneContract(t *testing.T) {
	a := New(config.RiskConfig{CapitalLimit: 500})
	w := ready("AAPL", "long call", models.StructureSingleLeg, 60, 70, 800, riskOf(800))

	winners := a.Pair([]models.ScoredCandidate{w})
	if winners[0].RecommendedContracts != 1 {
		t.Errorf("contracts = %d, want minimum 1 when capital is allocated", winners[0].RecommendedContracts)
	}
}

func TestAllocateStockDependentIsManual(t *testing.T) {
	a := New(testRiskConfig())
	cc := ready("KO", "covered call", models.StructureCoveredCall, 65, 75, 6000, nil)
	cc.Selection.RiskModel = models.RiskStockDependent

	winners := a.Pair([]models.ScoredCandidate{cc})
	w := winners[0]
	if !w.ManualSizing {
		t.Error("stock-dependent risk must be flagged for manual sizing")
	}
	if w.RecommendedContracts != 0 {
		t.Errorf("contracts = %d, want 0 for manual sizing", w.RecommendedContracts)
	}
	if w.AllocatedCapital <= 0 {
		t.Error("manual sizing still receives a capital allocation")
	}
}

func TestPairOutputOrderedByTicker(t *testing.T) {
	a := New(testRiskConfig())
	candidates := []models.ScoredCandidate{
		ready("ZM", "long call", models.StructureSingleLeg, 60, 70, 300, riskOf(300)),
		ready("AAPL", "long call", models.StructureSingleLeg, 60, 70, 300, riskOf(300)),
		ready("MSFT", "long call", models.StructureSingleLeg, 60, 70, 300, riskOf(300)),
	}
	winners := a.Pair(candidates)
	want := []string{"AAPL", "MSFT", "ZM"}
	for i, w := range winners {
		if w.Ticker != want[i] {
			t.Fatalf("winners[%d] = %s, want %s", i, w.Ticker, want[i])
		}
	}
}
