package prefilter

import (
	"strings"
	"testing"

	"options-scout/internal/config"
	"options-scout/internal/models"
)

func defaultFilterConfig() config.FilterConfig {
	return config.FilterConfig{
		MinDTE:               5,
		LiquidityFloor:       40,
		SpreadCeilingPercent: 10,
	}
}

func viableSelection(liquidity, spread float64, dte int, greeks *models.Greeks) models.ContractSelection {
	return models.ContractSelection{
		Ticker:         "AAPL",
		Strategy:       "long call",
		Structure:      models.StructureSingleLeg,
		Status:         models.ExplorationDiscovered,
		Viable:         true,
		DTE:            dte,
		LiquidityScore: liquidity,
		SpreadPercent:  spread,
		Greeks:         greeks,
		Intent:         models.IntentScan,
	}
}

func TestApplyValidPromotesIntent(t *testing.T) {
	f := New(defaultFilterConfig())
	sel := viableSelection(80, 3, 30, &models.Greeks{Delta: 0.55, Vega: 0.1})

	sc := f.Apply(sel, models.BiasBullish)
	if sc.FilterStatus != models.FilterValid {
		t.Fatalf("status = %s, want VALID (%s)", sc.FilterStatus, sc.FilterReason)
	}
	if !sc.ExecutionReady {
		t.Error("valid candidate should be execution-ready")
	}
	if sc.Selection.Intent != models.IntentExecutionCandidate {
		t.Errorf("intent = %s, want EXECUTION_CANDIDATE", sc.Selection.Intent)
	}
}

func TestApplyRejectsShortDTEWithNamedReason(t *testing.T) {
	f := New(defaultFilterConfig())
	sel := viableSelection(90, 2, 3, &models.Greeks{Delta: 0.6})

	sc := f.Apply(sel, models.BiasBullish)
	if sc.FilterStatus != models.FilterRejected {
		t.Fatalf("status = %s, want REJECTED", sc.FilterStatus)
	}
	if !strings.Contains(sc.FilterReason, "DTE") {
		t.Errorf("reason %q should name DTE", sc.FilterReason)
	}
}

func TestApplyWatchOnThresholds(t *testing.T) {
	f := New(defaultFilterConfig())

	tests := []struct {
		name      string
		selection models.ContractSelection
		wantIn    string
	}{
		{
			name:      "wide spread",
			selection: viableSelection(80, 15, 30, nil),
			wantIn:    "spread",
		},
		{
			name:      "thin liquidity",
			selection: viableSelection(25, 3, 30, nil),
			wantIn:    "liquidity",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := f.Apply(tt.selection, models.BiasBullish)
			if sc.FilterStatus != models.FilterWatch {
				t.Fatalf("status = %s, want WATCH", sc.FilterStatus)
			}
			if !strings.Contains(sc.FilterReason, tt.wantIn) {
				t.Errorf("reason %q should mention %q", sc.FilterReason, tt.wantIn)
			}
			if sc.ExecutionReady {
				t.Error("watch candidate must not be execution-ready")
			}
		})
	}
}

func TestApplySimplifiedStructureIsWatch(t *testing.T) {
	f := New(defaultFilterConfig())
	sel := viableSelection(85, 2, 60, &models.Greeks{Delta: 0.5})
	sel.Structure = models.StructureCalendar
	sel.StructureSimplified = true

	sc := f.Apply(sel, models.BiasNeutral)
	if sc.FilterStatus != models.FilterWatch {
		t.Fatalf("status = %s, want WATCH", sc.FilterStatus)
	}
	if !strings.Contains(sc.FilterReason, "simplified") {
		t.Errorf("reason %q should mention simplification", sc.FilterReason)
	}
}

func TestApplyNonViableIsWatchWithSelectionReason(t *testing.T) {
	f := New(defaultFilterConfig())
	sel := models.ContractSelection{
		Ticker:   "XYZ",
		Strategy: "long call",
		Status:   models.ExplorationNoChains,
		Viable:   false,
		Reasons:  []string{"option chain unavailable"},
	}

	sc := f.Apply(sel, models.BiasBullish)
	if sc.FilterStatus != models.FilterWatch {
		t.Fatalf("status = %s, want WATCH", sc.FilterStatus)
	}
	if sc.PCS != 0 {
		t.Errorf("PCS = %.2f, want 0 for non-viable selection", sc.PCS)
	}
	if sc.FilterReason != "option chain unavailable" {
		t.Errorf("reason = %q, want the selection's own reason", sc.FilterReason)
	}
}

func TestStrictModeTightensThresholds(t *testing.T) {
	cfg := defaultFilterConfig()
	cfg.StrictMode = true
	strict := New(cfg)
	relaxed := New(defaultFilterConfig())

	// Liquidity 45 clears the relaxed floor of 40 but not the strict
	// floor of 50; spread 9 clears 10 but not 8.
	sel := viableSelection(45, 3, 30, &models.Greeks{Delta: 0.6})
	if got := relaxed.Apply(sel, models.BiasBullish).FilterStatus; got != models.FilterValid {
		t.Fatalf("relaxed status = %s, want VALID", got)
	}
	if got := strict.Apply(sel, models.BiasBullish).FilterStatus; got != models.FilterWatch {
		t.Errorf("strict status = %s, want WATCH", got)
	}

	sel = viableSelection(80, 9, 30, &models.Greeks{Delta: 0.6})
	if got := strict.Apply(sel, models.BiasBullish).FilterStatus; got != models.FilterWatch {
		t.Errorf("strict status for 9%% spread = %s, want WATCH", got)
	}
}

func TestMissingGreeksScoreNeutral(t *testing.T) {
	f := New(defaultFilterConfig())
	sel := viableSelection(72, 3, 30, nil)

	sc := f.Apply(sel, models.BiasBullish)
	if sc.PCS != 72 {
		t.Errorf("PCS = %.2f, want liquidity score unchanged when Greeks missing", sc.PCS)
	}
}

func TestBearishBiasRewardsNegativeDelta(t *testing.T) {
	f := New(defaultFilterConfig())
	put := viableSelection(70, 3, 30, &models.Greeks{Delta: -0.55})
	call := viableSelection(70, 3, 30, &models.Greeks{Delta: 0.55})

	putScore := f.Apply(put, models.BiasBearish).PCS
	callScore := f.Apply(call, models.BiasBearish).PCS
	if putScore <= callScore {
		t.Errorf("bearish put PCS %.2f should exceed bearish call PCS %.2f", putScore, callScore)
	}
}

func TestVolatilityStructureRewardsVega(t *testing.T) {
	f := New(defaultFilterConfig())
	rich := viableSelection(70, 3, 30, &models.Greeks{Vega: 0.4})
	rich.Structure = models.StructureVolatility
	poor := viableSelection(70, 3, 30, &models.Greeks{Vega: 0.01})
	poor.Structure = models.StructureVolatility

	richScore := f.Apply(rich, models.BiasBidirectional).PCS
	poorScore := f.Apply(poor, models.BiasBidirectional).PCS
	if richScore <= poorScore {
		t.Errorf("high-vega PCS %.2f should exceed low-vega PCS %.2f", richScore, poorScore)
	}
}
