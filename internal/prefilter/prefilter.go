// Package prefilter rescales structural quality into a PCS score and
// applies deterministic threshold classification.
//
// Scoring and filtering are independent: the PCS score blends liquidity
// with Greek alignment, while Valid/Watch/Rejected comes from fixed
// threshold logic. Strict mode re-uses the same algorithm with the
// liquidity floor multiplied up and the spread ceiling multiplied down.
package prefilter

import (
	"fmt"
	"math"

	"options-scout/internal/config"
	"options-scout/internal/models"
)

// Strict-mode factors applied to the configured thresholds.
const (
	strictFloorFactor   = 1.25
	strictCeilingFactor = 0.8
)

// Greek-alignment tuning. Missing Greek data always contributes zero,
// never a deduction.
const (
	deltaFullAlignment = 0.6  // |delta| at which directional reward saturates
	deltaWeakThreshold = 0.15 // below this the directional signal is weak
	vegaFullReward     = 0.25
	vegaWeakThreshold  = 0.05
	neutralDeltaBand   = 0.3
)

// Filter classifies scored selections against configured thresholds.
type Filter struct {
	cfg config.FilterConfig
}

// New creates a pre-filter with the given thresholds.
func New(cfg config.FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// thresholds returns the effective floor and ceiling, tightened under
// strict mode.
func (f *Filter) thresholds() (floor, ceiling float64) {
	floor = f.cfg.LiquidityFloor
	ceiling = f.cfg.SpreadCeilingPercent
	if f.cfg.StrictMode {
		floor = math.Min(floor*strictFloorFactor, 100)
		ceiling = ceiling * strictCeilingFactor
	}
	return floor, ceiling
}

// Apply recalibrates a selection into a ScoredCandidate. The selection
// itself is annotated, never dropped: non-viable selections score zero
// and land in Watch with the exploration reason attached.
func (f *Filter) Apply(sel models.ContractSelection, bias models.Bias) models.ScoredCandidate {
	sc := models.ScoredCandidate{Selection: sel}

	if !sel.Viable {
		sc.PCS = 0
		sc.FilterStatus = models.FilterWatch
		sc.FilterReason = "no viable selection"
		if len(sel.Reasons) > 0 {
			sc.FilterReason = sel.Reasons[0]
		}
		return sc
	}

	sc.PCS = f.score(sel, bias)
	sc.FilterStatus, sc.FilterReason = f.classify(sel)

	if sc.FilterStatus == models.FilterValid {
		sc.ExecutionReady = true
		sc.Selection.Intent = models.IntentExecutionCandidate
	}
	return sc
}

// score starts from the liquidity score and applies a structural-fit
// adjustment from the aggregated Greeks.
func (f *Filter) score(sel models.ContractSelection, bias models.Bias) float64 {
	score := sel.LiquidityScore + f.structuralAdjustment(sel, bias)
	return clamp(score, 0, 100)
}

func (f *Filter) structuralAdjustment(sel models.ContractSelection, bias models.Bias) float64 {
	if sel.Greeks == nil {
		return 0
	}
	g := *sel.Greeks

	switch sel.Structure {
	case models.StructureSingleLeg, models.StructureVertical, models.StructureCoveredCall:
		if bias == models.BiasNeutral {
			// Neutral structures (condors) reward delta near zero.
			adj := 15 * (1 - math.Min(math.Abs(g.Delta)/neutralDeltaBand, 1))
			if math.Abs(g.Delta) > neutralDeltaBand {
				adj -= 10
			}
			return adj
		}
		aligned := g.Delta
		if bias == models.BiasBearish {
			aligned = -g.Delta
		}
		adj := 25 * clamp(aligned/deltaFullAlignment, -1, 1)
		if math.Abs(aligned) < deltaWeakThreshold {
			adj -= 10
		}
		return adj

	case models.StructureVolatility:
		adj := 20 * math.Min(g.Vega/vegaFullReward, 1)
		if g.Vega < vegaWeakThreshold {
			adj -= 10
		}
		return adj

	case models.StructureCalendar:
		// Simplified calendars carry no special Greek profile.
		return 0

	default:
		return 0
	}
}

// classify is pure threshold logic, evaluated in a fixed order: the DTE
// minimum rejects outright, then any soft violation demotes to Watch.
// Watch is never silently promoted to Valid.
func (f *Filter) classify(sel models.ContractSelection) (models.PreFilterStatus, string) {
	floor, ceiling := f.thresholds()

	if sel.DTE < f.cfg.MinDTE {
		return models.FilterRejected,
			fmt.Sprintf("DTE %d below minimum %d", sel.DTE, f.cfg.MinDTE)
	}
	if sel.SpreadPercent > ceiling {
		return models.FilterWatch,
			fmt.Sprintf("spread %.1f%% above ceiling %.1f%%", sel.SpreadPercent, ceiling)
	}
	if sel.LiquidityScore < floor {
		return models.FilterWatch,
			fmt.Sprintf("liquidity %.1f below floor %.1f", sel.LiquidityScore, floor)
	}
	if sel.StructureSimplified {
		return models.FilterWatch, "structure simplified from multi-expiration original"
	}
	return models.FilterValid, "all thresholds satisfied"
}

func clamp(value, minVal, maxVal float64) float64 {
	if value < minVal {
		return minVal
	}
	if value > maxVal {
		return maxVal
	}
	return value
}
