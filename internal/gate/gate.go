// Package gate is the terminal state machine of the scan. Every scored
// candidate ends in exactly one acceptance state; the gate never drops
// a row and never compares a strategy to its siblings.
package gate

import (
	"fmt"

	"options-scout/internal/config"
	"options-scout/internal/models"
	"options-scout/pkg/utils"
)

// Confidence band cutoffs over PCS.
const (
	bandHighFloor   = 75
	bandMediumFloor = 50
)

// Gate decides the final acceptance status for scored candidates.
type Gate struct {
	cfg    config.GateConfig
	regime *RegimeClassifier
}

// New creates a gate with the given thresholds.
func New(cfg config.GateConfig) *Gate {
	return &Gate{cfg: cfg, regime: NewRegimeClassifier(cfg)}
}

// Regime exposes the gate's stress classifier for reporting.
func (g *Gate) Regime() *RegimeClassifier {
	return g.regime
}

// TickerGate evaluates the ticker-level conditions once. The result is
// applied to every strategy on the ticker identically; per-strategy
// data never influences it.
func (g *Gate) TickerGate(ctx models.TickerContext) (blocked bool, reason string) {
	if ctx.IVHistoryDays < g.cfg.RequiredIVHistoryDays {
		return true, fmt.Sprintf("IV history %d of required %d days",
			ctx.IVHistoryDays, g.cfg.RequiredIVHistoryDays)
	}
	if !ctx.IVRankAvailable {
		return true, "IV rank unavailable"
	}
	if g.regime.Halted(ctx.StressIndex) {
		return true, fmt.Sprintf("market stress halt, %s", g.regime.Describe(ctx.StressIndex))
	}
	if utils.WithinWindow(ctx.DaysToEarnings, g.cfg.EarningsWindowDays) {
		return true, fmt.Sprintf("earnings in %d days, inside %d-day window",
			*ctx.DaysToEarnings, g.cfg.EarningsWindowDays)
	}
	return false, ""
}

// Decide maps one scored candidate and its ticker context to a terminal
// acceptance record. Rationale text references only the candidate's own
// data.
func (g *Gate) Decide(sc models.ScoredCandidate, ctx models.TickerContext) models.AcceptanceRecord {
	sel := sc.Selection

	// Structural failures are terminal regardless of ticker state,
	// except tier blocks, which clear when the tier is unlocked.
	if sel.Status == models.ExplorationTierBlocked {
		return record(models.StatusWait, firstReason(sel.Reasons, "strategy tier not approved"), sc.PCS)
	}
	if sel.Status == models.ExplorationNoChains {
		return record(models.StatusIncomplete, firstReason(sel.Reasons, "option chain unavailable"), sc.PCS)
	}
	if !sel.Viable {
		return record(models.StatusIncomplete, firstReason(sel.Reasons, "no viable contract selection"), sc.PCS)
	}
	if sc.FilterStatus == models.FilterRejected {
		return record(models.StatusIncomplete, sc.FilterReason, sc.PCS)
	}

	if blocked, reason := g.TickerGate(ctx); blocked {
		return record(models.StatusWait, reason, sc.PCS)
	}

	if sc.PCS < g.cfg.ExecutionFloor {
		return record(models.StatusAvoid,
			fmt.Sprintf("PCS %.1f below execution floor %.1f", sc.PCS, g.cfg.ExecutionFloor), sc.PCS)
	}

	if sc.FilterStatus == models.FilterWatch {
		return record(models.StatusStructurallyReady, sc.FilterReason, sc.PCS)
	}

	return record(models.StatusReadyNow, "all gates passed", sc.PCS)
}

func record(status models.AcceptanceStatus, reason string, pcs float64) models.AcceptanceRecord {
	return models.AcceptanceRecord{Status: status, Reason: reason, Band: bandFor(pcs)}
}

func bandFor(pcs float64) models.ConfidenceBand {
	switch {
	case pcs >= bandHighFloor:
		return models.BandHigh
	case pcs >= bandMediumFloor:
		return models.BandMedium
	default:
		return models.BandLow
	}
}

func firstReason(reasons []string, fallback string) string {
	if len(reasons) > 0 {
		return reasons[0]
	}
	return fallback
}
