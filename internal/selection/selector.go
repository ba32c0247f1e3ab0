// Package selection picks concrete strikes and expirations for a
// strategy structure over a chain snapshot.
//
// The selector never rejects. Every attempt returns an annotated
// ContractSelection: a missing chain, an empty DTE window, or an
// unrepresentable structure are visible terminal states, not exceptions.
package selection

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"options-scout/internal/config"
	"options-scout/internal/liquidity"
	"options-scout/internal/models"
)

// Selector explores option chains for concrete contract selections.
type Selector struct {
	grader *liquidity.Grader
	cfg    config.ScanConfig
	now    func() time.Time
}

// NewSelector creates a selector using the given grader and scan config.
func NewSelector(grader *liquidity.Grader, cfg config.ScanConfig) *Selector {
	return &Selector{
		grader: grader,
		cfg:    cfg,
		now:    time.Now,
	}
}

// NewSelectorAt creates a selector with a fixed clock, for deterministic
// replay and tests.
func NewSelectorAt(grader *liquidity.Grader, cfg config.ScanConfig, now time.Time) *Selector {
	return &Selector{
		grader: grader,
		cfg:    cfg,
		now:    func() time.Time { return now },
	}
}

// Select explores the chain for one candidate and returns an annotated
// selection. The result always carries an exploration status and a
// viability flag; strikes, liquidity, and capital are filled in whenever
// a concrete selection exists.
func (s *Selector) Select(c models.StrategyCandidate, chain *models.ChainSnapshot) models.ContractSelection {
	sel := models.ContractSelection{
		Ticker:    c.Ticker,
		Strategy:  c.Strategy,
		Structure: c.Structure,
		Status:    models.ExplorationDiscovered,
		RiskModel: models.RiskUndefined,
		Intent:    models.IntentScan,
	}

	if chain == nil || len(chain.Quotes) == 0 {
		sel.Status = models.ExplorationNoChains
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "no option chains available")
		return sel
	}

	minDTE, maxDTE := s.window(c)

	expiry, ok := s.pickExpiration(chain, minDTE, maxDTE)
	if !ok {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons,
			fmt.Sprintf("no expirations within %d-%d DTE window", minDTE, maxDTE))
		return sel
	}
	sel.Expiration = expiry
	sel.DTE = s.dte(expiry)

	switch c.Structure {
	case models.StructureSingleLeg:
		s.selectSingleLeg(&sel, c, chain, expiry)
	case models.StructureCoveredCall:
		s.selectCoveredCall(&sel, chain, expiry)
	case models.StructureVertical:
		s.selectVertical(&sel, c, chain, expiry)
	case models.StructureVolatility:
		s.selectVolatility(&sel, c, chain, expiry)
	case models.StructureCalendar:
		s.selectCalendar(&sel, chain, minDTE)
	default:
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, fmt.Sprintf("unknown structure type %q", c.Structure))
		return sel
	}

	s.finalize(&sel)
	return sel
}

// window returns the candidate's target DTE window, falling back to the
// configured defaults when the candidate carries none.
func (s *Selector) window(c models.StrategyCandidate) (int, int) {
	minDTE, maxDTE := c.MinDTE, c.MaxDTE
	if maxDTE <= 0 {
		minDTE, maxDTE = s.cfg.MinDTE, s.cfg.MaxDTE
	}
	if minDTE > maxDTE {
		minDTE = maxDTE
	}
	return minDTE, maxDTE
}

func (s *Selector) dte(expiry time.Time) int {
	d := int(expiry.Sub(s.now()).Hours() / 24)
	if d < 0 {
		return 0
	}
	return d
}

// pickExpiration chooses the in-window expiration closest to the window
// midpoint. Ties resolve to the earlier expiration for determinism.
func (s *Selector) pickExpiration(chain *models.ChainSnapshot, minDTE, maxDTE int) (time.Time, bool) {
	seen := make(map[time.Time]bool)
	var candidates []time.Time
	for _, q := range chain.Quotes {
		if seen[q.Expiration] {
			continue
		}
		seen[q.Expiration] = true
		d := s.dte(q.Expiration)
		if d >= minDTE && d <= maxDTE {
			candidates = append(candidates, q.Expiration)
		}
	}
	if len(candidates) == 0 {
		return time.Time{}, false
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	mid := float64(minDTE+maxDTE) / 2
	best := candidates[0]
	bestDist := math.Abs(float64(s.dte(best)) - mid)
	for _, e := range candidates[1:] {
		if dist := math.Abs(float64(s.dte(e)) - mid); dist < bestDist {
			best, bestDist = e, dist
		}
	}
	return best, true
}

// quotesAt returns the quotes of one type at an expiration, sorted by strike.
func quotesAt(chain *models.ChainSnapshot, expiry time.Time, typ models.OptionType) []models.OptionQuote {
	var out []models.OptionQuote
	for _, q := range chain.Quotes {
		if q.Type == typ && q.Expiration.Equal(expiry) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// nearestStrike returns the quote whose strike is closest to target.
func nearestStrike(quotes []models.OptionQuote, target float64) (models.OptionQuote, bool) {
	if len(quotes) == 0 {
		return models.OptionQuote{}, false
	}
	best := quotes[0]
	for _, q := range quotes[1:] {
		if math.Abs(q.Strike-target) < math.Abs(best.Strike-target) {
			best = q
		}
	}
	return best, true
}

// nextStrikeAbove returns the lowest-strike quote strictly above the given strike.
func nextStrikeAbove(quotes []models.OptionQuote, strike float64) (models.OptionQuote, bool) {
	for _, q := range quotes {
		if q.Strike > strike {
			return q, true
		}
	}
	return models.OptionQuote{}, false
}

// nextStrikeBelow returns the highest-strike quote strictly below the given strike.
func nextStrikeBelow(quotes []models.OptionQuote, strike float64) (models.OptionQuote, bool) {
	for i := len(quotes) - 1; i >= 0; i-- {
		if quotes[i].Strike < strike {
			return quotes[i], true
		}
	}
	return models.OptionQuote{}, false
}

// finalize fills in liquidity, spread, Greeks, and capital class for a
// selection that picked concrete legs.
func (s *Selector) finalize(sel *models.ContractSelection) {
	if len(sel.Legs) == 0 {
		return
	}

	worstScore := math.MaxFloat64
	worstSpread := 0.0
	greeks := models.Greeks{}
	greeksComplete := true

	for _, leg := range sel.Legs {
		score, _ := s.grader.ScoreQuote(leg.Quote, sel.DTE)
		if score < worstScore {
			worstScore = score
		}
		if sp := leg.Quote.SpreadPercent(); sp > worstSpread {
			worstSpread = sp
		}
		if leg.Quote.Greeks == nil {
			greeksComplete = false
			continue
		}
		legGreeks := *leg.Quote.Greeks
		if leg.Side == models.SideSell {
			legGreeks = models.Greeks{
				Delta: -legGreeks.Delta,
				Gamma: -legGreeks.Gamma,
				Vega:  -legGreeks.Vega,
				Theta: -legGreeks.Theta,
			}
		}
		greeks = greeks.Add(legGreeks)
	}

	sel.LiquidityScore = worstScore
	sel.LiquidityGrade = liquidity.GradeFor(worstScore)
	sel.SpreadPercent = worstSpread
	if greeksComplete {
		g := greeks
		sel.Greeks = &g
	}
	sel.CapitalClass = capitalClassFor(sel.CapitalRequired)
}

func capitalClassFor(capital float64) models.CapitalClass {
	switch {
	case capital < 1000:
		return models.CapitalLight
	case capital < 5000:
		return models.CapitalModerate
	case capital < 25000:
		return models.CapitalHeavy
	default:
		return models.CapitalElite
	}
}

func isCashSecuredPut(strategy string) bool {
	name := strings.ToLower(strategy)
	return strings.Contains(name, "cash-secured") || strings.Contains(name, "cash secured")
}

func isStrangle(strategy string) bool {
	return strings.Contains(strings.ToLower(strategy), "strangle")
}

func riskValue(v float64) *float64 {
	return &v
}
