// Package pairing merges compatible legs into composite structures,
// picks one winner per ticker, and sizes capital across the winning set.
package pairing

import (
	"fmt"
	"math"
	"sort"

	"options-scout/internal/config"
	"options-scout/internal/models"
)

// Allocator pairs execution-ready candidates and distributes capital
// under a hard ceiling.
type Allocator struct {
	cfg config.RiskConfig
}

// New creates an allocator with the given risk limits.
func New(cfg config.RiskConfig) *Allocator {
	return &Allocator{cfg: cfg}
}

// entry is one pairing contender: a standalone candidate or a
// synthesized composite.
type entry struct {
	strategy   string
	components []models.ScoredCandidate
	greeks     *models.Greeks
	pcs        float64
	liquidity  float64
	capital    float64
	risk       *float64
	riskModel  models.RiskModel
}

// Pair selects at most one strategy per ticker from the execution-ready
// candidates and allocates capital across the selected set in
// proportion to PCS. Non-execution-ready candidates never participate;
// they stay visible upstream in the annotated results.
func (a *Allocator) Pair(candidates []models.ScoredCandidate) []models.PairedStrategy {
	byTicker := make(map[string][]models.ScoredCandidate)
	for _, c := range candidates {
		if !c.ExecutionReady {
			continue
		}
		byTicker[c.Selection.Ticker] = append(byTicker[c.Selection.Ticker], c)
	}

	tickers := make([]string, 0, len(byTicker))
	for t := range byTicker {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	var winners []models.PairedStrategy
	for _, ticker := range tickers {
		contenders := buildEntries(byTicker[ticker])
		if len(contenders) == 0 {
			continue
		}
		winners = append(winners, pick(ticker, contenders))
	}

	a.allocate(winners)
	return winners
}

// buildEntries lists every standalone candidate plus every composite
// that compatible single legs can form.
func buildEntries(candidates []models.ScoredCandidate) []entry {
	entries := make([]entry, 0, len(candidates))
	for _, c := range candidates {
		entries = append(entries, standalone(c))
	}
	entries = append(entries, composites(candidates)...)
	return entries
}

func standalone(c models.ScoredCandidate) entry {
	return entry{
		strategy:   c.Selection.Strategy,
		components: []models.ScoredCandidate{c},
		greeks:     c.Selection.Greeks,
		pcs:        c.PCS,
		liquidity:  c.Selection.LiquidityScore,
		capital:    c.Selection.CapitalRequired,
		risk:       c.Selection.RiskPerContract,
		riskModel:  c.Selection.RiskModel,
	}
}

// compositeBonus rewards a merged straddle for covering both
// directions. Without it the mean of the leg scores can never beat the
// stronger leg and composites would be unreachable.
const compositeBonus = 5

// composites merges long single-leg calls and puts sharing strike and
// expiration into synthetic straddles. Combined Greeks are the leg-wise
// sum, combined PCS the leg mean plus a coverage bonus, liquidity the
// weaker leg.
func composites(candidates []models.ScoredCandidate) []entry {
	var out []entry
	for i, call := range candidates {
		if !isLongSingleLeg(call, models.Call) {
			continue
		}
		for j, put := range candidates {
			if i == j || !isLongSingleLeg(put, models.Put) {
				continue
			}
			if !call.Selection.Expiration.Equal(put.Selection.Expiration) {
				continue
			}
			if call.Selection.Legs[0].Strike != put.Selection.Legs[0].Strike {
				continue
			}
			out = append(out, merge(call, put))
		}
	}
	return out
}

func isLongSingleLeg(c models.ScoredCandidate, t models.OptionType) bool {
	sel := c.Selection
	if sel.Structure != models.StructureSingleLeg || len(sel.Legs) != 1 {
		return false
	}
	leg := sel.Legs[0]
	return leg.Side == models.SideBuy && leg.Type == t
}

func merge(call, put models.ScoredCandidate) entry {
	e := entry{
		strategy:   fmt.Sprintf("synthetic straddle (%s + %s)", call.Selection.Strategy, put.Selection.Strategy),
		components: []models.ScoredCandidate{call, put},
		pcs:        math.Min((call.PCS+put.PCS)/2+compositeBonus, 100),
		liquidity:  math.Min(call.Selection.LiquidityScore, put.Selection.LiquidityScore),
		capital:    call.Selection.CapitalRequired + put.Selection.CapitalRequired,
		riskModel:  models.RiskDebitMax,
	}
	if call.Selection.Greeks != nil && put.Selection.Greeks != nil {
		g := call.Selection.Greeks.Add(*put.Selection.Greeks)
		e.greeks = &g
	}
	if call.Selection.RiskPerContract != nil && put.Selection.RiskPerContract != nil {
		risk := *call.Selection.RiskPerContract + *put.Selection.RiskPerContract
		e.risk = &risk
	}
	return e
}

// pick chooses the best contender: highest PCS, then higher liquidity,
// then lower capital requirement. The final strategy-name comparison
// only keeps the ordering stable for identical twins.
func pick(ticker string, contenders []entry) models.PairedStrategy {
	sort.Slice(contenders, func(i, j int) bool {
		a, b := contenders[i], contenders[j]
		if a.pcs != b.pcs {
			return a.pcs > b.pcs
		}
		if a.liquidity != b.liquidity {
			return a.liquidity > b.liquidity
		}
		if a.capital != b.capital {
			return a.capital < b.capital
		}
		return a.strategy < b.strategy
	})
	best := contenders[0]

	return models.PairedStrategy{
		Ticker:          ticker,
		Strategy:        best.strategy,
		Components:      best.components,
		Greeks:          best.greeks,
		PCS:             best.pcs,
		LiquidityScore:  best.liquidity,
		CapitalRequired: best.capital,
		RiskPerContract: best.risk,
		ManualSizing:    best.riskModel == models.RiskStockDependent,
	}
}

// allocate distributes the capital limit across winners in proportion
// to PCS. The proportional split sums to the limit exactly, so the
// ceiling holds by construction.
func (a *Allocator) allocate(winners []models.PairedStrategy) {
	var total float64
	for _, w := range winners {
		total += w.PCS
	}
	if total <= 0 {
		return
	}

	for i := range winners {
		w := &winners[i]
		w.AllocatedCapital = a.cfg.CapitalLimit * w.PCS / total

		if w.ManualSizing || w.RiskPerContract == nil || *w.RiskPerContract <= 0 {
			continue
		}
		contracts := int(math.Floor(w.AllocatedCapital / *w.RiskPerContract))
		if contracts < 1 && w.AllocatedCapital > 0 {
			contracts = 1
		}
		w.RecommendedContracts = contracts
	}
}
