package selection

import (
	"fmt"
	"time"

	"options-scout/internal/models"
)

// selectSingleLeg picks one directional contract. Short-term candidates
// get the strike nearest the underlying for the best liquidity/leverage
// balance. LEAP-range candidates must sit materially in the money to
// maximize delta capture and cut time-value bleed; that is a structural
// rule, not a tie-break.
func (s *Selector) selectSingleLeg(sel *models.ContractSelection, c models.StrategyCandidate, chain *models.ChainSnapshot, expiry time.Time) {
	if isCashSecuredPut(c.Strategy) {
		s.selectCashSecuredPut(sel, chain, expiry)
		return
	}

	typ := models.Call
	if c.Bias == models.BiasBearish {
		typ = models.Put
	}

	quotes := quotesAt(chain, expiry, typ)
	if len(quotes) == 0 {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, fmt.Sprintf("no %s quotes at selected expiration", typ))
		return
	}

	spot := chain.UnderlyingPrice
	minDTE, _ := s.window(c)

	var leg models.OptionQuote
	if minDTE >= s.cfg.LEAPMinDTE {
		depth := s.cfg.ITMDepthPercent / 100
		var threshold float64
		var found bool
		if typ == models.Call {
			threshold = spot * (1 - depth)
			// Deepest strike at or below the ITM threshold, closest to it.
			for i := len(quotes) - 1; i >= 0; i-- {
				if quotes[i].Strike <= threshold {
					leg, found = quotes[i], true
					break
				}
			}
		} else {
			threshold = spot * (1 + depth)
			for _, q := range quotes {
				if q.Strike >= threshold {
					leg, found = q, true
					break
				}
			}
		}
		if !found {
			leg, _ = nearestStrike(quotes, threshold)
			sel.Reasons = append(sel.Reasons,
				fmt.Sprintf("no strike at required %.0f%% ITM depth, nearest used", s.cfg.ITMDepthPercent))
		}
	} else {
		leg, _ = nearestStrike(quotes, spot)
	}

	mult := float64(s.cfg.ContractMultiplier)
	premium := leg.Ask * mult

	sel.Viable = true
	sel.Legs = []models.SelectedLeg{{Type: typ, Side: models.SideBuy, Strike: leg.Strike, Quote: leg}}
	sel.CapitalRequired = premium
	sel.RiskModel = models.RiskDebitMax
	sel.RiskPerContract = riskValue(premium)
}

// selectCashSecuredPut picks a short put backed by cash collateral.
func (s *Selector) selectCashSecuredPut(sel *models.ContractSelection, chain *models.ChainSnapshot, expiry time.Time) {
	puts := quotesAt(chain, expiry, models.Put)
	if len(puts) == 0 {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "no put quotes at selected expiration")
		return
	}

	spot := chain.UnderlyingPrice
	target := spot * (1 - s.cfg.OTMTargetPercent/100)
	leg, _ := nearestStrike(puts, target)

	mult := float64(s.cfg.ContractMultiplier)
	credit := leg.Bid * mult
	collateral := leg.Strike * mult

	sel.Viable = true
	sel.Legs = []models.SelectedLeg{{Type: models.Put, Side: models.SideSell, Strike: leg.Strike, Quote: leg}}
	sel.CapitalRequired = collateral
	sel.RiskModel = models.RiskCashSecured
	sel.RiskPerContract = riskValue(collateral - credit)
}

// selectCoveredCall picks a short call over an assumed stock position.
// Risk is bounded by the underlying's downside and cannot be stated as a
// fixed per-contract number, so risk stays undefined and the model is
// tagged stock-dependent. A numeric max-loss is never fabricated here.
func (s *Selector) selectCoveredCall(sel *models.ContractSelection, chain *models.ChainSnapshot, expiry time.Time) {
	calls := quotesAt(chain, expiry, models.Call)
	if len(calls) == 0 {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "no call quotes at selected expiration")
		return
	}

	spot := chain.UnderlyingPrice
	target := spot * (1 + s.cfg.OTMTargetPercent/100)
	leg, ok := nextStrikeAbove(calls, spot)
	if !ok {
		leg, _ = nearestStrike(calls, target)
		sel.Reasons = append(sel.Reasons, "no strike above spot, nearest used")
	} else if better, found := nearestStrike(calls, target); found && better.Strike > spot {
		leg = better
	}

	mult := float64(s.cfg.ContractMultiplier)

	sel.Viable = true
	sel.Legs = []models.SelectedLeg{{Type: models.Call, Side: models.SideSell, Strike: leg.Strike, Quote: leg}}
	sel.CapitalRequired = spot * mult // underlying share position per contract
	sel.RiskModel = models.RiskStockDependent
	sel.RiskPerContract = nil
	sel.Reasons = append(sel.Reasons, "risk bounded by underlying downside")
}

// selectVertical builds a two-leg spread for directional biases and a
// four-leg iron condor for a neutral bias. Both risk models are exact,
// computable per-contract values.
func (s *Selector) selectVertical(sel *models.ContractSelection, c models.StrategyCandidate, chain *models.ChainSnapshot, expiry time.Time) {
	mult := float64(s.cfg.ContractMultiplier)
	spot := chain.UnderlyingPrice

	switch c.Bias {
	case models.BiasBearish:
		puts := quotesAt(chain, expiry, models.Put)
		long, ok := nearestStrike(puts, spot)
		if !ok {
			sel.Viable = false
			sel.Reasons = append(sel.Reasons, "no put quotes at selected expiration")
			return
		}
		short, ok := nextStrikeBelow(puts, long.Strike)
		if !ok {
			sel.Viable = false
			sel.Reasons = append(sel.Reasons, "no strike below long put for spread wing")
			return
		}
		debit := (long.Ask - short.Bid) * mult
		if debit < 0 {
			debit = 0
		}
		sel.Viable = true
		sel.Legs = []models.SelectedLeg{
			{Type: models.Put, Side: models.SideBuy, Strike: long.Strike, Quote: long},
			{Type: models.Put, Side: models.SideSell, Strike: short.Strike, Quote: short},
		}
		sel.CapitalRequired = debit
		sel.RiskModel = models.RiskDebitMax
		sel.RiskPerContract = riskValue(debit)

	case models.BiasNeutral:
		s.selectIronCondor(sel, chain, expiry)

	default: // bullish and bidirectional ideas resolve to the call side
		calls := quotesAt(chain, expiry, models.Call)
		long, ok := nearestStrike(calls, spot)
		if !ok {
			sel.Viable = false
			sel.Reasons = append(sel.Reasons, "no call quotes at selected expiration")
			return
		}
		short, ok := nextStrikeAbove(calls, long.Strike)
		if !ok {
			sel.Viable = false
			sel.Reasons = append(sel.Reasons, "no strike above long call for spread wing")
			return
		}
		debit := (long.Ask - short.Bid) * mult
		if debit < 0 {
			debit = 0
		}
		sel.Viable = true
		sel.Legs = []models.SelectedLeg{
			{Type: models.Call, Side: models.SideBuy, Strike: long.Strike, Quote: long},
			{Type: models.Call, Side: models.SideSell, Strike: short.Strike, Quote: short},
		}
		sel.CapitalRequired = debit
		sel.RiskModel = models.RiskDebitMax
		sel.RiskPerContract = riskValue(debit)
	}
}

// selectIronCondor sells an out-of-the-money put spread and call spread
// around the spot. Credit-Max risk = widest wing minus total credit.
func (s *Selector) selectIronCondor(sel *models.ContractSelection, chain *models.ChainSnapshot, expiry time.Time) {
	puts := quotesAt(chain, expiry, models.Put)
	calls := quotesAt(chain, expiry, models.Call)
	if len(puts) == 0 || len(calls) == 0 {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "both call and put quotes required for condor")
		return
	}

	spot := chain.UnderlyingPrice
	otm := s.cfg.OTMTargetPercent / 100

	shortPut, _ := nearestStrike(puts, spot*(1-otm))
	longPut, okLP := nextStrikeBelow(puts, shortPut.Strike)
	shortCall, _ := nearestStrike(calls, spot*(1+otm))
	longCall, okLC := nextStrikeAbove(calls, shortCall.Strike)
	if !okLP || !okLC {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "insufficient strikes for condor wings")
		return
	}

	mult := float64(s.cfg.ContractMultiplier)
	credit := (shortPut.Bid - longPut.Ask + shortCall.Bid - longCall.Ask) * mult
	putWidth := (shortPut.Strike - longPut.Strike) * mult
	callWidth := (longCall.Strike - shortCall.Strike) * mult
	width := putWidth
	if callWidth > width {
		width = callWidth
	}
	risk := width - credit
	if risk < 0 {
		risk = 0
	}

	sel.Viable = true
	sel.Legs = []models.SelectedLeg{
		{Type: models.Put, Side: models.SideSell, Strike: shortPut.Strike, Quote: shortPut},
		{Type: models.Put, Side: models.SideBuy, Strike: longPut.Strike, Quote: longPut},
		{Type: models.Call, Side: models.SideSell, Strike: shortCall.Strike, Quote: shortCall},
		{Type: models.Call, Side: models.SideBuy, Strike: longCall.Strike, Quote: longCall},
	}
	sel.CapitalRequired = risk
	sel.RiskModel = models.RiskCreditMax
	sel.RiskPerContract = riskValue(risk)
}

// selectVolatility builds a straddle (shared strike) or strangle
// (separated strikes) from a call and a put at the same expiration.
func (s *Selector) selectVolatility(sel *models.ContractSelection, c models.StrategyCandidate, chain *models.ChainSnapshot, expiry time.Time) {
	calls := quotesAt(chain, expiry, models.Call)
	puts := quotesAt(chain, expiry, models.Put)
	if len(calls) == 0 || len(puts) == 0 {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "both call and put legs required at same expiration")
		return
	}

	spot := chain.UnderlyingPrice
	mult := float64(s.cfg.ContractMultiplier)

	var callLeg, putLeg models.OptionQuote
	if isStrangle(c.Strategy) {
		otm := s.cfg.OTMTargetPercent / 100
		callLeg, _ = nearestStrike(calls, spot*(1+otm))
		putLeg, _ = nearestStrike(puts, spot*(1-otm))
		if callLeg.Strike <= putLeg.Strike {
			sel.Reasons = append(sel.Reasons, "strikes collapsed, straddle-like structure selected")
		}
	} else {
		// Straddle: the strike nearest spot that exists on both sides.
		strike, ok := sharedStrikeNearest(calls, puts, spot)
		if !ok {
			sel.Viable = false
			sel.Reasons = append(sel.Reasons, "no shared strike for straddle legs")
			return
		}
		callLeg, _ = nearestStrike(calls, strike)
		putLeg, _ = nearestStrike(puts, strike)
	}

	premium := (callLeg.Ask + putLeg.Ask) * mult

	sel.Viable = true
	sel.Legs = []models.SelectedLeg{
		{Type: models.Call, Side: models.SideBuy, Strike: callLeg.Strike, Quote: callLeg},
		{Type: models.Put, Side: models.SideBuy, Strike: putLeg.Strike, Quote: putLeg},
	}
	sel.CapitalRequired = premium
	sel.RiskModel = models.RiskDebitMax
	sel.RiskPerContract = riskValue(premium)
}

// sharedStrikeNearest finds the strike closest to target present in both
// quote sets.
func sharedStrikeNearest(calls, puts []models.OptionQuote, target float64) (float64, bool) {
	putStrikes := make(map[float64]bool, len(puts))
	for _, p := range puts {
		putStrikes[p.Strike] = true
	}

	found := false
	var best float64
	for _, cq := range calls {
		if !putStrikes[cq.Strike] {
			continue
		}
		if !found || absDiff(cq.Strike, target) < absDiff(best, target) {
			best = cq.Strike
			found = true
		}
	}
	return best, found
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// selectCalendar handles structurally multi-expiration strategies. By
// default no selection is returned because a single-expiration component
// cannot faithfully represent the structure. With AllowMultiExpiry set, a
// far-dated single leg is returned and tagged Structure-Simplified so
// downstream stages know it approximates a true calendar.
func (s *Selector) selectCalendar(sel *models.ContractSelection, chain *models.ChainSnapshot, minDTE int) {
	if !s.cfg.AllowMultiExpiry {
		sel.Viable = false
		sel.Legs = nil
		sel.Expiration = time.Time{}
		sel.DTE = 0
		sel.Reasons = append(sel.Reasons, "multi-expiration structure cannot be represented")
		return
	}

	// Far leg only: latest expiration at or beyond the window start.
	var far time.Time
	for _, q := range chain.Quotes {
		if s.dte(q.Expiration) >= minDTE && q.Expiration.After(far) {
			far = q.Expiration
		}
	}
	if far.IsZero() {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "no far-dated expiration for calendar approximation")
		return
	}

	calls := quotesAt(chain, far, models.Call)
	leg, ok := nearestStrike(calls, chain.UnderlyingPrice)
	if !ok {
		sel.Viable = false
		sel.Reasons = append(sel.Reasons, "no call quotes at far expiration")
		return
	}

	mult := float64(s.cfg.ContractMultiplier)
	premium := leg.Ask * mult

	sel.Viable = true
	sel.Expiration = far
	sel.DTE = s.dte(far)
	sel.Legs = []models.SelectedLeg{{Type: models.Call, Side: models.SideBuy, Strike: leg.Strike, Quote: leg}}
	sel.CapitalRequired = premium
	sel.RiskModel = models.RiskDebitMax
	sel.RiskPerContract = riskValue(premium)
	sel.StructureSimplified = true
	sel.Reasons = append(sel.Reasons, "single-expiration approximation of calendar structure")
}
