// Package pipeline orchestrates a scan: tier classification, chain
// fetch, contract selection, scoring, pairing, and acceptance, in that
// order. The pipeline is a pure transformation over its input batch;
// every input candidate produces exactly one annotated result.
package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"options-scout/internal/chain"
	"options-scout/internal/config"
	scouterrors "options-scout/internal/errors"
	"options-scout/internal/gate"
	"options-scout/internal/liquidity"
	"options-scout/internal/logging"
	"options-scout/internal/models"
	"options-scout/internal/pairing"
	"options-scout/internal/prefilter"
	"options-scout/internal/selection"
	"options-scout/internal/tiers"
	"options-scout/pkg/utils"
)

// Evaluator wires the pipeline stages over a chain provider. Distinct
// tickers evaluate in parallel; each ticker's chain is fetched at most
// once per run.
type Evaluator struct {
	cfg      *config.Config
	provider chain.Provider
	log      zerolog.Logger

	tiers    *tiers.Table
	selector *selection.Selector
	filter   *prefilter.Filter
	gate     *gate.Gate
	pairer   *pairing.Allocator
	pool     *pool
	retry    utils.RetryConfig
}

// New creates an evaluator from configuration.
func New(cfg *config.Config, provider chain.Provider, log zerolog.Logger) *Evaluator {
	return newAt(cfg, provider, log, time.Now())
}

// NewAt pins the evaluator's clock, for reproducible tests.
func NewAt(cfg *config.Config, provider chain.Provider, log zerolog.Logger, now time.Time) *Evaluator {
	return newAt(cfg, provider, log, now)
}

func newAt(cfg *config.Config, provider chain.Provider, log zerolog.Logger, now time.Time) *Evaluator {
	grader := liquidity.NewGrader()
	return &Evaluator{
		cfg:      cfg,
		provider: provider,
		log:      log,
		tiers:    tiers.NewTable(cfg.Tiers.Unlocked),
		selector: selection.NewSelectorAt(grader, cfg.Scan, now),
		filter:   prefilter.New(cfg.Filter),
		gate:     gate.New(cfg.Gate),
		pairer:   pairing.New(cfg.Risk),
		pool:     newPool(cfg.Chain.Workers),
		retry:    utils.DefaultRetryConfig(),
	}
}

// tickerBatch is one ticker's slice of the input, evaluated by a single
// worker so its chain fetch happens exactly once.
type tickerBatch struct {
	ticker     string
	candidates []models.StrategyCandidate
	indices    []int // positions in the input batch

	context models.TickerContext
	results []models.AnnotatedResult
}

// Evaluate runs the full pipeline. The output has exactly one result
// per input candidate, in stable (ticker, strategy) order; repeated
// runs over identical input are reproducible.
func (e *Evaluator) Evaluate(ctx context.Context, candidates []models.StrategyCandidate) []models.AnnotatedResult {
	batches := groupByTicker(candidates)

	jobs := make([]func(context.Context), len(batches))
	for i := range batches {
		b := batches[i]
		jobs[i] = func(jctx context.Context) { e.evaluateTicker(jctx, b) }
	}
	e.pool.run(ctx, jobs)

	results := make([]models.AnnotatedResult, len(candidates))
	contexts := make(map[string]models.TickerContext, len(batches))
	var scored []models.ScoredCandidate
	for _, b := range batches {
		contexts[b.ticker] = b.context
		for i, r := range b.results {
			results[b.indices[i]] = r
			scored = append(scored, r.Scored)
		}
	}

	e.attachPairings(results, scored)

	for i := range results {
		r := &results[i]
		r.Acceptance = e.gate.Decide(r.Scored, contexts[r.Candidate.Ticker])
		logging.LogAcceptance(e.log, r.Candidate.Ticker, r.Candidate.Strategy,
			string(r.Acceptance.Status), r.Acceptance.Reason)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Candidate.Ticker != results[j].Candidate.Ticker {
			return results[i].Candidate.Ticker < results[j].Candidate.Ticker
		}
		return results[i].Candidate.Strategy < results[j].Candidate.Strategy
	})
	return results
}

// evaluateTicker runs tiering, the single chain fetch, selection, and
// scoring for one ticker. A fetch failure annotates every candidate on
// the ticker and never aborts the batch.
func (e *Evaluator) evaluateTicker(ctx context.Context, b *tickerBatch) {
	log := logging.WithTicker(e.log, b.ticker)

	start := time.Now()
	data, err := utils.RetryWithResult(ctx, e.retry, func() (*chain.TickerData, error) {
		return e.provider.Fetch(ctx, b.ticker)
	})

	var snapshot *models.ChainSnapshot
	if err != nil {
		derr := scouterrors.NewDataError(b.ticker, "chain fetch failed", err)
		logging.LogChainFetch(log, b.ticker, 0, time.Since(start), derr)
		log.Warn().Err(derr).Msg("Chain unavailable, candidates annotated")
	} else {
		snapshot = &data.Snapshot
		b.context = data.Context
		logging.LogChainFetch(log, b.ticker, len(snapshot.Quotes), time.Since(start), nil)
	}

	b.results = make([]models.AnnotatedResult, 0, len(b.candidates))
	for _, c := range b.candidates {
		b.results = append(b.results, e.evaluateCandidate(log, c, snapshot))
	}
}

func (e *Evaluator) evaluateCandidate(log zerolog.Logger, c models.StrategyCandidate, snapshot *models.ChainSnapshot) models.AnnotatedResult {
	log = logging.WithStrategy(log, c.Strategy)
	class := e.tiers.Classify(c.Strategy)

	var sel models.ContractSelection
	if !class.ExecutionReady {
		sel = models.ContractSelection{
			Ticker:    c.Ticker,
			Strategy:  c.Strategy,
			Structure: c.Structure,
			Status:    models.ExplorationTierBlocked,
			Reasons:   []string{class.Blocker},
			RiskModel: models.RiskUndefined,
			Intent:    models.IntentScan,
		}
	} else {
		sel = e.selector.Select(c, snapshot)
	}
	logging.LogSelection(log, c.Ticker, c.Strategy, string(sel.Status), sel.Viable, sel.LiquidityScore)

	sc := e.filter.Apply(sel, c.Bias)
	logging.LogPreFilter(log, c.Ticker, c.Strategy, string(sc.FilterStatus), sc.FilterReason, sc.PCS)

	return models.AnnotatedResult{
		Candidate: c,
		Tier:      class.Tier,
		Scored:    sc,
	}
}

// attachPairings runs the allocator over all scored candidates and
// points each winning component's result at its paired strategy.
func (e *Evaluator) attachPairings(results []models.AnnotatedResult, scored []models.ScoredCandidate) {
	winners := e.pairer.Pair(scored)

	type key struct{ ticker, strategy string }
	byComponent := make(map[key]*models.PairedStrategy)
	for i := range winners {
		w := &winners[i]
		for _, comp := range w.Components {
			byComponent[key{comp.Selection.Ticker, comp.Selection.Strategy}] = w
		}
	}

	for i := range results {
		r := &results[i]
		if w, ok := byComponent[key{r.Candidate.Ticker, r.Candidate.Strategy}]; ok {
			r.Paired = w
		}
	}
}

func groupByTicker(candidates []models.StrategyCandidate) []*tickerBatch {
	byTicker := make(map[string]*tickerBatch)
	var order []string
	for i, c := range candidates {
		b, ok := byTicker[c.Ticker]
		if !ok {
			b = &tickerBatch{ticker: c.Ticker}
			byTicker[c.Ticker] = b
			order = append(order, c.Ticker)
		}
		b.candidates = append(b.candidates, c)
		b.indices = append(b.indices, i)
	}

	sort.Strings(order)
	batches := make([]*tickerBatch, 0, len(order))
	for _, t := range order {
		batches = append(batches, byTicker[t])
	}
	return batches
}
