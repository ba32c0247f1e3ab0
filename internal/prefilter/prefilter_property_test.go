package prefilter

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-scout/internal/models"
)

func genViableSelection() gopter.Gen {
	return gopter.CombineGens(
		gen.Float64Range(0, 100),  // liquidity
		gen.Float64Range(0, 40),   // spread percent
		gen.IntRange(0, 500),      // dte
		gen.Float64Range(-1, 1),   // delta
		gen.Float64Range(0, 0.6),  // vega
		gen.Bool(),                // greeks present
	).Map(func(vals []interface{}) models.ContractSelection {
		sel := viableSelection(
			vals[0].(float64),
			vals[1].(float64),
			vals[2].(int),
			nil,
		)
		if vals[5].(bool) {
			sel.Greeks = &models.Greeks{Delta: vals[3].(float64), Vega: vals[4].(float64)}
		}
		return sel
	})
}

func genBias() gopter.Gen {
	return gen.OneConstOf(
		models.BiasBullish,
		models.BiasBearish,
		models.BiasNeutral,
		models.BiasBidirectional,
	)
}

func TestPreFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("PCS stays within [0, 100]", prop.ForAll(
		func(sel models.ContractSelection, bias models.Bias) bool {
			sc := New(defaultFilterConfig()).Apply(sel, bias)
			return sc.PCS >= 0 && sc.PCS <= 100
		},
		genViableSelection(),
		genBias(),
	))

	properties.Property("classification is deterministic", prop.ForAll(
		func(sel models.ContractSelection, bias models.Bias) bool {
			f := New(defaultFilterConfig())
			a := f.Apply(sel, bias)
			b := f.Apply(sel, bias)
			return a.FilterStatus == b.FilterStatus && a.PCS == b.PCS && a.FilterReason == b.FilterReason
		},
		genViableSelection(),
		genBias(),
	))

	properties.Property("only Valid candidates are execution-ready", prop.ForAll(
		func(sel models.ContractSelection, bias models.Bias) bool {
			sc := New(defaultFilterConfig()).Apply(sel, bias)
			if sc.FilterStatus == models.FilterValid {
				return sc.ExecutionReady && sc.Selection.Intent == models.IntentExecutionCandidate
			}
			return !sc.ExecutionReady && sc.Selection.Intent == models.IntentScan
		},
		genViableSelection(),
		genBias(),
	))

	properties.Property("strict mode never admits what relaxed rejects", prop.ForAll(
		func(sel models.ContractSelection, bias models.Bias) bool {
			relaxed := New(defaultFilterConfig()).Apply(sel, bias)
			strictCfg := defaultFilterConfig()
			strictCfg.StrictMode = true
			strict := New(strictCfg).Apply(sel, bias)
			if relaxed.FilterStatus == models.FilterValid {
				return true
			}
			// Anything Watch or Rejected under relaxed thresholds must
			// not become Valid under strict ones.
			return strict.FilterStatus != models.FilterValid
		},
		genViableSelection(),
		genBias(),
	))

	properties.TestingRun(t)
}
