package pairing

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-scout/internal/config"
	"options-scout/internal/models"
)

func genCandidateSet() gopter.Gen {
	single := gopter.CombineGens(
		gen.IntRange(0, 19),       // ticker index
		gen.Float64Range(1, 100),  // pcs
		gen.Float64Range(0, 100),  // liquidity
		gen.Float64Range(50, 5e4), // capital
		gen.Float64Range(10, 5e3), // risk
		gen.Bool(),                // execution-ready
	).Map(func(vals []interface{}) models.ScoredCandidate {
		c := ready(
			fmt.Sprintf("TICK%02d", vals[0].(int)),
			"long call",
			models.StructureSingleLeg,
			vals[1].(float64),
			vals[2].(float64),
			vals[3].(float64),
			riskOf(vals[4].(float64)),
		)
		c.ExecutionReady = vals[5].(bool)
		if !c.ExecutionReady {
			c.FilterStatus = models.FilterWatch
		}
		return c
	})
	return gen.SliceOf(single)
}

func TestPairingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	limit := 25000.0

	properties.Property("total allocation never exceeds the capital limit", prop.ForAll(
		func(candidates []models.ScoredCandidate) bool {
			winners := New(config.RiskConfig{CapitalLimit: limit}).Pair(candidates)
			var total float64
			for _, w := range winners {
				total += w.AllocatedCapital
			}
			return total <= limit+1e-6
		},
		genCandidateSet(),
	))

	properties.Property("at most one winner per ticker", prop.ForAll(
		func(candidates []models.ScoredCandidate) bool {
			winners := New(config.RiskConfig{CapitalLimit: limit}).Pair(candidates)
			seen := make(map[string]bool)
			for _, w := range winners {
				if seen[w.Ticker] {
					return false
				}
				seen[w.Ticker] = true
			}
			return true
		},
		genCandidateSet(),
	))

	properties.Property("winner PCS is the ticker maximum", prop.ForAll(
		func(candidates []models.ScoredCandidate) bool {
			winners := New(config.RiskConfig{CapitalLimit: limit}).Pair(candidates)
			best := make(map[string]float64)
			for _, c := range candidates {
				if !c.ExecutionReady {
					continue
				}
				if c.PCS > best[c.Selection.Ticker] {
					best[c.Selection.Ticker] = c.PCS
				}
			}
			for _, w := range winners {
				// Composites can outscore standalones, never the
				// other way around.
				if w.PCS < best[w.Ticker] {
					return false
				}
			}
			return true
		},
		genCandidateSet(),
	))

	properties.Property("non-execution-ready candidates never pair", prop.ForAll(
		func(candidates []models.ScoredCandidate) bool {
			winners := New(config.RiskConfig{CapitalLimit: limit}).Pair(candidates)
			for _, w := range winners {
				for _, c := range w.Components {
					if !c.ExecutionReady {
						return false
					}
				}
			}
			return true
		},
		genCandidateSet(),
	))

	properties.TestingRun(t)
}
