// Package liquidity grades how tradable a contract is from open
// interest, spread, volume, and time to expiration.
//
// The grader classifies, it never rejects: it feeds a discovery stage
// whose contract is "everything surfaced, nothing silently dropped".
// Scores stay descriptive for wide-spread-but-liquid contracts; very low
// scores are reserved for genuinely illiquid structures.
package liquidity

import "options-scout/internal/models"

// Inputs are the observable liquidity signals for one contract.
type Inputs struct {
	OpenInterest int64
	SpreadPercent float64 // bid/ask spread as percent of mid
	Volume       int64
	DTE          int
}

// Weights control the blend of the component scores. VolumeDecayDTE sets
// how fast volume's weight fades as expiration moves out: zero volume is
// structurally normal for long-dated contracts, so its weight shrinks
// instead of dragging the score down.
type Weights struct {
	OpenInterest   float64
	Spread         float64
	Volume         float64
	VolumeDecayDTE float64

	// Saturation midpoints for the component curves.
	OIMidpoint     float64
	SpreadMidpoint float64
	VolumeMidpoint float64
}

// DefaultWeights returns the default grading weights.
func DefaultWeights() Weights {
	return Weights{
		OpenInterest:   0.45,
		Spread:         0.35,
		Volume:         0.20,
		VolumeDecayDTE: 90,
		OIMidpoint:     800,
		SpreadMidpoint: 10,
		VolumeMidpoint: 500,
	}
}

// Grader computes liquidity scores and grades.
type Grader struct {
	weights Weights
}

// NewGrader creates a grader with the default weights.
func NewGrader() *Grader {
	return &Grader{weights: DefaultWeights()}
}

// NewGraderWithWeights creates a grader with custom weights.
func NewGraderWithWeights(weights Weights) *Grader {
	return &Grader{weights: weights}
}

// Score computes a liquidity score in [0,100] and its grade.
//
// The score is a weighted average of three saturating components:
// open interest (monotone rising), spread (monotone falling), and volume
// (monotone rising, with a weight that decays as DTE grows). Because the
// average is renormalized over the active weights, a zero-volume
// long-dated contract scores strictly higher than a zero-volume
// short-dated one with identical open interest and spread.
func (g *Grader) Score(in Inputs) (float64, models.LiquidityGrade) {
	w := g.weights

	dte := in.DTE
	if dte < 1 {
		dte = 1
	}
	oi := float64(in.OpenInterest)
	if oi < 0 {
		oi = 0
	}
	vol := float64(in.Volume)
	if vol < 0 {
		vol = 0
	}
	spread := in.SpreadPercent
	if spread < 0 {
		spread = 0
	}

	oiComponent := 100 * oi / (oi + w.OIMidpoint)
	spreadComponent := 100 / (1 + spread/w.SpreadMidpoint)
	volumeComponent := 100 * vol / (vol + w.VolumeMidpoint)

	volumeWeight := w.Volume / (1 + float64(dte)/w.VolumeDecayDTE)

	totalWeight := w.OpenInterest + w.Spread + volumeWeight
	score := (w.OpenInterest*oiComponent + w.Spread*spreadComponent + volumeWeight*volumeComponent) / totalWeight

	score = clamp(score, 0, 100)
	return score, GradeFor(score)
}

// GradeFor maps a numeric score to its descriptive grade. The grade is
// always derived from the score, never computed independently.
func GradeFor(score float64) models.LiquidityGrade {
	switch {
	case score >= 85:
		return models.GradeExcellent
	case score >= 70:
		return models.GradeGood
	case score >= 50:
		return models.GradeAcceptable
	case score >= 30:
		return models.GradeThin
	default:
		return models.GradeIlliquid
	}
}

// ScoreQuote grades a single option quote as of now.
func (g *Grader) ScoreQuote(q models.OptionQuote, dte int) (float64, models.LiquidityGrade) {
	return g.Score(Inputs{
		OpenInterest:  q.OpenInterest,
		SpreadPercent: q.SpreadPercent(),
		Volume:        q.Volume,
		DTE:           dte,
	})
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
