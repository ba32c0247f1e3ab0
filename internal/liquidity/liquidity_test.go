package liquidity

import (
	"testing"

	"options-scout/internal/models"
)

func TestScoreWorkedExamples(t *testing.T) {
	g := NewGrader()

	tests := []struct {
		name  string
		in    Inputs
		above float64
	}{
		{
			name:  "active front-month contract",
			in:    Inputs{OpenInterest: 5000, SpreadPercent: 2, Volume: 1000, DTE: 30},
			above: 80,
		},
		{
			name:  "quiet mid-dated contract stays descriptive",
			in:    Inputs{OpenInterest: 500, SpreadPercent: 5, Volume: 0, DTE: 120},
			above: 40,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := g.Score(tt.in)
			if score <= tt.above {
				t.Errorf("Score(%+v) = %.2f, want > %.2f", tt.in, score, tt.above)
			}
		})
	}
}

func TestZeroVolumeLEAPOutscoresShortDated(t *testing.T) {
	g := NewGrader()

	shortDated, _ := g.Score(Inputs{OpenInterest: 1200, SpreadPercent: 6, Volume: 0, DTE: 21})
	leap, _ := g.Score(Inputs{OpenInterest: 1200, SpreadPercent: 6, Volume: 0, DTE: 420})

	if leap <= shortDated {
		t.Errorf("LEAP score %.2f not strictly above short-dated score %.2f", leap, shortDated)
	}
}

func TestWideSpreadButLiquidIsNotPunitive(t *testing.T) {
	g := NewGrader()

	// Elite underlyings trade wide but deep; the score must stay
	// descriptive rather than collapsing toward zero.
	score, grade := g.Score(Inputs{OpenInterest: 10000, SpreadPercent: 12, Volume: 50, DTE: 45})
	if score < 40 {
		t.Errorf("wide-spread liquid contract scored %.2f, want >= 40", score)
	}
	if grade == models.GradeIlliquid {
		t.Errorf("wide-spread liquid contract graded %s", grade)
	}
}

func TestGenuinelyIlliquidScoresLow(t *testing.T) {
	g := NewGrader()

	score, grade := g.Score(Inputs{OpenInterest: 10, SpreadPercent: 30, Volume: 0, DTE: 14})
	if score >= 30 {
		t.Errorf("illiquid contract scored %.2f, want < 30", score)
	}
	if grade != models.GradeIlliquid {
		t.Errorf("illiquid contract graded %s, want %s", grade, models.GradeIlliquid)
	}
}

func TestGradeBands(t *testing.T) {
	tests := []struct {
		score float64
		want  models.LiquidityGrade
	}{
		{95, models.GradeExcellent},
		{85, models.GradeExcellent},
		{84.9, models.GradeGood},
		{70, models.GradeGood},
		{69.9, models.GradeAcceptable},
		{50, models.GradeAcceptable},
		{49.9, models.GradeThin},
		{30, models.GradeThin},
		{29.9, models.GradeIlliquid},
		{0, models.GradeIlliquid},
	}

	for _, tt := range tests {
		if got := GradeFor(tt.score); got != tt.want {
			t.Errorf("GradeFor(%.1f) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestScoreQuoteUsesQuoteSpread(t *testing.T) {
	g := NewGrader()

	tight := models.OptionQuote{Bid: 9.90, Ask: 10.10, OpenInterest: 2000, Volume: 300}
	wide := models.OptionQuote{Bid: 9.00, Ask: 11.00, OpenInterest: 2000, Volume: 300}

	tightScore, _ := g.ScoreQuote(tight, 30)
	wideScore, _ := g.ScoreQuote(wide, 30)

	if tightScore <= wideScore {
		t.Errorf("tight spread score %.2f not above wide spread score %.2f", tightScore, wideScore)
	}
}
