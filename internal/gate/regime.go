package gate

import (
	"fmt"

	"options-scout/internal/config"
)

// StressLevel classifies a market stress index reading (a VIX-style
// volatility gauge) into bands the gate acts on.
type StressLevel string

const (
	StressCalm     StressLevel = "CALM"
	StressNormal   StressLevel = "NORMAL"
	StressElevated StressLevel = "ELEVATED"
	StressHalted   StressLevel = "HALTED"
)

// RegimeClassifier maps stress readings to levels using configured
// thresholds. The halt threshold is the only one the gate enforces; the
// lower bands exist for reporting and sizing guidance.
type RegimeClassifier struct {
	cfg config.GateConfig
}

// NewRegimeClassifier creates a classifier over the gate thresholds.
func NewRegimeClassifier(cfg config.GateConfig) *RegimeClassifier {
	return &RegimeClassifier{cfg: cfg}
}

// Classify buckets a stress index value.
func (r *RegimeClassifier) Classify(stress float64) StressLevel {
	switch {
	case stress >= r.cfg.StressHalt:
		return StressHalted
	case stress >= r.cfg.StressElevated:
		return StressElevated
	case stress >= 15:
		return StressNormal
	default:
		return StressCalm
	}
}

// Halted reports whether new entries are blocked at this stress level.
func (r *RegimeClassifier) Halted(stress float64) bool {
	return stress >= r.cfg.StressHalt
}

// SizeMultiplier suggests a position-size scale for the level. It never
// changes a gate outcome; dashboards use it alongside allocations.
func (r *RegimeClassifier) SizeMultiplier(level StressLevel) float64 {
	switch level {
	case StressElevated:
		return 0.8
	case StressHalted:
		return 0.4
	default:
		return 1.0
	}
}

// Describe returns a one-line reading for display.
func (r *RegimeClassifier) Describe(stress float64) string {
	return fmt.Sprintf("stress %.1f (%s)", stress, r.Classify(stress))
}
