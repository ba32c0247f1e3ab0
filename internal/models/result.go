package models

// AcceptanceStatus is the terminal classification of a candidate.
type AcceptanceStatus string

const (
	StatusReadyNow          AcceptanceStatus = "READY_NOW"
	StatusStructurallyReady AcceptanceStatus = "STRUCTURALLY_READY"
	StatusWait              AcceptanceStatus = "WAIT"
	StatusAvoid             AcceptanceStatus = "AVOID"
	StatusIncomplete        AcceptanceStatus = "INCOMPLETE"
)

// ConfidenceBand buckets the upstream confidence for display.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "HIGH"
	BandMedium ConfidenceBand = "MEDIUM"
	BandLow    ConfidenceBand = "LOW"
)

// AcceptanceRecord is the acceptance gate's final word on a candidate.
// Once written it is never mutated again. The reason references only the
// candidate's own data, never a sibling strategy.
type AcceptanceRecord struct {
	Status AcceptanceStatus `json:"status"`
	Reason string           `json:"reason"`
	Band   ConfidenceBand   `json:"band"`
}

// AnnotatedResult is one candidate's fully annotated journey through the
// pipeline. Evaluate returns exactly one per input candidate, in stable
// (ticker, strategy) order.
type AnnotatedResult struct {
	Candidate  StrategyCandidate `json:"candidate"`
	Tier       int               `json:"tier"`
	Scored     ScoredCandidate   `json:"scored"`
	Paired     *PairedStrategy   `json:"paired,omitempty"` // set only on the ticker's selected strategy
	Acceptance AcceptanceRecord  `json:"acceptance"`
}
