package models

// StructureType classifies the leg structure of a strategy.
type StructureType string

const (
	StructureSingleLeg   StructureType = "SINGLE_LEG"
	StructureVertical    StructureType = "VERTICAL"
	StructureVolatility  StructureType = "STRADDLE_STRANGLE"
	StructureCoveredCall StructureType = "COVERED_CALL"
	StructureCalendar    StructureType = "CALENDAR"
)

// Bias is the declared directional bias of a candidate.
type Bias string

const (
	BiasBullish       Bias = "BULLISH"
	BiasBearish       Bias = "BEARISH"
	BiasNeutral       Bias = "NEUTRAL"
	BiasBidirectional Bias = "BIDIRECTIONAL"
)

// StrategyCandidate is an abstract trade idea produced by the upstream
// recommendation layer. It is enriched in place through the pipeline
// stages and never deleted; every candidate in yields exactly one
// annotated result out.
type StrategyCandidate struct {
	Ticker     string        `json:"ticker"`
	Strategy   string        `json:"strategy"`
	Structure  StructureType `json:"structure"`
	Bias       Bias          `json:"bias"`
	MinDTE     int           `json:"min_dte"`
	MaxDTE     int           `json:"max_dte"`
	Confidence float64       `json:"confidence"`
}
