package models

import "time"

// ExplorationStatus records the outcome of a contract scan attempt.
// Exploration never rejects: "no chain available" is a visible terminal
// state, not an exception, and tier-blocked ideas are surfaced without
// ever reaching the selector.
type ExplorationStatus string

const (
	ExplorationDiscovered  ExplorationStatus = "DISCOVERED"
	ExplorationNoChains    ExplorationStatus = "NO_CHAINS_AVAILABLE"
	ExplorationTierBlocked ExplorationStatus = "TIER_BLOCKED"
)

// RiskModel tags how per-contract risk is computed for a structure.
type RiskModel string

const (
	RiskDebitMax       RiskModel = "DEBIT_MAX"
	RiskCreditMax      RiskModel = "CREDIT_MAX"
	RiskCashSecured    RiskModel = "CASH_SECURED"
	RiskStockDependent RiskModel = "STOCK_DEPENDENT"
	RiskUndefined      RiskModel = "UNDEFINED"
)

// CapitalClass buckets the capital requirement of one contract.
type CapitalClass string

const (
	CapitalLight    CapitalClass = "LIGHT"
	CapitalModerate CapitalClass = "MODERATE"
	CapitalHeavy    CapitalClass = "HEAVY"
	CapitalElite    CapitalClass = "ELITE"
)

// LiquidityGrade is the descriptive band for a liquidity score.
type LiquidityGrade string

const (
	GradeExcellent  LiquidityGrade = "EXCELLENT"
	GradeGood       LiquidityGrade = "GOOD"
	GradeAcceptable LiquidityGrade = "ACCEPTABLE"
	GradeThin       LiquidityGrade = "THIN"
	GradeIlliquid   LiquidityGrade = "ILLIQUID"
)

// ContractIntent tracks a selection's lifecycle stage. Intent moves from
// Scan to ExecutionCandidate exactly when the pre-filter marks it Valid.
type ContractIntent string

const (
	IntentScan               ContractIntent = "SCAN"
	IntentExecutionCandidate ContractIntent = "EXECUTION_CANDIDATE"
)

// LegSide is the direction of a selected leg.
type LegSide string

const (
	SideBuy  LegSide = "BUY"
	SideSell LegSide = "SELL"
)

// SelectedLeg is one concrete contract chosen for a structure.
type SelectedLeg struct {
	Type   OptionType  `json:"type"`
	Side   LegSide     `json:"side"`
	Strike float64     `json:"strike"`
	Quote  OptionQuote `json:"quote"`
}

// ContractSelection is the annotated output of the contract selector for
// one (ticker, strategy, structure). At most one exists per run, and it
// is produced for every attempt, successful or not.
type ContractSelection struct {
	Ticker    string        `json:"ticker"`
	Strategy  string        `json:"strategy"`
	Structure StructureType `json:"structure"`

	Status  ExplorationStatus `json:"status"`
	Viable  bool              `json:"viable"`
	Reasons []string          `json:"reasons,omitempty"`

	Legs       []SelectedLeg `json:"legs,omitempty"`
	Expiration time.Time     `json:"expiration"`
	DTE        int           `json:"dte"`
	Greeks     *Greeks       `json:"greeks,omitempty"` // aggregated across legs; nil when the feed omits them

	LiquidityScore float64        `json:"liquidity_score"`
	LiquidityGrade LiquidityGrade `json:"liquidity_grade"`
	SpreadPercent  float64        `json:"spread_percent"` // worst leg

	CapitalRequired float64      `json:"capital_required"`
	CapitalClass    CapitalClass `json:"capital_class"`

	RiskModel       RiskModel `json:"risk_model"`
	RiskPerContract *float64  `json:"risk_per_contract,omitempty"` // nil when risk is not a fixed per-contract number

	StructureSimplified bool           `json:"structure_simplified"`
	Intent              ContractIntent `json:"intent"`
}

// PreFilterStatus is the deterministic classification of a selection.
type PreFilterStatus string

const (
	FilterValid    PreFilterStatus = "VALID"
	FilterWatch    PreFilterStatus = "WATCH"
	FilterRejected PreFilterStatus = "REJECTED"
)

// ScoredCandidate is a ContractSelection after recalibration and
// pre-filtering.
type ScoredCandidate struct {
	Selection      ContractSelection `json:"selection"`
	PCS            float64           `json:"pcs"`
	FilterStatus   PreFilterStatus   `json:"filter_status"`
	FilterReason   string            `json:"filter_reason,omitempty"`
	ExecutionReady bool              `json:"execution_ready"`
}

// PairedStrategy is the per-ticker winner after pairing and capital
// allocation. Components holds one entry for a standalone selection and
// two when compatible single legs were merged into a composite.
type PairedStrategy struct {
	Ticker     string            `json:"ticker"`
	Strategy   string            `json:"strategy"`
	Components []ScoredCandidate `json:"components"`

	Greeks          *Greeks  `json:"greeks,omitempty"`
	PCS             float64  `json:"pcs"`
	LiquidityScore  float64  `json:"liquidity_score"`
	CapitalRequired float64  `json:"capital_required"`
	RiskPerContract *float64 `json:"risk_per_contract,omitempty"`

	AllocatedCapital     float64 `json:"allocated_capital"`
	RecommendedContracts int     `json:"recommended_contracts"`
	ManualSizing         bool    `json:"manual_sizing"`
}
