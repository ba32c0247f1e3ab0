// Package tiers maps strategy names to broker-approval tiers.
package tiers

import "strings"

// Tier levels. Tier 1 strategies are single-expiry and broker-approved,
// tier 2 strategies are structurally simple but blocked at the broker,
// tier 3 strategies are multi-expiry or blocked by execution logic.
const (
	Tier1 = 1
	Tier2 = 2
	Tier3 = 3
)

// Classification is the result of a tier lookup.
type Classification struct {
	Tier           int
	BrokerApproval string
	ExecutionReady bool
	Blocker        string // empty when nothing blocks execution
}

// Table is an immutable strategy-to-tier mapping. The zero value is not
// usable; construct with NewTable or DefaultTable.
type Table struct {
	entries       map[string]Classification
	unlockedTiers map[int]bool
}

// DefaultTable returns the built-in tier table with only tier 1 unlocked.
func DefaultTable() *Table {
	return NewTable([]int{Tier1})
}

// NewTable builds the tier table with the given tiers unlocked for
// contract scanning.
func NewTable(unlocked []int) *Table {
	unlockedTiers := make(map[int]bool, len(unlocked))
	for _, t := range unlocked {
		unlockedTiers[t] = true
	}

	t := &Table{
		entries:       make(map[string]Classification),
		unlockedTiers: unlockedTiers,
	}

	tier1 := []string{
		"long call", "long put", "leap call", "leap put",
		"covered call", "cash-secured put",
		"straddle", "long straddle", "strangle", "long strangle",
	}
	for _, name := range tier1 {
		t.entries[name] = Classification{
			Tier:           Tier1,
			BrokerApproval: "approved for single-expiry structures",
			ExecutionReady: true,
		}
	}

	tier2 := []string{
		"bull call spread", "bear put spread",
		"bull put spread", "bear call spread",
		"vertical spread", "iron condor",
	}
	for _, name := range tier2 {
		t.entries[name] = Classification{
			Tier:           Tier2,
			BrokerApproval: "requires spread approval",
			ExecutionReady: true,
		}
	}

	tier3 := []string{
		"calendar spread", "diagonal spread",
		"poor man's covered call", "pmcc",
	}
	for _, name := range tier3 {
		t.entries[name] = Classification{
			Tier:           Tier3,
			BrokerApproval: "multi-expiry structures not supported",
			ExecutionReady: false,
			Blocker:        "multi-expiration execution logic unavailable",
		}
	}

	return t
}

// lockBlockers explain why an otherwise-executable strategy is blocked
// when its tier is not unlocked on the account.
var lockBlockers = map[int]string{
	Tier1: "single-leg trading not approved on account",
	Tier2: "spread trading not approved on account",
	Tier3: "multi-expiration trading not approved on account",
}

// Classify looks up the tier classification for a strategy name. Lookup is
// case-insensitive. Unknown names classify as tier 3 with an explicit
// unrecognized blocker; nothing ever defaults to tier 1.
func (t *Table) Classify(strategy string) Classification {
	key := strings.ToLower(strings.TrimSpace(strategy))
	if c, ok := t.entries[key]; ok {
		if c.ExecutionReady && !t.unlockedTiers[c.Tier] {
			c.ExecutionReady = false
			c.Blocker = lockBlockers[c.Tier]
		}
		return c
	}
	return Classification{
		Tier:           Tier3,
		BrokerApproval: "unknown strategy",
		ExecutionReady: false,
		Blocker:        "unrecognized strategy name",
	}
}

// Scannable reports whether a strategy may proceed to contract scanning:
// it must be a known, execution-ready strategy in an unlocked tier.
func (t *Table) Scannable(strategy string) bool {
	c := t.Classify(strategy)
	return c.ExecutionReady && t.unlockedTiers[c.Tier]
}
