package tiers

import "testing"

func TestClassifyTier1(t *testing.T) {
	table := DefaultTable()

	tests := []string{
		"Long Call", "long put", "Covered Call", "Cash-Secured Put",
		"Straddle", "Strangle", "LEAP Call",
	}
	for _, name := range tests {
		c := table.Classify(name)
		if c.Tier != Tier1 {
			t.Errorf("Classify(%q).Tier = %d, want 1", name, c.Tier)
		}
		if !c.ExecutionReady {
			t.Errorf("Classify(%q) not execution ready: %s", name, c.Blocker)
		}
		if !table.Scannable(name) {
			t.Errorf("Scannable(%q) = false, want true", name)
		}
	}
}

func TestClassifyTier2Blocked(t *testing.T) {
	table := DefaultTable()

	for _, name := range []string{"Bull Call Spread", "Iron Condor", "bear put spread"} {
		c := table.Classify(name)
		if c.Tier != Tier2 {
			t.Errorf("Classify(%q).Tier = %d, want 2", name, c.Tier)
		}
		if c.ExecutionReady {
			t.Errorf("Classify(%q) execution ready, want blocked", name)
		}
		if c.Blocker == "" {
			t.Errorf("Classify(%q) has no blocker", name)
		}
		if table.Scannable(name) {
			t.Errorf("Scannable(%q) = true, want false", name)
		}
	}
}

func TestClassifyTier3(t *testing.T) {
	table := DefaultTable()

	for _, name := range []string{"Calendar Spread", "Diagonal Spread", "Poor Man's Covered Call"} {
		c := table.Classify(name)
		if c.Tier != Tier3 {
			t.Errorf("Classify(%q).Tier = %d, want 3", name, c.Tier)
		}
		if c.ExecutionReady {
			t.Errorf("Classify(%q) execution ready, want blocked", name)
		}
	}
}

func TestClassifyUnknownNeverDefaultsToTier1(t *testing.T) {
	table := DefaultTable()

	for _, name := range []string{"Jade Lizard", "", "box spread", "Something Else"} {
		c := table.Classify(name)
		if c.Tier != Tier3 {
			t.Errorf("Classify(%q).Tier = %d, want 3", name, c.Tier)
		}
		if c.Blocker != "unrecognized strategy name" {
			t.Errorf("Classify(%q).Blocker = %q, want unrecognized blocker", name, c.Blocker)
		}
		if c.ExecutionReady {
			t.Errorf("Classify(%q) execution ready, want blocked", name)
		}
	}
}

func TestUnlockedTier2BecomesScannable(t *testing.T) {
	table := NewTable([]int{Tier1, Tier2})

	if !table.Scannable("Bull Call Spread") {
		t.Error("Bull Call Spread should be scannable once tier 2 is unlocked")
	}
	if table.Scannable("Calendar Spread") {
		t.Error("Calendar Spread must stay blocked regardless of tier 2 unlock")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	table := DefaultTable()

	first := table.Classify("Straddle")
	for i := 0; i < 10; i++ {
		if got := table.Classify("Straddle"); got != first {
			t.Fatalf("Classify not deterministic: %+v vs %+v", got, first)
		}
	}
}
