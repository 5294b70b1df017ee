package corpusloop

import (
	"testing"

	"github.com/martinemde/corpusagent/llmclient"
)

func TestBudgetIterationCeiling(t *testing.T) {
	b := NewBudget(3, 10)
	for i := 0; i < 3; i++ {
		if !b.CanIterate() {
			t.Fatalf("iteration %d denied before ceiling", i+1)
		}
		b.RecordIteration()
	}
	if b.CanIterate() {
		t.Error("CanIterate() = true past the ceiling")
	}
	if b.Iterations() != 3 {
		t.Errorf("Iterations() = %d, want 3", b.Iterations())
	}
}

func TestBudgetSubQueryCeiling(t *testing.T) {
	b := NewBudget(10, 2)
	if !b.CheckSubQuery() {
		t.Fatal("first sub-query denied")
	}
	b.ConsumeSubQuery()
	b.ConsumeSubQuery()
	if b.CheckSubQuery() {
		t.Error("CheckSubQuery() = true past the ceiling")
	}
	if b.SubQueries() != 2 {
		t.Errorf("SubQueries() = %d, want 2", b.SubQueries())
	}
}

func TestBudgetZeroSubQueries(t *testing.T) {
	b := NewBudget(10, 0)
	if b.CheckSubQuery() {
		t.Error("CheckSubQuery() must be false when the ceiling is 0")
	}
	if b.SubQueries() != 0 {
		t.Errorf("SubQueries() = %d, want 0", b.SubQueries())
	}
}

func TestBudgetNegativeSubQueriesClamped(t *testing.T) {
	b := NewBudget(10, -5)
	if b.CheckSubQuery() {
		t.Error("negative ceiling must behave as 0")
	}
}

func TestBudgetUsageAccumulation(t *testing.T) {
	b := NewBudget(10, 10)
	b.RecordRoot(llmclient.Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150})
	b.RecordRoot(llmclient.Usage{InputTokens: 200, OutputTokens: 100, TotalTokens: 300})
	b.RecordSub(llmclient.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15})

	if got := b.RootUsage(); got.TotalTokens != 450 {
		t.Errorf("RootUsage().TotalTokens = %d, want 450", got.TotalTokens)
	}
	if got := b.SubUsage(); got.TotalTokens != 15 {
		t.Errorf("SubUsage().TotalTokens = %d, want 15", got.TotalTokens)
	}
	if got := b.TotalUsage(); got.TotalTokens != 465 {
		t.Errorf("TotalUsage().TotalTokens = %d, want 465", got.TotalTokens)
	}
}

func TestEstimateCost(t *testing.T) {
	prices := PriceTable{
		"root-model": {InputPerMillion: 10.0, OutputPerMillion: 20.0},
		"sub-model":  {InputPerMillion: 1.0, OutputPerMillion: 2.0},
	}

	b := NewBudget(10, 10)
	b.RecordRoot(llmclient.Usage{InputTokens: 1_000_000, OutputTokens: 500_000})
	b.RecordSub(llmclient.Usage{InputTokens: 2_000_000, OutputTokens: 1_000_000})

	// root: 10 + 10 = 20; sub: 2 + 2 = 4
	if got := b.EstimateCost("root-model", "sub-model", prices); got != 24.0 {
		t.Errorf("EstimateCost() = %v, want 24.0", got)
	}
}

func TestEstimateCostUnknownModels(t *testing.T) {
	b := NewBudget(10, 10)
	b.RecordRoot(llmclient.Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000})
	if got := b.EstimateCost("mystery", "mystery", PriceTable{}); got != 0 {
		t.Errorf("EstimateCost() = %v, want 0 for unpriced models", got)
	}
}

func TestPriceTableLookupFollowsAliases(t *testing.T) {
	table := DefaultPriceTable()
	byID, ok := table.Lookup("claude-haiku-4-5")
	if !ok {
		t.Fatal("catalog model missing from default price table")
	}
	byAlias, ok := table.Lookup("haiku")
	if !ok {
		t.Fatal("alias lookup failed")
	}
	if byAlias != byID {
		t.Errorf("alias price %+v != id price %+v", byAlias, byID)
	}
}

func TestDefaultPriceTableCoversCatalog(t *testing.T) {
	table := DefaultPriceTable()
	for _, m := range llmclient.ListModels("") {
		if _, ok := table.Lookup(m.ID); !ok {
			t.Errorf("no price for catalog model %s", m.ID)
		}
	}
}
