package corpusloop

import (
	"math"

	"github.com/martinemde/corpusagent/llmclient"
)

// Budget accumulates token usage from every reasoning call and enforces the
// iteration and sub-query ceilings. A Budget belongs to exactly one session
// and is only touched from the session goroutine, so it carries no locks.
type Budget struct {
	maxIterations int
	maxSubQueries int

	iterations int
	subQueries int
	rootUsage  llmclient.Usage
	subUsage   llmclient.Usage
}

// NewBudget creates a Budget with the given ceilings. A maxSubQueries of 0
// means no sub-queries are permitted.
func NewBudget(maxIterations, maxSubQueries int) *Budget {
	if maxSubQueries < 0 {
		maxSubQueries = 0
	}
	return &Budget{
		maxIterations: maxIterations,
		maxSubQueries: maxSubQueries,
	}
}

// CanIterate reports whether another iteration fits within the ceiling.
func (b *Budget) CanIterate() bool {
	return b.iterations < b.maxIterations
}

// RecordIteration counts one iteration.
func (b *Budget) RecordIteration() {
	b.iterations++
}

// CheckSubQuery reports whether another sub-query fits within the ceiling.
// Denial never raises; callers return a sentinel instead.
func (b *Budget) CheckSubQuery() bool {
	return b.subQueries < b.maxSubQueries
}

// ConsumeSubQuery counts one sub-query.
func (b *Budget) ConsumeSubQuery() {
	b.subQueries++
}

// RecordRoot accumulates usage from a root model call.
func (b *Budget) RecordRoot(u llmclient.Usage) {
	b.rootUsage = b.rootUsage.Add(u)
}

// RecordSub accumulates usage from a secondary model call.
func (b *Budget) RecordSub(u llmclient.Usage) {
	b.subUsage = b.subUsage.Add(u)
}

// Iterations returns the number of iterations used.
func (b *Budget) Iterations() int { return b.iterations }

// SubQueries returns the number of sub-queries used.
func (b *Budget) SubQueries() int { return b.subQueries }

// RootUsage returns accumulated root model usage.
func (b *Budget) RootUsage() llmclient.Usage { return b.rootUsage }

// SubUsage returns accumulated secondary model usage.
func (b *Budget) SubUsage() llmclient.Usage { return b.subUsage }

// TotalUsage returns combined usage across both models.
func (b *Budget) TotalUsage() llmclient.Usage {
	return b.rootUsage.Add(b.subUsage)
}

// ModelPrice is per-million-token pricing for one model.
type ModelPrice struct {
	InputPerMillion  float64 `json:"input_per_million" yaml:"input_per_million"`
	OutputPerMillion float64 `json:"output_per_million" yaml:"output_per_million"`
}

// PriceTable maps model identifiers to pricing. It is an explicit object
// passed into cost estimation, not process-wide state.
type PriceTable map[string]ModelPrice

// DefaultPriceTable builds a price table from the llmclient model catalog.
func DefaultPriceTable() PriceTable {
	table := make(PriceTable)
	for _, m := range llmclient.ListModels("") {
		if m.InputCostPerMillion == nil || m.OutputCostPerMillion == nil {
			continue
		}
		table[m.ID] = ModelPrice{
			InputPerMillion:  *m.InputCostPerMillion,
			OutputPerMillion: *m.OutputCostPerMillion,
		}
	}
	return table
}

// Lookup resolves a model's price, following catalog aliases.
func (t PriceTable) Lookup(model string) (ModelPrice, bool) {
	if p, ok := t[model]; ok {
		return p, true
	}
	if info := llmclient.GetModelInfo(model); info != nil {
		if p, ok := t[info.ID]; ok {
			return p, true
		}
	}
	return ModelPrice{}, false
}

// EstimateCost combines accumulated tokens with the price table, pricing
// root and secondary usage at their respective models. The result is an
// approximation rounded to 4 decimal places, not authoritative billing.
func (b *Budget) EstimateCost(rootModel, subModel string, prices PriceTable) float64 {
	cost := 0.0
	if p, ok := prices.Lookup(rootModel); ok {
		cost += float64(b.rootUsage.InputTokens) * p.InputPerMillion / 1e6
		cost += float64(b.rootUsage.OutputTokens) * p.OutputPerMillion / 1e6
	}
	if p, ok := prices.Lookup(subModel); ok {
		cost += float64(b.subUsage.InputTokens) * p.InputPerMillion / 1e6
		cost += float64(b.subUsage.OutputTokens) * p.OutputPerMillion / 1e6
	}
	return math.Round(cost*1e4) / 1e4
}
