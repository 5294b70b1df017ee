package corpusloop

import "github.com/martinemde/corpusagent/llmclient"

// StopReason explains why a session reached a terminal state.
type StopReason string

const (
	// StopAnswer: a recognized answer marker ended the session.
	StopAnswer StopReason = "answer"
	// StopBudgetExhausted: the iteration ceiling was reached without a
	// marker. A defined terminal state, not an error.
	StopBudgetExhausted StopReason = "budget exhausted"
	// StopError: the root model call itself failed.
	StopError StopReason = "error"
)

// BlockRecord captures one executed script block.
type BlockRecord struct {
	Code    string `json:"code"`
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// IterationRecord captures one loop iteration: the root model's response
// and every block executed from it, in order.
type IterationRecord struct {
	Response string        `json:"response"`
	Blocks   []BlockRecord `json:"blocks,omitempty"`
}

// Result is the final outcome of a session. Every Result, successful or
// not, carries the full trajectory so a caller can reconstruct exactly what
// happened without re-running the session.
type Result struct {
	Success    bool              `json:"success"`
	Answer     string            `json:"answer,omitempty"`
	Reason     StopReason        `json:"reason"`
	Iterations int               `json:"iterations"`
	SubQueries int               `json:"sub_queries"`
	RootUsage  llmclient.Usage   `json:"root_usage"`
	SubUsage   llmclient.Usage   `json:"sub_usage"`
	TotalUsage llmclient.Usage   `json:"total_usage"`
	Cost       float64           `json:"cost"`
	Trajectory []IterationRecord `json:"trajectory"`
	Error      string            `json:"error,omitempty"`
}
