package corpusloop

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/martinemde/corpusagent/llmclient"
	"github.com/martinemde/corpusagent/luaenv"
)

// Config holds session parameters. Zero values fall back to defaults where
// noted; MaxSubQueries is taken literally, so 0 disables sub-queries.
type Config struct {
	// RootModel drives the main reasoning loop.
	RootModel string `json:"root_model" yaml:"root_model"`
	// SubQueryModel answers llm() calls from scripts. Usually a cheaper
	// model than the root.
	SubQueryModel string `json:"sub_query_model" yaml:"sub_query_model"`

	// RootProvider and SubQueryProvider override provider routing. Empty
	// means the client infers the provider from the model catalog.
	RootProvider     string `json:"root_provider,omitempty" yaml:"root_provider,omitempty"`
	SubQueryProvider string `json:"sub_query_provider,omitempty" yaml:"sub_query_provider,omitempty"`

	// MaxIterations caps loop iterations. Values <= 0 use the default.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations"`
	// MaxSubQueries caps llm() calls across the whole session. 0 means
	// none are permitted.
	MaxSubQueries int `json:"max_sub_queries" yaml:"max_sub_queries"`

	// OutputLimit caps captured script output per execution, in bytes.
	// Values <= 0 use luaenv.DefaultOutputLimit.
	OutputLimit int `json:"output_limit" yaml:"output_limit"`
	// MaxOutputTokens caps each model response.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// TrackCost enables cost estimation on the final result.
	TrackCost bool `json:"track_cost" yaml:"track_cost"`
	// Prices overrides the catalog-derived price table.
	Prices PriceTable `json:"prices,omitempty" yaml:"prices,omitempty"`
}

// Default ceilings.
const (
	DefaultMaxIterations   = 12
	DefaultMaxSubQueries   = 24
	DefaultMaxOutputTokens = 8192
)

// DefaultConfig returns a Config with sensible defaults: a capable root
// model paired with a cheap secondary model.
func DefaultConfig() Config {
	return Config{
		RootModel:       "claude-sonnet-4-5",
		SubQueryModel:   "claude-haiku-4-5",
		MaxIterations:   DefaultMaxIterations,
		MaxSubQueries:   DefaultMaxSubQueries,
		OutputLimit:     luaenv.DefaultOutputLimit,
		MaxOutputTokens: DefaultMaxOutputTokens,
		TrackCost:       true,
	}
}

// normalize fills defaulted fields in place. MaxSubQueries is left alone.
func (c *Config) normalize() {
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.OutputLimit <= 0 {
		c.OutputLimit = luaenv.DefaultOutputLimit
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if c.RootModel == "" {
		c.RootModel = "claude-sonnet-4-5"
	}
	if c.SubQueryModel == "" {
		c.SubQueryModel = "claude-haiku-4-5"
	}
}

// SubQueryBudgetSentinel is returned from llm() in place of an answer once
// the sub-query budget is exhausted. It is plain text handed to the calling
// script, never an error.
const SubQueryBudgetSentinel = "[sub-query budget exhausted: answer with the information already gathered]"

// steeringNudge is injected when a response carries neither a script block
// nor an answer marker, so the loop has nothing to feed back.
const steeringNudge = "Your response contained no ```" + BlockTag + " block and no answer marker. " +
	"Write a script block to keep investigating, or end with FINAL(answer) / FINAL_VAR(name)."

// Session drives one question through the reasoning loop: ask the root
// model, execute its script blocks, feed the output back, and stop on an
// answer marker or budget exhaustion. A Session runs exactly once and is
// not safe for concurrent use.
type Session struct {
	id     string
	client *llmclient.Client
	env    *luaenv.Environment
	config Config

	history    []Turn
	emitter    *EventEmitter
	budget     *Budget
	trajectory []IterationRecord
	done       bool
}

// NewSession creates a Session over the given corpus. The client must have a
// provider registered that can serve both configured models.
func NewSession(client *llmclient.Client, corpus *luaenv.Corpus, config *Config) *Session {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	cfg.normalize()

	s := &Session{
		id:     uuid.New().String(),
		client: client,
		config: cfg,
		budget: NewBudget(cfg.MaxIterations, cfg.MaxSubQueries),
	}
	s.emitter = NewEventEmitter(s.id, 0)
	s.env = luaenv.New(corpus, luaenv.Config{
		SubQuery:    s.subQuery,
		OutputLimit: cfg.OutputLimit,
	})
	return s
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Events returns the session's event channel. The channel is closed when the
// session finishes.
func (s *Session) Events() <-chan SessionEvent { return s.emitter.Events() }

// History returns the conversation history accumulated so far.
func (s *Session) History() []Turn { return s.history }

// subQuery serves llm() calls from scripts. Budget denial returns the
// sentinel without consuming budget; transport errors propagate to the
// environment, which renders them as text inside the script.
func (s *Session) subQuery(ctx context.Context, prompt string) (string, error) {
	if !s.budget.CheckSubQuery() {
		s.emitter.Emit(EventSubQuery, map[string]interface{}{
			"denied": true,
			"used":   s.budget.SubQueries(),
		})
		return SubQueryBudgetSentinel, nil
	}
	s.budget.ConsumeSubQuery()
	s.emitter.Emit(EventSubQuery, map[string]interface{}{
		"used":   s.budget.SubQueries(),
		"prompt": prompt,
	})

	maxTokens := s.config.MaxOutputTokens
	resp, err := s.client.Complete(ctx, llmclient.Request{
		Model:    s.config.SubQueryModel,
		Provider: s.config.SubQueryProvider,
		Messages: []llmclient.Message{
			llmclient.SystemMessage(subQuerySystemPrompt),
			llmclient.UserMessage(prompt),
		},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		s.emitter.Emit(EventWarning, map[string]interface{}{
			"subquery_error": err.Error(),
		})
		return "", err
	}
	s.budget.RecordSub(resp.Usage)
	return resp.Text, nil
}

// Run executes the session loop for one question. The returned Result is
// non-nil whenever the loop ran, including budget exhaustion; the error
// return is reserved for root model failures and misuse.
func (s *Session) Run(ctx context.Context, question string) (*Result, error) {
	if s.done {
		return nil, fmt.Errorf("session %s has already run", s.id)
	}
	s.done = true

	s.emitter.Emit(EventSessionStart, map[string]interface{}{
		"question":   question,
		"root_model": s.config.RootModel,
		"sub_model":  s.config.SubQueryModel,
	})

	systemPrompt := BuildSystemPrompt(s.env, s.config)
	s.history = append(s.history, NewUserTurn(question))

	for s.budget.CanIterate() {
		s.budget.RecordIteration()
		s.emitter.Emit(EventIterationStart, map[string]interface{}{
			"iteration": s.budget.Iterations(),
		})

		resp, err := s.completeRoot(ctx, systemPrompt)
		if err != nil {
			s.emitter.Emit(EventError, map[string]interface{}{"error": err.Error()})
			res := s.finish(false, "", StopError, err.Error())
			return res, fmt.Errorf("root model call failed: %w", err)
		}
		s.budget.RecordRoot(resp.Usage)
		s.history = append(s.history, NewAssistantTurn(resp.Text, resp.ID, resp.Usage))
		s.emitter.Emit(EventResponse, map[string]interface{}{
			"response_id": resp.ID,
			"length":      len(resp.Text),
		})

		record := IterationRecord{Response: resp.Text}
		var observations []string

		blocks := ExtractBlocks(resp.Text)
		for i, code := range blocks {
			s.emitter.Emit(EventBlockStart, map[string]interface{}{"index": i + 1})
			execRes := s.env.Execute(ctx, code)
			s.emitter.Emit(EventBlockEnd, map[string]interface{}{
				"index":   i + 1,
				"success": execRes.Success,
			})
			record.Blocks = append(record.Blocks, BlockRecord{
				Code:    code,
				Success: execRes.Success,
				Output:  execRes.Output,
			})
			observations = append(observations, formatObservation(i+1, len(blocks), execRes))
		}
		s.trajectory = append(s.trajectory, record)

		// Blocks above ran before this check, so a marker may name a
		// variable a block in the same response just computed.
		kind, payload := ParseAnswerMarker(resp.Text)
		switch kind {
		case AnswerLiteral:
			return s.finish(true, payload, StopAnswer, ""), nil
		case AnswerVariable:
			if value, ok := s.env.GetVariable(payload); ok {
				return s.finish(true, value, StopAnswer, ""), nil
			}
			observations = append(observations, fmt.Sprintf(
				"FINAL_VAR(%s) names an undefined variable; define it in a script block or use FINAL(...)", payload))
		}

		if len(observations) == 0 {
			s.emitter.Emit(EventSteering, nil)
			s.history = append(s.history, NewSteeringTurn(steeringNudge))
			continue
		}
		if summary := s.env.DescribeVariables(); summary != "" {
			observations = append(observations, "Variables defined: "+summary)
		}
		s.history = append(s.history, NewObservationTurn(strings.Join(observations, "\n\n")))
	}

	s.emitter.Emit(EventBudgetExhausted, map[string]interface{}{
		"iterations": s.budget.Iterations(),
	})
	return s.finish(false, "", StopBudgetExhausted, "iteration budget exhausted"), nil
}

// completeRoot asks the root model for the next response, given the full
// conversation so far.
func (s *Session) completeRoot(ctx context.Context, systemPrompt string) (*llmclient.Response, error) {
	messages := make([]llmclient.Message, 0, len(s.history)+1)
	messages = append(messages, llmclient.SystemMessage(systemPrompt))
	messages = append(messages, ConvertHistoryToMessages(s.history)...)

	maxTokens := s.config.MaxOutputTokens
	return s.client.Complete(ctx, llmclient.Request{
		Model:     s.config.RootModel,
		Provider:  s.config.RootProvider,
		Messages:  messages,
		MaxTokens: &maxTokens,
	})
}

// finish assembles the Result, releases the environment, and closes the
// event channel.
func (s *Session) finish(success bool, answer string, reason StopReason, errMsg string) *Result {
	result := &Result{
		Success:    success,
		Answer:     answer,
		Reason:     reason,
		Iterations: s.budget.Iterations(),
		SubQueries: s.budget.SubQueries(),
		RootUsage:  s.budget.RootUsage(),
		SubUsage:   s.budget.SubUsage(),
		TotalUsage: s.budget.TotalUsage(),
		Trajectory: s.trajectory,
		Error:      errMsg,
	}
	if s.config.TrackCost {
		prices := s.config.Prices
		if prices == nil {
			prices = DefaultPriceTable()
		}
		result.Cost = s.budget.EstimateCost(s.config.RootModel, s.config.SubQueryModel, prices)
	}

	if success {
		s.emitter.Emit(EventFinalAnswer, map[string]interface{}{
			"answer": answer,
		})
	}
	s.emitter.Emit(EventSessionEnd, map[string]interface{}{
		"success": success,
		"reason":  string(reason),
	})

	s.env.Close()
	s.emitter.Close()
	return result
}

// formatObservation renders one block's execution outcome for the next turn.
func formatObservation(idx, total int, res luaenv.Result) string {
	label := "Execution output"
	if total > 1 {
		label = fmt.Sprintf("Execution output (block %d of %d)", idx, total)
	}

	if res.Success {
		if res.Output == "" {
			return label + ": (no output)"
		}
		return label + ":\n" + res.Output
	}

	msg := fmt.Sprintf("%s: %s error: %s", label, res.ErrKind, res.ErrMessage)
	if res.Output != "" {
		msg += "\nOutput before failure:\n" + res.Output
	}
	return msg
}
