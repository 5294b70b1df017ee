package corpusloop

import (
	"time"

	"github.com/martinemde/corpusagent/llmclient"
)

// TurnKind discriminates between turn types.
type TurnKind string

const (
	TurnUser        TurnKind = "user"
	TurnAssistant   TurnKind = "assistant"
	TurnObservation TurnKind = "observation"
	TurnSteering    TurnKind = "steering"
)

// Turn is a single entry in the conversation history. The history is
// append-only within a session.
type Turn struct {
	Kind      TurnKind  `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`

	// ResponseID and Usage are set on assistant turns only.
	ResponseID string           `json:"response_id,omitempty"`
	Usage      llmclient.Usage  `json:"usage,omitempty"`
}

// NewUserTurn creates a Turn wrapping the caller's question.
func NewUserTurn(content string) Turn {
	return Turn{Kind: TurnUser, Timestamp: time.Now(), Content: content}
}

// NewAssistantTurn creates a Turn wrapping a root model response.
func NewAssistantTurn(content, responseID string, usage llmclient.Usage) Turn {
	return Turn{
		Kind:       TurnAssistant,
		Timestamp:  time.Now(),
		Content:    content,
		ResponseID: responseID,
		Usage:      usage,
	}
}

// NewObservationTurn creates a Turn wrapping consolidated execution feedback.
func NewObservationTurn(content string) Turn {
	return Turn{Kind: TurnObservation, Timestamp: time.Now(), Content: content}
}

// NewSteeringTurn creates a Turn wrapping an injected corrective message.
func NewSteeringTurn(content string) Turn {
	return Turn{Kind: TurnSteering, Timestamp: time.Now(), Content: content}
}

// ConvertHistoryToMessages converts the turn-based history into LLM
// messages. Observation and steering turns are sent as user messages so the
// model treats them as inputs to react to.
func ConvertHistoryToMessages(history []Turn) []llmclient.Message {
	var messages []llmclient.Message
	for _, turn := range history {
		switch turn.Kind {
		case TurnUser, TurnObservation, TurnSteering:
			messages = append(messages, llmclient.UserMessage(turn.Content))
		case TurnAssistant:
			messages = append(messages, llmclient.AssistantMessage(turn.Content))
		}
	}
	return messages
}
