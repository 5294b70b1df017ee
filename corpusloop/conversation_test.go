package corpusloop

import (
	"testing"

	"github.com/martinemde/corpusagent/llmclient"
)

func TestConvertHistoryToMessages(t *testing.T) {
	history := []Turn{
		NewUserTurn("the question"),
		NewAssistantTurn("let me check", "resp_1", llmclient.Usage{}),
		NewObservationTurn("Execution output:\n42"),
		NewSteeringTurn("write a block or answer"),
	}

	messages := ConvertHistoryToMessages(history)
	if len(messages) != 4 {
		t.Fatalf("len(messages) = %d, want 4", len(messages))
	}

	wantRoles := []llmclient.Role{
		llmclient.RoleUser,
		llmclient.RoleAssistant,
		llmclient.RoleUser,
		llmclient.RoleUser,
	}
	for i, want := range wantRoles {
		if messages[i].Role != want {
			t.Errorf("messages[%d].Role = %s, want %s", i, messages[i].Role, want)
		}
	}
	if messages[2].Content != "Execution output:\n42" {
		t.Errorf("observation content = %q", messages[2].Content)
	}
}

func TestAssistantTurnCarriesMetadata(t *testing.T) {
	usage := llmclient.Usage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30}
	turn := NewAssistantTurn("text", "resp_42", usage)
	if turn.Kind != TurnAssistant || turn.ResponseID != "resp_42" || turn.Usage != usage {
		t.Errorf("turn = %+v", turn)
	}
	if turn.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}
