package schema

import (
	"encoding/json"
	"testing"
)

func TestChatMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     ChatMessage
		wantErr bool
	}{
		{"human", ChatMessage{Type: MessageTypeHuman, Content: "hi"}, false},
		{"ai", ChatMessage{Type: MessageTypeAI, Content: "hello"}, false},
		{"tool with id", ChatMessage{Type: MessageTypeTool, Content: "42", ToolCallID: "call_1"}, false},
		{"tool without id", ChatMessage{Type: MessageTypeTool, Content: "42"}, true},
		{"unknown type", ChatMessage{Type: "system", Content: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStreamInputTokensEnabled(t *testing.T) {
	var in StreamInput
	if !in.TokensEnabled() {
		t.Error("TokensEnabled() = false for unset field, want true")
	}

	f := false
	in.StreamTokens = &f
	if in.TokensEnabled() {
		t.Error("TokensEnabled() = true for explicit false")
	}
}

func TestStreamInputJSONDefaults(t *testing.T) {
	var in StreamInput
	if err := json.Unmarshal([]byte(`{"message":"hi"}`), &in); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if in.Message != "hi" {
		t.Errorf("Message = %q, want hi", in.Message)
	}
	if !in.TokensEnabled() {
		t.Error("TokensEnabled() = false when stream_tokens omitted")
	}
}

func TestFeedbackValidate(t *testing.T) {
	fb := Feedback{RunID: "r1", Key: "stars", Score: 0.8}
	if err := fb.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	fb.RunID = ""
	if err := fb.Validate(); err == nil {
		t.Error("Validate() error = nil for missing run_id")
	}
}

func TestTaskDataValidate(t *testing.T) {
	td := TaskData{Name: "job", RunID: "r1", State: TaskStateRunning}
	if err := td.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	td.Result = TaskResultSuccess
	if err := td.Validate(); err == nil {
		t.Error("Validate() error = nil for result on running task")
	}

	td.State = TaskStateComplete
	if err := td.Validate(); err != nil {
		t.Errorf("Validate() error = %v for complete task", err)
	}
}

func TestModelCatalogDefaults(t *testing.T) {
	for _, p := range []ModelProvider{ProviderOpenAI, ProviderAnthropic, ProviderGoogle, ProviderGroq, ProviderFake} {
		key := DefaultModelFor(p)
		if key == "" {
			t.Errorf("DefaultModelFor(%s) = empty", p)
			continue
		}
		spec, ok := ModelCatalog[key]
		if !ok {
			t.Errorf("default model %q for %s not in catalog", key, p)
			continue
		}
		if spec.Provider != p {
			t.Errorf("catalog provider for %q = %s, want %s", key, spec.Provider, p)
		}
	}

	// Ollama models are registered dynamically, never from the catalog.
	if DefaultModelFor(ProviderOllama) != "" {
		t.Error("DefaultModelFor(ollama) should be empty")
	}
}
