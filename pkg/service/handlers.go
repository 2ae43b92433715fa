package service

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/agents"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/llms"
	"github.com/JoshuaC215/agent-service-toolkit/pkg/schema"
)

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, schema.ServiceMetadata{
		Agents:       s.agents.List(),
		Models:       s.models.Models(),
		DefaultAgent: s.agents.Default(),
		DefaultModel: s.models.DefaultModel(),
	})
}

// resolve turns a request body into a runnable agent invocation. All
// failures here are client errors; the error wrapping decides the status.
func (s *Service) resolve(r *http.Request, input *schema.UserInput, streamTokens bool) (agents.Agent, agents.Invocation, error) {
	agent, err := s.agents.Get(chi.URLParam(r, "agent"))
	if err != nil {
		return nil, agents.Invocation{}, err
	}

	if err := agents.ValidateConfig(input.AgentConfig); err != nil {
		return nil, agents.Invocation{}, err
	}

	provider, err := s.models.Get(input.Model)
	if err != nil {
		return nil, agents.Invocation{}, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err)
	}
	provider = llms.Instrument(provider, s.metrics)

	threadID := input.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	history, err := s.store.History(r.Context(), threadID)
	if err != nil {
		return nil, agents.Invocation{}, fmt.Errorf("failed to load history: %w", err)
	}

	return agent, agents.Invocation{
		Message:      input.Message,
		ThreadID:     threadID,
		RunID:        uuid.NewString(),
		History:      history,
		Provider:     provider,
		StreamTokens: streamTokens,
		Config:       input.AgentConfig,
	}, nil
}

func (s *Service) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var input schema.UserInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err))
		return
	}

	agent, inv, err := s.resolve(r, &input, false)
	if err != nil {
		respondError(w, err)
		return
	}

	events, err := agent.Stream(r.Context(), inv)
	if err != nil {
		respondError(w, err)
		return
	}

	var produced []schema.ChatMessage
	var final *schema.ChatMessage
	for ev := range events {
		switch ev.Type {
		case agents.EventMessage:
			produced = append(produced, *ev.Message)
			if ev.Message.Type == schema.MessageTypeAI {
				final = ev.Message
			}
		case agents.EventError:
			respondError(w, ev.Err)
			return
		}
	}
	if final == nil {
		respondError(w, fmt.Errorf("agent produced no response"))
		return
	}

	s.persist(r, inv, produced)
	respondJSON(w, http.StatusOK, final)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	var input schema.StreamInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err))
		return
	}

	agent, inv, err := s.resolve(r, &input.UserInput, input.TokensEnabled())
	if err != nil {
		respondError(w, err)
		return
	}

	events, err := agent.Stream(r.Context(), inv)
	if err != nil {
		respondError(w, err)
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		respondError(w, err)
		return
	}

	var produced []schema.ChatMessage
	for ev := range events {
		switch ev.Type {
		case agents.EventToken:
			if input.TokensEnabled() {
				sse.send(schema.StreamEvent{Type: schema.StreamEventToken, Content: ev.Token})
			}
		case agents.EventMessage:
			produced = append(produced, *ev.Message)
			sse.send(schema.StreamEvent{Type: schema.StreamEventMessage, Content: ev.Message})
		case agents.EventError:
			sse.send(schema.StreamEvent{Type: schema.StreamEventError, Content: "Unexpected error"})
			sse.done()
			return
		}
	}

	s.persist(r, inv, produced)
	sse.done()
}

// persist appends the user turn and everything the agent produced to the
// thread. Persistence failures are logged, not surfaced; the response has
// already been computed.
func (s *Service) persist(r *http.Request, inv agents.Invocation, produced []schema.ChatMessage) {
	msgs := make([]schema.ChatMessage, 0, len(produced)+1)
	msgs = append(msgs, schema.ChatMessage{
		Type:    schema.MessageTypeHuman,
		Content: inv.Message,
		RunID:   inv.RunID,
	})
	msgs = append(msgs, produced...)

	if err := s.store.AppendMessages(r.Context(), inv.ThreadID, inv.RunID, msgs); err != nil {
		logStoreFailure(err)
	}
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	var input schema.ChatHistoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err))
		return
	}
	if input.ThreadID == "" {
		respondError(w, fmt.Errorf("%w: thread_id is required", agents.ErrInvalidInput))
		return
	}

	messages, err := s.store.History(r.Context(), input.ThreadID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schema.ChatHistory{Messages: messages})
}

func (s *Service) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var fb schema.Feedback
	if err := json.NewDecoder(r.Body).Decode(&fb); err != nil {
		respondError(w, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err))
		return
	}
	if err := fb.Validate(); err != nil {
		respondError(w, fmt.Errorf("%w: %v", agents.ErrInvalidInput, err))
		return
	}

	if err := s.store.RecordFeedback(r.Context(), fb); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, schema.FeedbackResponse{Status: "success"})
}
