package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JoshuaC215/agent-service-toolkit/pkg/agents"
)

type errorBody struct {
	Detail string `json:"detail"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// respondError maps domain errors to the HTTP contract: unknown agent is
// 404, invalid input is 422, anything else is an opaque 500.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, agents.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Detail: err.Error()})
	case errors.Is(err, agents.ErrInvalidInput):
		respondJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: err.Error()})
	default:
		slog.Error("request failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorBody{Detail: "Unexpected error"})
	}
}
