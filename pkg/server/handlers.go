package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kadirpekel/dealfinder/pkg/config"
	"github.com/kadirpekel/dealfinder/pkg/prompt"
	"github.com/kadirpekel/dealfinder/pkg/ratelimit"
	"github.com/kadirpekel/dealfinder/pkg/reasoning"
	"github.com/kadirpekel/dealfinder/pkg/tool"
)

const maxRequestBytes = 64 << 10

// AskRequest is the body of POST /v1/ask.
type AskRequest struct {
	Question string `json:"question"`

	// IncludeTrace adds every step to the response.
	IncludeTrace bool `json:"include_trace,omitempty"`
}

// AskResponse is returned for completed and budget-exhausted runs alike.
type AskResponse struct {
	RunID      string          `json:"run_id"`
	Answer     string          `json:"answer"`
	State      reasoning.State `json:"state"`
	Iterations int             `json:"iterations"`
	DurationMS int64           `json:"duration_ms"`
	Steps      []prompt.Step   `json:"steps,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	writeJSON(w, http.StatusOK, config.Schema())
}

func (s *HTTPServer) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]tool.Spec{"tools": s.agent.ToolSpecs()})
}

func (s *HTTPServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	res, err := s.agent.Ask(r.Context(), req.Question)
	status := http.StatusOK

	switch {
	case err == nil:
	case errors.Is(err, reasoning.ErrIterationBudgetExceeded):
		// A stopped run is still an answer.
	case errors.Is(err, reasoning.ErrModelUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	if err != nil {
		slog.Warn("Ask failed", "error", err, "status", status)
	}
	if res == nil {
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	s.recordTokens(r, res)

	resp := AskResponse{
		RunID:      res.RunID,
		Answer:     res.Answer,
		State:      res.State,
		Iterations: res.Iterations,
		DurationMS: res.Duration.Milliseconds(),
	}
	if req.IncludeTrace && res.Trace != nil {
		resp.Steps = res.Trace.Steps
	}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, status, resp)
}

func (s *HTTPServer) recordTokens(r *http.Request, res *reasoning.Result) {
	if s.limiter == nil {
		return
	}
	tokens := int64(res.PromptTokens + res.CompletionTokens)
	if err := s.limiter.Record(context.WithoutCancel(r.Context()), ratelimit.ClientID(r), tokens, 0); err != nil {
		slog.Warn("Failed to record token usage", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
