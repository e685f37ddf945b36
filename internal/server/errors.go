package server

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/waypoint/internal/llm"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/roadmap"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	RunID string `json:"runId,omitempty"`
	Stage string `json:"stage,omitempty"`
}

// classify maps a pipeline error to an HTTP status and a stable error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, roadmap.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, llm.ErrTimeout):
		return http.StatusGatewayTimeout, "upstream_timeout"
	case errors.Is(err, llm.ErrUpstreamFailure):
		return http.StatusBadGateway, "upstream_failure"
	case errors.Is(err, llm.ErrEmptyResponse):
		return http.StatusBadGateway, "empty_response"
	case errors.Is(err, llm.ErrUnparsableResponse):
		return http.StatusBadGateway, "unparsable_response"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	body := errorBody{Error: err.Error(), Code: code}

	var pErr *roadmap.PipelineError
	if errors.As(err, &pErr) {
		body.RunID = pErr.RunID
		body.Stage = string(pErr.Stage)
	}
	if status >= http.StatusInternalServerError {
		s.logger.WarnContext(r.Context(), "request_failed", "path", r.URL.Path, "code", code, "error", err)
	}
	writeJSON(w, status, body)
}
