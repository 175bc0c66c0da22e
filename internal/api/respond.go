package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/procscope/procscope/pkg/errors"
	"github.com/procscope/procscope/pkg/store"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Request string `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to an HTTP status and a structured JSON body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if stderrors.Is(err, store.ErrNotFound) {
		code = errors.ErrCodeProcessNotFound
	}
	if code == "" {
		code = errors.ErrCodeInternal
	}

	writeJSON(w, statusFor(code), errorResponse{Error: errorBody{
		Code:    string(code),
		Message: errors.UserMessage(err),
		Request: middleware.GetReqID(r.Context()),
	}})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidGraph,
		errors.ErrCodeInvalidDocument,
		errors.ErrCodeInvalidWeight,
		errors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case errors.ErrCodeUnknownNode, errors.ErrCodeProcessNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNoPath, errors.ErrCodeDegenerateGraph:
		return http.StatusUnprocessableEntity
	case errors.ErrCodePathLimitExceeded:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeStore, errors.ErrCodeCache:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// processID extracts the processID route parameter.
func processID(r *http.Request) string {
	return chi.URLParam(r, "processID")
}
