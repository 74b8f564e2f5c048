package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gyaneshwarpardhi/productflow/internal/catalog"
	"github.com/gyaneshwarpardhi/productflow/internal/condition"
	"github.com/gyaneshwarpardhi/productflow/internal/editor"
	"github.com/gyaneshwarpardhi/productflow/internal/graph"
	"github.com/gyaneshwarpardhi/productflow/internal/input"
	"github.com/gyaneshwarpardhi/productflow/internal/session"
)

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the standard error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeErr maps err to a status code and writes the error envelope.
func writeErr(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	var (
		syntax *condition.SyntaxError
		fetch  *catalog.FetchFailure
		bad    *validationError
	)
	switch {
	case errors.As(err, &bad),
		errors.As(err, &syntax),
		errors.Is(err, condition.ErrUnknownField),
		errors.Is(err, input.ErrInvalidEvent),
		errors.Is(err, input.ErrUnknownEvent):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionClosed):
		return http.StatusNotFound
	case errors.Is(err, graph.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, graph.ErrDanglingReference),
		errors.Is(err, editor.ErrSelfLoop):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrQueueFull),
		errors.Is(err, session.ErrTooManySessions):
		return http.StatusTooManyRequests
	case errors.Is(err, session.ErrTimeout):
		return http.StatusServiceUnavailable
	case errors.As(err, &fetch):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
