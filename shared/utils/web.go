package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agora-forum/agora/shared/api"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/logger"
)

const internalErrorMessage = "Internal server error"

// WriteJSON encodes v before touching the response so an encoding failure
// still produces a clean 500.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Log.Error("failed to encode response", "error", err)
		WriteJSONError(w, http.StatusInternalServerError, "Internal error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// WriteJSONError writes {"error": message} with the given status.
func WriteJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: message})
}

// WriteErrorAndStatusCode maps ErrorWithStatusCode to its status and message.
// Anything else is logged and reported as a generic 500.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		WriteJSONError(w, e.StatusCode, e.Message)
		return
	}
	logger.Log.Error("unhandled error", "error", err)
	WriteJSONError(w, http.StatusInternalServerError, internalErrorMessage)
}
