package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/stretchr/testify/assert"
)

func TestWriteJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    interface{}
		expected string
		status   int
	}{
		{
			name:     "Valid JSON",
			input:    map[string]string{"message": "hello"},
			expected: `{"message":"hello"}`,
			status:   http.StatusOK,
		},
		{
			name:     "Invalid JSON (channel)",
			input:    make(chan int),
			expected: `{"error":"Internal error"}`,
			status:   http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			WriteJSON(rr, http.StatusOK, tt.input)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.Equal(t, tt.expected+"\n", rr.Body.String())
		})
	}
}

func TestWriteErrorAndStatusCode(t *testing.T) {
	t.Run("error with status code", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, &internal_errors.ErrorWithStatusCode{Message: "slow down", StatusCode: http.StatusTooManyRequests})

		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
		assert.JSONEq(t, `{"error":"slow down"}`, rr.Body.String())
	})

	t.Run("plain error does not leak", func(t *testing.T) {
		rr := httptest.NewRecorder()
		WriteErrorAndStatusCode(rr, errors.New("pq: connection refused"))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rr.Body.String())
	})
}
