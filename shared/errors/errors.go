package errors

import stderrors "errors"

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

var (
	// ErrMissingToken: no bearer token in the request.
	ErrMissingToken = stderrors.New("no authentication token")
	// ErrInvalidToken covers malformed, badly signed and expired tokens.
	ErrInvalidToken = stderrors.New("invalid token")
	ErrUserNotFound = stderrors.New("user not found")
	// ErrAggregationFailed wraps any storage failure while gathering user content.
	ErrAggregationFailed = stderrors.New("content aggregation failed")
)
