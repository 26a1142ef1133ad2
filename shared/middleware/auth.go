package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/agora-forum/agora/shared/middleware/metrics"
	"github.com/agora-forum/agora/shared/utils"
)

// Verifier turns a raw Authorization header into a subject identifier.
type Verifier interface {
	Verify(authorizationHeader string) (domain.UserId, error)
}

// SessionResolver loads the user behind a verified token and marks it active.
type SessionResolver interface {
	Resolve(ctx context.Context, userId domain.UserId) (*domain.User, error)
}

// Key to store the resolved user in the request context
type key int

const UserKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	verifier Verifier
	sessions SessionResolver
}

func NewAuth(verifier Verifier, sessions SessionResolver) *Auth {
	return &Auth{
		verifier: verifier,
		sessions: sessions,
	}
}

// NeedAuth returns middleware that requires a valid bearer token for an existing user.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.authenticate(r)
			if err != nil {
				reject(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticate never touches storage unless the token verified.
func (a *Auth) authenticate(r *http.Request) (*domain.User, error) {
	userId, err := a.verifier.Verify(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return a.sessions.Resolve(r.Context(), userId)
}

func reject(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, internal_errors.ErrMissingToken):
		metrics.AuthFailures.WithLabelValues("missing_token").Inc()
		utils.WriteJSONError(w, http.StatusUnauthorized, "No authentication token, access denied")
	case errors.Is(err, internal_errors.ErrInvalidToken):
		metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
		utils.WriteJSONError(w, http.StatusUnauthorized, "Token is invalid")
	case errors.Is(err, internal_errors.ErrUserNotFound):
		// token outlived its user
		metrics.AuthFailures.WithLabelValues("user_not_found").Inc()
		utils.WriteJSONError(w, http.StatusUnauthorized, "User not found")
	default:
		metrics.AuthFailures.WithLabelValues("internal").Inc()
		logger.Log.Error("session resolution failed", "component", "auth", "error", err)
		utils.WriteJSONError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetUserFromContext retrieves the user from the context
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
