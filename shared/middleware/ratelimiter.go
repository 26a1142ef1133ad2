package middleware

import (
	"net"
	"net/http"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/middleware/metrics"
	"github.com/agora-forum/agora/shared/middleware/ratelimiter"
	"github.com/agora-forum/agora/shared/utils"
	"github.com/tomasen/realip"
)

// RateLimit refuses requests once the identity's bucket is empty. Admins are
// let through, which only takes effect when the limiter runs after NeedAuth.
func RateLimit(rl *ratelimiter.UserRateLimiter, scope string, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := GetUserFromContext(r); user != nil && user.Role == domain.RoleAdmin {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				metrics.RateLimited.WithLabelValues(scope).Inc()
				utils.WriteJSONError(w, http.StatusTooManyRequests, "Rate limit exceeded, try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext works only after NeedAuth.
func GetUserIDFromContext(r *http.Request) (string, error) {
	user := GetUserFromContext(r)
	if user == nil {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Not authorized", StatusCode: http.StatusUnauthorized}
	}
	return "user_" + user.Id, nil
}

// unknownClient is the shared bucket for callers without a usable address.
const unknownClient = "unknown"

// GetIP returns the client address, honouring X-Real-Ip and X-Forwarded-For
// set by the reverse proxy in front of the API. It never rejects: callers
// without a parseable IP (unix sockets, odd proxies) are keyed by the raw
// remote address, or share one bucket when even that is empty.
func GetIP(r *http.Request) (string, error) {
	ip := realip.FromRequest(r)
	if net.ParseIP(ip) != nil {
		return ip, nil
	}
	if r.RemoteAddr != "" {
		return "addr_" + r.RemoteAddr, nil
	}
	return unknownClient, nil
}
