// Package jwt issues and verifies the bearer tokens that identify a session.
package jwt

import (
	"fmt"
	"strings"
	"time"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/logger"
	"github.com/golang-jwt/jwt/v5"
)

// claim holding the subject identifier
const userIdClaim = "userId"

const bearerPrefix = "Bearer "

type JwtService interface {
	NewToken(userId domain.UserId) (string, error)
	DecodeToken(jwtStr string) (domain.UserId, error)
	Verify(authorizationHeader string) (domain.UserId, error)
}

type Jwt struct {
	secretKey string
	ttl       time.Duration
}

func New(secretKey string, ttl time.Duration) *Jwt {
	return &Jwt{secretKey, ttl}
}

func (j *Jwt) NewToken(userId domain.UserId) (string, error) {
	claims := jwt.MapClaims{}
	claims[userIdClaim] = userId
	claims["exp"] = time.Now().Add(j.ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("can't sign token: %w", err)
	}

	return tokenString, nil
}

// Verify takes a raw Authorization header value and returns the token subject.
// A value without the "Bearer " prefix is treated as the token itself.
func (j *Jwt) Verify(authorizationHeader string) (domain.UserId, error) {
	token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, bearerPrefix))
	if token == "" {
		return "", internal_errors.ErrMissingToken
	}
	return j.DecodeToken(token)
}

func (j *Jwt) DecodeToken(jwtStr string) (domain.UserId, error) {
	token, err := jwt.Parse(jwtStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		logger.Log.Debug("token rejected", "component", "jwt", "error", err)
		return "", fmt.Errorf("%w: %w", internal_errors.ErrInvalidToken, err)
	}
	if !token.Valid {
		return "", internal_errors.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", internal_errors.ErrInvalidToken
	}
	userId, ok := claims[userIdClaim].(string)
	if !ok || userId == "" {
		return "", fmt.Errorf("%w: missing %s claim", internal_errors.ErrInvalidToken, userIdClaim)
	}

	return userId, nil
}
