package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
)

// SessionStorage persists the last-active mark and returns the user in one call.
type SessionStorage interface {
	TouchUser(ctx context.Context, id domain.UserId, at time.Time) (*domain.User, error)
}

// Session resolves the user behind a verified token.
type Session struct {
	storage SessionStorage
	now     func() time.Time
}

func NewSession(storage SessionStorage) *Session {
	return &Session{storage: storage, now: time.Now}
}

// Resolve loads the user and stamps last_active_at. Every call writes;
// concurrent requests of one user race and the last write wins.
func (s *Session) Resolve(ctx context.Context, userId domain.UserId) (*domain.User, error) {
	user, err := s.storage.TouchUser(ctx, userId, s.now().UTC())
	if err != nil {
		if errors.Is(err, internal_errors.ErrUserNotFound) {
			return nil, internal_errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}
	return user, nil
}
