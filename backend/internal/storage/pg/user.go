package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TouchUser sets last_active_at and returns the refreshed user in one round trip.
func (s *Storage) TouchUser(ctx context.Context, id domain.UserId, at time.Time) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row userRow
	err := s.db.GetContext(ctx, &row,
		`UPDATE users SET last_active_at = $2 WHERE id = $1 RETURNING `+userColumns,
		id, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal_errors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to touch user: %w", err)
	}
	return row.toDomain(), nil
}

// User returns the user with its reference collections.
func (s *Storage) User(ctx context.Context, id domain.UserId) (*domain.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, internal_errors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toDomain(), nil
}

func (s *Storage) UserExists(ctx context.Context, id domain.UserId) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return exists, nil
}

func (s *Storage) CreateUser(ctx context.Context, data domain.UserCreationData) (domain.UserId, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	role := data.Role
	if role == "" {
		role = domain.RoleUser
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, image, role) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, data.Name, data.Email, string(hash), data.Image, role)
	if err != nil {
		return "", fmt.Errorf("failed to create user: %w", err)
	}
	return id, nil
}

// CheckPassword reports whether password matches the stored hash.
func (s *Storage) CheckPassword(ctx context.Context, id domain.UserId, password string) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var hash string
	err := s.db.GetContext(ctx, &hash, `SELECT password_hash FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, internal_errors.ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to get password hash: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// DeleteUser removes the user only. Content and references to it are left in place.
func (s *Storage) DeleteUser(ctx context.Context, id domain.UserId) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(result, internal_errors.ErrUserNotFound)
}

func savedColumn(kind domain.SavedKind) (string, error) {
	switch kind {
	case domain.SavedPosts:
		return "saved_post_ids", nil
	case domain.SavedReplies:
		return "saved_reply_ids", nil
	case domain.SavedTrendingTopics:
		return "saved_trending_topic_ids", nil
	case domain.SavedTrendingReplies:
		return "saved_trending_reply_ids", nil
	}
	return "", fmt.Errorf("unknown saved collection %q", kind)
}

// SaveItem appends itemId to one of the user's saved collections.
// The target is not checked for existence.
func (s *Storage) SaveItem(ctx context.Context, userId domain.UserId, kind domain.SavedKind, itemId string) error {
	column, err := savedColumn(kind)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`UPDATE users SET %[1]s = array_append(%[1]s, $2) WHERE id = $1 AND NOT ($2 = ANY(%[1]s))`, column)
	if _, err := s.db.ExecContext(ctx, query, userId, itemId); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
