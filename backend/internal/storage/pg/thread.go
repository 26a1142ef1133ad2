package pg

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var errItemNotFound = &internal_errors.ErrorWithStatusCode{Message: "Item not found", StatusCode: http.StatusNotFound}

// CreateThread stores a thread in coll (threads or trending topics) with empty
// reaction counters. Regular threads are also appended to the author's threads.
func (s *Storage) CreateThread(ctx context.Context, coll domain.Collection, data domain.ThreadCreationData) (domain.ThreadId, error) {
	if coll != domain.Threads && coll != domain.TrendingTopics {
		return "", fmt.Errorf("%s does not hold threads", coll)
	}
	table, err := tableName(coll)
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	err = WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, title, content, category, author_id, likes_count, like_users, dislikes_count, dislike_users)
			VALUES ($1, $2, $3, $4, $5, 0, '{}', 0, '{}')`, table),
			id, data.Title, data.Content, data.Category, data.Author)
		if err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}
		if coll != domain.Threads {
			return nil
		}
		return appendUserRef(ctx, tx, "thread_ids", data.Author, id)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateReply stores a reply in coll (replies or trending replies) and links
// it from its parent thread. Regular replies are also appended to the author's replies.
func (s *Storage) CreateReply(ctx context.Context, coll domain.Collection, data domain.ReplyCreationData) (domain.ReplyId, error) {
	if coll != domain.Replies && coll != domain.TrendingReplies {
		return "", fmt.Errorf("%s does not hold replies", coll)
	}
	table, err := tableName(coll)
	if err != nil {
		return "", err
	}
	parentTable, err := tableName(parentCollection(coll))
	if err != nil {
		return "", err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	id := uuid.NewString()
	err = WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET reply_ids = array_append(reply_ids, $2) WHERE id = $1`, parentTable),
			data.Thread, id)
		if err != nil {
			return fmt.Errorf("failed to link reply: %w", err)
		}
		if err := requireAffected(result, errItemNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (id, content, author_id, thread_id, likes_count, like_users, dislikes_count, dislike_users)
			VALUES ($1, $2, $3, $4, 0, '{}', 0, '{}')`, table),
			id, data.Content, data.Author, data.Thread)
		if err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}
		if coll != domain.Replies {
			return nil
		}
		return appendUserRef(ctx, tx, "reply_ids", data.Author, id)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func appendUserRef(ctx context.Context, tx *sqlx.Tx, column string, userId domain.UserId, ref string) error {
	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE users SET %[1]s = array_append(%[1]s, $2) WHERE id = $1`, column),
		userId, ref)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", column, err)
	}
	return requireAffected(result, internal_errors.ErrUserNotFound)
}

// AddReaction puts userId into the like or dislike set of an item and bumps
// the counter. Reacting twice is a no-op. Missing counters start from zero.
func (s *Storage) AddReaction(ctx context.Context, coll domain.Collection, itemId string, userId domain.UserId, reaction domain.Reaction) error {
	table, err := tableName(coll)
	if err != nil {
		return err
	}
	var countCol, usersCol string
	switch reaction {
	case domain.Like:
		countCol, usersCol = "likes_count", "like_users"
	case domain.Dislike:
		countCol, usersCol = "dislikes_count", "dislike_users"
	default:
		return fmt.Errorf("unknown reaction %q", reaction)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`
		UPDATE %[1]s SET
			%[3]s = array_append(COALESCE(%[3]s, '{}'), $2),
			%[2]s = COALESCE(%[2]s, 0) + 1
		WHERE id = $1 AND NOT ($2 = ANY(COALESCE(%[3]s, '{}')))`, table, countCol, usersCol)
	if _, err := s.db.ExecContext(ctx, query, itemId, userId); err != nil {
		return fmt.Errorf("failed to add %s: %w", reaction, err)
	}
	return nil
}

// DeleteItem removes a thread or reply. References to it are left dangling.
func (s *Storage) DeleteItem(ctx context.Context, coll domain.Collection, id string) error {
	table, err := tableName(coll)
	if err != nil {
		return err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", coll, err)
	}
	if err := requireAffected(result, errItemNotFound); err != nil {
		if errors.Is(err, errItemNotFound) {
			return fmt.Errorf("%s %s: %w", coll, id, err)
		}
		return err
	}
	return nil
}
