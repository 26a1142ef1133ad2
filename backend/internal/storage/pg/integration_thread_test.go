package pg

import (
	"context"
	"testing"

	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateThread(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "creator")

	t.Run("links the thread to its author", func(t *testing.T) {
		id := createTestThread(t, domain.Threads, author, "mine")

		user, err := storage.User(ctx, author)
		require.NoError(t, err)
		assert.Contains(t, user.Threads, id)

		threads, err := storage.ResolveThreads(ctx, domain.Threads, domain.Refs{id}, domain.Expansion{})
		require.NoError(t, err)
		require.NotNil(t, threads[0].Likes)
		assert.Equal(t, 0, threads[0].Likes.Count)
		assert.Equal(t, "open", threads[0].Status)
	})

	t.Run("unknown author rolls back", func(t *testing.T) {
		_, err := storage.CreateThread(ctx, domain.Threads, domain.ThreadCreationData{Title: "x", Author: "missing"})
		assert.ErrorIs(t, err, internal_errors.ErrUserNotFound)
	})

	t.Run("wrong collection", func(t *testing.T) {
		_, err := storage.CreateThread(ctx, domain.Replies, domain.ThreadCreationData{Title: "x", Author: author})
		assert.Error(t, err)
	})
}

func TestCreateReply(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "reply-creator")
	thread := createTestThread(t, domain.Threads, author, "parent")

	t.Run("missing parent", func(t *testing.T) {
		_, err := storage.CreateReply(ctx, domain.Replies, domain.ReplyCreationData{Content: "x", Author: author, Thread: "missing"})
		var withStatus *internal_errors.ErrorWithStatusCode
		assert.ErrorAs(t, err, &withStatus)

		user, err := storage.User(ctx, author)
		require.NoError(t, err)
		assert.Empty(t, user.Replies, "nothing is linked when the parent is missing")
	})

	t.Run("wrong collection", func(t *testing.T) {
		_, err := storage.CreateReply(ctx, domain.Threads, domain.ReplyCreationData{Content: "x", Author: author, Thread: thread})
		assert.Error(t, err)
	})
}

func TestAddReaction(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "reacted")
	fan := createTestUser(t, "reactor")
	thread := createTestThread(t, domain.Threads, author, "reactions")

	like(t, domain.Threads, thread, fan)
	like(t, domain.Threads, thread, fan)
	require.NoError(t, storage.AddReaction(ctx, domain.Threads, thread, author, domain.Dislike))

	threads, err := storage.ResolveThreads(ctx, domain.Threads, domain.Refs{thread}, domain.Expansion{})
	require.NoError(t, err)
	assert.Equal(t, 1, threads[0].Likes.Count, "liking twice counts once")
	assert.Equal(t, []domain.UserId{fan}, threads[0].Likes.Users)
	assert.Equal(t, 1, threads[0].Dislikes.Count)
	assert.True(t, threads[0].Dislikes.Has(author))

	assert.Error(t, storage.AddReaction(ctx, domain.Threads, thread, fan, domain.Reaction("meh")))
}

func TestDeleteItem(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "deleter")
	thread := createTestThread(t, domain.Threads, author, "short lived")

	require.NoError(t, storage.DeleteItem(ctx, domain.Threads, thread))

	err := storage.DeleteItem(ctx, domain.Threads, thread)
	var withStatus *internal_errors.ErrorWithStatusCode
	assert.ErrorAs(t, err, &withStatus)

	user, err := storage.User(ctx, author)
	require.NoError(t, err)
	assert.Contains(t, user.Threads, thread, "references are left dangling")
}
