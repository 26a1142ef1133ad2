package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/agora-forum/agora/shared/api"
	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock for ContentStorage ---

type MockContentStorage struct {
	UserFunc                      func(ctx context.Context, id domain.UserId) (*domain.User, error)
	UserExistsFunc                func(ctx context.Context, id domain.UserId) (bool, error)
	ResolveThreadsFunc            func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error)
	ResolveRepliesFunc            func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error)
	ThreadsLikedByFunc            func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error)
	ThreadsWithRepliesLikedByFunc func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockContentStorage) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *MockContentStorage) User(ctx context.Context, id domain.UserId) (*domain.User, error) {
	m.record("User")
	if m.UserFunc != nil {
		return m.UserFunc(ctx, id)
	}
	return nil, internal_errors.ErrUserNotFound
}

func (m *MockContentStorage) UserExists(ctx context.Context, id domain.UserId) (bool, error) {
	m.record("UserExists")
	if m.UserExistsFunc != nil {
		return m.UserExistsFunc(ctx, id)
	}
	return false, nil
}

func (m *MockContentStorage) ResolveThreads(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
	m.record("ResolveThreads")
	if m.ResolveThreadsFunc != nil {
		return m.ResolveThreadsFunc(ctx, coll, ids, exp)
	}
	return nil, nil
}

func (m *MockContentStorage) ResolveReplies(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
	m.record("ResolveReplies")
	if m.ResolveRepliesFunc != nil {
		return m.ResolveRepliesFunc(ctx, coll, ids, exp)
	}
	return nil, nil
}

func (m *MockContentStorage) ThreadsLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
	m.record("ThreadsLikedBy")
	if m.ThreadsLikedByFunc != nil {
		return m.ThreadsLikedByFunc(ctx, userId, exp)
	}
	return nil, nil
}

func (m *MockContentStorage) ThreadsWithRepliesLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
	m.record("ThreadsWithRepliesLikedBy")
	if m.ThreadsWithRepliesLikedByFunc != nil {
		return m.ThreadsWithRepliesLikedByFunc(ctx, userId, exp)
	}
	return nil, nil
}

func (m *MockContentStorage) called(call string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.calls {
		if c == call {
			return true
		}
	}
	return false
}

var created = time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

func TestOwnedContent(t *testing.T) {
	ctx := context.Background()

	t.Run("shapes authored threads and replies", func(t *testing.T) {
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id, Threads: domain.Refs{"t1"}, Replies: domain.Refs{"r1"}}, nil
			},
			ResolveThreadsFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
				assert.Equal(t, domain.Threads, coll)
				assert.Equal(t, domain.Refs{"t1"}, ids)
				assert.Equal(t, domain.Expansion{Author: domain.AuthorProfile, Replies: true}, exp)
				return []*domain.Thread{{
					Id:        "t1",
					CreatedAt: created,
					Likes:     &domain.Engagement{Count: 2, Users: []domain.UserId{"u2", "u3"}},
				}}, nil
			},
			ResolveRepliesFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
				assert.Equal(t, domain.Replies, coll)
				assert.Equal(t, domain.Expansion{Author: domain.AuthorProfile}, exp)
				return []*domain.Reply{{
					Id:        "r1",
					CreatedAt: created,
					Dislikes:  &domain.Engagement{Count: 1, Users: []domain.UserId{"u4"}},
				}}, nil
			},
		}
		service := NewContent(storage)

		resp, err := service.OwnedContent(ctx, "u1")
		require.NoError(t, err)

		require.Len(t, resp.Threads, 1)
		thread := resp.Threads[0]
		assert.Equal(t, "t1", thread.Id)
		assert.Equal(t, "3/14/2024", thread.CreatedAt)
		assert.Equal(t, 2, thread.LikesCount)
		assert.Equal(t, 0, thread.DislikesCount)
		assert.Equal(t, 0, thread.RepliesCount)

		require.Len(t, resp.Responses, 1)
		reply := resp.Responses[0]
		assert.Equal(t, "r1", reply.Id)
		assert.Equal(t, 0, reply.LikesCount)
		assert.Equal(t, 1, reply.DislikesCount)
	})

	t.Run("drops references to deleted records", func(t *testing.T) {
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id, Threads: domain.Refs{"gone", "t2"}, Replies: domain.Refs{"gone"}}, nil
			},
			ResolveThreadsFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
				return []*domain.Thread{nil, {Id: "t2", CreatedAt: created}}, nil
			},
			ResolveRepliesFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
				return []*domain.Reply{nil}, nil
			},
		}

		resp, err := NewContent(storage).OwnedContent(ctx, "u1")
		require.NoError(t, err)

		require.Len(t, resp.Threads, 1)
		assert.Equal(t, "t2", resp.Threads[0].Id)
		assert.NotNil(t, resp.Responses)
		assert.Empty(t, resp.Responses)
	})

	t.Run("user without content gets empty lists", func(t *testing.T) {
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id}, nil
			},
		}

		resp, err := NewContent(storage).OwnedContent(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, resp.Threads)
		assert.NotNil(t, resp.Responses)
		assert.Empty(t, resp.Threads)
		assert.Empty(t, resp.Responses)
	})

	t.Run("unknown user", func(t *testing.T) {
		storage := &MockContentStorage{}

		resp, err := NewContent(storage).OwnedContent(ctx, "ghost")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, internal_errors.ErrUserNotFound)
		assert.False(t, storage.called("ResolveThreads"))
	})

	t.Run("storage failure", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id, Replies: domain.Refs{"r1"}}, nil
			},
			ResolveRepliesFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
				return nil, dbErr
			},
		}

		_, err := NewContent(storage).OwnedContent(ctx, "u1")

		assert.ErrorIs(t, err, internal_errors.ErrAggregationFailed)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, internal_errors.ErrUserNotFound)
	})
}

func TestLikedContent(t *testing.T) {
	ctx := context.Background()
	exists := func(ctx context.Context, id domain.UserId) (bool, error) { return true, nil }

	t.Run("threads first then only the liked replies", func(t *testing.T) {
		liked := &domain.Engagement{Count: 1, Users: []domain.UserId{"u1"}}
		other := &domain.Engagement{Count: 1, Users: []domain.UserId{"u9"}}
		storage := &MockContentStorage{
			UserExistsFunc: exists,
			ThreadsLikedByFunc: func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
				assert.Equal(t, "u1", userId)
				assert.True(t, exp.Replies)
				return []domain.Thread{
					{Id: "tA", CreatedAt: created, Likes: liked, Replies: []domain.Reply{{Id: "rA"}}},
					{Id: "tB", CreatedAt: created, Likes: liked},
				}, nil
			},
			ThreadsWithRepliesLikedByFunc: func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
				return []domain.Thread{
					{Id: "tC", Replies: []domain.Reply{
						{Id: "r1", Thread: "tC", CreatedAt: created, Likes: liked},
						{Id: "r2", Thread: "tC", CreatedAt: created, Likes: other},
						{Id: "r3", Thread: "tC", CreatedAt: created},
					}},
					{Id: "tD", Replies: []domain.Reply{
						{Id: "r4", Thread: "tD", CreatedAt: created, Likes: liked},
					}},
				}, nil
			},
		}

		items, err := NewContent(storage).LikedContent(ctx, "u1")
		require.NoError(t, err)
		require.Len(t, items, 4)

		first, ok := items[0].(api.ThreadResponse)
		require.True(t, ok)
		assert.Equal(t, "tA", first.Id)
		assert.Equal(t, 1, first.RepliesCount)
		assert.Equal(t, 1, first.LikesCount)

		second, ok := items[1].(api.ThreadResponse)
		require.True(t, ok)
		assert.Equal(t, "tB", second.Id)

		third, ok := items[2].(api.ReplyResponse)
		require.True(t, ok)
		assert.Equal(t, "r1", third.Id)
		assert.Equal(t, "3/14/2024", third.CreatedAt)

		fourth, ok := items[3].(api.ReplyResponse)
		require.True(t, ok)
		assert.Equal(t, "r4", fourth.Id)
	})

	t.Run("nothing liked", func(t *testing.T) {
		storage := &MockContentStorage{UserExistsFunc: exists}

		items, err := NewContent(storage).LikedContent(ctx, "u1")
		require.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})

	t.Run("unknown user", func(t *testing.T) {
		storage := &MockContentStorage{}

		items, err := NewContent(storage).LikedContent(ctx, "ghost")

		assert.Nil(t, items)
		assert.ErrorIs(t, err, internal_errors.ErrUserNotFound)
		assert.False(t, storage.called("ThreadsLikedBy"))
		assert.False(t, storage.called("ThreadsWithRepliesLikedBy"))
	})

	t.Run("either query failing fails the whole request", func(t *testing.T) {
		dbErr := errors.New("timeout")
		storage := &MockContentStorage{
			UserExistsFunc: exists,
			ThreadsLikedByFunc: func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
				return []domain.Thread{{Id: "tA"}}, nil
			},
			ThreadsWithRepliesLikedByFunc: func(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error) {
				return nil, dbErr
			},
		}

		items, err := NewContent(storage).LikedContent(ctx, "u1")

		assert.Nil(t, items)
		assert.ErrorIs(t, err, internal_errors.ErrAggregationFailed)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("existence check failure", func(t *testing.T) {
		dbErr := errors.New("timeout")
		storage := &MockContentStorage{
			UserExistsFunc: func(ctx context.Context, id domain.UserId) (bool, error) { return false, dbErr },
		}

		_, err := NewContent(storage).LikedContent(ctx, "u1")

		assert.ErrorIs(t, err, internal_errors.ErrAggregationFailed)
		assert.NotErrorIs(t, err, internal_errors.ErrUserNotFound)
	})
}

func TestSavedContent(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves every collection with author card", func(t *testing.T) {
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id, Saved: domain.SavedRefs{
					Posts:           domain.Refs{"t1", "gone"},
					Replies:         domain.Refs{"r1"},
					TrendingTopics:  domain.Refs{"tt1"},
					TrendingReplies: domain.Refs{"gone"},
				}}, nil
			},
			ResolveThreadsFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
				assert.Equal(t, domain.Expansion{Author: domain.AuthorCard}, exp)
				switch coll {
				case domain.Threads:
					assert.Equal(t, domain.Refs{"t1", "gone"}, ids)
					return []*domain.Thread{{Id: "t1"}, nil}, nil
				case domain.TrendingTopics:
					return []*domain.Thread{{Id: "tt1"}}, nil
				}
				t.Errorf("unexpected collection %q", coll)
				return nil, nil
			},
			ResolveRepliesFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error) {
				assert.Equal(t, domain.Expansion{Author: domain.AuthorCard}, exp)
				switch coll {
				case domain.Replies:
					return []*domain.Reply{{Id: "r1"}}, nil
				case domain.TrendingReplies:
					return []*domain.Reply{nil}, nil
				}
				t.Errorf("unexpected collection %q", coll)
				return nil, nil
			},
		}

		resp, err := NewContent(storage).SavedContent(ctx, "u1")
		require.NoError(t, err)

		require.Len(t, resp.Posts, 1)
		assert.Equal(t, "t1", resp.Posts[0].Id)
		require.Len(t, resp.Replies, 1)
		assert.Equal(t, "r1", resp.Replies[0].Id)
		require.Len(t, resp.TrendingTopics, 1)
		assert.Equal(t, "tt1", resp.TrendingTopics[0].Id)
		assert.NotNil(t, resp.TrendingReplies)
		assert.Empty(t, resp.TrendingReplies)
	})

	t.Run("unknown user", func(t *testing.T) {
		resp, err := NewContent(&MockContentStorage{}).SavedContent(ctx, "ghost")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, internal_errors.ErrUserNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		dbErr := errors.New("broken pipe")
		storage := &MockContentStorage{
			UserFunc: func(ctx context.Context, id domain.UserId) (*domain.User, error) {
				return &domain.User{Id: id}, nil
			},
			ResolveThreadsFunc: func(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error) {
				if coll == domain.TrendingTopics {
					return nil, dbErr
				}
				return nil, nil
			},
		}

		resp, err := NewContent(storage).SavedContent(ctx, "u1")

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, internal_errors.ErrAggregationFailed)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestResolved(t *testing.T) {
	a, b := "a", "b"
	assert.Equal(t, []string{"a", "b"}, resolved([]*string{&a, nil, &b, nil}))
	assert.Equal(t, []string{}, resolved[string](nil))
}
