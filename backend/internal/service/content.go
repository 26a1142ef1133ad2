package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agora-forum/agora/shared/api"
	"github.com/agora-forum/agora/shared/domain"
	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/middleware/metrics"
	"golang.org/x/sync/errgroup"
)

// ContentService gathers what a user wrote, liked and saved.
type ContentService interface {
	OwnedContent(ctx context.Context, userId domain.UserId) (*api.OwnedContentResponse, error)
	LikedContent(ctx context.Context, userId domain.UserId) (api.LikedContentResponse, error)
	SavedContent(ctx context.Context, userId domain.UserId) (*api.SavedContentResponse, error)
}

// ContentStorage defines storage interface for content aggregation.
// Resolve* return one entry per reference, nil where the target is gone.
type ContentStorage interface {
	User(ctx context.Context, id domain.UserId) (*domain.User, error)
	UserExists(ctx context.Context, id domain.UserId) (bool, error)
	ResolveThreads(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Thread, error)
	ResolveReplies(ctx context.Context, coll domain.Collection, ids domain.Refs, exp domain.Expansion) ([]*domain.Reply, error)
	ThreadsLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error)
	ThreadsWithRepliesLikedBy(ctx context.Context, userId domain.UserId, exp domain.Expansion) ([]domain.Thread, error)
}

type Content struct {
	storage ContentStorage
}

func NewContent(storage ContentStorage) ContentService {
	return &Content{storage: storage}
}

var (
	withReplies = domain.Expansion{Author: domain.AuthorProfile, Replies: true}
	withAuthor  = domain.Expansion{Author: domain.AuthorProfile}
	// saved items show only who wrote them
	withAuthorCard = domain.Expansion{Author: domain.AuthorCard}
)

// OwnedContent returns the threads and replies userId authored.
func (s *Content) OwnedContent(ctx context.Context, userId domain.UserId) (resp *api.OwnedContentResponse, err error) {
	defer observe("owned", time.Now(), &err)

	user, err := s.storage.User(ctx, userId)
	if err != nil {
		return nil, aggregationError("failed to load user", err)
	}

	threads, err := s.storage.ResolveThreads(ctx, domain.Threads, user.Threads, withReplies)
	if err != nil {
		return nil, aggregationError("failed to load authored threads", err)
	}
	replies, err := s.storage.ResolveReplies(ctx, domain.Replies, user.Replies, withAuthor)
	if err != nil {
		return nil, aggregationError("failed to load authored replies", err)
	}

	return &api.OwnedContentResponse{
		Threads:   api.ShapeThreads(resolved(threads)),
		Responses: api.ShapeReplies(resolved(replies)),
	}, nil
}

// LikedContent returns every thread userId liked followed by every reply userId liked.
func (s *Content) LikedContent(ctx context.Context, userId domain.UserId) (resp api.LikedContentResponse, err error) {
	defer observe("liked", time.Now(), &err)

	exists, err := s.storage.UserExists(ctx, userId)
	if err != nil {
		return nil, aggregationError("failed to check user", err)
	}
	if !exists {
		return nil, internal_errors.ErrUserNotFound
	}

	var likedThreads, threadsWithLikedReplies []domain.Thread
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		likedThreads, err = s.storage.ThreadsLikedBy(gctx, userId, withReplies)
		return err
	})
	g.Go(func() error {
		var err error
		threadsWithLikedReplies, err = s.storage.ThreadsWithRepliesLikedBy(gctx, userId, withReplies)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, aggregationError("failed to load liked content", err)
	}

	likedReplies := repliesLikedBy(threadsWithLikedReplies, userId)

	items := make(api.LikedContentResponse, 0, len(likedThreads)+len(likedReplies))
	for _, t := range api.ShapeThreads(likedThreads) {
		items = append(items, t)
	}
	for _, r := range api.ShapeReplies(likedReplies) {
		items = append(items, r)
	}
	return items, nil
}

// SavedContent returns the four saved collections of userId. Entries are not
// shaped and saved references to deleted records are dropped.
func (s *Content) SavedContent(ctx context.Context, userId domain.UserId) (resp *api.SavedContentResponse, err error) {
	defer observe("saved", time.Now(), &err)

	user, err := s.storage.User(ctx, userId)
	if err != nil {
		return nil, aggregationError("failed to load user", err)
	}

	var posts, topics []*domain.Thread
	var replies, trendingReplies []*domain.Reply
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		posts, err = s.storage.ResolveThreads(gctx, domain.Threads, user.Saved.Posts, withAuthorCard)
		return err
	})
	g.Go(func() error {
		var err error
		replies, err = s.storage.ResolveReplies(gctx, domain.Replies, user.Saved.Replies, withAuthorCard)
		return err
	})
	g.Go(func() error {
		var err error
		topics, err = s.storage.ResolveThreads(gctx, domain.TrendingTopics, user.Saved.TrendingTopics, withAuthorCard)
		return err
	})
	g.Go(func() error {
		var err error
		trendingReplies, err = s.storage.ResolveReplies(gctx, domain.TrendingReplies, user.Saved.TrendingReplies, withAuthorCard)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, aggregationError("failed to load saved items", err)
	}

	return &api.SavedContentResponse{
		Posts:           resolved(posts),
		Replies:         resolved(replies),
		TrendingTopics:  resolved(topics),
		TrendingReplies: resolved(trendingReplies),
	}, nil
}

// repliesLikedBy keeps only the replies userId liked; other replies of the
// same threads are not included.
func repliesLikedBy(threads []domain.Thread, userId domain.UserId) []domain.Reply {
	var liked []domain.Reply
	for _, t := range threads {
		for _, r := range t.Replies {
			if r.Likes.Has(userId) {
				liked = append(liked, r)
			}
		}
	}
	return liked
}

// resolved drops references whose target no longer exists.
func resolved[T any](refs []*T) []T {
	out := make([]T, 0, len(refs))
	for _, ref := range refs {
		if ref != nil {
			out = append(out, *ref)
		}
	}
	return out
}

func aggregationError(msg string, err error) error {
	if errors.Is(err, internal_errors.ErrUserNotFound) {
		return internal_errors.ErrUserNotFound
	}
	return fmt.Errorf("%w: %s: %w", internal_errors.ErrAggregationFailed, msg, err)
}

func observe(operation string, start time.Time, err *error) {
	outcome := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, internal_errors.ErrUserNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	metrics.AggregationDuration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
