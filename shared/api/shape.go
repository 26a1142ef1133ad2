package api

import (
	"time"

	"github.com/agora-forum/agora/shared/domain"
)

// DateLayout renders a calendar date without time, e.g. 3/14/2024.
const DateLayout = "1/2/2006"

func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func ShapeThread(t domain.Thread) ThreadResponse {
	return ThreadResponse{
		Thread:        t,
		CreatedAt:     FormatDate(t.CreatedAt),
		LikesCount:    t.Likes.CountOrZero(),
		DislikesCount: t.Dislikes.CountOrZero(),
		RepliesCount:  len(t.Replies),
	}
}

func ShapeReply(r domain.Reply) ReplyResponse {
	return ReplyResponse{
		Reply:         r,
		CreatedAt:     FormatDate(r.CreatedAt),
		LikesCount:    r.Likes.CountOrZero(),
		DislikesCount: r.Dislikes.CountOrZero(),
	}
}

func ShapeThreads(threads []domain.Thread) []ThreadResponse {
	shaped := make([]ThreadResponse, len(threads))
	for i, t := range threads {
		shaped[i] = ShapeThread(t)
	}
	return shaped
}

func ShapeReplies(replies []domain.Reply) []ReplyResponse {
	shaped := make([]ReplyResponse, len(replies))
	for i, r := range replies {
		shaped[i] = ShapeReply(r)
	}
	return shaped
}
