package pg

import (
	"database/sql"
	"time"

	"github.com/agora-forum/agora/shared/domain"
	"github.com/lib/pq"
)

const userColumns = `id, name, email, image, role, last_active_at, created_at,
	thread_ids, reply_ids,
	saved_post_ids, saved_reply_ids, saved_trending_topic_ids, saved_trending_reply_ids`

const threadColumns = `id, title, content, category, status, views, created_at, author_id, reply_ids,
	likes_count, like_users, dislikes_count, dislike_users`

const replyColumns = `id, content, created_at, author_id, thread_id,
	likes_count, like_users, dislikes_count, dislike_users`

// password_hash is never selected
type userRow struct {
	Id                    string         `db:"id"`
	Name                  string         `db:"name"`
	Email                 string         `db:"email"`
	Image                 string         `db:"image"`
	Role                  string         `db:"role"`
	LastActiveAt          time.Time      `db:"last_active_at"`
	CreatedAt             time.Time      `db:"created_at"`
	ThreadIds             pq.StringArray `db:"thread_ids"`
	ReplyIds              pq.StringArray `db:"reply_ids"`
	SavedPostIds          pq.StringArray `db:"saved_post_ids"`
	SavedReplyIds         pq.StringArray `db:"saved_reply_ids"`
	SavedTrendingTopicIds pq.StringArray `db:"saved_trending_topic_ids"`
	SavedTrendingReplyIds pq.StringArray `db:"saved_trending_reply_ids"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		Id:           r.Id,
		Name:         r.Name,
		Email:        r.Email,
		Image:        r.Image,
		Role:         r.Role,
		LastActiveAt: r.LastActiveAt,
		CreatedAt:    r.CreatedAt,
		Threads:      r.ThreadIds,
		Replies:      r.ReplyIds,
		Saved: domain.SavedRefs{
			Posts:           r.SavedPostIds,
			Replies:         r.SavedReplyIds,
			TrendingTopics:  r.SavedTrendingTopicIds,
			TrendingReplies: r.SavedTrendingReplyIds,
		},
	}
}

type authorRow struct {
	Id    string `db:"id"`
	Name  string `db:"name"`
	Image string `db:"image"`
	Role  string `db:"role"`
}

// EngagementColumns are the nullable reaction columns shared by threads and replies.
type EngagementColumns struct {
	LikesCount    sql.NullInt64  `db:"likes_count"`
	LikeUsers     pq.StringArray `db:"like_users"`
	DislikesCount sql.NullInt64  `db:"dislikes_count"`
	DislikeUsers  pq.StringArray `db:"dislike_users"`
}

func engagement(count sql.NullInt64, users pq.StringArray) *domain.Engagement {
	if !count.Valid && users == nil {
		return nil
	}
	e := &domain.Engagement{Count: int(count.Int64), Users: []domain.UserId(users)}
	if e.Users == nil {
		e.Users = []domain.UserId{}
	}
	return e
}

func (e EngagementColumns) likes() *domain.Engagement {
	return engagement(e.LikesCount, e.LikeUsers)
}

func (e EngagementColumns) dislikes() *domain.Engagement {
	return engagement(e.DislikesCount, e.DislikeUsers)
}

type threadRow struct {
	Id        string         `db:"id"`
	Title     string         `db:"title"`
	Content   string         `db:"content"`
	Category  string         `db:"category"`
	Status    string         `db:"status"`
	Views     int            `db:"views"`
	CreatedAt time.Time      `db:"created_at"`
	AuthorId  sql.NullString `db:"author_id"`
	ReplyIds  pq.StringArray `db:"reply_ids"`
	EngagementColumns
}

func (r threadRow) toDomain() *domain.Thread {
	return &domain.Thread{
		Id:        r.Id,
		Title:     r.Title,
		Content:   r.Content,
		Category:  r.Category,
		Status:    r.Status,
		Views:     r.Views,
		CreatedAt: r.CreatedAt,
		Likes:     r.likes(),
		Dislikes:  r.dislikes(),
	}
}

type replyRow struct {
	Id        string         `db:"id"`
	Content   string         `db:"content"`
	CreatedAt time.Time      `db:"created_at"`
	AuthorId  sql.NullString `db:"author_id"`
	ThreadId  string         `db:"thread_id"`
	EngagementColumns
}

func (r replyRow) toDomain() *domain.Reply {
	return &domain.Reply{
		Id:        r.Id,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		Likes:     r.likes(),
		Dislikes:  r.dislikes(),
		Thread:    r.ThreadId,
	}
}
