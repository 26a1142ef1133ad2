package domain

import "time"

// User is the identity resolved for a session. It never carries the stored password hash.
type User struct {
	Id           UserId    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Image        string    `json:"image"`
	Role         Role      `json:"role"`
	LastActiveAt time.Time `json:"lastActiveAt"`
	CreatedAt    time.Time `json:"createdAt"`

	Threads Refs      `json:"threads"`
	Replies Refs      `json:"responses"`
	Saved   SavedRefs `json:"-"`
}

type SavedRefs struct {
	Posts           Refs
	Replies         Refs
	TrendingTopics  Refs
	TrendingReplies Refs
}

// Author is the denormalized identity embedded into threads and replies.
type Author struct {
	Id    UserId `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
	Role  Role   `json:"role,omitempty"`
}

type UserCreationData struct {
	Name     string
	Email    string
	Password string
	Image    string
	Role     Role
}

// SavedKind names one of the four saved collections of a user.
type SavedKind string

const (
	SavedPosts           SavedKind = "posts"
	SavedReplies         SavedKind = "replies"
	SavedTrendingTopics  SavedKind = "trending_topics"
	SavedTrendingReplies SavedKind = "trending_replies"
)
