package domain

import (
	"slices"
	"time"
)

// Engagement is a denormalized reaction counter. Count is stored separately
// from Users and is not guaranteed to equal len(Users).
type Engagement struct {
	Count int      `json:"count"`
	Users []UserId `json:"users"`
}

// Has reports whether userId is in the reaction set. Safe on a nil receiver.
func (e *Engagement) Has(userId UserId) bool {
	if e == nil {
		return false
	}
	return slices.Contains(e.Users, userId)
}

// CountOrZero returns the stored count, or 0 when the counter is absent.
func (e *Engagement) CountOrZero() int {
	if e == nil {
		return 0
	}
	return e.Count
}

type Thread struct {
	Id        ThreadId    `json:"id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Category  string      `json:"category"`
	Status    string      `json:"status"`
	Views     int         `json:"views"`
	CreatedAt time.Time   `json:"createdAt"`
	Likes     *Engagement `json:"likes,omitempty"`
	Dislikes  *Engagement `json:"dislikes,omitempty"`
	Author    *Author     `json:"author"`
	Replies   []Reply     `json:"replies,omitempty"`
}

type Reply struct {
	Id        ReplyId     `json:"id"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"createdAt"`
	Likes     *Engagement `json:"likes,omitempty"`
	Dislikes  *Engagement `json:"dislikes,omitempty"`
	Author    *Author     `json:"author"`
	Thread    ThreadId    `json:"thread"`
}

// to iterate thru layers: tooling -> storage
type ThreadCreationData struct {
	Title    string
	Content  string
	Category string
	Author   UserId
}

type ReplyCreationData struct {
	Content string
	Author  UserId
	Thread  ThreadId
}

// Reaction is a like or a dislike.
type Reaction string

const (
	Like    Reaction = "like"
	Dislike Reaction = "dislike"
)
