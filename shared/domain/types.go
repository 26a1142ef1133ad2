package domain

import "github.com/lib/pq"

type (
	UserId   = string
	ThreadId = string
	ReplyId  = string
	Role     = string

	// Refs is an ordered list of references to records in another collection.
	// A reference may point to a record that no longer exists.
	Refs = pq.StringArray
)

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Collection names a stored set of threads or replies.
type Collection string

const (
	Threads         Collection = "threads"
	Replies         Collection = "replies"
	TrendingTopics  Collection = "trending_topics"
	TrendingReplies Collection = "trending_replies"
)

// ReplyCollection returns the collection holding replies to threads of c.
func (c Collection) ReplyCollection() Collection {
	if c == TrendingTopics {
		return TrendingReplies
	}
	return Replies
}

// AuthorFields selects which author attributes an expansion loads.
type AuthorFields int

const (
	AuthorProfile AuthorFields = iota // name, image and role
	AuthorCard                        // name and image only
)

// Expansion describes which references get resolved when loading threads or replies.
type Expansion struct {
	Author  AuthorFields
	Replies bool // resolve a thread's replies (each with its author)
}
