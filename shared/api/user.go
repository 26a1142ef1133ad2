package api

import "github.com/agora-forum/agora/shared/domain"

// ThreadResponse is a thread with its creation date formatted and engagement
// counters flattened. All other fields come from the embedded thread unchanged.
type ThreadResponse struct {
	domain.Thread
	CreatedAt     string `json:"createdAt"`
	LikesCount    int    `json:"likesCount"`
	DislikesCount int    `json:"dislikesCount"`
	RepliesCount  int    `json:"repliesCount"`
}

type ReplyResponse struct {
	domain.Reply
	CreatedAt     string `json:"createdAt"`
	LikesCount    int    `json:"likesCount"`
	DislikesCount int    `json:"dislikesCount"`
}
