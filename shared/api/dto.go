package api

import "github.com/agora-forum/agora/shared/domain"

// Response DTOs

type ErrorResponse struct {
	Error string `json:"error"`
}

// OwnedContentResponse holds what a user authored.
type OwnedContentResponse struct {
	Threads   []ThreadResponse `json:"threads"`
	Responses []ReplyResponse  `json:"responses"`
}

// LikedContentResponse lists liked threads first, then liked replies.
// Elements are ThreadResponse or ReplyResponse.
type LikedContentResponse []any

// SavedContentResponse holds the user's bookmarks. Entries are not shaped
// and authors carry name and image only.
type SavedContentResponse struct {
	Posts           []domain.Thread `json:"posts"`
	Replies         []domain.Reply  `json:"replies"`
	TrendingTopics  []domain.Thread `json:"trendingTopics"`
	TrendingReplies []domain.Reply  `json:"trendingReplies"`
}
