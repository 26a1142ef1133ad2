package handler

import (
	"errors"
	"net/http"

	internal_errors "github.com/agora-forum/agora/shared/errors"
	"github.com/agora-forum/agora/shared/logger"
	mw "github.com/agora-forum/agora/shared/middleware"
	"github.com/agora-forum/agora/shared/utils"
	"github.com/go-chi/chi/v5"
)

const (
	msgUserNotFound        = "User not found"
	msgFailedUserContent   = "Failed to fetch user content"
	msgFailedLikedContent  = "Failed to fetch liked content"
	msgFailedSavedItems    = "Failed to fetch saved items"
	msgUnauthorizedRequest = "No authentication token, access denied"
)

// GetUserContent returns the threads and replies authored by {userId}.
// Any authenticated user may read any other user's content.
func (h *Handler) GetUserContent(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")

	content, err := h.content.OwnedContent(r.Context(), userId)
	if err != nil {
		writeContentError(w, err, userId, msgFailedUserContent)
		return
	}
	writeJSON(w, content)
}

// GetLikedContent returns the threads and replies {userId} liked, threads first.
func (h *Handler) GetLikedContent(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")

	liked, err := h.content.LikedContent(r.Context(), userId)
	if err != nil {
		writeContentError(w, err, userId, msgFailedLikedContent)
		return
	}
	writeJSON(w, liked)
}

// GetSavedItems returns the authenticated user's own bookmarks.
func (h *Handler) GetSavedItems(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		utils.WriteJSONError(w, http.StatusUnauthorized, msgUnauthorizedRequest)
		return
	}

	saved, err := h.content.SavedContent(r.Context(), user.Id)
	if err != nil {
		writeContentError(w, err, user.Id, msgFailedSavedItems)
		return
	}
	writeJSON(w, saved)
}

// writeContentError sends 404 for an unknown user and a fixed 500 message for
// everything else. Storage details stay in the log.
func writeContentError(w http.ResponseWriter, err error, userId, failure string) {
	if errors.Is(err, internal_errors.ErrUserNotFound) {
		utils.WriteJSONError(w, http.StatusNotFound, msgUserNotFound)
		return
	}
	logger.Log.Error(failure, "user_id", userId, "error", err)
	utils.WriteJSONError(w, http.StatusInternalServerError, failure)
}
