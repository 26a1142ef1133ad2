package handler

import (
	"context"
	"net/http"

	"github.com/agora-forum/agora/backend/internal/service"
	"github.com/agora-forum/agora/shared/utils"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	content service.ContentService
	health  HealthChecker
}

func New(content service.ContentService, health HealthChecker) *Handler {
	return &Handler{content: content, health: health}
}

func writeJSON(w http.ResponseWriter, v any) {
	utils.WriteJSON(w, http.StatusOK, v)
}
