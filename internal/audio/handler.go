package audio

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/eleven-am/vision-narrator/internal/shared"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  store,
		logger: logger.With("handler", "audio"),
	}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id", h.HandleGetClip)
}

// HandleGetClip streams a previously synthesized narration clip
// @Summary      Get narration audio
// @Tags         audio
// @Produce      audio/mpeg
// @Param        id path string true "Clip ID"
// @Success      200 {file} binary "Audio data"
// @Failure      404 {object} shared.APIError "Clip expired or unknown"
// @Router       /audio/{id} [get]
func (h *Handler) HandleGetClip(c echo.Context) error {
	id := c.Param("id")
	if !strings.HasPrefix(id, clipIDPrefix) {
		return shared.NotFound("clip_not_found", "audio clip not found")
	}

	clip, err := h.store.Get(c.Request().Context(), id)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NotFound("clip_not_found", "audio clip not found")
	}
	if err != nil {
		h.logger.Error("failed to load clip", "clip_id", id, "error", err)
		return shared.InternalError("clip_load_failed", "failed to load audio clip")
	}

	contentType := clip.ContentType
	if contentType == "" {
		contentType = "audio/mpeg"
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Blob(http.StatusOK, contentType, clip.Data)
}
