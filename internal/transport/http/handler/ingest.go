package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/middleware"
	"iga-community/internal/transport/http/response"
)

type IngestHandler struct {
	ingestService *app.IngestService
	logger        *slog.Logger
}

// IngestRequest may be empty; the configured URLs are used then.
type IngestRequest struct {
	URLs []string `json:"urls"`
}

func NewIngestHandler(ingestService *app.IngestService, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{ingestService: ingestService, logger: logger}
}

func (h *IngestHandler) Enqueue(c *gin.Context) {
	var req IngestRequest
	if !response.BindOptionalJSON(c, &req) {
		return
	}

	job, err := h.ingestService.Enqueue(c.Request.Context(), c.GetString(middleware.ContextEmailKey), req.URLs)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQueueUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "Ingest queue unavailable")
		case errors.Is(err, app.ErrNoIngestURLs):
			response.Error(c, http.StatusBadRequest, "No URLs to ingest")
		default:
			internalError(c, h.logger, err, "Failed to enqueue ingest job")
		}
		return
	}

	response.JSON(c, http.StatusAccepted, gin.H{"job": job})
}
