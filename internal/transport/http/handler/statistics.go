package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/response"
)

type StatisticsHandler struct {
	statisticsService *app.StatisticsService
	logger            *slog.Logger
}

func NewStatisticsHandler(statisticsService *app.StatisticsService, logger *slog.Logger) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, logger: logger}
}

func (h *StatisticsHandler) Summary(c *gin.Context) {
	summary, err := h.statisticsService.Summary(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, err, "Failed to load statistics")
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
