package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/model"
	"iga-community/internal/transport/http/response"
)

type EventHandler struct {
	eventService *app.EventService
	logger       *slog.Logger
}

type EventSignupRequest struct {
	EventName string `json:"eventname"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
	UserEmail string `json:"user_email"`
}

func NewEventHandler(eventService *app.EventService, logger *slog.Logger) *EventHandler {
	return &EventHandler{eventService: eventService, logger: logger}
}

func (h *EventHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"events": h.eventService.Upcoming()})
}

func (h *EventHandler) Signup(c *gin.Context) {
	var req EventSignupRequest
	if !response.BindJSON(c, &req) {
		return
	}

	signup, err := h.eventService.Signup(c.Request.Context(), app.EventSignupInput{
		EventName: req.EventName,
		Date:      req.Date,
		Time:      req.Time,
		Location:  req.Location,
		UserEmail: req.UserEmail,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "Missing required fields")
		default:
			internalError(c, h.logger, err, "Failed to add event signup")
		}
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"message": "Event signup recorded!",
		"data":    []model.EventSignup{*signup},
	})
}
