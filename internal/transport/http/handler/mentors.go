package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/response"
)

type MentorHandler struct {
	mentorService *app.MentorService
}

type MentorRequestBody struct {
	MentorID string `json:"mentor_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Topic    string `json:"topic"`
	Note     string `json:"note"`
	Under18  bool   `json:"under18"`
}

func NewMentorHandler(mentorService *app.MentorService) *MentorHandler {
	return &MentorHandler{mentorService: mentorService}
}

func (h *MentorHandler) List(c *gin.Context) {
	mentors := h.mentorService.List(app.MentorFilter{
		Query:    c.Query("q"),
		Program:  c.Query("program"),
		Language: c.Query("language"),
	})
	response.JSON(c, http.StatusOK, gin.H{"mentors": mentors})
}

func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.mentorService.Get(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusNotFound, "Mentor not found")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"mentor": mentor})
}

func (h *MentorHandler) RequestSession(c *gin.Context) {
	var req MentorRequestBody
	if !response.BindJSON(c, &req) {
		return
	}

	result, err := h.mentorService.RequestSession(app.MentorRequestInput{
		MentorID: req.MentorID,
		Name:     req.Name,
		Email:    req.Email,
		Topic:    req.Topic,
		Note:     req.Note,
		Under18:  req.Under18,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMentorNotFound):
			response.Error(c, http.StatusNotFound, "Mentor not found")
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, app.ErrInvalidEmail):
			response.Error(c, http.StatusBadRequest, "Invalid email")
		case errors.Is(err, app.ErrInvalidTopic):
			response.Error(c, http.StatusBadRequest, "Invalid topic")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to create request")
		}
		return
	}

	response.JSON(c, http.StatusCreated, result)
}
