package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/response"
)

type QuizHandler struct {
	quizService *app.QuizService
}

type RecommendRequest struct {
	Answers []bool `json:"answers"`
}

func NewQuizHandler(quizService *app.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

func (h *QuizHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{
		"questions": h.quizService.Questions(),
		"programs":  h.quizService.Programs(),
	})
}

func (h *QuizHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if !response.BindJSON(c, &req) {
		return
	}

	programs, err := h.quizService.Recommend(req.Answers)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Answer every question")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"programs": programs})
}
