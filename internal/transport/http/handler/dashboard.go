package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/response"
)

type DashboardHandler struct {
	dashboardService *app.DashboardService
}

type CheckInRequest struct {
	Ledger   app.Ledger `json:"ledger"`
	Timezone string     `json:"timezone"`
}

type AwardRequest struct {
	Ledger app.Ledger `json:"ledger"`
	Action string     `json:"action"`
}

type ClaimRequest struct {
	Ledger   app.Ledger `json:"ledger"`
	RewardID string     `json:"reward_id"`
}

func NewDashboardHandler(dashboardService *app.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Rewards(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"rewards": h.dashboardService.Rewards()})
}

func (h *DashboardHandler) CheckIn(c *gin.Context) {
	var req CheckInRequest
	if !response.BindJSON(c, &req) {
		return
	}

	ledger, err := h.dashboardService.CheckIn(req.Ledger, req.Timezone)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid timezone")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ledger": ledger})
}

func (h *DashboardHandler) Award(c *gin.Context) {
	var req AwardRequest
	if !response.BindJSON(c, &req) {
		return
	}

	ledger, err := h.dashboardService.Award(req.Ledger, req.Action)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Unknown action")
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ledger": ledger})
}

func (h *DashboardHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if !response.BindJSON(c, &req) {
		return
	}

	ledger, err := h.dashboardService.Claim(req.Ledger, req.RewardID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrRewardNotFound):
			response.Error(c, http.StatusNotFound, "Reward not found")
		case errors.Is(err, app.ErrInsufficientPoints):
			response.Error(c, http.StatusConflict, "Not enough points")
		default:
			response.Error(c, http.StatusInternalServerError, "Failed to claim reward")
		}
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ledger": ledger})
}
