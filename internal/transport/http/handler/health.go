package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"iga-community/internal/bootstrap"
	rabbitmqClient "iga-community/internal/platform/rabbitmq"
	redisClient "iga-community/internal/platform/redis"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	dbStatus := h.checkDatabase(ctx)
	redisStatus := h.checkRedis(ctx)
	deps := gin.H{
		"database": dbStatus,
		"redis":    redisStatus,
	}
	allOK := dbStatus.OK && redisStatus.OK
	if h.app.Config.RabbitMQ.URL != "" {
		rmqStatus := h.checkRabbitMQ()
		deps["rabbitmq"] = rmqStatus
		allOK = allOK && rmqStatus.OK
	}

	statusCode := http.StatusOK
	if !allOK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":          h.app.Config.App.Name,
		"env":          h.app.Config.App.Env,
		"uptime_sec":   int(time.Since(h.app.StartedAt).Seconds()),
		"dependencies": deps,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) dependencyStatus {
	if h.app.DB == nil {
		return dependencyStatus{OK: false, Message: "not connected"}
	}
	sqlDB, err := h.app.DB.DB()
	if err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.app.Redis == nil {
		return dependencyStatus{OK: false, Message: "not connected"}
	}
	if err := redisClient.Ping(ctx, h.app.Redis); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRabbitMQ() dependencyStatus {
	if err := rabbitmqClient.Ping(h.app.MQConn); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}
