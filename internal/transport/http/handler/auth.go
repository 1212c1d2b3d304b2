package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"iga-community/internal/app"
	"iga-community/internal/transport/http/middleware"
	"iga-community/internal/transport/http/response"
)

const msgPasswordTooShort = "Password must be at least 8 characters."

type AuthHandler struct {
	authService *app.AuthService
	logger      *slog.Logger
}

// flexibleString accepts a JSON string or a bare number, keeping the text.
type flexibleString string

func (f *flexibleString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*f = flexibleString(s)
		return nil
	}
	if string(raw) == "null" {
		*f = ""
		return nil
	}
	*f = flexibleString(raw)
	return nil
}

type SignupRequest struct {
	FirstName    string         `json:"firstName"`
	LastName     string         `json:"lastName"`
	Email        string         `json:"email"`
	Age          flexibleString `json:"age"`
	Password     string         `json:"password"`
	SchoolOrWork string         `json:"schoolOrWork"`
	Location     string         `json:"location"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

func NewAuthHandler(authService *app.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !response.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), app.SignupInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Age:          string(req.Age),
		Password:     req.Password,
		SchoolOrWork: req.SchoolOrWork,
		Location:     req.Location,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, app.ErrInvalidAge):
			response.Error(c, http.StatusBadRequest, "Invalid age")
		case errors.Is(err, app.ErrWeakPassword):
			response.Error(c, http.StatusBadRequest, msgPasswordTooShort)
		case errors.Is(err, app.ErrEmailExists):
			response.Error(c, http.StatusConflict, "Email already registered")
		default:
			internalError(c, h.logger, err, "Signup failed")
		}
		return
	}

	response.JSON(c, http.StatusCreated, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"created_at": user.CreatedAt,
		},
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !response.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), app.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "Missing email or password")
		case errors.Is(err, app.ErrInvalidCredential):
			response.Error(c, http.StatusUnauthorized, "Invalid email or password")
		default:
			internalError(c, h.logger, err, "Login failed")
		}
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"user": gin.H{
			"id":        result.User.ID,
			"email":     result.User.Email,
			"firstName": result.User.FirstName,
			"lastName":  result.User.LastName,
		},
		"token": result.Token,
	})
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !response.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.ForgotPassword(c.Request.Context(), req.Email, c.GetHeader("Origin"))
	if err != nil {
		switch {
		case errors.Is(err, app.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, "Email is required")
		default:
			internalError(c, h.logger, err, "Failed to send reset email")
		}
		return
	}

	message := "Check your email for a password reset link."
	if !result.Sent {
		message = "If an account exists for that email, a reset link has been sent."
	}
	response.JSON(c, http.StatusOK, gin.H{"message": message})
}

// UpdatePassword accepts either a session token or a reset token from the
// emailed link, so it does not sit behind AuthJWT.
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "Missing authorization")
		return
	}

	var req UpdatePasswordRequest
	if !response.BindJSON(c, &req) {
		return
	}

	err := h.authService.UpdatePassword(c.Request.Context(), token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrWeakPassword):
			response.Error(c, http.StatusBadRequest, msgPasswordTooShort)
		case errors.Is(err, app.ErrInvalidSession):
			response.Error(c, http.StatusUnauthorized, "Invalid or expired session")
		default:
			internalError(c, h.logger, err, "Failed to update password")
		}
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint(middleware.ContextUserIDKey)

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrUserNotFound):
			response.Error(c, http.StatusUnauthorized, "User not found")
		default:
			internalError(c, h.logger, err, "Failed to load profile")
		}
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"user": user})
}

// internalError logs err with the route and answers a generic 500.
func internalError(c *gin.Context, logger *slog.Logger, err error, message string) {
	logger.ErrorContext(c.Request.Context(), "request failed",
		slog.String("method", c.Request.Method),
		slog.String("route", c.FullPath()),
		slog.Any("error", err),
	)
	response.Error(c, http.StatusInternalServerError, message)
}
