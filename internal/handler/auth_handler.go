package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openconf/editorial-backend/internal/common"
	"github.com/openconf/editorial-backend/internal/middleware"
	"github.com/openconf/editorial-backend/internal/service"
)

type AuthHandler struct {
	service service.AuthService
}

func NewAuthHandler(service service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tokens, user, err := h.service.Login(req.Username, req.Password)
	if errors.Is(err, common.ErrInvalidCredentials) {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Login failed", err)
		return
	}

	common.SuccessResponse(c, gin.H{"tokens": tokens, "user": user}, nil)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	tokens, err := h.service.Refresh(req.RefreshToken)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "Invalid refresh token", err)
		return
	}

	common.SuccessResponse(c, tokens, nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.GetUser(middleware.GetUserID(c))
	if errors.Is(err, common.ErrUserNotFound) {
		common.ErrorResponse(c, http.StatusNotFound, "User not found", err)
		return
	}
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to load user", err)
		return
	}
	common.SuccessResponse(c, user, nil)
}
