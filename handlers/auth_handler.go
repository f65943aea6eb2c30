package handlers

import (
	"net/http"

	"fridge-backend/apperr"
	"fridge-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles account, session and preference requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "Username and PIN required")
		return
	}

	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		// A taken username has always been reported as a bad request.
		if apperr.Is(err, apperr.KindConflict) {
			errorJSON(c, http.StatusBadRequest, apperr.CodeOf(err), apperr.PublicMessage(err))
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Login handles POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusUnauthorized, service.CodeInvalidCredentials, "Invalid credentials")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), sessionToken(c.Request)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetConfig handles GET /api/config
func (h *AuthHandler) GetConfig(c *gin.Context) {
	cfg, err := h.authService.GetConfig(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig handles PUT /api/config
func (h *AuthHandler) UpdateConfig(c *gin.Context) {
	var req service.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "fridgeColor and handlePosition must be strings")
		return
	}
	req.UserID = currentUser(c)

	if err := h.authService.UpdateConfig(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": true})
}
