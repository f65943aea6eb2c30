package handlers

import (
	"net/http"

	"fridge-backend/service"

	"github.com/gin-gonic/gin"
)

// CircleHandler handles HTTP requests for circles
type CircleHandler struct {
	circleService *service.CircleService
}

// NewCircleHandler creates a new circle handler
func NewCircleHandler(circleService *service.CircleService) *CircleHandler {
	return &CircleHandler{circleService: circleService}
}

// ListCircles handles GET /api/circles
func (h *CircleHandler) ListCircles(c *gin.Context) {
	circles, err := h.circleService.ListCircles(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, circles)
}

// CreateCircle handles POST /api/circles
func (h *CircleHandler) CreateCircle(c *gin.Context) {
	var req service.CreateCircleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "Circle name required")
		return
	}
	req.UserID = currentUser(c)

	circle, err := h.circleService.CreateCircle(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, circle)
}

// ListMembers handles GET /api/circles/:id/members
func (h *CircleHandler) ListMembers(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	members, err := h.circleService.ListMembers(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

// InviteMember handles POST /api/circles/:id/members
func (h *CircleHandler) InviteMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req service.InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "Username required")
		return
	}
	req.RequesterID = currentUser(c)
	req.CircleID = id

	result, err := h.circleService.InviteMember(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
