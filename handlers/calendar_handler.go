package handlers

import (
	"net/http"

	"fridge-backend/service"

	"github.com/gin-gonic/gin"
)

// CalendarHandler handles HTTP requests for countdown events
type CalendarHandler struct {
	calendarService *service.CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

// ListEvents handles GET /api/calendar
func (h *CalendarHandler) ListEvents(c *gin.Context) {
	events, err := h.calendarService.ListEvents(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// CreateEvent handles POST /api/calendar
func (h *CalendarHandler) CreateEvent(c *gin.Context) {
	req, ok := bindEvent(c)
	if !ok {
		return
	}
	event, err := h.calendarService.CreateEvent(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// ReplaceCountdown handles PUT /api/calendar
func (h *CalendarHandler) ReplaceCountdown(c *gin.Context) {
	req, ok := bindEvent(c)
	if !ok {
		return
	}
	event, err := h.calendarService.ReplaceActiveCountdown(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

// DeleteEvent handles DELETE /api/calendar/:id
func (h *CalendarHandler) DeleteEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	result, err := h.calendarService.DeleteEvent(c.Request.Context(), currentUser(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func bindEvent(c *gin.Context) (service.CreateEventRequest, bool) {
	var req service.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err, "Title and date required")
		return req, false
	}
	req.UserID = currentUser(c)
	return req, true
}
