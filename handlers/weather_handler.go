package handlers

import (
	"net/http"

	"fridge-backend/weather"

	"github.com/gin-gonic/gin"
)

// WeatherHandler proxies current conditions
type WeatherHandler struct {
	client *weather.Client
}

// NewWeatherHandler creates a new weather handler
func NewWeatherHandler(client *weather.Client) *WeatherHandler {
	return &WeatherHandler{client: client}
}

// Current handles GET /api/weather?zip=NNNNN. It always answers 200.
func (h *WeatherHandler) Current(c *gin.Context) {
	c.JSON(http.StatusOK, h.client.Current(c.Request.Context(), c.Query("zip")))
}
