package handlers

import (
	"net/http"

	"fridge-backend/service"
	"fridge-backend/session"
	"fridge-backend/storage"
	"fridge-backend/weather"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterConfig carries everything the HTTP layer is wired to.
type RouterConfig struct {
	Logger      zerolog.Logger
	CORSOrigin  string
	MaxFileSize int64
	Sessions    session.Store
	Storage     storage.Storage
	Weather     *weather.Client
	Auth        *service.AuthService
	Magnets     *service.MagnetService
	Calendar    *service.CalendarService
	Circles     *service.CircleService
	Mail        *service.MailService
}

// NewRouter builds the gin engine with every route under /api.
func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(cfg.Logger), CORS(cfg.CORSOrigin))

	files := NewFileHandler(cfg.Storage, cfg.MaxFileSize)
	authHandler := NewAuthHandler(cfg.Auth)
	magnetHandler := NewMagnetHandler(cfg.Magnets, files)
	calendarHandler := NewCalendarHandler(cfg.Calendar)
	circleHandler := NewCircleHandler(cfg.Circles)
	mailHandler := NewMailHandler(cfg.Mail, files)
	weatherHandler := NewWeatherHandler(cfg.Weather)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/uploads/*ref", files.Serve)

	api := r.Group("/api")
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)
		api.GET("/weather", weatherHandler.Current)

		authed := api.Group("", RequireAuth(cfg.Sessions))

		authed.POST("/logout", authHandler.Logout)
		authed.GET("/config", authHandler.GetConfig)
		authed.PUT("/config", authHandler.UpdateConfig)

		// Magnet endpoints
		authed.GET("/magnets", magnetHandler.ListMagnets)
		authed.POST("/magnets", magnetHandler.CreateMagnet)
		authed.PUT("/magnets/:id", magnetHandler.UpdateMagnet)
		authed.DELETE("/magnets/:id", magnetHandler.DeleteMagnet)

		// Calendar endpoints
		authed.GET("/calendar", calendarHandler.ListEvents)
		authed.POST("/calendar", calendarHandler.CreateEvent)
		authed.PUT("/calendar", calendarHandler.ReplaceCountdown)
		authed.DELETE("/calendar/:id", calendarHandler.DeleteEvent)

		// Circle endpoints
		authed.GET("/circles", circleHandler.ListCircles)
		authed.POST("/circles", circleHandler.CreateCircle)
		authed.GET("/circles/:id/members", circleHandler.ListMembers)
		authed.POST("/circles/:id/members", circleHandler.InviteMember)

		// Mail endpoints
		authed.GET("/mail", mailHandler.ListMail)
		authed.POST("/mail", mailHandler.SendMail)
		authed.POST("/mail/:id/convert", mailHandler.ConvertMail)
	}

	return r
}
