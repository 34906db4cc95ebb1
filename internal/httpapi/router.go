// Package httpapi exposes the practice API consumed by the web client.
package httpapi

import (
	"net/http"
	"time"

	"idioviet/internal/catalog"
	"idioviet/internal/metrics"
	"idioviet/internal/middleware"
	"idioviet/internal/service"
	"idioviet/internal/speech"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Deps holds everything the API needs to serve requests
type Deps struct {
	Catalog    *catalog.Catalog
	TTS        speech.Provider
	Saved      *service.SavedService
	Recordings *service.RecordingService
	Learners   *service.LearnerService
	Sessions   sessions.Store
	Metrics    *metrics.Metrics
	Logger     *zap.Logger

	AllowedOrigins    []string
	MaxRecordingBytes int
}

// API serves the HTTP endpoints
type API struct {
	catalog    *catalog.Catalog
	tts        speech.Provider
	saved      *service.SavedService
	recordings *service.RecordingService
	learners   *service.LearnerService
	logger     *zap.Logger

	maxRecordingBytes int64
}

// NewRouter builds the gin engine with all routes and middleware
func NewRouter(deps Deps) *gin.Engine {
	api := &API{
		catalog:           deps.Catalog,
		tts:               deps.TTS,
		saved:             deps.Saved,
		recordings:        deps.Recordings,
		learners:          deps.Learners,
		logger:            deps.Logger,
		maxRecordingBytes: int64(deps.MaxRecordingBytes),
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.AccessLog(deps.Logger),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			deps.Logger.Error("Panic recovered",
				zap.Any("panic", recovered),
				zap.String("path", c.Request.URL.Path),
			)
			abortError(c, http.StatusInternalServerError, msgUnexpected)
		}),
	)
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	if len(deps.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
			AllowHeaders:     []string{"Content-Type", middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", api.healthz)
	router.GET("/readyz", api.readyz)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	public := router.Group("/api")
	public.GET("/tts", api.handleTTS)

	learner := router.Group("/api")
	learner.Use(middleware.Learner(deps.Sessions, deps.Learners, deps.Logger))
	{
		learner.GET("/idioms", api.listIdioms)
		learner.GET("/idioms/:id", api.getIdiom)
		learner.GET("/idioms/:id/recording", api.latestRecording)

		learner.GET("/saved", api.listSaved)
		learner.PUT("/saved", api.replaceSaved)
		learner.POST("/saved/:id/toggle", api.toggleSaved)

		learner.POST("/recordings", api.startRecording)
		learner.POST("/recordings/:id/chunks", api.appendRecording)
		learner.POST("/recordings/:id/stop", api.stopRecording)
		learner.GET("/recordings/:id/audio", api.recordingAudio)
	}

	router.NoRoute(func(c *gin.Context) {
		abortError(c, http.StatusNotFound, "Not found")
	})

	return router
}

const msgUnexpected = "Unexpected server error"

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
