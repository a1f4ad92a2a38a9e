package api

import (
	"github.com/chordforge/chordforge-api/internal/api/handlers"
	apimiddleware "github.com/chordforge/chordforge-api/internal/api/middleware"
	"github.com/chordforge/chordforge-api/internal/metrics"
	"github.com/chordforge/chordforge-api/internal/services"
	"github.com/gin-gonic/gin"
)

func SetupRouter(arranger *services.ArrangerService, metricsClient *metrics.Client, version string) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking())

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	arrangerHandler := handlers.NewArrangerHandler(arranger, metricsClient)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/settings", arrangerHandler.GetSettings)
		v1.PUT("/settings", arrangerHandler.UpdateSettings)

		v1.POST("/progressions/generate", arrangerHandler.Generate)
		v1.GET("/progressions", arrangerHandler.ListProgressions)
		v1.POST("/progressions/swap", arrangerHandler.Swap)
		v1.GET("/progressions/:id", arrangerHandler.GetProgression)
		v1.POST("/progressions/:id/regenerate", arrangerHandler.Regenerate)
		v1.POST("/progressions/:id/extend", arrangerHandler.Extend)
		v1.POST("/progressions/:id/passing", arrangerHandler.InsertPassingChord)
		v1.GET("/progressions/:id/events", arrangerHandler.RenderEvents)
		v1.GET("/progressions/:id/midi", arrangerHandler.RenderMIDI)

		v1.POST("/progressions/:id/chords/:index/regenerate", arrangerHandler.RegenerateChord)
		v1.PUT("/progressions/:id/chords/:index/duration", arrangerHandler.UpdateChordDuration)
		v1.POST("/progressions/:id/chords/:index/borrow", arrangerHandler.BorrowChord)
		v1.POST("/progressions/:id/chords/:index/shift", arrangerHandler.ShiftChord)
	}

	return router
}
