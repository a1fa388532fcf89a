package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/levilina/marine-data-backend/internal/handlers"
)

type RouterConfig struct {
	RegistryHandler *handlers.RegistryHandler
	VesselHandler   *handlers.VesselHandler
	AnalysisHandler *handlers.AnalysisHandler
	SummaryHandler  *handlers.SummaryHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		// Registry
		api.POST("/registry/:source/import", cfg.RegistryHandler.ImportCSV)
		api.GET("/registry/:source/records", cfg.RegistryHandler.ListRecords)

		// Vessels
		api.GET("/vessels", cfg.VesselHandler.List)
		api.GET("/vessels/:id", cfg.VesselHandler.Get)

		// Analysis runs
		api.POST("/analysis/runs", cfg.AnalysisHandler.EnqueueRun)
		api.GET("/analysis/runs/:id", cfg.AnalysisHandler.GetRun)
		api.GET("/analysis/stream", cfg.AnalysisHandler.Stream)

		// Summaries
		api.GET("/summary/flags", cfg.SummaryHandler.EffortByFlag)
		api.GET("/summary/owners", cfg.SummaryHandler.EffortByOwnerCountry)
		api.GET("/summary/runs/:id", cfg.SummaryHandler.RunSummary)
	}

	return router
}
