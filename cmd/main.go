package main

import (
	"context"
	"fmt"
	"os"

	"github.com/levilina/marine-data-backend/internal/analysis"
	"github.com/levilina/marine-data-backend/internal/clients/gfw"
	"github.com/levilina/marine-data-backend/internal/clients/redis"
	"github.com/levilina/marine-data-backend/internal/db"
	"github.com/levilina/marine-data-backend/internal/handlers"
	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/repos"
	"github.com/levilina/marine-data-backend/internal/server"
	"github.com/levilina/marine-data-backend/internal/services"
	"github.com/levilina/marine-data-backend/internal/sse"
	"github.com/levilina/marine-data-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	vesselRepo := repos.NewVesselRepo(thePG, log)
	registryRecordRepo := repos.NewRegistryRecordRepo(thePG, log)
	fishingEventRepo := repos.NewFishingEventRepo(thePG, log)
	portVisitRepo := repos.NewPortVisitRepo(thePG, log)
	aisGapRepo := repos.NewAISGapRepo(thePG, log)
	encounterRepo := repos.NewEncounterRepo(thePG, log)
	flagChangeRepo := repos.NewFlagChangeRepo(thePG, log)
	analysisRunRepo := repos.NewAnalysisRunRepo(thePG, log)
	assessmentRepo := repos.NewAssessmentRepo(thePG, log)

	// SSE
	log.Info("Setting up SSE hub now...")
	sseHub := sse.NewSSEHub(log)

	// Clients
	log.Info("Setting up clients from main...")
	gfwClient, err := gfw.NewClient(log)
	if err != nil {
		log.Error("Could not init GFW client", "error", err)
		os.Exit(1)
	}
	lookupCache, err := redis.NewLookupCache(log)
	if err != nil {
		log.Warn("Could not init lookup cache, continuing without it", "error", err)
		lookupCache = nil
	}
	eventBus, err := redis.NewEventBus(log)
	if err != nil {
		log.Warn("Could not init event bus, SSE is single-instance only", "error", err)
		eventBus = nil
	}
	if eventBus != nil {
		if err := eventBus.StartForwarder(context.Background(), func(m sse.SSEMessage) {
			sseHub.Broadcast(m)
		}); err != nil {
			log.Warn("Event bus forwarder failed to start", "error", err)
		}
	}

	// Analysis thresholds
	thresholds, err := analysis.LoadThresholds(log)
	if err != nil {
		log.Error("Could not load analysis thresholds", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	registryService := services.NewRegistryService(thePG, log, registryRecordRepo)
	matcherService := services.NewMatcherService(thePG, log, gfwClient, lookupCache, vesselRepo, registryRecordRepo)
	enrichmentService := services.NewEnrichmentService(
		thePG,
		log,
		gfwClient,
		fishingEventRepo,
		portVisitRepo,
		aisGapRepo,
		encounterRepo,
		flagChangeRepo,
	)
	analysisService := services.NewAnalysisService(
		thePG,
		log,
		sseHub,
		eventBus,
		registryRecordRepo,
		vesselRepo,
		fishingEventRepo,
		portVisitRepo,
		aisGapRepo,
		encounterRepo,
		flagChangeRepo,
		analysisRunRepo,
		assessmentRepo,
		matcherService,
		enrichmentService,
		thresholds,
	)
	analysisService.StartWorker(context.Background())
	summaryService := services.NewSummaryService(thePG, log, analysisRunRepo, assessmentRepo)
	vesselService := services.NewVesselService(
		thePG,
		log,
		vesselRepo,
		assessmentRepo,
		fishingEventRepo,
		portVisitRepo,
		aisGapRepo,
		encounterRepo,
		flagChangeRepo,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	registryHandler := handlers.NewRegistryHandler(log, registryService)
	vesselHandler := handlers.NewVesselHandler(log, vesselService)
	analysisHandler := handlers.NewAnalysisHandler(log, analysisService, sseHub)
	summaryHandler := handlers.NewSummaryHandler(log, summaryService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		RegistryHandler: registryHandler,
		VesselHandler:   vesselHandler,
		AnalysisHandler: analysisHandler,
		SummaryHandler:  summaryHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
