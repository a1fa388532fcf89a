package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/services"
	"github.com/levilina/marine-data-backend/internal/sse"
)

type AnalysisHandler struct {
	log             *logger.Logger
	analysisService services.AnalysisService
	sseHub          *sse.SSEHub
}

func NewAnalysisHandler(log *logger.Logger, analysisService services.AnalysisService, sseHub *sse.SSEHub) *AnalysisHandler {
	return &AnalysisHandler{
		log:             log.With("handler", "AnalysisHandler"),
		analysisService: analysisService,
		sseHub:          sseHub,
	}
}

type enqueueRunRequest struct {
	Source string `json:"source" binding:"required"`
	Year   int    `json:"year"`
}

// POST /api/analysis/runs
func (h *AnalysisHandler) EnqueueRun(c *gin.Context) {
	var req enqueueRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	run, err := h.analysisService.Enqueue(c.Request.Context(), req.Source, req.Year)
	if err != nil {
		h.log.Error("EnqueueRun failed", "source", req.Source, "error", err)
		RespondError(c, http.StatusUnprocessableEntity, "enqueue_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"run": run})
}

// GET /api/analysis/runs/:id
func (h *AnalysisHandler) GetRun(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	run, err := h.analysisService.GetRun(c.Request.Context(), id)
	if err != nil {
		h.log.Error("GetRun failed", "runID", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_run_failed", err)
		return
	}
	if run == nil {
		RespondError(c, http.StatusNotFound, "run_not_found", fmt.Errorf("run %s not found", id))
		return
	}
	RespondOK(c, gin.H{"run": run})
}

// GET /api/analysis/stream
// Server-sent events for run lifecycle: queued, progress, completed, failed.
func (h *AnalysisHandler) Stream(c *gin.Context) {
	client := h.sseHub.NewSSEClient()
	h.sseHub.AddChannel(client, services.SSEChannelAnalysis)
	defer h.sseHub.CloseClient(client)

	h.sseHub.ServeHTTP(c.Writer, c.Request, client)
}
