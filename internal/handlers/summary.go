package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/services"
)

type SummaryHandler struct {
	log            *logger.Logger
	summaryService services.SummaryService
}

func NewSummaryHandler(log *logger.Logger, summaryService services.SummaryService) *SummaryHandler {
	return &SummaryHandler{
		log:            log.With("handler", "SummaryHandler"),
		summaryService: summaryService,
	}
}

// optional run filter shared by the flag and owner summaries
func runIDFromQuery(c *gin.Context) (uuid.UUID, error) {
	raw := c.Query("run_id")
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

// GET /api/summary/flags?run_id=
func (h *SummaryHandler) EffortByFlag(c *gin.Context) {
	runID, err := runIDFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	rows, err := h.summaryService.EffortByFlag(c.Request.Context(), runID)
	if err != nil {
		h.log.Error("EffortByFlag failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	RespondOK(c, gin.H{"by_flag": rows})
}

// GET /api/summary/owners?run_id=
func (h *SummaryHandler) EffortByOwnerCountry(c *gin.Context) {
	runID, err := runIDFromQuery(c)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	rows, err := h.summaryService.EffortByOwnerCountry(c.Request.Context(), runID)
	if err != nil {
		h.log.Error("EffortByOwnerCountry failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	RespondOK(c, gin.H{"by_owner": rows})
}

// GET /api/summary/runs/:id
func (h *SummaryHandler) RunSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_run_id", err)
		return
	}
	summary, err := h.summaryService.RunSummary(c.Request.Context(), id)
	if err != nil {
		h.log.Error("RunSummary failed", "runID", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "summary_failed", err)
		return
	}
	if summary == nil {
		RespondError(c, http.StatusNotFound, "run_not_found", fmt.Errorf("run %s not found", id))
		return
	}
	RespondOK(c, summary)
}
