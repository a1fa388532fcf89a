package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/services"
)

type VesselHandler struct {
	log           *logger.Logger
	vesselService services.VesselService
}

func NewVesselHandler(log *logger.Logger, vesselService services.VesselService) *VesselHandler {
	return &VesselHandler{
		log:           log.With("handler", "VesselHandler"),
		vesselService: vesselService,
	}
}

// GET /api/vessels?flag=&limit=&offset=
func (h *VesselHandler) List(c *gin.Context) {
	flag := c.Query("flag")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	vessels, err := h.vesselService.List(c.Request.Context(), flag, limit, offset)
	if err != nil {
		h.log.Error("List vessels failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "load_vessels_failed", err)
		return
	}
	RespondOK(c, gin.H{"vessels": vessels})
}

// GET /api/vessels/:id
func (h *VesselHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_vessel_id", err)
		return
	}
	detail, err := h.vesselService.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Get vessel failed", "vesselID", id, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_vessel_failed", err)
		return
	}
	if detail == nil {
		RespondError(c, http.StatusNotFound, "vessel_not_found", fmt.Errorf("vessel %s not found", id))
		return
	}
	RespondOK(c, detail)
}
