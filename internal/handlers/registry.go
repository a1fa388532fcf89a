package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/levilina/marine-data-backend/internal/logger"
	"github.com/levilina/marine-data-backend/internal/services"
)

type RegistryHandler struct {
	log             *logger.Logger
	registryService services.RegistryService
}

func NewRegistryHandler(log *logger.Logger, registryService services.RegistryService) *RegistryHandler {
	return &RegistryHandler{
		log:             log.With("handler", "RegistryHandler"),
		registryService: registryService,
	}
}

// POST /api/registry/:source/import
// Multipart upload of one registry CSV under the "file" field.
func (h *RegistryHandler) ImportCSV(c *gin.Context) {
	source := c.Param("source")
	if source == "" {
		RespondError(c, http.StatusBadRequest, "missing_source", fmt.Errorf("source path parameter required"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "missing_file", fmt.Errorf("multipart field 'file' required: %w", err))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer func() { _ = f.Close() }()

	result, err := h.registryService.ImportCSV(c.Request.Context(), source, f)
	if err != nil {
		h.log.Error("ImportCSV failed", "source", source, "error", err)
		RespondError(c, http.StatusUnprocessableEntity, "import_failed", err)
		return
	}
	RespondOK(c, gin.H{"import": result})
}

// GET /api/registry/:source/records?limit=&offset=
func (h *RegistryHandler) ListRecords(c *gin.Context) {
	source := c.Param("source")
	if source == "" {
		RespondError(c, http.StatusBadRequest, "missing_source", fmt.Errorf("source path parameter required"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "200"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	records, total, err := h.registryService.ListRecords(c.Request.Context(), source, limit, offset)
	if err != nil {
		h.log.Error("ListRecords failed", "source", source, "error", err)
		RespondError(c, http.StatusInternalServerError, "load_records_failed", err)
		return
	}
	RespondOK(c, gin.H{"records": records, "total": total})
}
