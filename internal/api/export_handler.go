package api

import (
	"errors"
	"net/http"

	"liftlog/workout-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ExportHandler holds the export service dependency.
type ExportHandler struct {
	exportService service.ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(exportService service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportLogs dumps the caller's training history to object storage and
// returns a short-lived download URL.
func (h *ExportHandler) ExportLogs(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to resolve user from token")
		return
	}

	result, err := h.exportService.ExportLogs(c.Request.Context(), userID, c.Query("format"))
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedExportFormat) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to export workout logs")
		return
	}
	c.JSON(http.StatusOK, result)
}
