package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// ExportHandler payroll downloads
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportTimesheets GET /api/v1/export/timesheets?format=csv|xlsx
func (h *ExportHandler) ExportTimesheets(c *gin.Context) {
	var req dto.TimesheetExportRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.ExportTimesheets(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendFile(c, file.Data.Bytes(), file.Filename, file.ContentType)
}

// TimesheetPDF GET /api/v1/export/timesheets/:id/pdf
func (h *ExportHandler) TimesheetPDF(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.exportSvc.TimesheetPDF(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendFile(c, file.Data.Bytes(), file.Filename, file.ContentType)
}
