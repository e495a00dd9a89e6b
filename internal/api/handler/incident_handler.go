package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// IncidentHandler incident reports
type IncidentHandler struct {
	incidentSvc service.IncidentService
}

// NewIncidentHandler creates an IncidentHandler
func NewIncidentHandler(incidentSvc service.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidentSvc: incidentSvc}
}

// CreateIncident POST /api/v1/incidents
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req dto.CreateIncidentRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.incidentSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, report)
}

// ListIncidents GET /api/v1/incidents
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	var req dto.IncidentListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.incidentSvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetIncident GET /api/v1/incidents/:id
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.incidentSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, report)
}

// SignIncident POST /api/v1/incidents/:id/sign
func (h *IncidentHandler) SignIncident(c *gin.Context) {
	var req dto.SignIncidentRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	report, err := h.incidentSvc.Sign(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, report)
}

// IncidentPDF GET /api/v1/incidents/:id/pdf
func (h *IncidentHandler) IncidentPDF(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	file, err := h.incidentSvc.PDF(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendFile(c, file.Data.Bytes(), file.Filename, file.ContentType)
}
