package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// TimesheetHandler weekly timesheets, review workflow and entry corrections
type TimesheetHandler struct {
	timesheetSvc service.TimesheetService
}

// NewTimesheetHandler creates a TimesheetHandler
func NewTimesheetHandler(timesheetSvc service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{timesheetSvc: timesheetSvc}
}

// Generate POST /api/v1/timesheets/generate
func (h *TimesheetHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimesheetRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.Generate(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, ts)
}

// BulkGenerate POST /api/v1/timesheets/bulk-generate
func (h *TimesheetHandler) BulkGenerate(c *gin.Context) {
	var req dto.BulkGenerateRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.BulkGenerate(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

// ListTimesheets GET /api/v1/timesheets
func (h *TimesheetHandler) ListTimesheets(c *gin.Context) {
	var req dto.TimesheetListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.timesheetSvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetTimesheet GET /api/v1/timesheets/:id
func (h *TimesheetHandler) GetTimesheet(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ts)
}

// ListAdjustments GET /api/v1/timesheets/:id/adjustments
func (h *TimesheetHandler) ListAdjustments(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.timesheetSvc.ListAdjustments(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, list)
}

// Submit POST /api/v1/timesheets/:id/submit
func (h *TimesheetHandler) Submit(c *gin.Context) {
	h.transition(c, h.timesheetSvc.Submit)
}

// Approve POST /api/v1/timesheets/:id/approve
func (h *TimesheetHandler) Approve(c *gin.Context) {
	h.transition(c, h.timesheetSvc.Approve)
}

// Reject POST /api/v1/timesheets/:id/reject
func (h *TimesheetHandler) Reject(c *gin.Context) {
	var req dto.RejectTimesheetRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.Reject(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ts)
}

// BulkApprove POST /api/v1/timesheets/bulk-approve
func (h *TimesheetHandler) BulkApprove(c *gin.Context) {
	var req dto.BulkApproveRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.timesheetSvc.BulkApprove(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}

// DeleteTimesheet DELETE /api/v1/timesheets/:id
func (h *TimesheetHandler) DeleteTimesheet(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.timesheetSvc.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// AdjustEntry PUT /api/v1/timesheets/entries/:entry_id
func (h *TimesheetHandler) AdjustEntry(c *gin.Context) {
	var req dto.AdjustEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.AdjustEntry(c.Request.Context(), callerID, c.Param("entry_id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ts)
}

// AddEntry POST /api/v1/timesheets/:id/entries
func (h *TimesheetHandler) AddEntry(c *gin.Context) {
	var req dto.AddEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := h.timesheetSvc.AddEntry(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, ts)
}

type transitionFunc func(ctx context.Context, callerID, id string) (*dto.TimesheetResponse, error)

func (h *TimesheetHandler) transition(c *gin.Context, fn transitionFunc) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	ts, err := fn(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, ts)
}
