package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// ShiftHandler concrete shifts and their assignments
type ShiftHandler struct {
	shiftSvc service.ShiftService
}

// NewShiftHandler creates a ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc}
}

// ListShifts GET /api/v1/shifts
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": shifts})
}

// MyShifts GET /api/v1/shifts/my
func (h *ShiftHandler) MyShifts(c *gin.Context) {
	var req dto.ShiftListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shifts, err := h.shiftSvc.MyShifts(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": shifts})
}

// Calendar GET /api/v1/shifts/my/calendar.ics
func (h *ShiftHandler) Calendar(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	data, err := h.shiftSvc.Calendar(c.Request.Context(), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendFile(c, data, "shifts.ics", "text/calendar; charset=utf-8")
}

// GetShift GET /api/v1/shifts/:id
func (h *ShiftHandler) GetShift(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, shift)
}

// CreateShift POST /api/v1/shifts
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req dto.CreateShiftRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, shift)
}

// DeleteShift DELETE /api/v1/shifts/:id
func (h *ShiftHandler) DeleteShift(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.shiftSvc.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// Assign POST /api/v1/shifts/:id/assignments
func (h *ShiftHandler) Assign(c *gin.Context) {
	var req dto.ShiftAssignmentInput
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Assign(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, shift)
}

// Unassign DELETE /api/v1/shifts/:id/assignments/:user_id
func (h *ShiftHandler) Unassign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.shiftSvc.Unassign(c.Request.Context(), callerID, c.Param("id"), c.Param("user_id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}
