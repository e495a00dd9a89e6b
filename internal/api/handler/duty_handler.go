package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// DutyHandler clock in/out and roaming check-ins
type DutyHandler struct {
	dutySvc service.DutyService
}

// NewDutyHandler creates a DutyHandler
func NewDutyHandler(dutySvc service.DutyService) *DutyHandler {
	return &DutyHandler{dutySvc: dutySvc}
}

// ClockIn POST /api/v1/duty/clock-in
func (h *DutyHandler) ClockIn(c *gin.Context) {
	var req dto.ClockInRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.dutySvc.ClockIn(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, session)
}

// ClockOut POST /api/v1/duty/clock-out
func (h *DutyHandler) ClockOut(c *gin.Context) {
	var req dto.ClockOutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.dutySvc.ClockOut(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, session)
}

// Current GET /api/v1/duty/current
func (h *DutyHandler) Current(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.dutySvc.Current(c.Request.Context(), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, session)
}

// CheckIn POST /api/v1/duty/check-ins
func (h *DutyHandler) CheckIn(c *gin.Context) {
	var req dto.LocationCheckInRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	checkIn, err := h.dutySvc.CheckIn(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, checkIn)
}

// ListMine GET /api/v1/duty/sessions/my
func (h *DutyHandler) ListMine(c *gin.Context) {
	var req dto.DutySessionListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.dutySvc.ListMine(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// ListSessions GET /api/v1/duty/sessions
func (h *DutyHandler) ListSessions(c *gin.Context) {
	var req dto.DutySessionListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, total, err := h.dutySvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetSession GET /api/v1/duty/sessions/:id
func (h *DutyHandler) GetSession(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.dutySvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, session)
}

// ForceClockOut POST /api/v1/duty/sessions/:id/force-clock-out
func (h *DutyHandler) ForceClockOut(c *gin.Context) {
	var req dto.ForceClockOutRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	session, err := h.dutySvc.ForceClockOut(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, session)
}
