package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// PatternHandler recurring shift patterns and generation
type PatternHandler struct {
	patternSvc service.PatternService
}

// NewPatternHandler creates a PatternHandler
func NewPatternHandler(patternSvc service.PatternService) *PatternHandler {
	return &PatternHandler{patternSvc: patternSvc}
}

// ListPatterns GET /api/v1/patterns
func (h *PatternHandler) ListPatterns(c *gin.Context) {
	var req dto.PatternListRequest
	if !bindQuery(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	patterns, err := h.patternSvc.List(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": patterns})
}

// GetPattern GET /api/v1/patterns/:id
func (h *PatternHandler) GetPattern(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pattern, err := h.patternSvc.GetByID(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, pattern)
}

// CreatePattern POST /api/v1/patterns
func (h *PatternHandler) CreatePattern(c *gin.Context) {
	var req dto.CreatePatternRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pattern, err := h.patternSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, pattern)
}

// UpdatePattern PUT /api/v1/patterns/:id
func (h *PatternHandler) UpdatePattern(c *gin.Context) {
	var req dto.UpdatePatternRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pattern, err := h.patternSvc.Update(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, pattern)
}

// DeletePattern DELETE /api/v1/patterns/:id
func (h *PatternHandler) DeletePattern(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.patternSvc.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// GenerateShifts POST /api/v1/patterns/generate
func (h *PatternHandler) GenerateShifts(c *gin.Context) {
	var req dto.GenerateShiftsRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.patternSvc.GenerateShifts(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, result)
}
