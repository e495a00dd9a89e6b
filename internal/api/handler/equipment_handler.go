package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// EquipmentHandler patrol cars and radios
type EquipmentHandler struct {
	equipmentSvc service.EquipmentService
}

// NewEquipmentHandler creates an EquipmentHandler
func NewEquipmentHandler(equipmentSvc service.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentSvc: equipmentSvc}
}

// ListEquipment GET /api/v1/equipment
func (h *EquipmentHandler) ListEquipment(c *gin.Context) {
	var req dto.EquipmentListRequest
	if !bindQuery(c, &req) {
		return
	}

	list, err := h.equipmentSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CreateEquipment POST /api/v1/equipment
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	var req dto.CreateEquipmentRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	e, err := h.equipmentSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, e)
}

// Checkout POST /api/v1/equipment/:id/checkout
func (h *EquipmentHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	checkout, err := h.equipmentSvc.Checkout(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, checkout)
}

// Checkin POST /api/v1/equipment/:id/checkin
func (h *EquipmentHandler) Checkin(c *gin.Context) {
	var req dto.CheckinRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	checkout, err := h.equipmentSvc.Checkin(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, checkout)
}

// History GET /api/v1/equipment/:id/history
func (h *EquipmentHandler) History(c *gin.Context) {
	var page dto.PaginationRequest
	if !bindQuery(c, &page) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.equipmentSvc.History(c.Request.Context(), callerID, c.Param("id"), &page)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// MyCheckouts GET /api/v1/equipment/my
func (h *EquipmentHandler) MyCheckouts(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.equipmentSvc.MyCheckouts(c.Request.Context(), callerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}
