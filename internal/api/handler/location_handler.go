package handler

import (
	"github.com/gin-gonic/gin"

	"marina-guard/backend/internal/dto"
	"marina-guard/backend/internal/service"
	"marina-guard/backend/pkg/response"
)

// LocationHandler guard posts and their checkpoints
type LocationHandler struct {
	locationSvc service.LocationService
}

// NewLocationHandler creates a LocationHandler
func NewLocationHandler(locationSvc service.LocationService) *LocationHandler {
	return &LocationHandler{locationSvc: locationSvc}
}

// ListLocations GET /api/v1/locations
func (h *LocationHandler) ListLocations(c *gin.Context) {
	var req dto.LocationListRequest
	if !bindQuery(c, &req) {
		return
	}

	locations, err := h.locationSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, gin.H{"list": locations})
}

// GetLocation GET /api/v1/locations/:id
func (h *LocationHandler) GetLocation(c *gin.Context) {
	location, err := h.locationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, location)
}

// CreateLocation POST /api/v1/locations
func (h *LocationHandler) CreateLocation(c *gin.Context) {
	var req dto.CreateLocationRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Create(c.Request.Context(), callerID, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Created(c, location)
}

// UpdateLocation PUT /api/v1/locations/:id
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	var req dto.UpdateLocationRequest
	if !bindJSON(c, &req) {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	location, err := h.locationSvc.Update(c.Request.Context(), callerID, c.Param("id"), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, location)
}

// DeleteLocation DELETE /api/v1/locations/:id
func (h *LocationHandler) DeleteLocation(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	if err := h.locationSvc.Delete(c.Request.Context(), callerID, c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, nil)
}

// QRCode GET /api/v1/locations/:id/qrcode
func (h *LocationHandler) QRCode(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	png, filename, err := h.locationSvc.QRCode(c.Request.Context(), callerID, c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	sendFile(c, png, filename, "image/png")
}
