package dto

import "time"

// ── Incidents ──

// CreateIncidentRequest file a report
type CreateIncidentRequest struct {
	LocationID   string    `json:"location_id"   binding:"required,uuid"`
	OccurredAt   time.Time `json:"occurred_at"   binding:"required"`
	Severity     string    `json:"severity"      binding:"required,oneof=LOW MEDIUM HIGH"`
	Title        string    `json:"title"         binding:"required,min=3,max=200"`
	Description  string    `json:"description"   binding:"required,max=5000"`
	ActionsTaken string    `json:"actions_taken" binding:"omitempty,max=5000"`
}

// IncidentListRequest list filters
type IncidentListRequest struct {
	PaginationRequest
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	Severity   string `form:"severity"    binding:"omitempty,oneof=LOW MEDIUM HIGH"`
	Unsigned   bool   `form:"unsigned"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
}

// SignIncidentRequest typed signature
type SignIncidentRequest struct {
	SignatureName string `json:"signature_name" binding:"required,min=2,max=100"`
}

// IncidentResponse report view
type IncidentResponse struct {
	ID            string  `json:"id"`
	ReportedBy    string  `json:"reported_by"`
	ReporterName  string  `json:"reporter_name,omitempty"`
	LocationID    string  `json:"location_id"`
	LocationName  string  `json:"location_name,omitempty"`
	DutySessionID *string `json:"duty_session_id,omitempty"`
	OccurredAt    string  `json:"occurred_at"`
	Severity      string  `json:"severity"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	ActionsTaken  string  `json:"actions_taken,omitempty"`
	SignedBy      *string `json:"signed_by,omitempty"`
	SignatureName string  `json:"signature_name,omitempty"`
	SignedAt      *string `json:"signed_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}
