package dto

import "time"

// ── Shifts ──

// ShiftAssignmentInput guard on a shift
type ShiftAssignmentInput struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"omitempty,oneof=PRIMARY BACKUP"`
}

// CreateShiftRequest one-off shift
type CreateShiftRequest struct {
	LocationID  string                 `json:"location_id" binding:"required,uuid"`
	StartTime   time.Time              `json:"start_time"  binding:"required"`
	EndTime     time.Time              `json:"end_time"    binding:"required,gtfield=StartTime"`
	Notes       string                 `json:"notes"       binding:"omitempty,max=500"`
	Assignments []ShiftAssignmentInput `json:"assignments" binding:"omitempty,max=20,dive"`
}

// ShiftListRequest list filters; dates are roster-local calendar days
type ShiftListRequest struct {
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
}

// ShiftAssignmentResponse assignee view
type ShiftAssignmentResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// ShiftResponse shift view
type ShiftResponse struct {
	ID           string                    `json:"id"`
	LocationID   string                    `json:"location_id"`
	LocationName string                    `json:"location_name,omitempty"`
	PatternID    *string                   `json:"pattern_id,omitempty"`
	StartTime    string                    `json:"start_time"`
	EndTime      string                    `json:"end_time"`
	Notes        string                    `json:"notes,omitempty"`
	Assignments  []ShiftAssignmentResponse `json:"assignments"`
}
