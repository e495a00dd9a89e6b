package dto

// ── Recurring shift patterns ──

// PatternAssignmentInput default guard for every generated shift
type PatternAssignmentInput struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Role   string `json:"role"    binding:"required,oneof=PRIMARY BACKUP"`
}

// CreatePatternRequest create a weekly pattern
type CreatePatternRequest struct {
	Name        string                   `json:"name"         binding:"omitempty,max=100"`
	LocationID  string                   `json:"location_id"  binding:"required,uuid"`
	StartTime   string                   `json:"start_time"   binding:"required,hhmm"`
	EndTime     string                   `json:"end_time"     binding:"required,hhmm"`
	DaysOfWeek  []int                    `json:"days_of_week" binding:"required,min=1,max=7,unique,dive,weekday"`
	StartDate   string                   `json:"start_date"   binding:"required,datetime=2006-01-02"`
	EndDate     string                   `json:"end_date"     binding:"omitempty,datetime=2006-01-02"`
	Assignments []PatternAssignmentInput `json:"assignments"  binding:"omitempty,max=20,dive"`
}

// UpdatePatternRequest partial update; Assignments replaces the whole set when present
type UpdatePatternRequest struct {
	Name         *string                   `json:"name"           binding:"omitempty,max=100"`
	LocationID   *string                   `json:"location_id"    binding:"omitempty,uuid"`
	StartTime    *string                   `json:"start_time"     binding:"omitempty,hhmm"`
	EndTime      *string                   `json:"end_time"       binding:"omitempty,hhmm"`
	DaysOfWeek   []int                     `json:"days_of_week"   binding:"omitempty,min=1,max=7,unique,dive,weekday"`
	StartDate    *string                   `json:"start_date"     binding:"omitempty,datetime=2006-01-02"`
	EndDate      *string                   `json:"end_date"       binding:"omitempty,datetime=2006-01-02"`
	ClearEndDate bool                      `json:"clear_end_date"`
	IsActive     *bool                     `json:"is_active"`
	Assignments  *[]PatternAssignmentInput `json:"assignments"    binding:"omitempty,max=20,dive"`
	Version      int                       `json:"version"        binding:"required,min=1"`
}

// PatternListRequest list filters
type PatternListRequest struct {
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	ActiveOnly bool   `form:"active_only"`
}

// GenerateShiftsRequest expand active patterns from From for Days days
type GenerateShiftsRequest struct {
	From string `json:"from" binding:"omitempty,datetime=2006-01-02"` // default today
	Days int    `json:"days" binding:"omitempty,min=1,max=90"`        // default schedule.generation_days
}

// GenerateShiftsResponse generation summary
type GenerateShiftsResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// PatternAssignmentResponse default assignee
type PatternAssignmentResponse struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name,omitempty"`
	Role     string `json:"role"`
}

// PatternResponse pattern view
type PatternResponse struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name,omitempty"`
	LocationID   string                      `json:"location_id"`
	LocationName string                      `json:"location_name,omitempty"`
	StartTime    string                      `json:"start_time"`
	EndTime      string                      `json:"end_time"`
	Overnight    bool                        `json:"overnight"`
	DaysOfWeek   []int                       `json:"days_of_week"`
	StartDate    string                      `json:"start_date"`
	EndDate      *string                     `json:"end_date,omitempty"`
	IsActive     bool                        `json:"is_active"`
	Assignments  []PatternAssignmentResponse `json:"assignments"`
	Version      int                         `json:"version"`
}
