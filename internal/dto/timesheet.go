package dto

import "time"

// ── Timesheets ──

// GenerateTimesheetRequest build the draft for the week containing WeekDate
type GenerateTimesheetRequest struct {
	UserID   string `json:"user_id"   binding:"omitempty,uuid"` // default: caller
	WeekDate string `json:"week_date" binding:"required,datetime=2006-01-02"`
}

// BulkGenerateRequest generate for every active user
type BulkGenerateRequest struct {
	WeekDate string `json:"week_date" binding:"required,datetime=2006-01-02"`
}

// BulkGenerateResult outcome for one user
type BulkGenerateResult struct {
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Status      string `json:"status"` // generated | skipped | failed
	TimesheetID string `json:"timesheet_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

// BulkGenerateResponse per-user outcomes
type BulkGenerateResponse struct {
	WeekStart string               `json:"week_start"`
	Generated int                  `json:"generated"`
	Skipped   int                  `json:"skipped"`
	Failed    int                  `json:"failed"`
	Results   []BulkGenerateResult `json:"results"`
}

// TimesheetListRequest list filters
type TimesheetListRequest struct {
	PaginationRequest
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=DRAFT PENDING APPROVED REJECTED"`
	WeekFrom string `form:"week_from" binding:"omitempty,datetime=2006-01-02"`
	WeekTo   string `form:"week_to"   binding:"omitempty,datetime=2006-01-02"`
}

// TimesheetExportRequest export filters
type TimesheetExportRequest struct {
	UserID   string `form:"user_id"   binding:"omitempty,uuid"`
	Status   string `form:"status"    binding:"omitempty,oneof=DRAFT PENDING APPROVED REJECTED"`
	WeekFrom string `form:"week_from" binding:"omitempty,datetime=2006-01-02"`
	WeekTo   string `form:"week_to"   binding:"omitempty,datetime=2006-01-02"`
	Format   string `form:"format"    binding:"omitempty,oneof=csv xlsx"`
}

// RejectTimesheetRequest reason is mandatory
type RejectTimesheetRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// BulkApproveRequest ids to approve
type BulkApproveRequest struct {
	TimesheetIDs []string `json:"timesheet_ids" binding:"required,min=1,max=200,dive,uuid"`
}

// BulkApproveResponse per-id outcome counts
type BulkApproveResponse struct {
	Approved int      `json:"approved"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors"`
}

// AdjustEntryRequest new current clock pair
type AdjustEntryRequest struct {
	ClockInTime  time.Time `json:"clock_in_time"  binding:"required"`
	ClockOutTime time.Time `json:"clock_out_time" binding:"required,gtfield=ClockInTime"`
	Reason       string    `json:"reason"         binding:"required,max=500"`
}

// AddEntryRequest manual entry without a duty session
type AddEntryRequest struct {
	ClockInTime  time.Time `json:"clock_in_time"  binding:"required"`
	ClockOutTime time.Time `json:"clock_out_time" binding:"required,gtfield=ClockInTime"`
	LocationID   string    `json:"location_id"    binding:"omitempty,uuid"`
	Reason       string    `json:"reason"         binding:"required,max=500"`
}

// TimesheetAdjustmentResponse audit row
type TimesheetAdjustmentResponse struct {
	ID               string  `json:"id"`
	EntryID          string  `json:"entry_id"`
	AdjustedBy       string  `json:"adjusted_by"`
	Reason           string  `json:"reason"`
	PreviousClockIn  *string `json:"previous_clock_in,omitempty"`
	PreviousClockOut *string `json:"previous_clock_out,omitempty"`
	NewClockIn       string  `json:"new_clock_in"`
	NewClockOut      string  `json:"new_clock_out"`
	PreviousHours    float64 `json:"previous_hours"`
	NewHours         float64 `json:"new_hours"`
	CreatedAt        string  `json:"created_at"`
}

// TimesheetEntryResponse entry view
type TimesheetEntryResponse struct {
	ID               string                        `json:"id"`
	DutySessionID    *string                       `json:"duty_session_id,omitempty"`
	LocationID       *string                       `json:"location_id,omitempty"`
	LocationName     string                        `json:"location_name,omitempty"`
	ClockInTime      string                        `json:"clock_in_time"`
	ClockOutTime     string                        `json:"clock_out_time"`
	OriginalClockIn  string                        `json:"original_clock_in"`
	OriginalClockOut string                        `json:"original_clock_out"`
	HoursWorked      float64                       `json:"hours_worked"`
	WasAdjusted      bool                          `json:"was_adjusted"`
	WasManuallyAdded bool                          `json:"was_manually_added"`
	Adjustments      []TimesheetAdjustmentResponse `json:"adjustments,omitempty"`
}

// TimesheetResponse timesheet view; Entries only on detail
type TimesheetResponse struct {
	ID              string                   `json:"id"`
	UserID          string                   `json:"user_id"`
	UserName        string                   `json:"user_name,omitempty"`
	WeekStart       string                   `json:"week_start"`
	WeekEnd         string                   `json:"week_end"`
	TotalHours      float64                  `json:"total_hours"`
	TotalEntries    int                      `json:"total_entries"`
	Status          string                   `json:"status"`
	SubmittedAt     *string                  `json:"submitted_at,omitempty"`
	SubmittedBy     *string                  `json:"submitted_by,omitempty"`
	ReviewedAt      *string                  `json:"reviewed_at,omitempty"`
	ReviewedBy      *string                  `json:"reviewed_by,omitempty"`
	RejectionReason string                   `json:"rejection_reason,omitempty"`
	Version         int                      `json:"version"`
	Entries         []TimesheetEntryResponse `json:"entries,omitempty"`
}
