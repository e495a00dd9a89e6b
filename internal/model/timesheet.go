package model

import "time"

// TimesheetStatus approval state
type TimesheetStatus string

// DRAFT --submit--> PENDING --approve--> APPROVED
//
//	PENDING --reject---> REJECTED
const (
	TimesheetDraft    TimesheetStatus = "DRAFT"
	TimesheetPending  TimesheetStatus = "PENDING"
	TimesheetApproved TimesheetStatus = "APPROVED"
	TimesheetRejected TimesheetStatus = "REJECTED"
)

// Valid reports whether s is a known status.
func (s TimesheetStatus) Valid() bool {
	switch s {
	case TimesheetDraft, TimesheetPending, TimesheetApproved, TimesheetRejected:
		return true
	}
	return false
}

// Timesheet one per (user, week_start) (timesheets)
type Timesheet struct {
	TimesheetID     string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timesheet_id"`
	UserID          string          `gorm:"type:uuid;not null"                             json:"user_id"`
	WeekStart       time.Time       `gorm:"not null"                                       json:"week_start"` // Sunday 00:00 in the roster timezone
	WeekEnd         time.Time       `gorm:"not null"                                       json:"week_end"`   // Saturday 23:59:59.999
	TotalHours      float64         `gorm:"type:numeric(8,2);not null;default:0"           json:"total_hours"`
	TotalEntries    int             `gorm:"not null;default:0"                             json:"total_entries"`
	Status          TimesheetStatus `gorm:"type:varchar(10);not null;default:'DRAFT'"      json:"status"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	SubmittedBy     *string         `gorm:"type:uuid"                                      json:"submitted_by,omitempty"`
	ReviewedAt      *time.Time      `json:"reviewed_at,omitempty"`
	ReviewedBy      *string         `gorm:"type:uuid"                                      json:"reviewed_by,omitempty"`
	RejectionReason string          `gorm:"type:varchar(500)"                              json:"rejection_reason,omitempty"`
	VersionedModel

	// relations
	User    *User            `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Entries []TimesheetEntry `gorm:"foreignKey:TimesheetID"              json:"entries,omitempty"`
}

// TableName table name
func (Timesheet) TableName() string { return "timesheets" }

// CanSubmit DRAFT only
func (t *Timesheet) CanSubmit() bool { return t.Status == TimesheetDraft }

// CanApprove PENDING only
func (t *Timesheet) CanApprove() bool { return t.Status == TimesheetPending }

// CanReject PENDING only
func (t *Timesheet) CanReject() bool { return t.Status == TimesheetPending }

// CanDelete DRAFT only
func (t *Timesheet) CanDelete() bool { return t.Status == TimesheetDraft }

// CanAdjust entries stay editable until a decision is made
func (t *Timesheet) CanAdjust() bool {
	return t.Status == TimesheetDraft || t.Status == TimesheetPending
}

// TimesheetEntry snapshot of one duty session (timesheet_entries)
type TimesheetEntry struct {
	TimesheetEntryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"timesheet_entry_id"`
	TimesheetID      string    `gorm:"type:uuid;not null"                             json:"timesheet_id"`
	DutySessionID    *string   `gorm:"type:uuid"                                      json:"duty_session_id,omitempty"` // NULL for manual entries
	LocationID       *string   `gorm:"type:uuid"                                      json:"location_id,omitempty"`
	ClockInTime      time.Time `gorm:"not null"                                       json:"clock_in_time"`
	ClockOutTime     time.Time `gorm:"not null"                                       json:"clock_out_time"`
	OriginalClockIn  time.Time `gorm:"not null"                                       json:"original_clock_in"`
	OriginalClockOut time.Time `gorm:"not null"                                       json:"original_clock_out"`
	HoursWorked      float64   `gorm:"type:numeric(6,2);not null"                     json:"hours_worked"`
	WasAdjusted      bool      `gorm:"not null;default:false"                         json:"was_adjusted"`
	WasManuallyAdded bool      `gorm:"not null;default:false"                         json:"was_manually_added"`
	BaseModel

	// relations
	Location    *Location             `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
	Adjustments []TimesheetAdjustment `gorm:"foreignKey:TimesheetEntryID"                 json:"adjustments,omitempty"`
}

// TableName table name
func (TimesheetEntry) TableName() string { return "timesheet_entries" }

// TimesheetAdjustment immutable audit row (timesheet_adjustments)
type TimesheetAdjustment struct {
	AdjustmentID     string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"adjustment_id"`
	TimesheetID      string     `gorm:"type:uuid;not null"                             json:"timesheet_id"`
	TimesheetEntryID string     `gorm:"type:uuid;not null"                             json:"timesheet_entry_id"`
	AdjustedBy       string     `gorm:"type:uuid;not null"                             json:"adjusted_by"`
	Reason           string     `gorm:"type:varchar(500);not null"                     json:"reason"`
	PreviousClockIn  *time.Time `json:"previous_clock_in,omitempty"` // NULL for a manually added entry
	PreviousClockOut *time.Time `json:"previous_clock_out,omitempty"`
	NewClockIn       time.Time  `gorm:"not null"                                       json:"new_clock_in"`
	NewClockOut      time.Time  `gorm:"not null"                                       json:"new_clock_out"`
	PreviousHours    float64    `gorm:"type:numeric(6,2);not null;default:0"           json:"previous_hours"`
	NewHours         float64    `gorm:"type:numeric(6,2);not null"                     json:"new_hours"`
	CreatedAt        time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName table name
func (TimesheetAdjustment) TableName() string { return "timesheet_adjustments" }
