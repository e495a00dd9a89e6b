package dto

// ── Duty sessions ──

// ClockInRequest no location means roaming duty
type ClockInRequest struct {
	LocationID string `json:"location_id" binding:"omitempty,uuid"`
	ShiftID    string `json:"shift_id"    binding:"omitempty,uuid"`
	Notes      string `json:"notes"       binding:"omitempty,max=500"`
}

// ClockOutRequest close own session
type ClockOutRequest struct {
	Notes string `json:"notes" binding:"omitempty,max=500"`
}

// ForceClockOutRequest supervisor closes another user's session
type ForceClockOutRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// LocationCheckInRequest one of LocationID or CheckpointCode
type LocationCheckInRequest struct {
	LocationID     string `json:"location_id"     binding:"omitempty,uuid"`
	CheckpointCode string `json:"checkpoint_code" binding:"omitempty,alphanum,max=32"`
	Notes          string `json:"notes"           binding:"omitempty,max=500"`
}

// DutySessionListRequest list filters
type DutySessionListRequest struct {
	PaginationRequest
	UserID     string `form:"user_id"     binding:"omitempty,uuid"`
	LocationID string `form:"location_id" binding:"omitempty,uuid"`
	From       string `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"          binding:"omitempty,datetime=2006-01-02"`
	OpenOnly   bool   `form:"open_only"`
}

// LocationCheckInResponse tour stop view
type LocationCheckInResponse struct {
	ID           string `json:"id"`
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name,omitempty"`
	CheckedInAt  string `json:"checked_in_at"`
	Notes        string `json:"notes,omitempty"`
}

// DutySessionResponse session view
type DutySessionResponse struct {
	ID           string                    `json:"id"`
	UserID       string                    `json:"user_id"`
	UserName     string                    `json:"user_name,omitempty"`
	LocationID   *string                   `json:"location_id,omitempty"`
	LocationName string                    `json:"location_name,omitempty"`
	ShiftID      *string                   `json:"shift_id,omitempty"`
	Roaming      bool                      `json:"roaming"`
	ClockInTime  string                    `json:"clock_in_time"`
	ClockOutTime *string                   `json:"clock_out_time,omitempty"`
	HoursWorked  *float64                  `json:"hours_worked,omitempty"`
	Notes        string                    `json:"notes,omitempty"`
	CheckIns     []LocationCheckInResponse `json:"check_ins,omitempty"`
}
