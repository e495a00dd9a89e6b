package model

import "time"

// DutySession a user's clock-in to clock-out interval (duty_sessions)
//
// At most one open session (ClockOutTime IS NULL) per user, enforced by the
// partial unique index ux_duty_sessions_open_per_user.
type DutySession struct {
	DutySessionID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"duty_session_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	LocationID    *string    `gorm:"type:uuid"                                      json:"location_id,omitempty"` // NULL = roaming
	ShiftID       *string    `gorm:"type:uuid"                                      json:"shift_id,omitempty"`
	ClockInTime   time.Time  `gorm:"not null"                                       json:"clock_in_time"`
	ClockOutTime  *time.Time `json:"clock_out_time,omitempty"`
	Notes         string     `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel

	// relations
	User     *User             `gorm:"foreignKey:UserID;references:UserID"         json:"user,omitempty"`
	Location *Location         `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
	CheckIns []LocationCheckIn `gorm:"foreignKey:DutySessionID"                    json:"check_ins,omitempty"`
}

// TableName table name
func (DutySession) TableName() string { return "duty_sessions" }

// IsOpen session has not been clocked out
func (s *DutySession) IsOpen() bool { return s.ClockOutTime == nil }

// IsRoaming session has no fixed post
func (s *DutySession) IsRoaming() bool { return s.LocationID == nil }

// LocationCheckIn a roaming supervisor's tour stop (location_check_ins)
type LocationCheckIn struct {
	CheckInID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"check_in_id"`
	DutySessionID string    `gorm:"type:uuid;not null"                             json:"duty_session_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	LocationID    string    `gorm:"type:uuid;not null"                             json:"location_id"`
	CheckedInAt   time.Time `gorm:"not null"                                       json:"checked_in_at"`
	Notes         string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	Location *Location `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
}

// TableName table name
func (LocationCheckIn) TableName() string { return "location_check_ins" }
