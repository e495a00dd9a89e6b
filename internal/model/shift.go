package model

import "time"

// AssignmentRole guard's role on a shift
type AssignmentRole string

const (
	AssignmentPrimary AssignmentRole = "PRIMARY"
	AssignmentBackup  AssignmentRole = "BACKUP"
)

// Valid reports whether r is PRIMARY or BACKUP.
func (r AssignmentRole) Valid() bool {
	return r == AssignmentPrimary || r == AssignmentBackup
}

// RecurringShiftPattern weekly template expanded into shifts (recurring_shift_patterns)
type RecurringShiftPattern struct {
	PatternID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pattern_id"`
	Name       string     `gorm:"type:varchar(100)"                              json:"name,omitempty"`
	LocationID string     `gorm:"type:uuid;not null"                             json:"location_id"`
	StartTime  string     `gorm:"type:varchar(5);not null"                       json:"start_time"`   // HH:MM
	EndTime    string     `gorm:"type:varchar(5);not null"                       json:"end_time"`     // HH:MM, before StartTime means overnight
	DaysOfWeek IntArray   `gorm:"type:int[];not null"                            json:"days_of_week"` // 0=Sunday … 6=Saturday
	StartDate  time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"` // NULL = open-ended
	IsActive   bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// relations
	Location    *Location           `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
	Assignments []PatternAssignment `gorm:"foreignKey:PatternID"                        json:"assignments,omitempty"`
}

// TableName table name
func (RecurringShiftPattern) TableName() string { return "recurring_shift_patterns" }

// PatternAssignment default guard copied onto every generated shift (pattern_assignments)
type PatternAssignment struct {
	PatternAssignmentID string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"pattern_assignment_id"`
	PatternID           string         `gorm:"type:uuid;not null"                             json:"pattern_id"`
	UserID              string         `gorm:"type:uuid;not null"                             json:"user_id"`
	Role                AssignmentRole `gorm:"type:varchar(10);not null"                      json:"role"`
	CreatedAt           time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (PatternAssignment) TableName() string { return "pattern_assignments" }

// Shift concrete duty window (shifts)
type Shift struct {
	ShiftID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	LocationID string    `gorm:"type:uuid;not null"                             json:"location_id"`
	PatternID  *string   `gorm:"type:uuid"                                      json:"pattern_id,omitempty"` // set when generated from a pattern
	StartTime  time.Time `gorm:"not null"                                       json:"start_time"`
	EndTime    time.Time `gorm:"not null"                                       json:"end_time"`
	Notes      string    `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel

	// relations
	Location    *Location         `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
	Assignments []ShiftAssignment `gorm:"foreignKey:ShiftID"                          json:"assignments,omitempty"`
}

// TableName table name
func (Shift) TableName() string { return "shifts" }

// ShiftAssignment guard on a shift (shift_assignments)
type ShiftAssignment struct {
	ShiftAssignmentID string          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_assignment_id"`
	ShiftID           string          `gorm:"type:uuid;not null"                             json:"shift_id"`
	UserID            string          `gorm:"type:uuid;not null"                             json:"user_id"`
	Role              *AssignmentRole `gorm:"type:varchar(10)"                               json:"role,omitempty"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`

	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName table name
func (ShiftAssignment) TableName() string { return "shift_assignments" }
