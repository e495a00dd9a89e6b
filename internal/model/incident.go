package model

import "time"

// IncidentSeverity report severity
type IncidentSeverity string

const (
	SeverityLow    IncidentSeverity = "LOW"
	SeverityMedium IncidentSeverity = "MEDIUM"
	SeverityHigh   IncidentSeverity = "HIGH"
)

// Valid reports whether s is a known severity.
func (s IncidentSeverity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh:
		return true
	}
	return false
}

// IncidentReport filed by a guard, signed once by a supervisor (incident_reports)
type IncidentReport struct {
	IncidentID    string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"incident_id"`
	ReportedBy    string           `gorm:"type:uuid;not null"                             json:"reported_by"`
	LocationID    string           `gorm:"type:uuid;not null"                             json:"location_id"`
	DutySessionID *string          `gorm:"type:uuid"                                      json:"duty_session_id,omitempty"`
	OccurredAt    time.Time        `gorm:"not null"                                       json:"occurred_at"`
	Severity      IncidentSeverity `gorm:"type:varchar(10);not null"                      json:"severity"`
	Title         string           `gorm:"type:varchar(200);not null"                     json:"title"`
	Description   string           `gorm:"type:text;not null"                             json:"description"`
	ActionsTaken  string           `gorm:"type:text"                                      json:"actions_taken,omitempty"`
	SignedBy      *string          `gorm:"type:uuid"                                      json:"signed_by,omitempty"`
	SignatureName string           `gorm:"type:varchar(100)"                              json:"signature_name,omitempty"`
	SignedAt      *time.Time       `json:"signed_at,omitempty"`
	BaseModel

	// relations
	Reporter *User     `gorm:"foreignKey:ReportedBy;references:UserID" json:"reporter,omitempty"`
	Location *Location `gorm:"foreignKey:LocationID;references:LocationID" json:"location,omitempty"`
}

// TableName table name
func (IncidentReport) TableName() string { return "incident_reports" }

// IsSigned reports whether a supervisor has signed the report.
func (r *IncidentReport) IsSigned() bool { return r.SignedAt != nil }
