package model

import "time"

// EquipmentKind kind of checkable item
type EquipmentKind string

const (
	EquipmentCar   EquipmentKind = "CAR"
	EquipmentRadio EquipmentKind = "RADIO"
)

// Valid reports whether k is CAR or RADIO.
func (k EquipmentKind) Valid() bool {
	return k == EquipmentCar || k == EquipmentRadio
}

// Equipment patrol car or radio (equipment)
type Equipment struct {
	EquipmentID string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"equipment_id"`
	Kind        EquipmentKind `gorm:"type:varchar(10);not null"                      json:"kind"`
	Identifier  string        `gorm:"type:varchar(50);not null;uniqueIndex"          json:"identifier"` // plate or radio number
	Name        string        `gorm:"type:varchar(100)"                              json:"name,omitempty"`
	IsAvailable bool          `gorm:"not null;default:true"                          json:"is_available"`
	IsActive    bool          `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName table name
func (Equipment) TableName() string { return "equipment" }

// EquipmentCheckout one checkout interval (equipment_checkouts)
type EquipmentCheckout struct {
	CheckoutID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"checkout_id"`
	EquipmentID   string     `gorm:"type:uuid;not null"                             json:"equipment_id"`
	UserID        string     `gorm:"type:uuid;not null"                             json:"user_id"`
	DutySessionID *string    `gorm:"type:uuid"                                      json:"duty_session_id,omitempty"`
	CheckedOutAt  time.Time  `gorm:"not null"                                       json:"checked_out_at"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"` // NULL while out
	StartMileage  *int       `json:"start_mileage,omitempty"`
	EndMileage    *int       `json:"end_mileage,omitempty"`
	Notes         string     `gorm:"type:varchar(500)" json:"notes,omitempty"`
	BaseModel

	Equipment *Equipment `gorm:"foreignKey:EquipmentID;references:EquipmentID" json:"equipment,omitempty"`
	User      *User      `gorm:"foreignKey:UserID;references:UserID"           json:"user,omitempty"`
}

// TableName table name
func (EquipmentCheckout) TableName() string { return "equipment_checkouts" }

// IsOpen reports whether the item is still out.
func (c *EquipmentCheckout) IsOpen() bool { return c.CheckedInAt == nil }
