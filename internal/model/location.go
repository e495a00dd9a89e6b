package model

// Location marina post, dock or gate (locations)
type Location struct {
	LocationID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"location_id"`
	Name           string `gorm:"type:varchar(100);not null"                     json:"name"`
	Address        string `gorm:"type:varchar(200)"                              json:"address,omitempty"`
	CheckpointCode string `gorm:"type:varchar(32);not null;uniqueIndex"          json:"checkpoint_code"` // encoded in the posted QR code
	IsActive       bool   `gorm:"not null;default:true"                          json:"is_active"`
	SoftDeleteModel
}

// TableName table name
func (Location) TableName() string { return "locations" }
