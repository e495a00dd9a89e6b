package dto

// ── Equipment ──

// CreateEquipmentRequest register a car or radio
type CreateEquipmentRequest struct {
	Kind       string `json:"kind"       binding:"required,oneof=CAR RADIO"`
	Identifier string `json:"identifier" binding:"required,min=1,max=50"`
	Name       string `json:"name"       binding:"omitempty,max=100"`
}

// EquipmentListRequest list filters
type EquipmentListRequest struct {
	Kind          string `form:"kind"           binding:"omitempty,oneof=CAR RADIO"`
	AvailableOnly bool   `form:"available_only"`
}

// CheckoutRequest take an item
type CheckoutRequest struct {
	StartMileage *int   `json:"start_mileage" binding:"omitempty,min=0"`
	Notes        string `json:"notes"         binding:"omitempty,max=500"`
}

// CheckinRequest return an item
type CheckinRequest struct {
	EndMileage *int   `json:"end_mileage" binding:"omitempty,min=0"`
	Notes      string `json:"notes"       binding:"omitempty,max=500"`
}

// EquipmentResponse item view
type EquipmentResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Identifier  string `json:"identifier"`
	Name        string `json:"name,omitempty"`
	IsAvailable bool   `json:"is_available"`
}

// CheckoutResponse checkout view
type CheckoutResponse struct {
	ID           string  `json:"id"`
	EquipmentID  string  `json:"equipment_id"`
	Identifier   string  `json:"identifier,omitempty"`
	UserID       string  `json:"user_id"`
	UserName     string  `json:"user_name,omitempty"`
	CheckedOutAt string  `json:"checked_out_at"`
	CheckedInAt  *string `json:"checked_in_at,omitempty"`
	StartMileage *int    `json:"start_mileage,omitempty"`
	EndMileage   *int    `json:"end_mileage,omitempty"`
	Notes        string  `json:"notes,omitempty"`
}
