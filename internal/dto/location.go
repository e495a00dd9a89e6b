package dto

// ── Locations ──

// CreateLocationRequest create a post; a checkpoint code is generated when empty
type CreateLocationRequest struct {
	Name           string `json:"name"            binding:"required,min=2,max=100"`
	Address        string `json:"address"         binding:"omitempty,max=200"`
	CheckpointCode string `json:"checkpoint_code" binding:"omitempty,alphanum,min=4,max=32"`
}

// UpdateLocationRequest partial update
type UpdateLocationRequest struct {
	Name           *string `json:"name"            binding:"omitempty,min=2,max=100"`
	Address        *string `json:"address"         binding:"omitempty,max=200"`
	CheckpointCode *string `json:"checkpoint_code" binding:"omitempty,alphanum,min=4,max=32"`
	IsActive       *bool   `json:"is_active"`
}

// LocationListRequest list filters
type LocationListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// LocationResponse location view
type LocationResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Address        string `json:"address,omitempty"`
	CheckpointCode string `json:"checkpoint_code"`
	IsActive       bool   `json:"is_active"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
