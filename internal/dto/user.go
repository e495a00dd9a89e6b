package dto

// ── Users ──

// CreateUserRequest admin creates an account
type CreateUserRequest struct {
	Name     string `json:"name"     binding:"required,min=2,max=100"`
	Email    string `json:"email"    binding:"required,email,max=255"`
	Phone    string `json:"phone"    binding:"omitempty,max=30"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Role     string `json:"role"     binding:"required,oneof=GUARD SUPERVISOR ADMIN SUPER_ADMIN"`
}

// UserListRequest list filters
type UserListRequest struct {
	PaginationRequest
	Role       string `form:"role"        binding:"omitempty,oneof=GUARD SUPERVISOR ADMIN SUPER_ADMIN"`
	Keyword    string `form:"keyword"     binding:"omitempty,max=50"`
	ActiveOnly bool   `form:"active_only"`
}

// UpdateUserRequest profile update
type UpdateUserRequest struct {
	Name  *string `json:"name"  binding:"omitempty,min=2,max=100"`
	Phone *string `json:"phone" binding:"omitempty,max=30"`
}

// AssignRoleRequest change a user's role
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=GUARD SUPERVISOR ADMIN SUPER_ADMIN"`
}

// UserResponse public user view
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}
