package model

// Role user permission tier
type Role string

const (
	RoleGuard      Role = "GUARD"
	RoleSupervisor Role = "SUPERVISOR"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// GUARD < SUPERVISOR < ADMIN < SUPER_ADMIN
var roleRank = map[Role]int{
	RoleGuard:      1,
	RoleSupervisor: 2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above min. Unknown roles rank below
// everything.
func (r Role) AtLeast(min Role) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[min]
}

// IsSupervisorTier supervisors and above may run roaming duty
func (r Role) IsSupervisorTier() bool { return r.AtLeast(RoleSupervisor) }
