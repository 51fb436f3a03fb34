package models

// Role is one of the fixed operator roles.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleSupervisor Role = "Supervisor"
	RoleWorker     Role = "Worker"
)

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSupervisor, RoleWorker:
		return true
	}
	return false
}

type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}

// UserInput is the add/edit form for a user.
type UserInput struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Role     Role   `json:"role" validate:"required,oneof=Admin Supervisor Worker"`
	Email    string `json:"email" validate:"required,email"`
}

// Bulk user actions accepted by the backend.
const (
	BulkActivate   = "activate"
	BulkDeactivate = "deactivate"
	BulkDelete     = "delete"
)
