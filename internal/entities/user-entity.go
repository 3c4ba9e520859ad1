package entities

import "time"

type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleManager    UserRole = "manager"
	RoleTechnician UserRole = "technician"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleTechnician:
		return true
	}
	return false
}

type User struct {
	ID       string   `json:"id" db:"id"`
	Email    string   `json:"email" db:"email"`
	Password string   `json:"-" db:"password_hash"`
	FullName string   `json:"full_name" db:"full_name"`
	Role     UserRole `json:"role" db:"role"`
	IsActive bool     `json:"is_active" db:"is_active"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
