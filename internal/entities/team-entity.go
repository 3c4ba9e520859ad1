package entities

import "time"

type MemberRole string

const (
	MemberRoleLead   MemberRole = "lead"
	MemberRoleMember MemberRole = "member"
)

func (r MemberRole) Valid() bool {
	return r == MemberRoleLead || r == MemberRoleMember
}

type MaintenanceTeam struct {
	ID             string       `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	Description    *string      `json:"description" db:"description"`
	Specialization *string      `json:"specialization" db:"specialization"`
	Color          string       `json:"color" db:"color"`
	IsActive       bool         `json:"is_active" db:"is_active"`
	Members        []TeamMember `json:"members" db:"-"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" db:"updated_at"`
}

type TeamMember struct {
	TeamID   string     `json:"team_id" db:"team_id"`
	UserID   string     `json:"user_id" db:"user_id"`
	FullName string     `json:"full_name" db:"full_name"`
	Email    string     `json:"email" db:"email"`
	Role     MemberRole `json:"role" db:"role"`
	JoinedAt time.Time  `json:"joined_at" db:"joined_at"`
}
