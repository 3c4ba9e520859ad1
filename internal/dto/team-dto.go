package dto

import (
	"gearguard/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateTeamDTO struct {
	Name           string  `json:"name" validate:"required,min=2,max=100"`
	Description    *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Specialization *string `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Color          string  `json:"color,omitempty" validate:"omitempty,hexcolor"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

type UpdateTeamDTO struct {
	Name           null.String `json:"name" validate:"omitempty,min=2,max=100"`
	Description    null.String `json:"description" validate:"omitempty,max=1000"`
	Specialization null.String `json:"specialization" validate:"omitempty,max=100"`
	Color          null.String `json:"color" validate:"omitempty,hexcolor"`
	IsActive       null.Bool   `json:"is_active"`
}

type AddTeamMemberDTO struct {
	UserID string `json:"user_id" validate:"required,uuid_str"`
	Role   string `json:"role,omitempty" validate:"omitempty,member_role"`
}

type TeamMemberDTO struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	JoinedAt string `json:"joined_at"`
}

type TeamResponseDTO struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description"`
	Specialization *string         `json:"specialization"`
	Color          string          `json:"color"`
	IsActive       bool            `json:"is_active"`
	Members        []TeamMemberDTO `json:"members"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

type TeamWorkloadDTO struct {
	TeamID        string                   `json:"team_id"`
	TeamName      string                   `json:"team_name"`
	TotalRequests int                      `json:"total_requests"`
	ByStage       entities.WorkloadByStage `json:"by_stage"`
	ByType        entities.WorkloadByType  `json:"by_type"`
	Requests      []RequestResponseDTO     `json:"requests"`
}
