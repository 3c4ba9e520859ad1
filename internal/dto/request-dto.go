package dto

import (
	"github.com/aarondl/null/v8"
)

type CreateRequestDTO struct {
	Subject       string   `json:"subject" validate:"required,min=3,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	Type          string   `json:"type" validate:"required,request_type"`
	Priority      string   `json:"priority,omitempty" validate:"omitempty,request_priority"`
	EquipmentID   string   `json:"equipment_id" validate:"required,uuid_str"`
	TechnicianID  *string  `json:"technician_id,omitempty" validate:"omitempty,uuid_str"`
	ScheduledDate *string  `json:"scheduled_date,omitempty" validate:"omitempty,date_str"`
	Duration      *float64 `json:"duration,omitempty" validate:"omitempty,gte=0"`
	Notes         *string  `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// UpdateRequestDTO - частичное обновление. Поле, пришедшее как null,
// очищается; отсутствующее поле не трогается.
type UpdateRequestDTO struct {
	Subject       null.String  `json:"subject" validate:"omitempty,min=3,max=200"`
	Description   null.String  `json:"description" validate:"omitempty,max=5000"`
	Priority      null.String  `json:"priority" validate:"omitempty,request_priority"`
	TechnicianID  null.String  `json:"technician_id" validate:"omitempty,uuid_str"`
	ScheduledDate null.String  `json:"scheduled_date" validate:"omitempty,date_str"`
	Duration      null.Float64 `json:"duration" validate:"omitempty,gte=0"`
	HoursSpent    null.Float64 `json:"hours_spent" validate:"omitempty,gte=0"`
	Notes         null.String  `json:"notes" validate:"omitempty,max=5000"`
}

type TransitionStageDTO struct {
	Stage       string  `json:"stage" validate:"required"`
	ScrapReason *string `json:"scrap_reason,omitempty" validate:"omitempty,max=1000"`
}

type RequestResponseDTO struct {
	ID                  string  `json:"id"`
	Subject             string  `json:"subject"`
	Description         string  `json:"description"`
	Type                string  `json:"type"`
	Priority            string  `json:"priority"`
	Stage               string  `json:"stage"`
	EquipmentID         string  `json:"equipment_id"`
	EquipmentName       string  `json:"equipment_name"`
	EquipmentCategory   string  `json:"equipment_category"`
	MaintenanceTeamID   *string `json:"maintenance_team_id"`
	MaintenanceTeamName *string `json:"maintenance_team_name"`
	TechnicianID        *string `json:"technician_id"`
	TechnicianName      *string `json:"technician_name"`
	ScheduledDate       *string `json:"scheduled_date"`
	Duration            float64 `json:"duration"`
	HoursSpent          float64 `json:"hours_spent"`
	Notes               *string `json:"notes"`
	ScrapReason         *string `json:"scrap_reason"`
	IsOverdue           bool    `json:"is_overdue"`
	IsScheduled         bool    `json:"is_scheduled"`
	Version             int     `json:"version"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
	CompletedAt         *string `json:"completed_at"`
}

// BoardColumnDTO - колонка канбан-доски.
type BoardColumnDTO struct {
	Stage    string               `json:"stage"`
	Count    int                  `json:"count"`
	Requests []RequestResponseDTO `json:"requests"`
}

// RequestListQuery - параметры календаря и просрочки поверх стандартного фильтра.
type RequestListQuery struct {
	OverdueOnly   bool
	ScheduledFrom *string
	ScheduledTo   *string
}
