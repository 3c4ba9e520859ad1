package entities

import (
	"time"

	"gearguard/pkg/utils"
)

type Stage string

const (
	StageNew        Stage = "new"
	StageInProgress Stage = "in_progress"
	StageRepaired   Stage = "repaired"
	StageScrap      Stage = "scrap"
)

// Stages перечисляет стадии в порядке колонок канбан-доски.
var Stages = []Stage{StageNew, StageInProgress, StageRepaired, StageScrap}

// stageTransitions - единственный источник правды о допустимых переходах.
var stageTransitions = map[Stage][]Stage{
	StageNew:        {StageInProgress},
	StageInProgress: {StageRepaired, StageScrap},
	StageRepaired:   {},
	StageScrap:      {},
}

func (s Stage) Valid() bool {
	_, ok := stageTransitions[s]
	return ok
}

func (s Stage) IsTerminal() bool {
	return s == StageRepaired || s == StageScrap
}

func (s Stage) IsOpen() bool {
	return s.Valid() && !s.IsTerminal()
}

// AllowedTransitions возвращает стадии, в которые можно перейти из s.
func AllowedTransitions(s Stage) []Stage {
	next := stageTransitions[s]
	out := make([]Stage, len(next))
	copy(out, next)
	return out
}

func CanTransition(from, to Stage) bool {
	for _, s := range stageTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type RequestType string

const (
	RequestTypeCorrective RequestType = "corrective"
	RequestTypePreventive RequestType = "preventive"
)

func (t RequestType) Valid() bool {
	return t == RequestTypeCorrective || t == RequestTypePreventive
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// MaintenanceRequest - заявка на обслуживание. Поля *Name и EquipmentCategory
// копируются в момент создания и позже не пересчитываются.
type MaintenanceRequest struct {
	ID          string      `json:"id" db:"id"`
	Subject     string      `json:"subject" db:"subject"`
	Description string      `json:"description" db:"description"`
	Type        RequestType `json:"type" db:"type"`
	Priority    Priority    `json:"priority" db:"priority"`
	Stage       Stage       `json:"stage" db:"stage"`

	EquipmentID       string `json:"equipment_id" db:"equipment_id"`
	EquipmentName     string `json:"equipment_name" db:"equipment_name"`
	EquipmentCategory string `json:"equipment_category" db:"equipment_category"`

	MaintenanceTeamID   *string `json:"maintenance_team_id" db:"maintenance_team_id"`
	MaintenanceTeamName *string `json:"maintenance_team_name" db:"maintenance_team_name"`

	TechnicianID   *string `json:"technician_id" db:"technician_id"`
	TechnicianName *string `json:"technician_name" db:"technician_name"`

	ScheduledDate *time.Time `json:"scheduled_date" db:"scheduled_date"`
	Duration      float64    `json:"duration" db:"duration"`
	HoursSpent    float64    `json:"hours_spent" db:"hours_spent"`
	Notes         *string    `json:"notes" db:"notes"`
	ScrapReason   *string    `json:"scrap_reason" db:"scrap_reason"`

	Version     int        `json:"version" db:"version"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`
}

// IsOverdue: дата проведения строго раньше сегодняшней, заявка не закрыта.
func (r *MaintenanceRequest) IsOverdue(today time.Time) bool {
	if r.ScheduledDate == nil || r.Stage.IsTerminal() {
		return false
	}
	return utils.DateBefore(*r.ScheduledDate, today)
}

// IsScheduled - новая заявка, назначенная на будущую дату.
func (r *MaintenanceRequest) IsScheduled(today time.Time) bool {
	return r.Stage == StageNew && r.ScheduledDate != nil && utils.DateBefore(today, *r.ScheduledDate)
}

func (r *MaintenanceRequest) HasRecordedTime() bool {
	return r.Duration > 0 || r.HoursSpent > 0
}

// EffectiveHours - длительность работ; если duration не задан, берётся hours_spent.
func (r *MaintenanceRequest) EffectiveHours() float64 {
	if r.Duration > 0 {
		return r.Duration
	}
	return r.HoursSpent
}
