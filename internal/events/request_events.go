package events

import "gearguard/internal/entities"

const (
	RequestCreated      = "request.created"
	RequestUpdated      = "request.updated"
	RequestStageChanged = "request.stage_changed"
	RequestDeleted      = "request.deleted"
	EquipmentChanged    = "equipment.changed"
	TeamChanged         = "team.changed"
)

// RequestEvents - все события жизненного цикла заявки.
var RequestEvents = []string{RequestCreated, RequestUpdated, RequestStageChanged, RequestDeleted}

// RequestEvent публикуется после коммита изменения заявки.
type RequestEvent struct {
	Type      string                       `json:"type"`
	Request   *entities.MaintenanceRequest `json:"request,omitempty"`
	RequestID string                       `json:"request_id"`
	FromStage entities.Stage               `json:"from_stage,omitempty"`
	ActorID   string                       `json:"actor_id,omitempty"`
	// EquipmentScrapped - смена стадии списала оборудование.
	EquipmentScrapped bool `json:"equipment_scrapped,omitempty"`
}

func (e RequestEvent) Name() string {
	return e.Type
}

// EquipmentChangedEvent - оборудование создано, изменено или удалено.
type EquipmentChangedEvent struct {
	EquipmentID string `json:"equipment_id"`
	Action      string `json:"action"`
}

func (e EquipmentChangedEvent) Name() string {
	return EquipmentChanged
}

// TeamChangedEvent - команда или её состав изменились.
type TeamChangedEvent struct {
	TeamID string `json:"team_id"`
	Action string `json:"action"`
}

func (e TeamChangedEvent) Name() string {
	return TeamChanged
}
