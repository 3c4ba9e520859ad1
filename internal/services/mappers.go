package services

import (
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/pkg/utils"
)

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func toRequestResponse(r *entities.MaintenanceRequest, today time.Time) dto.RequestResponseDTO {
	return dto.RequestResponseDTO{
		ID:                  r.ID,
		Subject:             r.Subject,
		Description:         r.Description,
		Type:                string(r.Type),
		Priority:            string(r.Priority),
		Stage:               string(r.Stage),
		EquipmentID:         r.EquipmentID,
		EquipmentName:       r.EquipmentName,
		EquipmentCategory:   r.EquipmentCategory,
		MaintenanceTeamID:   r.MaintenanceTeamID,
		MaintenanceTeamName: r.MaintenanceTeamName,
		TechnicianID:        r.TechnicianID,
		TechnicianName:      r.TechnicianName,
		ScheduledDate:       utils.FormatDatePtr(r.ScheduledDate),
		Duration:            r.Duration,
		HoursSpent:          r.HoursSpent,
		Notes:               r.Notes,
		ScrapReason:         r.ScrapReason,
		IsOverdue:           r.IsOverdue(today),
		IsScheduled:         r.IsScheduled(today),
		Version:             r.Version,
		CreatedAt:           r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           r.UpdatedAt.Format(time.RFC3339),
		CompletedAt:         formatTimePtr(r.CompletedAt),
	}
}

func toRequestResponses(list []entities.MaintenanceRequest, today time.Time) []dto.RequestResponseDTO {
	out := make([]dto.RequestResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, toRequestResponse(&list[i], today))
	}
	return out
}

func toEquipmentResponse(e *entities.Equipment) dto.EquipmentResponseDTO {
	return dto.EquipmentResponseDTO{
		ID:                  e.ID,
		Name:                e.Name,
		SerialNumber:        e.SerialNumber,
		Category:            e.Category,
		Department:          e.Department,
		Employee:            e.Employee,
		Location:            e.Location,
		PurchaseDate:        utils.FormatDatePtr(e.PurchaseDate),
		WarrantyExpiry:      utils.FormatDatePtr(e.WarrantyExpiry),
		Status:              string(e.Status),
		MaintenanceTeamID:   e.MaintenanceTeamID,
		MaintenanceTeamName: e.MaintenanceTeamName,
		CreatedAt:           e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           e.UpdatedAt.Format(time.RFC3339),
	}
}

func toTeamResponse(t *entities.MaintenanceTeam) dto.TeamResponseDTO {
	members := make([]dto.TeamMemberDTO, 0, len(t.Members))
	for _, m := range t.Members {
		members = append(members, dto.TeamMemberDTO{
			UserID:   m.UserID,
			FullName: m.FullName,
			Email:    m.Email,
			Role:     string(m.Role),
			JoinedAt: m.JoinedAt.Format(time.RFC3339),
		})
	}
	return dto.TeamResponseDTO{
		ID:             t.ID,
		Name:           t.Name,
		Description:    t.Description,
		Specialization: t.Specialization,
		Color:          t.Color,
		IsActive:       t.IsActive,
		Members:        members,
		CreatedAt:      t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      t.UpdatedAt.Format(time.RFC3339),
	}
}

func toUserResponse(u *entities.User) dto.UserResponseDTO {
	return dto.UserResponseDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// ToRequestResponse нужен слушателям событий, которые живут вне пакета.
func ToRequestResponse(r *entities.MaintenanceRequest, today time.Time) dto.RequestResponseDTO {
	return toRequestResponse(r, today)
}
