package dto

import "github.com/aarondl/null/v8"

type CreateEquipmentDTO struct {
	Name              string  `json:"name" validate:"required,min=2,max=200"`
	SerialNumber      string  `json:"serial_number" validate:"required,max=100"`
	Category          string  `json:"category" validate:"required,max=100"`
	Department        string  `json:"department" validate:"max=100"`
	Employee          *string `json:"employee,omitempty" validate:"omitempty,max=200"`
	Location          string  `json:"location" validate:"max=200"`
	PurchaseDate      *string `json:"purchase_date,omitempty" validate:"omitempty,date_str"`
	WarrantyExpiry    *string `json:"warranty_expiry,omitempty" validate:"omitempty,date_str"`
	Status            string  `json:"status,omitempty" validate:"omitempty,equipment_status"`
	MaintenanceTeamID *string `json:"maintenance_team_id,omitempty" validate:"omitempty,uuid_str"`
}

type UpdateEquipmentDTO struct {
	Name              null.String `json:"name" validate:"omitempty,min=2,max=200"`
	SerialNumber      null.String `json:"serial_number" validate:"omitempty,max=100"`
	Category          null.String `json:"category" validate:"omitempty,max=100"`
	Department        null.String `json:"department" validate:"omitempty,max=100"`
	Employee          null.String `json:"employee" validate:"omitempty,max=200"`
	Location          null.String `json:"location" validate:"omitempty,max=200"`
	PurchaseDate      null.String `json:"purchase_date" validate:"omitempty,date_str"`
	WarrantyExpiry    null.String `json:"warranty_expiry" validate:"omitempty,date_str"`
	Status            null.String `json:"status" validate:"omitempty,equipment_status"`
	MaintenanceTeamID null.String `json:"maintenance_team_id" validate:"omitempty,uuid_str"`
}

type EquipmentResponseDTO struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	SerialNumber        string  `json:"serial_number"`
	Category            string  `json:"category"`
	Department          string  `json:"department"`
	Employee            *string `json:"employee"`
	Location            string  `json:"location"`
	PurchaseDate        *string `json:"purchase_date"`
	WarrantyExpiry      *string `json:"warranty_expiry"`
	Status              string  `json:"status"`
	MaintenanceTeamID   *string `json:"maintenance_team_id"`
	MaintenanceTeamName *string `json:"maintenance_team_name"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

// ImportResultDTO - итог импорта оборудования из xlsx.
type ImportResultDTO struct {
	Total   int              `json:"total"`
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Errors  []ImportRowError `json:"errors"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}
