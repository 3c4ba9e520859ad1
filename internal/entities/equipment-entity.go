package entities

import "time"

type EquipmentStatus string

const (
	EquipmentActive      EquipmentStatus = "active"
	EquipmentUnderRepair EquipmentStatus = "under_repair"
	EquipmentScrapped    EquipmentStatus = "scrapped"
)

func (s EquipmentStatus) Valid() bool {
	switch s {
	case EquipmentActive, EquipmentUnderRepair, EquipmentScrapped:
		return true
	}
	return false
}

type Equipment struct {
	ID                  string          `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	SerialNumber        string          `json:"serial_number" db:"serial_number"`
	Category            string          `json:"category" db:"category"`
	Department          string          `json:"department" db:"department"`
	Employee            *string         `json:"employee" db:"employee"`
	Location            string          `json:"location" db:"location"`
	PurchaseDate        *time.Time      `json:"purchase_date" db:"purchase_date"`
	WarrantyExpiry      *time.Time      `json:"warranty_expiry" db:"warranty_expiry"`
	Status              EquipmentStatus `json:"status" db:"status"`
	MaintenanceTeamID   *string         `json:"maintenance_team_id" db:"maintenance_team_id"`
	MaintenanceTeamName *string         `json:"maintenance_team_name" db:"-"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}
