package seeders

import "gearguard/internal/entities"

// пароль всех демо-пользователей
const defaultPassword = "password123"

var usersData = []struct {
	Email    string
	FullName string
	Role     entities.UserRole
}{
	{Email: "admin@gearguard.com", FullName: "Admin User", Role: entities.RoleAdmin},
	{Email: "sarah.chen@gearguard.com", FullName: "Sarah Chen", Role: entities.RoleManager},
	{Email: "john.martinez@gearguard.com", FullName: "John Martinez", Role: entities.RoleTechnician},
	{Email: "mike.wilson@gearguard.com", FullName: "Mike Wilson", Role: entities.RoleTechnician},
	{Email: "lisa.chen@gearguard.com", FullName: "Lisa Chen", Role: entities.RoleTechnician},
}

var teamsData = []struct {
	Name           string
	Specialization string
	Description    string
	Color          string
	Members        map[string]entities.MemberRole // email -> роль в команде
}{
	{
		Name:           "Mechanical Team",
		Specialization: "Heavy Machinery",
		Description:    "Specializes in CNC machines, forklifts, and mechanical equipment",
		Color:          "#714B67",
		Members: map[string]entities.MemberRole{
			"john.martinez@gearguard.com": entities.MemberRoleLead,
			"mike.wilson@gearguard.com":   entities.MemberRoleMember,
			"lisa.chen@gearguard.com":     entities.MemberRoleMember,
		},
	},
	{
		Name:           "Electrical Team",
		Specialization: "Electrical Systems",
		Description:    "Handles electrical equipment and power systems",
		Color:          "#3B82F6",
		Members: map[string]entities.MemberRole{
			"mike.wilson@gearguard.com": entities.MemberRoleLead,
		},
	},
	{
		Name:           "HVAC Team",
		Specialization: "Climate Control",
		Description:    "Maintains heating, ventilation, and air conditioning systems",
		Color:          "#22C55E",
		Members: map[string]entities.MemberRole{
			"lisa.chen@gearguard.com": entities.MemberRoleLead,
		},
	},
}

var equipmentData = []struct {
	Name           string
	SerialNumber   string
	Category       string
	Department     string
	Employee       string
	Location       string
	PurchaseDate   string
	WarrantyExpiry string
	TeamName       string
}{
	{"CNC-001", "CNC-ML-2023-001", "CNC Machine", "Production", "Michael Johnson", "Workshop A, Station 1", "2023-01-15", "2025-01-15", "Mechanical Team"},
	{"CNC-002", "CNC-ML-2023-002", "CNC Machine", "Production", "Robert Davis", "Workshop A, Station 2", "2023-03-20", "2025-03-20", "Mechanical Team"},
	{"Forklift-A01", "FRK-2020-A01", "Material Handling", "Warehouse", "James Wilson", "Warehouse Zone A", "2020-06-10", "2023-06-10", "Mechanical Team"},
	{"Generator-01", "GEN-2021-001", "Power Generation", "Facilities", "", "Power Room", "2021-09-01", "2026-09-01", "Electrical Team"},
	{"HVAC-Roof-01", "HVAC-2022-R01", "Air Conditioning", "Facilities", "", "Roof, Building 1", "2022-04-12", "2027-04-12", "HVAC Team"},
}
