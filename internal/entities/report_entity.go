package entities

type DashboardStats struct {
	TotalEquipment  int `json:"total_equipment"`
	ActiveEquipment int `json:"active_equipment"`
	TotalRequests   int `json:"total_requests"`
	OpenRequests    int `json:"open_requests"`
	OverdueRequests int `json:"overdue_requests"`
}

type EquipmentUtilization struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Status       EquipmentStatus `json:"status"`
	OpenRequests int             `json:"open_requests"`
}

type TeamPerformance struct {
	TeamID            string `json:"team_id"`
	TeamName          string `json:"team_name"`
	CompletedRequests int    `json:"completed_requests"`
	AvgDuration       int    `json:"avg_duration"`
}

type ComplianceReport struct {
	Total          int `json:"total"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
	ComplianceRate int `json:"compliance_rate"`
}

type WorkloadByStage struct {
	New        int `json:"new"`
	InProgress int `json:"in_progress"`
}

type WorkloadByType struct {
	Corrective int `json:"corrective"`
	Preventive int `json:"preventive"`
}

type TeamWorkload struct {
	TeamID        string               `json:"team_id"`
	TeamName      string               `json:"team_name"`
	TotalRequests int                  `json:"total_requests"`
	ByStage       WorkloadByStage      `json:"by_stage"`
	ByType        WorkloadByType       `json:"by_type"`
	Requests      []MaintenanceRequest `json:"requests"`
}
