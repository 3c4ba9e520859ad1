package services

import (
	"math"
	"time"

	"gearguard/internal/entities"
	"gearguard/pkg/utils"
)

// Функции ниже считают отчёты по уже загруженным данным и ничего не меняют.
// Все доли защищены от деления на ноль и в этом случае дают 0.

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return roundHalfUp(float64(part) / float64(total) * 100)
}

func BuildDashboard(equipment []entities.Equipment, requests []entities.MaintenanceRequest, today time.Time) entities.DashboardStats {
	stats := entities.DashboardStats{
		TotalEquipment: len(equipment),
		TotalRequests:  len(requests),
	}
	for _, e := range equipment {
		if e.Status == entities.EquipmentActive {
			stats.ActiveEquipment++
		}
	}
	for i := range requests {
		if requests[i].Stage.IsOpen() {
			stats.OpenRequests++
		}
		if requests[i].IsOverdue(today) {
			stats.OverdueRequests++
		}
	}
	return stats
}

// BuildUtilization - открытые заявки по каждой единице оборудования,
// в порядке списка equipment.
func BuildUtilization(equipment []entities.Equipment, requests []entities.MaintenanceRequest) []entities.EquipmentUtilization {
	open := make(map[string]int, len(equipment))
	for _, r := range requests {
		if r.Stage.IsOpen() {
			open[r.EquipmentID]++
		}
	}

	out := make([]entities.EquipmentUtilization, 0, len(equipment))
	for _, e := range equipment {
		out = append(out, entities.EquipmentUtilization{
			ID:           e.ID,
			Name:         e.Name,
			Status:       e.Status,
			OpenRequests: open[e.ID],
		})
	}
	return out
}

// BuildTeamPerformance считает завершённые (repaired) заявки команды
// и их среднюю длительность в часах.
func BuildTeamPerformance(teams []entities.MaintenanceTeam, requests []entities.MaintenanceRequest) []entities.TeamPerformance {
	type acc struct {
		count int
		hours float64
	}
	byTeam := make(map[string]*acc, len(teams))
	for _, r := range requests {
		if r.Stage != entities.StageRepaired || r.MaintenanceTeamID == nil {
			continue
		}
		a, ok := byTeam[*r.MaintenanceTeamID]
		if !ok {
			a = &acc{}
			byTeam[*r.MaintenanceTeamID] = a
		}
		a.count++
		a.hours += r.EffectiveHours()
	}

	out := make([]entities.TeamPerformance, 0, len(teams))
	for _, t := range teams {
		perf := entities.TeamPerformance{TeamID: t.ID, TeamName: t.Name}
		if a, ok := byTeam[t.ID]; ok && a.count > 0 {
			perf.CompletedRequests = a.count
			perf.AvgDuration = roundHalfUp(a.hours / float64(a.count))
		}
		out = append(out, perf)
	}
	return out
}

// BuildCompliance - выполнение профилактики. Просроченной считается
// профилактика с датой строго раньше сегодняшней и не в стадии repaired.
func BuildCompliance(requests []entities.MaintenanceRequest, today time.Time) entities.ComplianceReport {
	var report entities.ComplianceReport
	for i := range requests {
		r := &requests[i]
		if r.Type != entities.RequestTypePreventive {
			continue
		}
		report.Total++
		if r.Stage == entities.StageRepaired {
			report.Completed++
			continue
		}
		if r.ScheduledDate != nil && utils.DateBefore(*r.ScheduledDate, today) {
			report.Overdue++
		}
	}
	report.ComplianceRate = percent(report.Completed, report.Total)
	return report
}

// BuildWorkload раскладывает открытые заявки команды по стадиям и типам.
func BuildWorkload(team *entities.MaintenanceTeam, open []entities.MaintenanceRequest) entities.TeamWorkload {
	w := entities.TeamWorkload{
		TeamID:   team.ID,
		TeamName: team.Name,
		Requests: make([]entities.MaintenanceRequest, 0, len(open)),
	}
	for _, r := range open {
		if !r.Stage.IsOpen() {
			continue
		}
		w.TotalRequests++
		switch r.Stage {
		case entities.StageNew:
			w.ByStage.New++
		case entities.StageInProgress:
			w.ByStage.InProgress++
		}
		switch r.Type {
		case entities.RequestTypeCorrective:
			w.ByType.Corrective++
		case entities.RequestTypePreventive:
			w.ByType.Preventive++
		}
		w.Requests = append(w.Requests, r)
	}
	return w
}
