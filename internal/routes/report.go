package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController) {
	reports := secureGroup.Group("/reports")
	reports.GET("/dashboard", ctrl.GetDashboard)
	reports.GET("/utilization", ctrl.GetUtilization)
	reports.GET("/performance", ctrl.GetTeamPerformance)
	reports.GET("/compliance", ctrl.GetCompliance)
	reports.GET("/requests.xlsx", ctrl.ExportRequests)
}
