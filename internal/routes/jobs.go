package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/middleware"
)

func runJobsRouter(secureGroup *echo.Group, ctrl *controllers.JobsController, authMW *middleware.AuthMiddleware) {
	jobs := secureGroup.Group("/jobs", authMW.RequireRoles(roleAdmin))
	jobs.POST("/overdue-sweep", ctrl.RunOverdueSweep)
	jobs.POST("/preventive-generation", ctrl.RunPreventiveGeneration)
}
