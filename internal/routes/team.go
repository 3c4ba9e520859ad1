package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/middleware"
)

func runTeamRouter(secureGroup *echo.Group, ctrl *controllers.TeamController, authMW *middleware.AuthMiddleware) {
	managers := authMW.RequireRoles(roleAdmin, roleManager)

	teams := secureGroup.Group("/teams")
	teams.GET("", ctrl.GetTeams)
	teams.POST("", ctrl.CreateTeam, managers)
	teams.GET("/:id", ctrl.FindTeam)
	teams.PATCH("/:id", ctrl.UpdateTeam, managers)
	teams.DELETE("/:id", ctrl.DeleteTeam, authMW.RequireRoles(roleAdmin))
	teams.GET("/:id/workload", ctrl.GetWorkload)
	teams.POST("/:id/members", ctrl.AddMember, managers)
	teams.DELETE("/:id/members/:userId", ctrl.RemoveMember, managers)
}
