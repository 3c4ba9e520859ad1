package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/middleware"
)

func runRequestRouter(secureGroup *echo.Group, ctrl *controllers.RequestController, authMW *middleware.AuthMiddleware) {
	requests := secureGroup.Group("/requests")
	requests.GET("", ctrl.GetRequests)
	requests.POST("", ctrl.CreateRequest)
	// статические пути регистрируются раньше /:id
	requests.GET("/board", ctrl.GetBoard)
	requests.GET("/overdue", ctrl.GetOverdue)
	requests.GET("/:id", ctrl.FindRequest)
	requests.PATCH("/:id", ctrl.UpdateRequest)
	requests.PATCH("/:id/stage", ctrl.TransitionStage)
	requests.DELETE("/:id", ctrl.DeleteRequest, authMW.RequireRoles(roleAdmin, roleManager))
}
