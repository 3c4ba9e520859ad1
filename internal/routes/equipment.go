package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/middleware"
)

func runEquipmentRouter(secureGroup *echo.Group, ctrl *controllers.EquipmentController, authMW *middleware.AuthMiddleware) {
	managers := authMW.RequireRoles(roleAdmin, roleManager)

	equipment := secureGroup.Group("/equipment")
	equipment.GET("", ctrl.GetEquipments)
	equipment.POST("", ctrl.CreateEquipment, managers)
	equipment.POST("/import", ctrl.ImportEquipment, managers)
	equipment.GET("/:id", ctrl.FindEquipment)
	equipment.PATCH("/:id", ctrl.UpdateEquipment, managers)
	equipment.DELETE("/:id", ctrl.DeleteEquipment, authMW.RequireRoles(roleAdmin))
	equipment.GET("/:id/requests", ctrl.GetEquipmentRequests)
}
