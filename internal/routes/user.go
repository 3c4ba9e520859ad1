package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
	"gearguard/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, ctrl *controllers.UserController, authMW *middleware.AuthMiddleware) {
	users := secureGroup.Group("/users")
	users.GET("", ctrl.GetUsers, authMW.RequireRoles(roleAdmin, roleManager))
	users.POST("", ctrl.CreateUser, authMW.RequireRoles(roleAdmin))
	users.GET("/:id", ctrl.FindUser)
	users.PATCH("/:id", ctrl.UpdateUser, authMW.RequireRoles(roleAdmin, roleManager))
	users.DELETE("/:id", ctrl.DeleteUser, authMW.RequireRoles(roleAdmin))
}
