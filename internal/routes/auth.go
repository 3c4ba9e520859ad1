package routes

import (
	"github.com/labstack/echo/v4"

	"gearguard/internal/controllers"
)

func runAuthRouter(api *echo.Group, secureGroup *echo.Group, ctrl *controllers.AuthController) {
	auth := api.Group("/auth")
	auth.POST("/register", ctrl.Register)
	auth.POST("/login", ctrl.Login)
	auth.POST("/refresh", ctrl.RefreshToken)

	secureGroup.GET("/auth/me", ctrl.Me)
}
