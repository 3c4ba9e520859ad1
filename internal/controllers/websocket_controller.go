package controllers

import (
	"net/http"

	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/service"
	"gearguard/pkg/utils"
	appwebsocket "gearguard/pkg/websocket"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin проверяет CORS-мидлварь, токен проверяется ниже
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketController struct {
	hub        *appwebsocket.Hub
	jwtService service.JWTService
	logger     *zap.Logger
}

func NewWebSocketController(hub *appwebsocket.Hub, jwtService service.JWTService, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		hub:        hub,
		jwtService: jwtService,
		logger:     logger,
	}
}

// ServeWs подключает клиента канбан-доски. Браузер не умеет передавать
// заголовок Authorization при открытии сокета, поэтому токен приходит в query.
func (c *WebSocketController) ServeWs(ctx echo.Context) error {
	tokenString := ctx.QueryParam("token")
	if tokenString == "" {
		return utils.ErrorResponse(ctx, apperrors.ErrUnauthorized, c.logger)
	}

	claims, err := c.jwtService.ValidateToken(tokenString)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if claims.IsRefreshToken {
		return utils.ErrorResponse(ctx, apperrors.ErrTokenIsNotAccess, c.logger)
	}

	conn, err := upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		c.logger.Error("WebSocket: не удалось улучшить соединение", zap.Error(err))
		return err
	}

	appwebsocket.NewClient(c.hub, conn, claims.UserID).Serve()

	c.logger.Info("WebSocket: клиент подключен", zap.String("userID", claims.UserID))
	return nil
}
