package controllers

import (
	"context"
	"net/http"
	"time"

	"gearguard/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Pinger - всё, у чего можно проверить доступность.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc превращает функцию в Pinger (например, для redis.Client).
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthController struct {
	db     Pinger
	cache  Pinger
	logger *zap.Logger
}

// NewHealthController: cache может быть nil, если Redis не настроен.
func NewHealthController(db, cache Pinger, logger *zap.Logger) *HealthController {
	return &HealthController{db: db, cache: cache, logger: logger}
}

type healthStatus struct {
	Database string `json:"database"`
	Cache    string `json:"cache"`
	Time     string `json:"time"`
}

func (c *HealthController) Check(ctx echo.Context) error {
	reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
	defer cancel()

	status := healthStatus{Database: "ok", Cache: "disabled", Time: time.Now().UTC().Format(time.RFC3339)}
	code := http.StatusOK

	if err := c.db.Ping(reqCtx); err != nil {
		c.logger.Error("Health: база данных недоступна", zap.Error(err))
		status.Database = "unavailable"
		code = http.StatusServiceUnavailable
	}
	if c.cache != nil {
		status.Cache = "ok"
		if err := c.cache.Ping(reqCtx); err != nil {
			c.logger.Warn("Health: Redis недоступен", zap.Error(err))
			status.Cache = "unavailable"
		}
	}

	if code != http.StatusOK {
		return ctx.JSON(code, &utils.HTTPResponse{Status: false, Body: status, Message: "Сервис недоступен", Code: "UNAVAILABLE"})
	}
	return utils.SuccessResponse(ctx, status, "OK", code)
}
