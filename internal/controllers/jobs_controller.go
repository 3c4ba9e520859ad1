package controllers

import (
	"net/http"
	"strconv"

	"gearguard/internal/services"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// jobRequestTimeout в секундах; ручной запуск обходит всё оборудование.
const jobRequestTimeout = 120

// JobsController - ручной запуск периодических задач.
type JobsController struct {
	scheduleService services.ScheduleServiceInterface
	horizonDays     int
	leadDays        int
	logger          *zap.Logger
}

func NewJobsController(scheduleService services.ScheduleServiceInterface, horizonDays, leadDays int, logger *zap.Logger) *JobsController {
	return &JobsController{
		scheduleService: scheduleService,
		horizonDays:     horizonDays,
		leadDays:        leadDays,
		logger:          logger,
	}
}

func (c *JobsController) RunOverdueSweep(ctx echo.Context) error {
	reqCtx, cancel := utils.ContextWithTimeout(ctx, jobRequestTimeout)
	defer cancel()

	res, err := c.scheduleService.RunOverdueSweep(reqCtx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Проверка просрочки выполнена", http.StatusOK)
}

// RunPreventiveGeneration принимает необязательные horizon и lead в query.
func (c *JobsController) RunPreventiveGeneration(ctx echo.Context) error {
	horizon, err := intQueryParam(ctx, "horizon", c.horizonDays)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	lead, err := intQueryParam(ctx, "lead", c.leadDays)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	reqCtx, cancel := utils.ContextWithTimeout(ctx, jobRequestTimeout)
	defer cancel()

	res, err := c.scheduleService.GeneratePreventiveMaintenance(reqCtx, horizon, lead)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Генерация профилактики выполнена", http.StatusOK)
}

func intQueryParam(ctx echo.Context, name string, fallback int) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Параметр "+name+" должен быть целым числом", nil,
			map[string]interface{}{"value": raw})
	}
	return v, nil
}
