package controllers

import (
	"net/http"
	"strconv"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	"gearguard/pkg/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type RequestController struct {
	requestService  services.RequestServiceInterface
	scheduleService services.ScheduleServiceInterface
	logger          *zap.Logger
}

func NewRequestController(
	requestService services.RequestServiceInterface,
	scheduleService services.ScheduleServiceInterface,
	logger *zap.Logger,
) *RequestController {
	return &RequestController{
		requestService:  requestService,
		scheduleService: scheduleService,
		logger:          logger,
	}
}

// GetRequests поддерживает стандартный фильтр (filter[stage], filter[type],
// filter[equipment_id], search, sort, page/limit), а также overdue=true и
// диапазон scheduled_from/scheduled_to для календаря.
func (c *RequestController) GetRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	query := dto.RequestListQuery{
		ScheduledFrom: utils.NilIfEmpty(ctx.QueryParam("scheduled_from")),
		ScheduledTo:   utils.NilIfEmpty(ctx.QueryParam("scheduled_to")),
	}
	query.OverdueOnly, _ = strconv.ParseBool(ctx.QueryParam("overdue"))

	res, total, err := c.requestService.ListRequests(ctx.Request().Context(), filter, query)
	if err != nil {
		c.logger.Error("GetRequests: ошибка при получении списка заявок", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список заявок получен", http.StatusOK, total)
}

func (c *RequestController) GetBoard(ctx echo.Context) error {
	res, err := c.requestService.GetBoard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Доска заявок получена", http.StatusOK)
}

func (c *RequestController) GetOverdue(ctx echo.Context) error {
	res, err := c.scheduleService.ListOverdue(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Просроченные заявки получены", http.StatusOK)
}

func (c *RequestController) FindRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.GetRequest(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка найдена", http.StatusOK)
}

func (c *RequestController) CreateRequest(ctx echo.Context) error {
	var d dto.CreateRequestDTO
	if err := ctx.Bind(&d); err != nil {
		c.logger.Error("CreateRequest: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.CreateRequest(ctx.Request().Context(), d)
	if err != nil {
		c.logger.Warn("CreateRequest: заявка не создана", zap.Any("payload", d), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка создана", http.StatusCreated)
}

func (c *RequestController) UpdateRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rawBody, err := readRawBody(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.UpdateRequestDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.UpdateRequest(ctx.Request().Context(), id, d, rawBody)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Заявка обновлена", http.StatusOK)
}

func (c *RequestController) TransitionStage(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.TransitionStageDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.requestService.TransitionStage(ctx.Request().Context(), id, d)
	if err != nil {
		c.logger.Warn("TransitionStage: переход отклонён",
			zap.String("id", id), zap.String("stage", d.Stage), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Стадия заявки изменена", http.StatusOK)
}

func (c *RequestController) DeleteRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.requestService.DeleteRequest(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}
