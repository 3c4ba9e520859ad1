package controllers

import (
	"net/http"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"
	"gearguard/pkg/validation"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const equipmentImportContext = "equipment_import"

type EquipmentController struct {
	equipmentService services.EquipmentServiceInterface
	importer         services.EquipmentImporterInterface
	logger           *zap.Logger
}

func NewEquipmentController(
	service services.EquipmentServiceInterface,
	importer services.EquipmentImporterInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		equipmentService: service,
		importer:         importer,
		logger:           logger,
	}
}

func (c *EquipmentController) GetEquipments(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	res, total, err := c.equipmentService.List(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("GetEquipments: ошибка при получении списка оборудования", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Список оборудования успешно получен", http.StatusOK, total)
}

func (c *EquipmentController) FindEquipment(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Get(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно найдено", http.StatusOK)
}

func (c *EquipmentController) GetEquipmentRequests(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.ListOpenRequests(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Открытые заявки оборудования получены", http.StatusOK)
}

func (c *EquipmentController) CreateEquipment(ctx echo.Context) error {
	var d dto.CreateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		c.logger.Error("CreateEquipment: ошибка привязки данных", zap.Error(err))
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		c.logger.Error("CreateEquipment: ошибка валидации данных", zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Create(ctx.Request().Context(), d)
	if err != nil {
		c.logger.Error("CreateEquipment: ошибка при создании оборудования", zap.Any("payload", d), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно создано", http.StatusCreated)
}

func (c *EquipmentController) UpdateEquipment(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	rawBody, err := readRawBody(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	var d dto.UpdateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, bindError(err), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	res, err := c.equipmentService.Update(ctx.Request().Context(), id, d, rawBody)
	if err != nil {
		c.logger.Error("UpdateEquipment: ошибка при обновлении оборудования", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Оборудование успешно обновлено", http.StatusOK)
}

func (c *EquipmentController) DeleteEquipment(ctx echo.Context) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.equipmentService.Delete(ctx.Request().Context(), id); err != nil {
		c.logger.Error("DeleteEquipment: ошибка при удалении оборудования", zap.String("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ImportEquipment принимает xlsx-файл в поле "file". Строки с ошибками
// пропускаются и перечисляются в ответе.
func (c *EquipmentController) ImportEquipment(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, "Файл не был передан", nil, nil), c.logger)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusInternalServerError, "Ошибка обработки файла", err, nil), c.logger)
	}
	defer src.Close()

	if err := validation.ValidateFile(fileHeader, src, equipmentImportContext); err != nil {
		return utils.ErrorResponse(ctx,
			apperrors.NewHttpError(http.StatusBadRequest, err.Error(), nil, nil), c.logger)
	}

	res, err := c.importer.Import(ctx.Request().Context(), src)
	if err != nil {
		c.logger.Error("ImportEquipment: импорт не выполнен", zap.String("file", fileHeader.Filename), zap.Error(err))
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	c.logger.Info("ImportEquipment: импорт завершён",
		zap.String("file", fileHeader.Filename),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
		zap.Int("errors", len(res.Errors)))
	return utils.SuccessResponse(ctx, res, "Импорт оборудования завершён", http.StatusOK)
}
