package controllers

import (
	"fmt"
	"net/http"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/services"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) GetDashboard(ctx echo.Context) error {
	res, err := c.reportService.Dashboard(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Сводка получена", http.StatusOK)
}

func (c *ReportController) GetUtilization(ctx echo.Context) error {
	res, err := c.reportService.Utilization(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отчёт по загрузке оборудования получен", http.StatusOK)
}

func (c *ReportController) GetTeamPerformance(ctx echo.Context) error {
	res, err := c.reportService.TeamPerformance(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отчёт по командам получен", http.StatusOK)
}

func (c *ReportController) GetCompliance(ctx echo.Context) error {
	res, err := c.reportService.Compliance(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Отчёт по профилактике получен", http.StatusOK)
}

func (c *ReportController) ExportRequests(ctx echo.Context) error {
	data, err := c.reportService.ExportRequests(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return c.respondWithXLSX(ctx, data)
}

var reportHeaders = []interface{}{
	"ID", "Тема", "Тип", "Приоритет", "Стадия", "Оборудование", "Категория", "Команда",
	"Техник", "Плановая дата", "Длительность, ч", "Затрачено, ч", "Просрочена", "Создана", "Завершена", "Причина списания",
}

func rowToSlice(item dto.RequestResponseDTO) []interface{} {
	overdue := "нет"
	if item.IsOverdue {
		overdue = "да"
	}
	return []interface{}{
		item.ID,
		item.Subject,
		item.Type,
		item.Priority,
		item.Stage,
		item.EquipmentName,
		item.EquipmentCategory,
		utils.SafeDeref(item.MaintenanceTeamName),
		utils.SafeDeref(item.TechnicianName),
		utils.SafeDeref(item.ScheduledDate),
		item.Duration,
		item.HoursSpent,
		overdue,
		item.CreatedAt,
		utils.SafeDeref(item.CompletedAt),
		utils.SafeDeref(item.ScrapReason),
	}
}

func (c *ReportController) respondWithXLSX(ctx echo.Context, data []dto.RequestResponseDTO) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Заявки"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusInternalServerError, "Не удалось сформировать файл", err, nil), c.logger)
	}
	f.SetSheetRow(sheet, "A1", &reportHeaders)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, "A1", "P1", style)

	for i, item := range data {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := rowToSlice(item)
		f.SetSheetRow(sheet, cell, &row)
	}
	f.SetColWidth(sheet, "A", "A", 38)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "F", "I", 25)
	f.SetColWidth(sheet, "P", "P", 40)

	fileName := fmt.Sprintf("requests_%s.xlsx", time.Now().Format(utils.DateLayout))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	if err := f.Write(ctx.Response()); err != nil {
		c.logger.Error("respondWithXLSX: ошибка записи файла", zap.Error(err))
		return err
	}
	return nil
}
