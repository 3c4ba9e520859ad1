package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/pkg/utils"
)

type stubReportService struct {
	export []dto.RequestResponseDTO
	err    error
}

func (s *stubReportService) Dashboard(context.Context) (*entities.DashboardStats, error) {
	return &entities.DashboardStats{}, s.err
}

func (s *stubReportService) Utilization(context.Context) ([]entities.EquipmentUtilization, error) {
	return nil, s.err
}

func (s *stubReportService) TeamPerformance(context.Context) ([]entities.TeamPerformance, error) {
	return nil, s.err
}

func (s *stubReportService) Compliance(context.Context) (*entities.ComplianceReport, error) {
	return &entities.ComplianceReport{}, s.err
}

func (s *stubReportService) ExportRequests(context.Context) ([]dto.RequestResponseDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.export, nil
}

func (s *stubReportService) InvalidateCache(context.Context) error {
	return nil
}

func serveExport(t *testing.T, svc *stubReportService) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/reports/requests.xlsx", nil), rec)
	require.NoError(t, NewReportController(svc, zap.NewNop()).ExportRequests(ctx))
	return rec
}

func TestReportController_ExportRequestsXLSX(t *testing.T) {
	svc := &stubReportService{export: []dto.RequestResponseDTO{{
		ID:                  testRequestID,
		Subject:             "Замена ремня",
		Type:                "preventive",
		Priority:            "high",
		Stage:               "repaired",
		EquipmentName:       "Конвейер",
		EquipmentCategory:   "Machinery",
		MaintenanceTeamName: utils.ToPtr("Механики"),
		ScheduledDate:       utils.ToPtr("2026-03-01"),
		Duration:            1.5,
		HoursSpent:          2,
		IsOverdue:           false,
		CreatedAt:           "2026-02-20 08:00:00",
		CompletedAt:         utils.ToPtr("2026-03-02 17:45:00"),
	}}}

	rec := serveExport(t, svc)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, strings.HasPrefix(rec.Header().Get(echo.HeaderContentDisposition), "attachment; filename=requests_"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Заявки")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"ID", "Тема", "Тип", "Приоритет", "Стадия", "Оборудование", "Категория", "Команда",
		"Техник", "Плановая дата", "Длительность, ч", "Затрачено, ч", "Просрочена", "Создана", "Завершена", "Причина списания",
	}, rows[0])

	// пустые хвостовые ячейки GetRows не возвращает
	assert.Equal(t, []string{
		testRequestID, "Замена ремня", "preventive", "high", "repaired", "Конвейер", "Machinery", "Механики",
		"", "2026-03-01", "1.5", "2", "нет", "2026-02-20 08:00:00", "2026-03-02 17:45:00",
	}, rows[1])
}

func TestReportController_ExportRequestsError(t *testing.T) {
	rec := serveExport(t, &stubReportService{err: errors.New("db down")})
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body utils.HTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Code)
}
