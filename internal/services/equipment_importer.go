package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"gearguard/internal/dto"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// importColumns - допустимые заголовки колонок (в нижнем регистре) для каждого поля.
var importColumns = map[string][]string{
	"name":            {"name", "название", "наименование"},
	"serial_number":   {"serial_number", "serial", "серийный номер", "серийный №"},
	"category":        {"category", "категория"},
	"department":      {"department", "отдел"},
	"employee":        {"employee", "сотрудник"},
	"location":        {"location", "местоположение", "адрес"},
	"purchase_date":   {"purchase_date", "дата покупки"},
	"warranty_expiry": {"warranty_expiry", "гарантия до"},
	"team":            {"team", "команда"},
}

type EquipmentImporterInterface interface {
	Import(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error)
}

// EquipmentImporter загружает оборудование из xlsx. Каждая строка создаётся
// через EquipmentService, строки с уже известным серийным номером пропускаются.
type EquipmentImporter struct {
	equipment     *EquipmentService
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	logger        *zap.Logger
}

func NewEquipmentImporter(
	equipment *EquipmentService,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	logger *zap.Logger,
) *EquipmentImporter {
	return &EquipmentImporter{
		equipment:     equipment,
		equipmentRepo: equipmentRepo,
		teamRepo:      teamRepo,
		logger:        logger,
	}
}

// findHeader ищет первую строку, в которой есть колонки name и serial_number.
func findHeader(rows [][]string) (int, map[string]int) {
	for rIdx, row := range rows {
		index := make(map[string]int)
		for cIdx, cell := range row {
			title := strings.ToLower(strings.TrimSpace(cell))
			for field, aliases := range importColumns {
				for _, alias := range aliases {
					if title == alias {
						index[field] = cIdx
					}
				}
			}
		}
		_, hasName := index["name"]
		_, hasSerial := index["serial_number"]
		if hasName && hasSerial {
			return rIdx, index
		}
	}
	return -1, nil
}

func cellValue(row []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func (s *EquipmentImporter) Import(ctx context.Context, r io.Reader) (*dto.ImportResultDTO, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	var (
		rows      [][]string
		headerRow = -1
		index     map[string]int
	)
	for _, sheet := range f.GetSheetList() {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if h, idx := findHeader(sheetRows); h != -1 {
			rows, headerRow, index = sheetRows, h, idx
			break
		}
	}
	if headerRow == -1 {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Не найдена шапка таблицы: нужны колонки name и serial_number", nil, nil)
	}

	teams, err := s.teamRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	teamIDs := make(map[string]string, len(teams))
	for _, t := range teams {
		teamIDs[strings.ToLower(t.Name)] = t.ID
	}

	result := &dto.ImportResultDTO{Errors: []dto.ImportRowError{}}
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		name := cellValue(row, index, "name")
		serial := cellValue(row, index, "serial_number")
		if name == "" && serial == "" {
			continue
		}
		result.Total++
		rowNumber := i + 1

		if _, err := s.equipmentRepo.FindBySerialNumber(ctx, serial); err == nil {
			result.Skipped++
			continue
		} else if !errors.Is(err, apperrors.ErrEquipmentNotFound) {
			return nil, err
		}

		payload := dto.CreateEquipmentDTO{
			Name:           name,
			SerialNumber:   serial,
			Category:       cellValue(row, index, "category"),
			Department:     cellValue(row, index, "department"),
			Employee:       optional(cellValue(row, index, "employee")),
			Location:       cellValue(row, index, "location"),
			PurchaseDate:   optional(cellValue(row, index, "purchase_date")),
			WarrantyExpiry: optional(cellValue(row, index, "warranty_expiry")),
		}
		if teamName := cellValue(row, index, "team"); teamName != "" {
			id, ok := teamIDs[strings.ToLower(teamName)]
			if !ok {
				result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNumber, Message: fmt.Sprintf("команда %q не найдена", teamName)})
				continue
			}
			payload.MaintenanceTeamID = &id
		}
		if payload.Name == "" || payload.SerialNumber == "" || payload.Category == "" {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNumber, Message: "обязательны name, serial_number и category"})
			continue
		}

		if _, err := s.equipment.Create(ctx, payload); err != nil {
			result.Errors = append(result.Errors, dto.ImportRowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		result.Created++
	}

	s.logger.Info("Импорт оборудования завершён",
		zap.Int("total", result.Total),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}
