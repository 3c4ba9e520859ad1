package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EquipmentServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]dto.EquipmentResponseDTO, uint64, error)
	Get(ctx context.Context, id string) (*dto.EquipmentResponseDTO, error)
	Create(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentResponseDTO, error)
	Update(ctx context.Context, id string, patch dto.UpdateEquipmentDTO, rawBody []byte) (*dto.EquipmentResponseDTO, error)
	Delete(ctx context.Context, id string) error
	ListOpenRequests(ctx context.Context, id string) ([]dto.RequestResponseDTO, error)
}

type EquipmentService struct {
	equipmentRepo repositories.EquipmentRepositoryInterface
	requestRepo   repositories.RequestRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	txManager     repositories.TxManagerInterface
	publisher     EventPublisher
	clock         utils.Clock
	logger        *zap.Logger
}

func NewEquipmentService(
	equipmentRepo repositories.EquipmentRepositoryInterface,
	requestRepo repositories.RequestRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	txManager repositories.TxManagerInterface,
	publisher EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *EquipmentService {
	return &EquipmentService{
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		teamRepo:      teamRepo,
		txManager:     txManager,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
	}
}

func (s *EquipmentService) changed(ctx context.Context, id, action string) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.EquipmentChangedEvent{EquipmentID: id, Action: action})
	}
}

func (s *EquipmentService) List(ctx context.Context, filter types.Filter) ([]dto.EquipmentResponseDTO, uint64, error) {
	list, total, err := s.equipmentRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]dto.EquipmentResponseDTO, 0, len(list))
	for i := range list {
		out = append(out, toEquipmentResponse(&list[i]))
	}
	return out, total, nil
}

func (s *EquipmentService) Get(ctx context.Context, id string) (*dto.EquipmentResponseDTO, error) {
	e, err := s.equipmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toEquipmentResponse(e)
	return &resp, nil
}

func parseOptionalDate(value *string, field string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(*value)
	if err != nil {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат даты в поле "+field, err, nil)
	}
	return &t, nil
}

func (s *EquipmentService) ensureTeam(ctx context.Context, teamID *string) error {
	if teamID == nil {
		return nil
	}
	if _, err := s.teamRepo.FindByID(ctx, *teamID); err != nil {
		if errors.Is(err, apperrors.ErrTeamNotFound) {
			return apperrors.ErrTeamNotFound.WithStatus(http.StatusBadRequest)
		}
		return err
	}
	return nil
}

func (s *EquipmentService) Create(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentResponseDTO, error) {
	purchase, err := parseOptionalDate(payload.PurchaseDate, "purchase_date")
	if err != nil {
		return nil, err
	}
	warranty, err := parseOptionalDate(payload.WarrantyExpiry, "warranty_expiry")
	if err != nil {
		return nil, err
	}
	if err := s.ensureTeam(ctx, payload.MaintenanceTeamID); err != nil {
		return nil, err
	}

	status := entities.EquipmentStatus(payload.Status)
	if status == "" {
		status = entities.EquipmentActive
	}

	e := &entities.Equipment{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(payload.Name),
		SerialNumber:      strings.TrimSpace(payload.SerialNumber),
		Category:          payload.Category,
		Department:        payload.Department,
		Employee:          payload.Employee,
		Location:          payload.Location,
		PurchaseDate:      purchase,
		WarrantyExpiry:    warranty,
		Status:            status,
		MaintenanceTeamID: payload.MaintenanceTeamID,
	}
	if err := s.equipmentRepo.Create(ctx, nil, e); err != nil {
		return nil, err
	}

	s.logger.Info("Оборудование создано", zap.String("equipmentID", e.ID), zap.String("serial", e.SerialNumber))
	s.changed(ctx, e.ID, "created")
	return s.Get(ctx, e.ID)
}

// Update применяет частичное обновление. Списанное оборудование нельзя
// вернуть в другой статус.
func (s *EquipmentService) Update(ctx context.Context, id string, patch dto.UpdateEquipmentDTO, rawBody []byte) (*dto.EquipmentResponseDTO, error) {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		e, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		previousStatus := e.Status
		previousTeam := e.MaintenanceTeamID

		if err := utils.ApplyPatchFinal(e, &patch, rawBody); err != nil {
			return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные для обновления", err, nil)
		}
		if strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.SerialNumber) == "" {
			return apperrors.NewHttpError(http.StatusBadRequest, "Поля name и serial_number обязательны", nil, nil)
		}
		if !e.Status.Valid() {
			e.Status = previousStatus
		}
		if previousStatus == entities.EquipmentScrapped && e.Status != entities.EquipmentScrapped {
			return apperrors.ErrEquipmentScrapped.WithMessage("списанное оборудование нельзя вернуть в статус %q", e.Status)
		}
		if utils.DiffPtr(previousTeam, e.MaintenanceTeamID) {
			if err := s.ensureTeam(ctx, e.MaintenanceTeamID); err != nil {
				return err
			}
		}
		return s.equipmentRepo.Update(ctx, tx, e)
	})
	if err != nil {
		return nil, err
	}

	s.changed(ctx, id, "updated")
	return s.Get(ctx, id)
}

// Delete запрещён, пока на оборудование ссылается хотя бы одна заявка.
func (s *EquipmentService) Delete(ctx context.Context, id string) error {
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, id); err != nil {
			return err
		}
		count, err := s.requestRepo.CountByEquipment(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDependentRecordsExist.WithMessage("на оборудование ссылается заявок: %d", count)
		}
		return s.equipmentRepo.Delete(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Оборудование удалено", zap.String("equipmentID", id))
	s.changed(ctx, id, "deleted")
	return nil
}

func (s *EquipmentService) ListOpenRequests(ctx context.Context, id string) ([]dto.RequestResponseDTO, error) {
	if _, err := s.equipmentRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	list, err := s.requestRepo.ListOpenByEquipment(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(list, utils.DateOnly(s.clock())), nil
}
