package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/metrics"
	"gearguard/pkg/types"
	"gearguard/pkg/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// EventPublisher - то, что нужно сервисам от шины событий.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

type RequestServiceInterface interface {
	CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestResponseDTO, error)
	TransitionStage(ctx context.Context, id string, payload dto.TransitionStageDTO) (*dto.RequestResponseDTO, error)
	UpdateRequest(ctx context.Context, id string, patch dto.UpdateRequestDTO, rawBody []byte) (*dto.RequestResponseDTO, error)
	DeleteRequest(ctx context.Context, id string) error
	GetRequest(ctx context.Context, id string) (*dto.RequestResponseDTO, error)
	ListRequests(ctx context.Context, filter types.Filter, query dto.RequestListQuery) ([]dto.RequestResponseDTO, uint64, error)
	GetBoard(ctx context.Context) ([]dto.BoardColumnDTO, error)
}

type RequestService struct {
	requestRepo   repositories.RequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	txManager     repositories.TxManagerInterface
	publisher     EventPublisher
	clock         utils.Clock
	logger        *zap.Logger
}

func NewRequestService(
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	txManager repositories.TxManagerInterface,
	publisher EventPublisher,
	clock utils.Clock,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		publisher:     publisher,
		clock:         clock,
		logger:        logger,
	}
}

func (s *RequestService) today() time.Time {
	return utils.DateOnly(s.clock())
}

func (s *RequestService) publish(ctx context.Context, event eventbus.Event) {
	if s.publisher != nil {
		s.publisher.Publish(ctx, event)
	}
}

// newRequestInput - общие данные для заявки, созданной пользователем или генератором.
type newRequestInput struct {
	Subject       string
	Description   string
	Type          entities.RequestType
	Priority      entities.Priority
	EquipmentID   string
	TechnicianID  *string
	ScheduledDate *time.Time
	Duration      float64
	Notes         *string
}

// createInTx проверяет входные данные и сохраняет заявку в рамках tx.
// Строка оборудования блокируется до конца транзакции.
func (s *RequestService) createInTx(ctx context.Context, tx pgx.Tx, in newRequestInput) (*entities.MaintenanceRequest, error) {
	equipment, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, in.EquipmentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEquipmentNotFound) {
			return nil, apperrors.ErrEquipmentNotFound.WithStatus(http.StatusBadRequest)
		}
		return nil, err
	}
	if equipment.Status == entities.EquipmentScrapped {
		return nil, apperrors.ErrEquipmentScrapped
	}
	if in.Type == entities.RequestTypePreventive && in.ScheduledDate == nil {
		return nil, apperrors.ErrScheduledDateRequired
	}

	var technicianName *string
	if in.TechnicianID != nil {
		technician, err := s.userRepo.FindByID(ctx, *in.TechnicianID)
		if err != nil {
			if errors.Is(err, apperrors.ErrUserNotFound) {
				return nil, apperrors.ErrTechnicianNotFound
			}
			return nil, err
		}
		technicianName = &technician.FullName
	}

	priority := in.Priority
	if priority == "" {
		priority = entities.PriorityMedium
	}

	req := &entities.MaintenanceRequest{
		ID:                  uuid.NewString(),
		Subject:             in.Subject,
		Description:         in.Description,
		Type:                in.Type,
		Priority:            priority,
		Stage:               entities.StageNew,
		EquipmentID:         equipment.ID,
		EquipmentName:       equipment.Name,
		EquipmentCategory:   equipment.Category,
		MaintenanceTeamID:   equipment.MaintenanceTeamID,
		MaintenanceTeamName: equipment.MaintenanceTeamName,
		TechnicianID:        in.TechnicianID,
		TechnicianName:      technicianName,
		ScheduledDate:       in.ScheduledDate,
		Duration:            in.Duration,
		Notes:               in.Notes,
	}

	if err := s.requestRepo.Create(ctx, tx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *RequestService) CreateRequest(ctx context.Context, payload dto.CreateRequestDTO) (*dto.RequestResponseDTO, error) {
	in := newRequestInput{
		Subject:      payload.Subject,
		Description:  payload.Description,
		Type:         entities.RequestType(payload.Type),
		Priority:     entities.Priority(payload.Priority),
		EquipmentID:  payload.EquipmentID,
		TechnicianID: payload.TechnicianID,
		Notes:        payload.Notes,
	}
	if payload.Duration != nil {
		in.Duration = *payload.Duration
	}
	if payload.ScheduledDate != nil {
		date, err := utils.ParseDate(*payload.ScheduledDate)
		if err != nil {
			return nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат scheduled_date", err, nil)
		}
		in.ScheduledDate = &date
	}

	var created *entities.MaintenanceRequest
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.createInTx(ctx, tx, in)
		if err != nil {
			return err
		}
		created = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Заявка создана",
		zap.String("requestID", created.ID),
		zap.String("equipmentID", created.EquipmentID),
		zap.String("type", string(created.Type)))
	s.publish(ctx, events.RequestEvent{
		Type:      events.RequestCreated,
		Request:   created,
		RequestID: created.ID,
		ActorID:   utils.SafeDeref(utils.OptionalUserID(ctx)),
	})

	resp := toRequestResponse(created, s.today())
	return &resp, nil
}

// TransitionStage переводит заявку в новую стадию. Переход в scrap
// списывает оборудование в той же транзакции.
func (s *RequestService) TransitionStage(ctx context.Context, id string, payload dto.TransitionStageDTO) (*dto.RequestResponseDTO, error) {
	target := entities.Stage(payload.Stage)

	var (
		updated   *entities.MaintenanceRequest
		fromStage entities.Stage
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !entities.CanTransition(req.Stage, target) {
			return apperrors.NewInvalidStageTransition(string(req.Stage), string(target))
		}
		if target == entities.StageRepaired && !req.HasRecordedTime() {
			return apperrors.ErrDurationRequired
		}

		fromStage = req.Stage
		req.Stage = target
		if target.IsTerminal() && req.CompletedAt == nil {
			now := s.clock()
			req.CompletedAt = &now
		}

		if target == entities.StageScrap {
			req.ScrapReason = payload.ScrapReason
			if _, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, req.EquipmentID); err != nil {
				return err
			}
			if err := s.equipmentRepo.UpdateStatus(ctx, tx, req.EquipmentID, entities.EquipmentScrapped); err != nil {
				return err
			}
		}

		if err := s.requestRepo.UpdateStage(ctx, tx, req, fromStage); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.StageTransitions.WithLabelValues(string(fromStage), string(target)).Inc()
	s.logger.Info("Стадия заявки изменена",
		zap.String("requestID", id),
		zap.String("from", string(fromStage)),
		zap.String("to", string(target)))
	s.publish(ctx, events.RequestEvent{
		Type:              events.RequestStageChanged,
		Request:           updated,
		RequestID:         updated.ID,
		FromStage:         fromStage,
		ActorID:           utils.SafeDeref(utils.OptionalUserID(ctx)),
		EquipmentScrapped: target == entities.StageScrap,
	})

	resp := toRequestResponse(updated, s.today())
	return &resp, nil
}

// UpdateRequest применяет частичное обновление. Стадия этим методом не меняется.
func (s *RequestService) UpdateRequest(ctx context.Context, id string, patch dto.UpdateRequestDTO, rawBody []byte) (*dto.RequestResponseDTO, error) {
	if utils.PatchHasField(rawBody, "stage") {
		return nil, apperrors.ErrStageChangeNotAllowed
	}

	var updated *entities.MaintenanceRequest
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		previousTechnician := req.TechnicianID

		if err := utils.ApplyPatchFinal(req, &patch, rawBody); err != nil {
			return apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные для обновления", err, nil)
		}
		if req.Subject == "" {
			return apperrors.NewHttpError(http.StatusBadRequest, "Поле subject не может быть пустым", nil, nil)
		}
		if !req.Priority.Valid() {
			req.Priority = entities.PriorityMedium
		}

		if utils.DiffPtr(previousTechnician, req.TechnicianID) {
			req.TechnicianName = nil
			if req.TechnicianID != nil {
				technician, err := s.userRepo.FindByID(ctx, *req.TechnicianID)
				if err != nil {
					if errors.Is(err, apperrors.ErrUserNotFound) {
						return apperrors.ErrTechnicianNotFound
					}
					return err
				}
				req.TechnicianName = &technician.FullName
			}
		}

		if req.Type == entities.RequestTypePreventive && req.ScheduledDate == nil {
			return apperrors.ErrScheduledDateRequired
		}

		if err := s.requestRepo.UpdateDetails(ctx, tx, req); err != nil {
			return err
		}
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.RequestEvent{
		Type:      events.RequestUpdated,
		Request:   updated,
		RequestID: updated.ID,
		ActorID:   utils.SafeDeref(utils.OptionalUserID(ctx)),
	})

	resp := toRequestResponse(updated, s.today())
	return &resp, nil
}

func (s *RequestService) DeleteRequest(ctx context.Context, id string) error {
	if err := s.requestRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Заявка удалена", zap.String("requestID", id))
	s.publish(ctx, events.RequestEvent{
		Type:      events.RequestDeleted,
		RequestID: id,
		ActorID:   utils.SafeDeref(utils.OptionalUserID(ctx)),
	})
	return nil
}

func (s *RequestService) GetRequest(ctx context.Context, id string) (*dto.RequestResponseDTO, error) {
	req, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRequestResponse(req, s.today())
	return &resp, nil
}

func (s *RequestService) ListRequests(ctx context.Context, filter types.Filter, query dto.RequestListQuery) ([]dto.RequestResponseDTO, uint64, error) {
	opts := repositories.RequestListOptions{
		Filter:      filter,
		OverdueOnly: query.OverdueOnly,
		Today:       s.today(),
	}
	if query.ScheduledFrom != nil {
		from, err := utils.ParseDate(*query.ScheduledFrom)
		if err != nil {
			return nil, 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат scheduled_from", err, nil)
		}
		opts.ScheduledFrom = &from
	}
	if query.ScheduledTo != nil {
		to, err := utils.ParseDate(*query.ScheduledTo)
		if err != nil {
			return nil, 0, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат scheduled_to", err, nil)
		}
		opts.ScheduledTo = &to
	}

	list, total, err := s.requestRepo.List(ctx, opts)
	if err != nil {
		return nil, 0, err
	}
	return toRequestResponses(list, opts.Today), total, nil
}

// GetBoard группирует все заявки по стадиям в порядке колонок доски.
func (s *RequestService) GetBoard(ctx context.Context) ([]dto.BoardColumnDTO, error) {
	list, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	today := s.today()

	columns := make([]dto.BoardColumnDTO, len(entities.Stages))
	index := make(map[entities.Stage]int, len(entities.Stages))
	for i, stage := range entities.Stages {
		columns[i] = dto.BoardColumnDTO{Stage: string(stage), Requests: []dto.RequestResponseDTO{}}
		index[stage] = i
	}
	for i := range list {
		col, ok := index[list[i].Stage]
		if !ok {
			continue
		}
		columns[col].Requests = append(columns[col].Requests, toRequestResponse(&list[i], today))
		columns[col].Count++
	}
	return columns, nil
}
