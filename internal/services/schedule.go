package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/events"
	"gearguard/internal/repositories"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/metrics"
	"gearguard/pkg/telemetry"
	"gearguard/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	DefaultPreventiveHorizonDays = 30
	DefaultPreventiveLeadDays    = 7

	JobOverdueSweep         = "overdue_sweep"
	JobPreventiveGeneration = "preventive_generation"
)

type ScheduleServiceInterface interface {
	ListOverdue(ctx context.Context) ([]dto.RequestResponseDTO, error)
	RunOverdueSweep(ctx context.Context) (*dto.SweepSummaryDTO, error)
	GeneratePreventiveMaintenance(ctx context.Context, horizonDays, leadDays int) (*dto.GenerationSummaryDTO, error)
}

type ScheduleService struct {
	requests      *RequestService
	requestRepo   repositories.RequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	txManager     repositories.TxManagerInterface
	notifiers     []OverdueNotifier
	clock         utils.Clock
	logger        *zap.Logger
}

func NewScheduleService(
	requests *RequestService,
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	txManager repositories.TxManagerInterface,
	notifiers []OverdueNotifier,
	clock utils.Clock,
	logger *zap.Logger,
) *ScheduleService {
	return &ScheduleService{
		requests:      requests,
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		txManager:     txManager,
		notifiers:     notifiers,
		clock:         clock,
		logger:        logger,
	}
}

func (s *ScheduleService) today() time.Time {
	return utils.DateOnly(s.clock())
}

// ListOverdue возвращает открытые заявки с прошедшей датой, по возрастанию даты.
func (s *ScheduleService) ListOverdue(ctx context.Context) ([]dto.RequestResponseDTO, error) {
	today := s.today()
	list, err := s.requestRepo.ListOverdue(ctx, today)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(list, today), nil
}

// RunOverdueSweep ничего не меняет в данных: только собирает просроченные
// заявки и передаёт их всем уведомителям. Ошибка одного уведомителя не
// мешает остальным.
func (s *ScheduleService) RunOverdueSweep(ctx context.Context) (*dto.SweepSummaryDTO, error) {
	ctx, span := telemetry.Tracer("gearguard/services").Start(ctx, "schedule.RunOverdueSweep")
	defer span.End()

	today := s.today()
	overdue, err := s.requestRepo.ListOverdue(ctx, today)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list overdue")
		metrics.JobRuns.WithLabelValues(JobOverdueSweep, "error").Inc()
		return nil, err
	}
	metrics.OverdueRequests.Set(float64(len(overdue)))
	span.SetAttributes(attribute.Int("overdue.count", len(overdue)))

	summary := &dto.SweepSummaryDTO{
		Count:            len(overdue),
		Requests:         toRequestResponses(overdue, today),
		NotifierFailures: []string{},
	}
	for _, n := range s.notifiers {
		if err := n.NotifyOverdue(ctx, overdue, today); err != nil {
			s.logger.Error("Ошибка уведомления о просроченных заявках",
				zap.String("notifier", n.Name()), zap.Error(err))
			summary.NotifierFailures = append(summary.NotifierFailures, n.Name())
			metrics.JobItemFailures.WithLabelValues(JobOverdueSweep).Inc()
		}
	}

	metrics.JobRuns.WithLabelValues(JobOverdueSweep, "ok").Inc()
	return summary, nil
}

// GeneratePreventiveMaintenance создаёт профилактическую заявку для каждого
// активного оборудования, у которого нет профилактики в ближайшие horizonDays
// дней. Повторный запуск в том же окне ничего не создаёт.
func (s *ScheduleService) GeneratePreventiveMaintenance(ctx context.Context, horizonDays, leadDays int) (*dto.GenerationSummaryDTO, error) {
	if horizonDays < 0 || leadDays < 0 {
		return nil, apperrors.NewHttpError(http.StatusBadRequest, "horizon и lead не могут быть отрицательными", nil,
			map[string]interface{}{"horizon": horizonDays, "lead": leadDays})
	}

	ctx, span := telemetry.Tracer("gearguard/services").Start(ctx, "schedule.GeneratePreventiveMaintenance")
	defer span.End()
	span.SetAttributes(attribute.Int("horizon_days", horizonDays), attribute.Int("lead_days", leadDays))

	today := s.today()
	windowEnd := utils.AddDays(today, max(horizonDays, leadDays))
	scheduled := utils.AddDays(today, leadDays)

	candidates, err := s.equipmentRepo.ListByStatus(ctx, entities.EquipmentActive)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list equipment")
		metrics.JobRuns.WithLabelValues(JobPreventiveGeneration, "error").Inc()
		return nil, err
	}

	summary := &dto.GenerationSummaryDTO{
		Failures: []dto.GenerationFailure{},
		Requests: []dto.RequestResponseDTO{},
	}
	for _, equipment := range candidates {
		summary.Checked++

		created, err := s.generateForEquipment(ctx, equipment.ID, today, windowEnd, scheduled)
		switch {
		case err != nil:
			s.logger.Error("Не удалось создать профилактическую заявку",
				zap.String("equipmentID", equipment.ID), zap.Error(err))
			metrics.JobItemFailures.WithLabelValues(JobPreventiveGeneration).Inc()
			summary.Failures = append(summary.Failures, dto.GenerationFailure{
				EquipmentID:   equipment.ID,
				EquipmentName: equipment.Name,
				Error:         err.Error(),
			})
		case created == nil:
			summary.Skipped++
		default:
			summary.Created++
			metrics.PreventiveGenerated.Inc()
			summary.Requests = append(summary.Requests, toRequestResponse(created, today))
			s.requests.publish(ctx, events.RequestEvent{
				Type:      events.RequestCreated,
				Request:   created,
				RequestID: created.ID,
			})
		}
	}

	span.SetAttributes(
		attribute.Int("checked", summary.Checked),
		attribute.Int("created", summary.Created),
		attribute.Int("failures", len(summary.Failures)),
	)
	metrics.JobRuns.WithLabelValues(JobPreventiveGeneration, "ok").Inc()
	s.logger.Info("Генерация профилактических заявок завершена",
		zap.Int("checked", summary.Checked),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failures", len(summary.Failures)))
	return summary, nil
}

// generateForEquipment возвращает nil без ошибки, если заявка не нужна.
func (s *ScheduleService) generateForEquipment(ctx context.Context, equipmentID string, from, to, scheduled time.Time) (*entities.MaintenanceRequest, error) {
	var created *entities.MaintenanceRequest
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepo.FindByIDForUpdate(ctx, tx, equipmentID)
		if err != nil {
			return err
		}
		// статус мог измениться между выборкой и блокировкой
		if equipment.Status != entities.EquipmentActive {
			return nil
		}

		exists, err := s.requestRepo.ExistsPreventiveInWindow(ctx, tx, equipmentID, from, to)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		req, err := s.requests.createInTx(ctx, tx, newRequestInput{
			Subject:       fmt.Sprintf("Preventive Maintenance - %s", equipment.Name),
			Description:   "Плановое профилактическое обслуживание",
			Type:          entities.RequestTypePreventive,
			Priority:      entities.PriorityMedium,
			EquipmentID:   equipmentID,
			ScheduledDate: &scheduled,
		})
		if err != nil {
			return err
		}
		created = req
		return nil
	})
	if errors.Is(err, apperrors.ErrDuplicatePreventive) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}
