package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gearguard/internal/dto"
	"gearguard/internal/entities"
	"gearguard/internal/repositories"
	"gearguard/pkg/utils"

	"go.uber.org/zap"
)

const reportCachePrefix = "reports:"

type ReportServiceInterface interface {
	Dashboard(ctx context.Context) (*entities.DashboardStats, error)
	Utilization(ctx context.Context) ([]entities.EquipmentUtilization, error)
	TeamPerformance(ctx context.Context) ([]entities.TeamPerformance, error)
	Compliance(ctx context.Context) (*entities.ComplianceReport, error)
	ExportRequests(ctx context.Context) ([]dto.RequestResponseDTO, error)
	InvalidateCache(ctx context.Context) error
}

// ReportService собирает отчёты из репозиториев и кеширует результат в Redis.
// Без кеша (cache == nil) отчёты считаются при каждом запросе.
type ReportService struct {
	requestRepo   repositories.RequestRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	teamRepo      repositories.TeamRepositoryInterface
	cache         repositories.CacheRepositoryInterface
	cacheTTL      time.Duration
	clock         utils.Clock
	logger        *zap.Logger
}

func NewReportService(
	requestRepo repositories.RequestRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	teamRepo repositories.TeamRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	clock utils.Clock,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		requestRepo:   requestRepo,
		equipmentRepo: equipmentRepo,
		teamRepo:      teamRepo,
		cache:         cache,
		cacheTTL:      cacheTTL,
		clock:         clock,
		logger:        logger,
	}
}

// cached отдаёт значение из кеша или считает его через compute. Ошибки
// Redis не ломают отчёт: они пишутся в лог, и значение считается заново.
// Ключ включает дату, потому что просрочка зависит от "сегодня".
func cached[T any](ctx context.Context, s *ReportService, name string, compute func(today time.Time) (T, error)) (T, error) {
	today := utils.DateOnly(s.clock())
	if s.cache == nil {
		return compute(today)
	}
	key := reportCachePrefix + name + ":" + today.Format(utils.DateLayout)

	if raw, err := s.cache.Get(ctx, key); err == nil {
		var value T
		if err := json.Unmarshal([]byte(raw), &value); err == nil {
			return value, nil
		}
		s.logger.Warn("Повреждённое значение в кеше отчётов", zap.String("key", key))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("Кеш отчётов недоступен", zap.String("key", key), zap.Error(err))
	}

	value, err := compute(today)
	if err != nil {
		return value, err
	}
	if payload, err := json.Marshal(value); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
			s.logger.Warn("Не удалось записать отчёт в кеш", zap.String("key", key), zap.Error(err))
		}
	}
	return value, nil
}

func (s *ReportService) Dashboard(ctx context.Context) (*entities.DashboardStats, error) {
	stats, err := cached(ctx, s, "dashboard", func(today time.Time) (entities.DashboardStats, error) {
		equipment, err := s.equipmentRepo.ListAll(ctx)
		if err != nil {
			return entities.DashboardStats{}, err
		}
		requests, err := s.requestRepo.ListAll(ctx)
		if err != nil {
			return entities.DashboardStats{}, err
		}
		return BuildDashboard(equipment, requests, today), nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *ReportService) Utilization(ctx context.Context) ([]entities.EquipmentUtilization, error) {
	return cached(ctx, s, "utilization", func(time.Time) ([]entities.EquipmentUtilization, error) {
		equipment, err := s.equipmentRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		requests, err := s.requestRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return BuildUtilization(equipment, requests), nil
	})
}

func (s *ReportService) TeamPerformance(ctx context.Context) ([]entities.TeamPerformance, error) {
	return cached(ctx, s, "performance", func(time.Time) ([]entities.TeamPerformance, error) {
		teams, err := s.teamRepo.List(ctx, false)
		if err != nil {
			return nil, err
		}
		requests, err := s.requestRepo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		return BuildTeamPerformance(teams, requests), nil
	})
}

func (s *ReportService) Compliance(ctx context.Context) (*entities.ComplianceReport, error) {
	report, err := cached(ctx, s, "compliance", func(today time.Time) (entities.ComplianceReport, error) {
		requests, err := s.requestRepo.ListAll(ctx)
		if err != nil {
			return entities.ComplianceReport{}, err
		}
		return BuildCompliance(requests, today), nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// ExportRequests - все заявки для выгрузки в xlsx, без кеша.
func (s *ReportService) ExportRequests(ctx context.Context) ([]dto.RequestResponseDTO, error) {
	requests, err := s.requestRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toRequestResponses(requests, utils.DateOnly(s.clock())), nil
}

func (s *ReportService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.DelByPrefix(ctx, reportCachePrefix)
}
