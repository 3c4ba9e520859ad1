package listeners

import (
	"context"

	"go.uber.org/zap"

	"gearguard/internal/events"
	"gearguard/internal/services"
	"gearguard/pkg/eventbus"
)

// ReportCacheListener сбрасывает закэшированные отчёты после любого изменения
// заявок, оборудования или команд.
type ReportCacheListener struct {
	reports services.ReportServiceInterface
	logger  *zap.Logger
}

func NewReportCacheListener(reports services.ReportServiceInterface, logger *zap.Logger) *ReportCacheListener {
	return &ReportCacheListener{reports: reports, logger: logger}
}

func (l *ReportCacheListener) Register(bus *eventbus.Bus) {
	names := append([]string{events.EquipmentChanged, events.TeamChanged}, events.RequestEvents...)
	bus.Subscribe(l.invalidate, names...)
	l.logger.Info("ReportCacheListener подписан", zap.Strings("events", names))
}

func (l *ReportCacheListener) invalidate(ctx context.Context, event eventbus.Event) error {
	l.logger.Debug("Сброс кэша отчётов", zap.String("event", event.Name()))
	return l.reports.InvalidateCache(ctx)
}
