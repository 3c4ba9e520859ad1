package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"gearguard/internal/services"
	"gearguard/pkg/config"
)

// jobTimeout ограничивает один запуск задачи.
const jobTimeout = 10 * time.Minute

// Scheduler запускает проверку просрочки и генерацию профилактики по cron.
type Scheduler struct {
	sched    gocron.Scheduler
	schedule services.ScheduleServiceInterface
	cfg      config.JobsConfig
	logger   *zap.Logger
}

func NewScheduler(schedule services.ScheduleServiceInterface, cfg config.JobsConfig, logger *zap.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(cfg.Location()))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать планировщик: %w", err)
	}

	s := &Scheduler{sched: sched, schedule: schedule, cfg: cfg, logger: logger}
	if err := s.add(services.JobOverdueSweep, cfg.OverdueSweepCron, s.runOverdueSweep); err != nil {
		return nil, err
	}
	if err := s.add(services.JobPreventiveGeneration, cfg.PreventiveCron, s.runPreventiveGeneration); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) add(name, crontab string, run func(ctx context.Context) error) error {
	j, err := s.sched.NewJob(
		gocron.CronJob(crontab, false),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			started := time.Now()
			if err := run(ctx); err != nil {
				s.logger.Error("Задача завершилась с ошибкой", zap.String("job", name), zap.Error(err))
				return
			}
			s.logger.Info("Задача выполнена", zap.String("job", name), zap.Duration("took", time.Since(started)))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("не удалось добавить задачу %s (%q): %w", name, crontab, err)
	}
	s.logger.Info("Задача добавлена в планировщик",
		zap.String("job", name), zap.String("cron", crontab), zap.String("id", j.ID().String()))
	return nil
}

func (s *Scheduler) runOverdueSweep(ctx context.Context) error {
	summary, err := s.schedule.RunOverdueSweep(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("Проверка просрочки", zap.Int("overdue", summary.Count),
		zap.Strings("notifierFailures", summary.NotifierFailures))
	return nil
}

func (s *Scheduler) runPreventiveGeneration(ctx context.Context) error {
	summary, err := s.schedule.GeneratePreventiveMaintenance(ctx, s.cfg.PreventiveHorizon, s.cfg.PreventiveLeadDays)
	if err != nil {
		return err
	}
	s.logger.Info("Генерация профилактики",
		zap.Int("checked", summary.Checked),
		zap.Int("created", summary.Created),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failures)))
	return nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info("Планировщик запущен", zap.Int("jobs", len(s.sched.Jobs())))
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
