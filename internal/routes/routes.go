package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"gearguard/internal/controllers"
	"gearguard/internal/entities"
	"gearguard/internal/listeners"
	"gearguard/internal/repositories"
	"gearguard/internal/services"
	"gearguard/pkg/config"
	"gearguard/pkg/eventbus"
	"gearguard/pkg/middleware"
	"gearguard/pkg/service"
	"gearguard/pkg/telegram"
	"gearguard/pkg/utils"
	"gearguard/pkg/websocket"
)

const (
	roleAdmin   = string(entities.RoleAdmin)
	roleManager = string(entities.RoleManager)
)

// Deps - инфраструктура, которую создаёт main. Redis и Telegram могут быть nil.
type Deps struct {
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Bus      *eventbus.Bus
	Hub      *websocket.Hub
	JWT      service.JWTService
	Telegram telegram.ServiceInterface
	Config   *config.Config
	Clock    utils.Clock
	Logger   *zap.Logger
}

// App - то, что нужно main после построения маршрутов.
type App struct {
	Schedule services.ScheduleServiceInterface
}

func InitRouter(e *echo.Echo, deps Deps) *App {
	logger := deps.Logger
	logger.Info("InitRouter: Начало создания маршрутов")

	cfg := deps.Config
	clock := deps.Clock
	if clock == nil {
		clock = utils.ClockIn(cfg.Jobs.Location())
	}

	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB, logger)
	teamRepo := repositories.NewTeamRepository(deps.DB, logger)
	equipmentRepo := repositories.NewEquipmentRepository(deps.DB, logger)
	requestRepo := repositories.NewRequestRepository(deps.DB, logger)

	var cache repositories.CacheRepositoryInterface
	var cachePinger controllers.Pinger
	if deps.Redis != nil {
		cache = repositories.NewRedisCacheRepository(deps.Redis)
		cachePinger = controllers.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		})
	}

	// --- 2. СЕРВИСЫ ---
	notifiers := []services.OverdueNotifier{services.NewLogOverdueNotifier(logger)}
	if deps.Telegram != nil && cfg.Telegram.ChatID != 0 {
		notifiers = append(notifiers, services.NewTelegramOverdueNotifier(deps.Telegram, cfg.Telegram.ChatID, logger))
	}

	requestService := services.NewRequestService(requestRepo, equipmentRepo, userRepo, txManager, deps.Bus, clock, logger)
	scheduleService := services.NewScheduleService(requestService, requestRepo, equipmentRepo, txManager, notifiers, clock, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, requestRepo, teamRepo, txManager, deps.Bus, clock, logger)
	importer := services.NewEquipmentImporter(equipmentService, equipmentRepo, teamRepo, logger)
	teamService := services.NewTeamService(teamRepo, equipmentRepo, requestRepo, txManager, deps.Bus, clock, logger)
	userService := services.NewUserService(userRepo, logger)
	authService := services.NewAuthService(userRepo, userService, deps.JWT, logger)
	reportService := services.NewReportService(requestRepo, equipmentRepo, teamRepo, cache, cfg.Redis.ReportTTL, clock, logger)
	wsNotificationService := services.NewWebSocketNotificationService(deps.Hub, logger)

	// --- 3. СЛУШАТЕЛИ СОБЫТИЙ ---
	listeners.NewBoardListener(wsNotificationService, clock, logger).Register(deps.Bus)
	listeners.NewReportCacheListener(reportService, logger).Register(deps.Bus)

	// --- 4. РОУТЕРЫ ---
	authMW := middleware.NewAuthMiddleware(deps.JWT, logger)
	api := e.Group("/api")
	secureGroup := api.Group("", authMW.Auth)

	e.GET("/health", controllers.NewHealthController(deps.DB, cachePinger, logger).Check)
	api.GET("/ws", controllers.NewWebSocketController(deps.Hub, deps.JWT, logger).ServeWs)

	runAuthRouter(api, secureGroup, controllers.NewAuthController(authService, logger))
	runUserRouter(secureGroup, controllers.NewUserController(userService, logger), authMW)
	runTeamRouter(secureGroup, controllers.NewTeamController(teamService, logger), authMW)
	runEquipmentRouter(secureGroup, controllers.NewEquipmentController(equipmentService, importer, logger), authMW)
	runRequestRouter(secureGroup, controllers.NewRequestController(requestService, scheduleService, logger), authMW)
	runReportRouter(secureGroup, controllers.NewReportController(reportService, logger))
	runJobsRouter(secureGroup, controllers.NewJobsController(scheduleService,
		cfg.Jobs.PreventiveHorizon, cfg.Jobs.PreventiveLeadDays, logger), authMW)

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
	return &App{Schedule: scheduleService}
}
