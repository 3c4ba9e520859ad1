package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gearguard/internal/jobs"
	"gearguard/internal/routes"
	"gearguard/pkg/config"
	"gearguard/pkg/database/postgresql"
	apperrors "gearguard/pkg/errors"
	"gearguard/pkg/eventbus"
	applogger "gearguard/pkg/logger"
	"gearguard/pkg/metrics"
	appmiddleware "gearguard/pkg/middleware"
	"gearguard/pkg/service"
	"gearguard/pkg/telegram"
	"gearguard/pkg/telemetry"
	"gearguard/pkg/utils"
	"gearguard/pkg/validation"
	"gearguard/pkg/websocket"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger.Level, cfg.Logger.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(cfg.Server.ServiceName, logger)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("Ошибка регистрации метрик", zap.Error(err))
	}

	// 1. База данных и миграции
	if cfg.Postgres.AutoMigrate {
		if err := postgresql.Migrate(cfg.Postgres.DSN); err != nil {
			logger.Fatal("Ошибка миграций", zap.Error(err))
		}
		logger.Info("Миграции применены")
	}
	dbConn := postgresql.ConnectDB(cfg.Postgres.DSN)
	defer dbConn.Close()

	// 2. Redis нужен только для кеша отчётов; без него сервис работает.
	var redisClient *redis.Client
	if cfg.Redis.Address != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis недоступен, кеш отчётов отключён", zap.Error(err), zap.String("address", cfg.Redis.Address))
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// 3. Telegram для уведомлений о просрочке
	tg, err := telegram.NewService(cfg.Telegram.BotToken, logger)
	if err != nil {
		logger.Error("Telegram недоступен, уведомления только в лог", zap.Error(err))
		tg = nil
	}

	bus := eventbus.New(logger)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	jwtSvc := service.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL, cfg.JWT.RefreshTokenTTL)

	// 4. Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition},
	}))
	e.Use(appmiddleware.RequestLogger(logger))
	e.Use(echoprometheus.NewMiddleware(cfg.Server.ServiceName))

	app := routes.InitRouter(e, routes.Deps{
		DB:       dbConn,
		Redis:    redisClient,
		Bus:      bus,
		Hub:      hub,
		JWT:      jwtSvc,
		Telegram: tg,
		Config:   cfg,
		Logger:   logger,
	})

	// 5. Периодические задачи
	var scheduler *jobs.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = jobs.NewScheduler(app.Schedule, cfg.Jobs, logger)
		if err != nil {
			logger.Fatal("Ошибка настройки планировщика", zap.Error(err))
		}
		scheduler.Start()
	}

	// 6. Метрики на отдельном порту
	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", echoprometheus.NewHandler())
	go func() {
		if err := metricsServer.Start(":" + cfg.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Ошибка сервера метрик", zap.Error(err))
		}
	}()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      otelhttp.NewHandler(e, cfg.Server.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			logger.Error("Ошибка остановки планировщика", zap.Error(err))
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера метрик", zap.Error(err))
	}
	bus.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки трейсинга", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}
