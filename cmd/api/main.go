package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/api"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/api/handler"
	custommw "github.com/hohihiho/gameplaza-booking-v2-sub002/internal/api/middleware"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/application"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/config"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/infrastructure/postgres"
	redisinfra "github.com/hohihiho/gameplaza-booking-v2-sub002/internal/infrastructure/redis"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/logger"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/pkg/metrics"
	"github.com/hohihiho/gameplaza-booking-v2-sub002/internal/worker"
)

func main() {
	cfg := config.Load()

	// ロガー初期化
	logger.Set(logger.NewLogger(os.Getenv("APP_ENV")))
	defer logger.Sync()

	// PostgreSQL接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続
	redisClient, err := redisinfra.NewClient(&redisinfra.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	slotCache := redisinfra.NewSlotCache(redisClient)

	// リポジトリ
	templateRepo := postgres.NewTemplateRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	settingsRepo := postgres.NewRentalSettingsRepository(db)
	reservationRepo := postgres.NewReservationRepository(db)
	deviceRepo := postgres.NewDeviceRepository(db)
	txManager := postgres.NewTxManager(db)

	// アプリケーションサービス
	timeSlotService := application.NewTimeSlotService(templateRepo, scheduleRepo, lockManager, slotCache)
	rentalService := application.NewRentalService(settingsRepo, reservationRepo, deviceRepo)
	reservationService := application.NewReservationService(txManager, reservationRepo, rentalService, lockManager)
	deviceService := application.NewDeviceService(deviceRepo)

	// メトリクス
	m := metrics.Init()

	// Echo設定
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommw.SetupMiddleware(e)
	e.Use(custommw.PrometheusMiddleware(m))

	// ルーティング
	healthHandler := handler.NewHealthHandler()
	templateHandler := handler.NewTemplateHandler(timeSlotService)
	scheduleHandler := handler.NewScheduleHandler(timeSlotService)
	rentalHandler := handler.NewRentalHandler(rentalService)
	reservationHandler := handler.NewReservationHandler(reservationService)
	deviceHandler := handler.NewDeviceHandler(deviceService)

	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/time-slots/templates", templateHandler.Create)
	v1.GET("/time-slots/templates", templateHandler.List)
	v1.GET("/time-slots/templates/:id", templateHandler.GetByID)
	v1.PUT("/time-slots/templates/:id", templateHandler.Update)
	v1.DELETE("/time-slots/templates/:id", templateHandler.Delete)
	v1.POST("/time-slots/schedules", scheduleHandler.Schedule)
	v1.GET("/time-slots/schedules", scheduleHandler.List)
	v1.GET("/time-slots/schedules/:id", scheduleHandler.GetByID)
	v1.DELETE("/time-slots/schedules/:id", scheduleHandler.Delete)
	v1.GET("/time-slots/available", scheduleHandler.GetAvailable)

	v1.POST("/rental/settings", rentalHandler.Create)
	v1.GET("/rental/settings", rentalHandler.List)
	v1.GET("/rental/settings/:device_type_id", rentalHandler.Get)
	v1.DELETE("/rental/settings/:device_type_id", rentalHandler.Delete)
	v1.POST("/rental/settings/:device_type_id/time-slots", rentalHandler.AddTimeSlot)
	v1.DELETE("/rental/settings/:device_type_id/time-slots/:slot_id", rentalHandler.RemoveTimeSlot)
	v1.POST("/rental/settings/:device_type_id/pricing-rules", rentalHandler.AddPricingRule)
	v1.DELETE("/rental/settings/:device_type_id/pricing-rules/:rule_id", rentalHandler.RemovePricingRule)
	v1.PUT("/rental/settings/:device_type_id/availability", rentalHandler.UpdateAvailability)
	v1.PUT("/rental/settings/:device_type_id/active", rentalHandler.SetActive)
	v1.POST("/rental/availability/check", rentalHandler.CheckAvailability)
	v1.POST("/rental/price/quote", rentalHandler.QuotePrice)

	v1.POST("/reservations", reservationHandler.Create)
	v1.GET("/reservations", reservationHandler.ListBySlot)
	v1.GET("/reservations/:id", reservationHandler.GetByID)
	v1.POST("/reservations/:id/approve", reservationHandler.Approve)
	v1.POST("/reservations/:id/reject", reservationHandler.Reject)
	v1.POST("/reservations/:id/cancel", reservationHandler.Cancel)
	v1.POST("/reservations/:id/complete", reservationHandler.Complete)
	v1.GET("/users/:user_id/reservations", reservationHandler.ListByUser)

	v1.POST("/devices", deviceHandler.Register)
	v1.GET("/devices", deviceHandler.List)
	v1.GET("/devices/:id", deviceHandler.GetByID)
	v1.PUT("/devices/:id/status", deviceHandler.SetStatus)

	// Prometheusメトリクス（Basic認証付き）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsBasicAuth())

	// 過去スケジュールのクリーンアップワーカー
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cleaner := worker.NewScheduleCleaner(timeSlotService, cfg.Worker.CleanupInterval, cfg.Worker.ScheduleRetention)
	go cleaner.Start(ctx)

	// サーバー起動
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	cleaner.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
