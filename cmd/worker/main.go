// Package main - точка входа фонового воркера синхронизации расписания.
//
// Worker отвечает за периодические задачи:
// - Синхронизация справочников (группы, преподаватели, аудитории)
// - Синхронизация расписания "горячих" групп (с подписчиками)
// - Ночная синхронизация всего каталога групп
// - Очистка устаревших занятий
// - Постановка напоминаний о скором начале пары
//
// Изменения расписания и напоминания уходят боту через очереди Redis;
// сам воркер с Telegram не разговаривает.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/pwlgk/s13-backend/config"
	"github.com/pwlgk/s13-backend/internal/infrastructure/external/omsu"
	"github.com/pwlgk/s13-backend/internal/infrastructure/persistence/postgres"
	"github.com/pwlgk/s13-backend/internal/infrastructure/persistence/redis"
	"github.com/pwlgk/s13-backend/internal/infrastructure/scheduler"
	"github.com/pwlgk/s13-backend/internal/infrastructure/scheduler/jobs"
	syncer "github.com/pwlgk/s13-backend/internal/sync"
	"github.com/pwlgk/s13-backend/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	// .env опционален: в контейнере конфигурация приходит из окружения.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting schedule sync worker",
		"env", string(cfg.App.Environment),
		"debug", cfg.App.Debug,
		"timezone", cfg.App.Timezone,
	)

	// Логгер ядра синхронизации.
	coreLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database...")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("checking database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database schema is up to date")

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ПОДКЛЮЧЕНИЕ К REDIS (исходящие очереди)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to Redis...")
	var queue *redis.Queue
	if cfg.Redis.URL != "" {
		queue, err = redis.NewQueueFromURL(cfg.Redis.URL)
	} else {
		queue, err = redis.NewQueue(redis.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	defer func() {
		log.Info("closing Redis connection...")
		_ = queue.Close()
	}()
	log.Info("Redis connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ И КЛИЕНТА ФИДА
	// ─────────────────────────────────────────────────────────────────────────
	dictRepo := postgres.NewDictionaryRepository(dbConn)
	lessonRepo := postgres.NewLessonRepository(dbConn)
	userRepo := postgres.NewUserRepository(dbConn)

	feedConfig := omsu.DefaultClientConfig(cfg.Feed.BaseURL)
	feedConfig.Timeout = cfg.Feed.Timeout
	feedConfig.RateLimiterConfig.RequestsPerSecond = cfg.Feed.RequestsPerSecond
	feedConfig.RateLimiterConfig.BurstSize = cfg.Feed.BurstSize
	feedConfig.RateLimiterConfig.MinInterval = cfg.Feed.MinInterval
	feedConfig.Logger = log
	feedClient := omsu.NewClient(feedConfig)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. СБОРКА ЯДРА СИНХРОНИЗАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	reconciler := syncer.NewReconciler(coreLog)

	orchestratorCfg := syncer.DefaultOrchestratorConfig()
	orchestratorCfg.InterGroupDelay = cfg.Sync.InterGroupDelay
	orchestrator := syncer.NewOrchestrator(
		feedClient, lessonRepo, dictRepo, queue, reconciler, orchestratorCfg, coreLog,
	)

	dictSyncer := syncer.NewDictionarySyncer(feedClient, dictRepo, coreLog)
	sweeper := syncer.NewRetentionSweeper(lessonRepo, cfg.Sync.RetentionWindow, coreLog)
	reminderScanner := syncer.NewReminderScanner(
		lessonRepo, queue, nil, cfg.Sync.ReminderMarks, coreLog,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. РЕГИСТРАЦИЯ ЗАДАЧ ПЛАНИРОВЩИКА
	// ─────────────────────────────────────────────────────────────────────────
	sched := scheduler.New(scheduler.Config{
		Logger:   log,
		Timezone: cfg.App.Location,
	})

	hotJob := jobs.NewHotSyncJob(orchestrator, userRepo, coreLog)
	dictJob := jobs.NewDictionarySyncJob(dictSyncer)

	registrations := []struct {
		job      scheduler.Job
		schedule scheduler.Schedule
	}{
		{dictJob, scheduler.NewDailyAtSchedule(cfg.Sync.DictSyncHour, cfg.Sync.DictSyncMinute, cfg.App.Location)},
		{hotJob, scheduler.NewIntervalSchedule(cfg.Sync.HotInterval)},
		{jobs.NewColdSyncJob(orchestrator, dictRepo, userRepo, coreLog),
			scheduler.NewDailyAtSchedule(cfg.Sync.ColdSyncHour, cfg.Sync.ColdSyncMinute, cfg.App.Location)},
		{jobs.NewCleanupJob(sweeper, coreLog),
			scheduler.NewDailyAtSchedule(cfg.Sync.CleanupHour, cfg.Sync.CleanupMinute, cfg.App.Location)},
		{jobs.NewReminderScanJob(reminderScanner),
			scheduler.NewIntervalSchedule(cfg.Sync.ReminderScanInterval)},
	}
	for _, r := range registrations {
		if err := sched.Register(r.job, r.schedule); err != nil {
			return fmt.Errorf("failed to register job %s: %w", r.job.Name(), err)
		}
	}

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer func() {
		log.Info("stopping scheduler...")
		_ = sched.Stop()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. СЛУШАТЕЛЬ УПРАВЛЯЮЩЕЙ ОЧЕРЕДИ
	// ─────────────────────────────────────────────────────────────────────────
	// Бот кладёт команды в control_queue; воркер запускает нужную задачу
	// вне расписания.
	go controlListener(ctx, queue, sched, hotJob.Name(), dictJob.Name(), log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("schedule sync worker is running", "timezone", cfg.App.Timezone)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())

	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())
	cancel()

	log.Info("shutdown completed successfully")
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONTROL QUEUE LISTENER
// ══════════════════════════════════════════════════════════════════════════════

// controlListener читает команды из control_queue и транслирует их в ручной
// запуск зарегистрированных задач.
func controlListener(
	ctx context.Context,
	queue *redis.Queue,
	sched *scheduler.Scheduler,
	hotJobName, dictJobName string,
	log *slog.Logger,
) {
	for {
		if ctx.Err() != nil {
			return
		}

		command, err := queue.PopControlCommand(ctx, 5*time.Second)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			log.Warn("control queue read failed", "error", err)
			time.Sleep(time.Second)
			continue
		}
		if command == "" {
			continue
		}

		log.Info("control command received", "command", command)

		switch command {
		case redis.CommandRunHotSync:
			err = sched.TriggerNow(hotJobName)
		case redis.CommandRunDictSync:
			err = sched.TriggerNow(dictJobName)
		default:
			log.Warn("unknown control command", "command", command)
			continue
		}
		if err != nil {
			log.Warn("control command not executed", "command", command, "error", err)
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		// JSON формат для production (лучше для агрегаторов логов)
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		// Текстовый формат для development (лучше читается)
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)

	return log
}
