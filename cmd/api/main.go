package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/coin-fortune/internal/config"
	"github.com/SergeiKhy/coin-fortune/internal/handler"
	"github.com/SergeiKhy/coin-fortune/internal/llm"
	"github.com/SergeiKhy/coin-fortune/internal/middleware"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Выбор хранилища: PostgreSQL или эфемерный in-memory fallback
	var (
		deviceRepo  repository.DeviceRepository
		readingRepo repository.ReadingRepository
		tagRepo     repository.TagClickRepository
		hotRepo     repository.HotQuestionRepository
	)

	if cfg.HasDatabase() {
		db, err := repository.NewPostgresDB(cfg.DB)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("Connected to PostgreSQL")

		deviceRepo = repository.NewDeviceRepository(db)
		readingRepo = repository.NewReadingRepository(db)
		tagRepo = repository.NewTagClickRepository(db)
		hotRepo = repository.NewHotQuestionRepository(db)
	} else {
		// Режим разработки: данные живут до рестарта и только в этом процессе
		store := repository.NewMemoryStore()
		deviceRepo = store
		readingRepo = store
		tagRepo = store
		hotRepo = store
		logger.Warn("DB_HOST не задан, используется in-memory хранилище (не для продакшена)")
	}

	// Кэш горячих вопросов: Redis или заглушка
	var hotCache repository.HotQuestionCache
	if cfg.HasRedis() {
		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		logger.Info("Connected to Redis")

		hotCache = repository.NewHotQuestionCache(redis)
	} else {
		hotCache = repository.NewNoopHotQuestionCache()
		logger.Warn("REDIS_HOST не задан, кэш горячих вопросов отключён")
	}

	// Клиент внешнего генератора текста
	generator := llm.NewClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model)

	// Инициализация сервисов
	fortuneService := service.NewFortuneService(deviceRepo, readingRepo, generator, logger)
	questionService := service.NewQuestionService(deviceRepo, readingRepo, tagRepo, generator, logger)
	hotService := service.NewHotQuestionService(tagRepo, hotRepo, hotCache, logger)

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})

	var cronAuth gin.HandlerFunc
	if cfg.Cron.Secret != "" {
		cronAuth = middleware.RequireCronSecret(cfg.Cron.Secret)
		logger.Info("Cron endpoint authentication enabled")
	}

	// Настройка роутера
	router := handler.NewRouter(fortuneService, questionService, hotService, rateLimiter, cronAuth, logger)

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
