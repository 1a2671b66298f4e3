package main

import (
	"context"
	"log"
	"time"

	"github.com/SergeiKhy/coin-fortune/internal/config"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"go.uber.org/zap"
)

// Одноразовый запуск расчёта горячих вопросов.
// Запускается внешним планировщиком раз в сутки (04:00 по UTC+8).
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if !cfg.HasDatabase() {
		// Без внешней БД считать нечего: in-memory хранилище живёт в процессе API
		logger.Warn("DB_HOST не задан, расчёт горячих вопросов пропущен")
		return
	}

	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	var hotCache repository.HotQuestionCache
	if cfg.HasRedis() {
		redis, err := repository.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redis.Close()
		hotCache = repository.NewHotQuestionCache(redis)
	} else {
		hotCache = repository.NewNoopHotQuestionCache()
	}

	hotService := service.NewHotQuestionService(
		repository.NewTagClickRepository(db),
		repository.NewHotQuestionRepository(db),
		hotCache,
		logger,
	)

	logger.Info("Starting hot questions calculation")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := hotService.Calculate(ctx); err != nil {
		logger.Fatal("Hot questions calculation failed", zap.Error(err))
	}

	logger.Info("Hot questions calculation completed")
}
