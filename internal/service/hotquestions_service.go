package service

import (
	"context"
	"time"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"go.uber.org/zap"
)

const (
	hotQuestionsLimit     = 5
	hotQuestionsRetention = 7 // дней хранения рейтингов
	hotQuestionsCacheTTL  = time.Hour
)

// HotQuestionService дневной рейтинг горячих вопросов
type HotQuestionService interface {
	Calculate(ctx context.Context) error
	GetToday(ctx context.Context) ([]string, error)
}

type hotQuestionService struct {
	tagClicks repository.TagClickRepository
	hotRepo   repository.HotQuestionRepository
	cache     repository.HotQuestionCache
	logger    *zap.Logger
}

func NewHotQuestionService(
	tagClicks repository.TagClickRepository,
	hotRepo repository.HotQuestionRepository,
	cache repository.HotQuestionCache,
	logger *zap.Logger,
) HotQuestionService {
	return &hotQuestionService{
		tagClicks: tagClicks,
		hotRepo:   hotRepo,
		cache:     cache,
		logger:    logger,
	}
}

// Calculate строит топ-5 вчерашнего дня (UTC+8): агрегация кликов, чистка
// рейтингов старше 7 дней, вставка рангов 1..5. При нуле кликов — no-op,
// вчерашний рейтинг не затирается. Повторный запуск за ту же дату вставит
// дубликаты строк — защиты нет, задача рассчитана на один запуск в день.
func (s *hotQuestionService) Calculate(ctx context.Context) error {
	yesterday := chinatime.Yesterday()

	counts, err := s.tagClicks.TopByDate(ctx, yesterday, hotQuestionsLimit)
	if err != nil {
		return err
	}

	if len(counts) == 0 {
		s.logger.Info("Нет кликов за вчера, расчёт горячих вопросов пропущен",
			zap.String("date", yesterday),
		)
		return nil
	}

	if err := s.hotRepo.DeleteOlderThan(ctx, chinatime.DaysAgo(hotQuestionsRetention)); err != nil {
		return err
	}

	ranked := make([]models.HotQuestion, 0, len(counts))
	for i, c := range counts {
		ranked = append(ranked, models.HotQuestion{
			QuestionText: c.QuestionText,
			ClickCount:   c.ClickCount,
			StatsDate:    yesterday,
			Rank:         i + 1,
		})
	}

	if err := s.hotRepo.InsertRanked(ctx, ranked); err != nil {
		return err
	}

	// Сбрасываем кэш, чтобы читатели увидели свежий рейтинг
	if err := s.cache.Delete(ctx); err != nil {
		s.logger.Warn("Не удалось сбросить кэш горячих вопросов", zap.Error(err))
	}

	s.logger.Info("Рейтинг горячих вопросов рассчитан",
		zap.String("date", yesterday),
		zap.Int("count", len(ranked)),
	)

	return nil
}

// GetToday возвращает рейтинг самой свежей даты статистики (то есть вчерашние
// данные — сегодняшняя агрегация ещё не выполнялась). Пустой список до первого
// запуска batch-задачи — нормальный ответ.
func (s *hotQuestionService) GetToday(ctx context.Context) ([]string, error) {
	if questions, err := s.cache.Get(ctx); err == nil {
		return questions, nil
	}

	questions, err := s.hotRepo.GetLatest(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, questions, hotQuestionsCacheTTL); err != nil {
		s.logger.Warn("Не удалось закэшировать горячие вопросы", zap.Error(err))
	}

	return questions, nil
}
