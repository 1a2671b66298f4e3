package service_test

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupHotQuestionService создаёт сервис рейтинга на in-memory хранилище без кэша
func setupHotQuestionService() (service.HotQuestionService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	logger, _ := zap.NewDevelopment()
	hotService := service.NewHotQuestionService(store, store, repository.NewNoopHotQuestionCache(), logger)
	return hotService, store
}

// recordClicks записывает n кликов по вопросу за дату
func recordClicks(t *testing.T, store *repository.MemoryStore, question, date string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, store.Record(context.Background(), question, "dev-1", date))
	}
}

// TestHotQuestionService_GetToday_Empty проверяет пустой рейтинг до первого расчёта
func TestHotQuestionService_GetToday_Empty(t *testing.T) {
	hotService, _ := setupHotQuestionService()

	questions, err := hotService.GetToday(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, questions)
	assert.Empty(t, questions)
}

// TestHotQuestionService_Calculate_Ranking проверяет построение топ-5:
// сортировка по кликам, стабильный tie-break по тексту, без добивки до 5
func TestHotQuestionService_Calculate_Ranking(t *testing.T) {
	hotService, store := setupHotQuestionService()
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	yesterday := chinatime.Yesterday()
	recordClicks(t, store, "вопрос-A", yesterday, 10)
	recordClicks(t, store, "вопрос-B", yesterday, 7)
	recordClicks(t, store, "вопрос-C", yesterday, 7)
	recordClicks(t, store, "вопрос-D", yesterday, 3)

	// Сегодняшние клики не должны попасть в расчёт
	recordClicks(t, store, "вопрос-сегодня", chinatime.Today(), 100)

	require.NoError(t, hotService.Calculate(ctx))

	questions, err := hotService.GetToday(ctx)
	require.NoError(t, err)

	// 4 вопроса — пятой строки нет, добивки не бывает
	assert.Equal(t, []string{"вопрос-A", "вопрос-B", "вопрос-C", "вопрос-D"}, questions)
}

// TestHotQuestionService_Calculate_TopFiveOnly проверяет отсечение до 5 строк
func TestHotQuestionService_Calculate_TopFiveOnly(t *testing.T) {
	hotService, store := setupHotQuestionService()
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	yesterday := chinatime.Yesterday()
	for i, question := range []string{"в1", "в2", "в3", "в4", "в5", "в6", "в7"} {
		recordClicks(t, store, question, yesterday, 10-i)
	}

	require.NoError(t, hotService.Calculate(ctx))

	questions, err := hotService.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"в1", "в2", "в3", "в4", "в5"}, questions)
}

// TestHotQuestionService_Calculate_NoClicks_NoOp проверяет no-op без кликов:
// предыдущий рейтинг не затирается
func TestHotQuestionService_Calculate_NoClicks_NoOp(t *testing.T) {
	hotService, store := setupHotQuestionService()
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	// Рейтинг за позавчера уже существует
	require.NoError(t, store.InsertRanked(ctx, []models.HotQuestion{
		{QuestionText: "старый вопрос", ClickCount: 5, StatsDate: chinatime.DaysAgo(2), Rank: 1},
	}))

	require.NoError(t, hotService.Calculate(ctx))

	questions, err := hotService.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"старый вопрос"}, questions)
}

// TestHotQuestionService_Calculate_Retention проверяет чистку рейтингов старше 7 дней
func TestHotQuestionService_Calculate_Retention(t *testing.T) {
	hotService, store := setupHotQuestionService()
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	require.NoError(t, store.InsertRanked(ctx, []models.HotQuestion{
		{QuestionText: "очень старый", ClickCount: 9, StatsDate: chinatime.DaysAgo(10), Rank: 1},
	}))

	recordClicks(t, store, "свежий вопрос", chinatime.Yesterday(), 2)
	require.NoError(t, hotService.Calculate(ctx))

	// Самая свежая дата — вчера; старые строки физически удалены
	questions, err := hotService.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"свежий вопрос"}, questions)

	require.NoError(t, store.DeleteOlderThan(ctx, chinatime.Today()))
	questions, err = store.GetLatest(ctx)
	require.NoError(t, err)
	assert.Empty(t, questions)
}

// TestHotQuestionService_GetToday_ReflectsYesterday проверяет, что рейтинг
// отражает вчерашние данные даже при наличии сегодняшних кликов
func TestHotQuestionService_GetToday_ReflectsYesterday(t *testing.T) {
	hotService, store := setupHotQuestionService()
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 3, 10, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	recordClicks(t, store, "вчерашний лидер", chinatime.Yesterday(), 3)
	require.NoError(t, hotService.Calculate(ctx))

	recordClicks(t, store, "сегодняшний хит", chinatime.Today(), 50)

	questions, err := hotService.GetToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"вчерашний лидер"}, questions)
}
