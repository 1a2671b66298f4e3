package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/SergeiKhy/coin-fortune/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupQuestionService создаёт тестовое окружение Q&A сервиса
func setupQuestionService(response string) (service.QuestionService, *repository.MemoryStore, *mocks.MockGenerator) {
	store := repository.NewMemoryStore()
	generator := mocks.NewMockGenerator(response)
	logger, _ := zap.NewDevelopment()
	questionService := service.NewQuestionService(store, store, store, generator, logger)
	return questionService, store, generator
}

// TestQuestionService_Explain_Success проверяет успешный ответ на вопрос
func TestQuestionService_Explain_Success(t *testing.T) {
	questionService, store, generator := setupQuestionService("慢慢来，你已经在正确的路上。")
	ctx := context.Background()

	result, err := questionService.Explain(ctx, "dev-1", "最近工作压力很大怎么办")

	require.NoError(t, err)
	assert.False(t, result.LimitExceeded)
	assert.Equal(t, "慢慢来，你已经在正确的路上。", result.Explanation)
	assert.Equal(t, 1, generator.CallCount())

	// Создана запись учёта использования
	device, err := store.GetOrCreate(ctx, "dev-1")
	require.NoError(t, err)
	count, err := store.CountByType(ctx, device.ID, chinatime.Today(), models.ReadingTypeQuestionAnswer)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Зафиксирован клик по тегу с текстом вопроса
	clicks, err := store.TopByDate(ctx, chinatime.Today(), 5)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "最近工作压力很大怎么办", clicks[0].QuestionText)
}

// TestQuestionService_Explain_DailyLimit проверяет дневной лимит в 6 вопросов:
// начиная с 7-го вызова возвращается текст лимита без обращения к генератору
func TestQuestionService_Explain_DailyLimit(t *testing.T) {
	questionService, _, generator := setupQuestionService("回答")
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		result, err := questionService.Explain(ctx, "dev-1", fmt.Sprintf("问题 %d", i))
		require.NoError(t, err)
		assert.False(t, result.LimitExceeded)
	}
	assert.Equal(t, 6, generator.CallCount())

	// 7-й и 8-й вызовы: лимит, генератор не трогаем
	for i := 0; i < 2; i++ {
		result, err := questionService.Explain(ctx, "dev-1", "再问一个")
		require.NoError(t, err)
		assert.True(t, result.LimitExceeded)
		assert.NotEmpty(t, result.Explanation)
		assert.NotEmpty(t, result.Message)
	}
	assert.Equal(t, 6, generator.CallCount())

	// Лимит не затрагивает другие устройства
	result, err := questionService.Explain(ctx, "dev-2", "другой вопрос")
	require.NoError(t, err)
	assert.False(t, result.LimitExceeded)
}

// TestQuestionService_Explain_GeneratorError проверяет порядок побочных эффектов:
// при падении генератора использование не учитывается
func TestQuestionService_Explain_GeneratorError(t *testing.T) {
	questionService, store, generator := setupQuestionService("")
	generator.Err = fmt.Errorf("llm unavailable")
	ctx := context.Background()

	result, err := questionService.Explain(ctx, "dev-1", "вопрос")

	assert.Error(t, err)
	assert.Nil(t, result)

	device, err := store.GetOrCreate(ctx, "dev-1")
	require.NoError(t, err)
	count, err := store.CountByType(ctx, device.ID, chinatime.Today(), models.ReadingTypeQuestionAnswer)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestQuestionService_Explain_FreshCoins проверяет, что каждый ответ
// бросает собственный набор монет, не связанный с дневным
func TestQuestionService_Explain_FreshCoins(t *testing.T) {
	questionService, store, _ := setupQuestionService("回答")
	ctx := context.Background()

	_, err := questionService.Explain(ctx, "dev-1", "вопрос")
	require.NoError(t, err)

	device, err := store.GetOrCreate(ctx, "dev-1")
	require.NoError(t, err)
	readings, err := store.ListByDevice(ctx, device.ID, 10)
	require.NoError(t, err)
	require.Len(t, readings, 1)

	assert.Equal(t, models.ReadingTypeQuestionAnswer, readings[0].Type)
	require.Len(t, readings[0].CoinResults, 6)
	for _, v := range readings[0].CoinResults {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 3)
	}
}

// TestQuestionService_Explain_LimitResetsNextDay проверяет сброс лимита со сменой дня
func TestQuestionService_Explain_LimitResetsNextDay(t *testing.T) {
	questionService, _, generator := setupQuestionService("回答")
	ctx := context.Background()

	chinatime.Now = func() time.Time { return time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { chinatime.Now = time.Now })

	for i := 0; i < 6; i++ {
		_, err := questionService.Explain(ctx, "dev-1", "вопрос")
		require.NoError(t, err)
	}

	result, err := questionService.Explain(ctx, "dev-1", "вопрос")
	require.NoError(t, err)
	assert.True(t, result.LimitExceeded)

	// Следующий день по UTC+8
	chinatime.Now = func() time.Time { return time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC) }

	result, err = questionService.Explain(ctx, "dev-1", "вопрос")
	require.NoError(t, err)
	assert.False(t, result.LimitExceeded)
	assert.Equal(t, 7, generator.CallCount())
}
