package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"github.com/SergeiKhy/coin-fortune/internal/service"
	"github.com/SergeiKhy/coin-fortune/internal/service/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullAnalysisJSON = `{
	"greeting": "阳光还没完全升起，而你已经值得被温柔对待。",
	"outfit": "今天适合一些柔软与轻盈的穿搭。",
	"color": "湖水蓝——它会让你整天都感到清爽、冷静。",
	"mood": "内心安静而有力量，适合开启专注的一天。",
	"career": "今天的思维清晰，适合做那些需要逻辑和规划的工作。",
	"love": "适合写点真心话给某个人。",
	"luck": "路上巧遇喜欢的音乐，就是今天的小确幸。"
}`

// setupFortuneService создаёт тестовое окружение с in-memory хранилищем
func setupFortuneService(response string) (service.FortuneService, *repository.MemoryStore, *mocks.MockGenerator) {
	store := repository.NewMemoryStore()
	generator := mocks.NewMockGenerator(response)
	logger, _ := zap.NewDevelopment()
	fortuneService := service.NewFortuneService(store, store, generator, logger)
	return fortuneService, store, generator
}

// fixedTime фиксирует часы приложения на заданный момент UTC
func fixedTime(t *testing.T, moment time.Time) {
	t.Helper()
	chinatime.Now = func() time.Time { return moment }
	t.Cleanup(func() { chinatime.Now = time.Now })
}

// TestFortuneService_GetToday_FirstToss проверяет первый бросок дня
func TestFortuneService_GetToday_FirstToss(t *testing.T) {
	fortuneService, _, generator := setupFortuneService("")

	ctx := context.Background()
	reading, err := fortuneService.GetToday(ctx, "dev-1")

	require.NoError(t, err)
	assert.False(t, reading.IsCached)
	assert.NotZero(t, reading.ID)
	assert.Empty(t, reading.Analysis)

	// 6 позиций, каждая — число решек из 3 монет
	require.Len(t, reading.CoinResults, 6)
	for _, v := range reading.CoinResults {
		assert.GreaterOrEqual(t, v, 0)
		assert.LessOrEqual(t, v, 3)
	}

	// Базовый бросок не ходит в генератор
	assert.Equal(t, 0, generator.CallCount())
}

// TestFortuneService_GetToday_Idempotent проверяет идемпотентность в пределах дня
func TestFortuneService_GetToday_Idempotent(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("")

	ctx := context.Background()
	first, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	second, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	// Один набор монет на устройство в день
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CoinResults, second.CoinResults)
	assert.False(t, first.IsCached)
	assert.True(t, second.IsCached)
}

// TestFortuneService_GetToday_NewDayNewToss проверяет смену календарного дня в UTC+8
func TestFortuneService_GetToday_NewDayNewToss(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("")
	ctx := context.Background()

	// 2024-01-01 23:00 UTC+8
	fixedTime(t, time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC))
	first, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	// 2024-01-02 00:30 UTC+8 — уже следующий день
	chinatime.Now = func() time.Time { return time.Date(2024, 1, 1, 16, 30, 0, 0, time.UTC) }
	second, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.IsCached)
}

// TestFortuneService_GetToday_SeparateDevices проверяет независимость устройств
func TestFortuneService_GetToday_SeparateDevices(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("")
	ctx := context.Background()

	first, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	second, err := fortuneService.GetToday(ctx, "dev-2")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.False(t, second.IsCached)
}

// TestFortuneService_GetField_RequiresToss проверяет зависимость от базового броска
func TestFortuneService_GetField_RequiresToss(t *testing.T) {
	fortuneService, _, generator := setupFortuneService("любой текст")

	ctx := context.Background()
	result, err := fortuneService.GetField(ctx, "dev-1", "greeting")

	assert.ErrorIs(t, err, service.ErrNoTossToday)
	assert.Nil(t, result)
	assert.Equal(t, 0, generator.CallCount())
}

// TestFortuneService_GetField_UnknownField проверяет валидацию имени поля
func TestFortuneService_GetField_UnknownField(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("")

	ctx := context.Background()
	_, err := fortuneService.GetField(ctx, "dev-1", "horoscope")

	assert.ErrorIs(t, err, service.ErrUnknownField)
}

// TestFortuneService_GetField_GeneratesThenCaches проверяет кэширование поля:
// повторный запрос возвращает тот же текст без обращения к генератору
func TestFortuneService_GetField_GeneratesThenCaches(t *testing.T) {
	fortuneService, _, generator := setupFortuneService("湖水蓝——清爽、冷静。")
	ctx := context.Background()

	_, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	first, err := fortuneService.GetField(ctx, "dev-1", "color")
	require.NoError(t, err)
	assert.False(t, first.IsCached)
	assert.Equal(t, "湖水蓝——清爽、冷静。", first.Value)
	assert.Equal(t, 1, generator.CallCount())

	second, err := fortuneService.GetField(ctx, "dev-1", "color")
	require.NoError(t, err)
	assert.True(t, second.IsCached)
	assert.Equal(t, first.Value, second.Value)
	assert.Equal(t, 1, generator.CallCount())
}

// TestFortuneService_GetField_IndependentFields проверяет изоляцию полей:
// ошибка генерации одного поля не мешает остальным
func TestFortuneService_GetField_IndependentFields(t *testing.T) {
	fortuneService, _, generator := setupFortuneService("текст поля")
	ctx := context.Background()

	_, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	generator.Err = fmt.Errorf("generator down")
	_, err = fortuneService.GetField(ctx, "dev-1", "mood")
	assert.Error(t, err)

	generator.Err = nil
	result, err := fortuneService.GetField(ctx, "dev-1", "career")
	require.NoError(t, err)
	assert.Equal(t, "текст поля", result.Value)

	// Поле с упавшей генерацией остаётся незаполненным и генерируется заново
	retry, err := fortuneService.GetField(ctx, "dev-1", "mood")
	require.NoError(t, err)
	assert.False(t, retry.IsCached)
}

// TestFortuneService_AnalyzeToday проверяет структурированный полный разбор
func TestFortuneService_AnalyzeToday(t *testing.T) {
	fortuneService, _, generator := setupFortuneService(fullAnalysisJSON)
	ctx := context.Background()

	_, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	reading, err := fortuneService.AnalyzeToday(ctx, "dev-1")
	require.NoError(t, err)
	assert.False(t, reading.IsCached)
	assert.Equal(t, 1, generator.CallCount())

	for _, field := range []string{"greeting", "outfit", "color", "mood", "career", "love", "luck"} {
		assert.NotEmpty(t, reading.Analysis[field], "поле %s должно быть заполнено", field)
	}

	// Генератор вызывался со схемой структурированного ответа
	require.NotNil(t, generator.LastRequest())
	require.NotNil(t, generator.LastRequest().Schema)
	assert.Equal(t, "fortune_analysis", generator.LastRequest().Schema.Name)

	// Повторный разбор отдаёт кэш без генерации
	cached, err := fortuneService.AnalyzeToday(ctx, "dev-1")
	require.NoError(t, err)
	assert.True(t, cached.IsCached)
	assert.Equal(t, 1, generator.CallCount())

	// Отдельные поля после полного разбора тоже читаются из кэша
	field, err := fortuneService.GetField(ctx, "dev-1", "luck")
	require.NoError(t, err)
	assert.True(t, field.IsCached)
	assert.Equal(t, 1, generator.CallCount())
}

// TestFortuneService_AnalyzeToday_RequiresToss проверяет порядок операций
func TestFortuneService_AnalyzeToday_RequiresToss(t *testing.T) {
	fortuneService, _, _ := setupFortuneService(fullAnalysisJSON)

	ctx := context.Background()
	_, err := fortuneService.AnalyzeToday(ctx, "dev-1")

	assert.ErrorIs(t, err, service.ErrNoTossToday)
}

// TestFortuneService_AnalyzeToday_MalformedResponse проверяет обработку битого JSON
func TestFortuneService_AnalyzeToday_MalformedResponse(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("не json")
	ctx := context.Background()

	_, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	_, err = fortuneService.AnalyzeToday(ctx, "dev-1")
	assert.Error(t, err)
}

// TestFortuneService_History проверяет историю бросков устройства
func TestFortuneService_History(t *testing.T) {
	fortuneService, _, _ := setupFortuneService("")
	ctx := context.Background()

	_, err := fortuneService.GetToday(ctx, "dev-1")
	require.NoError(t, err)

	readings, err := fortuneService.History(ctx, "dev-1", 0)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Len(t, readings[0].CoinResults, 6)

	// История чужого устройства пуста
	other, err := fortuneService.History(ctx, "dev-2", 10)
	require.NoError(t, err)
	assert.Empty(t, other)
}
