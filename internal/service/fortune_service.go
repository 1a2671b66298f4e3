package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/llm"
	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"go.uber.org/zap"
)

// Ошибки сервиса
var (
	ErrNoTossToday = errors.New("сегодняшний бросок ещё не выполнен")
)

// Лимиты истории бросков
const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 50
)

// Системный промпт полного разбора (структурированный JSON-ответ)
const analysisSystemPrompt = "你是一位专业的个人发展顾问，基于提供的数字特征给出个性化指引。" +
	"必须严格输出 JSON，键名只能是 greeting/outfit/color/mood/career/love/luck，对应值为简洁中文字符串；不得输出 Markdown、解释、思维链、额外字段。" +
	"语气要温暖、鼓励，内容直白，避免使用“硬币/卦/卦象/象/此象/运势/爻”等字样。"

// Системный промпт генерации одного поля (свободный текст)
const fieldSystemPrompt = "你是一位专业的个人发展顾问，基于提供的数字特征给出个性化指引。" +
	"语气要温暖、鼓励，内容直白，避免使用“硬币/卦/卦象/象/此象/运势/爻”等字样。" +
	"只输出所要求栏目的正文，不要标题、不要解释、不要 Markdown。"

// FortuneService контроллер жизненного цикла дневного чтения
type FortuneService interface {
	GetToday(ctx context.Context, fingerprint string) (*models.TodayReading, error)
	GetField(ctx context.Context, fingerprint, fieldName string) (*models.FieldResult, error)
	AnalyzeToday(ctx context.Context, fingerprint string) (*models.TodayReading, error)
	History(ctx context.Context, fingerprint string, limit int) ([]*models.Reading, error)
}

type fortuneService struct {
	deviceRepo  repository.DeviceRepository
	readingRepo repository.ReadingRepository
	generator   llm.Generator
	logger      *zap.Logger
}

func NewFortuneService(
	deviceRepo repository.DeviceRepository,
	readingRepo repository.ReadingRepository,
	generator llm.Generator,
	logger *zap.Logger,
) FortuneService {
	return &fortuneService{
		deviceRepo:  deviceRepo,
		readingRepo: readingRepo,
		generator:   generator,
		logger:      logger,
	}
}

// GetToday возвращает бросок устройства за сегодня (UTC+8), создавая его при первом
// обращении. Повторные вызовы в течение дня идемпотентны: один набор монет на день.
// Генератор здесь не вызывается — поля разбора подгружаются отдельно через GetField.
func (s *fortuneService) GetToday(ctx context.Context, fingerprint string) (*models.TodayReading, error) {
	device, err := s.deviceRepo.GetOrCreate(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	today := chinatime.Today()

	existing, err := s.readingRepo.GetDaily(ctx, device.ID, today)
	if err == nil {
		return &models.TodayReading{
			ID:          existing.ID,
			CoinResults: existing.CoinResults,
			Analysis:    existing.Analysis,
			IsCached:    true,
		}, nil
	}
	if !errors.Is(err, repository.ErrReadingNotFound) {
		return nil, err
	}

	coins, err := tossCoins()
	if err != nil {
		return nil, err
	}

	reading := &models.Reading{
		DeviceID:    device.ID,
		CoinResults: coins,
		Analysis:    models.Analysis{},
		TossDate:    today,
		Type:        models.ReadingTypeDailyFortune,
	}

	// Проверка выше и insert не обёрнуты в транзакцию: при гонке двух первых
	// запросов одного устройства возможна дублирующая запись, читается всегда первая
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.UpdateLastToss(ctx, device.ID, reading.ID, today); err != nil {
		return nil, err
	}

	return &models.TodayReading{
		ID:          reading.ID,
		CoinResults: reading.CoinResults,
		Analysis:    reading.Analysis,
		IsCached:    false,
	}, nil
}

// GetField возвращает одно поле разбора, генерируя его при первом запросе.
// Требует существующего дневного броска (ErrNoTossToday иначе).
// Кэш-проверка и запись не под блокировкой: два конкурентных промаха дадут
// два вызова генератора, сохранится последний — расточительно, но корректно.
func (s *fortuneService) GetField(ctx context.Context, fingerprint, fieldName string) (*models.FieldResult, error) {
	field, err := ParseField(fieldName)
	if err != nil {
		return nil, err
	}

	device, err := s.deviceRepo.GetOrCreate(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	reading, err := s.readingRepo.GetDaily(ctx, device.ID, chinatime.Today())
	if err != nil {
		if errors.Is(err, repository.ErrReadingNotFound) {
			return nil, ErrNoTossToday
		}
		return nil, err
	}

	if value, ok := reading.Analysis[field.Name()]; ok && value != "" {
		return &models.FieldResult{FieldName: field.Name(), Value: value, IsCached: true}, nil
	}

	value, err := s.generator.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: fieldSystemPrompt},
			{Role: "user", Content: buildFieldPrompt(field, reading.CoinResults)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate field %s: %w", field.Name(), err)
	}

	if err := s.readingRepo.SetAnalysisField(ctx, reading.ID, field.Name(), value); err != nil {
		return nil, err
	}

	return &models.FieldResult{FieldName: field.Name(), Value: value, IsCached: false}, nil
}

// AnalyzeToday заполняет все 7 полей одним структурированным вызовом генератора.
// Если разбор уже полон, возвращает его без обращения к генератору.
func (s *fortuneService) AnalyzeToday(ctx context.Context, fingerprint string) (*models.TodayReading, error) {
	device, err := s.deviceRepo.GetOrCreate(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	reading, err := s.readingRepo.GetDaily(ctx, device.ID, chinatime.Today())
	if err != nil {
		if errors.Is(err, repository.ErrReadingNotFound) {
			return nil, ErrNoTossToday
		}
		return nil, err
	}

	if analysisComplete(reading.Analysis) {
		return &models.TodayReading{
			ID:          reading.ID,
			CoinResults: reading.CoinResults,
			Analysis:    reading.Analysis,
			IsCached:    true,
		}, nil
	}

	content, err := s.generator.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: analysisSystemPrompt},
			{Role: "user", Content: buildAnalysisPrompt(reading.CoinResults)},
		},
		Schema: analysisSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate analysis: %w", err)
	}

	var analysis models.Analysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		return nil, fmt.Errorf("malformed analysis from generator: %w", err)
	}

	if err := s.readingRepo.SetAnalysis(ctx, reading.ID, analysis); err != nil {
		return nil, err
	}

	return &models.TodayReading{
		ID:          reading.ID,
		CoinResults: reading.CoinResults,
		Analysis:    analysis,
		IsCached:    false,
	}, nil
}

// History возвращает историю бросков устройства
func (s *fortuneService) History(ctx context.Context, fingerprint string, limit int) ([]*models.Reading, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	device, err := s.deviceRepo.GetOrCreate(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	return s.readingRepo.ListByDevice(ctx, device.ID, limit)
}

// analysisComplete проверяет, заполнены ли все 7 полей
func analysisComplete(analysis models.Analysis) bool {
	for _, field := range AllFields() {
		if analysis[field.Name()] == "" {
			return false
		}
	}
	return true
}

// buildFieldPrompt промпт генерации одного поля
func buildFieldPrompt(field Field, coins []int) string {
	return fmt.Sprintf(
		"%s\n\n请根据这些特征，只为用户提供「%s」：%s。请用温暖、鼓励、充满希望的语气，直接输出正文。",
		coinTraits(coins),
		field.Label(),
		field.description(),
	)
}

// buildAnalysisPrompt промпт полного разбора по всем рубрикам
func buildAnalysisPrompt(coins []int) string {
	prompt := coinTraits(coins) + "\n\n请根据这些特征，为用户提供个性化的指引。分析应该包括：\n"
	for i, field := range AllFields() {
		prompt += fmt.Sprintf("%d. %s：%s\n", i+1, field.Label(), field.description())
	}
	prompt += "\n请用温暖、鼓励、充满希望的语气进行分析。"
	return prompt
}

// analysisSchema json-схема структурированного ответа полного разбора
func analysisSchema() *llm.JSONSchema {
	properties := map[string]any{}
	required := make([]string, 0, len(AllFields()))
	for _, field := range AllFields() {
		properties[field.Name()] = map[string]any{
			"type":        "string",
			"description": field.Label() + "：" + field.description(),
		}
		required = append(required, field.Name())
	}

	return &llm.JSONSchema{
		Name:   "fortune_analysis",
		Strict: true,
		Schema: map[string]any{
			"type":                 "object",
			"properties":           properties,
			"required":             required,
			"additionalProperties": false,
		},
	}
}
