package service

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/SergeiKhy/coin-fortune/internal/chinatime"
	"github.com/SergeiKhy/coin-fortune/internal/llm"
	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/SergeiKhy/coin-fortune/internal/repository"
	"go.uber.org/zap"
)

// Дневной лимит вопросов на устройство
const dailyQuestionLimit = 6

// Час (UTC+8), начиная с которого используются ночные тексты лимита
const nightMessagesHour = 20

// Тексты при исчерпании дневного лимита
var limitMessagesDaytime = []string{
	"今天的智慧已耗尽，明天再继续为你出谋划策～",
	"小脑瓜冒烟啦！明天再来帮你想主意吧～",
	"今天的小困惑已经努力回答完啦，请明天再来呀～",
	"哎呀，小指南针今天转累了，明天再陪你找方向～",
	"问题超限，再问就要剧透宇宙奥秘了～明天继续哦！",
}

var limitMessagesNight = []string{
	"问题就先放一放，夜里睡个好觉，明天再一起想办法～",
	"你今天已经很努力啦，明天再继续帮你出主意，好不好～",
	"留一点小困惑给明天，就像留一点梦给星星～",
	"问题不是今天一定要解完的事，明天继续一起解锁生活～",
}

// Системный промпт Q&A с запретом служебной лексики
const questionSystemPrompt = "请根据六爻卦象解读这个问题，直接说结论，不要说卦象和分析过程，" +
	"请用温暖、鼓励的语气，语言要直白，不要用古语，比如\"您所问之事\"\"并无大碍\"\"宜\"\"不宜\"，" +
	"但需要进行个性化分析，不要有括号内的解释。" +
	"不要使用'硬币'、'卦'、'卦象'、'象'、'此象'、'运势'、'爻'等词汇。" +
	"一定不要出现'硬币'、'卦'、'卦象'、'象'、'此象'、'运势'、'爻'几个字"

// QuestionService решатель «маленьких затруднений» с дневным лимитом
type QuestionService interface {
	Explain(ctx context.Context, fingerprint, question string) (*models.Explanation, error)
}

type questionService struct {
	deviceRepo  repository.DeviceRepository
	readingRepo repository.ReadingRepository
	tagClicks   repository.TagClickRepository
	generator   llm.Generator
	logger      *zap.Logger
}

func NewQuestionService(
	deviceRepo repository.DeviceRepository,
	readingRepo repository.ReadingRepository,
	tagClicks repository.TagClickRepository,
	generator llm.Generator,
	logger *zap.Logger,
) QuestionService {
	return &questionService{
		deviceRepo:  deviceRepo,
		readingRepo: readingRepo,
		tagClicks:   tagClicks,
		generator:   generator,
		logger:      logger,
	}
}

// Explain отвечает на вопрос пользователя. Свыше 6 вопросов в день (UTC+8)
// возвращается готовый текст лимита без обращения к генератору — это не ошибка.
// Для каждого ответа бросается свежий набор монет, независимый от дневного.
func (s *questionService) Explain(ctx context.Context, fingerprint, question string) (*models.Explanation, error) {
	device, err := s.deviceRepo.GetOrCreate(ctx, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve device: %w", err)
	}

	today := chinatime.Today()

	count, err := s.readingRepo.CountByType(ctx, device.ID, today, models.ReadingTypeQuestionAnswer)
	if err != nil {
		return nil, err
	}
	if count >= dailyQuestionLimit {
		message := randomLimitMessage()
		return &models.Explanation{
			Explanation:   message,
			LimitExceeded: true,
			Message:       message,
		}, nil
	}

	coins, err := tossCoins()
	if err != nil {
		return nil, err
	}

	userMessage := describeYao(coins) + fmt.Sprintf("请给我关于“%s”的建议。", question)

	explanation, err := s.generator.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: questionSystemPrompt},
			{Role: "user", Content: userMessage},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to explain question: %w", err)
	}

	// Запись создаётся только ради учёта лимита; падение между вызовом
	// генератора и этой записью недосчитает использование — принятый риск
	reading := &models.Reading{
		DeviceID:    device.ID,
		CoinResults: coins,
		Analysis:    models.Analysis{},
		TossDate:    today,
		Type:        models.ReadingTypeQuestionAnswer,
	}
	if err := s.readingRepo.Create(ctx, reading); err != nil {
		return nil, err
	}

	// Клик по тегу не критичен для ответа
	if err := s.tagClicks.Record(ctx, question, fingerprint, today); err != nil {
		s.logger.Warn("Не удалось записать клик по тегу",
			zap.String("question", question),
			zap.Error(err),
		)
	}

	return &models.Explanation{Explanation: explanation, LimitExceeded: false}, nil
}

// randomLimitMessage выбирает текст лимита: после 20:00 (UTC+8) — ночной пул
func randomLimitMessage() string {
	if chinatime.Hour() >= nightMessagesHour {
		return limitMessagesNight[rand.IntN(len(limitMessagesNight))]
	}
	return limitMessagesDaytime[rand.IntN(len(limitMessagesDaytime))]
}
