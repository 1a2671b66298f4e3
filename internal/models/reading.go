package models

import (
	"time"
)

// Типы записей
const (
	ReadingTypeDailyFortune   = "daily_fortune"
	ReadingTypeQuestionAnswer = "question_answer"
)

// Analysis частичная карта из 7 именованных полей разбора.
// Поля заполняются независимо (прогрессивная загрузка).
type Analysis map[string]string

// Reading запись одного броска: 6 значений монет и частичный разбор
type Reading struct {
	ID          int64     `json:"id"`
	DeviceID    int64     `json:"device_id"`
	CoinResults []int     `json:"coin_results"`
	Analysis    Analysis  `json:"analysis"`
	TossDate    string    `json:"toss_date"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// TodayReading ответ coin.getToday
type TodayReading struct {
	ID          int64    `json:"id"`
	CoinResults []int    `json:"coin_results"`
	Analysis    Analysis `json:"analysis"`
	IsCached    bool     `json:"is_cached"`
}

// FieldResult ответ coin.getField
type FieldResult struct {
	FieldName string `json:"field_name"`
	Value     string `json:"value"`
	IsCached  bool   `json:"is_cached"`
}

// Explanation ответ coin.explainQuestion.
// Превышение лимита — не ошибка, а нормальный вариант ответа.
type Explanation struct {
	Explanation   string `json:"explanation"`
	LimitExceeded bool   `json:"limit_exceeded"`
	Message       string `json:"message,omitempty"`
}
