package models

import (
	"time"
)

// TagClick клик по тегу-вопросу (append-only)
type TagClick struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question_text"`
	Fingerprint  string    `json:"fingerprint"`
	ClickDate    string    `json:"click_date"`
	CreatedAt    time.Time `json:"created_at"`
}

// QuestionClickCount агрегат кликов по тексту вопроса за день
type QuestionClickCount struct {
	QuestionText string `json:"question_text"`
	ClickCount   int64  `json:"click_count"`
}

// HotQuestion строка дневного рейтинга (rank 1-5)
type HotQuestion struct {
	ID           int64     `json:"id"`
	QuestionText string    `json:"question_text"`
	ClickCount   int64     `json:"click_count"`
	StatsDate    string    `json:"stats_date"`
	Rank         int       `json:"rank"`
	CreatedAt    time.Time `json:"created_at"`
}
