package repository

import (
	"context"
	"fmt"

	"github.com/SergeiKhy/coin-fortune/internal/models"
)

// TagClickRepository журнал кликов по тегам-вопросам (только добавление)
type TagClickRepository interface {
	Record(ctx context.Context, questionText, fingerprint, clickDate string) error
	TopByDate(ctx context.Context, clickDate string, limit int) ([]models.QuestionClickCount, error)
}

// HotQuestionRepository дневной рейтинг горячих вопросов
type HotQuestionRepository interface {
	InsertRanked(ctx context.Context, questions []models.HotQuestion) error
	DeleteOlderThan(ctx context.Context, statsDate string) error
	GetLatest(ctx context.Context) ([]string, error)
}

type tagClickRepository struct {
	db *PostgresDB
}

func NewTagClickRepository(db *PostgresDB) TagClickRepository {
	return &tagClickRepository{db: db}
}

func (r *tagClickRepository) Record(ctx context.Context, questionText, fingerprint, clickDate string) error {
	query := `
		INSERT INTO question_tag_clicks (question_text, fingerprint, click_date)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Pool.Exec(ctx, query, questionText, fingerprint, clickDate); err != nil {
		return fmt.Errorf("failed to record tag click: %w", err)
	}

	return nil
}

// TopByDate агрегирует клики за дату по тексту вопроса.
// Равные счётчики упорядочиваются по тексту — стабильный tie-break.
func (r *tagClickRepository) TopByDate(ctx context.Context, clickDate string, limit int) ([]models.QuestionClickCount, error) {
	query := `
		SELECT question_text, COUNT(*) AS click_count
		FROM question_tag_clicks
		WHERE click_date = $1
		GROUP BY question_text
		ORDER BY click_count DESC, question_text
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, clickDate, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tag clicks: %w", err)
	}
	defer rows.Close()

	var counts []models.QuestionClickCount
	for rows.Next() {
		var c models.QuestionClickCount
		if err := rows.Scan(&c.QuestionText, &c.ClickCount); err != nil {
			return nil, fmt.Errorf("failed to scan click count: %w", err)
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click counts: %w", err)
	}

	return counts, nil
}

type hotQuestionRepository struct {
	db *PostgresDB
}

func NewHotQuestionRepository(db *PostgresDB) HotQuestionRepository {
	return &hotQuestionRepository{db: db}
}

func (r *hotQuestionRepository) InsertRanked(ctx context.Context, questions []models.HotQuestion) error {
	query := `
		INSERT INTO hot_questions (question_text, click_count, stats_date, rank)
		VALUES ($1, $2, $3, $4)
	`

	for _, q := range questions {
		if _, err := r.db.Pool.Exec(ctx, query, q.QuestionText, q.ClickCount, q.StatsDate, q.Rank); err != nil {
			return fmt.Errorf("failed to insert hot question: %w", err)
		}
	}

	return nil
}

// DeleteOlderThan чистит рейтинги старше порога (политика хранения 7 дней)
func (r *hotQuestionRepository) DeleteOlderThan(ctx context.Context, statsDate string) error {
	query := `DELETE FROM hot_questions WHERE stats_date < $1`

	if _, err := r.db.Pool.Exec(ctx, query, statsDate); err != nil {
		return fmt.Errorf("failed to prune hot questions: %w", err)
	}

	return nil
}

// GetLatest возвращает список вопросов самой свежей даты статистики по рангу.
// Пустой список — нормальный ответ до первого запуска batch-задачи.
func (r *hotQuestionRepository) GetLatest(ctx context.Context) ([]string, error) {
	query := `
		SELECT question_text
		FROM hot_questions
		WHERE stats_date = (SELECT MAX(stats_date) FROM hot_questions)
		ORDER BY rank
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get hot questions: %w", err)
	}
	defer rows.Close()

	questions := []string{}
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan hot question: %w", err)
		}
		questions = append(questions, text)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hot questions: %w", err)
	}

	return questions, nil
}
