package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrReadingNotFound = errors.New("reading not found")
)

// ReadingRepository хранилище записей бросков и их разборов
type ReadingRepository interface {
	Create(ctx context.Context, reading *models.Reading) error
	GetDaily(ctx context.Context, deviceID int64, tossDate string) (*models.Reading, error)
	SetAnalysisField(ctx context.Context, readingID int64, fieldName, fieldValue string) error
	SetAnalysis(ctx context.Context, readingID int64, analysis models.Analysis) error
	CountByType(ctx context.Context, deviceID int64, tossDate, readingType string) (int, error)
	ListByDevice(ctx context.Context, deviceID int64, limit int) ([]*models.Reading, error)
}

type readingRepository struct {
	db *PostgresDB
}

func NewReadingRepository(db *PostgresDB) ReadingRepository {
	return &readingRepository{db: db}
}

func (r *readingRepository) Create(ctx context.Context, reading *models.Reading) error {
	coins, err := json.Marshal(reading.CoinResults)
	if err != nil {
		return fmt.Errorf("failed to marshal coin results: %w", err)
	}

	query := `
		INSERT INTO coin_readings (device_id, coin_results, toss_date, type)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err = r.db.Pool.QueryRow(
		ctx,
		query,
		reading.DeviceID,
		coins,
		reading.TossDate,
		reading.Type,
	).Scan(&reading.ID, &reading.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create reading: %w", err)
	}

	return nil
}

// GetDaily возвращает запись daily_fortune устройства за указанную дату
func (r *readingRepository) GetDaily(ctx context.Context, deviceID int64, tossDate string) (*models.Reading, error) {
	query := `
		SELECT id, device_id, coin_results, analysis, toss_date::text, type, created_at
		FROM coin_readings
		WHERE device_id = $1 AND toss_date = $2 AND type = $3
		ORDER BY created_at
		LIMIT 1
	`

	return r.scanReading(r.db.Pool.QueryRow(ctx, query, deviceID, tossDate, models.ReadingTypeDailyFortune))
}

// SetAnalysisField дописывает одно поле разбора (merge, не перезапись всей записи).
// При конкурентной генерации одного поля побеждает последняя запись.
func (r *readingRepository) SetAnalysisField(ctx context.Context, readingID int64, fieldName, fieldValue string) error {
	patch, err := json.Marshal(models.Analysis{fieldName: fieldValue})
	if err != nil {
		return fmt.Errorf("failed to marshal analysis field: %w", err)
	}

	query := `
		UPDATE coin_readings
		SET analysis = COALESCE(analysis, '{}'::jsonb) || $2::jsonb
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, readingID, patch)
	if err != nil {
		return fmt.Errorf("failed to update analysis field: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrReadingNotFound
	}

	return nil
}

// SetAnalysis записывает полный разбор целиком (путь coin.analyze)
func (r *readingRepository) SetAnalysis(ctx context.Context, readingID int64, analysis models.Analysis) error {
	data, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `UPDATE coin_readings SET analysis = $2 WHERE id = $1`

	result, err := r.db.Pool.Exec(ctx, query, readingID, data)
	if err != nil {
		return fmt.Errorf("failed to update analysis: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrReadingNotFound
	}

	return nil
}

// CountByType считает записи устройства за день для дневных лимитов
func (r *readingRepository) CountByType(ctx context.Context, deviceID int64, tossDate, readingType string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM coin_readings
		WHERE device_id = $1 AND toss_date = $2 AND type = $3
	`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, deviceID, tossDate, readingType).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}

	return count, nil
}

// ListByDevice возвращает историю бросков устройства в хронологическом порядке
func (r *readingRepository) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]*models.Reading, error) {
	query := `
		SELECT id, device_id, coin_results, analysis, toss_date::text, type, created_at
		FROM coin_readings
		WHERE device_id = $1
		ORDER BY created_at
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}
	defer rows.Close()

	var readings []*models.Reading
	for rows.Next() {
		reading, err := r.scanReading(rows)
		if err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating readings: %w", err)
	}

	return readings, nil
}

func (r *readingRepository) scanReading(row pgx.Row) (*models.Reading, error) {
	reading := &models.Reading{}
	var coins, analysis []byte

	err := row.Scan(
		&reading.ID,
		&reading.DeviceID,
		&coins,
		&analysis,
		&reading.TossDate,
		&reading.Type,
		&reading.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to scan reading: %w", err)
	}

	if err := json.Unmarshal(coins, &reading.CoinResults); err != nil {
		return nil, fmt.Errorf("failed to unmarshal coin results: %w", err)
	}

	reading.Analysis = models.Analysis{}
	if len(analysis) > 0 {
		if err := json.Unmarshal(analysis, &reading.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal analysis: %w", err)
		}
	}

	return reading, nil
}
