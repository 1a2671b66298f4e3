package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/SergeiKhy/coin-fortune/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	ErrDeviceNotFound = errors.New("device not found")
)

// DeviceRepository хранилище устройств, идентифицируемых по отпечатку
type DeviceRepository interface {
	GetOrCreate(ctx context.Context, fingerprint string) (*models.Device, error)
	UpdateLastToss(ctx context.Context, deviceID, readingID int64, tossDate string) error
}

type deviceRepository struct {
	db *PostgresDB
}

func NewDeviceRepository(db *PostgresDB) DeviceRepository {
	return &deviceRepository{db: db}
}

// GetOrCreate идемпотентный upsert по уникальному отпечатку
func (r *deviceRepository) GetOrCreate(ctx context.Context, fingerprint string) (*models.Device, error) {
	device, err := r.getByFingerprint(ctx, fingerprint)
	if err == nil {
		return device, nil
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO devices (fingerprint)
		VALUES ($1)
		ON CONFLICT (fingerprint) DO NOTHING
	`
	if _, err := r.db.Pool.Exec(ctx, query, fingerprint); err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	// Повторное чтение покрывает и наш insert, и конкурентный
	return r.getByFingerprint(ctx, fingerprint)
}

func (r *deviceRepository) getByFingerprint(ctx context.Context, fingerprint string) (*models.Device, error) {
	query := `
		SELECT id, fingerprint, last_toss_date::text, last_reading_id, created_at
		FROM devices
		WHERE fingerprint = $1
	`

	device := &models.Device{}
	err := r.db.Pool.QueryRow(ctx, query, fingerprint).Scan(
		&device.ID,
		&device.Fingerprint,
		&device.LastTossDate,
		&device.LastReadingID,
		&device.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return device, nil
}

// UpdateLastToss запоминает указатель на последний бросок устройства
func (r *deviceRepository) UpdateLastToss(ctx context.Context, deviceID, readingID int64, tossDate string) error {
	query := `
		UPDATE devices
		SET last_reading_id = $2, last_toss_date = $3
		WHERE id = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, deviceID, readingID, tossDate)
	if err != nil {
		return fmt.Errorf("failed to update device last toss: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrDeviceNotFound
	}

	return nil
}
