package models

import (
	"time"
)

// Device устройство, идентифицируемое по клиентскому отпечатку.
// Отпечаток не является аутентификацией — только ключ идемпотентности и лимитов.
type Device struct {
	ID            int64     `json:"id"`
	Fingerprint   string    `json:"fingerprint"`
	LastTossDate  *string   `json:"last_toss_date,omitempty"`
	LastReadingID *int64    `json:"last_reading_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
