package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SergeiKhy/coin-fortune/internal/models"
)

// MemoryStore эфемерное in-memory хранилище, реализующее все репозитории.
// Используется, когда внешняя БД не настроена: режим разработки/предпросмотра.
// Данные теряются при рестарте; при нескольких инстансах сервера каждый
// держит собственную копию — небезопасно за пределами одного процесса.
type MemoryStore struct {
	mu            sync.RWMutex
	devices       map[string]*models.Device
	readings      []*models.Reading
	clicks        []models.TagClick
	hotQuestions  []models.HotQuestion
	nextDeviceID  int64
	nextReadingID int64
	nextRowID     int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		devices:       make(map[string]*models.Device),
		nextDeviceID:  1,
		nextReadingID: 1,
		nextRowID:     1,
	}
}

// --- DeviceRepository ---

func (s *MemoryStore) GetOrCreate(ctx context.Context, fingerprint string) (*models.Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if device, exists := s.devices[fingerprint]; exists {
		return copyDevice(device), nil
	}

	device := &models.Device{
		ID:          s.nextDeviceID,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now(),
	}
	s.nextDeviceID++
	s.devices[fingerprint] = device

	return copyDevice(device), nil
}

func (s *MemoryStore) UpdateLastToss(ctx context.Context, deviceID, readingID int64, tossDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, device := range s.devices {
		if device.ID == deviceID {
			date := tossDate
			id := readingID
			device.LastTossDate = &date
			device.LastReadingID = &id
			return nil
		}
	}

	return ErrDeviceNotFound
}

// --- ReadingRepository ---

func (s *MemoryStore) Create(ctx context.Context, reading *models.Reading) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reading.ID = s.nextReadingID
	s.nextReadingID++
	reading.CreatedAt = time.Now()

	stored := copyReading(reading)
	s.readings = append(s.readings, stored)

	return nil
}

func (s *MemoryStore) GetDaily(ctx context.Context, deviceID int64, tossDate string) (*models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, reading := range s.readings {
		if reading.DeviceID == deviceID && reading.TossDate == tossDate && reading.Type == models.ReadingTypeDailyFortune {
			return copyReading(reading), nil
		}
	}

	return nil, ErrReadingNotFound
}

func (s *MemoryStore) SetAnalysisField(ctx context.Context, readingID int64, fieldName, fieldValue string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reading := range s.readings {
		if reading.ID == readingID {
			if reading.Analysis == nil {
				reading.Analysis = models.Analysis{}
			}
			reading.Analysis[fieldName] = fieldValue
			return nil
		}
	}

	return ErrReadingNotFound
}

func (s *MemoryStore) SetAnalysis(ctx context.Context, readingID int64, analysis models.Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, reading := range s.readings {
		if reading.ID == readingID {
			copied := models.Analysis{}
			for k, v := range analysis {
				copied[k] = v
			}
			reading.Analysis = copied
			return nil
		}
	}

	return ErrReadingNotFound
}

func (s *MemoryStore) CountByType(ctx context.Context, deviceID int64, tossDate, readingType string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, reading := range s.readings {
		if reading.DeviceID == deviceID && reading.TossDate == tossDate && reading.Type == readingType {
			count++
		}
	}

	return count, nil
}

func (s *MemoryStore) ListByDevice(ctx context.Context, deviceID int64, limit int) ([]*models.Reading, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var readings []*models.Reading
	for _, reading := range s.readings {
		if reading.DeviceID == deviceID {
			readings = append(readings, copyReading(reading))
			if len(readings) == limit {
				break
			}
		}
	}

	return readings, nil
}

// --- TagClickRepository ---

func (s *MemoryStore) Record(ctx context.Context, questionText, fingerprint, clickDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clicks = append(s.clicks, models.TagClick{
		ID:           s.nextRowID,
		QuestionText: questionText,
		Fingerprint:  fingerprint,
		ClickDate:    clickDate,
		CreatedAt:    time.Now(),
	})
	s.nextRowID++

	return nil
}

func (s *MemoryStore) TopByDate(ctx context.Context, clickDate string, limit int) ([]models.QuestionClickCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byText := make(map[string]int64)
	for _, click := range s.clicks {
		if click.ClickDate == clickDate {
			byText[click.QuestionText]++
		}
	}

	counts := make([]models.QuestionClickCount, 0, len(byText))
	for text, count := range byText {
		counts = append(counts, models.QuestionClickCount{QuestionText: text, ClickCount: count})
	}

	// Тот же порядок, что и в SQL: по счётчику, при равенстве — по тексту
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].ClickCount != counts[j].ClickCount {
			return counts[i].ClickCount > counts[j].ClickCount
		}
		return counts[i].QuestionText < counts[j].QuestionText
	})

	if len(counts) > limit {
		counts = counts[:limit]
	}

	return counts, nil
}

// --- HotQuestionRepository ---

func (s *MemoryStore) InsertRanked(ctx context.Context, questions []models.HotQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, q := range questions {
		q.ID = s.nextRowID
		q.CreatedAt = time.Now()
		s.nextRowID++
		s.hotQuestions = append(s.hotQuestions, q)
	}

	return nil
}

func (s *MemoryStore) DeleteOlderThan(ctx context.Context, statsDate string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.hotQuestions[:0]
	for _, q := range s.hotQuestions {
		if q.StatsDate >= statsDate {
			kept = append(kept, q)
		}
	}
	s.hotQuestions = kept

	return nil
}

func (s *MemoryStore) GetLatest(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := ""
	for _, q := range s.hotQuestions {
		if q.StatsDate > latest {
			latest = q.StatsDate
		}
	}

	questions := []string{}
	if latest == "" {
		return questions, nil
	}

	ranked := make([]models.HotQuestion, 0, 5)
	for _, q := range s.hotQuestions {
		if q.StatsDate == latest {
			ranked = append(ranked, q)
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })

	for _, q := range ranked {
		questions = append(questions, q.QuestionText)
	}

	return questions, nil
}

func copyDevice(device *models.Device) *models.Device {
	copied := *device
	return &copied
}

func copyReading(reading *models.Reading) *models.Reading {
	copied := *reading
	copied.CoinResults = append([]int(nil), reading.CoinResults...)
	copied.Analysis = models.Analysis{}
	for k, v := range reading.Analysis {
		copied.Analysis[k] = v
	}
	return &copied
}
