package storage

import (
	"sync"
	"time"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
)

// DetectionState общее состояние живой детекции.
// Пишет только фоновый обработчик кадров, читает слой отображения.
// Все четыре поля меняются и читаются одной группой под мьютексом.
type DetectionState struct {
	mu           sync.Mutex
	detections   []entity.Detection
	status       entity.DetectionStatus
	errorMessage string
	lastUpdate   time.Time
	now          func() time.Time
}

// NewDetectionState создаёт состояние в статусе waiting
func NewDetectionState() *DetectionState {
	return &DetectionState{
		status: entity.StatusWaiting,
		now:    time.Now,
	}
}

// Update атомарно заменяет детекции, статус и ошибку и ставит отметку времени.
// Сообщение об ошибке сохраняется только для статуса error.
func (s *DetectionState) Update(detections []entity.Detection, status entity.DetectionStatus, errMsg string) {
	copied := entity.CloneDetections(detections)
	if status != entity.StatusError {
		errMsg = ""
	}

	s.mu.Lock()
	s.detections = copied
	s.status = status
	s.errorMessage = errMsg
	s.lastUpdate = s.now()
	s.mu.Unlock()
}

// Snapshot возвращает согласованный срез с копией списка детекций
func (s *DetectionState) Snapshot() entity.DetectionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	detections := entity.CloneDetections(s.detections)
	if detections == nil {
		detections = []entity.Detection{}
	}
	return entity.DetectionSnapshot{
		Detections:   detections,
		Status:       s.status,
		ErrorMessage: s.errorMessage,
		LastUpdate:   s.lastUpdate,
	}
}

var (
	_ port.DetectionStateWriter = (*DetectionState)(nil)
	_ port.DetectionStateReader = (*DetectionState)(nil)
)
