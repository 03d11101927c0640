package app

import (
	"context"
	"image"

	"ecosort/internal/domain/entity"
)

// DefaultConfidenceThreshold порог уверенности, ниже которого результат помечается как сомнительный.
const DefaultConfidenceThreshold = 70

type SortingService struct {
	sessions   *SessionService
	classifier *ClassificationService
	detector   *DetectionService
	threshold  int
}

// ClassificationOutput результат классификации с подсказками для пользователя.
type ClassificationOutput struct {
	Result        *entity.ClassificationResult
	Guidance      entity.Guidance
	LowConfidence bool
	Record        *entity.ClassificationRecord
	Recorded      bool // false, если результат совпал с последним в истории
}

// NewSortingService создаёт сервис, который ведёт сессию через классификацию и детекцию.
func NewSortingService(sessions *SessionService, classifier *ClassificationService, detector *DetectionService, threshold int) *SortingService {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &SortingService{
		sessions:   sessions,
		classifier: classifier,
		detector:   detector,
		threshold:  threshold,
	}
}

// Threshold порог уверенности
func (s *SortingService) Threshold() int {
	return s.threshold
}

// ClassifyPhoto классифицирует снимок, записывает результат в историю и возвращает сессию в главное меню.
func (s *SortingService) ClassifyPhoto(ctx context.Context, sessionID string, img image.Image) (*ClassificationOutput, error) {
	if _, err := s.sessions.SetState(ctx, sessionID, entity.StateProcessing); err != nil {
		return nil, err
	}
	defer func() { _, _ = s.sessions.Cancel(ctx, sessionID) }()

	result, err := s.classifier.Classify(ctx, img)
	if err != nil {
		return nil, err
	}

	rec, added, err := s.sessions.RecordClassification(ctx, sessionID, *result)
	if err != nil {
		return nil, err
	}

	return &ClassificationOutput{
		Result:        result,
		Guidance:      result.Category.Guidance(),
		LowConfidence: result.LowConfidence(s.threshold),
		Record:        rec,
		Recorded:      added,
	}, nil
}

// DetectPhoto ищет объекты на снимке. Сбой детекции не ошибка: он отражён в Outcome.
func (s *SortingService) DetectPhoto(ctx context.Context, sessionID string, img image.Image) (DetectionOutput, error) {
	if _, err := s.sessions.SetState(ctx, sessionID, entity.StateProcessing); err != nil {
		return DetectionOutput{}, err
	}
	defer func() { _, _ = s.sessions.Cancel(ctx, sessionID) }()

	return s.detector.Detect(ctx, img), nil
}
