package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
	"time"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
	"ecosort/internal/logger"
	"ecosort/internal/metrics"
)

const opDetect = "detect"

// Outcome итог одного вызова детекции
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"   // Ответ получен (список может быть пустым)
	OutcomeThrottled Outcome = "throttled" // Запрос пропущен ограничителем
	OutcomeFailed    Outcome = "failed"    // Ошибка модели или разбора
)

// DetectionOutput результат детекции.
// При любом исходе кроме успеха Annotated совпадает с исходным кадром, а список пуст.
type DetectionOutput struct {
	Annotated  image.Image
	Detections []entity.Detection
	Outcome    Outcome
	Message    string // сообщение для пользователя при OutcomeFailed
	Err        error  // внутренняя причина, только для логов
}

// DetectionService ищет на кадре несколько объектов и рисует рамки.
type DetectionService struct {
	model     port.VisionModel
	encoder   port.ImageEncoder
	annotator port.Annotator
	limiter   *RateLimiter
	log       *logger.Logger
}

// NewDetectionService создаёт сервис. При model == nil работает демо-режим.
func NewDetectionService(model port.VisionModel, encoder port.ImageEncoder, annotator port.Annotator, limiter *RateLimiter, log *logger.Logger) *DetectionService {
	if log == nil {
		log = logger.NewNop()
	}
	return &DetectionService{
		model:     model,
		encoder:   encoder,
		annotator: annotator,
		limiter:   limiter,
		log:       log.With("component", "detection"),
	}
}

// MockMode сообщает, что модель не подключена
func (s *DetectionService) MockMode() bool {
	return s.model == nil
}

// Detect никогда не возвращает ошибку: сбой даёт исходный кадр и пустой список.
func (s *DetectionService) Detect(ctx context.Context, img image.Image) DetectionOutput {
	if img == nil {
		return DetectionOutput{Detections: []entity.Detection{}, Outcome: OutcomeFailed, Message: "No image provided."}
	}

	if s.MockMode() {
		s.log.Debug("using mock detection, no API key")
		dets := MockDetections(img)
		metrics.ModelRequestsTotal.WithLabelValues(opDetect, "mock").Inc()
		return s.success(img, dets)
	}

	if s.limiter != nil && !s.limiter.MayProceed() {
		s.log.Debug("detection rate limited", "quota_wait", s.limiter.RemainingQuotaWait())
		metrics.ModelRequestsTotal.WithLabelValues(opDetect, string(OutcomeThrottled)).Inc()
		return DetectionOutput{Annotated: img, Detections: []entity.Detection{}, Outcome: OutcomeThrottled}
	}

	dets, err := s.detect(ctx, img)
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(opDetect, string(OutcomeFailed)).Inc()
		return DetectionOutput{
			Annotated:  img,
			Detections: []entity.Detection{},
			Outcome:    OutcomeFailed,
			Message:    s.failureMessage(err),
			Err:        err,
		}
	}

	metrics.ModelRequestsTotal.WithLabelValues(opDetect, string(OutcomeSuccess)).Inc()
	s.log.Info("detection complete", "count", len(dets))
	return s.success(img, dets)
}

func (s *DetectionService) detect(ctx context.Context, img image.Image) ([]entity.Detection, error) {
	data, err := s.encoder.Prepare(img)
	if err != nil {
		s.log.Error("prepare frame failed", "error", err)
		return nil, fmt.Errorf("prepare frame: %w", err)
	}

	start := time.Now()
	text, err := s.model.Generate(ctx, DetectionPrompt, data)
	metrics.ModelRequestDuration.WithLabelValues(opDetect).Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, port.ErrQuotaExceeded) && s.limiter != nil {
			s.limiter.RecordQuotaExceeded(0)
			metrics.QuotaCooldownsTotal.Inc()
			s.log.Error("model quota exceeded, cooling down", "retry_after", s.limiter.Cooldown())
		} else {
			s.log.Error("detection failed", "error", err)
		}
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		s.log.Warn("empty response from model")
		return []entity.Detection{}, nil
	}

	return ParseDetections(text), nil
}

func (s *DetectionService) success(img image.Image, dets []entity.Detection) DetectionOutput {
	for _, d := range dets {
		metrics.DetectionsTotal.WithLabelValues(metrics.CategoryLabel(string(d.Category))).Inc()
	}
	annotated := img
	if len(dets) > 0 && s.annotator != nil {
		annotated = s.annotator.Annotate(img, dets)
	}
	return DetectionOutput{Annotated: annotated, Detections: dets, Outcome: OutcomeSuccess}
}

func (s *DetectionService) failureMessage(err error) string {
	switch {
	case errors.Is(err, port.ErrQuotaExceeded):
		wait := 0
		if s.limiter != nil {
			wait = s.limiter.RemainingQuotaWait()
		}
		return fmt.Sprintf("AI quota exceeded. Detection resumes in %d seconds.", wait)
	case errors.Is(err, port.ErrModelUnavailable):
		return notConfiguredMessage
	}
	return "Detection failed. Retrying on the next frame."
}
