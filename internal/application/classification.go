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

const (
	opClassify = "classify"

	emptyResponseMessage  = "AI returned no classification. Please try again."
	notConfiguredMessage  = "AI service is not configured properly"
	quotaExceededTemplate = "AI quota exceeded. Please wait %d seconds and try again."
)

// ClassificationService классифицирует один снимок.
type ClassificationService struct {
	cfg     EngineConfig
	model   port.VisionModel
	encoder port.ImageEncoder
	limiter *RateLimiter
	log     *logger.Logger
}

// NewClassificationService создаёт сервис. При model == nil работает демо-режим.
func NewClassificationService(cfg EngineConfig, model port.VisionModel, encoder port.ImageEncoder, limiter *RateLimiter, log *logger.Logger) *ClassificationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ClassificationService{
		cfg:     cfg,
		model:   model,
		encoder: encoder,
		limiter: limiter,
		log:     log.With("component", "classification"),
	}
}

// MockMode сообщает, что модель не подключена
func (s *ClassificationService) MockMode() bool {
	return s.model == nil
}

// Classify выполняет ровно один запрос к модели без повторов.
// Ошибки имеют тип *ClassificationError; ошибка разбора ответа доступна через errors.As как *ParseError.
func (s *ClassificationService) Classify(ctx context.Context, img image.Image) (*entity.ClassificationResult, error) {
	if img == nil {
		return nil, &ClassificationError{Msg: "image is required", UserMessage: "Please provide an image."}
	}

	if s.MockMode() {
		s.log.Warn("using mock classification, no API key")
		res := MockClassification(img)
		metrics.ModelRequestsTotal.WithLabelValues(opClassify, "mock").Inc()
		metrics.ClassificationsTotal.WithLabelValues(metrics.CategoryLabel(string(res.Category))).Inc()
		return &res, nil
	}

	if s.cfg.SharedQuota && s.limiter != nil {
		if s.limiter.QuotaExceeded() {
			wait := s.limiter.RemainingQuotaWait()
			metrics.ModelRequestsTotal.WithLabelValues(opClassify, "throttled").Inc()
			return nil, &ClassificationError{
				Msg:         fmt.Sprintf("quota cool-down active, %ds left", wait),
				UserMessage: fmt.Sprintf(quotaExceededTemplate, wait),
				Err:         port.ErrQuotaExceeded,
			}
		}
		s.limiter.RecordRequest()
	}

	res, err := s.classify(ctx, img)
	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(opClassify, "failed").Inc()
		s.log.Error("classification failed", "error", err)
		return nil, err
	}

	metrics.ModelRequestsTotal.WithLabelValues(opClassify, "success").Inc()
	metrics.ClassificationsTotal.WithLabelValues(metrics.CategoryLabel(string(res.Category))).Inc()
	s.log.Info("classification complete", "category", res.Category, "confidence", res.Confidence)
	return res, nil
}

func (s *ClassificationService) classify(ctx context.Context, img image.Image) (*entity.ClassificationResult, error) {
	data, err := s.encoder.Prepare(img)
	if err != nil {
		return nil, &ClassificationError{Msg: "prepare image", UserMessage: DefaultUserMessage, Err: err}
	}

	start := time.Now()
	text, err := s.model.Generate(ctx, ClassificationPrompt, data)
	metrics.ModelRequestDuration.WithLabelValues(opClassify).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, s.wrapModelError(err)
	}

	if strings.TrimSpace(text) == "" {
		return nil, &ClassificationError{Msg: "empty response from model", UserMessage: emptyResponseMessage}
	}

	res, err := ParseClassification(text)
	if err != nil {
		// Сообщение для пользователя берётся из ParseError
		return nil, &ClassificationError{Msg: "parse model response", UserMessage: UserMessage(err), Err: err}
	}
	return res, nil
}

func (s *ClassificationService) wrapModelError(err error) error {
	var cerr *ClassificationError
	if errors.As(err, &cerr) {
		return err
	}

	switch {
	case errors.Is(err, port.ErrModelUnavailable):
		return &ClassificationError{Msg: "model unavailable", UserMessage: notConfiguredMessage, Err: err}
	case errors.Is(err, port.ErrQuotaExceeded):
		if s.cfg.SharedQuota && s.limiter != nil {
			s.limiter.RecordQuotaExceeded(0)
			metrics.QuotaCooldownsTotal.Inc()
			wait := s.limiter.RemainingQuotaWait()
			return &ClassificationError{
				Msg:         "classification failed",
				UserMessage: fmt.Sprintf(quotaExceededTemplate, wait),
				Err:         err,
			}
		}
	}
	return &ClassificationError{Msg: "classification failed", UserMessage: DefaultUserMessage, Err: err}
}
