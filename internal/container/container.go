package container

import (
	"time"

	app "ecosort/internal/application"
	"ecosort/internal/domain/port"
	"ecosort/internal/infrastructure/storage"
	"ecosort/internal/infrastructure/vision"
	"ecosort/internal/logger"
)

// Settings параметры сборки сервисов
type Settings struct {
	Engine              app.EngineConfig
	DetectionInterval   time.Duration
	ConfidenceThreshold int
}

// Container держит единственные экземпляры модели, ограничителя и общего состояния детекции.
// Один и тот же экземпляр передаётся и в синхронные запросы, и в обработчик кадров.
type Container struct {
	Engine         app.EngineConfig
	SessionService *app.SessionService
	Classifier     *app.ClassificationService
	Detector       *app.DetectionService
	SortingService *app.SortingService
	FrameProcessor *app.FrameProcessor
	Limiter        *app.RateLimiter
	DetectionState port.DetectionStateReader
	Log            *logger.Logger
}

// New собирает сервисы. model == nil включает демо-режим.
func New(settings Settings, model port.VisionModel, sessionRepo port.SessionRepository, log *logger.Logger) *Container {
	if log == nil {
		log = logger.NewNop()
	}
	if settings.Engine.MockMode() {
		model = nil
	}

	encoder := vision.NewPreprocessor()
	annotator := vision.NewAnnotator(vision.WithConfidence())
	limiter := app.NewRateLimiter(settings.Engine.MinRequestInterval, settings.Engine.QuotaCooldown)
	state := storage.NewDetectionState()

	sessionService := app.NewSessionService(sessionRepo)
	classifier := app.NewClassificationService(settings.Engine, model, encoder, limiter, log)
	detector := app.NewDetectionService(model, encoder, annotator, limiter, log)
	sortingService := app.NewSortingService(sessionService, classifier, detector, settings.ConfidenceThreshold)
	frames := app.NewFrameProcessor(detector, annotator, state, settings.DetectionInterval, log)

	return &Container{
		Engine:         settings.Engine,
		SessionService: sessionService,
		Classifier:     classifier,
		Detector:       detector,
		SortingService: sortingService,
		FrameProcessor: frames,
		Limiter:        limiter,
		DetectionState: state,
		Log:            log,
	}
}

// MockMode сервисы работают на демо-ответах
func (c *Container) MockMode() bool {
	return c.Classifier.MockMode()
}
