package app

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
	"ecosort/internal/logger"
	"ecosort/internal/metrics"
)

const (
	DefaultDetectionInterval = 3 * time.Second
	MinDetectionInterval     = time.Second
	MaxDetectionInterval     = 10 * time.Second
)

// ClampDetectionInterval ограничивает интервал детекции диапазоном 1–10 с.
func ClampDetectionInterval(d time.Duration) time.Duration {
	if d < MinDetectionInterval {
		return MinDetectionInterval
	}
	if d > MaxDetectionInterval {
		return MaxDetectionInterval
	}
	return d
}

// FrameProcessor обработчик кадров живого видео.
// Полная детекция запускается не чаще раза в интервал, в остальных кадрах
// перерисовываются последние известные рамки. Единственный писатель DetectionState.
type FrameProcessor struct {
	detector  *DetectionService
	annotator port.Annotator
	state     port.DetectionStateWriter
	log       *logger.Logger
	now       func() time.Time

	interval atomic.Int64

	mu      sync.Mutex // вызовы детекции строго последовательны
	lastRun time.Time
	current []entity.Detection
	status  entity.DetectionStatus
	errMsg  string

	latestMu sync.RWMutex
	latest   image.Image
}

var _ port.FrameSink = (*FrameProcessor)(nil)

// NewFrameProcessor создаёт обработчик кадров с интервалом interval.
func NewFrameProcessor(detector *DetectionService, annotator port.Annotator, state port.DetectionStateWriter, interval time.Duration, log *logger.Logger) *FrameProcessor {
	if log == nil {
		log = logger.NewNop()
	}
	p := &FrameProcessor{
		detector:  detector,
		annotator: annotator,
		state:     state,
		log:       log.With("component", "frames"),
		now:       time.Now,
		status:    entity.StatusWaiting,
	}
	p.SetInterval(interval)
	return p
}

// SetInterval меняет интервал детекции; не ждёт завершения текущего запроса.
func (p *FrameProcessor) SetInterval(d time.Duration) time.Duration {
	d = ClampDetectionInterval(d)
	p.interval.Store(int64(d))
	return d
}

// Interval текущий интервал детекции
func (p *FrameProcessor) Interval() time.Duration {
	return time.Duration(p.interval.Load())
}

// LatestFrame последний размеченный кадр или nil, если кадров ещё не было.
func (p *FrameProcessor) LatestFrame() image.Image {
	p.latestMu.RLock()
	defer p.latestMu.RUnlock()
	return p.latest
}

// Process принимает кадр и возвращает кадр с рамками.
func (p *FrameProcessor) Process(ctx context.Context, frame image.Image) image.Image {
	if frame == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.process(ctx, frame)

	p.latestMu.Lock()
	p.latest = out
	p.latestMu.Unlock()
	return out
}

func (p *FrameProcessor) process(ctx context.Context, frame image.Image) image.Image {
	now := p.now()
	if !p.lastRun.IsZero() && now.Sub(p.lastRun) <= p.Interval() {
		metrics.FramesTotal.WithLabelValues("skipped").Inc()
		return p.render(frame)
	}
	p.lastRun = now
	metrics.FramesTotal.WithLabelValues("ran").Inc()

	p.state.Update(entity.CloneDetections(p.current), entity.StatusDetecting, "")
	res := p.detector.Detect(ctx, frame)

	switch res.Outcome {
	case OutcomeThrottled:
		// ограничитель не пустил: прежние рамки и статус остаются
		p.state.Update(entity.CloneDetections(p.current), p.status, p.errMsg)
		return p.render(frame)
	case OutcomeFailed:
		p.settle(nil, entity.StatusError, res.Message)
		return frame
	}

	if len(res.Detections) == 0 {
		p.settle(nil, entity.StatusNoObjects, "")
		return frame
	}
	p.settle(res.Detections, entity.StatusDetected, "")
	return res.Annotated
}

// settle запоминает итог детекции и публикует его.
func (p *FrameProcessor) settle(dets []entity.Detection, status entity.DetectionStatus, errMsg string) {
	p.current = entity.CloneDetections(dets)
	p.status = status
	p.errMsg = errMsg
	p.state.Update(entity.CloneDetections(dets), status, errMsg)
}

func (p *FrameProcessor) render(frame image.Image) image.Image {
	if len(p.current) == 0 || p.annotator == nil {
		return frame
	}
	return p.annotator.Annotate(frame, p.current)
}
