//go:build !gocv
// +build !gocv

package camera

import (
	"context"
	"errors"
	"time"

	"ecosort/internal/domain/port"
	"ecosort/internal/logger"
)

// Capture заглушка источника кадров (сборка без OpenCV).
type Capture struct {
	Device     string
	FrameDelay time.Duration
	sink       port.FrameSink
	log        *logger.Logger
}

// NewCapture создаёт заглушку источника кадров.
func NewCapture(device string, sink port.FrameSink, log *logger.Logger) *Capture {
	return &Capture{
		Device:     device,
		FrameDelay: 33 * time.Millisecond,
		sink:       sink,
		log:        log,
	}
}

// Run возвращает ошибку, если сборка без тега gocv.
func (c *Capture) Run(ctx context.Context) error {
	_ = ctx
	return errors.New("gocv build tag is not enabled")
}
