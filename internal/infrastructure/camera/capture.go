//go:build gocv
// +build gocv

package camera

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"ecosort/internal/domain/port"
	"ecosort/internal/logger"
)

// Capture читает кадры с камеры через OpenCV и передаёт их обработчику кадров.
type Capture struct {
	Device     string
	FrameDelay time.Duration // пауза между кадрами
	sink       port.FrameSink
	log        *logger.Logger
}

// NewCapture создаёт источник кадров для устройства (индекс или URL потока).
func NewCapture(device string, sink port.FrameSink, log *logger.Logger) *Capture {
	return &Capture{
		Device:     device,
		FrameDelay: 33 * time.Millisecond,
		sink:       sink,
		log:        log,
	}
}

// Run читает кадры до отмены контекста.
func (c *Capture) Run(ctx context.Context) error {
	vc, err := gocv.OpenVideoCapture(c.Device)
	if err != nil {
		return fmt.Errorf("open capture %q: %w", c.Device, err)
	}
	defer vc.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	c.log.Info("camera capture started", "device", c.Device)

	misses := 0
	for {
		select {
		case <-ctx.Done():
			c.log.Info("camera capture stopped", "device", c.Device)
			return nil
		default:
		}

		if ok := vc.Read(&mat); !ok || mat.Empty() {
			misses++
			if misses > 100 {
				return errors.New("camera returned no frames")
			}
			time.Sleep(c.FrameDelay)
			continue
		}
		misses = 0

		img, err := mat.ToImage()
		if err != nil {
			c.log.Warn("convert frame", "error", err)
			continue
		}
		c.sink.Process(ctx, img)

		time.Sleep(c.FrameDelay)
	}
}
