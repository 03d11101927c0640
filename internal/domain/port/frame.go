package port

import (
	"context"
	"image"
)

// FrameSink принимает кадры живого видео и возвращает кадр с разметкой
type FrameSink interface {
	Process(ctx context.Context, frame image.Image) image.Image
}
