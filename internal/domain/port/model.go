package port

import (
	"context"
	"errors"
)

var (
	// ErrQuotaExceeded модель отклонила запрос из-за лимита (HTTP 429, RESOURCE_EXHAUSTED)
	ErrQuotaExceeded = errors.New("model quota exceeded")

	// ErrModelUnavailable клиент модели не удалось создать (SDK, ключ, транспорт)
	ErrModelUnavailable = errors.New("model client unavailable")
)

// VisionModel интерфейс внешней мультимодальной модели.
// Реализация должна быть безопасной для одновременных вызовов.
type VisionModel interface {
	// Generate отправляет инструкцию и JPEG-изображение, возвращает текст ответа
	Generate(ctx context.Context, prompt string, jpegData []byte) (string, error)
}
