package port

import (
	"image"

	"ecosort/internal/domain/entity"
)

// ImageEncoder готовит изображение к отправке в модель
type ImageEncoder interface {
	// Prepare нормализует изображение и возвращает закодированные байты
	Prepare(img image.Image) ([]byte, error)
}

// Annotator рисует рамки детекций
type Annotator interface {
	// Annotate возвращает копию изображения с рамками и подписями; исходное не меняется
	Annotate(img image.Image, detections []entity.Detection) image.Image
}
