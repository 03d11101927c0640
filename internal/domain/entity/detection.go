package entity

import (
	"image"
	"time"
)

// BoxScale масштаб нормализованных координат рамки.
const BoxScale = 1000

// Box рамка объекта [ymin, xmin, ymax, xmax] в шкале 0–1000.
type Box [4]float64

// Rect переводит рамку в пиксели изображения размером width×height.
func (b Box) Rect(width, height int) image.Rectangle {
	ymin, xmin, ymax, xmax := clampCoord(b[0]), clampCoord(b[1]), clampCoord(b[2]), clampCoord(b[3])
	return image.Rect(
		int(xmin*float64(width)/BoxScale),
		int(ymin*float64(height)/BoxScale),
		int(xmax*float64(width)/BoxScale),
		int(ymax*float64(height)/BoxScale),
	)
}

func clampCoord(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > BoxScale {
		return BoxScale
	}
	return v
}

// Detection один найденный на кадре объект.
type Detection struct {
	Box        Box      `json:"box"`
	Label      string   `json:"label"`
	Category   Category `json:"category"`
	Confidence int      `json:"confidence"`
}

// DetectionStatus состояние живой детекции
type DetectionStatus string

const (
	StatusWaiting   DetectionStatus = "waiting"    // Кадров ещё не было
	StatusDetecting DetectionStatus = "detecting"  // Идёт запрос к модели
	StatusDetected  DetectionStatus = "detected"   // Объекты найдены
	StatusNoObjects DetectionStatus = "no_objects" // Объектов нет
	StatusError     DetectionStatus = "error"      // Ошибка детекции
)

// DetectionSnapshot согласованный срез общего состояния детекции.
type DetectionSnapshot struct {
	Detections   []Detection     `json:"detections"`
	Status       DetectionStatus `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	LastUpdate   time.Time       `json:"last_update"`
}

// CloneDetections возвращает независимую копию списка.
func CloneDetections(src []Detection) []Detection {
	if src == nil {
		return nil
	}
	out := make([]Detection, len(src))
	copy(out, src)
	return out
}
