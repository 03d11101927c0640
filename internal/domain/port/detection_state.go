package port

import "ecosort/internal/domain/entity"

// DetectionStateWriter запись общего состояния детекции (только фоновый обработчик кадров)
type DetectionStateWriter interface {
	Update(detections []entity.Detection, status entity.DetectionStatus, errMsg string)
}

// DetectionStateReader чтение общего состояния детекции (слой отображения)
type DetectionStateReader interface {
	Snapshot() entity.DetectionSnapshot
}
