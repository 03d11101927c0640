package port

import (
	"context"

	"ecosort/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий
type SessionRepository interface {
	// Get возвращает копию сессии по ID, создаёт новую если не найдена
	Get(ctx context.Context, id string) (*entity.Session, error)

	// UpdateState атомарно меняет состояние, создаёт сессию если не найдена
	UpdateState(ctx context.Context, id string, state entity.SessionState) error

	// AppendClassification добавляет запись в историю сессии
	AppendClassification(ctx context.Context, id string, rec entity.ClassificationRecord) (*entity.Session, error)
}
