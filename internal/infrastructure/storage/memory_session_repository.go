package storage

import (
	"context"
	"sync"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.Session),
	}
}

// Get возвращает копию сессии по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.Session, error) {
	r.mu.RLock()
	session, exists := r.sessions[id]
	if exists {
		session = session.Clone()
	}
	r.mu.RUnlock()

	if exists {
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Сессию могли создать между RUnlock и Lock
	if session, exists := r.sessions[id]; exists {
		return session.Clone(), nil
	}
	newSession := entity.NewSession(id)
	r.sessions[id] = newSession

	return newSession.Clone(), nil
}

// UpdateState меняет только состояние сессии, история не трогается.
// Сессия создаётся при необходимости.
func (r *MemorySessionRepository) UpdateState(ctx context.Context, id string, state entity.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		session = entity.NewSession(id)
		r.sessions[id] = session
	}
	session.SetState(state)

	return nil
}

// AppendClassification добавляет запись в историю, создавая сессию при необходимости
func (r *MemorySessionRepository) AppendClassification(ctx context.Context, id string, rec entity.ClassificationRecord) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, exists := r.sessions[id]
	if !exists {
		session = entity.NewSession(id)
		r.sessions[id] = session
	}
	session.AddClassification(rec)

	return session.Clone(), nil
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
