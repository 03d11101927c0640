package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ecosort/internal/domain/entity"
	"ecosort/internal/domain/port"
)

type SessionService struct {
	repo port.SessionRepository
	now  func() time.Time
}

func NewSessionService(repo port.SessionRepository) *SessionService {
	return &SessionService{repo: repo, now: time.Now}
}

func (s *SessionService) Get(ctx context.Context, id string) (*entity.Session, error) {
	return s.repo.Get(ctx, id)
}

func (s *SessionService) SetState(ctx context.Context, id string, state entity.SessionState) (*entity.Session, error) {
	// Меняется только состояние, история остаётся как есть
	if err := s.repo.UpdateState(ctx, id, state); err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, id)
}

func (s *SessionService) BeginClassify(ctx context.Context, id string) (*entity.Session, error) {
	return s.SetState(ctx, id, entity.StateAwaitingPhoto)
}

func (s *SessionService) BeginDetect(ctx context.Context, id string) (*entity.Session, error) {
	return s.SetState(ctx, id, entity.StateAwaitingDetect)
}

func (s *SessionService) Cancel(ctx context.Context, id string) (*entity.Session, error) {
	return s.SetState(ctx, id, entity.StateMainMenu)
}

// RecordClassification добавляет результат в историю сессии.
// Возвращает запись и признак, что она действительно добавлена (повтор последнего результата пропускается).
func (s *SessionService) RecordClassification(ctx context.Context, id string, result entity.ClassificationResult) (*entity.ClassificationRecord, bool, error) {
	rec := entity.ClassificationRecord{
		ID:           uuid.NewString(),
		Result:       result,
		ClassifiedAt: s.now(),
	}

	session, err := s.repo.AppendClassification(ctx, id, rec)
	if err != nil {
		return nil, false, err
	}

	last := session.History[len(session.History)-1]
	return &last, last.ID == rec.ID, nil
}

// History возвращает историю классификаций сессии, от старых к новым.
func (s *SessionService) History(ctx context.Context, id string) ([]entity.ClassificationRecord, error) {
	session, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.History == nil {
		return []entity.ClassificationRecord{}, nil
	}
	return session.History, nil
}
