package entity

import "time"

// SessionState состояние сессии в диалоге
type SessionState string

const (
	StateMainMenu       SessionState = "main_menu"       // В главном меню
	StateAwaitingPhoto  SessionState = "awaiting_photo"  // Ожидание фото для классификации
	StateAwaitingDetect SessionState = "awaiting_detect" // Ожидание фото для детекции
	StateProcessing     SessionState = "processing"      // Обработка изображения
)

// ClassificationRecord запись истории классификаций
type ClassificationRecord struct {
	ID           string               `json:"id"`
	Result       ClassificationResult `json:"result"`
	ClassifiedAt time.Time            `json:"classified_at"`
}

// Session представляет сессию пользователя (Telegram-чат или браузер).
// История живёт только в памяти процесса.
type Session struct {
	ID      string                 // идентификатор сессии
	State   SessionState           // текущее состояние диалога
	History []ClassificationRecord // классификации за сессию
}

// NewSession создаёт новую сессию с начальным состоянием
func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		State: StateMainMenu,
	}
}

// SetState обновляет состояние сессии
func (s *Session) SetState(state SessionState) {
	s.State = state
}

// AddClassification добавляет запись в историю.
// Повтор последнего результата не добавляется; возвращает true, если запись добавлена.
func (s *Session) AddClassification(rec ClassificationRecord) bool {
	if n := len(s.History); n > 0 && s.History[n-1].Result == rec.Result {
		return false
	}
	s.History = append(s.History, rec)
	return true
}

// Clone возвращает независимую копию сессии.
func (s *Session) Clone() *Session {
	out := *s
	out.History = append([]ClassificationRecord(nil), s.History...)
	return &out
}
