package app

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultQuotaCooldown пауза после сигнала о превышении квоты.
const DefaultQuotaCooldown = 60 * time.Second

// RateLimiter минимальный интервал между запросами к модели и пауза после превышения квоты.
// Это рекомендательная проверка: вызывающий пропускает попытку, а не ставит её в очередь.
type RateLimiter struct {
	mu         sync.Mutex
	limiter    *rate.Limiter
	cooldown   time.Duration
	quotaUntil time.Time
	now        func() time.Time
}

// NewRateLimiter создаёт ограничитель с интервалом minInterval и паузой cooldown.
func NewRateLimiter(minInterval, cooldown time.Duration) *RateLimiter {
	if cooldown <= 0 {
		cooldown = DefaultQuotaCooldown
	}
	return &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(minInterval), 1),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// MayProceed сообщает, можно ли отправить запрос сейчас.
// При положительном ответе запрос сразу учитывается.
func (l *RateLimiter) MayProceed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if l.inCooldown(now) {
		return false
	}
	return l.limiter.AllowN(now, 1)
}

// RecordRequest учитывает запрос, отправленный в обход MayProceed.
func (l *RateLimiter) RecordRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()

	_ = l.limiter.AllowN(l.now(), 1)
}

// RecordQuotaExceeded включает паузу на retryAfter (или на паузу по умолчанию).
func (l *RateLimiter) RecordQuotaExceeded(retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if retryAfter <= 0 {
		retryAfter = l.cooldown
	}
	l.quotaUntil = l.now().Add(retryAfter)
}

// QuotaExceeded сообщает, действует ли пауза по квоте
func (l *RateLimiter) QuotaExceeded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.inCooldown(l.now())
}

// RemainingQuotaWait сколько целых секунд осталось до конца паузы.
func (l *RateLimiter) RemainingQuotaWait() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if !l.inCooldown(now) {
		return 0
	}
	return int(l.quotaUntil.Sub(now) / time.Second)
}

// Cooldown длительность паузы по умолчанию
func (l *RateLimiter) Cooldown() time.Duration {
	return l.cooldown
}

// inCooldown проверяет паузу и сбрасывает её, когда срок прошёл. Вызывать под mu.
func (l *RateLimiter) inCooldown(now time.Time) bool {
	if l.quotaUntil.IsZero() {
		return false
	}
	if now.Before(l.quotaUntil) {
		return true
	}
	l.quotaUntil = time.Time{}
	return false
}
