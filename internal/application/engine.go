package app

import "time"

// EngineConfig параметры конвейера распознавания; после создания не меняются.
type EngineConfig struct {
	APIKey             string        // пустой ключ включает демо-режим
	Model              string        // идентификатор модели
	MinRequestInterval time.Duration // минимальный интервал между запросами детекции
	QuotaCooldown      time.Duration // пауза после превышения квоты
	// SharedQuota классификация и детекция делят одну квоту:
	// во время паузы классификация тоже отклоняется.
	SharedQuota bool
}

// MockMode сообщает, что ключа нет и используются демо-ответы
func (c EngineConfig) MockMode() bool {
	return c.APIKey == ""
}
