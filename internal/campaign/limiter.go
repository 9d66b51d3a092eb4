package campaign

import "sync"

// KeyLimiter сериализует операции по строковому ключу: переходы одной
// кампании и записи результата одной пары (кампания, ученик) не должны
// идти параллельно. Поверх замка всё равно работают CAS и уникальные
// ограничения БД — они источник истины.
type KeyLimiter struct {
	mu    sync.Mutex
	byKey map[string]*sync.Mutex
}

func NewKeyLimiter() *KeyLimiter {
	return &KeyLimiter{byKey: make(map[string]*sync.Mutex)}
}

func (l *KeyLimiter) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.byKey[key]
	if !ok {
		m = &sync.Mutex{}
		l.byKey[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	return func() { m.Unlock() }
}
