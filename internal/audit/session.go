package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// SessionProvider выдает идентификатор текущей сессии (get-or-create).
// Реализация не должна возвращать пустую строку и не должна падать:
// журнал пишется при любом исходе команды.
type SessionProvider interface {
	SessionID(ctx context.Context) string
}

// MemorySession — сессия живет столько же, сколько процесс
type MemorySession struct {
	once sync.Once
	id   string
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) SessionID(_ context.Context) string {
	s.once.Do(func() {
		s.id = "session_" + uuid.NewString()
	})
	return s.id
}
