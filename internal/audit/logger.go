// Package audit хранит журнал взаимодействий ассистента: ограниченный
// буфер последних записей (новые в начале), выборки и агрегаты по нему.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// DefaultRetentionCap — сколько последних записей держим в памяти
const DefaultRetentionCap = 1000

// Entry — то, что знает процессор на момент завершения команды.
// ID, время, сессию и пользователя назначает Logger.
type Entry struct {
	Command          string
	Response         string
	CommandType      domain.Intent
	ProcessingTimeMs int64
	Success          bool
	Error            string
	Metadata         map[string]any
}

// Sink получает копию каждой сохраненной записи (например, Stream).
// Вызов не должен блокировать.
type Sink interface {
	Publish(rec domain.InteractionLog)
}

type Logger struct {
	mu      sync.RWMutex
	records []domain.InteractionLog // новые в начале

	cap      int
	sessions SessionProvider
	sink     Sink
	now      func() time.Time
	loc      *time.Location
	logger   *zap.Logger
}

type Option func(*Logger)

func WithRetentionCap(n int) Option {
	return func(l *Logger) {
		if n > 0 {
			l.cap = n
		}
	}
}

func WithSessionProvider(p SessionProvider) Option {
	return func(l *Logger) { l.sessions = p }
}

func WithSink(s Sink) Option {
	return func(l *Logger) { l.sink = s }
}

// WithClock подменяет источник времени (тесты, окна метрик)
func WithClock(now func() time.Time) Option {
	return func(l *Logger) { l.now = now }
}

// WithLocation задает часовой пояс для разбиения метрик по календарным дням
func WithLocation(loc *time.Location) Option {
	return func(l *Logger) {
		if loc != nil {
			l.loc = loc
		}
	}
}

func NewLogger(logger *zap.Logger, opts ...Option) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Logger{
		cap:      DefaultRetentionCap,
		sessions: NewMemorySession(),
		now:      time.Now,
		loc:      time.UTC,
		logger:   logger.With(zap.String("mod", "interaction-log")),
	}
	for _, o := range opts {
		o(l)
	}
	l.records = make([]domain.InteractionLog, 0, l.cap)
	return l
}

// Log создает запись, кладет ее в начало журнала и обрезает журнал до лимита.
// Prepend и truncate выполняются под одной блокировкой.
func (l *Logger) Log(ctx context.Context, e Entry) domain.InteractionLog {
	rec := domain.InteractionLog{
		ID:               uuid.NewString(),
		Command:          e.Command,
		Response:         e.Response,
		CommandType:      e.CommandType,
		ProcessingTimeMs: e.ProcessingTimeMs,
		Success:          e.Success,
		Error:            e.Error,
		SessionID:        l.sessions.SessionID(ctx),
		UserID:           domain.UserIDFromContext(ctx),
		Metadata:         copyMetadata(e.Metadata),
	}
	if rec.CommandType == "" {
		rec.CommandType = domain.IntentUnknown
	}

	l.mu.Lock()
	// время берем под блокировкой: порядок в журнале совпадает с порядком Timestamp
	rec.Timestamp = l.now()
	evicted := 0
	if len(l.records) >= l.cap {
		evicted = len(l.records) - l.cap + 1
		l.records = l.records[:l.cap-1]
	}
	// сдвигаем вправо и пишем в голову без новой аллокации
	l.records = append(l.records, domain.InteractionLog{})
	copy(l.records[1:], l.records)
	l.records[0] = rec
	l.mu.Unlock()

	if evicted > 0 {
		l.logger.Debug("retention cap reached, oldest records evicted", zap.Int("evicted", evicted))
	}
	if l.sink != nil {
		l.sink.Publish(rec)
	}
	return rec
}

// Logs возвращает копию журнала, новые записи первыми
func (l *Logger) Logs() []domain.InteractionLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneRecords(l.records, nil)
}

// Clear очищает журнал (изоляция тестов, кнопка в админке)
func (l *Logger) Clear() {
	l.mu.Lock()
	n := len(l.records)
	l.records = l.records[:0]
	l.mu.Unlock()
	l.logger.Info("interaction log cleared", zap.Int("dropped", n))
}

func (l *Logger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

func (l *Logger) Cap() int { return l.cap }

// cloneRecords копирует записи, прошедшие фильтр (nil — все).
// Metadata копируется тоже, чтобы вызывающий не мог изменить журнал.
func cloneRecords(src []domain.InteractionLog, keep func(domain.InteractionLog) bool) []domain.InteractionLog {
	out := make([]domain.InteractionLog, 0, len(src))
	for _, r := range src {
		if keep != nil && !keep(r) {
			continue
		}
		r.Metadata = copyMetadata(r.Metadata)
		out = append(out, r)
	}
	return out
}

func copyMetadata(m map[string]any) map[string]any {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
