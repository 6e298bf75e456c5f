package audit

/*
Stream — асинхронный поток записей журнала во внешний приемник (BatchWriter).

- Non-blocking: Publish не ждет запись, при переполнении буфера запись
  сбрасывается (Load Shedding) с предупреждением в лог. Журнал в памяти
  от этого не страдает, теряется только копия в потоке.
- Batching: записи копятся и отдаются пачкой по таймеру или при достижении лимита.
- Drain: Stop закрывает канал и ждет, пока воркер вычитает остатки и сделает финальный flush.
*/

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// BatchWriter определяет, куда физически уходят записи
type BatchWriter interface {
	WriteBatch(ctx context.Context, records []domain.InteractionLog) error
}

type StreamConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
}

func (c StreamConfig) withDefaults() StreamConfig {
	if c.BufferSize <= 0 {
		c.BufferSize = 10000
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.FlushInterval <= 0 {
		c.FlushInterval = 500 * time.Millisecond
	}
	return c
}

type Stream struct {
	ch     chan domain.InteractionLog
	writer BatchWriter
	cfg    StreamConfig
	logger *zap.Logger
	wg     sync.WaitGroup

	stopOnce sync.Once
	mu       sync.RWMutex // Publish под RLock, закрытие канала под Lock
	isClosed atomic.Bool
	dropped  atomic.Int64
}

func NewStream(writer BatchWriter, cfg StreamConfig, logger *zap.Logger) *Stream {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		ch:     make(chan domain.InteractionLog, cfg.BufferSize),
		writer: writer,
		cfg:    cfg,
		logger: logger.With(zap.String("mod", "interaction-stream")),
	}
}

func (s *Stream) Start() {
	s.wg.Add(1)
	go s.worker()
}

// Stop запирает вход и ждет, пока воркер все допишет
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("stopping stream: closing channel and flushing buffer...")
		s.mu.Lock()
		s.isClosed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		s.logger.Info("stream stopped gracefully", zap.Int64("dropped", s.dropped.Load()))
	})
}

// Publish реализует Sink
func (s *Stream) Publish(rec domain.InteractionLog) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.isClosed.Load() {
		s.logger.Warn("interaction dropped: stream is stopping", zap.String("id", rec.ID))
		return
	}

	select {
	case s.ch <- rec:
	default:
		s.dropped.Add(1)
		s.logger.Error("stream_buffer_overflow",
			zap.String("id", rec.ID),
			zap.String("session_id", rec.SessionID),
		)
	}
}

// Pending — сколько записей ждут в буфере
func (s *Stream) Pending() int { return len(s.ch) }

// Dropped — сколько записей сброшено при переполнении
func (s *Stream) Dropped() int64 { return s.dropped.Load() }

func (s *Stream) worker() {
	defer s.wg.Done()

	batch := make([]domain.InteractionLog, 0, s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: контекст приложения может быть уже отменен
		if err := s.writer.WriteBatch(context.Background(), batch); err != nil {
			s.logger.Error("stream flush failed", zap.Int("size", len(batch)), zap.Error(err))
		}
		batch = make([]domain.InteractionLog, 0, s.cfg.BatchSize)
	}

	for {
		select {
		case rec, ok := <-s.ch:
			if !ok {
				// канал закрыт в Stop: остатки уже вычитаны
				flush()
				s.logger.Info("stream worker finished")
				return
			}
			batch = append(batch, rec)
			if len(batch) >= s.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// ZapWriter пишет каждую запись отдельной структурированной строкой лога
type ZapWriter struct {
	logger *zap.Logger
}

func NewZapWriter(logger *zap.Logger) *ZapWriter {
	return &ZapWriter{logger: logger.Named("interactions")}
}

func (w *ZapWriter) WriteBatch(_ context.Context, records []domain.InteractionLog) error {
	for _, r := range records {
		w.logger.Info("interaction",
			zap.String("id", r.ID),
			zap.Time("timestamp", r.Timestamp),
			zap.String("command_type", string(r.CommandType)),
			zap.Bool("success", r.Success),
			zap.String("error", r.Error),
			zap.Int64("processing_time_ms", r.ProcessingTimeMs),
			zap.String("session_id", r.SessionID),
			zap.String("user_id", r.UserID),
		)
	}
	return nil
}
