package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

type memWriter struct {
	mu      sync.Mutex
	batches [][]domain.InteractionLog
	err     error
}

func (w *memWriter) WriteBatch(_ context.Context, records []domain.InteractionLog) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.batches = append(w.batches, records)
	return w.err
}

func (w *memWriter) total() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	n := 0
	for _, b := range w.batches {
		n += len(b)
	}
	return n
}

func TestStream_DrainOnStop(t *testing.T) {
	w := &memWriter{}
	s := NewStream(w, StreamConfig{BatchSize: 8, FlushInterval: time.Hour}, nil)
	s.Start()

	for i := 0; i < 50; i++ {
		s.Publish(domain.InteractionLog{ID: fmt.Sprintf("rec-%d", i)})
	}
	s.Stop()

	assert.Equal(t, 50, w.total())
	for _, b := range w.batches {
		assert.LessOrEqual(t, len(b), 8)
	}
	// повторный Stop безопасен, Publish после остановки не паникует
	s.Stop()
	s.Publish(domain.InteractionLog{ID: "late"})
	assert.Equal(t, 50, w.total())
}

func TestStream_FlushByTicker(t *testing.T) {
	w := &memWriter{}
	s := NewStream(w, StreamConfig{BatchSize: 100, FlushInterval: 10 * time.Millisecond}, nil)
	s.Start()
	defer s.Stop()

	s.Publish(domain.InteractionLog{ID: "one"})

	assert.Eventually(t, func() bool { return w.total() == 1 }, time.Second, 5*time.Millisecond)
}

func TestStream_OverflowDrops(t *testing.T) {
	w := &memWriter{}
	// воркер не запущен: буфер наполняется и не вычитывается
	s := NewStream(w, StreamConfig{BufferSize: 2}, nil)

	for i := 0; i < 5; i++ {
		s.Publish(domain.InteractionLog{ID: fmt.Sprintf("rec-%d", i)})
	}

	assert.Equal(t, 2, s.Pending())
	assert.EqualValues(t, 3, s.Dropped())

	s.Start()
	s.Stop()
	assert.Equal(t, 2, w.total())
}

func TestStream_WriterErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	w := &memWriter{err: errors.New("disk full")}
	s := NewStream(w, StreamConfig{}, zap.New(core))
	s.Start()

	s.Publish(domain.InteractionLog{ID: "x"})
	s.Stop()

	require.Equal(t, 1, logs.FilterMessage("stream flush failed").Len())
}

func TestLoggerWithStreamSink(t *testing.T) {
	w := &memWriter{}
	s := NewStream(w, StreamConfig{}, nil)
	s.Start()

	l := NewLogger(nil, WithSink(s))
	for i := 0; i < 3; i++ {
		l.Log(context.Background(), Entry{Command: "help", CommandType: domain.IntentHelp, Success: true})
	}
	s.Stop()

	assert.Equal(t, 3, w.total())
	assert.Equal(t, 3, l.Len())
}

func TestZapWriter(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	w := NewZapWriter(zap.New(core))

	err := w.WriteBatch(context.Background(), []domain.InteractionLog{
		{ID: "a", CommandType: domain.IntentSearch, Success: true},
		{ID: "b", CommandType: domain.IntentUnknown, Error: "no handler"},
	})
	require.NoError(t, err)

	entries := logs.FilterMessage("interaction").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "interactions", entries[0].LoggerName)
	assert.Equal(t, "search", entries[0].ContextMap()["command_type"])
	assert.Equal(t, "no handler", entries[1].ContextMap()["error"])
}
