package audit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// fakeClock — управляемое время для окон метрик
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type staticSession string

func (s staticSession) SessionID(context.Context) string { return string(s) }

func TestLogger_LogAssignsIdentity(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
	l := NewLogger(nil, WithClock(clock.Now), WithSessionProvider(staticSession("session_1")))

	ctx := domain.WithUserID(context.Background(), "user-42")
	rec := l.Log(ctx, Entry{
		Command:          "navigate to Brussels",
		Response:         "Planning a route to Brussels.",
		CommandType:      domain.IntentNavigation,
		ProcessingTimeMs: 3,
		Success:          true,
		Metadata:         map[string]any{"source": "voice"},
	})

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, clock.Now(), rec.Timestamp)
	assert.Equal(t, "session_1", rec.SessionID)
	assert.Equal(t, "user-42", rec.UserID)
	assert.Equal(t, "voice", rec.Metadata["source"])

	logs := l.Logs()
	require.Len(t, logs, 1)
	assert.Equal(t, rec.ID, logs[0].ID)
}

func TestLogger_MostRecentFirst(t *testing.T) {
	l := NewLogger(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		l.Log(ctx, Entry{Command: fmt.Sprintf("cmd-%d", i), Success: true})
	}

	logs := l.Logs()
	require.Len(t, logs, 3)
	assert.Equal(t, "cmd-2", logs[0].Command)
	assert.Equal(t, "cmd-1", logs[1].Command)
	assert.Equal(t, "cmd-0", logs[2].Command)
	assert.Equal(t, domain.IntentUnknown, logs[0].CommandType)
}

func TestLogger_RetentionCap(t *testing.T) {
	l := NewLogger(nil)
	ctx := context.Background()

	total := DefaultRetentionCap + 250
	for i := 0; i < total; i++ {
		l.Log(ctx, Entry{Command: fmt.Sprintf("cmd-%d", i), Success: true})
		require.LessOrEqual(t, l.Len(), DefaultRetentionCap)
	}

	logs := l.Logs()
	require.Len(t, logs, DefaultRetentionCap)
	// выжили самые новые, порядок сохранен
	assert.Equal(t, fmt.Sprintf("cmd-%d", total-1), logs[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd-%d", total-DefaultRetentionCap), logs[len(logs)-1].Command)
}

func TestLogger_SmallCapEvictsOldest(t *testing.T) {
	l := NewLogger(nil, WithRetentionCap(2))
	ctx := context.Background()

	l.Log(ctx, Entry{Command: "a"})
	l.Log(ctx, Entry{Command: "b"})
	l.Log(ctx, Entry{Command: "c"})

	logs := l.Logs()
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].Command)
	assert.Equal(t, "b", logs[1].Command)
	assert.Equal(t, 2, l.Cap())
}

func TestLogger_LogsReturnsCopy(t *testing.T) {
	l := NewLogger(nil)
	l.Log(context.Background(), Entry{Command: "find pizza", Metadata: map[string]any{"k": "v"}})

	logs := l.Logs()
	logs[0].Command = "mutated"
	logs[0].Metadata["k"] = "mutated"

	again := l.Logs()
	require.Len(t, again, 1)
	assert.Equal(t, "find pizza", again[0].Command)
	assert.Equal(t, "v", again[0].Metadata["k"])
}

func TestLogger_Clear(t *testing.T) {
	l := NewLogger(nil)
	l.Log(context.Background(), Entry{Command: "help"})
	l.Clear()
	assert.Empty(t, l.Logs())
	assert.Equal(t, 0, l.Len())
}

func TestLogger_SessionStableAcrossRecords(t *testing.T) {
	l := NewLogger(nil)
	ctx := context.Background()

	a := l.Log(ctx, Entry{Command: "a"})
	b := l.Log(ctx, Entry{Command: "b"})

	assert.NotEmpty(t, a.SessionID)
	assert.Equal(t, a.SessionID, b.SessionID)
}

func TestLogger_ConcurrentLog(t *testing.T) {
	l := NewLogger(nil, WithRetentionCap(50))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Log(ctx, Entry{Command: fmt.Sprintf("%d-%d", i, j)})
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
	seen := make(map[string]bool)
	for _, r := range l.Logs() {
		assert.False(t, seen[r.ID], "duplicate record %s", r.ID)
		seen[r.ID] = true
	}
}

func TestLogger_ConcurrentOrderMatchesTimestamps(t *testing.T) {
	l := NewLogger(nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Log(ctx, Entry{Command: "find tram"})
			}
		}()
	}
	wg.Wait()

	logs := l.Logs()
	require.Len(t, logs, 800)
	for i := 1; i < len(logs); i++ {
		assert.False(t, logs[i].Timestamp.After(logs[i-1].Timestamp),
			"record %d is newer than the record before it", i)
	}
}

type recordingSink struct {
	mu   sync.Mutex
	recs []domain.InteractionLog
}

func (s *recordingSink) Publish(rec domain.InteractionLog) {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
}

func TestLogger_PublishesToSink(t *testing.T) {
	sink := &recordingSink{}
	l := NewLogger(nil, WithSink(sink))

	rec := l.Log(context.Background(), Entry{Command: "help"})

	require.Len(t, sink.recs, 1)
	assert.Equal(t, rec.ID, sink.recs[0].ID)
}

func TestMemorySession(t *testing.T) {
	s := NewMemorySession()
	id := s.SessionID(context.Background())
	assert.Contains(t, id, "session_")
	assert.Equal(t, id, s.SessionID(context.Background()))
	assert.NotEqual(t, id, NewMemorySession().SessionID(context.Background()))
}
