package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

type staticMetrics struct {
	m    domain.Metrics
	days []int
}

func (s *staticMetrics) Metrics(days int) domain.Metrics {
	s.days = append(s.days, days)
	return s.m
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "no interactions", Summary(domain.Metrics{}))

	got := Summary(domain.Metrics{
		TotalInteractions:      4,
		SuccessfulInteractions: 3,
		FailedInteractions:     1,
		AverageProcessingTime:  2.5,
		CommandTypeDistribution: map[domain.Intent]int{
			domain.IntentSearch:     1,
			domain.IntentNavigation: 2,
			domain.IntentHelp:       1,
		},
	})
	assert.Equal(t, "4 interactions, 75.0% successful, avg 2.5 ms; navigation=2 help=1 search=1", got)
}

func TestScheduler_Run(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	src := &staticMetrics{m: domain.Metrics{TotalInteractions: 1, SuccessfulInteractions: 1,
		CommandTypeDistribution: map[domain.Intent]int{domain.IntentHelp: 1}}}

	s := New(src, "", time.UTC, zap.New(core))
	s.Run()

	assert.Equal(t, []int{1}, src.days)
	entries := logs.FilterMessage("daily interaction report").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["total"])
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(&staticMetrics{}, "*/5 * * * *", nil, zap.NewNop())
	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	s.Stop()

	bad := New(&staticMetrics{}, "every tuesday", nil, zap.NewNop())
	assert.Error(t, bad.Start())
}
