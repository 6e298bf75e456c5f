// Package report — ежедневная сводка по журналу взаимодействий.
package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

const DefaultSchedule = "0 21 * * *"

// MetricsSource — откуда берутся агрегаты (audit.Logger)
type MetricsSource interface {
	Metrics(days int) domain.Metrics
}

// Scheduler управляет запланированной сводкой
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	source   MetricsSource
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

// New создает планировщик; пустое расписание — ежедневно в 21:00
func New(source MetricsSource, schedule string, loc *time.Location, logger *zap.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		source:   source,
		logger:   logger.With(zap.String("mod", "daily-report")),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start регистрирует задачу и запускает cron
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Run строит сводку за текущий день и пишет ее в лог
func (s *Scheduler) Run() {
	if s.ctx.Err() != nil {
		return
	}
	m := s.source.Metrics(1)
	s.logger.Info("daily interaction report",
		zap.Int("total", m.TotalInteractions),
		zap.Int("successful", m.SuccessfulInteractions),
		zap.Int("failed", m.FailedInteractions),
		zap.Float64("avg_processing_ms", m.AverageProcessingTime),
		zap.String("summary", Summary(m)),
	)
}

// Stop останавливает планировщик и ждет текущую задачу
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// IsRunning проверяет, запланирована ли задача
func (s *Scheduler) IsRunning() bool {
	return s.cron != nil && len(s.cron.Entries()) > 0
}

// Summary — однострочная сводка для лога
func Summary(m domain.Metrics) string {
	if m.TotalInteractions == 0 {
		return "no interactions"
	}

	rate := float64(m.SuccessfulInteractions) / float64(m.TotalInteractions) * 100

	kinds := make([]string, 0, len(m.CommandTypeDistribution))
	for k := range m.CommandTypeDistribution {
		kinds = append(kinds, string(k))
	}
	sort.Slice(kinds, func(i, j int) bool {
		ci := m.CommandTypeDistribution[domain.Intent(kinds[i])]
		cj := m.CommandTypeDistribution[domain.Intent(kinds[j])]
		if ci != cj {
			return ci > cj
		}
		return kinds[i] < kinds[j]
	})
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s=%d", k, m.CommandTypeDistribution[domain.Intent(k)])
	}

	return fmt.Sprintf("%d interactions, %.1f%% successful, avg %.1f ms; %s",
		m.TotalInteractions, rate, m.AverageProcessingTime, strings.Join(parts, " "))
}
