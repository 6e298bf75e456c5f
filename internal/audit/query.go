package audit

import (
	"time"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// DefaultMetricsWindow — окно метрик по умолчанию, в днях
const DefaultMetricsWindow = 7

const dayLayout = "2006-01-02"

// FilteredLogs возвращает записи, удовлетворяющие всем заданным фильтрам
func (l *Logger) FilteredLogs(f domain.LogFilter) []domain.InteractionLog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneRecords(l.records, f.Match)
}

// Metrics считает агрегаты за последние days календарных дней, включая сегодня.
// Окно: [полночь(сегодня-(days-1)), сейчас]. Дни без взаимодействий
// тоже попадают в DailyInteractions с нулем.
// days <= 0 — окно по умолчанию, больше domain.MaxMetricsWindow — обрезается до него.
func (l *Logger) Metrics(days int) domain.Metrics {
	switch {
	case days <= 0:
		days = DefaultMetricsWindow
	case days > domain.MaxMetricsWindow:
		days = domain.MaxMetricsWindow
	}

	now := l.now().In(l.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, l.loc)
	start := today.AddDate(0, 0, -(days - 1))

	m := domain.Metrics{
		CommandTypeDistribution: make(map[domain.Intent]int),
		DailyInteractions:       make([]domain.DailyCount, days),
	}
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i).Format(dayLayout)
		m.DailyInteractions[i] = domain.DailyCount{Date: d}
		index[d] = i
	}

	var totalMs int64

	l.mu.RLock()
	for _, r := range l.records {
		ts := r.Timestamp.In(l.loc)
		if ts.Before(start) || ts.After(now) {
			continue
		}
		m.TotalInteractions++
		if r.Success {
			m.SuccessfulInteractions++
		}
		totalMs += r.ProcessingTimeMs
		m.CommandTypeDistribution[r.CommandType]++
		if i, ok := index[ts.Format(dayLayout)]; ok {
			m.DailyInteractions[i].Count++
		}
	}
	l.mu.RUnlock()

	m.FailedInteractions = m.TotalInteractions - m.SuccessfulInteractions
	if m.TotalInteractions > 0 {
		m.AverageProcessingTime = float64(totalMs) / float64(m.TotalInteractions)
	}
	return m
}
