package domain

// MaxMetricsWindow — верхняя граница окна метрик в днях (год с запасом на високосный)
const MaxMetricsWindow = 366

// Metrics — агрегаты по журналу взаимодействий за окно в N дней.
// Не хранятся, считаются по запросу.
type Metrics struct {
	TotalInteractions       int            `json:"total_interactions"`
	SuccessfulInteractions  int            `json:"successful_interactions"`
	FailedInteractions      int            `json:"failed_interactions"`
	AverageProcessingTime   float64        `json:"average_processing_time_ms"`
	CommandTypeDistribution map[Intent]int `json:"command_type_distribution"`
	DailyInteractions       []DailyCount   `json:"daily_interactions"`
}

type DailyCount struct {
	Date  string `json:"date"` // 2006-01-02
	Count int    `json:"count"`
}
