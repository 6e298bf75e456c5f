package domain

import "time"

// InteractionLog — запись об одной обработанной команде.
// Создается один раз в конце обработки и больше не меняется.
type InteractionLog struct {
	ID               string         `json:"id"`
	Timestamp        time.Time      `json:"timestamp"`
	Command          string         `json:"command"`  // Исходный текст (голос или чат)
	Response         string         `json:"response"` // Что вернули пользователю
	CommandType      Intent         `json:"command_type"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Success          bool           `json:"success"`
	Error            string         `json:"error,omitempty"`
	SessionID        string         `json:"session_id"`
	UserID           string         `json:"user_id,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// LogFilter — набор необязательных предикатов, объединяемых через AND.
// nil-поле не накладывает ограничений.
type LogFilter struct {
	CommandType *Intent
	Success     *bool
	StartDate   *time.Time // включительно
	EndDate     *time.Time // включительно
	UserID      *string
}

// Match проверяет запись против всех заданных предикатов
func (f LogFilter) Match(l InteractionLog) bool {
	if f.CommandType != nil && l.CommandType != *f.CommandType {
		return false
	}
	if f.Success != nil && l.Success != *f.Success {
		return false
	}
	if f.StartDate != nil && l.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && l.Timestamp.After(*f.EndDate) {
		return false
	}
	if f.UserID != nil && l.UserID != *f.UserID {
		return false
	}
	return true
}

// CommandRequest — тело POST /v1/commands
type CommandRequest struct {
	Command string `json:"command"`
}

type CommandResponse struct {
	Response string `json:"response"`
}
