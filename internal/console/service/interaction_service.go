package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

var ErrEmptyCommand = errors.New("command is empty")

// CommandProcessor — конвейер обработки команд (engine.Processor)
type CommandProcessor interface {
	ProcessCommand(ctx context.Context, command string) (string, error)
}

// InteractionStore — журнал взаимодействий (audit.Logger)
type InteractionStore interface {
	FilteredLogs(f domain.LogFilter) []domain.InteractionLog
	Metrics(days int) domain.Metrics
	Clear()
}

type InteractionService struct {
	processor CommandProcessor
	store     InteractionStore
	logger    *zap.Logger
}

func NewInteractionService(p CommandProcessor, store InteractionStore, logger *zap.Logger) *InteractionService {
	return &InteractionService{
		processor: p,
		store:     store,
		logger:    logger.Named("interaction-service"),
	}
}

func (s *InteractionService) Ask(ctx context.Context, command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", ErrEmptyCommand
	}
	return s.processor.ProcessCommand(ctx, command)
}

func (s *InteractionService) Logs(f domain.LogFilter) []domain.InteractionLog {
	return s.store.FilteredLogs(f)
}

func (s *InteractionService) Metrics(days int) domain.Metrics {
	return s.store.Metrics(days)
}

func (s *InteractionService) Clear(ctx context.Context) {
	s.store.Clear()
	s.logger.Info("interaction log cleared by operator", zap.String("user_id", domain.UserIDFromContext(ctx)))
}
