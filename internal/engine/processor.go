package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/audit"
	"github.com/xela07ax/transit-assistant/internal/domain"
	"github.com/xela07ax/transit-assistant/internal/intent"
)

// Processor — конвейер обработки команды: классификация, извлечение детали,
// вызов обработчика и ровно одна запись в журнал при любом исходе.
type Processor struct {
	classifier *intent.Classifier
	handlers   map[domain.Intent]intent.Handler
	journal    *audit.Logger
	metrics    *Metrics
	logger     *zap.Logger
}

type ProcessorOption func(*Processor)

// WithHandlers заменяет реестр обработчиков целиком
func WithHandlers(h map[domain.Intent]intent.Handler) ProcessorOption {
	return func(p *Processor) { p.handlers = h }
}

// WithHandler переопределяет обработчик одного интента
func WithHandler(kind domain.Intent, h intent.Handler) ProcessorOption {
	return func(p *Processor) {
		if p.handlers == nil {
			p.handlers = make(map[domain.Intent]intent.Handler)
		}
		p.handlers[kind] = h
	}
}

func WithMetrics(m *Metrics) ProcessorOption {
	return func(p *Processor) { p.metrics = m }
}

func NewProcessor(classifier *intent.Classifier, journal *audit.Logger, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if classifier == nil {
		classifier = intent.NewClassifier(nil)
	}
	if journal == nil {
		journal = audit.NewLogger(logger)
	}
	p := &Processor{
		classifier: classifier,
		handlers:   intent.DefaultHandlers(),
		journal:    journal,
		logger:     logger.With(zap.String("mod", "processor")),
	}
	for _, o := range opts {
		o(p)
	}
	if p.metrics == nil {
		p.metrics = NewMetrics(nil)
	}
	return p
}

// Classifier отдается наружу для CLI и горячей перезагрузки правил
func (p *Processor) Classifier() *intent.Classifier { return p.classifier }

// ProcessCommand обрабатывает одну команду пользователя.
// Ошибка обработчика (в том числе паника) журналируется с Success=false
// и возвращается вызывающему, обернутая в domain.ErrHandlerFailed или domain.ErrNoHandler.
func (p *Processor) ProcessCommand(ctx context.Context, command string) (string, error) {
	start := time.Now()

	kind := p.classifier.Classify(command)
	detail := p.classifier.Extract(command, kind)

	resp, err := p.dispatch(kind, detail)
	elapsed := time.Since(start)

	entry := audit.Entry{
		Command:          command,
		Response:         resp,
		CommandType:      kind,
		ProcessingTimeMs: elapsed.Milliseconds(),
		Success:          err == nil,
		Metadata:         map[string]any{"detail": detail},
	}
	if traceID := domain.TraceIDFromContext(ctx); traceID != "" {
		entry.Metadata["trace_id"] = traceID
	}

	status := "success"
	if err != nil {
		status = "failed"
		entry.Error = err.Error()
	}

	rec := p.journal.Log(ctx, entry)

	p.metrics.CommandsTotal.WithLabelValues(string(kind), status).Inc()
	p.metrics.CommandDuration.WithLabelValues(string(kind), status).Observe(elapsed.Seconds())
	p.metrics.LogSize.Set(float64(p.journal.Len()))

	if err != nil {
		p.metrics.ErrorTotal.WithLabelValues(errorType(err)).Inc()
		p.logger.Warn("command failed",
			zap.String("record_id", rec.ID),
			zap.String("intent", string(kind)),
			zap.Error(err),
		)
		return "", err
	}

	p.logger.Debug("command processed",
		zap.String("record_id", rec.ID),
		zap.String("intent", string(kind)),
		zap.Duration("elapsed", elapsed),
	)
	return resp, nil
}

func (p *Processor) dispatch(kind domain.Intent, detail string) (resp string, err error) {
	h, ok := p.handlers[kind]
	if !ok || h == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrNoHandler, kind)
	}

	defer func() {
		if r := recover(); r != nil {
			resp = ""
			err = fmt.Errorf("%w: %s: panic: %v", domain.ErrHandlerFailed, kind, r)
		}
	}()

	resp, err = h(detail)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrHandlerFailed, kind, err)
	}
	return resp, nil
}
