package main

import (
	"context"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/audit"
	"github.com/xela07ax/transit-assistant/internal/engine"
	"github.com/xela07ax/transit-assistant/internal/infra"
	"github.com/xela07ax/transit-assistant/internal/intent"
	"github.com/xela07ax/transit-assistant/internal/repository/redisstore"
)

// app — собранное ядро: конвейер, журнал и фоновые ресурсы
type app struct {
	cfg       *infra.Config
	logger    *zap.Logger
	registry  *prometheus.Registry
	processor *engine.Processor
	journal   *audit.Logger
	stream    *audit.Stream
	rdb       *redis.Client
}

func newApp(cfg *infra.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger, registry: prometheus.NewRegistry()}
	metrics := engine.NewMetrics(a.registry)

	// 1. Сессия: общая в Redis или локальная на процесс
	var sessions audit.SessionProvider = audit.NewMemorySession()
	if cfg.Redis.Enabled {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := redisstore.NewSessionStore(a.rdb, cfg.Redis.Instance, cfg.Redis.SessionTTL, logger)

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := store.Ping(ctx); err != nil {
			// не фатально: стор сам откатится на локальную сессию
			logger.Warn("redis unreachable at startup", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
		sessions = store
	}

	// 2. Журнал и поток записей в лог
	opts := []audit.Option{
		audit.WithRetentionCap(cfg.Audit.RetentionCap),
		audit.WithSessionProvider(sessions),
		audit.WithLocation(infra.Location(cfg.Audit.Timezone)),
	}
	if cfg.Audit.Stream.Enabled {
		a.stream = audit.NewStream(audit.NewZapWriter(logger), audit.StreamConfig{
			BufferSize:    cfg.Audit.Stream.BufferSize,
			BatchSize:     cfg.Audit.Stream.BatchSize,
			FlushInterval: cfg.Audit.Stream.FlushInterval,
		}, logger)
		a.stream.Start()
		metrics.RegisterStream(a.registry, a.stream)
		opts = append(opts, audit.WithSink(a.stream))
	}
	a.journal = audit.NewLogger(logger, opts...)

	// 3. Классификатор с горячей перезагрузкой правил
	rules, err := cfg.Rules()
	if err != nil {
		a.close()
		return nil, err
	}
	classifier := intent.NewClassifier(rules)
	cfg.WatchIntents(logger.Named("config"), classifier.SetRules)

	a.processor = engine.NewProcessor(classifier, a.journal, logger, engine.WithMetrics(metrics))
	return a, nil
}

// close дописывает поток и закрывает соединения
func (a *app) close() {
	if a.stream != nil {
		a.stream.Stop()
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("failed to close redis client", zap.Error(err))
		}
	}
}

// bootstrap: конфиг, логгер, ядро
func bootstrap() (*app, error) {
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, logger)
}
