package main

import (
	"context"
	"crypto/rsa"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/console/handler"
	"github.com/xela07ax/transit-assistant/internal/console/server"
	"github.com/xela07ax/transit-assistant/internal/console/service"
	"github.com/xela07ax/transit-assistant/internal/infra"
	"github.com/xela07ax/transit-assistant/internal/infra/auth"
	"github.com/xela07ax/transit-assistant/internal/report"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	defer a.close()

	cfg, logger := a.cfg, a.logger

	// 1. Ключи и сервис авторизации
	privateKey, err := loadSigningKey(cfg.Auth, logger)
	if err != nil {
		return err
	}
	authSvc := service.NewAuthService(service.NewStaticUsers(cfg.Auth.Users), privateKey, cfg.Auth.TokenTTL, cfg.Auth.Issuer, logger)

	var validator auth.TokenValidator = authSvc
	if len(cfg.Auth.PublicKey) > 0 {
		// токены могут выпускаться и другим инстансом с тем же ключом
		pub, err := auth.ParseRSAPublicKey(cfg.Auth.PublicKey)
		if err != nil {
			return err
		}
		validator = auth.NewBaseValidator(pub, cfg.Auth.Issuer)
	}
	if !cfg.Auth.Enabled {
		logger.Warn("auth disabled: interaction log is open to everyone")
	}

	// 2. Слои API
	interactions := service.NewInteractionService(a.processor, a.journal, logger)
	srvHandler := server.NewConsoleServer(
		server.Options{
			AuthEnabled: cfg.Auth.Enabled,
			RateLimit:   cfg.Server.RateLimit,
			RateBurst:   cfg.Server.RateBurst,
			Gatherer:    a.registry,
		},
		logger,
		validator,
		handler.NewAuthHandler(authSvc),
		handler.NewCommandHandler(interactions, logger),
		handler.NewInteractionHandler(interactions),
	)

	// 3. Ежедневная сводка
	if cfg.Report.Enabled {
		sched := report.New(a.journal, cfg.Report.Schedule, infra.Location(cfg.Report.Timezone), logger)
		if err := sched.Start(); err != nil {
			return err
		}
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      srvHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 4. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("assistant api started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		return err
	}
	logger.Info("assistant api stopping...")

	// Даем 5 секунд на завершение запросов
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("assistant api exited properly")
	return nil
}

// loadSigningKey: ключ из конфига, иначе временный на время жизни процесса
func loadSigningKey(cfg infra.AuthConfig, logger *zap.Logger) (*rsa.PrivateKey, error) {
	if len(cfg.PrivateKey) > 0 {
		return auth.ParseRSAPrivateKey(cfg.PrivateKey)
	}
	logger.Warn("no private key configured, generating an ephemeral one")
	return auth.GenerateRSAKey()
}
