package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/transit-assistant/internal/console/handler"
	"github.com/xela07ax/transit-assistant/internal/domain"
	"github.com/xela07ax/transit-assistant/internal/engine"
	"github.com/xela07ax/transit-assistant/internal/infra/auth"
)

type Options struct {
	// AuthEnabled=false открывает админские роуты (режим разработки)
	AuthEnabled bool
	RateLimit   float64
	RateBurst   int
	Gatherer    prometheus.Gatherer
}

type ConsoleServer struct {
	router *chi.Mux
	logger *zap.Logger
	opts   Options

	// Интерфейс для проверки токенов (RS256)
	// Реализуется через embedding BaseValidator в AuthService
	authValidator auth.TokenValidator

	authHandler        *handler.AuthHandler        // /auth/token
	commandHandler     *handler.CommandHandler     // /v1/commands
	interactionHandler *handler.InteractionHandler // /v1/interactions
}

// NewConsoleServer инициализирует HTTP API ассистента со всеми зависимостями
func NewConsoleServer(
	opts Options,
	logger *zap.Logger,
	validator auth.TokenValidator,
	authH *handler.AuthHandler,
	commandH *handler.CommandHandler,
	interactionH *handler.InteractionHandler,
) *ConsoleServer {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = 40
	}
	s := &ConsoleServer{
		router:             chi.NewRouter(),
		logger:             logger.Named("console-api"),
		opts:               opts,
		authValidator:      validator,
		authHandler:        authH,
		commandHandler:     commandH,
		interactionHandler: interactionH,
	}

	s.routes()
	return s
}

func (s *ConsoleServer) routes() {
	r := s.router

	// --- 1. Глобальные инфраструктурные Middleware (для всех) ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(engine.TracingMiddleware)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// --- 2. ПУБЛИЧНЫЕ РОУТЫ (Открыты для всех) ---
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{}))

		if s.opts.AuthEnabled {
			// Логин должен быть доступен без токена
			r.Post("/auth/token", s.authHandler.Login)
		}
	})

	// --- 3. Команды: аноним или пользователь с токеном ---
	r.Group(func(r chi.Router) {
		if s.opts.AuthEnabled {
			r.Use(auth.NewOptionalMiddleware(s.authValidator, s.logger))
		}
		r.Use(handler.RateLimit(rate.NewLimiter(rate.Limit(s.opts.RateLimit), s.opts.RateBurst)))

		r.Post("/v1/commands", s.commandHandler.Submit)
	})

	// --- 4. ЗАЩИЩЕННЫЙ ПЕРИМЕТР (журнал и метрики, scope admin) ---
	r.Group(func(r chi.Router) {
		if s.opts.AuthEnabled {
			r.Use(auth.NewMiddleware(s.authValidator, s.logger))
			r.Use(auth.RequireScope(domain.ScopeAdmin))
		}

		r.Route("/v1/interactions", func(r chi.Router) {
			r.Get("/", s.interactionHandler.List)
			r.Delete("/", s.interactionHandler.Clear)
			r.Get("/metrics", s.interactionHandler.Metrics)
		})
	})
}

// requestLogger пишет одну строку на запрос через zap
func (s *ConsoleServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ServeHTTP позволяет использовать ConsoleServer как стандартный http.Handler
func (s *ConsoleServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
