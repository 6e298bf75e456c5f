package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/xela07ax/transit-assistant/internal/console/service"
	"github.com/xela07ax/transit-assistant/internal/domain"
)

type CommandService interface {
	Ask(ctx context.Context, command string) (string, error)
}

type CommandHandler struct {
	service CommandService
	logger  *zap.Logger
}

func NewCommandHandler(s CommandService, logger *zap.Logger) *CommandHandler {
	return &CommandHandler{service: s, logger: logger.Named("commands")}
}

// Submit обрабатывает команду пользователя
// POST /v1/commands {"command": "navigate to Brussels"}
func (h *CommandHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	resp, err := h.service.Ask(r.Context(), req.Command)
	switch {
	case errors.Is(err, service.ErrEmptyCommand):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		// запись с Success=false уже в журнале, клиенту — общий ответ
		h.logger.Error("command processing failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "command processing failed")
	default:
		writeJSON(w, http.StatusOK, domain.CommandResponse{Response: resp})
	}
}

// RateLimit отбрасывает запросы сверх лимита с 429
func RateLimit(l *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
