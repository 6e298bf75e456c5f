package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

type InteractionService interface {
	Logs(f domain.LogFilter) []domain.InteractionLog
	Metrics(days int) domain.Metrics
	Clear(ctx context.Context)
}

type InteractionHandler struct {
	service InteractionService
}

func NewInteractionHandler(s InteractionService) *InteractionHandler {
	return &InteractionHandler{service: s}
}

// List возвращает журнал с фильтрацией
// GET /v1/interactions?command_type=navigation&success=true&start=...&end=...&user_id=...
func (h *InteractionHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.service.Logs(f))
}

// Clear очищает журнал
// DELETE /v1/interactions
func (h *InteractionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.service.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// Metrics — агрегаты за окно в днях
// GET /v1/interactions/metrics?days=7
func (h *InteractionHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	days := 0 // дефолт выбирает журнал
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > domain.MaxMetricsWindow {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("days must be an integer between 1 and %d", domain.MaxMetricsWindow))
			return
		}
		days = n
	}
	writeJSON(w, http.StatusOK, h.service.Metrics(days))
}

func parseFilter(q url.Values) (domain.LogFilter, error) {
	var f domain.LogFilter

	if raw := q.Get("command_type"); raw != "" {
		kind, ok := domain.ParseIntent(raw)
		if !ok {
			return f, fmt.Errorf("unknown command_type %q", raw)
		}
		f.CommandType = &kind
	}
	if raw := q.Get("success"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, fmt.Errorf("success must be true or false")
		}
		f.Success = &v
	}
	if raw := q.Get("start"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("start must be RFC3339")
		}
		f.StartDate = &t
	}
	if raw := q.Get("end"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("end must be RFC3339")
		}
		f.EndDate = &t
	}
	if raw := q.Get("user_id"); raw != "" {
		f.UserID = &raw
	}
	return f, nil
}
