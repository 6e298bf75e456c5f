package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

type TokenIssuer interface {
	GenerateToken(ctx context.Context, username, password string) (*domain.TokenResponse, error)
}

type AuthHandler struct {
	service TokenIssuer
}

func NewAuthHandler(s TokenIssuer) *AuthHandler {
	return &AuthHandler{service: s}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad request")
		return
	}

	resp, err := h.service.GenerateToken(r.Context(), req.Username, req.Password)
	if err != nil {
		// не уточняем, что именно неверно (логин или пароль) для защиты от перебора
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
