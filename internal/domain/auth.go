package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// ScopeAdmin открывает журнал и метрики в консоли
const ScopeAdmin = "admin"

type CustomClaims struct {
	UserID string          `json:"user_id"`
	Scopes map[string]bool `json:"scopes"` // "admin": true
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}

type User struct {
	ID           string          `json:"id" mapstructure:"id"`
	Username     string          `json:"username" mapstructure:"username"`
	PasswordHash string          `json:"-" mapstructure:"password_hash"` // Никогда не отправляем на фронт
	Scopes       map[string]bool `json:"scopes" mapstructure:"scopes"`
}
