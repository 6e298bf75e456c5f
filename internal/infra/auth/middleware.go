package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// TokenValidator — проверка bearer-токена консоли
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// NewMiddleware требует валидный токен и кладет пользователя и права в контекст
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(v, logger, true)
}

// NewOptionalMiddleware пропускает анонимов, но невалидный токен отклоняет
func NewOptionalMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return authenticate(v, logger, false)
}

func authenticate(v TokenValidator, logger *zap.Logger, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if required {
					http.Error(w, "Unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем данные в контекст
			ctx := domain.WithScopes(r.Context(), claims.Scopes)
			ctx = domain.WithUserID(ctx, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireScope пропускает только запросы с правом scope в токене
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !domain.HasScope(r.Context(), scope) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
