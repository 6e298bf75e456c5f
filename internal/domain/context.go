package domain

import "context"

// Тип для ключа в контексте (избегаем коллизий)
type ctxKey string

const (
	userIDKey  ctxKey = "user_id"
	traceIDKey ctxKey = "trace_id"
	scopesKey  ctxKey = "user_scopes"
)

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext возвращает ID аутентифицированного пользователя или пустую строку
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

func TraceIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

func WithScopes(ctx context.Context, scopes map[string]bool) context.Context {
	return context.WithValue(ctx, scopesKey, scopes)
}

// HasScope проверяет право из токена. Без токена прав нет.
func HasScope(ctx context.Context, scope string) bool {
	scopes, ok := ctx.Value(scopesKey).(map[string]bool)
	return ok && scopes[scope]
}
