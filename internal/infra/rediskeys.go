package infra

import "fmt"

const (
	// RedisNamespace Базовый префикс для изоляции данных проекта в Redis
	RedisNamespace = "transit"
)

// Ключи сессий ассистента
const (
	RedisKeySessionPrefix = RedisNamespace + ":session:"
)

// RedisKeySession Генератор ключа сессии для инстанса (реплики с одним именем делят сессию)
func RedisKeySession(instance string) string {
	return fmt.Sprintf("%s%s", RedisKeySessionPrefix, instance)
}
