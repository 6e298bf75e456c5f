package domain

import "strings"

// Intent — классифицированная категория пользовательской команды
type Intent string

const (
	IntentNavigation Intent = "navigation" // Построение маршрута
	IntentSearch     Intent = "search"     // Поиск мест и сервисов
	IntentSettings   Intent = "settings"   // Изменение настроек
	IntentHelp       Intent = "help"       // Подсказка по использованию
	IntentUnknown    Intent = "unknown"    // Ничего не совпало
)

// KnownIntents возвращает закрытый набор интентов в порядке приоритета классификации.
// unknown всегда последний.
func KnownIntents() []Intent {
	return []Intent{IntentNavigation, IntentSearch, IntentSettings, IntentHelp, IntentUnknown}
}

// ParseIntent приводит строку из конфига или query-параметра к Intent.
func ParseIntent(s string) (Intent, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, i := range KnownIntents() {
		if string(i) == s {
			return i, true
		}
	}
	return IntentUnknown, false
}
