package intent

import (
	"fmt"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// Handler превращает аргумент команды в ответ пользователю.
// Встроенные обработчики детерминированы и не возвращают ошибок,
// но процессор обязан переживать и тех, кто возвращает.
type Handler func(detail string) (string, error)

const (
	SettingsPrompt = "Which setting would you like to change? You can adjust language, notifications or accessibility."
	HelpText       = `You can ask me to plan a route ("navigate to Brussels"), search for places ("find coffee shops") or open your settings.`
	FallbackText   = "Sorry, I didn't understand that. Try asking me to navigate somewhere, search for something or change your settings."
)

// DefaultHandlers возвращает новый реестр, который можно безопасно модифицировать
func DefaultHandlers() map[domain.Intent]Handler {
	return map[domain.Intent]Handler{
		domain.IntentNavigation: func(detail string) (string, error) {
			return fmt.Sprintf("Planning a route to %s. Let me find the best connection for you.", detail), nil
		},
		domain.IntentSearch: func(detail string) (string, error) {
			return fmt.Sprintf("Searching for %s...", detail), nil
		},
		domain.IntentSettings: func(string) (string, error) { return SettingsPrompt, nil },
		domain.IntentHelp:     func(string) (string, error) { return HelpText, nil },
		domain.IntentUnknown:  func(string) (string, error) { return FallbackText, nil },
	}
}
