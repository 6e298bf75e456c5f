package intent

import (
	"strings"
	"sync"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// Classifier сопоставляет команду с интентом по упорядоченным правилам.
// Правила можно заменить на лету (hot reload конфига).
type Classifier struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = MustDefaultRules()
	}
	return &Classifier{rules: rules}
}

// SetRules атомарно заменяет набор правил
func (c *Classifier) SetRules(rules []Rule) {
	c.mu.Lock()
	c.rules = rules
	c.mu.Unlock()
}

// Classify возвращает первый интент, у которого совпал хотя бы один паттерн
func (c *Classifier) Classify(command string) domain.Intent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.rules {
		for _, re := range r.Patterns {
			if re.MatchString(command) {
				return r.Intent
			}
		}
	}
	return domain.IntentUnknown
}

// Extract достает аргумент команды для интента.
// Используется то же правило, что выиграло бы в Classify: первое правило интента
// с совпавшим паттерном (у интента их может быть несколько).
// Если аргумент выделить нельзя — возвращает команду без изменений.
func (c *Classifier) Extract(command string, intent domain.Intent) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, r := range c.rules {
		if r.Intent != intent {
			continue
		}
		for _, re := range r.Patterns {
			m := re.FindStringSubmatch(command)
			if m == nil {
				continue
			}
			return pickGroup(command, m, r.Extract)
		}
	}
	return command
}

func pickGroup(command string, m []string, mode ExtractMode) string {
	if mode == ExtractNone || len(m) < 2 {
		return command
	}
	group := m[1]
	if mode == ExtractLast {
		group = m[len(m)-1]
	}
	if detail := strings.TrimSpace(group); detail != "" {
		return detail
	}
	return command
}
