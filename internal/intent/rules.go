// Package intent классифицирует команды голосового/чат-ассистента,
// извлекает аргумент команды и формирует ответ.
package intent

import (
	"fmt"
	"regexp"

	"github.com/xela07ax/transit-assistant/internal/domain"
)

// ExtractMode определяет, какую группу захвата считать аргументом команды
type ExtractMode string

const (
	ExtractNone  ExtractMode = "none"  // Аргумент = вся команда
	ExtractFirst ExtractMode = "first" // Первая группа (поисковый запрос)
	ExtractLast  ExtractMode = "last"  // Последняя группа (пункт назначения)
)

// RuleSpec — правило в виде данных (из конфига или дефолтов)
type RuleSpec struct {
	Intent   domain.Intent `mapstructure:"intent"`
	Patterns []string      `mapstructure:"patterns"`
	Extract  ExtractMode   `mapstructure:"extract"`
}

// Rule — скомпилированное правило. Порядок правил = приоритет.
type Rule struct {
	Intent   domain.Intent
	Patterns []*regexp.Regexp
	Extract  ExtractMode
}

// DefaultRuleSpecs — порядок важен: navigation -> search -> settings -> help.
// "how do I get to X" совпадает и с help, но побеждает navigation.
func DefaultRuleSpecs() []RuleSpec {
	return []RuleSpec{
		{
			Intent: domain.IntentNavigation,
			Patterns: []string{
				`navigate to (.+)`,
				`go to (.+)`,
				`take me to (.+)`,
				`directions to (.+)`,
				`how (do|can) I get to (.+)`,
			},
			Extract: ExtractLast,
		},
		{
			Intent: domain.IntentSearch,
			Patterns: []string{
				`search for (.+)`,
				`find (.+)`,
				`look for (.+)`,
				`where is (.+)`,
			},
			Extract: ExtractFirst,
		},
		{
			Intent: domain.IntentSettings,
			Patterns: []string{
				`settings`,
				`preferences`,
				`change (.+) settings`,
				`configure (.+)`,
			},
			Extract: ExtractNone,
		},
		{
			Intent: domain.IntentHelp,
			Patterns: []string{
				`help`,
				`what can you do`,
				`how (do|can) I (.+)`,
			},
			Extract: ExtractNone,
		},
	}
}

// CompileRules компилирует спецификации, принудительно включая (?i)
func CompileRules(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, s := range specs {
		kind, ok := domain.ParseIntent(string(s.Intent))
		if !ok || kind == domain.IntentUnknown {
			return nil, fmt.Errorf("%w: intent %q cannot carry patterns", domain.ErrInvalidRule, s.Intent)
		}
		mode := s.Extract
		switch mode {
		case "":
			mode = ExtractNone
		case ExtractNone, ExtractFirst, ExtractLast:
		default:
			return nil, fmt.Errorf("%w: unknown extract mode %q for %s", domain.ErrInvalidRule, mode, s.Intent)
		}

		r := Rule{Intent: kind, Extract: mode}
		for _, p := range s.Patterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidRule, s.Intent, err)
			}
			r.Patterns = append(r.Patterns, re)
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// MustDefaultRules — дефолтные правила всегда валидны
func MustDefaultRules() []Rule {
	rules, err := CompileRules(DefaultRuleSpecs())
	if err != nil {
		panic(err)
	}
	return rules
}
