package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
	"github.com/xela07ax/transit-assistant/internal/intent"
)

const testConfig = `
server:
  port: 9100
audit:
  retention_cap: 250
  timezone: Europe/Brussels
auth:
  users:
    - id: u-1
      username: operator
      password_hash: "$2a$10$abc"
      scopes:
        admin: true
intents:
  - intent: search
    patterns: ["tickets? for (.+)"]
    extract: first
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1000, cfg.Audit.RetentionCap)
	assert.Equal(t, 500*time.Millisecond, cfg.Audit.Stream.FlushInterval)
	assert.Equal(t, "0 21 * * *", cfg.Report.Schedule)
	assert.True(t, cfg.Auth.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.Intents)

	rules, err := cfg.Rules()
	require.NoError(t, err)
	assert.Len(t, rules, len(intent.DefaultRuleSpecs()))
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("LOGGER_LEVEL", "debug")
	t.Setenv("AUTH_ENABLED", "false")

	cfg, err := LoadConfig(writeConfig(t, testConfig))
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, ":9100", cfg.Server.Addr())
	assert.Equal(t, 250, cfg.Audit.RetentionCap)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Auth.Enabled)

	require.Len(t, cfg.Auth.Users, 1)
	assert.Equal(t, "operator", cfg.Auth.Users[0].Username)
	assert.True(t, cfg.Auth.Users[0].Scopes[domain.ScopeAdmin])

	rules, err := cfg.Rules()
	require.NoError(t, err)
	require.Len(t, rules, 1)

	c := intent.NewClassifier(rules)
	assert.Equal(t, domain.IntentSearch, c.Classify("Tickets for Antwerp"))
	assert.Equal(t, "Antwerp", c.Extract("Tickets for Antwerp", domain.IntentSearch))
}

func TestLoadConfig_KeyFromEnv(t *testing.T) {
	t.Setenv("AUTH_PUBLIC_KEY_DATA", "-----BEGIN PUBLIC KEY-----")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []byte("-----BEGIN PUBLIC KEY-----"), cfg.Auth.PublicKey)
	assert.Nil(t, cfg.Auth.PrivateKey)
}

func TestReloadIntents(t *testing.T) {
	path := writeConfig(t, testConfig)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	var applied []intent.Rule
	apply := func(r []intent.Rule) { applied = r }

	// невалидное правило не применяется
	require.NoError(t, os.WriteFile(path, []byte("intents:\n  - intent: teleport\n    patterns: [\"beam me\"]\n"), 0o600))
	require.NoError(t, cfg.v.ReadInConfig())
	cfg.reloadIntents(fsnotify.Event{Name: path, Op: fsnotify.Write}, zap.NewNop(), apply)
	assert.Nil(t, applied)

	// пустой список возвращает встроенные правила
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9100\n"), 0o600))
	require.NoError(t, cfg.v.ReadInConfig())
	cfg.reloadIntents(fsnotify.Event{Name: path, Op: fsnotify.Write}, zap.NewNop(), apply)
	assert.Len(t, applied, len(intent.DefaultRuleSpecs()))

	// события кроме записи игнорируются
	applied = nil
	cfg.reloadIntents(fsnotify.Event{Name: path, Op: fsnotify.Chmod}, zap.NewNop(), apply)
	assert.Nil(t, applied)
}

func TestLocation(t *testing.T) {
	assert.Equal(t, time.UTC, Location(""))
	assert.Equal(t, time.UTC, Location("Mars/Olympus"))
	assert.Equal(t, "Europe/Brussels", Location("Europe/Brussels").String())
}

func TestNewLogger(t *testing.T) {
	l, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)

	_, err = NewLogger(LoggerConfig{Format: "xml"})
	assert.Error(t, err)
}

func TestRedisKeySession(t *testing.T) {
	assert.Equal(t, "transit:session:kiosk-1", RedisKeySession("kiosk-1"))
}
