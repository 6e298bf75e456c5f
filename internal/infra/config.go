package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xela07ax/transit-assistant/internal/domain"
	"github.com/xela07ax/transit-assistant/internal/intent"
)

// Config — корневая структура конфигурации ассистента.
type Config struct {
	Server  ServerConfig      `mapstructure:"server"`
	Redis   RedisConfig       `mapstructure:"redis"`
	Auth    AuthConfig        `mapstructure:"auth"`
	Audit   AuditConfig       `mapstructure:"audit"`
	Intents []intent.RuleSpec `mapstructure:"intents"` // пусто — встроенные правила
	Report  ReportConfig      `mapstructure:"report"`
	Logger  LoggerConfig      `mapstructure:"logger"`

	v *viper.Viper
}

// ServerConfig описывает настройки HTTP-сервера консоли.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Лимит на POST /v1/commands
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`
}

func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RedisConfig описывает подключение к Redis (разделяемая сессия).
type RedisConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	Instance   string        `mapstructure:"instance"` // реплики с одним именем делят сессию
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// AuthConfig содержит пути к RSA ключам, настройки JWT и статических пользователей консоли.
type AuthConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	Issuer         string        `mapstructure:"issuer"`
	Users          []domain.User `mapstructure:"users"`
	PublicKey      []byte
	PrivateKey     []byte
}

// AuditConfig настраивает журнал взаимодействий и поток записей в лог.
type AuditConfig struct {
	RetentionCap int          `mapstructure:"retention_cap"`
	Timezone     string       `mapstructure:"timezone"` // для разбиения метрик по дням
	Stream       StreamConfig `mapstructure:"stream"`
}

type StreamConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BufferSize    int           `mapstructure:"buffer_size"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

// ReportConfig — ежедневная сводка по журналу.
type ReportConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"` // cron, 5 полей
	Timezone string `mapstructure:"timezone"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
// path может быть пустым: тогда config.yaml ищется в . и ./configs.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")    // имя файла без расширения
		v.SetConfigType("yaml")      // формат
		v.AddConfigPath(".")         // ищем в корне
		v.AddConfigPath("./configs") // и в папке с конфигами
	}

	// 2. Настройка переменных окружения (ENV)
	// Позволяет перекрывать конфиг: SERVER_PORT=9000 перекроет server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Установка дефолтных значений
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	cfg.v = v

	// 6. Загрузка ключей из Файла ИЛИ из ENV
	// Сначала проверяем, не лежит ли сам PEM-ключ в ENV (для Docker/K8s)
	// Если нет — читаем файл по указанному пути
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.instance", "default")
	v.SetDefault("redis.session_ttl", 24*time.Hour)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.issuer", "transit-assistant")

	v.SetDefault("audit.retention_cap", 1000)
	v.SetDefault("audit.timezone", "UTC")
	v.SetDefault("audit.stream.enabled", true)
	v.SetDefault("audit.stream.buffer_size", 10000)
	v.SetDefault("audit.stream.batch_size", 100)
	v.SetDefault("audit.stream.flush_interval", 500*time.Millisecond)

	v.SetDefault("report.enabled", true)
	v.SetDefault("report.schedule", "0 21 * * *")
	v.SetDefault("report.timezone", "UTC")

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// Rules компилирует правила из конфига, при пустом списке — встроенные
func (c *Config) Rules() ([]intent.Rule, error) {
	if len(c.Intents) == 0 {
		return intent.MustDefaultRules(), nil
	}
	return intent.CompileRules(c.Intents)
}

// WatchIntents следит за файлом конфигурации и отдает новые правила в apply.
// Невалидные правила отбрасываются, действующие остаются.
func (c *Config) WatchIntents(logger *zap.Logger, apply func([]intent.Rule)) {
	if c.v == nil || c.v.ConfigFileUsed() == "" {
		logger.Info("no config file in use, intent hot reload disabled")
		return
	}
	if _, err := os.Stat(c.v.ConfigFileUsed()); err != nil {
		logger.Info("config file not found, intent hot reload disabled", zap.String("file", c.v.ConfigFileUsed()))
		return
	}
	c.v.OnConfigChange(func(e fsnotify.Event) {
		c.reloadIntents(e, logger, apply)
	})
	c.v.WatchConfig()
}

func (c *Config) reloadIntents(e fsnotify.Event, logger *zap.Logger, apply func([]intent.Rule)) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}

	var specs []intent.RuleSpec
	if err := c.v.UnmarshalKey("intents", &specs); err != nil {
		logger.Error("failed to decode intents after config change", zap.String("file", e.Name), zap.Error(err))
		return
	}

	rules := intent.MustDefaultRules()
	if len(specs) > 0 {
		compiled, err := intent.CompileRules(specs)
		if err != nil {
			logger.Error("rejected intent rules from config", zap.String("file", e.Name), zap.Error(err))
			return
		}
		rules = compiled
	}

	apply(rules)
	logger.Info("intent rules reloaded", zap.String("file", e.Name), zap.Int("rules", len(rules)))
}

// Location разбирает имя часового пояса, пустое или неизвестное — UTC
func Location(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// loadKeyResource — ключ из ENV (PEM) или из файла по пути
func loadKeyResource(path string, envDataKey string) []byte {
	// Если ключ прилетел напрямую в ENV (Base64 или PEM)
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	// Иначе читаем файл по пути из конфига
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}
