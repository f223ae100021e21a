package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service/examengine"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Engine    EngineConfig
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath: каталог SQL-миграций (по умолчанию "migrations")
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: "single", "sentinel" или "cluster". По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: список адресов (хост:порт). Для 'single' используется первый.
	Addrs []string `mapstructure:"addrs"`

	// Addr: адрес для режима 'single', если Addrs пуст
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: имя мастера (только для "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"`

	// KeyPrefix: префикс всех ключей сервиса
	KeyPrefix string `mapstructure:"key_prefix"`
}

// EngineConfig переопределяет параметры движка экзаменов.
// Нулевые значения означают "использовать значение по умолчанию".
type EngineConfig struct {
	CacheTTLSeconds         int   `mapstructure:"cache_ttl_seconds"`
	RemoteTimeoutMs         int   `mapstructure:"remote_timeout_ms"`
	RemoteLimit             int   `mapstructure:"remote_limit"`
	MinimalSetLimit         int   `mapstructure:"minimal_set_limit"`
	DefaultCount            int   `mapstructure:"default_count"`
	MaxCount                int   `mapstructure:"max_count"`
	DefaultPassingScore     int   `mapstructure:"default_passing_score"`
	TimedSecondsPerQuestion int   `mapstructure:"timed_seconds_per_question"`
	SnapshotTTLMinutes      int   `mapstructure:"snapshot_ttl_minutes"`
	RandomSeed              int64 `mapstructure:"random_seed"`
}

// Settings накладывает заданные значения на настройки движка по умолчанию
func (e EngineConfig) Settings() *examengine.Config {
	cfg := examengine.DefaultConfig()
	if e.CacheTTLSeconds > 0 {
		cfg.CacheTTL = time.Duration(e.CacheTTLSeconds) * time.Second
	}
	if e.RemoteTimeoutMs > 0 {
		cfg.RemoteTimeout = time.Duration(e.RemoteTimeoutMs) * time.Millisecond
	}
	if e.RemoteLimit > 0 {
		cfg.RemoteLimit = e.RemoteLimit
	}
	if e.MinimalSetLimit > 0 {
		cfg.MinimalSetLimit = e.MinimalSetLimit
	}
	if e.DefaultCount > 0 {
		cfg.DefaultCount = e.DefaultCount
	}
	if e.MaxCount > 0 {
		cfg.MaxCount = e.MaxCount
	}
	if e.DefaultPassingScore > 0 {
		cfg.DefaultPassingScore = e.DefaultPassingScore
	}
	if e.TimedSecondsPerQuestion > 0 {
		cfg.TimedSecondsPerQuestion = e.TimedSecondsPerQuestion
	}
	if e.SnapshotTTLMinutes > 0 {
		cfg.SnapshotTTL = time.Duration(e.SnapshotTTLMinutes) * time.Minute
	}
	cfg.RandomSeed = e.RandomSeed
	return cfg
}

// RateLimitConfig содержит лимиты для создания сессий и предложений
type RateLimitConfig struct {
	SessionStartsPerMinute int `mapstructure:"session_starts_per_minute"`
	SuggestionsPerHour     int `mapstructure:"suggestions_per_hour"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// PostgresURL формирует URL подключения для golang-migrate
func (d *DatabaseConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из файла, .env и переменных окружения
func Load(configPath string) (*Config, error) {
	// .env не обязателен: в контейнере переменные приходят из окружения
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Предупреждение: не удалось прочитать .env: %v", err)
	}

	vip := viper.New()

	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readTimeout", 15)
	vip.SetDefault("server.writeTimeout", 30)
	vip.SetDefault("database.port", "5432")
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("redis.key_prefix", "aviate")
	vip.SetDefault("rate_limit.session_starts_per_minute", 10)
	vip.SetDefault("rate_limit.suggestions_per_hour", 20)

	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")
	vip.BindEnv("redis.key_prefix", "REDIS_KEY_PREFIX")

	vip.BindEnv("server.port", "SERVER_PORT")
	vip.BindEnv("server.allowed_origins", "SERVER_ALLOWED_ORIGINS")

	vip.BindEnv("engine.cache_ttl_seconds", "ENGINE_CACHE_TTL_SECONDS")
	vip.BindEnv("engine.remote_timeout_ms", "ENGINE_REMOTE_TIMEOUT_MS")
	vip.BindEnv("engine.remote_limit", "ENGINE_REMOTE_LIMIT")
	vip.BindEnv("engine.default_passing_score", "ENGINE_DEFAULT_PASSING_SCORE")
	vip.BindEnv("engine.timed_seconds_per_question", "ENGINE_TIMED_SECONDS_PER_QUESTION")
	vip.BindEnv("engine.random_seed", "ENGINE_RANDOM_SEED")

	vip.BindEnv("rate_limit.session_starts_per_minute", "RATE_LIMIT_SESSION_STARTS_PER_MINUTE")
	vip.BindEnv("rate_limit.suggestions_per_hour", "RATE_LIMIT_SUGGESTIONS_PER_HOUR")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файла может не быть: значения придут из окружения
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Mode: %s", cfg.Redis.Mode)
		log.Printf("Redis Addr: %s %v", cfg.Redis.Addr, cfg.Redis.Addrs)
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Engine Cache TTL (s): %d", cfg.Engine.CacheTTLSeconds)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if c.Engine.DefaultPassingScore < 0 || c.Engine.DefaultPassingScore > 100 {
		return fmt.Errorf("engine.default_passing_score must be within [0,100], got %d", c.Engine.DefaultPassingScore)
	}
	if c.Engine.MaxCount < 0 || c.Engine.DefaultCount < 0 {
		return fmt.Errorf("engine question counts must not be negative")
	}
	return nil
}
