package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded once from the environment.
type Config struct {
	Environment   string
	Server        ServerConfig
	Scylla        ScyllaConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	Clickhouse    ClickhouseConfig
	Elasticsearch ElasticsearchConfig
	SMTP          SMTPConfig
	Logging       LoggingConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	UploadsDir   string
}

type ScyllaConfig struct {
	Nodes    []string
	Keyspace string
	Username string
	Password string
}

type RedisConfig struct {
	URL      string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers      []string
	AuthTopic    string
	BookingTopic string
}

type ClickhouseConfig struct {
	URL      string
	Database string
	Username string
	Password string
}

type ElasticsearchConfig struct {
	URL          string
	Username     string
	Password     string
	BanquetIndex string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type LoggingConfig struct {
	Level  string
	Format string
}

var (
	global *Config
	once   sync.Once
)

// LoadConfig reads configuration from the environment, consulting a .env file
// when one is present. Subsequent calls return the same instance.
func LoadConfig() *Config {
	once.Do(func() {
		// Missing .env is fine in containers where everything comes from the
		// real environment.
		_ = godotenv.Load()

		global = &Config{
			Environment: getEnv("ENVIRONMENT", "development"),
			Server: ServerConfig{
				Port:         getEnvInt("PORT", 5000),
				ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
				WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
				IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
				UploadsDir:   getEnv("UPLOADS_DIR", "uploads"),
			},
			Scylla: ScyllaConfig{
				Nodes:    splitList(getEnv("SCYLLA_NODES", "127.0.0.1")),
				Keyspace: getEnv("SCYLLA_KEYSPACE", "kumbam"),
				Username: getEnv("SCYLLA_USERNAME", ""),
				Password: getEnv("SCYLLA_PASSWORD", ""),
			},
			Redis: RedisConfig{
				URL:      getEnv("REDIS_URL", "redis://127.0.0.1:6379"),
				DB:       getEnvInt("REDIS_DB", 0),
				PoolSize: getEnvInt("REDIS_POOL_SIZE", 50),
			},
			Kafka: KafkaConfig{
				Brokers:      splitList(getEnv("KAFKA_BROKERS", "")),
				AuthTopic:    getEnv("KAFKA_AUTH_TOPIC", "auth-events"),
				BookingTopic: getEnv("KAFKA_BOOKING_TOPIC", "booking-events"),
			},
			Clickhouse: ClickhouseConfig{
				URL:      getEnv("CLICKHOUSE_URL", ""),
				Database: getEnv("CLICKHOUSE_DATABASE", "kumbam"),
				Username: getEnv("CLICKHOUSE_USERNAME", "default"),
				Password: getEnv("CLICKHOUSE_PASSWORD", ""),
			},
			Elasticsearch: ElasticsearchConfig{
				URL:          getEnv("ELASTICSEARCH_URL", ""),
				Username:     getEnv("ELASTICSEARCH_USERNAME", ""),
				Password:     getEnv("ELASTICSEARCH_PASSWORD", ""),
				BanquetIndex: getEnv("ELASTICSEARCH_BANQUET_INDEX", "banquet-halls"),
			},
			SMTP: SMTPConfig{
				Host:     getEnv("SMTP_HOST", "smtp.gmail.com"),
				Port:     getEnvInt("SMTP_PORT", 587),
				Username: getEnv("EMAIL_USER", ""),
				Password: getEnv("EMAIL_PASS", ""),
				From:     getEnv("MAIL_FROM", os.Getenv("EMAIL_USER")),
				FromName: getEnv("MAIL_FROM_NAME", "KUMBAM"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "console"),
			},
		}
	})

	return global
}

// Get returns the loaded configuration, loading it on first use.
func Get() *Config {
	if global == nil {
		return LoadConfig()
	}
	return global
}

func (c *Config) IsDevelopment() bool {
	return c.Environment != "production"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) GetServerAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// KafkaEnabled reports whether event publishing is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.Kafka.Brokers) > 0
}

// ClickhouseEnabled reports whether the audit trail is configured.
func (c *Config) ClickhouseEnabled() bool {
	return c.Clickhouse.URL != ""
}

// ElasticsearchEnabled reports whether venue search is configured.
func (c *Config) ElasticsearchEnabled() bool {
	return c.Elasticsearch.URL != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
