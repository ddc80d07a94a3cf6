package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	strutil "familyhub/pkg/platform/strings"
)

const devSigningKey = "dev-secret-key-change-in-production"

// Config is the process configuration, read once from the environment in main.
type Config struct {
	Server     Server
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Auth       AuthConfig
	Invitation InvitationConfig
	Email      EmailConfig
	Log        LogConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"FAMILYHUB_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"FAMILYHUB_SHUTDOWN_TIMEOUT" envDefault:"15s"`
	ReadTimeout     time.Duration `env:"FAMILYHUB_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"FAMILYHUB_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"FAMILYHUB_IDLE_TIMEOUT" envDefault:"2m"`
}

// DatabaseConfig selects postgres storage. An empty URL keeps everything in memory.
type DatabaseConfig struct {
	URL             string        `env:"DATABASE_URL"`
	MaxOpenConns    int           `env:"DATABASE_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DATABASE_CONN_MAX_LIFETIME" envDefault:"30m"`
	TxTimeout       time.Duration `env:"DATABASE_TX_TIMEOUT" envDefault:"5s"`
	AutoMigrate     bool          `env:"DATABASE_AUTO_MIGRATE" envDefault:"true"`
}

// RedisConfig enables the shared notification de-duplication store.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig enables audit publishing. No brokers means audit goes to the log.
type KafkaConfig struct {
	Brokers           []string `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic        string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"familyhub.audit"`
	ClientID          string   `env:"KAFKA_CLIENT_ID" envDefault:"familyhub"`
	TopicPartitions   int32    `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	TopicReplication  int16    `env:"KAFKA_TOPIC_REPLICATION" envDefault:"1"`
	EnsureTopicOnBoot bool     `env:"KAFKA_ENSURE_TOPIC" envDefault:"true"`
}

type AuthConfig struct {
	JWTSigningKey  string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer      string        `env:"JWT_ISSUER" envDefault:"familyhub"`
	JWTAudience    string        `env:"JWT_AUDIENCE" envDefault:"familyhub-api"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`
}

type InvitationConfig struct {
	TTL     time.Duration `env:"INVITATION_TTL" envDefault:"168h"`
	BaseURL string        `env:"INVITE_BASE_URL" envDefault:"http://localhost:3000/invite"`
}

// EmailConfig selects SendGrid delivery when an API key is set.
type EmailConfig struct {
	SendGridAPIKey string        `env:"SENDGRID_API_KEY"`
	FromAddress    string        `env:"EMAIL_FROM_ADDRESS" envDefault:"no-reply@familyhub.local"`
	FromName       string        `env:"EMAIL_FROM_NAME" envDefault:"FamilyHub"`
	SendTimeout    time.Duration `env:"EMAIL_SEND_TIMEOUT" envDefault:"10s"`
	DedupeTTL      time.Duration `env:"EMAIL_DEDUPE_TTL" envDefault:"24h"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Kafka.Brokers = strutil.DedupeAndTrim(cfg.Kafka.Brokers)
	if cfg.Invitation.TTL <= 0 {
		return Config{}, fmt.Errorf("INVITATION_TTL must be positive")
	}
	return cfg, nil
}

// UsesDevSigningKey reports whether the built-in development key is active.
func (c Config) UsesDevSigningKey() bool {
	return c.Auth.JWTSigningKey == devSigningKey
}
