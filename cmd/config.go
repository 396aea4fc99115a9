package cmd

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/pkg/errs"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	KafkaHost                 string
	KafkaConsumerGroup        string
	KafkaBasketConfirmedTopic string
	KafkaOrderChangedTopic    string

	AssignInterval  time.Duration
	MoveInterval    time.Duration
	OutboxInterval  time.Duration
	OutboxBatchSize int

	LogLevel string
}

// LoadConfig reads the environment after loading envFiles (".env" when none are given).
// Missing files are ignored. Unset variables take their defaults.
func LoadConfig(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	cfg := Config{
		HTTPPort:   env("HTTP_PORT", "8082"),
		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "dispatch"),
		DBSslMode:  env("DB_SSLMODE", "disable"),

		KafkaHost:                 env("KAFKA_HOST", "localhost:9092"),
		KafkaConsumerGroup:        env("KAFKA_CONSUMER_GROUP", "dispatch"),
		KafkaBasketConfirmedTopic: env("KAFKA_BASKET_CONFIRMED_TOPIC", "basket.confirmed"),
		KafkaOrderChangedTopic:    env("KAFKA_ORDER_CHANGED_TOPIC", "order.status.changed"),

		LogLevel: env("LOG_LEVEL", "info"),
	}

	var err, parseErr error
	cfg.AssignInterval, parseErr = envDuration("ASSIGN_INTERVAL", time.Second)
	err = errors.Join(err, parseErr)
	cfg.MoveInterval, parseErr = envDuration("MOVE_INTERVAL", 2*time.Second)
	err = errors.Join(err, parseErr)
	cfg.OutboxInterval, parseErr = envDuration("OUTBOX_INTERVAL", 3*time.Second)
	err = errors.Join(err, parseErr)
	cfg.OutboxBatchSize, parseErr = envPositiveInt("OUTBOX_BATCH_SIZE", 100)
	err = errors.Join(err, parseErr)
	if err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// DSN is a postgres URL understood by both pgx and lib/pq.
func (c Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": []string{c.DBSslMode}}.Encode(),
	}
	return u.String()
}

func (c Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaHost, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return d, nil
}

func envPositiveInt(key string, fallback int) (int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause(key, err)
	}
	return n, nil
}
