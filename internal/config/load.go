package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const envPrefix = "ATD_"

func Default() *Config {
	return &Config{
		AppEnv:      LocalEnv,
		LogLevel:    logrus.InfoLevel,
		LogLevelRaw: "info",
		Store:       StorePostgres,
		HTTP:        HTTP{Port: 8080},
		Database: Database{
			Postgres: Postgres{
				Host:     "localhost",
				Port:     5432,
				Username: "postgres",
				Database: "attendance",
			},
			Redis: Redis{
				Host: "localhost",
				Port: 6379,
			},
			ClickHouse: ClickHouse{
				Host:     "localhost",
				Port:     9000,
				Username: "default",
				Database: "attendance",
			},
		},
		Kafka: Kafka{
			Brokers: []string{"localhost:9092"},
			GroupID: "attendance-history",
		},
		Queue: Queue{
			TimeoutThreshold: constant.DefaultTimeoutThreshold,
			SweepInterval:    constant.DefaultSweepInterval,
			ReleaseOnLeave:   true,
			LockBackend:      LockLocal,
			LockTTL:          constant.DefaultLockTTL,
		},
		WorkerCount: constant.KafkaWorkerCount,
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then ATD_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevelRaw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid log level")
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store {
	case StorePostgres, StoreMemory:
	default:
		return errors.Errorf("unknown store %q", c.Store)
	}

	switch c.Queue.LockBackend {
	case LockLocal:
	case LockRedis:
		if !c.Database.Redis.Enabled {
			return errors.New("redis lock backend requires redis to be enabled")
		}
	default:
		return errors.Errorf("unknown lock backend %q", c.Queue.LockBackend)
	}

	if c.Queue.TimeoutThreshold <= 0 {
		return errors.New("queue timeout threshold must be positive")
	}
	if c.Queue.SweepInterval <= 0 {
		return errors.New("queue sweep interval must be positive")
	}
	if c.Queue.LockTTL <= 0 {
		return errors.New("queue lock ttl must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka is enabled but no brokers are configured")
	}
	// undeliverable events are parked in postgres
	if c.Kafka.Enabled && c.Store != StorePostgres {
		return errors.New("kafka requires the postgres store")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"LOG_LEVEL":           &cfg.LogLevelRaw,
		"STORE":               &cfg.Store,
		"POSTGRES_HOST":       &cfg.Database.Postgres.Host,
		"POSTGRES_USER":       &cfg.Database.Postgres.Username,
		"POSTGRES_PASSWORD":   &cfg.Database.Postgres.Password,
		"POSTGRES_DB":         &cfg.Database.Postgres.Database,
		"REDIS_HOST":          &cfg.Database.Redis.Host,
		"REDIS_PASSWORD":      &cfg.Database.Redis.Password,
		"CLICKHOUSE_HOST":     &cfg.Database.ClickHouse.Host,
		"CLICKHOUSE_USER":     &cfg.Database.ClickHouse.Username,
		"CLICKHOUSE_PASSWORD": &cfg.Database.ClickHouse.Password,
		"CLICKHOUSE_DB":       &cfg.Database.ClickHouse.Database,
		"KAFKA_GROUP_ID":      &cfg.Kafka.GroupID,
		"QUEUE_LOCK_BACKEND":  &cfg.Queue.LockBackend,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"HTTP_PORT":       &cfg.HTTP.Port,
		"POSTGRES_PORT":   &cfg.Database.Postgres.Port,
		"REDIS_PORT":      &cfg.Database.Redis.Port,
		"REDIS_DB":        &cfg.Database.Redis.Database,
		"CLICKHOUSE_PORT": &cfg.Database.ClickHouse.Port,
		"WORKER_COUNT":    &cfg.WorkerCount,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s%s", envPrefix, key)
			}
			*dst = n
		}
	}

	bools := map[string]*bool{
		"REDIS_ENABLED":          &cfg.Database.Redis.Enabled,
		"CLICKHOUSE_ENABLED":     &cfg.Database.ClickHouse.Enabled,
		"KAFKA_ENABLED":          &cfg.Kafka.Enabled,
		"QUEUE_RELEASE_ON_LEAVE": &cfg.Queue.ReleaseOnLeave,
	}
	for key, dst := range bools {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s%s", envPrefix, key)
			}
			*dst = b
		}
	}

	durations := map[string]*time.Duration{
		"QUEUE_TIMEOUT":        &cfg.Queue.TimeoutThreshold,
		"QUEUE_SWEEP_INTERVAL": &cfg.Queue.SweepInterval,
		"QUEUE_LOCK_TTL":       &cfg.Queue.LockTTL,
	}
	for key, dst := range durations {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return errors.Wrapf(err, "invalid %s%s", envPrefix, key)
			}
			*dst = d
		}
	}

	if v, ok := lookup("APP_ENV"); ok {
		cfg.AppEnv = AppEnv(v)
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		cfg.Kafka.Brokers = splitList(v)
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
