package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

type AppEnv string

const (
	ProductionEnv AppEnv = "production"
	StageEnv      AppEnv = "stage"
	DevelopEnv    AppEnv = "develop"
	LocalEnv      AppEnv = "local"
	TestEnv       AppEnv = "test"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	LockLocal = "local"
	LockRedis = "redis"
)

type (
	Config struct {
		AppEnv      AppEnv       `yaml:"app_env"`
		LogLevel    logrus.Level `yaml:"-"`
		LogLevelRaw string       `yaml:"log_level"`
		Store       string       `yaml:"store"`
		HTTP        HTTP         `yaml:"http"`
		Database    Database     `yaml:"database"`
		Kafka       Kafka        `yaml:"kafka"`
		Queue       Queue        `yaml:"queue"`
		WorkerCount int          `yaml:"worker_count"`
	}

	HTTP struct {
		Port int `yaml:"port"`
	}

	Database struct {
		Postgres   Postgres   `yaml:"postgres"`
		Redis      Redis      `yaml:"redis"`
		ClickHouse ClickHouse `yaml:"clickhouse"`
	}

	Postgres struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	}

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		Database int    `yaml:"database"`
	}

	ClickHouse struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Database string `yaml:"database"`
	}

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		GroupID string   `yaml:"group_id"`
	}

	// Queue tunes the rotation engine. TimeoutThreshold is the default; the
	// settings table overrides it at runtime.
	Queue struct {
		TimeoutThreshold time.Duration `yaml:"timeout_threshold"`
		SweepInterval    time.Duration `yaml:"sweep_interval"`
		ReleaseOnLeave   bool          `yaml:"release_on_leave"`
		LockBackend      string        `yaml:"lock_backend"`
		LockTTL          time.Duration `yaml:"lock_ttl"`
	}
)
