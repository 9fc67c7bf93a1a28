package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/config"

	stdCk "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/golang-migrate/migrate/v4/database"
	migrateCk "github.com/golang-migrate/migrate/v4/database/clickhouse"
	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
)

// ClickHouseClient holds the lifecycle event log. It is written in batches by
// consume-events and read for timelines, so the pool stays small.
type ClickHouseClient struct {
	dbClient
}

func NewClickHouseClient(ctx context.Context, cfg config.ClickHouse) (*ClickHouseClient, error) {
	conn := stdCk.OpenDB(&stdCk.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: stdCk.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: stdCk.Settings{
			"max_execution_time": 60,
		},
		DialTimeout:      10 * time.Second,
		MaxOpenConns:     5,
		MaxIdleConns:     5,
		ConnMaxLifetime:  10 * time.Minute,
		ConnOpenStrategy: stdCk.ConnOpenInOrder,
	})

	db, err := gorm.Open(clickhouse.New(clickhouse.Config{Conn: conn}), gormConfig())
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	client := &ClickHouseClient{dbClient{
		name: "clickhouse",
		db:   db,
		driver: func(conn *sql.DB) (database.Driver, error) {
			return migrateCk.WithInstance(conn, &migrateCk.Config{})
		},
	}}
	if err := client.ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
