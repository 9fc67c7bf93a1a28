package infra

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/config"

	"github.com/golang-migrate/migrate/v4/database"
	migratePsql "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	postgresMaxOpenConns    = 20
	postgresMaxIdleConns    = 10
	postgresConnMaxLifetime = 30 * time.Minute
)

type PostgresClient struct {
	dbClient
}

func NewPostgresClient(ctx context.Context, cfg config.Postgres) (*PostgresClient, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		cfg.Host,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.Port,
	)
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// transitions are short; a small pool keeps row locks from queueing up
	sqlDB.SetMaxOpenConns(postgresMaxOpenConns)
	sqlDB.SetMaxIdleConns(postgresMaxIdleConns)
	sqlDB.SetConnMaxLifetime(postgresConnMaxLifetime)

	client := &PostgresClient{dbClient{
		name: "postgres",
		db:   db,
		driver: func(conn *sql.DB) (database.Driver, error) {
			return migratePsql.WithInstance(conn, &migratePsql.Config{})
		},
	}}
	if err := client.ping(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
