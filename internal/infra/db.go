package infra

import (
	"context"
	"database/sql"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// dbClient is the part shared by the SQL-speaking clients: a gorm handle and
// the versioned scripts under migrations/<name>.
type dbClient struct {
	name   string
	db     *gorm.DB
	driver func(conn *sql.DB) (database.Driver, error)
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// the store runs its own transactions
		SkipDefaultTransaction: true,
		Logger:                 gormLogger.Default.LogMode(gormLogger.Warn),
	}
}

func (c *dbClient) GetDb() *gorm.DB {
	return c.db
}

func (c *dbClient) ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return errors.Wrapf(sqlDB.PingContext(ctx), "failed to ping %s", c.name)
}

func (c *dbClient) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (c *dbClient) MigrateUp(dbName string) error {
	return c.migrate(dbName, (*migrate.Migrate).Up)
}

func (c *dbClient) MigrateDown(dbName string) error {
	return c.migrate(dbName, (*migrate.Migrate).Down)
}

func (c *dbClient) migrate(dbName string, step func(*migrate.Migrate) error) error {
	conn, err := c.db.DB()
	if err != nil {
		return err
	}

	driver, err := c.driver(conn)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s migration driver", c.name)
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations/"+c.name, dbName, driver)
	if err != nil {
		return errors.Wrap(err, "failed to create migrations instance")
	}

	if err := step(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
