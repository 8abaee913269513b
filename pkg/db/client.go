package db

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/angelmondragon/jewelry-admin/pkg/config"
	"github.com/angelmondragon/jewelry-admin/pkg/db/models"
	"github.com/angelmondragon/jewelry-admin/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Client wraps the shared GORM connection.
type Client struct {
	conn *gorm.DB
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New opens the SQLite file backing the local cache and migrates its schema.
func New(ctx context.Context, cfg config.CacheConfig, logg *logger.Logger) (*Client, error) {
	path := strings.TrimSpace(cfg.SQLitePath)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	conn, err := open(sqlite.Open(path))
	if err != nil {
		return nil, err
	}

	client := &Client{conn: conn}
	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}

	if logg != nil {
		logg.Info(ctx, "database connection established")
	}

	return client, nil
}

// NewFromDialector wraps an arbitrary dialector. Tests use it with in-memory sqlite.
func NewFromDialector(ctx context.Context, dialector gorm.Dialector) (*Client, error) {
	conn, err := open(dialector)
	if err != nil {
		return nil, err
	}
	client := &Client{conn: conn}
	if err := client.Migrate(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormLogger := gormlogger.New(
		log.New(io.Discard, "", log.LstdFlags),
		gormlogger.Config{LogLevel: gormlogger.Silent},
	)

	gormCfg := &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
	}

	conn, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	// sqlite serializes writers; a single connection also keeps in-memory databases shared.
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

// Migrate creates the tables the local cache needs.
func (c *Client) Migrate(ctx context.Context) error {
	if err := c.conn.WithContext(ctx).AutoMigrate(&models.CacheEntry{}); err != nil {
		return fmt.Errorf("migrating cache schema: %w", err)
	}
	return nil
}

// DB returns the underlying GORM connection.
func (c *Client) DB() *gorm.DB {
	return c.conn
}

// Ping verifies the datasource is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close shuts down the pooled connections.
func (c *Client) Close() error {
	sqlDB, err := c.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx executes fn inside a transaction, rolling back on error/panic.
func (c *Client) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tx := c.conn.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
