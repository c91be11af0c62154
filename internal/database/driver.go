package database

import (
	"context"
	"errors"
	"fmt"

	"northwind-analytics/internal/store"
)

var ErrUnknownSource = errors.New("unknown source")

// DatabaseDriver is a table source backed by a database. Setup and Seed
// create and fill the five tables; LoadTables reads them back in key order.
type DatabaseDriver interface {
	Connect(dsn string) error
	Close() error
	Reset(ctx context.Context) error
	Setup(ctx context.Context) error
	Seed(ctx context.Context, tables store.Tables) error
	LoadTables(ctx context.Context) (store.Tables, error)
}

// NewDriver returns an unconnected driver for source. mongoDatabase names
// the database used by the mongo driver.
func NewDriver(source, mongoDatabase string) (DatabaseDriver, error) {
	switch source {
	case "postgres":
		return &PostgresDriver{}, nil
	case "mysql":
		return &MySQLDriver{}, nil
	case "mongo":
		return &MongoDriver{database: mongoDatabase}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source)
}
