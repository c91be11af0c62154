package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"northwind-analytics/internal/store"
)

type PostgresDriver struct {
	conn *pgx.Conn
}

func (pd *PostgresDriver) Connect(dsn string) error {
	conn, err := pgx.Connect(context.Background(), dsn)
	if err != nil {
		return err
	}
	pd.conn = conn
	return nil
}

func (pd *PostgresDriver) Close() error {
	return pd.conn.Close(context.Background())
}

// Reset drops the analytics tables, children first.
func (pd *PostgresDriver) Reset(ctx context.Context) error {
	for i := len(store.TableNames) - 1; i >= 0; i-- {
		_, err := pd.conn.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", store.TableNames[i]))
		if err != nil {
			return err
		}
	}
	return nil
}

func (pd *PostgresDriver) ExecuteTx(ctx context.Context, txFunc func(pgx.Tx) error) (err error) {
	tx, err := pd.conn.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback(ctx)
			panic(p) // re-panic after rollback
		} else if err != nil {
			tx.Rollback(ctx) // err is non-nil; don't change it
		} else {
			err = tx.Commit(ctx) // err is nil; if Commit returns error, update err
		}
	}()

	err = txFunc(tx)
	return err
}

func txExec(tx pgx.Tx) execer {
	return func(ctx context.Context, query string, args ...any) error {
		_, err := tx.Exec(ctx, query, args...)
		return err
	}
}

func (pd *PostgresDriver) Setup(ctx context.Context) error {
	return pd.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return setupSQL(ctx, txExec(tx), postgresDialect)
	})
}

func (pd *PostgresDriver) Seed(ctx context.Context, tables store.Tables) error {
	return pd.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return seedSQL(ctx, txExec(tx), postgresDialect, tables)
	})
}

func (pd *PostgresDriver) query(ctx context.Context, query string, args ...any) (Rows, func(), error) {
	rows, err := pd.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	return rows, rows.Close, nil
}

func (pd *PostgresDriver) LoadTables(ctx context.Context) (store.Tables, error) {
	return loadSQL(ctx, pd.query, postgresDialect)
}
