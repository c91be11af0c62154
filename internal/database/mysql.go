package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"northwind-analytics/internal/store"
)

// MySQLDriver needs parseTime=true in the DSN so DATETIME columns scan into
// time.Time.
type MySQLDriver struct {
	db *sql.DB
}

func (md *MySQLDriver) Connect(dsn string) error {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return err
	}
	md.db = db
	return nil
}

func (md *MySQLDriver) Close() error {
	return md.db.Close()
}

func (md *MySQLDriver) Reset(ctx context.Context) error {
	for i := len(store.TableNames) - 1; i >= 0; i-- {
		if _, err := md.db.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", store.TableNames[i])); err != nil {
			return err
		}
	}
	return nil
}

func (md *MySQLDriver) ExecuteTx(ctx context.Context, txFunc func(*sql.Tx) error) error {
	tx, err := md.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := txFunc(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func sqlTxExec(tx *sql.Tx) execer {
	return func(ctx context.Context, query string, args ...any) error {
		_, err := tx.ExecContext(ctx, query, args...)
		return err
	}
}

// Setup runs outside a transaction: MySQL commits DDL implicitly.
func (md *MySQLDriver) Setup(ctx context.Context) error {
	return setupSQL(ctx, func(ctx context.Context, query string, args ...any) error {
		_, err := md.db.ExecContext(ctx, query, args...)
		return err
	}, mysqlDialect)
}

func (md *MySQLDriver) Seed(ctx context.Context, tables store.Tables) error {
	return md.ExecuteTx(ctx, func(tx *sql.Tx) error {
		return seedSQL(ctx, sqlTxExec(tx), mysqlDialect, tables)
	})
}

func (md *MySQLDriver) query(ctx context.Context, query string, args ...any) (Rows, func(), error) {
	rows, err := md.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	return rows, func() { rows.Close() }, nil
}

func (md *MySQLDriver) LoadTables(ctx context.Context) (store.Tables, error) {
	return loadSQL(ctx, md.query, mysqlDialect)
}
