package database

import (
	"context"
	"fmt"

	"northwind-analytics/internal/store"
)

// Rows is the cursor shape shared by pgx.Rows and *sql.Rows.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// querier runs a query and returns its rows along with their release func.
type querier func(ctx context.Context, query string, args ...any) (Rows, func(), error)

type execer func(ctx context.Context, query string, args ...any) error

func queryAll[T any](ctx context.Context, q querier, query string, fields func(*T) []any, args ...any) ([]T, error) {
	rows, release, err := q(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer release()

	var out []T
	for rows.Next() {
		var v T
		if err := rows.Scan(fields(&v)...); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Scan targets. Nullable columns scan into the pointer fields directly.

func customerFields(c *store.Customer) []any {
	return []any{&c.ID, &c.CompanyName, &c.Country, &c.City, &c.Region}
}

func categoryFields(c *store.Category) []any {
	return []any{&c.ID, &c.Name, &c.Description}
}

func productFields(p *store.Product) []any {
	return []any{&p.ID, &p.Name, &p.CategoryID, &p.SupplierID, &p.UnitPrice, &p.UnitsInStock, &p.UnitsOnOrder, &p.ReorderLevel, &p.Discontinued}
}

func orderFields(o *store.Order) []any {
	return []any{&o.ID, &o.CustomerID, &o.EmployeeID, &o.OrderDate, &o.RequiredDate, &o.ShippedDate, &o.ShipVia, &o.Freight}
}

func orderLineFields(l *store.OrderLine) []any {
	return []any{&l.OrderID, &l.ProductID, &l.UnitPrice, &l.Quantity, &l.Discount}
}

// Insert arguments. A nil pointer is written as NULL.

func customerArgs(c *store.Customer) []any {
	return []any{c.ID, c.CompanyName, c.Country, c.City, c.Region}
}

func categoryArgs(c *store.Category) []any {
	return []any{c.ID, c.Name, c.Description}
}

func productArgs(p *store.Product) []any {
	return []any{p.ID, p.Name, p.CategoryID, p.SupplierID, p.UnitPrice, p.UnitsInStock, p.UnitsOnOrder, p.ReorderLevel, p.Discontinued}
}

func orderArgs(o *store.Order) []any {
	return []any{o.ID, o.CustomerID, o.EmployeeID, o.OrderDate, o.RequiredDate, o.ShippedDate, o.ShipVia, o.Freight}
}

func orderLineArgs(l *store.OrderLine) []any {
	return []any{l.OrderID, l.ProductID, l.UnitPrice, l.Quantity, l.Discount}
}

// checkColumns verifies every table exposes its required columns before any
// row is read.
func checkColumns(ctx context.Context, q querier, d dialect) error {
	for _, table := range store.TableNames {
		cols, err := queryAll(ctx, q, d.columnsSQL, func(s *string) []any { return []any{s} }, table)
		if err != nil {
			return fmt.Errorf("%s: columns of %s: %w", d.name, table, err)
		}
		if err := store.CheckColumns(table, cols); err != nil {
			return err
		}
	}
	return nil
}

func loadSQL(ctx context.Context, q querier, d dialect) (store.Tables, error) {
	var t store.Tables
	if err := checkColumns(ctx, q, d); err != nil {
		return t, err
	}

	var err error
	if t.Customers, err = queryAll(ctx, q, d.selectSQL(store.TableCustomers), customerFields); err != nil {
		return t, fmt.Errorf("%s: load customers: %w", d.name, err)
	}
	if t.Categories, err = queryAll(ctx, q, d.selectSQL(store.TableCategories), categoryFields); err != nil {
		return t, fmt.Errorf("%s: load categories: %w", d.name, err)
	}
	if t.Products, err = queryAll(ctx, q, d.selectSQL(store.TableProducts), productFields); err != nil {
		return t, fmt.Errorf("%s: load products: %w", d.name, err)
	}
	if t.Orders, err = queryAll(ctx, q, d.selectSQL(store.TableOrders), orderFields); err != nil {
		return t, fmt.Errorf("%s: load orders: %w", d.name, err)
	}
	if t.OrderLines, err = queryAll(ctx, q, d.selectSQL(store.TableOrderDetails), orderLineFields); err != nil {
		return t, fmt.Errorf("%s: load order details: %w", d.name, err)
	}
	return t, nil
}

func insertAll[T any](ctx context.Context, exec execer, query string, rows []T, args func(*T) []any) error {
	for i := range rows {
		if err := exec(ctx, query, args(&rows[i])...); err != nil {
			return err
		}
	}
	return nil
}

func seedSQL(ctx context.Context, exec execer, d dialect, t store.Tables) error {
	if err := insertAll(ctx, exec, d.insertSQL(store.TableCustomers), t.Customers, customerArgs); err != nil {
		return fmt.Errorf("%s: seed customers: %w", d.name, err)
	}
	if err := insertAll(ctx, exec, d.insertSQL(store.TableCategories), t.Categories, categoryArgs); err != nil {
		return fmt.Errorf("%s: seed categories: %w", d.name, err)
	}
	if err := insertAll(ctx, exec, d.insertSQL(store.TableProducts), t.Products, productArgs); err != nil {
		return fmt.Errorf("%s: seed products: %w", d.name, err)
	}
	if err := insertAll(ctx, exec, d.insertSQL(store.TableOrders), t.Orders, orderArgs); err != nil {
		return fmt.Errorf("%s: seed orders: %w", d.name, err)
	}
	if err := insertAll(ctx, exec, d.insertSQL(store.TableOrderDetails), t.OrderLines, orderLineArgs); err != nil {
		return fmt.Errorf("%s: seed order details: %w", d.name, err)
	}
	return nil
}

func setupSQL(ctx context.Context, exec execer, d dialect) error {
	for _, table := range store.TableNames {
		if err := exec(ctx, d.ddl[table]); err != nil {
			return fmt.Errorf("%s: create %s: %w", d.name, table, err)
		}
	}
	return nil
}
