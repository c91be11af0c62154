package database

import (
	"fmt"
	"strings"

	"northwind-analytics/internal/store"
)

// dialect captures the differences between the SQL sources.
type dialect struct {
	name        string
	placeholder func(i int) string
	float       func(column string) string
	columnsSQL  string
	ddl         map[string]string
}

var postgresDialect = dialect{
	name:        "postgres",
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	float:       func(c string) string { return c + "::float8 AS " + c },
	columnsSQL:  "SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1",
	ddl: map[string]string{
		store.TableCustomers: `
		CREATE TABLE IF NOT EXISTS customers (
			customer_id VARCHAR(16) PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			country VARCHAR(64),
			city VARCHAR(64),
			region VARCHAR(64)
		);`,
		store.TableCategories: `
		CREATE TABLE IF NOT EXISTS categories (
			category_id INT PRIMARY KEY,
			category_name VARCHAR(64) NOT NULL,
			description TEXT
		);`,
		store.TableProducts: `
		CREATE TABLE IF NOT EXISTS products (
			product_id INT PRIMARY KEY,
			product_name VARCHAR(255) NOT NULL,
			category_id INT,
			supplier_id INT,
			unit_price DOUBLE PRECISION NOT NULL,
			units_in_stock INT,
			units_on_order INT,
			reorder_level INT,
			discontinued BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		store.TableOrders: `
		CREATE TABLE IF NOT EXISTS orders (
			order_id INT PRIMARY KEY,
			customer_id VARCHAR(16) NOT NULL,
			employee_id INT,
			order_date TIMESTAMP,
			required_date TIMESTAMP,
			shipped_date TIMESTAMP,
			ship_via INT,
			freight DOUBLE PRECISION
		);`,
		store.TableOrderDetails: `
		CREATE TABLE IF NOT EXISTS order_details (
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			unit_price DOUBLE PRECISION NOT NULL,
			quantity INT NOT NULL,
			discount DOUBLE PRECISION NOT NULL DEFAULT 0,
			PRIMARY KEY (order_id, product_id)
		);`,
	},
}

var mysqlDialect = dialect{
	name:        "mysql",
	placeholder: func(int) string { return "?" },
	float:       func(c string) string { return c },
	columnsSQL:  "SELECT column_name FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ?",
	ddl: map[string]string{
		store.TableCustomers: `
		CREATE TABLE IF NOT EXISTS customers (
			customer_id VARCHAR(16) PRIMARY KEY,
			company_name VARCHAR(255) NOT NULL,
			country VARCHAR(64),
			city VARCHAR(64),
			region VARCHAR(64)
		);`,
		store.TableCategories: `
		CREATE TABLE IF NOT EXISTS categories (
			category_id INT PRIMARY KEY,
			category_name VARCHAR(64) NOT NULL,
			description TEXT
		);`,
		store.TableProducts: `
		CREATE TABLE IF NOT EXISTS products (
			product_id INT PRIMARY KEY,
			product_name VARCHAR(255) NOT NULL,
			category_id INT,
			supplier_id INT,
			unit_price DOUBLE NOT NULL,
			units_in_stock INT,
			units_on_order INT,
			reorder_level INT,
			discontinued BOOLEAN NOT NULL DEFAULT FALSE
		);`,
		store.TableOrders: `
		CREATE TABLE IF NOT EXISTS orders (
			order_id INT PRIMARY KEY,
			customer_id VARCHAR(16) NOT NULL,
			employee_id INT,
			order_date DATETIME,
			required_date DATETIME,
			shipped_date DATETIME,
			ship_via INT,
			freight DOUBLE
		);`,
		store.TableOrderDetails: `
		CREATE TABLE IF NOT EXISTS order_details (
			order_id INT NOT NULL,
			product_id INT NOT NULL,
			unit_price DOUBLE NOT NULL,
			quantity INT NOT NULL,
			discount DOUBLE NOT NULL DEFAULT 0,
			PRIMARY KEY (order_id, product_id)
		);`,
	},
}

var floatColumns = map[string]bool{"unit_price": true, "discount": true, "freight": true}

// orderBy keeps every source returning rows in key order.
var orderBy = map[string]string{
	store.TableCustomers:    "customer_id",
	store.TableCategories:   "category_id",
	store.TableProducts:     "product_id",
	store.TableOrders:       "order_id",
	store.TableOrderDetails: "order_id, product_id",
}

func (d dialect) selectSQL(table string) string {
	cols := store.RequiredColumns[table]
	exprs := make([]string, len(cols))
	for i, c := range cols {
		if floatColumns[c] {
			exprs[i] = d.float(c)
		} else {
			exprs[i] = c
		}
	}
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", strings.Join(exprs, ", "), table, orderBy[table])
}

func (d dialect) insertSQL(table string) string {
	cols := store.RequiredColumns[table]
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), strings.Join(marks, ", "))
}

/*
MongoDB document structure, one collection per table:

customers:     { _id: <customer_id>, company_name, country, city, region }
categories:    { _id: <category_id>, category_name, description }
products:      { _id: <product_id>, product_name, category_id, supplier_id, unit_price, ... }
orders:        { _id: <order_id>, customer_id, employee_id, order_date, ... }
order_details: { _id: <generated>, order_id, product_id, unit_price, quantity, discount }

*/
