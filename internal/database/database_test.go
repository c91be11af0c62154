package database

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"northwind-analytics/internal/store"
)

type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(row) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if row[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(row[i]))
	}
	return nil
}

func (r *fakeRows) Err() error { return nil }

// fakeDB answers column lookups from columns and selects from rows. Any
// statement containing failOn fails.
type fakeDB struct {
	columns  map[string][]string
	rows     map[string][][]any
	failOn   string
	released int
	execs    []string
}

var errFake = errors.New("connection reset")

func (f *fakeDB) query(ctx context.Context, query string, args ...any) (Rows, func(), error) {
	release := func() { f.released++ }
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return nil, nil, errFake
	}
	if len(args) == 1 {
		var data [][]any
		for _, c := range f.columns[args[0].(string)] {
			data = append(data, []any{c})
		}
		return &fakeRows{data: data}, release, nil
	}
	for table, data := range f.rows {
		if strings.Contains(query, "FROM "+table+" ") {
			return &fakeRows{data: data}, release, nil
		}
	}
	return &fakeRows{}, release, nil
}

func (f *fakeDB) exec(ctx context.Context, query string, args ...any) error {
	if f.failOn != "" && strings.Contains(query, f.failOn) {
		return errFake
	}
	f.execs = append(f.execs, query)
	return nil
}

func ptr[T any](v T) *T { return &v }

func fullColumns() map[string][]string {
	cols := map[string][]string{}
	for table, c := range store.RequiredColumns {
		cols[table] = append([]string(nil), c...)
	}
	return cols
}

func TestLoadSQL(t *testing.T) {
	date := time.Date(1996, 7, 4, 0, 0, 0, 0, time.UTC)
	db := &fakeDB{
		columns: fullColumns(),
		rows: map[string][][]any{
			store.TableCustomers:    {{"ALFKI", "Alfreds", ptr("Germany"), ptr("Berlin"), nil}},
			store.TableCategories:   {{1, "Beverages", nil}},
			store.TableProducts:     {{1, "Chai", ptr(1), nil, 18.0, ptr(39), nil, nil, false}},
			store.TableOrders:       {{10248, "ALFKI", nil, &date, nil, nil, nil, ptr(32.38)}},
			store.TableOrderDetails: {{10248, 1, 18.0, 10, 0.1}},
		},
	}

	tables, err := loadSQL(context.Background(), db.query, postgresDialect)
	if err != nil {
		t.Fatalf("loadSQL() error = %v", err)
	}
	if len(tables.Customers) != 1 || *tables.Customers[0].Country != "Germany" || tables.Customers[0].Region != nil {
		t.Errorf("customers = %+v", tables.Customers)
	}
	if tables.Categories[0].Description != nil {
		t.Errorf("category description = %v, want nil", tables.Categories[0].Description)
	}
	if p := tables.Products[0]; p.Name != "Chai" || *p.CategoryID != 1 || p.SupplierID != nil {
		t.Errorf("product = %+v", p)
	}
	if o := tables.Orders[0]; !o.OrderDate.Equal(date) || o.ShippedDate != nil {
		t.Errorf("order = %+v", o)
	}
	if l := tables.OrderLines[0]; l.Quantity != 10 || l.Discount != 0.1 {
		t.Errorf("line = %+v", l)
	}
	// five column lookups plus five selects
	if db.released != 10 {
		t.Errorf("released %d cursors, want 10", db.released)
	}

	s, err := store.Load(tables)
	if err != nil {
		t.Fatalf("store.Load() error = %v", err)
	}
	if got := s.ProductCount(); got != 1 {
		t.Errorf("ProductCount() = %d, want 1", got)
	}
}

func TestLoadSQLMissingColumn(t *testing.T) {
	cols := fullColumns()
	cols[store.TableOrderDetails] = []string{"order_id", "product_id", "unit_price", "quantity"}
	db := &fakeDB{columns: cols}

	_, err := loadSQL(context.Background(), db.query, mysqlDialect)
	var se *store.SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("loadSQL() error = %v, want SchemaError", err)
	}
	if se.Table != store.TableOrderDetails || len(se.Missing) != 1 || se.Missing[0] != "discount" {
		t.Errorf("SchemaError = %+v", se)
	}
}

func TestSQLErrorsNameTheSource(t *testing.T) {
	tests := []struct {
		name string
		run  func(db *fakeDB) error
		want string
	}{
		{
			name: "postgres load",
			run: func(db *fakeDB) error {
				_, err := loadSQL(context.Background(), db.query, postgresDialect)
				return err
			},
			want: "postgres: load orders: ",
		},
		{
			name: "mysql seed",
			run: func(db *fakeDB) error {
				return seedSQL(context.Background(), db.exec, mysqlDialect, store.Tables{Orders: []store.Order{{ID: 1}}})
			},
			want: "mysql: seed orders: ",
		},
		{
			name: "mysql setup",
			run:  func(db *fakeDB) error { return setupSQL(context.Background(), db.exec, mysqlDialect) },
			want: "mysql: create orders: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run(&fakeDB{columns: fullColumns(), failOn: " orders"})
			if !errors.Is(err, errFake) {
				t.Fatalf("error = %v, want %v", err, errFake)
			}
			if !strings.HasPrefix(err.Error(), tt.want) {
				t.Errorf("error = %q, want prefix %q", err, tt.want)
			}
		})
	}
}

func TestSelectSQL(t *testing.T) {
	tests := []struct {
		name  string
		d     dialect
		table string
		want  string
	}{
		{
			name:  "postgres casts floats",
			d:     postgresDialect,
			table: store.TableOrderDetails,
			want:  "SELECT order_id, product_id, unit_price::float8 AS unit_price, quantity, discount::float8 AS discount FROM order_details ORDER BY order_id, product_id",
		},
		{
			name:  "mysql plain",
			d:     mysqlDialect,
			table: store.TableCategories,
			want:  "SELECT category_id, category_name, description FROM categories ORDER BY category_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.d.selectSQL(tt.table); got != tt.want {
				t.Errorf("selectSQL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInsertSQL(t *testing.T) {
	if got, want := postgresDialect.insertSQL(store.TableCategories), "INSERT INTO categories (category_id, category_name, description) VALUES ($1, $2, $3)"; got != want {
		t.Errorf("postgres insertSQL() = %q, want %q", got, want)
	}
	if got, want := mysqlDialect.insertSQL(store.TableCategories), "INSERT INTO categories (category_id, category_name, description) VALUES (?, ?, ?)"; got != want {
		t.Errorf("mysql insertSQL() = %q, want %q", got, want)
	}
}

func TestSeedSQL(t *testing.T) {
	db := &fakeDB{}
	tables := store.Tables{
		Customers:  []store.Customer{{ID: "ALFKI", CompanyName: "Alfreds"}},
		Categories: []store.Category{{ID: 1, Name: "Beverages"}},
		Products:   []store.Product{{ID: 1, Name: "Chai"}, {ID: 2, Name: "Chang"}},
		Orders:     []store.Order{{ID: 10248, CustomerID: "ALFKI"}},
		OrderLines: []store.OrderLine{{OrderID: 10248, ProductID: 1, Quantity: 1}},
	}

	if err := setupSQL(context.Background(), db.exec, mysqlDialect); err != nil {
		t.Fatalf("setupSQL() error = %v", err)
	}
	if err := seedSQL(context.Background(), db.exec, mysqlDialect, tables); err != nil {
		t.Fatalf("seedSQL() error = %v", err)
	}
	// five CREATE statements then one INSERT per row
	if len(db.execs) != 11 {
		t.Fatalf("exec count = %d, want 11", len(db.execs))
	}
	if !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS customers") {
		t.Errorf("first statement = %q", db.execs[0])
	}
	if !strings.HasPrefix(db.execs[10], "INSERT INTO order_details") {
		t.Errorf("last statement = %q", db.execs[10])
	}
}

func TestNewDriver(t *testing.T) {
	tests := []struct {
		source string
		want   any
	}{
		{"postgres", &PostgresDriver{}},
		{"mysql", &MySQLDriver{}},
		{"mongo", &MongoDriver{database: "northwind"}},
	}
	for _, tt := range tests {
		got, err := NewDriver(tt.source, "northwind")
		if err != nil {
			t.Fatalf("NewDriver(%q) error = %v", tt.source, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("NewDriver(%q) = %#v, want %#v", tt.source, got, tt.want)
		}
	}

	if _, err := NewDriver("sqlite", ""); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("NewDriver(sqlite) error = %v, want ErrUnknownSource", err)
	}
}
