// Package store holds the five typed source tables after validation. A Store
// is immutable: accessors hand out copies and nothing is recomputed after Load.
package store

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// lineTotalPlaces is the precision line totals are kept at.
const lineTotalPlaces = 4

type Store struct {
	customers  []Customer
	categories []Category
	products   []Product
	orders     []Order
	lines      []OrderLine

	customerIdx map[string]int
	categoryIdx map[int]int
	productIdx  map[int]int
	orderIdx    map[int]int
}

// Load validates key uniqueness and derives LineTotal for every order line.
// Nothing is retained when an error is returned.
func Load(t Tables) (*Store, error) {
	s := &Store{
		customers:  slices.Clone(t.Customers),
		categories: slices.Clone(t.Categories),
		products:   slices.Clone(t.Products),
		orders:     slices.Clone(t.Orders),
		lines:      slices.Clone(t.OrderLines),
	}

	var err error
	if s.customerIdx, err = uniqueIndex(TableCustomers, "customer_id", s.customers, func(c Customer) string { return c.ID }); err != nil {
		return nil, err
	}
	if s.categoryIdx, err = uniqueIndex(TableCategories, "category_id", s.categories, func(c Category) int { return c.ID }); err != nil {
		return nil, err
	}
	if s.productIdx, err = uniqueIndex(TableProducts, "product_id", s.products, func(p Product) int { return p.ID }); err != nil {
		return nil, err
	}
	if s.orderIdx, err = uniqueIndex(TableOrders, "order_id", s.orders, func(o Order) int { return o.ID }); err != nil {
		return nil, err
	}

	for i := range s.lines {
		l := &s.lines[i]
		l.LineTotal = lineTotal(l.UnitPrice, l.Quantity, l.Discount)
	}

	return s, nil
}

// lineTotal is price * quantity * (1 - discount) in decimal arithmetic,
// rounded to four places.
func lineTotal(price float64, quantity int, discount float64) float64 {
	net := decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount))
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Mul(net).
		Round(lineTotalPlaces).
		InexactFloat64()
}

func uniqueIndex[T any, K comparable](table, column string, rows []T, key func(T) K) (map[K]int, error) {
	idx := make(map[K]int, len(rows))
	for i, r := range rows {
		k := key(r)
		if _, dup := idx[k]; dup {
			return nil, &SchemaError{Table: table, Column: column, Key: k}
		}
		idx[k] = i
	}
	return idx, nil
}

// CheckColumns verifies that columns covers RequiredColumns[table].
// Comparison is case-insensitive.
func CheckColumns(table string, columns []string) error {
	required, ok := RequiredColumns[table]
	if !ok {
		return &SchemaError{Table: table, Missing: []string{"<unknown table>"}}
	}
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[strings.ToLower(c)] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Table: table, Missing: missing}
	}
	return nil
}

func (s *Store) Customers() []Customer   { return slices.Clone(s.customers) }
func (s *Store) Categories() []Category  { return slices.Clone(s.categories) }
func (s *Store) Products() []Product     { return slices.Clone(s.products) }
func (s *Store) Orders() []Order         { return slices.Clone(s.orders) }
func (s *Store) OrderLines() []OrderLine { return slices.Clone(s.lines) }

func (s *Store) ProductCount() int { return len(s.products) }

func (s *Store) Customer(id string) (Customer, bool) {
	i, ok := s.customerIdx[id]
	if !ok {
		return Customer{}, false
	}
	return s.customers[i], true
}

func (s *Store) Category(id int) (Category, bool) {
	i, ok := s.categoryIdx[id]
	if !ok {
		return Category{}, false
	}
	return s.categories[i], true
}

func (s *Store) Product(id int) (Product, bool) {
	i, ok := s.productIdx[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

func (s *Store) Order(id int) (Order, bool) {
	i, ok := s.orderIdx[id]
	if !ok {
		return Order{}, false
	}
	return s.orders[i], true
}
