package store

import (
	"errors"
	"math"
	"testing"
)

func str(s string) *string { return &s }

func tables() Tables {
	return Tables{
		Customers:  []Customer{{ID: "ALFKI", CompanyName: "Alfreds", Country: str("Germany")}},
		Categories: []Category{{ID: 1, Name: "Beverages"}},
		Products:   []Product{{ID: 11, Name: "Chai", UnitPrice: 18}},
		Orders:     []Order{{ID: 100, CustomerID: "ALFKI"}},
		OrderLines: []OrderLine{
			{OrderID: 100, ProductID: 11, UnitPrice: 10, Quantity: 4, Discount: 0.25},
			{OrderID: 100, ProductID: 12, UnitPrice: 2.5, Quantity: 2},
		},
	}
}

func TestLoad_ComputesLineTotal(t *testing.T) {
	s, err := Load(tables())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	lines := s.OrderLines()
	if math.Abs(lines[0].LineTotal-30) > 1e-9 {
		t.Fatalf("expected line total 30, got %v", lines[0].LineTotal)
	}
	if math.Abs(lines[1].LineTotal-5) > 1e-9 {
		t.Fatalf("expected line total 5, got %v", lines[1].LineTotal)
	}
}

func TestLineTotal(t *testing.T) {
	cases := []struct {
		price    float64
		quantity int
		discount float64
		want     float64
	}{
		{18, 10, 0.15, 153},
		{14.4, 3, 0, 43.2},
		{9.65, 7, 0.05, 64.1725},
		{2.5, 1, 0.25, 1.875},
		{0.333333, 3, 0, 1},
	}
	for _, c := range cases {
		if got := lineTotal(c.price, c.quantity, c.discount); got != c.want {
			t.Errorf("lineTotal(%v, %d, %v) = %v, want %v", c.price, c.quantity, c.discount, got, c.want)
		}
	}
}

func TestLoad_RejectsDuplicateKeys(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Tables)
		table  string
	}{
		{"customer", func(t *Tables) { t.Customers = append(t.Customers, Customer{ID: "ALFKI"}) }, TableCustomers},
		{"category", func(t *Tables) { t.Categories = append(t.Categories, Category{ID: 1}) }, TableCategories},
		{"product", func(t *Tables) { t.Products = append(t.Products, Product{ID: 11}) }, TableProducts},
		{"order", func(t *Tables) { t.Orders = append(t.Orders, Order{ID: 100}) }, TableOrders},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tables()
			tc.mutate(&in)
			s, err := Load(in)
			if s != nil {
				t.Fatalf("expected no store on error")
			}
			var se *SchemaError
			if !errors.As(err, &se) {
				t.Fatalf("expected SchemaError, got %v", err)
			}
			if se.Table != tc.table {
				t.Fatalf("expected table %s, got %s", tc.table, se.Table)
			}
		})
	}
}

func TestLoad_DoesNotAliasInput(t *testing.T) {
	in := tables()
	s, err := Load(in)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	in.Customers[0].CompanyName = "changed"
	if c, _ := s.Customer("ALFKI"); c.CompanyName != "Alfreds" {
		t.Fatalf("store aliased the input slice")
	}
	out := s.Products()
	out[0].Name = "changed"
	if p, _ := s.Product(11); p.Name != "Chai" {
		t.Fatalf("accessor aliased the store slice")
	}
}

func TestCheckColumns(t *testing.T) {
	if err := CheckColumns(TableOrderDetails, []string{"ORDER_ID", "product_id", "unit_price", "quantity", "discount", "extra"}); err != nil {
		t.Fatalf("expected columns to pass, got %v", err)
	}

	err := CheckColumns(TableOrderDetails, []string{"order_id", "product_id", "quantity"})
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(se.Missing) != 2 || se.Missing[0] != "unit_price" || se.Missing[1] != "discount" {
		t.Fatalf("unexpected missing columns %v", se.Missing)
	}
}

func TestLookups(t *testing.T) {
	s, err := Load(tables())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := s.Order(100); !ok {
		t.Fatalf("expected order 100")
	}
	if _, ok := s.Category(2); ok {
		t.Fatalf("did not expect category 2")
	}
	if s.ProductCount() != 1 {
		t.Fatalf("expected 1 product, got %d", s.ProductCount())
	}
}
