package view

import (
	"errors"
	"testing"
	"time"

	"northwind-analytics/internal/store"
)

func str(s string) *string { return &s }
func num(i int) *int       { return &i }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func fixture(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Load(store.Tables{
		Customers: []store.Customer{
			{ID: "ALFKI", CompanyName: "Alfreds", Country: str("Germany")},
			{ID: "BONAP", CompanyName: "Bon app'", Country: str("France")},
		},
		Categories: []store.Category{{ID: 1, Name: "Beverages"}, {ID: 2, Name: "Condiments"}},
		Products: []store.Product{
			{ID: 1, Name: "Chai", CategoryID: num(1)},
			{ID: 2, Name: "Aniseed Syrup", CategoryID: num(2)},
			{ID: 3, Name: "Orphan", CategoryID: num(9)},
		},
		Orders: []store.Order{
			{ID: 10, CustomerID: "ALFKI", OrderDate: day(1997, 1, 1)},
			{ID: 11, CustomerID: "BONAP", OrderDate: day(1997, 1, 31)},
			{ID: 12, CustomerID: "GHOST", OrderDate: day(1997, 2, 15)},
			{ID: 13, CustomerID: "ALFKI"},
		},
		OrderLines: []store.OrderLine{
			{OrderID: 10, ProductID: 1, UnitPrice: 10, Quantity: 1},
			{OrderID: 10, ProductID: 2, UnitPrice: 20, Quantity: 1},
			{OrderID: 11, ProductID: 1, UnitPrice: 10, Quantity: 2},
			{OrderID: 12, ProductID: 3, UnitPrice: 5, Quantity: 1},
			{OrderID: 13, ProductID: 4, UnitPrice: 1, Quantity: 1},
			{OrderID: 99, ProductID: 1, UnitPrice: 1, Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

func revenue(v View) float64 {
	total := 0.0
	for r := range v.All() {
		total += r.LineTotal
	}
	return total
}

func TestBuild_IsLeftPreserving(t *testing.T) {
	vs := Build(fixture(t))

	if n := len(vs.OrderDetailsEnriched()); n != 6 {
		t.Fatalf("expected 6 enriched details, got %d", n)
	}
	if n := len(vs.OrdersEnriched()); n != 4 {
		t.Fatalf("expected 4 enriched orders, got %d", n)
	}

	rows := vs.Full().Rows()
	if len(rows) != 6 {
		t.Fatalf("expected 6 fact rows, got %d", len(rows))
	}
	for i, want := range []int{10, 10, 11, 12, 13, 99} {
		if rows[i].OrderID != want {
			t.Fatalf("row %d: expected order %d, got %d", i, want, rows[i].OrderID)
		}
	}

	if rows[0].CategoryName == nil || *rows[0].CategoryName != "Beverages" {
		t.Fatalf("expected Beverages on row 0")
	}
	if rows[3].ProductName == nil || rows[3].CategoryName != nil {
		t.Fatalf("expected product without category on row 3")
	}
	if rows[3].CustomerID == nil || *rows[3].CustomerID != "GHOST" || rows[3].Country != nil {
		t.Fatalf("expected order with unknown customer to keep its id and null country")
	}
	if rows[4].ProductName != nil {
		t.Fatalf("expected unknown product to stay null")
	}
	if rows[5].CustomerID != nil || rows[5].OrderDate != nil {
		t.Fatalf("expected unknown order to leave order columns null")
	}
	if vs.Full().CatalogProducts() != 3 {
		t.Fatalf("expected catalog of 3, got %d", vs.Full().CatalogProducts())
	}
}

func TestFilter(t *testing.T) {
	full := Build(fixture(t)).Full()

	cases := []struct {
		name     string
		criteria Criteria
		orders   []int
	}{
		{"no-op", Criteria{}, []int{10, 10, 11, 12, 13, 99}},
		{"closed date range", Criteria{Start: day(1997, 1, 1), End: day(1997, 1, 31)}, []int{10, 10, 11}},
		{"start only", Criteria{Start: day(1997, 2, 1)}, []int{12}},
		{"end only", Criteria{End: day(1997, 1, 1)}, []int{10, 10}},
		{"country", Criteria{Countries: []string{"France"}}, []int{11}},
		{"category", Criteria{Categories: []string{"Beverages"}}, []int{10, 11, 99}},
		{"combined", Criteria{Countries: []string{"Germany"}, Categories: []string{"Condiments"}}, []int{10}},
		{"no match", Criteria{Countries: []string{"Peru"}}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Filter(full, tc.criteria)
			if got.Len() != len(tc.orders) {
				t.Fatalf("expected %d rows, got %d", len(tc.orders), got.Len())
			}
			i := 0
			for r := range got.All() {
				if r.OrderID != tc.orders[i] {
					t.Fatalf("row %d: expected order %d, got %d", i, tc.orders[i], r.OrderID)
				}
				i++
			}
			if revenue(got) > revenue(full) {
				t.Fatalf("filtered revenue exceeds unfiltered")
			}
		})
	}

	if revenue(Filter(full, Criteria{})) != revenue(full) {
		t.Fatalf("no-op filter changed revenue")
	}
	if full.Len() != 6 {
		t.Fatalf("filtering mutated the full view")
	}
}

func TestEmptyWarning(t *testing.T) {
	full := Build(fixture(t)).Full()
	if err := full.EmptyWarning(); err != nil {
		t.Fatalf("unexpected warning %v", err)
	}
	var w *EmptyResultWarning
	if err := Filter(full, Criteria{Countries: []string{"Peru"}}).EmptyWarning(); !errors.As(err, &w) {
		t.Fatalf("expected EmptyResultWarning, got %v", err)
	}
}

func TestCriteriaValidate(t *testing.T) {
	if err := (Criteria{Start: day(1997, 1, 1), End: day(1997, 1, 1)}).Validate(); err != nil {
		t.Fatalf("expected equal bounds to validate, got %v", err)
	}
	if err := (Criteria{End: day(1997, 1, 1)}).Validate(); err != nil {
		t.Fatalf("expected open start to validate, got %v", err)
	}
	if err := (Criteria{Start: day(1997, 2, 1), End: day(1997, 1, 1)}).Validate(); err == nil {
		t.Fatalf("expected inverted range to fail")
	}
	if err := (Criteria{Countries: []string{""}}).Validate(); err == nil {
		t.Fatalf("expected blank country to fail")
	}
}

func TestOptions(t *testing.T) {
	opts := Options(Build(fixture(t)).Full())
	if len(opts.Countries) != 2 || opts.Countries[0] != "France" || opts.Countries[1] != "Germany" {
		t.Fatalf("unexpected countries %v", opts.Countries)
	}
	if len(opts.Categories) != 2 || opts.Categories[0] != "Beverages" {
		t.Fatalf("unexpected categories %v", opts.Categories)
	}
	if !opts.MinDate.Equal(*day(1997, 1, 1)) || !opts.MaxDate.Equal(*day(1997, 2, 15)) {
		t.Fatalf("unexpected date bounds %v %v", opts.MinDate, opts.MaxDate)
	}
}

func TestSubset(t *testing.T) {
	full := Build(fixture(t)).Full()
	got := Subset(full, []string{"ALFKI"})
	if got.Len() != 3 {
		t.Fatalf("expected 3 rows for ALFKI, got %d", got.Len())
	}
	if Subset(full, nil).Len() != 0 {
		t.Fatalf("expected empty subset for no ids")
	}
}

func TestParseDate(t *testing.T) {
	for _, in := range []string{"1997-01-02", "1997-01-02 10:30", "1997-01-02 10:30:00", "1997-01-02T10:30:00Z"} {
		if _, err := ParseDate(in); err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
	}
	if _, err := ParseDate("02/01/1997"); err == nil {
		t.Fatalf("expected error for unsupported layout")
	}
}
