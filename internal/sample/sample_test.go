package sample

import (
	"reflect"
	"testing"

	"northwind-analytics/internal/store"
)

func TestGenerate_IsDeterministicAndLoads(t *testing.T) {
	opts := DefaultOptions()
	a, b := Generate(opts), Generate(opts)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same options produced different tables")
	}

	s, err := store.Load(a)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Orders()) != opts.Orders || len(s.Customers()) != opts.Customers || s.ProductCount() != opts.Products {
		t.Fatalf("unexpected table sizes")
	}

	seen := map[[2]int]bool{}
	for _, l := range s.OrderLines() {
		key := [2]int{l.OrderID, l.ProductID}
		if seen[key] {
			t.Fatalf("order %d repeats product %d", l.OrderID, l.ProductID)
		}
		seen[key] = true
		if _, ok := s.Product(l.ProductID); !ok {
			t.Fatalf("dangling product %d", l.ProductID)
		}
	}
}

func TestGenerate_SeedChangesData(t *testing.T) {
	opts := DefaultOptions()
	a := Generate(opts)
	opts.Seed++
	if reflect.DeepEqual(a, Generate(opts)) {
		t.Fatalf("expected a different seed to change the tables")
	}
}
