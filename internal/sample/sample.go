// Package sample generates deterministic Northwind-shaped tables for seeding
// databases and for load runs.
package sample

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"northwind-analytics/internal/store"
)

type Options struct {
	Customers int
	Products  int
	Orders    int
	Seed      int64
	Start     time.Time
	Months    int
}

func DefaultOptions() Options {
	return Options{
		Customers: 90,
		Products:  77,
		Orders:    830,
		Seed:      1996,
		Start:     time.Date(1996, time.July, 4, 0, 0, 0, 0, time.UTC),
		Months:    22,
	}
}

var categories = []struct{ name, description string }{
	{"Beverages", "Soft drinks, coffees, teas, beers, and ales"},
	{"Condiments", "Sweet and savory sauces, relishes, spreads, and seasonings"},
	{"Confections", "Desserts, candies, and sweet breads"},
	{"Dairy Products", "Cheeses"},
	{"Grains/Cereals", "Breads, crackers, pasta, and cereal"},
	{"Meat/Poultry", "Prepared meats"},
	{"Produce", "Dried fruit and bean curd"},
	{"Seafood", "Seaweed and fish"},
}

var countries = []struct{ country, city string }{
	{"Germany", "Berlin"}, {"Mexico", "México D.F."}, {"UK", "London"},
	{"Sweden", "Luleå"}, {"France", "Marseille"}, {"Spain", "Madrid"},
	{"Canada", "Tsawassen"}, {"Argentina", "Buenos Aires"}, {"Brazil", "Rio de Janeiro"},
	{"USA", "Seattle"}, {"Italy", "Torino"}, {"Venezuela", "Caracas"},
}

var discounts = []float64{0, 0, 0, 0.05, 0.1, 0.15, 0.2, 0.25}

// Generate builds a consistent set of tables: every foreign key resolves and
// order lines never repeat a product within an order. The same options always
// produce the same tables.
func Generate(o Options) store.Tables {
	rng := rand.New(rand.NewSource(o.Seed))
	var t store.Tables

	for i, c := range categories {
		desc := c.description
		t.Categories = append(t.Categories, store.Category{ID: i + 1, Name: c.name, Description: &desc})
	}

	for i := 0; i < o.Customers; i++ {
		loc := countries[i%len(countries)]
		country, city := loc.country, loc.city
		t.Customers = append(t.Customers, store.Customer{
			ID:          fmt.Sprintf("C%04d", i+1),
			CompanyName: fmt.Sprintf("Company %d", i+1),
			Country:     &country,
			City:        &city,
		})
	}

	prices := make([]float64, o.Products)
	for i := 0; i < o.Products; i++ {
		category := i%len(categories) + 1
		supplier := i%29 + 1
		stock := rng.Intn(120)
		prices[i] = float64(rng.Intn(9000)+250) / 100
		t.Products = append(t.Products, store.Product{
			ID:           i + 1,
			Name:         fmt.Sprintf("Product %d", i+1),
			CategoryID:   &category,
			SupplierID:   &supplier,
			UnitPrice:    prices[i],
			UnitsInStock: &stock,
			Discontinued: i%13 == 0,
		})
	}

	days := int(o.Start.AddDate(0, o.Months, 0).Sub(o.Start).Hours() / 24)
	for i := 0; i < o.Orders; i++ {
		id := 10248 + i
		orderDate := o.Start.AddDate(0, 0, i*days/max(o.Orders, 1))
		required := orderDate.AddDate(0, 0, 28)
		employee := rng.Intn(9) + 1
		shipVia := rng.Intn(3) + 1
		freight := float64(rng.Intn(20000)) / 100
		order := store.Order{
			ID:           id,
			CustomerID:   t.Customers[rng.Intn(len(t.Customers))].ID,
			EmployeeID:   &employee,
			OrderDate:    &orderDate,
			RequiredDate: &required,
			ShipVia:      &shipVia,
			Freight:      &freight,
		}
		if rng.Intn(10) > 0 {
			shipped := orderDate.AddDate(0, 0, rng.Intn(14)+1)
			order.ShippedDate = &shipped
		}
		t.Orders = append(t.Orders, order)

		for _, p := range rng.Perm(o.Products)[:min(rng.Intn(4)+1, o.Products)] {
			t.OrderLines = append(t.OrderLines, store.OrderLine{
				OrderID:   id,
				ProductID: p + 1,
				UnitPrice: prices[p],
				Quantity:  rng.Intn(40) + 1,
				Discount:  discounts[rng.Intn(len(discounts))],
			})
		}
	}
	return t
}

// Source serves generated tables in place of a database.
type Source struct {
	Options Options
}

func (s Source) LoadTables(ctx context.Context) (store.Tables, error) {
	if err := ctx.Err(); err != nil {
		return store.Tables{}, err
	}
	return Generate(s.Options), nil
}
