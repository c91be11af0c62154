package aggregate

import (
	"fmt"
	"sort"

	"northwind-analytics/internal/view"
)

type GroupKey string

const (
	KeyCountry  GroupKey = "country"
	KeyCategory GroupKey = "category"
	KeyCustomer GroupKey = "customer"
	KeyCompany  GroupKey = "company"
	KeyProduct  GroupKey = "product"
	KeyCity     GroupKey = "city"
	KeyRegion   GroupKey = "region"
)

type Metric string

const (
	MetricLineTotal Metric = "line_total"
	MetricQuantity  Metric = "quantity"
)

type Ranked struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func label(r view.FactRow, key GroupKey) (string, bool) {
	var p *string
	switch key {
	case KeyCountry:
		p = r.Country
	case KeyCategory:
		p = r.CategoryName
	case KeyCustomer:
		p = r.CustomerID
	case KeyCompany:
		p = r.CompanyName
	case KeyProduct:
		p = r.ProductName
	case KeyCity:
		p = r.City
	case KeyRegion:
		p = r.Region
	}
	if p == nil {
		return "", false
	}
	return *p, true
}

func metric(r view.FactRow, m Metric) float64 {
	if m == MetricQuantity {
		return float64(r.Quantity)
	}
	return r.LineTotal
}

// TopN sums metric per group and returns the n largest groups. Equal sums
// keep the order in which their labels first appear in v. Rows with a null
// label are not grouped.
func TopN(v view.View, key GroupKey, m Metric, n int) ([]Ranked, error) {
	switch key {
	case KeyCountry, KeyCategory, KeyCustomer, KeyCompany, KeyProduct, KeyCity, KeyRegion:
	default:
		return nil, fmt.Errorf("unknown group key: %s", key)
	}
	switch m {
	case MetricLineTotal, MetricQuantity:
	default:
		return nil, fmt.Errorf("unknown metric: %s", m)
	}

	index := map[string]int{}
	var out []Ranked
	for r := range v.All() {
		l, ok := label(r, key)
		if !ok {
			continue
		}
		i, seen := index[l]
		if !seen {
			i = len(out)
			index[l] = i
			out = append(out, Ranked{Label: l})
		}
		out[i].Value += metric(r, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

type CountryStat struct {
	Country   string  `json:"country"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	Customers int     `json:"customers"`
}

type CategoryStat struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Orders   int     `json:"orders"`
	Quantity int     `json:"quantity"`
}

type CustomerStat struct {
	CustomerID    string  `json:"customer_id"`
	CompanyName   string  `json:"company_name"`
	Country       string  `json:"country"`
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	Quantity      int     `json:"quantity"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// group accumulates per-label totals in first-seen order.
type group struct {
	label     string
	row       view.FactRow
	money     view.Money
	revenue   float64
	quantity  int
	orders    map[int]struct{}
	customers map[string]struct{}
}

func groupBy(v view.View, key GroupKey) []*group {
	index := map[string]*group{}
	var out []*group
	for r := range v.All() {
		l, ok := label(r, key)
		if !ok {
			continue
		}
		g, seen := index[l]
		if !seen {
			g = &group{label: l, row: r, orders: map[int]struct{}{}, customers: map[string]struct{}{}}
			index[l] = g
			out = append(out, g)
		}
		g.money.Add(r.LineTotal)
		g.quantity += r.Quantity
		g.orders[r.OrderID] = struct{}{}
		if r.CustomerID != nil {
			g.customers[*r.CustomerID] = struct{}{}
		}
	}
	for _, g := range out {
		g.revenue = g.money.Float64()
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].revenue > out[j].revenue })
	return out
}

func ByCountry(v view.View) []CountryStat {
	groups := groupBy(v, KeyCountry)
	out := make([]CountryStat, len(groups))
	for i, g := range groups {
		out[i] = CountryStat{Country: g.label, Revenue: g.revenue, Orders: len(g.orders), Customers: len(g.customers)}
	}
	return out
}

func ByCategory(v view.View) []CategoryStat {
	groups := groupBy(v, KeyCategory)
	out := make([]CategoryStat, len(groups))
	for i, g := range groups {
		out[i] = CategoryStat{Category: g.label, Revenue: g.revenue, Orders: len(g.orders), Quantity: g.quantity}
	}
	return out
}

// ByCustomer groups by customer id. Company and country come from the
// customer's first row and are empty when the customer is unknown.
func ByCustomer(v view.View) []CustomerStat {
	groups := groupBy(v, KeyCustomer)
	out := make([]CustomerStat, len(groups))
	for i, g := range groups {
		s := CustomerStat{
			CustomerID:    g.label,
			Revenue:       g.revenue,
			Orders:        len(g.orders),
			Quantity:      g.quantity,
			AvgOrderValue: safeDiv(g.revenue, len(g.orders)),
		}
		if g.row.CompanyName != nil {
			s.CompanyName = *g.row.CompanyName
		}
		if g.row.Country != nil {
			s.Country = *g.row.Country
		}
		out[i] = s
	}
	return out
}

func safeDiv(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
