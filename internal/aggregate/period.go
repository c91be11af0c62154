// Package aggregate computes grouped sums, top-N rankings and time-bucketed
// series over a view. Every function is pure and returns zero-valued results
// for an empty view.
package aggregate

import (
	"fmt"
	"sort"
	"time"

	"northwind-analytics/internal/view"
)

type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// ParseGranularity accepts the lower-case names above.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(s); g {
	case Day, Week, Month, Quarter, Year:
		return g, nil
	}
	return "", fmt.Errorf("unknown granularity: %s", s)
}

type PeriodTotal struct {
	Period    string    `json:"period"`
	Start     time.Time `json:"start"`
	Revenue   float64   `json:"revenue"`
	Orders    int       `json:"orders"`
	ItemsSold int       `json:"items_sold"`
}

// Truncate returns the start of the bucket containing t and its label.
// Weeks start on Monday.
func Truncate(t time.Time, g Granularity) (time.Time, string) {
	y, m, d := t.Date()
	switch g {
	case Week:
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		start = start.AddDate(0, 0, -((int(start.Weekday()) + 6) % 7))
		end := start.AddDate(0, 0, 6)
		return start, start.Format("2006-01-02") + "/" + end.Format("2006-01-02")
	case Month:
		start := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01")
	case Quarter:
		q := (int(m)-1)/3 + 1
		start := time.Date(y, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, fmt.Sprintf("%dQ%d", y, q)
	case Year:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006")
	default:
		start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return start, start.Format("2006-01-02")
	}
}

type periodAcc struct {
	total   PeriodTotal
	revenue view.Money
	orders  map[int]struct{}
}

// SumByPeriod buckets rows by order date and returns the buckets in
// chronological order. Rows without an order date are skipped.
func SumByPeriod(v view.View, g Granularity) []PeriodTotal {
	buckets := map[string]*periodAcc{}
	for r := range v.All() {
		if r.OrderDate == nil {
			continue
		}
		start, label := Truncate(*r.OrderDate, g)
		acc, ok := buckets[label]
		if !ok {
			acc = &periodAcc{
				total:  PeriodTotal{Period: label, Start: start},
				orders: map[int]struct{}{},
			}
			buckets[label] = acc
		}
		acc.revenue.Add(r.LineTotal)
		acc.total.ItemsSold += r.Quantity
		acc.orders[r.OrderID] = struct{}{}
	}

	out := make([]PeriodTotal, 0, len(buckets))
	for _, acc := range buckets {
		acc.total.Revenue = acc.revenue.Float64()
		acc.total.Orders = len(acc.orders)
		out = append(out, acc.total)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
