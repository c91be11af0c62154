package segment

import (
	"sort"

	"northwind-analytics/internal/view"
)

type ProductStat struct {
	ProductID         int     `json:"product_id"`
	ProductName       *string `json:"product_name"`
	CategoryName      *string `json:"category_name"`
	TotalRevenue      float64 `json:"total_revenue"`
	AvgRevenuePerLine float64 `json:"avg_revenue_per_line"`
	TimesOrdered      int     `json:"times_ordered"`
	TotalQuantity     int     `json:"total_quantity"`
	AvgDiscountPct    float64 `json:"avg_discount_pct"`
	UniqueOrders      int     `json:"unique_orders"`
	ContributionPct   float64 `json:"revenue_contribution_pct"`
	Rank              int     `json:"revenue_rank"`
}

// ProductPerformance returns one row per product id, highest revenue first.
// Rank is dense: equal revenue shares a rank and the next rank follows
// without a gap. Equal revenue is ordered by product id.
func ProductPerformance(v view.View) []ProductStat {
	index := map[int]int{}
	var out []ProductStat
	var discounts []float64
	var orders []map[int]struct{}
	var revenue []view.Money
	var total view.Money

	for r := range v.All() {
		i, ok := index[r.ProductID]
		if !ok {
			i = len(out)
			index[r.ProductID] = i
			out = append(out, ProductStat{ProductID: r.ProductID, ProductName: r.ProductName, CategoryName: r.CategoryName})
			discounts = append(discounts, 0)
			orders = append(orders, map[int]struct{}{})
			revenue = append(revenue, view.Money{})
		}
		p := &out[i]
		revenue[i].Add(r.LineTotal)
		p.TimesOrdered++
		p.TotalQuantity += r.Quantity
		discounts[i] += r.Discount
		orders[i][r.OrderID] = struct{}{}
		total.Add(r.LineTotal)
	}

	grand := total.Float64()
	for i := range out {
		p := &out[i]
		p.TotalRevenue = revenue[i].Float64()
		p.AvgRevenuePerLine = p.TotalRevenue / float64(p.TimesOrdered)
		p.AvgDiscountPct = discounts[i] / float64(p.TimesOrdered) * 100
		p.UniqueOrders = len(orders[i])
		if grand != 0 {
			p.ContributionPct = round(p.TotalRevenue/grand*100, 2)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalRevenue != out[j].TotalRevenue {
			return out[i].TotalRevenue > out[j].TotalRevenue
		}
		return out[i].ProductID < out[j].ProductID
	})
	for i := range out {
		switch {
		case i == 0:
			out[i].Rank = 1
		case out[i].TotalRevenue == out[i-1].TotalRevenue:
			out[i].Rank = out[i-1].Rank
		default:
			out[i].Rank = out[i-1].Rank + 1
		}
	}
	return out
}
