package segment

import "northwind-analytics/internal/view"

type DiscountBand struct {
	Band           string  `json:"discount_category"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	OrderCount     int     `json:"order_count"`
	DistinctOrders int     `json:"distinct_orders"`
	TotalQuantity  int     `json:"total_quantity"`
	AvgQuantity    float64 `json:"avg_quantity"`
	AvgDiscountPct float64 `json:"avg_discount_pct"`
}

// Bands are right-closed: (0,5%], (5,10%], (10,15%], then everything above.
var bands = []struct {
	label string
	upper float64
}{
	{"No Discount", 0},
	{"1-5%", 0.05},
	{"6-10%", 0.10},
	{"11-15%", 0.15},
	{">15%", 1},
}

func bandOf(discount float64) int {
	for i, b := range bands[:len(bands)-1] {
		if discount <= b.upper {
			return i
		}
	}
	return len(bands) - 1
}

// DiscountImpact buckets order lines by discount. All five bands are always
// returned in ascending order; their revenues sum exactly to the revenue of v.
// AvgOrderValue is the mean line total and OrderCount the number of lines.
func DiscountImpact(v view.View) []DiscountBand {
	out := make([]DiscountBand, len(bands))
	revenue := make([]view.Money, len(bands))
	discounts := make([]float64, len(bands))
	orders := make([]map[int]struct{}, len(bands))
	for i, b := range bands {
		out[i].Band = b.label
		orders[i] = map[int]struct{}{}
	}

	for r := range v.All() {
		i := bandOf(r.Discount)
		b := &out[i]
		revenue[i].Add(r.LineTotal)
		b.OrderCount++
		b.TotalQuantity += r.Quantity
		discounts[i] += r.Discount
		orders[i][r.OrderID] = struct{}{}
	}

	for i := range out {
		b := &out[i]
		b.TotalRevenue = revenue[i].Float64()
		b.DistinctOrders = len(orders[i])
		if b.OrderCount == 0 {
			continue
		}
		n := float64(b.OrderCount)
		b.AvgOrderValue = b.TotalRevenue / n
		b.AvgQuantity = float64(b.TotalQuantity) / n
		b.AvgDiscountPct = discounts[i] / n * 100
	}
	return out
}
