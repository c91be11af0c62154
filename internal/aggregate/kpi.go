package aggregate

import "northwind-analytics/internal/view"

type KPI struct {
	Revenue             float64 `json:"revenue"`
	Orders              int     `json:"orders"`
	Customers           int     `json:"customers"`
	AvgOrderValue       float64 `json:"avg_order_value"`
	AvgQuantityPerOrder float64 `json:"avg_quantity_per_order"`
	CatalogProducts     int     `json:"catalog_products"`
	ProductsSold        int     `json:"products_sold"`
}

// KPISummary totals v. Averages are 0 when v holds no orders.
func KPISummary(v view.View) KPI {
	orders := map[int]struct{}{}
	customers := map[string]struct{}{}
	products := map[int]struct{}{}
	k := KPI{CatalogProducts: v.CatalogProducts()}
	quantity := 0
	var revenue view.Money

	for r := range v.All() {
		revenue.Add(r.LineTotal)
		quantity += r.Quantity
		orders[r.OrderID] = struct{}{}
		products[r.ProductID] = struct{}{}
		if r.CustomerID != nil {
			customers[*r.CustomerID] = struct{}{}
		}
	}

	k.Revenue = revenue.Float64()
	k.Orders = len(orders)
	k.Customers = len(customers)
	k.ProductsSold = len(products)
	k.AvgOrderValue = safeDiv(k.Revenue, k.Orders)
	k.AvgQuantityPerOrder = safeDiv(float64(quantity), k.Orders)
	return k
}
