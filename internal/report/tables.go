package report

import (
	"fmt"
	"strings"
)

// Table is one flat output table: a header row and the data rows below it.
type Table struct {
	Name   string   `json:"name"`
	Header []string `json:"header"`
	Rows   [][]any  `json:"rows"`
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

// Tables flattens the report into the tables written by the exporters, in a
// fixed order.
func (r *Report) Tables() []Table {
	tables := []Table{
		{
			Name:   "kpis",
			Header: []string{"revenue", "orders", "customers", "avg_order_value", "avg_quantity_per_order", "catalog_products", "products_sold"},
			Rows: [][]any{{
				r.KPIs.Revenue, r.KPIs.Orders, r.KPIs.Customers, r.KPIs.AvgOrderValue,
				r.KPIs.AvgQuantityPerOrder, r.KPIs.CatalogProducts, r.KPIs.ProductsSold,
			}},
		},
	}

	periods := Table{Name: "revenue_by_" + string(r.Granularity), Header: []string{"period", "revenue", "orders", "items_sold"}}
	for _, p := range r.Periods {
		periods.Rows = append(periods.Rows, []any{p.Period, p.Revenue, p.Orders, p.ItemsSold})
	}

	products := Table{Name: "top_products", Header: []string{"product", "revenue"}}
	for _, p := range r.TopProducts {
		products.Rows = append(products.Rows, []any{p.Label, p.Value})
	}

	countries := Table{Name: "countries", Header: []string{"country", "revenue", "orders", "customers"}}
	for _, c := range r.Countries {
		countries.Rows = append(countries.Rows, []any{c.Country, c.Revenue, c.Orders, c.Customers})
	}

	categories := Table{Name: "categories", Header: []string{"category", "revenue", "orders", "quantity"}}
	for _, c := range r.Categories {
		categories.Rows = append(categories.Rows, []any{c.Category, c.Revenue, c.Orders, c.Quantity})
	}

	customers := Table{Name: "top_customers", Header: []string{"customer_id", "company_name", "country", "revenue", "orders", "quantity", "avg_order_value"}}
	for _, c := range r.TopCustomers {
		customers.Rows = append(customers.Rows, []any{c.CustomerID, c.CompanyName, c.Country, c.Revenue, c.Orders, c.Quantity, c.AvgOrderValue})
	}

	rfm := Table{Name: "rfm", Header: []string{"customer_id", "company_name", "country", "recency", "frequency", "monetary", "r_score", "f_score", "m_score", "rfm_score", "rfm_total", "segment"}}
	for _, c := range r.RFM {
		rfm.Rows = append(rfm.Rows, []any{c.CustomerID, deref(c.CompanyName), deref(c.Country), c.Recency, c.Frequency, c.Monetary, c.RScore, c.FScore, c.MScore, c.Score, c.Total, c.Segment})
	}

	segments := Table{Name: "segments", Header: []string{"segment", "customers", "revenue", "share_pct"}}
	for _, s := range r.Segments {
		segments.Rows = append(segments.Rows, []any{s.Segment, s.Customers, s.Revenue, s.Share})
	}

	performance := Table{Name: "product_performance", Header: []string{"product_id", "product_name", "category_name", "total_revenue", "avg_revenue_per_line", "times_ordered", "total_quantity", "avg_discount_pct", "unique_orders", "revenue_contribution_pct", "revenue_rank"}}
	for _, p := range r.Products {
		performance.Rows = append(performance.Rows, []any{p.ProductID, deref(p.ProductName), deref(p.CategoryName), p.TotalRevenue, p.AvgRevenuePerLine, p.TimesOrdered, p.TotalQuantity, p.AvgDiscountPct, p.UniqueOrders, p.ContributionPct, p.Rank})
	}

	trendMonthly := Table{Name: "monthly_trends", Header: []string{"month", "revenue", "orders", "quantity", "revenue_growth"}}
	for _, m := range r.Trends.Monthly {
		trendMonthly.Rows = append(trendMonthly.Rows, []any{m.Month, m.Revenue, m.Orders, m.Quantity, deref(m.Growth)})
	}

	weekdays := Table{Name: "weekday_revenue", Header: []string{"day_of_week", "revenue"}}
	for _, d := range r.Trends.Daily {
		weekdays.Rows = append(weekdays.Rows, []any{d.Day, d.Revenue})
	}

	quarters := Table{Name: "quarterly_trends", Header: []string{"quarter", "revenue", "orders"}}
	for _, q := range r.Trends.Quarterly {
		quarters.Rows = append(quarters.Rows, []any{q.Quarter, q.Revenue, q.Orders})
	}

	tables = append(tables, periods, products, countries, categories, customers, rfm, segments, performance, trendMonthly, weekdays, quarters, r.cohortTable())

	discounts := Table{Name: "discount_impact", Header: []string{"discount_category", "total_revenue", "avg_order_value", "order_count", "distinct_orders", "total_quantity", "avg_quantity", "avg_discount_pct"}}
	for _, d := range r.Discounts {
		discounts.Rows = append(discounts.Rows, []any{d.Band, d.TotalRevenue, d.AvgOrderValue, d.OrderCount, d.DistinctOrders, d.TotalQuantity, d.AvgQuantity, d.AvgDiscountPct})
	}
	tables = append(tables, discounts)

	if len(r.Predictions) > 0 {
		preds := Table{Name: "predictions", Header: []string{"customer_id", "cluster", "label"}}
		for _, p := range r.Predictions {
			preds.Rows = append(preds.Rows, []any{p.CustomerID, p.Cluster, p.Label})
		}
		clusters := Table{Name: "clusters", Header: []string{"cluster", "label", "customers", "orders", "revenue", "avg_basket", "avg_days_between_orders", "recommendations"}}
		for _, c := range r.Clusters {
			clusters.Rows = append(clusters.Rows, []any{c.Cluster, c.Label, c.Profile.Customers, c.Profile.Orders, c.Profile.Revenue, c.Profile.AvgBasket, c.Profile.AvgDaysBetween, strings.Join(c.Recommendations, "; ")})
		}
		tables = append(tables, preds, clusters)
	}
	return tables
}

// cohortTable writes one row per cohort with a column per month offset.
func (r *Report) cohortTable() Table {
	t := Table{Name: "cohort_retention", Header: []string{"cohort", "size"}}
	if r.Cohorts == nil {
		return t
	}
	for i := 0; i < r.Cohorts.Offsets(); i++ {
		t.Header = append(t.Header, fmt.Sprintf("month_%d", i))
	}
	for i, cohort := range r.Cohorts.Cohorts {
		row := []any{cohort, r.Cohorts.Sizes[i]}
		for _, cell := range r.Cohorts.Cells[i] {
			row = append(row, deref(cell))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
