// Package view composes the denormalized views the analytics engines read:
// order lines enriched with product and category, orders enriched with
// customer, and the full fact table joining both.
package view

import (
	"iter"
	"slices"
	"time"

	"northwind-analytics/internal/store"
)

// OrderDetail is an order line left-joined to its product and category.
type OrderDetail struct {
	store.OrderLine
	ProductName  *string `json:"product_name"`
	CategoryID   *int    `json:"category_id"`
	SupplierID   *int    `json:"supplier_id"`
	CategoryName *string `json:"category_name"`
}

// EnrichedOrder is an order left-joined to its customer.
type EnrichedOrder struct {
	store.Order
	CompanyName *string `json:"company_name"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Region      *string `json:"region"`
}

// FactRow is one row of the full dataset: one per order line.
type FactRow struct {
	OrderID   int     `json:"order_id"`
	ProductID int     `json:"product_id"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Discount  float64 `json:"discount"`
	LineTotal float64 `json:"line_total"`

	ProductName  *string `json:"product_name"`
	CategoryID   *int    `json:"category_id"`
	SupplierID   *int    `json:"supplier_id"`
	CategoryName *string `json:"category_name"`

	CustomerID   *string    `json:"customer_id"`
	EmployeeID   *int       `json:"employee_id"`
	OrderDate    *time.Time `json:"order_date"`
	RequiredDate *time.Time `json:"required_date"`
	ShippedDate  *time.Time `json:"shipped_date"`
	ShipVia      *int       `json:"ship_via"`
	Freight      *float64   `json:"freight"`

	CompanyName *string `json:"company_name"`
	Country     *string `json:"country"`
	City        *string `json:"city"`
	Region      *string `json:"region"`
}

// View is an immutable set of fact rows. Filtering returns a new View.
type View struct {
	rows    []FactRow
	catalog int
}

// NewView copies rows; catalog is the number of products in the source catalog.
func NewView(rows []FactRow, catalog int) View {
	return View{rows: slices.Clone(rows), catalog: catalog}
}

func (v View) Len() int { return len(v.rows) }

// CatalogProducts is the product count of the store the view was built from.
func (v View) CatalogProducts() int { return v.catalog }

// All yields the rows in their stable order.
func (v View) All() iter.Seq[FactRow] {
	return func(yield func(FactRow) bool) {
		for _, r := range v.rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Rows returns a copy of the rows.
func (v View) Rows() []FactRow { return slices.Clone(v.rows) }

// EmptyWarning returns an *EmptyResultWarning when the view has no rows.
func (v View) EmptyWarning() error {
	if len(v.rows) == 0 {
		return &EmptyResultWarning{}
	}
	return nil
}

type Views struct {
	orderDetails []OrderDetail
	orders       []EnrichedOrder
	full         View
}

func (vs *Views) OrderDetailsEnriched() []OrderDetail { return slices.Clone(vs.orderDetails) }
func (vs *Views) OrdersEnriched() []EnrichedOrder     { return slices.Clone(vs.orders) }
func (vs *Views) Full() View                          { return vs.full }

// Build runs the three left joins in a fixed order. Row order follows the
// order line table and no left row is ever dropped.
func Build(s *store.Store) *Views {
	details := enrichOrderDetails(s)
	orders := enrichOrders(s)

	byOrder := make(map[int]int, len(orders))
	for i, o := range orders {
		byOrder[o.ID] = i
	}

	rows := make([]FactRow, len(details))
	for i, d := range details {
		r := FactRow{
			OrderID:      d.OrderID,
			ProductID:    d.ProductID,
			UnitPrice:    d.UnitPrice,
			Quantity:     d.Quantity,
			Discount:     d.Discount,
			LineTotal:    d.LineTotal,
			ProductName:  d.ProductName,
			CategoryID:   d.CategoryID,
			SupplierID:   d.SupplierID,
			CategoryName: d.CategoryName,
		}
		if j, ok := byOrder[d.OrderID]; ok {
			o := orders[j]
			customerID := o.CustomerID
			r.CustomerID = &customerID
			r.EmployeeID = o.EmployeeID
			r.OrderDate = o.OrderDate
			r.RequiredDate = o.RequiredDate
			r.ShippedDate = o.ShippedDate
			r.ShipVia = o.ShipVia
			r.Freight = o.Freight
			r.CompanyName = o.CompanyName
			r.Country = o.Country
			r.City = o.City
			r.Region = o.Region
		}
		rows[i] = r
	}

	return &Views{
		orderDetails: details,
		orders:       orders,
		full:         View{rows: rows, catalog: s.ProductCount()},
	}
}

func enrichOrderDetails(s *store.Store) []OrderDetail {
	lines := s.OrderLines()
	out := make([]OrderDetail, len(lines))
	for i, l := range lines {
		d := OrderDetail{OrderLine: l}
		if p, ok := s.Product(l.ProductID); ok {
			name := p.Name
			d.ProductName = &name
			d.CategoryID = p.CategoryID
			d.SupplierID = p.SupplierID
			if p.CategoryID != nil {
				if c, ok := s.Category(*p.CategoryID); ok {
					cname := c.Name
					d.CategoryName = &cname
				}
			}
		}
		out[i] = d
	}
	return out
}

func enrichOrders(s *store.Store) []EnrichedOrder {
	orders := s.Orders()
	out := make([]EnrichedOrder, len(orders))
	for i, o := range orders {
		e := EnrichedOrder{Order: o}
		if c, ok := s.Customer(o.CustomerID); ok {
			company := c.CompanyName
			e.CompanyName = &company
			e.Country = c.Country
			e.City = c.City
			e.Region = c.Region
		}
		out[i] = e
	}
	return out
}
