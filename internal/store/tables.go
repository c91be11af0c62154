package store

import "time"

type Customer struct {
	ID          string  `json:"customer_id" bson:"_id"`
	CompanyName string  `json:"company_name" bson:"company_name"`
	Country     *string `json:"country" bson:"country"`
	City        *string `json:"city" bson:"city"`
	Region      *string `json:"region" bson:"region"`
}

type Category struct {
	ID          int     `json:"category_id" bson:"_id"`
	Name        string  `json:"category_name" bson:"category_name"`
	Description *string `json:"description" bson:"description"`
}

type Product struct {
	ID           int     `json:"product_id" bson:"_id"`
	Name         string  `json:"product_name" bson:"product_name"`
	CategoryID   *int    `json:"category_id" bson:"category_id"`
	SupplierID   *int    `json:"supplier_id" bson:"supplier_id"`
	UnitPrice    float64 `json:"unit_price" bson:"unit_price"`
	UnitsInStock *int    `json:"units_in_stock" bson:"units_in_stock"`
	UnitsOnOrder *int    `json:"units_on_order" bson:"units_on_order"`
	ReorderLevel *int    `json:"reorder_level" bson:"reorder_level"`
	Discontinued bool    `json:"discontinued" bson:"discontinued"`
}

type Order struct {
	ID           int        `json:"order_id" bson:"_id"`
	CustomerID   string     `json:"customer_id" bson:"customer_id"`
	EmployeeID   *int       `json:"employee_id" bson:"employee_id"`
	OrderDate    *time.Time `json:"order_date" bson:"order_date"`
	RequiredDate *time.Time `json:"required_date" bson:"required_date"`
	ShippedDate  *time.Time `json:"shipped_date" bson:"shipped_date"`
	ShipVia      *int       `json:"ship_via" bson:"ship_via"`
	Freight      *float64   `json:"freight" bson:"freight"`
}

// OrderLine is identified by (OrderID, ProductID). LineTotal is filled by Load.
type OrderLine struct {
	OrderID   int     `json:"order_id" bson:"order_id"`
	ProductID int     `json:"product_id" bson:"product_id"`
	UnitPrice float64 `json:"unit_price" bson:"unit_price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Discount  float64 `json:"discount" bson:"discount"`
	LineTotal float64 `json:"line_total" bson:"-"`
}

// Tables is the ETL hand-off: the five cleaned tables in source row order.
type Tables struct {
	Customers  []Customer
	Categories []Category
	Products   []Product
	Orders     []Order
	OrderLines []OrderLine
}

const (
	TableCustomers    = "customers"
	TableCategories   = "categories"
	TableProducts     = "products"
	TableOrders       = "orders"
	TableOrderDetails = "order_details"
)

// RequiredColumns lists, per source table, the columns a source must expose.
var RequiredColumns = map[string][]string{
	TableCustomers:    {"customer_id", "company_name", "country", "city", "region"},
	TableCategories:   {"category_id", "category_name", "description"},
	TableProducts:     {"product_id", "product_name", "category_id", "supplier_id", "unit_price", "units_in_stock", "units_on_order", "reorder_level", "discontinued"},
	TableOrders:       {"order_id", "customer_id", "employee_id", "order_date", "required_date", "shipped_date", "ship_via", "freight"},
	TableOrderDetails: {"order_id", "product_id", "unit_price", "quantity", "discount"},
}

// TableNames is the load order used by every source.
var TableNames = []string{TableCustomers, TableCategories, TableProducts, TableOrders, TableOrderDetails}
