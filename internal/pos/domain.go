// Package pos holds the point-of-sale records served by the remote POS API.
//
// Records are immutable snapshots. They are decoded once at the boundary by
// the Decode* helpers, which apply every defaulting rule so consumers never
// need to re-check for nulls.
package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quantity is the stock sub-record embedded in a product.
type Quantity struct {
	ID          string    `json:"id"`
	ProductID   int64     `json:"product_id"`
	Size        int       `json:"quantity_size"`
	CreatedDate time.Time `json:"created_date"`
	UpdatedDate time.Time `json:"updated_date"`
}

// Product is a sellable catalogue entry.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Barcode      string          `json:"barcode"`
	Category     string          `json:"category"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	Discount     decimal.Decimal `json:"discount"`
	Tax          decimal.Decimal `json:"tax"`
	SupplierID   *int64          `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	ExpireDate   *time.Time      `json:"expire_date"`
	CreatedDate  time.Time       `json:"created_date"`
	Quantity     *Quantity       `json:"quantities"`
}

// StockQuantity returns the current stock count, treating a missing
// quantity record as zero stock.
func (p Product) StockQuantity() int {
	if p.Quantity == nil || p.Quantity.Size < 0 {
		return 0
	}
	return p.Quantity.Size
}

// Stock classifies the product's current quantity.
func (p Product) Stock() StockBucket {
	return Classify(p.StockQuantity())
}

// Supplier provides products.
type Supplier struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

// SaleItem is one line of a sale. Product name, category and unit price are
// denormalized at the time of sale.
type SaleItem struct {
	ID          int64           `json:"id"`
	SaleCode    string          `json:"sale_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Category    string          `json:"category"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	SubTotal    decimal.Decimal `json:"sub_total"`
}

// Sale is a completed checkout. It exclusively owns its Items.
type Sale struct {
	ID              int64           `json:"id"`
	Code            string          `json:"sale_id"`
	CustomerID      *int64          `json:"customer_id"`
	CustomerContact string          `json:"customer_contact"`
	SaleDate        time.Time       `json:"sale_date"`
	SubTotal        decimal.Decimal `json:"sub_total"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	ChangeAmount    decimal.Decimal `json:"change_amount"`
	PaymentMethod   string          `json:"payment_method"`
	Items           []SaleItem      `json:"sale_items"`
}

// HasDate reports whether the sale carried a parseable timestamp.
func (s Sale) HasDate() bool {
	return !s.SaleDate.IsZero()
}

// ExpectedTotal is sub total plus tax minus discount. The API is trusted, so
// this is informational only.
func (s Sale) ExpectedTotal() decimal.Decimal {
	return s.SubTotal.Add(s.TaxAmount).Sub(s.DiscountAmount)
}

// Customer is a buyer identified by a contact string.
type Customer struct {
	ID          int64     `json:"id"`
	Contact     string    `json:"contact"`
	Email       string    `json:"email"`
	CreatedDate time.Time `json:"created_date"`
}

// SalesAnalytics is the server-computed analytics payload returned by
// GET /sales/analytics.
type SalesAnalytics struct {
	SalesTrend             []TrendPoint     `json:"salesTrend"`
	TopProducts            []ProductSales   `json:"topProducts"`
	SalesByCategory        []CategorySales  `json:"salesByCategory"`
	RevenueByPaymentMethod []PaymentRevenue `json:"revenueByPaymentMethod"`
	MonthlyRevenue         []MonthRevenue   `json:"monthlyRevenue"`
}

// TrendPoint is one day of the sales trend.
type TrendPoint struct {
	Date    string          `json:"date"`
	Sales   int             `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales is the quantity sold for a product name.
type ProductSales struct {
	Name  string `json:"name"`
	Sales int    `json:"sales"`
}

// CategorySales is the quantity sold within a category.
type CategorySales struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

// PaymentRevenue is the revenue collected through one payment method.
type PaymentRevenue struct {
	Method  string          `json:"method"`
	Revenue decimal.Decimal `json:"revenue"`
}

// MonthRevenue is the revenue of one calendar month.
type MonthRevenue struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
}

// EmptyAnalytics returns an analytics payload whose series are all empty
// but non-nil.
func EmptyAnalytics() SalesAnalytics {
	return SalesAnalytics{
		SalesTrend:             []TrendPoint{},
		TopProducts:            []ProductSales{},
		SalesByCategory:        []CategorySales{},
		RevenueByPaymentMethod: []PaymentRevenue{},
		MonthlyRevenue:         []MonthRevenue{},
	}
}
