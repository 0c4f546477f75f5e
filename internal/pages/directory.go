package pages

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/pos"
)

// DirectoryQuery holds the suppliers or customers table selections. The
// search term is resolved by the API, not filtered locally.
type DirectoryQuery struct {
	Search string        `json:"search" validate:"max=200"`
	Pager  listing.Pager `json:"pager"`
}

// DefaultDirectoryQuery is an unfiltered first page.
func DefaultDirectoryQuery() DirectoryQuery {
	return DirectoryQuery{Pager: listing.NewPager()}
}

// Validate checks the search term.
func (q DirectoryQuery) Validate() error {
	return pos.ValidateStruct(q)
}

// SupplierRow is a supplier with the number of products it provides.
type SupplierRow struct {
	pos.Supplier
	ProductCount int `json:"product_count"`
}

// SuppliersView is one rendered page of suppliers.
type SuppliersView struct {
	Rows      listing.Page[SupplierRow] `json:"rows"`
	Query     DirectoryQuery            `json:"query"`
	PageSizes []int                     `json:"page_sizes"`
}

// Suppliers joins each supplier with its product count. Counts are
// memoized by the products version.
func (b *Builder) Suppliers(version uint64, suppliers []pos.Supplier, products []pos.Product, q DirectoryQuery) SuppliersView {
	counts := b.supplierCounts.Get(versionKey(version), func() map[int64]int {
		return SupplierProductCounts(products)
	})
	rows := make([]SupplierRow, len(suppliers))
	for i, s := range suppliers {
		rows[i] = SupplierRow{Supplier: s, ProductCount: counts[s.ID]}
	}
	page := listing.Paginate(rows, q.Pager)
	q.Pager = listing.Pager{Page: page.Page, Size: page.Size}
	return SuppliersView{Rows: page, Query: q, PageSizes: listing.PageSizes}
}

// SupplierProductCounts counts products per supplier id. Products without
// a supplier are not counted.
func SupplierProductCounts(products []pos.Product) map[int64]int {
	counts := make(map[int64]int)
	for _, p := range products {
		if p.SupplierID != nil {
			counts[*p.SupplierID]++
		}
	}
	return counts
}

// CustomerStats summarises a customer's purchases.
type CustomerStats struct {
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	PurchaseCount  int             `json:"purchase_count"`
	LastPurchase   *time.Time      `json:"last_purchase_date"`
}

// CustomerRow is a customer with purchase statistics.
type CustomerRow struct {
	pos.Customer
	CustomerStats
}

// CustomersView is one rendered page of customers.
type CustomersView struct {
	Rows      listing.Page[CustomerRow] `json:"rows"`
	Query     DirectoryQuery            `json:"query"`
	PageSizes []int                     `json:"page_sizes"`
}

// Customers joins each customer with the statistics of the sales made to
// its contact. Statistics are memoized by the sales version.
func (b *Builder) Customers(version uint64, customers []pos.Customer, sales []pos.Sale, q DirectoryQuery) CustomersView {
	stats := b.customerStats.Get(versionKey(version), func() map[string]CustomerStats {
		return StatsByContact(sales)
	})
	rows := make([]CustomerRow, len(customers))
	for i, c := range customers {
		s, ok := stats[c.Contact]
		if !ok {
			s = CustomerStats{TotalPurchases: decimal.Zero}
		}
		rows[i] = CustomerRow{Customer: c, CustomerStats: s}
	}
	page := listing.Paginate(rows, q.Pager)
	q.Pager = listing.Pager{Page: page.Page, Size: page.Size}
	return CustomersView{Rows: page, Query: q, PageSizes: listing.PageSizes}
}

// StatsByContact aggregates sales per customer contact. The last purchase
// only considers dated sales.
func StatsByContact(sales []pos.Sale) map[string]CustomerStats {
	out := make(map[string]CustomerStats)
	for _, s := range sales {
		st, ok := out[s.CustomerContact]
		if !ok {
			st.TotalPurchases = decimal.Zero
		}
		st.TotalPurchases = st.TotalPurchases.Add(s.TotalAmount)
		st.PurchaseCount++
		if s.HasDate() && (st.LastPurchase == nil || s.SaleDate.After(*st.LastPurchase)) {
			ts := s.SaleDate
			st.LastPurchase = &ts
		}
		out[s.CustomerContact] = st
	}
	return out
}
