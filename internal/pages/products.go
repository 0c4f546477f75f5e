// Package pages derives the paged table views and the dashboard view from
// loaded record sets. Builders never mutate their inputs.
package pages

import (
	"strconv"
	"time"

	"golang.org/x/text/language"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/pos"
)

// NotAvailable labels an absent optional value.
const NotAvailable = "N/A"

// Builder renders views for one dashboard session. Derivations that only
// depend on the loaded records are memoized by the records' version.
type Builder struct {
	loc    *time.Location
	locale language.Tag

	categories     analytics.Memo[[]string]
	methods        analytics.Memo[[]string]
	saleItems      analytics.Memo[[]pos.SaleItem]
	supplierCounts analytics.Memo[map[int64]int]
	customerStats  analytics.Memo[map[string]CustomerStats]
}

// NewBuilder buckets dates in loc and collates strings for locale.
func NewBuilder(loc *time.Location, locale language.Tag) *Builder {
	if loc == nil {
		loc = time.UTC
	}
	return &Builder{loc: loc, locale: locale}
}

func versionKey(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// ProductRow is a product with its derived stock columns.
type ProductRow struct {
	pos.Product
	StockQuantity int             `json:"stock_quantity"`
	Stock         pos.StockBucket `json:"stock"`
	StockLabel    string          `json:"stock_label"`
	Supplier      string          `json:"supplier"`
}

// ProductQuery holds the products table selections.
type ProductQuery struct {
	Filters listing.ProductFilters `json:"filters"`
	Sort    listing.SortState      `json:"sort"`
	Pager   listing.Pager          `json:"pager"`
}

// DefaultProductQuery shows every product by name, first page.
func DefaultProductQuery() ProductQuery {
	return ProductQuery{
		Filters: listing.DefaultProductFilters(),
		Sort:    listing.DefaultProductSort,
		Pager:   listing.NewPager(),
	}
}

// ProductsView is one rendered page of the products table.
type ProductsView struct {
	Rows        listing.Page[ProductRow] `json:"rows"`
	Query       ProductQuery             `json:"query"`
	Categories  []string                 `json:"categories"`
	StockLevels []string                 `json:"stock_levels"`
	PageSizes   []int                    `json:"page_sizes"`
}

// StockLevels are the stock filter options.
var StockLevels = []string{
	listing.AllValues,
	string(pos.OutOfStock),
	string(pos.LowStock),
	string(pos.InStock),
}

// Products filters, sorts and pages products. The returned query carries
// the clamped page.
func (b *Builder) Products(version uint64, products []pos.Product, q ProductQuery) (ProductsView, error) {
	pred, err := q.Filters.Predicate()
	if err != nil {
		return ProductsView{}, err
	}
	sorted := listing.Sort(listing.Apply(products, pred), listing.ProductFields, q.Sort, b.locale)
	rows := make([]ProductRow, len(sorted))
	for i, p := range sorted {
		rows[i] = productRow(p)
	}
	page := listing.Paginate(rows, q.Pager)
	q.Pager = listing.Pager{Page: page.Page, Size: page.Size}
	return ProductsView{
		Rows:  page,
		Query: q,
		Categories: b.categories.Get(versionKey(version), func() []string {
			return listing.Categories(products)
		}),
		StockLevels: StockLevels,
		PageSizes:   listing.PageSizes,
	}, nil
}

func productRow(p pos.Product) ProductRow {
	supplier := p.SupplierName
	if supplier == "" {
		supplier = NotAvailable
	}
	bucket := p.Stock()
	return ProductRow{
		Product:       p,
		StockQuantity: p.StockQuantity(),
		Stock:         bucket,
		StockLabel:    bucket.Label(),
		Supplier:      supplier,
	}
}

// Locale is the collation locale of string sorts.
func (b *Builder) Locale() language.Tag {
	return b.locale
}
