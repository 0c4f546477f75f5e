package pages

import (
	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/pos"
)

// SaleRow is a sale with its line count.
type SaleRow struct {
	pos.Sale
	ItemCount int `json:"item_count"`
}

// SaleQuery holds the sales table selections.
type SaleQuery struct {
	Filters listing.SaleFilters `json:"filters"`
	Sort    listing.SortState   `json:"sort"`
	Pager   listing.Pager       `json:"pager"`
}

// DefaultSaleQuery shows every sale, newest first.
func DefaultSaleQuery() SaleQuery {
	return SaleQuery{
		Filters: listing.DefaultSaleFilters(),
		Sort:    listing.DefaultSaleSort,
		Pager:   listing.NewPager(),
	}
}

// SalesView is one rendered page of the sales table.
type SalesView struct {
	Rows           listing.Page[SaleRow] `json:"rows"`
	Query          SaleQuery             `json:"query"`
	PaymentMethods []string              `json:"payment_methods"`
	PageSizes      []int                 `json:"page_sizes"`
}

// Sales filters, sorts and pages sales.
func (b *Builder) Sales(version uint64, sales []pos.Sale, q SaleQuery) (SalesView, error) {
	pred, err := q.Filters.Predicate(b.loc)
	if err != nil {
		return SalesView{}, err
	}
	sorted := listing.Sort(listing.Apply(sales, pred), listing.SaleFields, q.Sort, b.locale)
	rows := make([]SaleRow, len(sorted))
	for i, s := range sorted {
		rows[i] = SaleRow{Sale: s, ItemCount: len(s.Items)}
	}
	page := listing.Paginate(rows, q.Pager)
	q.Pager = listing.Pager{Page: page.Page, Size: page.Size}
	return SalesView{
		Rows:  page,
		Query: q,
		PaymentMethods: b.methods.Get(versionKey(version), func() []string {
			return listing.PaymentMethods(sales)
		}),
		PageSizes: listing.PageSizes,
	}, nil
}

// SaleItemQuery holds the sale items table selections.
type SaleItemQuery struct {
	Filters listing.SaleItemFilters `json:"filters"`
	Sort    listing.SortState       `json:"sort"`
	Pager   listing.Pager           `json:"pager"`
}

// DefaultSaleItemQuery keeps the items in sale order.
func DefaultSaleItemQuery() SaleItemQuery {
	return SaleItemQuery{Pager: listing.NewPager()}
}

// SaleItemsView is one rendered page of the flattened sale items.
type SaleItemsView struct {
	Rows      listing.Page[pos.SaleItem] `json:"rows"`
	Query     SaleItemQuery              `json:"query"`
	PageSizes []int                      `json:"page_sizes"`
}

// SaleItems flattens every sale's items, stamping each with its sale code,
// then filters, sorts and pages them.
func (b *Builder) SaleItems(version uint64, sales []pos.Sale, q SaleItemQuery) (SaleItemsView, error) {
	pred, err := q.Filters.Predicate()
	if err != nil {
		return SaleItemsView{}, err
	}
	items := b.saleItems.Get(versionKey(version), func() []pos.SaleItem {
		return FlattenItems(sales)
	})
	sorted := listing.Sort(listing.Apply(items, pred), listing.SaleItemFields, q.Sort, b.locale)
	page := listing.Paginate(sorted, q.Pager)
	q.Pager = listing.Pager{Page: page.Page, Size: page.Size}
	return SaleItemsView{Rows: page, Query: q, PageSizes: listing.PageSizes}, nil
}

// FlattenItems lists every sale item in sale order.
func FlattenItems(sales []pos.Sale) []pos.SaleItem {
	out := []pos.SaleItem{}
	for _, s := range sales {
		for _, item := range s.Items {
			item.SaleCode = s.Code
			out = append(out, item)
		}
	}
	return out
}
