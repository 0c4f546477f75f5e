package listing

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/webpos/posdash/internal/pos"
)

// SortState is the active sort column and direction.
type SortState struct {
	Field string `json:"field"`
	Desc  bool   `json:"desc"`
}

// Toggle selects field. Selecting the current field flips the direction; a
// new field starts ascending.
func (s SortState) Toggle(field string) SortState {
	if s.Field == field {
		return SortState{Field: field, Desc: !s.Desc}
	}
	return SortState{Field: field}
}

// Direction returns "asc" or "desc".
func (s SortState) Direction() string {
	if s.Desc {
		return "desc"
	}
	return "asc"
}

// Key compares two records on one column, ascending.
type Key[T any] func(a, b T, col *collate.Collator) int

// Fields maps sortable column names to their keys.
type Fields[T any] map[string]Key[T]

// Has reports whether name is a sortable column.
func (f Fields[T]) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// NumberField orders by a decimal value.
func NumberField[T any](get func(T) decimal.Decimal) Key[T] {
	return func(a, b T, _ *collate.Collator) int {
		return get(a).Cmp(get(b))
	}
}

// IntField orders by an integer value.
func IntField[T any](get func(T) int) Key[T] {
	return func(a, b T, _ *collate.Collator) int {
		x, y := get(a), get(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}

// StringField orders with the locale collator.
func StringField[T any](get func(T) string) Key[T] {
	return func(a, b T, col *collate.Collator) int {
		if col == nil {
			return strings.Compare(get(a), get(b))
		}
		return col.CompareString(get(a), get(b))
	}
}

// TimeField orders chronologically. Missing timestamps sort first.
func TimeField[T any](get func(T) time.Time) Key[T] {
	return func(a, b T, _ *collate.Collator) int {
		return get(a).Compare(get(b))
	}
}

// Sort returns a stably sorted copy of items. An unknown field keeps the
// input order.
func Sort[T any](items []T, fields Fields[T], state SortState, locale language.Tag) []T {
	out := slices.Clone(items)
	if out == nil {
		out = []T{}
	}
	key, ok := fields[state.Field]
	if !ok {
		return out
	}
	// collators are not safe for concurrent use
	col := collate.New(locale)
	slices.SortStableFunc(out, func(a, b T) int {
		c := key(a, b, col)
		if state.Desc {
			return -c
		}
		return c
	})
	return out
}

// ProductFields are the sortable product columns. "quantity" resolves
// through the stock sub-record.
var ProductFields = Fields[pos.Product]{
	"name":          StringField(func(p pos.Product) string { return p.Name }),
	"barcode":       StringField(func(p pos.Product) string { return p.Barcode }),
	"category":      StringField(func(p pos.Product) string { return p.Category }),
	"supplier_name": StringField(func(p pos.Product) string { return p.SupplierName }),
	"sale_price":    NumberField(func(p pos.Product) decimal.Decimal { return p.SalePrice }),
	"discount":      NumberField(func(p pos.Product) decimal.Decimal { return p.Discount }),
	"tax":           NumberField(func(p pos.Product) decimal.Decimal { return p.Tax }),
	"quantity":      IntField(func(p pos.Product) int { return p.StockQuantity() }),
	"created_date":  TimeField(func(p pos.Product) time.Time { return p.CreatedDate }),
	"expire_date":   TimeField(expireDate),
}

func expireDate(p pos.Product) time.Time {
	if p.ExpireDate == nil {
		return time.Time{}
	}
	return *p.ExpireDate
}

// DefaultProductSort orders products by name.
var DefaultProductSort = SortState{Field: "name"}

// SaleFields are the sortable sale columns.
var SaleFields = Fields[pos.Sale]{
	"sale_id":          StringField(func(s pos.Sale) string { return s.Code }),
	"customer_contact": StringField(func(s pos.Sale) string { return s.CustomerContact }),
	"payment_method":   StringField(func(s pos.Sale) string { return s.PaymentMethod }),
	"sale_date":        TimeField(func(s pos.Sale) time.Time { return s.SaleDate }),
	"sub_total":        NumberField(func(s pos.Sale) decimal.Decimal { return s.SubTotal }),
	"total_amount":     NumberField(func(s pos.Sale) decimal.Decimal { return s.TotalAmount }),
	"items":            IntField(func(s pos.Sale) int { return len(s.Items) }),
}

// DefaultSaleSort shows the newest sales first.
var DefaultSaleSort = SortState{Field: "sale_date", Desc: true}

// SaleItemFields are the sortable sale item columns.
var SaleItemFields = Fields[pos.SaleItem]{
	"sale_id":      StringField(func(i pos.SaleItem) string { return i.SaleCode }),
	"product_name": StringField(func(i pos.SaleItem) string { return i.ProductName }),
	"category":     StringField(func(i pos.SaleItem) string { return i.Category }),
	"quantity":     IntField(func(i pos.SaleItem) int { return i.Quantity }),
	"unit_price":   NumberField(func(i pos.SaleItem) decimal.Decimal { return i.UnitPrice }),
	"sub_total":    NumberField(func(i pos.SaleItem) decimal.Decimal { return i.SubTotal }),
}
