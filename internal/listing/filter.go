// Package listing turns loaded record sets into the visible table rows:
// filter, then sort, then paginate. Every function here is pure and returns
// fresh slices; callers' inputs are never reordered.
package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/webpos/posdash/internal/pos"
)

// AllValues is the sentinel that disables an exact-match filter.
const AllValues = "all"

// Predicate reports whether a record stays visible.
type Predicate[T any] func(T) bool

// All combines predicates with logical AND. Nil predicates are ignored and
// an empty list passes everything.
func All[T any](preds ...Predicate[T]) Predicate[T] {
	active := make([]Predicate[T], 0, len(preds))
	for _, p := range preds {
		if p != nil {
			active = append(active, p)
		}
	}
	return func(item T) bool {
		for _, p := range active {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Apply returns the items accepted by pred, in input order. The result is
// never nil.
func Apply[T any](items []T, pred Predicate[T]) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred == nil || pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// MatchText is a case-insensitive substring search over the given fields; a
// record matches if any field contains the term. A blank term matches
// everything.
func MatchText[T any](term string, fields ...func(T) string) Predicate[T] {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return nil
	}
	return func(item T) bool {
		for _, field := range fields {
			if strings.Contains(strings.ToLower(field(item)), needle) {
				return true
			}
		}
		return false
	}
}

// MatchExact compares a field against value. "all" and "" match everything.
func MatchExact[T any](value string, field func(T) string) Predicate[T] {
	if value == "" || value == AllValues {
		return nil
	}
	return func(item T) bool {
		return field(item) == value
	}
}

// MatchStock keeps products in the requested stock bucket. "all" and ""
// match everything.
func MatchStock(level string) (Predicate[pos.Product], error) {
	if level == "" || level == AllValues {
		return nil, nil
	}
	bucket, err := pos.ParseStockBucket(level)
	if err != nil {
		return nil, err
	}
	return func(p pos.Product) bool {
		return p.Stock() == bucket
	}, nil
}

// DateRange is an inclusive calendar-day window. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
	loc   *time.Location
}

// ParseDateRange parses YYYY-MM-DD bounds in loc. Empty strings leave that
// side open; anything else that does not parse is a validation error.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	r := DateRange{loc: loc}
	var err error
	if r.Start, err = parseDay(start, loc); err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q must be YYYY-MM-DD", pos.ErrValidation, start)
	}
	if r.End, err = parseDay(end, loc); err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q must be YYYY-MM-DD", pos.ErrValidation, end)
	}
	return r, nil
}

func parseDay(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, value, loc)
}

// Active reports whether either bound is set.
func (r DateRange) Active() bool {
	return !r.Start.IsZero() || !r.End.IsZero()
}

// Contains reports whether ts falls on a day inside the range. A missing
// timestamp fails whenever a bound is active.
func (r DateRange) Contains(ts time.Time) bool {
	if !r.Active() {
		return true
	}
	if ts.IsZero() {
		return false
	}
	loc := r.loc
	if loc == nil {
		loc = time.UTC
	}
	day := StartOfDay(ts, loc)
	if !r.Start.IsZero() && day.Before(StartOfDay(r.Start, loc)) {
		return false
	}
	if !r.End.IsZero() && day.After(StartOfDay(r.End, loc)) {
		return false
	}
	return true
}

// StartOfDay truncates ts to midnight of its calendar day in loc.
func StartOfDay(ts time.Time, loc *time.Location) time.Time {
	local := ts.In(loc)
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ProductFilters are the products table filters.
type ProductFilters struct {
	Search     string `json:"search" validate:"max=200"`
	Category   string `json:"category" validate:"max=200"`
	StockLevel string `json:"stock_level" validate:"omitempty,oneof=all out-of-stock low-stock in-stock"`
}

// DefaultProductFilters shows every product.
func DefaultProductFilters() ProductFilters {
	return ProductFilters{Category: AllValues, StockLevel: AllValues}
}

// Validate checks the filter values.
func (f ProductFilters) Validate() error {
	return pos.ValidateStruct(f)
}

// Predicate builds the combined product predicate: search over name or
// barcode, exact category, stock bucket.
func (f ProductFilters) Predicate() (Predicate[pos.Product], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	stock, err := MatchStock(f.StockLevel)
	if err != nil {
		return nil, err
	}
	return All(
		MatchText(f.Search,
			func(p pos.Product) string { return p.Name },
			func(p pos.Product) string { return p.Barcode },
		),
		MatchExact(f.Category, func(p pos.Product) string { return p.Category }),
		stock,
	), nil
}

// SaleFilters are the sales table filters. Dates are YYYY-MM-DD.
type SaleFilters struct {
	Search        string `json:"search" validate:"max=200"`
	StartDate     string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"max=100"`
}

// DefaultSaleFilters shows every sale.
func DefaultSaleFilters() SaleFilters {
	return SaleFilters{PaymentMethod: AllValues}
}

// Validate checks the filter values.
func (f SaleFilters) Validate() error {
	return pos.ValidateStruct(f)
}

// Range parses the date bounds in loc.
func (f SaleFilters) Range(loc *time.Location) (DateRange, error) {
	return ParseDateRange(f.StartDate, f.EndDate, loc)
}

// Predicate builds the combined sale predicate: search over sale code or
// customer contact, inclusive date range, exact payment method.
func (f SaleFilters) Predicate(loc *time.Location) (Predicate[pos.Sale], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	dates, err := f.Range(loc)
	if err != nil {
		return nil, err
	}
	var inRange Predicate[pos.Sale]
	if dates.Active() {
		inRange = func(s pos.Sale) bool { return dates.Contains(s.SaleDate) }
	}
	return All(
		MatchText(f.Search,
			func(s pos.Sale) string { return s.Code },
			func(s pos.Sale) string { return s.CustomerContact },
		),
		inRange,
		MatchExact(f.PaymentMethod, func(s pos.Sale) string { return s.PaymentMethod }),
	), nil
}

// SaleItemFilters filter the flattened sale items table.
type SaleItemFilters struct {
	Search string `json:"search" validate:"max=200"`
}

// Predicate matches the sale code, product name or category.
func (f SaleItemFilters) Predicate() (Predicate[pos.SaleItem], error) {
	if err := pos.ValidateStruct(f); err != nil {
		return nil, err
	}
	return MatchText(f.Search,
		func(i pos.SaleItem) string { return i.SaleCode },
		func(i pos.SaleItem) string { return i.ProductName },
		func(i pos.SaleItem) string { return i.Category },
	), nil
}

// Categories lists "all" followed by each distinct non-empty category in
// first-seen order.
func Categories(products []pos.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{AllValues}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

// PaymentMethods lists "all" followed by each distinct non-empty payment
// method in first-seen order.
func PaymentMethods(sales []pos.Sale) []string {
	seen := make(map[string]struct{}, len(sales))
	out := []string{AllValues}
	for _, s := range sales {
		if s.PaymentMethod == "" {
			continue
		}
		if _, ok := seen[s.PaymentMethod]; ok {
			continue
		}
		seen[s.PaymentMethod] = struct{}{}
		out = append(out, s.PaymentMethod)
	}
	return out
}
