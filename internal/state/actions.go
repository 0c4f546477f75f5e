package state

import (
	"context"
	"strings"
	"time"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/listing"
	"github.com/webpos/posdash/internal/pages"
	"github.com/webpos/posdash/internal/pos"
)

// SetProductFilters replaces the product filters and returns to page 1. A
// changed search term refetches through the API search.
func (a *AppState) SetProductFilters(ctx context.Context, f listing.ProductFilters) error {
	if f.Category == "" {
		f.Category = listing.AllValues
	}
	if f.StockLevel == "" {
		f.StockLevel = listing.AllValues
	}
	if _, err := f.Predicate(); err != nil {
		return err
	}
	a.mu.Lock()
	searchChanged := strings.TrimSpace(a.productQuery.Filters.Search) != strings.TrimSpace(f.Search)
	a.productQuery.Filters = f
	a.productQuery.Pager = a.productQuery.Pager.Reset()
	a.mu.Unlock()
	if !searchChanged {
		return nil
	}
	return a.LoadProducts(ctx)
}

// ProductFilters returns the current product filters.
func (a *AppState) ProductFilters() listing.ProductFilters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.productQuery.Filters
}

// SetProductSearch changes the product search term.
func (a *AppState) SetProductSearch(ctx context.Context, term string) error {
	f := a.ProductFilters()
	f.Search = term
	return a.SetProductFilters(ctx, f)
}

// SetCategory filters products by category. "all" clears it.
func (a *AppState) SetCategory(ctx context.Context, category string) error {
	f := a.ProductFilters()
	f.Category = category
	return a.SetProductFilters(ctx, f)
}

// SetStockLevel filters products by stock bucket. "all" clears it.
func (a *AppState) SetStockLevel(ctx context.Context, level string) error {
	f := a.ProductFilters()
	f.StockLevel = level
	return a.SetProductFilters(ctx, f)
}

// ClearProductFilters restores the default product filters.
func (a *AppState) ClearProductFilters(ctx context.Context) error {
	return a.SetProductFilters(ctx, listing.DefaultProductFilters())
}

// SetSaleFilters replaces the sale filters and returns to page 1. Changed
// dates refetch so the API can narrow the range.
func (a *AppState) SetSaleFilters(ctx context.Context, f listing.SaleFilters) error {
	if f.PaymentMethod == "" {
		f.PaymentMethod = listing.AllValues
	}
	if _, err := f.Predicate(a.loc); err != nil {
		return err
	}
	a.mu.Lock()
	prev := a.saleQuery.Filters
	datesChanged := prev.StartDate != f.StartDate || prev.EndDate != f.EndDate
	a.saleQuery.Filters = f
	a.saleQuery.Pager = a.saleQuery.Pager.Reset()
	a.mu.Unlock()
	if !datesChanged {
		return nil
	}
	return a.LoadSales(ctx)
}

// SaleFilters returns the current sale filters.
func (a *AppState) SaleFilters() listing.SaleFilters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saleQuery.Filters
}

// SetSalesSearch changes the sale search term.
func (a *AppState) SetSalesSearch(ctx context.Context, term string) error {
	f := a.SaleFilters()
	f.Search = term
	return a.SetSaleFilters(ctx, f)
}

// SetSalesDateRange changes the inclusive YYYY-MM-DD date bounds. Either
// bound may be blank.
func (a *AppState) SetSalesDateRange(ctx context.Context, start, end string) error {
	f := a.SaleFilters()
	f.StartDate, f.EndDate = start, end
	return a.SetSaleFilters(ctx, f)
}

// SetPaymentMethod filters sales by payment method. "all" clears it.
func (a *AppState) SetPaymentMethod(ctx context.Context, method string) error {
	f := a.SaleFilters()
	f.PaymentMethod = method
	return a.SetSaleFilters(ctx, f)
}

// ClearSalesFilters restores the default sale filters.
func (a *AppState) ClearSalesFilters(ctx context.Context) error {
	return a.SetSaleFilters(ctx, listing.DefaultSaleFilters())
}

// SetSaleItemSearch filters the flattened sale items.
func (a *AppState) SetSaleItemSearch(term string) error {
	f := listing.SaleItemFilters{Search: term}
	if _, err := f.Predicate(); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.saleItemQuery.Filters = f
	a.saleItemQuery.Pager = a.saleItemQuery.Pager.Reset()
	return nil
}

// SetSupplierSearch searches suppliers through the API. A blank term lists
// them all.
func (a *AppState) SetSupplierSearch(ctx context.Context, term string) error {
	q := pages.DirectoryQuery{Search: term}
	if err := q.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.supplierQuery.Search = term
	a.supplierQuery.Pager = a.supplierQuery.Pager.Reset()
	a.mu.Unlock()
	return a.LoadSuppliers(ctx)
}

// SetCustomerSearch searches customers through the API. A blank term lists
// them all.
func (a *AppState) SetCustomerSearch(ctx context.Context, term string) error {
	q := pages.DirectoryQuery{Search: term}
	if err := q.Validate(); err != nil {
		return err
	}
	a.mu.Lock()
	a.customerQuery.Search = term
	a.customerQuery.Pager = a.customerQuery.Pager.Reset()
	a.mu.Unlock()
	return a.LoadCustomers(ctx)
}

// ToggleSort sorts section by field, flipping the direction when field is
// already selected.
func (a *AppState) ToggleSort(section, field string) (listing.SortState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var (
		sort *listing.SortState
		ok   bool
	)
	switch section {
	case SectionProducts:
		sort, ok = &a.productQuery.Sort, listing.ProductFields.Has(field)
	case SectionSales:
		sort, ok = &a.saleQuery.Sort, listing.SaleFields.Has(field)
	case SectionSaleItems:
		sort, ok = &a.saleItemQuery.Sort, listing.SaleItemFields.Has(field)
	default:
		return listing.SortState{}, unknownSection(section)
	}
	if !ok {
		return *sort, unknownField(section, field)
	}
	*sort = sort.Toggle(field)
	return *sort, nil
}

func (a *AppState) pager(section string) (*listing.Pager, error) {
	switch section {
	case SectionProducts:
		return &a.productQuery.Pager, nil
	case SectionSales:
		return &a.saleQuery.Pager, nil
	case SectionSaleItems:
		return &a.saleItemQuery.Pager, nil
	case SectionSuppliers:
		return &a.supplierQuery.Pager, nil
	case SectionCustomers:
		return &a.customerQuery.Pager, nil
	default:
		return nil, unknownSection(section)
	}
}

// SetPage moves section to page. Out of range pages clamp when the view is
// next rendered.
func (a *AppState) SetPage(section string, page int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.pager(section)
	if err != nil {
		return err
	}
	if page < 1 {
		page = 1
	}
	p.Page = page
	return nil
}

// SetPageSize changes section's rows per page and returns to page 1.
func (a *AppState) SetPageSize(section string, size int) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.pager(section)
	if err != nil {
		return err
	}
	next, err := p.SetSize(size)
	if err != nil {
		return err
	}
	*p = next
	return nil
}

// ProductsView renders the current products page.
func (a *AppState) ProductsView() (View[pages.ProductsView], error) {
	snap := a.Products.Snapshot()
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.builder.Products(snap.Version, snap.Data, a.productQuery)
	if err != nil {
		return View[pages.ProductsView]{}, err
	}
	a.productQuery.Pager = v.Query.Pager
	return viewOf(snap, v), nil
}

// SalesView renders the current sales page.
func (a *AppState) SalesView() (View[pages.SalesView], error) {
	snap := a.Sales.Snapshot()
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.builder.Sales(snap.Version, snap.Data, a.saleQuery)
	if err != nil {
		return View[pages.SalesView]{}, err
	}
	a.saleQuery.Pager = v.Query.Pager
	return viewOf(snap, v), nil
}

// SaleItemsView renders the current sale items page.
func (a *AppState) SaleItemsView() (View[pages.SaleItemsView], error) {
	snap := a.Sales.Snapshot()
	a.mu.Lock()
	defer a.mu.Unlock()
	v, err := a.builder.SaleItems(snap.Version, snap.Data, a.saleItemQuery)
	if err != nil {
		return View[pages.SaleItemsView]{}, err
	}
	a.saleItemQuery.Pager = v.Query.Pager
	return viewOf(snap, v), nil
}

// SuppliersView renders the current suppliers page.
func (a *AppState) SuppliersView() View[pages.SuppliersView] {
	snap := a.Suppliers.Snapshot()
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.builder.Suppliers(snap.Version, snap.Data.Suppliers, snap.Data.Products, a.supplierQuery)
	a.supplierQuery.Pager = v.Query.Pager
	return viewOf(snap, v)
}

// CustomersView renders the current customers page.
func (a *AppState) CustomersView() View[pages.CustomersView] {
	snap := a.Customers.Snapshot()
	a.mu.Lock()
	defer a.mu.Unlock()
	v := a.builder.Customers(snap.Version, snap.Data.Customers, snap.Data.Sales, a.customerQuery)
	a.customerQuery.Pager = v.Query.Pager
	return viewOf(snap, v)
}

// DashboardView renders the landing page with report, or the client-side
// report of the loaded sales when report is nil.
func (a *AppState) DashboardView(report *analytics.Report) View[pages.DashboardView] {
	snap := a.Dashboard.Snapshot()
	r := a.reportFor(snap.Data.Sales, report)
	return viewOf(snap, pages.Dashboard(snap.Data.Products, snap.Data.Sales, snap.Data.Suppliers, r))
}

// DashboardRecords returns the loaded dashboard records and their report.
func (a *AppState) DashboardRecords() (DashboardData, analytics.Report) {
	snap := a.Dashboard.Snapshot()
	return snap.Data, a.reportFor(snap.Data.Sales, nil)
}

func (a *AppState) reportFor(sales []pos.Sale, report *analytics.Report) analytics.Report {
	switch {
	case report != nil:
		return *report
	case a.reporter != nil:
		return a.reporter.Report(sales)
	default:
		return analytics.Aggregate(sales, time.Now(), a.loc)
	}
}

// FilteredSales returns every sale matching the current sale filters, in
// the current sort order.
func (a *AppState) FilteredSales() ([]pos.Sale, error) {
	snap := a.Sales.Snapshot()
	a.mu.Lock()
	q := a.saleQuery
	a.mu.Unlock()
	pred, err := q.Filters.Predicate(a.loc)
	if err != nil {
		return nil, err
	}
	return listing.Sort(listing.Apply(snap.Data, pred), listing.SaleFields, q.Sort, a.builder.Locale()), nil
}
