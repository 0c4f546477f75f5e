package state

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pages"
	"github.com/webpos/posdash/internal/pos"
)

// Section names.
const (
	SectionProducts  = "products"
	SectionSales     = "sales"
	SectionSaleItems = "sale-items"
	SectionSuppliers = "suppliers"
	SectionCustomers = "customers"
	SectionDashboard = "dashboard"
)

// Source is the subset of the POS API a session reads.
type Source interface {
	ListProducts(ctx context.Context) ([]pos.Product, error)
	SearchProducts(ctx context.Context, term string) ([]pos.Product, error)
	ListSales(ctx context.Context, q gateway.SalesQuery) ([]pos.Sale, error)
	ListSuppliers(ctx context.Context) ([]pos.Supplier, error)
	SearchSuppliers(ctx context.Context, term string) ([]pos.Supplier, error)
	ListCustomers(ctx context.Context) ([]pos.Customer, error)
	SearchCustomers(ctx context.Context, term string) ([]pos.Customer, error)
}

// Reporter turns loaded sales into chart series.
type Reporter interface {
	Report(sales []pos.Sale) analytics.Report
}

// SupplierData is the suppliers section: the suppliers and every product,
// used to count products per supplier.
type SupplierData struct {
	Suppliers []pos.Supplier
	Products  []pos.Product
}

// CustomerData is the customers section: the customers and every sale,
// used for purchase statistics.
type CustomerData struct {
	Customers []pos.Customer
	Sales     []pos.Sale
}

// DashboardData is everything the landing page reads.
type DashboardData struct {
	Products  []pos.Product
	Sales     []pos.Sale
	Suppliers []pos.Supplier
}

// Options tune an AppState.
type Options struct {
	Policy   Policy
	Location *time.Location
	Locale   language.Tag
	Logger   *slog.Logger
	Reporter Reporter
}

// View is a rendered section together with its load state.
type View[V any] struct {
	Status   Status    `json:"status"`
	Error    string    `json:"error,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	View     V         `json:"view"`
}

func viewOf[T, V any](snap Snapshot[T], v V) View[V] {
	return View[V]{Status: snap.Status, Error: snap.Error, LoadedAt: snap.LoadedAt, View: v}
}

// AppState is one session's dashboard. Each section's records change only
// through that section's loads. Selections are guarded by mu.
type AppState struct {
	ID string

	source   Source
	reporter Reporter
	loc      *time.Location
	logger   *slog.Logger
	builder  *pages.Builder

	Products  *Section[[]pos.Product]
	Sales     *Section[[]pos.Sale]
	Suppliers *Section[SupplierData]
	Customers *Section[CustomerData]
	Dashboard *Section[DashboardData]

	mu            sync.Mutex
	productQuery  pages.ProductQuery
	saleQuery     pages.SaleQuery
	saleItemQuery pages.SaleItemQuery
	supplierQuery pages.DirectoryQuery
	customerQuery pages.DirectoryQuery
}

// New creates an idle session.
func New(id string, source Source, opts Options) *AppState {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AppState{
		ID:            id,
		source:        source,
		reporter:      opts.Reporter,
		loc:           loc,
		logger:        logger.With(slog.String("session", id)),
		builder:       pages.NewBuilder(loc, opts.Locale),
		Products:      NewSection(opts.Policy, []pos.Product{}),
		Sales:         NewSection(opts.Policy, []pos.Sale{}),
		Suppliers:     NewSection(opts.Policy, SupplierData{Suppliers: []pos.Supplier{}, Products: []pos.Product{}}),
		Customers:     NewSection(opts.Policy, CustomerData{Customers: []pos.Customer{}, Sales: []pos.Sale{}}),
		Dashboard:     NewSection(opts.Policy, DashboardData{Products: []pos.Product{}, Sales: []pos.Sale{}, Suppliers: []pos.Supplier{}}),
		productQuery:  pages.DefaultProductQuery(),
		saleQuery:     pages.DefaultSaleQuery(),
		saleItemQuery: pages.DefaultSaleItemQuery(),
		supplierQuery: pages.DefaultDirectoryQuery(),
		customerQuery: pages.DefaultDirectoryQuery(),
	}
}

func (a *AppState) logLoad(section string, err error) error {
	if err != nil {
		a.logger.Warn("section load failed", slog.String("section", section), slog.Any("error", err))
	}
	return err
}

// LoadProducts fetches products, searching the API when a term is set.
func (a *AppState) LoadProducts(ctx context.Context) error {
	a.mu.Lock()
	term := strings.TrimSpace(a.productQuery.Filters.Search)
	a.mu.Unlock()
	return a.logLoad(SectionProducts, a.Products.Load(ctx, func(ctx context.Context) ([]pos.Product, error) {
		if term == "" {
			return a.source.ListProducts(ctx)
		}
		return a.source.SearchProducts(ctx, term)
	}))
}

// LoadSales fetches sales, narrowed server side by the selected dates.
func (a *AppState) LoadSales(ctx context.Context) error {
	a.mu.Lock()
	q := gateway.SalesQuery{StartDate: a.saleQuery.Filters.StartDate, EndDate: a.saleQuery.Filters.EndDate}
	a.mu.Unlock()
	return a.logLoad(SectionSales, a.Sales.Load(ctx, func(ctx context.Context) ([]pos.Sale, error) {
		return a.source.ListSales(ctx, q)
	}))
}

// LoadSuppliers fetches suppliers and products in parallel.
func (a *AppState) LoadSuppliers(ctx context.Context) error {
	a.mu.Lock()
	term := strings.TrimSpace(a.supplierQuery.Search)
	a.mu.Unlock()
	return a.logLoad(SectionSuppliers, a.Suppliers.Load(ctx, func(ctx context.Context) (SupplierData, error) {
		var data SupplierData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			if term == "" {
				data.Suppliers, err = a.source.ListSuppliers(gctx)
			} else {
				data.Suppliers, err = a.source.SearchSuppliers(gctx, term)
			}
			return err
		})
		g.Go(func() (err error) {
			data.Products, err = a.source.ListProducts(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return SupplierData{}, err
		}
		return data, nil
	}))
}

// LoadCustomers fetches customers and sales in parallel.
func (a *AppState) LoadCustomers(ctx context.Context) error {
	a.mu.Lock()
	term := strings.TrimSpace(a.customerQuery.Search)
	a.mu.Unlock()
	return a.logLoad(SectionCustomers, a.Customers.Load(ctx, func(ctx context.Context) (CustomerData, error) {
		var data CustomerData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			if term == "" {
				data.Customers, err = a.source.ListCustomers(gctx)
			} else {
				data.Customers, err = a.source.SearchCustomers(gctx, term)
			}
			return err
		})
		g.Go(func() (err error) {
			data.Sales, err = a.source.ListSales(gctx, gateway.SalesQuery{})
			return err
		})
		if err := g.Wait(); err != nil {
			return CustomerData{}, err
		}
		return data, nil
	}))
}

// LoadDashboard fetches products, sales and suppliers in parallel.
func (a *AppState) LoadDashboard(ctx context.Context) error {
	return a.logLoad(SectionDashboard, a.Dashboard.Load(ctx, func(ctx context.Context) (DashboardData, error) {
		var data DashboardData
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			data.Products, err = a.source.ListProducts(gctx)
			return err
		})
		g.Go(func() (err error) {
			data.Sales, err = a.source.ListSales(gctx, gateway.SalesQuery{})
			return err
		})
		g.Go(func() (err error) {
			data.Suppliers, err = a.source.ListSuppliers(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return DashboardData{}, err
		}
		return data, nil
	}))
}

// Load fetches section. Sale items share the sales records.
func (a *AppState) Load(ctx context.Context, section string) error {
	switch section {
	case SectionProducts:
		return a.LoadProducts(ctx)
	case SectionSales, SectionSaleItems:
		return a.LoadSales(ctx)
	case SectionSuppliers:
		return a.LoadSuppliers(ctx)
	case SectionCustomers:
		return a.LoadCustomers(ctx)
	case SectionDashboard:
		return a.LoadDashboard(ctx)
	default:
		return unknownSection(section)
	}
}

// EnsureLoaded fetches section once, on first view.
func (a *AppState) EnsureLoaded(ctx context.Context, section string) error {
	var status Status
	switch section {
	case SectionProducts:
		status = a.Products.Status()
	case SectionSales, SectionSaleItems:
		status = a.Sales.Status()
	case SectionSuppliers:
		status = a.Suppliers.Status()
	case SectionCustomers:
		status = a.Customers.Status()
	case SectionDashboard:
		status = a.Dashboard.Status()
	default:
		return unknownSection(section)
	}
	if status != StatusIdle {
		return nil
	}
	return a.Load(ctx, section)
}

func unknownSection(section string) error {
	return fmt.Errorf("%w: unknown section %q", pos.ErrValidation, section)
}

func unknownField(section, field string) error {
	return fmt.Errorf("%w: %s cannot be sorted by %q", pos.ErrValidation, section, field)
}
