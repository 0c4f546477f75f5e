package dashboardhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/analytics/svg"
	"github.com/webpos/posdash/internal/gateway"
	"github.com/webpos/posdash/internal/pos"
	"github.com/webpos/posdash/internal/state"
	"github.com/webpos/posdash/jobs"
)

type stubSource struct {
	mu       sync.Mutex
	calls    map[string]int
	products []pos.Product
	sales    []pos.Sale
	err      error
}

func (s *stubSource) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[call]++
}

func (s *stubSource) count(call string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[call]
}

func (s *stubSource) ListProducts(ctx context.Context) ([]pos.Product, error) {
	s.record("products")
	return s.products, s.err
}

func (s *stubSource) SearchProducts(ctx context.Context, term string) ([]pos.Product, error) {
	s.record("products/search/" + term)
	return s.products[:1], s.err
}

func (s *stubSource) ListSales(ctx context.Context, q gateway.SalesQuery) ([]pos.Sale, error) {
	s.record("sales")
	return s.sales, s.err
}

func (s *stubSource) ListSuppliers(ctx context.Context) ([]pos.Supplier, error) {
	s.record("suppliers")
	return []pos.Supplier{{ID: 1, Name: "Acme"}}, s.err
}

func (s *stubSource) SearchSuppliers(ctx context.Context, term string) ([]pos.Supplier, error) {
	s.record("suppliers/search/" + term)
	return []pos.Supplier{{ID: 1, Name: "Acme"}}, s.err
}

func (s *stubSource) ListCustomers(ctx context.Context) ([]pos.Customer, error) {
	s.record("customers")
	return []pos.Customer{{ID: 1, Contact: "ann@example.com"}}, s.err
}

func (s *stubSource) SearchCustomers(ctx context.Context, term string) ([]pos.Customer, error) {
	s.record("customers/search/" + term)
	return []pos.Customer{}, s.err
}

type stubCatalog struct {
	product  *pos.Product
	err      error
	deleted  bool
	sales    []pos.Sale
	lastID   int64
	lastSize int
}

func (c *stubCatalog) GetProduct(ctx context.Context, id int64) (*pos.Product, error) {
	c.lastID = id
	return c.product, c.err
}

func (c *stubCatalog) CreateProduct(ctx context.Context, in pos.ProductInput) (*pos.Product, error) {
	return &pos.Product{ID: 99, Name: *in.Name, SalePrice: *in.SalePrice}, c.err
}

func (c *stubCatalog) UpdateProduct(ctx context.Context, id int64, in pos.ProductInput) (*pos.Product, error) {
	c.lastID = id
	return c.product, c.err
}

func (c *stubCatalog) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	c.lastID = id
	return c.deleted, c.err
}

func (c *stubCatalog) UpdateQuantity(ctx context.Context, productID int64, quantitySize int) (*pos.Product, error) {
	c.lastID = productID
	c.lastSize = quantitySize
	return c.product, c.err
}

func (c *stubCatalog) SalesByCustomer(ctx context.Context, customerID int64) ([]pos.Sale, error) {
	c.lastID = customerID
	return c.sales, c.err
}

type stubAnalytics struct {
	report analytics.Report
	err    error
	bumps  int
}

func (a *stubAnalytics) ServerReport(ctx context.Context) (analytics.Report, error) {
	return a.report, a.err
}

func (a *stubAnalytics) Bump(ctx context.Context) error {
	a.bumps++
	return nil
}

type stubEnqueuer struct {
	payloads []jobs.WarmupPayload
}

func (e *stubEnqueuer) EnqueueWarmup(ctx context.Context, payload jobs.WarmupPayload) (*asynq.TaskInfo, error) {
	e.payloads = append(e.payloads, payload)
	return &asynq.TaskInfo{ID: "t1"}, nil
}

type fixture struct {
	source    *stubSource
	catalog   *stubCatalog
	analytics *stubAnalytics
	enqueuer  *stubEnqueuer
	router    http.Handler
}

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func qty(n int) *pos.Quantity { return &pos.Quantity{Size: n} }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		source: &stubSource{
			products: []pos.Product{
				{ID: 1, Name: "Tea", Category: "Drinks", Quantity: qty(50)},
				{ID: 2, Name: "Bread", Category: "Bakery", Quantity: qty(3)},
				{ID: 3, Name: "Milk", Category: "Drinks"},
			},
			sales: []pos.Sale{
				{Code: "S1", SaleDate: fixedNow, TotalAmount: decimal.NewFromInt(10), PaymentMethod: "cash", CustomerContact: "0100",
					Items: []pos.SaleItem{{ProductName: "Tea", Category: "Drinks", Quantity: 2}}},
				{Code: "S2", SaleDate: fixedNow.AddDate(0, 0, -1), TotalAmount: decimal.NewFromInt(4), PaymentMethod: "card"},
			},
		},
		catalog:   &stubCatalog{},
		analytics: &stubAnalytics{report: analytics.Report{Source: analytics.SourceServer}},
		enqueuer:  &stubEnqueuer{},
	}
	registry := state.NewRegistry(8, time.Minute, func(id string) *state.AppState {
		return state.New(id, f.source, state.Options{})
	})
	h := NewHandler(nil, registry, f.catalog, f.analytics, f.enqueuer)
	h.WithNow(func() time.Time { return fixedNow })

	r := chi.NewRouter()
	r.Use(SessionMiddleware(time.Minute, false))
	r.Route("/api", h.MountRoutes)
	f.router = r
	return f
}

const session = "6f1c2a34-9d7e-4b1a-8c3f-0a2b4c6d8e10"

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(SessionHeader, session)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

type productsBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	View   struct {
		Rows struct {
			Items []struct {
				ID       int64  `json:"id"`
				Name     string `json:"name"`
				Stock    string `json:"stock"`
				Supplier string `json:"supplier"`
			} `json:"items"`
			Page  int `json:"page"`
			Size  int `json:"size"`
			Total int `json:"total"`
		} `json:"rows"`
		Query struct {
			Sort struct {
				Field string `json:"field"`
				Desc  bool   `json:"desc"`
			} `json:"sort"`
		} `json:"query"`
	} `json:"view"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestSessionIssuedWhenMissing(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	id := rr.Header().Get(SessionHeader)
	assert.NotEmpty(t, id)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, id, cookies[0].Value)

	again := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	again.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	f.router.ServeHTTP(rr, again)
	assert.Equal(t, id, rr.Header().Get(SessionHeader))
	assert.Empty(t, rr.Result().Cookies())
	assert.Equal(t, 1, f.source.count("products"), "second view reuses the session's records")
}

func TestMalformedSessionStartsFresh(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set(SessionHeader, "not-a-uuid")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	assert.NotEqual(t, "not-a-uuid", rr.Header().Get(SessionHeader))
}

func TestProductsViewLoadsOnce(t *testing.T) {
	f := newFixture(t)
	body := decode[productsBody](t, f.do(t, http.MethodGet, "/api/products", ""))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, 3, body.View.Rows.Total)
	assert.Equal(t, "N/A", body.View.Rows.Items[0].Supplier)

	f.do(t, http.MethodGet, "/api/products", "")
	assert.Equal(t, 1, f.source.count("products"))

	f.do(t, http.MethodPost, "/api/products/refresh", "")
	assert.Equal(t, 2, f.source.count("products"))
}

func TestProductFiltersFilterLocally(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPut, "/api/products/filters", `{"category":"Drinks","stock_level":"out-of-stock"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode[productsBody](t, rr)
	require.Len(t, body.View.Rows.Items, 1)
	assert.Equal(t, "Milk", body.View.Rows.Items[0].Name)
	assert.Equal(t, 1, f.source.count("products"))

	rr = f.do(t, http.MethodPut, "/api/products/filters", `{"search":"Tea","category":"all","stock_level":"all"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.source.count("products/search/Tea"))

	rr = f.do(t, http.MethodDelete, "/api/products/filters", "")
	body = decode[productsBody](t, rr)
	assert.Equal(t, 3, body.View.Rows.Total)
}

func TestProductFiltersRejectInvalid(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPut, "/api/products/filters", `{"stock_level":"plenty"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

	rr = f.do(t, http.MethodPut, "/api/products/filters", `{"unknown":true}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestFetchFailureRendersFailedSection(t *testing.T) {
	f := newFixture(t)
	f.source.err = &gateway.RetrievalError{Op: "list products", StatusCode: 500}
	rr := f.do(t, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[productsBody](t, rr)
	assert.Equal(t, "failed", body.Status)
	assert.NotEmpty(t, body.Error)
	assert.Empty(t, body.View.Rows.Items)
}

func TestSortAndPage(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/products/sort", `{"field":"quantity"}`)
	body := decode[productsBody](t, rr)
	assert.Equal(t, "quantity", body.View.Query.Sort.Field)
	assert.False(t, body.View.Query.Sort.Desc)
	assert.Equal(t, "Milk", body.View.Rows.Items[0].Name)

	rr = f.do(t, http.MethodPost, "/api/products/sort", `{"field":"quantity"}`)
	body = decode[productsBody](t, rr)
	assert.True(t, body.View.Query.Sort.Desc)
	assert.Equal(t, "Tea", body.View.Rows.Items[0].Name)

	rr = f.do(t, http.MethodPost, "/api/products/sort", `{"field":"colour"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodPut, "/api/products/page", `{"page":9}`)
	body = decode[productsBody](t, rr)
	assert.Equal(t, 1, body.View.Rows.Page, "page clamps to the last page")

	rr = f.do(t, http.MethodPut, "/api/products/page", `{"size":7}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProductRecordEndpoints(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, http.MethodGet, "/api/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/products/5", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, int64(5), f.catalog.lastID)

	f.catalog.product = &pos.Product{ID: 5, Name: "Jam"}
	rr = f.do(t, http.MethodGet, "/api/products/5", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"Jam"`)

	rr = f.do(t, http.MethodPut, "/api/products/5/quantity", `{"quantity_size":-1}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(t, http.MethodPut, "/api/products/5/quantity", `{"quantity_size":12}`)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 12, f.catalog.lastSize)

	rr = f.do(t, http.MethodPut, "/api/products/5", `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = f.do(t, http.MethodDelete, "/api/products/5", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	f.catalog.deleted = true
	rr = f.do(t, http.MethodDelete, "/api/products/5", "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	f.catalog.err = &gateway.RetrievalError{Op: "get product", StatusCode: 503}
	rr = f.do(t, http.MethodGet, "/api/products/5", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "status 503")
}

func TestCreateProduct(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/products", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	f.do(t, http.MethodGet, "/api/products", "")
	rr = f.do(t, http.MethodPost, "/api/products", `{"name":"Jam","sale_price":"2.50"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"id":99`)
	assert.Equal(t, 2, f.source.count("products"), "viewed products reload after a write")
}

func TestDashboardViews(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/dashboard", "")
	require.Equal(t, http.StatusOK, rr.Code)
	type dashBody struct {
		Status string `json:"status"`
		View   struct {
			Summary struct {
				TotalSales int `json:"totalSales"`
			} `json:"summary"`
			Analytics struct {
				Source string `json:"source"`
			} `json:"analytics"`
		} `json:"view"`
	}
	body := decode[dashBody](t, rr)
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, 2, body.View.Summary.TotalSales)
	assert.Equal(t, analytics.SourceClient, body.View.Analytics.Source)

	rr = f.do(t, http.MethodGet, "/api/dashboard?source=server", "")
	body = decode[dashBody](t, rr)
	assert.Equal(t, analytics.SourceServer, body.View.Analytics.Source)

	f.analytics.err = &gateway.RetrievalError{Op: "sales analytics", StatusCode: 500}
	rr = f.do(t, http.MethodGet, "/api/dashboard?source=server", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestDashboardRefreshQueuesWarmup(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPost, "/api/dashboard/refresh", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.analytics.bumps)
	require.Len(t, f.enqueuer.payloads, 1)
	assert.Equal(t, "manual refresh", f.enqueuer.payloads[0].Reason)
	assert.Equal(t, 1, f.source.count("sales"))
}

func TestDashboardExports(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/dashboard/export.csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="posdash-dashboard-20250310.csv"`, rr.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rr.Body.String(), "Metric,Value"))

	rr = f.do(t, http.MethodGet, "/api/dashboard/export.xlsx", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "PK"), "xlsx is a zip archive")

	rr = f.do(t, http.MethodGet, "/api/sales/export.csv", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "S1")
}

func TestCharts(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/dashboard/charts/"+analytics.ChartSalesTrend+".svg", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, svg.ContentType, rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<svg")

	rr = f.do(t, http.MethodGet, "/api/dashboard/charts/pie.svg", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSaleItemsQuery(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/sale-items?search=tea&size=25", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	type itemsBody struct {
		View struct {
			Rows struct {
				Items []struct {
					SaleCode    string `json:"sale_id"`
					ProductName string `json:"product_name"`
				} `json:"items"`
				Size int `json:"size"`
			} `json:"rows"`
		} `json:"view"`
	}
	body := decode[itemsBody](t, rr)
	require.Len(t, body.View.Rows.Items, 1)
	assert.Equal(t, "S1", body.View.Rows.Items[0].SaleCode)
	assert.Equal(t, 25, body.View.Rows.Size)

	rr = f.do(t, http.MethodGet, "/api/sale-items?size=7", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = f.do(t, http.MethodGet, "/api/sale-items?page=two", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSaleFiltersRefetchOnDates(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodPut, "/api/sales/filters", `{"payment_method":"card"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, f.source.count("sales"))
	assert.Contains(t, rr.Body.String(), `"S2"`)
	assert.NotContains(t, rr.Body.String(), `"S1"`)

	rr = f.do(t, http.MethodPut, "/api/sales/filters", `{"start_date":"2025-03-10","end_date":"2025-03-10","payment_method":"all"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, f.source.count("sales"))

	rr = f.do(t, http.MethodPut, "/api/sales/filters", `{"start_date":"10/03/2025"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDirectorySections(t *testing.T) {
	f := newFixture(t)
	rr := f.do(t, http.MethodGet, "/api/suppliers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Acme")

	rr = f.do(t, http.MethodPut, "/api/suppliers/search", `{"search":"ac"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, f.source.count("suppliers/search/ac"))

	rr = f.do(t, http.MethodGet, "/api/customers", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ann@example.com")

	rr = f.do(t, http.MethodPut, "/api/customers/page", `{"size":50}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"size":50`)

	rr = f.do(t, http.MethodGet, "/api/customers/1/sales", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
