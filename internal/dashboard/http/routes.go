package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/webpos/posdash/internal/state"
)

// MountRoutes registers the dashboard endpoints onto the router. Session
// resolution must already be in the middleware chain.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(30, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
		}),
	)

	r.Get("/dashboard", h.handleDashboard)
	r.Post("/dashboard/refresh", h.handleDashboardRefresh)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/dashboard/export.csv", h.handleDashboardCSV)
		gr.Get("/dashboard/export.xlsx", h.handleDashboardXLSX)
		gr.Get("/dashboard/charts/{chart}.svg", h.handleChart)
		gr.Get("/sales/export.csv", h.handleSalesCSV)
	})

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.handleProducts)
		pr.Post("/", h.handleCreateProduct)
		pr.Post("/refresh", h.handleRefresh(state.SectionProducts, h.handleProducts))
		pr.Put("/filters", h.handleProductFilters)
		pr.Delete("/filters", h.handleClearProductFilters)
		pr.Post("/sort", h.handleSort(state.SectionProducts, h.handleProducts))
		pr.Put("/page", h.handlePage(state.SectionProducts, h.handleProducts))
		pr.Get("/{id}", h.handleGetProduct)
		pr.Put("/{id}", h.handleUpdateProduct)
		pr.Delete("/{id}", h.handleDeleteProduct)
		pr.Put("/{id}/quantity", h.handleUpdateQuantity)
	})

	r.Route("/sales", func(sr chi.Router) {
		sr.Get("/", h.handleSales)
		sr.Post("/refresh", h.handleRefresh(state.SectionSales, h.handleSales))
		sr.Put("/filters", h.handleSaleFilters)
		sr.Delete("/filters", h.handleClearSaleFilters)
		sr.Post("/sort", h.handleSort(state.SectionSales, h.handleSales))
		sr.Put("/page", h.handlePage(state.SectionSales, h.handleSales))
	})

	r.Get("/sale-items", h.handleSaleItems)
	r.Post("/sale-items/sort", h.handleSort(state.SectionSaleItems, h.handleSaleItems))

	r.Route("/suppliers", func(sr chi.Router) {
		sr.Get("/", h.handleSuppliers)
		sr.Post("/refresh", h.handleRefresh(state.SectionSuppliers, h.handleSuppliers))
		sr.Put("/search", h.handleSupplierSearch)
		sr.Put("/page", h.handlePage(state.SectionSuppliers, h.handleSuppliers))
	})

	r.Route("/customers", func(cr chi.Router) {
		cr.Get("/", h.handleCustomers)
		cr.Post("/refresh", h.handleRefresh(state.SectionCustomers, h.handleCustomers))
		cr.Put("/search", h.handleCustomerSearch)
		cr.Put("/page", h.handlePage(state.SectionCustomers, h.handleCustomers))
		cr.Get("/{id}/sales", h.handleCustomerSales)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	if id := SessionID(r.Context()); id != "" {
		return "session:" + id, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
