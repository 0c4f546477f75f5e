package pages

import (
	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/pos"
)

// DashboardView is the landing page: headline cards, stock breakdown, chart
// series and the latest sales.
type DashboardView struct {
	Summary     analytics.Summary      `json:"summary"`
	Stock       analytics.StockSummary `json:"stock"`
	Analytics   analytics.Report       `json:"analytics"`
	RecentSales []pos.Sale             `json:"recent_sales"`
	Charts      []string               `json:"charts"`
}

// Dashboard assembles the landing page from the loaded records and an
// already built report.
func Dashboard(products []pos.Product, sales []pos.Sale, suppliers []pos.Supplier, report analytics.Report) DashboardView {
	return DashboardView{
		Summary:     analytics.Summarize(products, sales, suppliers),
		Stock:       analytics.Stock(products),
		Analytics:   report,
		RecentSales: analytics.RecentSales(sales, analytics.RecentSalesLimit),
		Charts:      analytics.Charts,
	}
}
