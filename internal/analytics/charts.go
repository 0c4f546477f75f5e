package analytics

import (
	"errors"
	"fmt"

	"github.com/webpos/posdash/internal/analytics/svg"
)

// ErrUnknownChart is returned for a chart name outside Charts.
var ErrUnknownChart = errors.New("analytics: unknown chart")

// Chart names.
const (
	ChartSalesTrend      = "sales-trend"
	ChartMonthlyRevenue  = "monthly-revenue"
	ChartTopProducts     = "top-products"
	ChartSalesByCategory = "sales-by-category"
	ChartPaymentMethods  = "revenue-by-payment-method"
)

// Charts lists every renderable chart.
var Charts = []string{ChartSalesTrend, ChartMonthlyRevenue, ChartTopProducts, ChartSalesByCategory, ChartPaymentMethods}

// RenderChart draws one series of r as SVG.
func RenderChart(r Report, name string) (string, error) {
	switch name {
	case ChartSalesTrend:
		points := make([]svg.Point, len(r.SalesTrend))
		for i, p := range r.SalesTrend {
			points[i] = svg.Point{Label: p.Date, Value: p.Revenue.InexactFloat64()}
		}
		return svg.Line(svg.DefaultWidth, svg.DefaultHeight, points, svg.LineOpts{
			Title:       "Sales Trend",
			Description: "Revenue per day over the last 7 days",
			ShowDots:    true,
		})
	case ChartMonthlyRevenue:
		points := make([]svg.Point, len(r.MonthlyRevenue))
		for i, m := range r.MonthlyRevenue {
			points[i] = svg.Point{Label: m.Month, Value: m.Revenue.InexactFloat64()}
		}
		return svg.Line(svg.DefaultWidth, svg.DefaultHeight, points, svg.LineOpts{
			Title:       "Monthly Revenue",
			Description: "Revenue per month over the last 6 months",
			StrokeColor: "#16a34a",
			FillColor:   "rgba(22,163,74,0.12)",
			ShowDots:    true,
		})
	case ChartTopProducts:
		points := make([]svg.Point, len(r.TopProducts))
		for i, p := range r.TopProducts {
			points[i] = svg.Point{Label: p.Name, Value: float64(p.Sales)}
		}
		return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, points, svg.BarOpts{
			Title:       "Top Products",
			Description: "Units sold per product",
			ShowValues:  true,
		})
	case ChartSalesByCategory:
		points := make([]svg.Point, len(r.SalesByCategory))
		for i, c := range r.SalesByCategory {
			points[i] = svg.Point{Label: c.Category, Value: float64(c.Value)}
		}
		return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, points, svg.BarOpts{
			Title:       "Sales by Category",
			Description: "Units sold per category",
			Color:       "#8b5cf6",
			ShowValues:  true,
		})
	case ChartPaymentMethods:
		points := make([]svg.Point, len(r.RevenueByPaymentMethod))
		for i, p := range r.RevenueByPaymentMethod {
			points[i] = svg.Point{Label: p.Method, Value: p.Revenue.InexactFloat64()}
		}
		return svg.Bars(svg.DefaultWidth, svg.DefaultHeight, points, svg.BarOpts{
			Title:       "Revenue by Payment Method",
			Description: "Sale totals per payment method",
			Color:       "#f97316",
			ShowValues:  true,
		})
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownChart, name)
	}
}
