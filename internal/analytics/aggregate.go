package analytics

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpos/posdash/internal/pos"
)

const (
	// TrendDays is the length of the trailing sales trend window.
	TrendDays = 7
	// RevenueMonths is the length of the trailing monthly revenue window.
	RevenueMonths = 6
	// TopProductsLimit caps the top products series.
	TopProductsLimit = 5
	// RecentSalesLimit caps the dashboard's recent sales list.
	RecentSalesLimit = 10

	uncategorized  = "Uncategorized"
	unknownPayment = "Unknown"

	trendLabel = "Jan 2"
	monthLabel = "Jan 2006"
	monthKey   = "2006-01"
)

// Report is the chart-ready analytics of a sales set.
type Report struct {
	pos.SalesAnalytics
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Report sources.
const (
	SourceClient = "client"
	SourceServer = "server"
)

// Aggregate reduces sales into the five dashboard series. Trailing windows
// end on now's calendar day and month in loc. Sales without a timestamp are
// left out of the windowed series only.
func Aggregate(sales []pos.Sale, now time.Time, loc *time.Location) Report {
	if loc == nil {
		loc = time.UTC
	}
	return Report{
		SalesAnalytics: pos.SalesAnalytics{
			SalesTrend:             SalesTrend(sales, now, loc),
			TopProducts:            TopProducts(sales, TopProductsLimit),
			SalesByCategory:        SalesByCategory(sales),
			RevenueByPaymentMethod: RevenueByPaymentMethod(sales),
			MonthlyRevenue:         MonthlyRevenue(sales, now, loc),
		},
		Source:      SourceClient,
		GeneratedAt: now,
	}
}

func dayStart(ts time.Time, loc *time.Location) time.Time {
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func monthStart(ts time.Time, loc *time.Location) time.Time {
	y, m, _ := ts.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

// SalesTrend returns exactly TrendDays points, oldest first, ending today.
func SalesTrend(sales []pos.Sale, now time.Time, loc *time.Location) []pos.TrendPoint {
	today := dayStart(now, loc)
	points := make([]pos.TrendPoint, TrendDays)
	index := make(map[string]int, TrendDays)
	for i := range points {
		d := today.AddDate(0, 0, i-(TrendDays-1))
		points[i] = pos.TrendPoint{Date: d.Format(trendLabel), Revenue: decimal.Zero}
		index[d.Format(time.DateOnly)] = i
	}
	for _, s := range sales {
		if !s.HasDate() {
			continue
		}
		i, ok := index[s.SaleDate.In(loc).Format(time.DateOnly)]
		if !ok {
			continue
		}
		points[i].Sales++
		points[i].Revenue = points[i].Revenue.Add(s.TotalAmount)
	}
	return points
}

// MonthlyRevenue returns exactly RevenueMonths buckets, oldest first, ending
// with the current month. Sales outside the window are dropped.
func MonthlyRevenue(sales []pos.Sale, now time.Time, loc *time.Location) []pos.MonthRevenue {
	current := monthStart(now, loc)
	months := make([]pos.MonthRevenue, RevenueMonths)
	index := make(map[string]int, RevenueMonths)
	for i := range months {
		m := current.AddDate(0, i-(RevenueMonths-1), 0)
		months[i] = pos.MonthRevenue{Month: m.Format(monthLabel), Revenue: decimal.Zero}
		index[m.Format(monthKey)] = i
	}
	for _, s := range sales {
		if !s.HasDate() {
			continue
		}
		i, ok := index[s.SaleDate.In(loc).Format(monthKey)]
		if !ok {
			continue
		}
		months[i].Revenue = months[i].Revenue.Add(s.TotalAmount)
	}
	return months
}

// tally sums values per key, remembering first-seen order.
type tally[V any] struct {
	order []string
	sums  map[string]V
}

func newTally[V any]() *tally[V] {
	return &tally[V]{sums: map[string]V{}}
}

func (t *tally[V]) add(key string, v V, plus func(a, b V) V) {
	cur, ok := t.sums[key]
	if !ok {
		t.order = append(t.order, key)
		t.sums[key] = v
		return
	}
	t.sums[key] = plus(cur, v)
}

func addInt(a, b int) int { return a + b }

func addDecimal(a, b decimal.Decimal) decimal.Decimal { return a.Add(b) }

// TopProducts sums item quantities per product name, highest first. Ties keep
// first-seen order. limit <= 0 means no cap.
func TopProducts(sales []pos.Sale, limit int) []pos.ProductSales {
	counts := newTally[int]()
	for _, s := range sales {
		for _, item := range s.Items {
			counts.add(item.ProductName, item.Quantity, addInt)
		}
	}
	out := make([]pos.ProductSales, 0, len(counts.order))
	for _, name := range counts.order {
		out = append(out, pos.ProductSales{Name: name, Sales: counts.sums[name]})
	}
	slices.SortStableFunc(out, func(a, b pos.ProductSales) int { return b.Sales - a.Sales })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// SalesByCategory sums item quantities per category, highest first. Items
// without a category land in "Uncategorized".
func SalesByCategory(sales []pos.Sale) []pos.CategorySales {
	counts := newTally[int]()
	for _, s := range sales {
		for _, item := range s.Items {
			category := item.Category
			if category == "" {
				category = uncategorized
			}
			counts.add(category, item.Quantity, addInt)
		}
	}
	out := make([]pos.CategorySales, 0, len(counts.order))
	for _, name := range counts.order {
		out = append(out, pos.CategorySales{Category: name, Value: counts.sums[name]})
	}
	slices.SortStableFunc(out, func(a, b pos.CategorySales) int { return b.Value - a.Value })
	return out
}

// RevenueByPaymentMethod sums sale totals per payment method, highest first.
// A blank method is reported as "Unknown".
func RevenueByPaymentMethod(sales []pos.Sale) []pos.PaymentRevenue {
	sums := newTally[decimal.Decimal]()
	for _, s := range sales {
		method := s.PaymentMethod
		if method == "" {
			method = unknownPayment
		}
		sums.add(method, s.TotalAmount, addDecimal)
	}
	out := make([]pos.PaymentRevenue, 0, len(sums.order))
	for _, method := range sums.order {
		out = append(out, pos.PaymentRevenue{Method: method, Revenue: sums.sums[method]})
	}
	slices.SortStableFunc(out, func(a, b pos.PaymentRevenue) int { return b.Revenue.Cmp(a.Revenue) })
	return out
}

// StockSummary counts products per stock bucket.
type StockSummary struct {
	TotalProducts int `json:"totalProducts"`
	TotalQuantity int `json:"totalQuantity"`
	InStock       int `json:"inStock"`
	LowStock      int `json:"lowStock"`
	OutOfStock    int `json:"outOfStock"`
}

// Stock classifies every product once.
func Stock(products []pos.Product) StockSummary {
	summary := StockSummary{TotalProducts: len(products)}
	for _, p := range products {
		qty := p.StockQuantity()
		summary.TotalQuantity += qty
		switch pos.Classify(qty) {
		case pos.OutOfStock:
			summary.OutOfStock++
		case pos.LowStock:
			summary.LowStock++
		default:
			summary.InStock++
		}
	}
	return summary
}

// Summary holds the dashboard headline cards.
type Summary struct {
	TotalProducts   int             `json:"totalProducts"`
	TotalSales      int             `json:"totalSales"`
	TotalRevenue    decimal.Decimal `json:"totalRevenue"`
	LowStockItems   int             `json:"lowStockItems"`
	OutOfStockItems int             `json:"outOfStockItems"`
	ActiveSuppliers int             `json:"activeSuppliers"`
}

// Summarize computes the headline cards over the full record sets.
func Summarize(products []pos.Product, sales []pos.Sale, suppliers []pos.Supplier) Summary {
	stock := Stock(products)
	revenue := decimal.Zero
	for _, s := range sales {
		revenue = revenue.Add(s.TotalAmount)
	}
	return Summary{
		TotalProducts:   len(products),
		TotalSales:      len(sales),
		TotalRevenue:    revenue,
		LowStockItems:   stock.LowStock,
		OutOfStockItems: stock.OutOfStock,
		ActiveSuppliers: len(suppliers),
	}
}

// RecentSales returns up to limit sales, newest first. Undated sales sort
// last; equal timestamps keep input order.
func RecentSales(sales []pos.Sale, limit int) []pos.Sale {
	out := slices.Clone(sales)
	if out == nil {
		out = []pos.Sale{}
	}
	slices.SortStableFunc(out, func(a, b pos.Sale) int { return b.SaleDate.Compare(a.SaleDate) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
