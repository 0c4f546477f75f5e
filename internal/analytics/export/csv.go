// Package export serialises analytics reports for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/pos"
)

// table is one report series laid out as rows.
type table struct {
	name   string
	header []string
	rows   [][]string
}

func tables(r analytics.Report) []table {
	trend := table{name: "Sales Trend", header: []string{"Date", "Sales", "Revenue"}}
	for _, p := range r.SalesTrend {
		trend.rows = append(trend.rows, []string{p.Date, strconv.Itoa(p.Sales), p.Revenue.StringFixed(2)})
	}
	top := table{name: "Top Products", header: []string{"Product", "Units Sold"}}
	for _, p := range r.TopProducts {
		top.rows = append(top.rows, []string{p.Name, strconv.Itoa(p.Sales)})
	}
	categories := table{name: "Sales by Category", header: []string{"Category", "Units Sold"}}
	for _, c := range r.SalesByCategory {
		categories.rows = append(categories.rows, []string{c.Category, strconv.Itoa(c.Value)})
	}
	payments := table{name: "Revenue by Payment", header: []string{"Payment Method", "Revenue"}}
	for _, p := range r.RevenueByPaymentMethod {
		payments.rows = append(payments.rows, []string{p.Method, p.Revenue.StringFixed(2)})
	}
	monthly := table{name: "Monthly Revenue", header: []string{"Month", "Revenue"}}
	for _, m := range r.MonthlyRevenue {
		monthly.rows = append(monthly.rows, []string{m.Month, m.Revenue.StringFixed(2)})
	}
	return []table{trend, top, categories, payments, monthly}
}

func writeTable(writer *csv.Writer, t table) error {
	if err := writer.Write(t.header); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteReportCSV emits every series of the report, each under its own
// header row and separated by a blank line.
func WriteReportCSV(w io.Writer, r analytics.Report) error {
	return writeTables(w, tables(r))
}

func writeTables(w io.Writer, ts []table) error {
	writer := csv.NewWriter(w)
	for i, t := range ts {
		if i > 0 {
			writer.Flush()
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := writeTable(writer, t); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func summaryTable(s analytics.Summary) table {
	return table{name: "Summary", header: []string{"Metric", "Value"}, rows: [][]string{
		{"Total Products", strconv.Itoa(s.TotalProducts)},
		{"Total Sales", strconv.Itoa(s.TotalSales)},
		{"Total Revenue", s.TotalRevenue.StringFixed(2)},
		{"Low Stock Items", strconv.Itoa(s.LowStockItems)},
		{"Out of Stock Items", strconv.Itoa(s.OutOfStockItems)},
		{"Active Suppliers", strconv.Itoa(s.ActiveSuppliers)},
	}}
}

// WriteDashboardCSV emits the headline cards followed by every report
// series, each block separated by a blank line.
func WriteDashboardCSV(w io.Writer, s analytics.Summary, r analytics.Report) error {
	return writeTables(w, append([]table{summaryTable(s)}, tables(r)...))
}

// WriteSalesCSV emits one row per sale.
func WriteSalesCSV(w io.Writer, sales []pos.Sale) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Sale ID", "Date", "Customer", "Payment Method", "Items", "Total"}); err != nil {
		return err
	}
	for _, s := range sales {
		date := ""
		if s.HasDate() {
			date = s.SaleDate.Format("2006-01-02 15:04")
		}
		if err := writer.Write([]string{
			s.Code,
			date,
			s.CustomerContact,
			s.PaymentMethod,
			strconv.Itoa(len(s.Items)),
			s.TotalAmount.StringFixed(2),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
