package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/webpos/posdash/internal/analytics"
	"github.com/webpos/posdash/internal/pos"
)

func sampleReport() (analytics.Summary, analytics.Report) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	sales := []pos.Sale{
		{Code: "S1", SaleDate: now, TotalAmount: decimal.RequireFromString("10.50"), PaymentMethod: "cash",
			Items: []pos.SaleItem{{ProductName: "Tea", Category: "Drinks", Quantity: 3}}},
		{Code: "S2", SaleDate: now.AddDate(0, 0, -1), TotalAmount: decimal.NewFromInt(5), PaymentMethod: "card",
			Items: []pos.SaleItem{{ProductName: "Bread", Quantity: 2}}},
	}
	return analytics.Summarize(nil, sales, nil), analytics.Aggregate(sales, now, time.UTC)
}

func readCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	return records
}

func TestWriteReportCSV(t *testing.T) {
	_, report := sampleReport()
	buf := &bytes.Buffer{}
	if err := WriteReportCSV(buf, report); err != nil {
		t.Fatalf("report csv error: %v", err)
	}
	records := readCSV(t, buf)
	// 5 headers + 7 trend days + 2 products + 2 categories + 2 methods + 6 months
	if len(records) != 24 {
		t.Fatalf("expected 24 records, got %d: %v", len(records), records)
	}
	if records[7][0] != "Mar 10" || records[7][2] != "10.50" {
		t.Fatalf("unexpected last trend row %v", records[7])
	}
	if !bytes.Contains(buf.Bytes(), []byte("Uncategorized,2")) {
		t.Fatalf("expected uncategorized bucket in %s", buf.String())
	}
}

func TestWriteDashboardCSVStartsWithSummary(t *testing.T) {
	summary, report := sampleReport()
	buf := &bytes.Buffer{}
	if err := WriteDashboardCSV(buf, summary, report); err != nil {
		t.Fatalf("dashboard csv error: %v", err)
	}
	records := readCSV(t, buf)
	if records[0][0] != "Metric" || records[3][1] != "15.50" {
		t.Fatalf("unexpected summary block %v", records[:4])
	}
}

func TestWriteSalesCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	sales := []pos.Sale{{Code: "S1", TotalAmount: decimal.NewFromInt(3)}}
	if err := WriteSalesCSV(buf, sales); err != nil {
		t.Fatalf("sales csv error: %v", err)
	}
	records := readCSV(t, buf)
	if len(records) != 2 || records[1][1] != "" || records[1][5] != "3.00" {
		t.Fatalf("unexpected sales rows %v", records)
	}
}

func TestWriteReportXLSX(t *testing.T) {
	summary, report := sampleReport()
	buf := &bytes.Buffer{}
	if err := WriteReportXLSX(buf, summary, report); err != nil {
		t.Fatalf("xlsx error: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	want := []string{"Summary", "Sales Trend", "Top Products", "Sales by Category", "Revenue by Payment", "Monthly Revenue"}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, got)
		}
	}
	rows, err := f.GetRows("Top Products")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 || rows[1][0] != "Tea" || rows[1][1] != "3" {
		t.Fatalf("unexpected top products rows %v", rows)
	}
}
