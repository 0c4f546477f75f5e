package perf

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/webpos/posdash/internal/pos"
)

var fixedNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

var categories = []string{"Drinks", "Bakery", "Dairy", "Snacks", "Produce", ""}

func catalogue(n int) []pos.Product {
	out := make([]pos.Product, n)
	for i := range out {
		out[i] = pos.Product{
			ID:        int64(i + 1),
			Name:      fmt.Sprintf("Product %05d", n-i),
			Barcode:   fmt.Sprintf("89%010d", i),
			Category:  categories[i%len(categories)],
			SalePrice: decimal.NewFromInt(int64(i%500 + 1)),
			Quantity:  &pos.Quantity{Size: i % 60},
		}
	}
	return out
}

func ledger(n int) []pos.Sale {
	methods := []string{"cash", "card", "transfer", ""}
	out := make([]pos.Sale, n)
	for i := range out {
		out[i] = pos.Sale{
			ID:            int64(i + 1),
			Code:          fmt.Sprintf("S%06d", i),
			SaleDate:      fixedNow.Add(-time.Duration(i) * 37 * time.Minute),
			TotalAmount:   decimal.NewFromInt(int64(i%90 + 5)),
			PaymentMethod: methods[i%len(methods)],
			Items: []pos.SaleItem{
				{ProductName: fmt.Sprintf("Product %05d", i%400), Category: categories[i%len(categories)], Quantity: i%4 + 1},
				{ProductName: fmt.Sprintf("Product %05d", i%170), Category: categories[(i+1)%len(categories)], Quantity: 1},
			},
		}
	}
	return out
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
