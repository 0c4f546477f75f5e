package pos

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProductsAppliesDefaults(t *testing.T) {
	raw := json.RawMessage(`[
		{"id": 1, "name": "Milk", "barcode": null, "category": null, "sale_price": "2.50",
		 "discount": "0", "tax": "abc", "supplier_id": null, "supplier_name": null,
		 "expire_date": null, "created_date": "2025-01-02T10:00:00.000Z", "quantities": null},
		{"id": "2", "name": "Bread", "barcode": "123", "category": "Bakery", "sale_price": 1.2,
		 "discount": 0.1, "tax": "0.07", "supplier_id": 4, "supplier_name": "Acme",
		 "expire_date": "2025-03-01", "created_date": "garbage",
		 "quantities": {"id": "q2", "product_id": 2, "quantity_size": 12}},
		"not a product",
		42
	]`)

	products, skipped := DecodeProducts(raw, time.UTC)
	require.Len(t, products, 2)
	assert.Equal(t, 2, skipped)

	milk := products[0]
	assert.Equal(t, int64(1), milk.ID)
	assert.Equal(t, "", milk.Barcode)
	assert.Equal(t, "", milk.Category)
	assert.True(t, milk.SalePrice.Equal(decimal.RequireFromString("2.5")))
	assert.True(t, milk.Tax.IsZero(), "malformed tax must default to zero")
	assert.Nil(t, milk.SupplierID)
	assert.Nil(t, milk.ExpireDate)
	assert.Nil(t, milk.Quantity)
	assert.Equal(t, 0, milk.StockQuantity())
	assert.Equal(t, OutOfStock, milk.Stock())
	assert.Equal(t, time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC), milk.CreatedDate)

	bread := products[1]
	assert.Equal(t, int64(2), bread.ID)
	require.NotNil(t, bread.SupplierID)
	assert.Equal(t, int64(4), *bread.SupplierID)
	require.NotNil(t, bread.ExpireDate)
	assert.True(t, bread.CreatedDate.IsZero())
	assert.Equal(t, 12, bread.StockQuantity())
	assert.Equal(t, LowStock, bread.Stock())
}

func TestDecodeListNeverReturnsNil(t *testing.T) {
	for _, raw := range []string{``, `null`, `{}`, `"x"`, `[`} {
		products, skipped := DecodeProducts(json.RawMessage(raw), nil)
		assert.NotNil(t, products, "payload %q", raw)
		assert.Empty(t, products, "payload %q", raw)
		assert.Zero(t, skipped)
	}
}

func TestDecodeSalesKeepsItemsAndToleratesBadFields(t *testing.T) {
	raw := json.RawMessage(`[{
		"id": 7, "sale_id": "S-0007", "customer_id": 3, "customer_contact": "0812",
		"sale_date": "2025-05-04 08:30:00", "sub_total": 10, "tax_amount": "1",
		"discount_amount": null, "total_amount": "11", "paid_amount": 20, "change_amount": 9,
		"payment_method": null,
		"sale_items": [
			{"id": 1, "product_id": 9, "product_name": "Tea", "category": "Drinks", "quantity": 2, "unit_price": 5, "sub_total": 10},
			"broken"
		]
	}]`)

	sales, skipped := DecodeSales(raw, time.UTC)
	require.Len(t, sales, 1)
	assert.Zero(t, skipped)

	sale := sales[0]
	assert.Equal(t, "S-0007", sale.Code)
	require.NotNil(t, sale.CustomerID)
	assert.Equal(t, int64(3), *sale.CustomerID)
	assert.True(t, sale.HasDate())
	assert.Equal(t, "", sale.PaymentMethod)
	assert.True(t, sale.DiscountAmount.IsZero())
	assert.True(t, sale.ExpectedTotal().Equal(sale.TotalAmount))
	require.Len(t, sale.Items, 1)
	assert.Equal(t, "S-0007", sale.Items[0].SaleCode, "item inherits the owning sale code")
	assert.Equal(t, 2, sale.Items[0].Quantity)
}

func TestDecodeAnalyticsFallsBackToEmpty(t *testing.T) {
	empty := DecodeAnalytics(nil)
	assert.NotNil(t, empty.SalesTrend)
	assert.NotNil(t, empty.MonthlyRevenue)

	report := DecodeAnalytics(json.RawMessage(`{"topProducts":[{"name":"Tea","sales":"4"}]}`))
	require.Len(t, report.TopProducts, 1)
	assert.Equal(t, 4, report.TopProducts[0].Sales)
	assert.Empty(t, report.SalesTrend)
}

func TestParseTimestamp(t *testing.T) {
	cases := map[string]bool{
		"2025-01-02T03:04:05Z":      true,
		"2025-01-02T03:04:05.123Z":  true,
		"2025-01-02T03:04:05+07:00": true,
		"2025-01-02 03:04:05":       true,
		"2025-01-02":                true,
		"":                          false,
		"yesterday":                 false,
	}
	for input, ok := range cases {
		_, got := ParseTimestamp(input)
		assert.Equal(t, ok, got, input)
	}

	tokyo := time.FixedZone("JST", 9*3600)
	local, ok := ParseTimestampIn("2025-01-02 03:04:05", tokyo)
	require.True(t, ok)
	assert.Equal(t, tokyo, local.Location())
	utc, ok := ParseTimestampIn("2025-01-02T03:04:05Z", tokyo)
	require.True(t, ok)
	assert.True(t, utc.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestDecodeKeepsRecordsWithMalformedNestedFields(t *testing.T) {
	sales, skipped := DecodeSales(json.RawMessage(`[
		{"sale_id": "S1", "total_amount": 10, "sale_items": "oops"},
		{"sale_id": "S2", "total_amount": 4, "sale_items": {"id": 1}},
		{"sale_id": "S3", "total_amount": 2, "sale_items": null}
	]`), time.UTC)
	require.Len(t, sales, 3)
	assert.Zero(t, skipped)
	for _, sale := range sales {
		assert.NotNil(t, sale.Items, sale.Code)
		assert.Empty(t, sale.Items, sale.Code)
	}
	assert.True(t, sales[0].TotalAmount.Equal(decimal.NewFromInt(10)))

	products, skipped := DecodeProducts(json.RawMessage(`[
		{"id": 1, "name": "Milk", "quantities": "n/a"},
		{"id": 2, "name": "Tea", "quantities": [1, 2]},
		{"id": 3, "name": "Rice", "quantities": {"quantity_size": "40"}}
	]`), time.UTC)
	require.Len(t, products, 3)
	assert.Zero(t, skipped)
	assert.Nil(t, products[0].Quantity)
	assert.Equal(t, OutOfStock, products[0].Stock())
	assert.Nil(t, products[1].Quantity)
	assert.Equal(t, 40, products[2].StockQuantity())
}

func TestDecodeReadsZonelessTimestampsInLocation(t *testing.T) {
	ny := time.FixedZone("EDT", -4*3600)

	sales, _ := DecodeSales(json.RawMessage(`[
		{"sale_id": "S1", "sale_date": "2024-05-01 10:00:00"},
		{"sale_id": "S2", "sale_date": "2024-05-01"},
		{"sale_id": "S3", "sale_date": "2024-05-01T02:00:00Z"}
	]`), ny)
	require.Len(t, sales, 3)
	assert.True(t, sales[0].SaleDate.Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, ny)))
	assert.True(t, sales[1].SaleDate.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, ny)))
	assert.Equal(t, 30, sales[2].SaleDate.In(ny).Day(), "explicit offsets are kept")
}
